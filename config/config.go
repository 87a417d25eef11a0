package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" envDefault:"graft-api"`
	Environment                   string   `env:"ENVIRONMENT" envDefault:"development"`
	Port                          int      `env:"PORT" envDefault:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" envDefault:"info"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" envDefault:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" envDefault:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" envDefault:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" envDefault:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" envDefault:"GET,POST,PUT,DELETE"`

	// PostgreSQL (entity store)
	DatabaseHost                  string        `env:"DB_HOST" envDefault:"localhost"`
	DatabasePort                  string        `env:"DB_PORT" envDefault:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" envDefault:""`
	DatabasePassword              string        `env:"DB_PASSWORD" envDefault:""`
	DatabaseName                  string        `env:"DB_NAME" envDefault:"graft"`
	DatabaseSSLMode               string        `env:"DB_SSL_MODE" envDefault:"disable"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" envDefault:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" envDefault:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" envDefault:"true"`

	// Graph projection (Neo4j)
	GraphDBHost     string `env:"GRAPH_DB_HOST" envDefault:"localhost"`
	GraphDBPort     int    `env:"GRAPH_DB_PORT" envDefault:"7687"`
	GraphDBUser     string `env:"GRAPH_DB_USER" envDefault:""`
	GraphDBPassword string `env:"GRAPH_DB_PASSWORD" envDefault:""`

	// Kafka
	KafkaBrokers            []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaConsumerEnabled    bool     `env:"KAFKA_CONSUMER_ENABLED" envDefault:"true"`
	KafkaEntitiesTopic      string   `env:"KAFKA_ENTITIES_TOPIC" envDefault:"graft.public.entities"`
	KafkaRelationshipsTopic string   `env:"KAFKA_RELATIONSHIPS_TOPIC" envDefault:"graft.public.relationships"`
	KafkaGraphConsumerGroup string   `env:"KAFKA_GRAPH_CONSUMER_GROUP" envDefault:"graft-graph-consumer"`
	KafkaMergeConsumerGroup string   `env:"KAFKA_MERGE_CONSUMER_GROUP" envDefault:"graft-merge-consumer"`
	KafkaOutputTopic        string   `env:"KAFKA_OUTPUT_TOPIC" envDefault:"entity-events"`
	KafkaBatchSize          int      `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	KafkaBatchTimeout       int      `env:"KAFKA_BATCH_TIMEOUT_MS" envDefault:"100"`
	KafkaRequiredAcks       int      `env:"KAFKA_REQUIRED_ACKS" envDefault:"1"`
	KafkaCompression        string   `env:"KAFKA_COMPRESSION" envDefault:"snappy"`

	// Tracing
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTLPProtocol string `env:"OTLP_PROTOCOL" envDefault:"grpc"`
	OTLPInsecure bool   `env:"OTLP_INSECURE" envDefault:"true"`

	// Access policy
	DeletionGracePeriod   time.Duration `env:"DELETION_GRACE_PERIOD" envDefault:"24h"`
	DeletionLinkThreshold int           `env:"DELETION_LINK_THRESHOLD" envDefault:"3"`
	MergeResolveMaxDepth  int           `env:"MERGE_RESOLVE_MAX_DEPTH" envDefault:"10"`
}

// Load reads .env when present and binds the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
