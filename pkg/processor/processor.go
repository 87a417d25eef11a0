// Package processor consumes Debezium CDC messages for the entities and
// relationships tables and projects them into the graph database.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/pkg/graph"
	"github.com/Ramsey-B/graft/pkg/kafka"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Processor dispatches CDC messages by source table
type Processor struct {
	logger               ectologger.Logger
	entityProcessor      *EntityProcessor
	relationshipProcessor *RelationshipProcessor
}

// NewProcessor creates a processor covering both change streams
func NewProcessor(
	logger ectologger.Logger,
	entityService *graph.EntityService,
	relationshipService *graph.RelationshipService,
) *Processor {
	return &Processor{
		logger:               logger,
		entityProcessor:      NewEntityProcessor(logger, entityService),
		relationshipProcessor: NewRelationshipProcessor(logger, relationshipService),
	}
}

// ProcessMessage handles an incoming CDC message
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessMessage")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"key":    msg.Key,
		"topic":  msg.Topic,
		"offset": msg.Offset,
	})

	switch msg.SourceTable() {
	case "entities":
		return p.entityProcessor.Process(ctx, msg)
	case "relationships":
		return p.relationshipProcessor.Process(ctx, msg)
	}

	log.WithFields(map[string]any{
		"table": msg.SourceTable(),
	}).Debug("Ignoring change from untracked table")
	return nil
}
