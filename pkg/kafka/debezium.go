package kafka

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/graft/pkg/models"
)

// DebeziumEnvelope is the standard Debezium CDC message format
type DebeziumEnvelope struct {
	Schema  json.RawMessage `json:"schema,omitempty"`
	Payload DebeziumPayload `json:"payload"`
}

// DebeziumPayload contains the before/after state of a row
type DebeziumPayload struct {
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
	Source DebeziumSource  `json:"source"`
	Op     string          `json:"op"` // c=create, u=update, d=delete, r=read (snapshot)
	TsMs   int64           `json:"ts_ms"`
}

// DebeziumSource contains metadata about the source of the change
type DebeziumSource struct {
	Version   string `json:"version"`
	Connector string `json:"connector"`
	Name      string `json:"name"`
	TsMs      int64  `json:"ts_ms"`
	Snapshot  string `json:"snapshot,omitempty"`
	Db        string `json:"db"`
	Sequence  string `json:"sequence,omitempty"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	TxId      int64  `json:"txId,omitempty"`
	Lsn       int64  `json:"lsn,omitempty"`
}

// IsCreate returns true if this is a create operation
func (p *DebeziumPayload) IsCreate() bool {
	return p.Op == "c" || p.Op == "r"
}

// IsUpdate returns true if this is an update operation
func (p *DebeziumPayload) IsUpdate() bool {
	return p.Op == "u"
}

// IsDelete returns true if this is a delete operation
func (p *DebeziumPayload) IsDelete() bool {
	return p.Op == "d"
}

// Timestamp returns the event timestamp
func (p *DebeziumPayload) Timestamp() time.Time {
	return time.UnixMilli(p.TsMs)
}

// EntityRow represents a row from the entities table as Debezium emits it
type EntityRow struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	PrimaryExt string  `json:"primary_ext"`
	Blurb      *string `json:"blurb"`
	Summary    *string `json:"summary"`
	Website    *string `json:"website"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	LinkCount  int     `json:"link_count"`
	MergedID   *int64  `json:"merged_id"`
	CreatedBy  int64   `json:"created_by"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	DeletedAt  *string `json:"deleted_at"`
}

// IsDeleted returns true if the row has been soft-deleted
func (r *EntityRow) IsDeleted() bool {
	return r.DeletedAt != nil && *r.DeletedAt != ""
}

// IsMerged returns true if the row has been absorbed into another entity
func (r *EntityRow) IsMerged() bool {
	return r.MergedID != nil
}

// ToEntity converts the Debezium row to an Entity model.
func (r *EntityRow) ToEntity() *models.Entity {
	return &models.Entity{
		ID:         r.ID,
		Name:       r.Name,
		PrimaryExt: r.PrimaryExt,
		Blurb:      r.Blurb,
		Summary:    r.Summary,
		Website:    r.Website,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		LinkCount:  r.LinkCount,
		MergedID:   r.MergedID,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  parseDebeziumTimestamp(r.CreatedAt),
		UpdatedAt:  parseDebeziumTimestamp(r.UpdatedAt),
		DeletedAt:  parseDebeziumTimestampPtr(r.DeletedAt),
	}
}

// RelationshipRow represents a row from the relationships table as Debezium
// emits it
type RelationshipRow struct {
	ID           int64   `json:"id"`
	Entity1ID    int64   `json:"entity1_id"`
	Entity2ID    int64   `json:"entity2_id"`
	CategoryID   int     `json:"category_id"`
	Description1 *string `json:"description1"`
	Description2 *string `json:"description2"`
	Amount       *int64  `json:"amount"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	IsCurrent    *bool   `json:"is_current"`
	CreatedBy    int64   `json:"created_by"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	DeletedAt    *string `json:"deleted_at"`
}

// IsDeleted returns true if the row has been soft-deleted
func (r *RelationshipRow) IsDeleted() bool {
	return r.DeletedAt != nil && *r.DeletedAt != ""
}

// ToRelationship converts the Debezium row to a Relationship model.
func (r *RelationshipRow) ToRelationship() *models.Relationship {
	return &models.Relationship{
		ID:           r.ID,
		Entity1ID:    r.Entity1ID,
		Entity2ID:    r.Entity2ID,
		CategoryID:   r.CategoryID,
		Description1: r.Description1,
		Description2: r.Description2,
		Amount:       r.Amount,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		IsCurrent:    r.IsCurrent,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    parseDebeziumTimestamp(r.CreatedAt),
		UpdatedAt:    parseDebeziumTimestamp(r.UpdatedAt),
		DeletedAt:    parseDebeziumTimestampPtr(r.DeletedAt),
	}
}

// ParseDebeziumMessage parses a raw Kafka message as a Debezium envelope
func ParseDebeziumMessage(data []byte) (*DebeziumEnvelope, error) {
	var envelope DebeziumEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// ParseEntityRow parses the After payload as an EntityRow. Returns nil for
// tombstones.
func (p *DebeziumPayload) ParseEntityRow() (*EntityRow, error) {
	if len(p.After) == 0 || string(p.After) == "null" {
		return nil, nil
	}

	var row EntityRow
	if err := json.Unmarshal(p.After, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// ParseEntityRowBefore parses the Before payload as an EntityRow.
func (p *DebeziumPayload) ParseEntityRowBefore() (*EntityRow, error) {
	if len(p.Before) == 0 || string(p.Before) == "null" {
		return nil, nil
	}

	var row EntityRow
	if err := json.Unmarshal(p.Before, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// ParseRelationshipRow parses the After payload as a RelationshipRow.
// Returns nil for tombstones.
func (p *DebeziumPayload) ParseRelationshipRow() (*RelationshipRow, error) {
	if len(p.After) == 0 || string(p.After) == "null" {
		return nil, nil
	}

	var row RelationshipRow
	if err := json.Unmarshal(p.After, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// ParseRelationshipRowBefore parses the Before payload as a RelationshipRow.
func (p *DebeziumPayload) ParseRelationshipRowBefore() (*RelationshipRow, error) {
	if len(p.Before) == 0 || string(p.Before) == "null" {
		return nil, nil
	}

	var row RelationshipRow
	if err := json.Unmarshal(p.Before, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// parseDebeziumTimestamp parses a timestamp string from Debezium.
// Debezium can send timestamps in various formats depending on the
// connector config.
func parseDebeziumTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999Z",
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

// parseDebeziumTimestampPtr parses an optional timestamp string.
func parseDebeziumTimestampPtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseDebeziumTimestamp(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}
