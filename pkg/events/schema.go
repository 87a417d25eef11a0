package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/graft/pkg/models"
)

// EventType defines the type of event
type EventType string

const (
	// Entity events
	EventTypeEntityCreated  EventType = "entity.created"
	EventTypeEntityUpdated  EventType = "entity.updated"
	EventTypeEntityDeleted  EventType = "entity.deleted"
	EventTypeEntityRestored EventType = "entity.restored"
	EventTypeEntityMerged   EventType = "entity.merged"

	// Relationship events
	EventTypeRelationshipCreated   EventType = "relationship.created"
	EventTypeRelationshipDeleted   EventType = "relationship.deleted"
	EventTypeRelationshipRepointed EventType = "relationship.repointed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EntityMergedEvent is emitted when one entity absorbs another
type EntityMergedEvent struct {
	BaseEvent
	SourceID int64               `json:"source_id"`
	DestID   int64               `json:"dest_id"`
	Report   *models.MergeReport `json:"report,omitempty"`
}

// EntityDeletedEvent is emitted when an entity is soft-deleted
type EntityDeletedEvent struct {
	BaseEvent
	EntityID int64 `json:"entity_id"`
}

// EntityRestoredEvent is emitted when a soft-deleted entity is brought back
type EntityRestoredEvent struct {
	BaseEvent
	EntityID int64 `json:"entity_id"`
}

// RelationshipRepointedEvent is emitted when a relationship endpoint moves
// from one entity to another during a merge
type RelationshipRepointedEvent struct {
	BaseEvent
	RelationshipID int64 `json:"relationship_id"`
	FromEntityID   int64 `json:"from_entity_id"`
	ToEntityID     int64 `json:"to_entity_id"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
