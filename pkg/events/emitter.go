// Package events handles event emission for entity lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/pkg/kafka"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes entity lifecycle events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EntityCreated emits an entity created event
func (e *Emitter) EntityCreated(ctx context.Context, entity *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EntityCreated")
	defer span.End()

	data, _ := json.Marshal(entity)
	event := &kafka.EntityEvent{
		EventType:  string(EventTypeEntityCreated),
		EntityID:   entity.ID,
		PrimaryExt: entity.PrimaryExt,
		Data:       data,
	}

	if err := e.producer.PublishEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit entity.created event")
		return err
	}

	return nil
}

// EntityUpdated emits an entity updated event
func (e *Emitter) EntityUpdated(ctx context.Context, entity *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EntityUpdated")
	defer span.End()

	data, _ := json.Marshal(entity)
	event := &kafka.EntityEvent{
		EventType:  string(EventTypeEntityUpdated),
		EntityID:   entity.ID,
		PrimaryExt: entity.PrimaryExt,
		Data:       data,
	}

	if err := e.producer.PublishEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit entity.updated event")
		return err
	}

	return nil
}

// EntityMerged emits an entity merged event with the merge report
func (e *Emitter) EntityMerged(ctx context.Context, report *models.MergeReport) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EntityMerged")
	defer span.End()

	payload := EntityMergedEvent{
		BaseEvent: NewBaseEvent(EventTypeEntityMerged),
		SourceID:  report.SourceID,
		DestID:    report.DestID,
		Report:    report,
	}
	data, _ := json.Marshal(payload)

	event := &kafka.EntityEvent{
		EventType:      string(EventTypeEntityMerged),
		EntityID:       report.DestID,
		SourceEntityID: &report.SourceID,
		Data:           data,
	}

	if err := e.producer.PublishEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit entity.merged event")
		return err
	}

	return nil
}

// EntityDeleted emits an entity deleted event
func (e *Emitter) EntityDeleted(ctx context.Context, entityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EntityDeleted")
	defer span.End()

	payload := EntityDeletedEvent{
		BaseEvent: NewBaseEvent(EventTypeEntityDeleted),
		EntityID:  entityID,
	}
	data, _ := json.Marshal(payload)

	event := &kafka.EntityEvent{
		EventType: string(EventTypeEntityDeleted),
		EntityID:  entityID,
		Data:      data,
	}

	if err := e.producer.PublishEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit entity.deleted event")
		return err
	}

	return nil
}

// EntityRestored emits an entity restored event
func (e *Emitter) EntityRestored(ctx context.Context, entityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EntityRestored")
	defer span.End()

	payload := EntityRestoredEvent{
		BaseEvent: NewBaseEvent(EventTypeEntityRestored),
		EntityID:  entityID,
	}
	data, _ := json.Marshal(payload)

	event := &kafka.EntityEvent{
		EventType: string(EventTypeEntityRestored),
		EntityID:  entityID,
		Data:      data,
	}

	if err := e.producer.PublishEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit entity.restored event")
		return err
	}

	return nil
}

// RelationshipCreated emits a relationship created event
func (e *Emitter) RelationshipCreated(ctx context.Context, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.RelationshipCreated")
	defer span.End()

	props, _ := json.Marshal(rel)
	event := &kafka.RelationshipEvent{
		EventType:      string(EventTypeRelationshipCreated),
		RelationshipID: rel.ID,
		Category:       models.CategoryNames[rel.CategoryID],
		CategoryID:     rel.CategoryID,
		Entity1ID:      rel.Entity1ID,
		Entity2ID:      rel.Entity2ID,
		Properties:     props,
	}

	if err := e.producer.PublishRelationshipEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit relationship.created event")
		return err
	}

	return nil
}

// RelationshipRepointed emits a repoint event for a relationship whose
// endpoint moved during a merge
func (e *Emitter) RelationshipRepointed(ctx context.Context, relationshipID, fromEntityID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.RelationshipRepointed")
	defer span.End()

	payload := RelationshipRepointedEvent{
		BaseEvent:      NewBaseEvent(EventTypeRelationshipRepointed),
		RelationshipID: relationshipID,
		FromEntityID:   fromEntityID,
		ToEntityID:     toEntityID,
	}
	props, _ := json.Marshal(payload)

	event := &kafka.RelationshipEvent{
		EventType:      string(EventTypeRelationshipRepointed),
		RelationshipID: relationshipID,
		Properties:     props,
	}

	if err := e.producer.PublishRelationshipEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit relationship.repointed event")
		return err
	}

	return nil
}

// RelationshipDeleted emits a relationship deleted event
func (e *Emitter) RelationshipDeleted(ctx context.Context, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.RelationshipDeleted")
	defer span.End()

	event := &kafka.RelationshipEvent{
		EventType:      string(EventTypeRelationshipDeleted),
		RelationshipID: rel.ID,
		Category:       models.CategoryNames[rel.CategoryID],
		CategoryID:     rel.CategoryID,
		Entity1ID:      rel.Entity1ID,
		Entity2ID:      rel.Entity2ID,
	}

	if err := e.producer.PublishRelationshipEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit relationship.deleted event")
		return err
	}

	return nil
}
