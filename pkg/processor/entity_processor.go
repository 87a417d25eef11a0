package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/pkg/graph"
	"github.com/Ramsey-B/graft/pkg/kafka"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// EntityProcessor projects entity row changes into graph nodes
type EntityProcessor struct {
	logger        ectologger.Logger
	entityService *graph.EntityService
}

// NewEntityProcessor creates a new entity CDC processor
func NewEntityProcessor(logger ectologger.Logger, entityService *graph.EntityService) *EntityProcessor {
	return &EntityProcessor{
		logger:        logger,
		entityService: entityService,
	}
}

// Process handles a single entity CDC message
func (p *EntityProcessor) Process(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.EntityProcessor.Process")
	defer span.End()

	payload := &msg.Envelope.Payload

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"op":     payload.Op,
		"offset": msg.Offset,
	})

	if payload.IsDelete() {
		before, err := payload.ParseEntityRowBefore()
		if err != nil {
			log.WithError(err).Error("Failed to parse deleted entity row")
			return err
		}
		if before == nil {
			return nil
		}
		return p.entityService.Delete(ctx, before.ID)
	}

	row, err := payload.ParseEntityRow()
	if err != nil {
		log.WithError(err).Error("Failed to parse entity row")
		return err
	}
	if row == nil {
		return nil
	}

	log = log.WithFields(map[string]any{"entity_id": row.ID})

	if payload.IsCreate() {
		if row.IsDeleted() || row.IsMerged() {
			// Snapshot of an already-dead row. Nothing to project.
			return nil
		}
		return p.entityService.CreateOrUpdate(ctx, row.ToEntity())
	}

	before, err := payload.ParseEntityRowBefore()
	if err != nil {
		log.WithError(err).Error("Failed to parse previous entity row")
		return err
	}

	switch {
	case row.IsMerged() && (before == nil || !before.IsMerged()):
		log.WithFields(map[string]any{"merged_id": *row.MergedID}).Info("Entity merged, updating graph")
		return p.entityService.MarkMerged(ctx, row.ID, *row.MergedID)

	case row.IsMerged():
		// Already marked merged. Skip redundant updates.
		return nil

	case row.IsDeleted() && (before == nil || !before.IsDeleted()):
		log.Info("Entity deleted, updating graph")
		return p.entityService.Delete(ctx, row.ID)

	case row.IsDeleted():
		return nil

	case before != nil && before.IsDeleted():
		log.Info("Entity restored, updating graph")
		if err := p.entityService.Restore(ctx, row.ID); err != nil {
			return err
		}
		return p.entityService.CreateOrUpdate(ctx, row.ToEntity())

	default:
		return p.entityService.CreateOrUpdate(ctx, row.ToEntity())
	}
}
