package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/pkg/graph"
	"github.com/Ramsey-B/graft/pkg/kafka"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// RelationshipProcessor projects relationship row changes into graph edges
type RelationshipProcessor struct {
	logger              ectologger.Logger
	relationshipService *graph.RelationshipService
}

// NewRelationshipProcessor creates a new relationship CDC processor
func NewRelationshipProcessor(logger ectologger.Logger, relationshipService *graph.RelationshipService) *RelationshipProcessor {
	return &RelationshipProcessor{
		logger:              logger,
		relationshipService: relationshipService,
	}
}

// Process handles a single relationship CDC message
func (p *RelationshipProcessor) Process(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.RelationshipProcessor.Process")
	defer span.End()

	payload := &msg.Envelope.Payload

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"op":     payload.Op,
		"offset": msg.Offset,
	})

	if payload.IsDelete() {
		before, err := payload.ParseRelationshipRowBefore()
		if err != nil {
			log.WithError(err).Error("Failed to parse deleted relationship row")
			return err
		}
		if before == nil {
			return nil
		}
		return p.relationshipService.Delete(ctx, before.ID, before.CategoryID)
	}

	row, err := payload.ParseRelationshipRow()
	if err != nil {
		log.WithError(err).Error("Failed to parse relationship row")
		return err
	}
	if row == nil {
		return nil
	}

	log = log.WithFields(map[string]any{"relationship_id": row.ID})

	if payload.IsCreate() {
		if row.IsDeleted() {
			return nil
		}
		return p.relationshipService.CreateOrUpdate(ctx, row.ToRelationship())
	}

	before, err := payload.ParseRelationshipRowBefore()
	if err != nil {
		log.WithError(err).Error("Failed to parse previous relationship row")
		return err
	}

	switch {
	case row.IsDeleted() && (before == nil || !before.IsDeleted()):
		log.Info("Relationship deleted, removing edge")
		return p.relationshipService.Delete(ctx, row.ID, row.CategoryID)

	case row.IsDeleted():
		return nil

	default:
		// Covers restores and endpoint repoints. CreateOrUpdate drops any
		// stale edge with this id before merging the current one, so a
		// repointed relationship ends up on its new endpoints.
		if before != nil && (before.Entity1ID != row.Entity1ID || before.Entity2ID != row.Entity2ID) {
			log.WithFields(map[string]any{
				"from_entity1": before.Entity1ID,
				"from_entity2": before.Entity2ID,
				"to_entity1":   row.Entity1ID,
				"to_entity2":   row.Entity2ID,
			}).Info("Relationship repointed, moving edge")
		}
		return p.relationshipService.CreateOrUpdate(ctx, row.ToRelationship())
	}
}
