// Package deletion implements entity soft deletion and restore
package deletion

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/internal/repositories/alias"
	"github.com/Ramsey-B/graft/internal/repositories/article"
	"github.com/Ramsey-B/graft/internal/repositories/entity"
	"github.com/Ramsey-B/graft/internal/repositories/image"
	"github.com/Ramsey-B/graft/internal/repositories/list"
	"github.com/Ramsey-B/graft/internal/repositories/relationship"
	"github.com/Ramsey-B/graft/internal/repositories/tag"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Emitter publishes deletion outcomes after commit.
type Emitter interface {
	EntityDeleted(ctx context.Context, entityID int64) error
	EntityRestored(ctx context.Context, entityID int64) error
}

// Engine soft-deletes entities with an association snapshot and restores
// them from it.
type Engine struct {
	logger           ectologger.Logger
	entityRepo       *entity.Repository
	aliasRepo        *alias.Repository
	tagRepo          *tag.Repository
	listRepo         *list.Repository
	imageRepo        *image.Repository
	articleRepo      *article.Repository
	relationshipRepo *relationship.Repository
	emitter          Emitter
}

// NewEngine creates a new deletion engine. emitter may be nil.
func NewEngine(
	logger ectologger.Logger,
	entityRepo *entity.Repository,
	aliasRepo *alias.Repository,
	tagRepo *tag.Repository,
	listRepo *list.Repository,
	imageRepo *image.Repository,
	articleRepo *article.Repository,
	relationshipRepo *relationship.Repository,
	emitter Emitter,
) *Engine {
	return &Engine{
		logger:           logger,
		entityRepo:       entityRepo,
		aliasRepo:        aliasRepo,
		tagRepo:          tagRepo,
		listRepo:         listRepo,
		imageRepo:        imageRepo,
		articleRepo:      articleRepo,
		relationshipRepo: relationshipRepo,
		emitter:          emitter,
	}
}

// SoftDelete marks the entity deleted in one transaction, soft-deleting its
// relationships and snapshotting every association id so Restore can put
// things back.
func (e *Engine) SoftDelete(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "deletion.Engine.SoftDelete")
	defer span.End()

	ctxTx, tx, err := e.entityRepo.DB().GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := e.entityRepo.Get(ctxTx, id); err != nil {
		return err
	}

	snapshot, err := e.buildSnapshot(ctxTx, id)
	if err != nil {
		return err
	}

	relIDs, err := e.relationshipRepo.SoftDeleteForEntity(ctxTx, id)
	if err != nil {
		return err
	}
	snapshot.RelationshipIDs = relIDs

	if err := e.entityRepo.SoftDelete(ctxTx, id, snapshot); err != nil {
		return err
	}

	if err := tx.Commit(ctxTx); err != nil {
		return err
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"entity_id":             id,
		"relationships_deleted": len(relIDs),
	}).Info("Soft deleted entity")

	if e.emitter != nil {
		if err := e.emitter.EntityDeleted(ctx, id); err != nil {
			e.logger.WithContext(ctx).WithError(err).Error("Failed to publish deletion event")
		}
	}

	return nil
}

// Restore brings a soft-deleted entity back, along with the relationships
// captured in its association snapshot. Merged entities cannot be restored.
func (e *Engine) Restore(ctx context.Context, id int64) (*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "deletion.Engine.Restore")
	defer span.End()

	ctxTx, tx, err := e.entityRepo.DB().GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	snapshot, err := e.entityRepo.GetAssociationSnapshot(ctxTx, id)
	if err != nil {
		return nil, err
	}

	if err := e.entityRepo.Restore(ctxTx, id); err != nil {
		return nil, err
	}

	if snapshot != nil && len(snapshot.RelationshipIDs) > 0 {
		if err := e.relationshipRepo.RestoreByIDs(ctxTx, snapshot.RelationshipIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, err
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{"entity_id": id}).Info("Restored entity")

	if e.emitter != nil {
		if err := e.emitter.EntityRestored(ctx, id); err != nil {
			e.logger.WithContext(ctx).WithError(err).Error("Failed to publish restore event")
		}
	}

	return e.entityRepo.Get(ctx, id)
}

func (e *Engine) buildSnapshot(ctx context.Context, id int64) (*models.AssociationSnapshot, error) {
	snapshot := &models.AssociationSnapshot{}

	aliases, err := e.aliasRepo.GetForEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, a := range aliases {
		snapshot.AliasIDs = append(snapshot.AliasIDs, a.ID)
	}

	taggingIDs, err := e.tagRepo.GetTaggingIDsForEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot.TaggingIDs = taggingIDs

	membershipIDs, err := e.listRepo.GetMembershipIDsForEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot.ListEntityIDs = membershipIDs

	images, err := e.imageRepo.GetForEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		snapshot.ImageIDs = append(snapshot.ImageIDs, img.ID)
	}

	joins, err := e.articleRepo.GetJoinsForEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, j := range joins {
		snapshot.ArticleEntityIDs = append(snapshot.ArticleEntityIDs, j.ID)
	}

	return snapshot, nil
}
