package relationship

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Repository handles relationship and link persistence. Links are the
// per-direction projection of relationships and are regenerated whenever a
// relationship's endpoints change.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new relationship repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// DB exposes the underlying database handle for transactional operations.
func (r *Repository) DB() database.DB {
	return r.db
}

var relationshipColumns = []string{
	"id", "entity1_id", "entity2_id", "category_id", "description1", "description2",
	"amount", "start_date", "end_date", "is_current", "notes",
	"created_by", "created_at", "updated_at", "deleted_at",
}

// Get retrieves a live relationship by id.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(relationshipColumns...)
	sb.From("relationships")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var rel models.Relationship
	if err := r.db.GetContext(ctx, &rel, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get relationship")
	}

	return &rel, nil
}

// Create inserts a relationship and both of its links, and bumps the
// denormalized link counters on the endpoints.
func (r *Repository) Create(ctx context.Context, req *models.CreateRelationshipRequest, createdBy int64) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Create")
	defer span.End()

	ctxTx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	query := `
		INSERT INTO relationships (entity1_id, entity2_id, category_id, description1, description2,
		                           amount, start_date, end_date, is_current, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, entity1_id, entity2_id, category_id, description1, description2,
		          amount, start_date, end_date, is_current, notes, created_by, created_at, updated_at, deleted_at`

	var rel models.Relationship
	if err := tx.GetContext(ctxTx, &rel, query,
		req.Entity1ID, req.Entity2ID, req.CategoryID, req.Description1, req.Description2,
		req.Amount, req.StartDate, req.EndDate, req.IsCurrent, createdBy, now); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create relationship")
	}

	if err := r.insertLinks(ctxTx, tx, &rel); err != nil {
		return nil, err
	}

	bump := `UPDATE entities SET link_count = link_count + 1 WHERE id IN ($1, $2)`
	if _, err := tx.ExecContext(ctxTx, bump, rel.Entity1ID, rel.Entity2ID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to bump link counts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create relationship")
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit relationship")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": rel.ID, "category_id": rel.CategoryID}).Info("Created relationship")
	return &rel, nil
}

func (r *Repository) insertLinks(ctx context.Context, tx database.Tx, rel *models.Relationship) error {
	query := `
		INSERT INTO links (entity1_id, entity2_id, relationship_id, category_id, is_reverse)
		VALUES ($1, $2, $3, $4, false), ($2, $1, $3, $4, true)`

	if _, err := tx.ExecContext(ctx, query, rel.Entity1ID, rel.Entity2ID, rel.ID, rel.CategoryID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to insert links")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert links")
	}
	return nil
}

// GetForEntity returns every live relationship where the entity is an
// endpoint.
func (r *Repository) GetForEntity(ctx context.Context, entityID int64) ([]models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.GetForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(relationshipColumns...)
	sb.From("relationships")
	sb.Where(
		sb.Or(
			sb.Equal("entity1_id", entityID),
			sb.Equal("entity2_id", entityID),
		),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var rels []models.Relationship
	if err := r.db.SelectContext(ctx, &rels, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get relationships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get relationships")
	}

	return rels, nil
}

// GetRelationshipIDsForEntity returns the ids for the association snapshot.
func (r *Repository) GetRelationshipIDsForEntity(ctx context.Context, entityID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.GetRelationshipIDsForEntity")
	defer span.End()

	query := `
		SELECT id FROM relationships
		WHERE (entity1_id = $1 OR entity2_id = $1) AND deleted_at IS NULL
		ORDER BY id ASC`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, entityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get relationship ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get relationship ids")
	}

	return ids, nil
}

// TripletExists reports whether a live relationship with the exact
// (entity1, entity2, category) triplet exists.
func (r *Repository) TripletExists(ctx context.Context, t models.Triplet) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.TripletExists")
	defer span.End()

	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM relationships
			WHERE entity1_id = $1 AND entity2_id = $2 AND category_id = $3 AND deleted_at IS NULL
		)`

	if err := r.db.GetContext(ctx, &exists, query, t.Entity1ID, t.Entity2ID, t.CategoryID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check triplet")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check triplet")
	}

	return exists, nil
}

// RepointEndpoint replaces one endpoint of a relationship and regenerates
// its links. The other endpoint is left unchanged. Joins the caller's
// transaction when one is carried in ctx.
func (r *Repository) RepointEndpoint(ctx context.Context, relationshipID, fromEntityID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.RepointEndpoint")
	defer span.End()

	query := `
		UPDATE relationships
		SET entity1_id = CASE WHEN entity1_id = $1 THEN $2 ELSE entity1_id END,
		    entity2_id = CASE WHEN entity2_id = $1 THEN $2 ELSE entity2_id END,
		    updated_at = $3
		WHERE id = $4 AND (entity1_id = $1 OR entity2_id = $1)`

	result, err := r.db.ExecContext(ctx, query, fromEntityID, toEntityID, time.Now().UTC(), relationshipID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint relationship")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint relationship")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("entity %d is not an endpoint of relationship %d", fromEntityID, relationshipID))
	}

	linkQuery := `
		UPDATE links
		SET entity1_id = CASE WHEN entity1_id = $1 THEN $2 ELSE entity1_id END,
		    entity2_id = CASE WHEN entity2_id = $1 THEN $2 ELSE entity2_id END
		WHERE relationship_id = $3`

	if _, err := r.db.ExecContext(ctx, linkQuery, fromEntityID, toEntityID, relationshipID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint links")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint links")
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE entities SET link_count = GREATEST(link_count - 1, 0) WHERE id = $1`, fromEntityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to adjust link count")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint relationship")
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE entities SET link_count = link_count + 1 WHERE id = $1`, toEntityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to adjust link count")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint relationship")
	}

	return nil
}

// Repoint runs RepointEndpoint in its own transaction.
func (r *Repository) Repoint(ctx context.Context, relationshipID, fromEntityID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Repoint")
	defer span.End()

	ctxTx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := r.RepointEndpoint(ctxTx, relationshipID, fromEntityID, toEntityID); err != nil {
		return err
	}

	return tx.Commit(ctxTx)
}

// SoftDelete marks a relationship deleted and removes its links.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.SoftDelete")
	defer span.End()

	ctxTx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var rel models.Relationship
	getQuery := `SELECT id, entity1_id, entity2_id, category_id FROM relationships WHERE id = $1 AND deleted_at IS NULL`
	if err := tx.GetContext(ctxTx, &rel, getQuery, id); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("relationship %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get relationship")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationship")
	}

	if _, err := tx.ExecContext(ctxTx, `UPDATE relationships SET deleted_at = $1, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to soft delete relationship")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationship")
	}

	if _, err := tx.ExecContext(ctxTx, `DELETE FROM links WHERE relationship_id = $1`, id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete links")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationship")
	}

	if _, err := tx.ExecContext(ctxTx, `UPDATE entities SET link_count = GREATEST(link_count - 1, 0) WHERE id IN ($1, $2)`, rel.Entity1ID, rel.Entity2ID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to adjust link counts")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationship")
	}

	if err := tx.Commit(ctxTx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit deletion")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Soft deleted relationship")
	return nil
}

// SoftDeleteForEntity marks every live relationship touching the entity
// deleted, removes their links, and decrements counterpart link counts.
// Returns the affected relationship ids. Joins the caller's transaction.
func (r *Repository) SoftDeleteForEntity(ctx context.Context, entityID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.SoftDeleteForEntity")
	defer span.End()

	var rels []models.Relationship
	query := `
		SELECT id, entity1_id, entity2_id, category_id FROM relationships
		WHERE (entity1_id = $1 OR entity2_id = $1) AND deleted_at IS NULL
		ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &rels, query, entityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load relationships for deletion")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationships")
	}

	if len(rels) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rels))
	now := time.Now().UTC()
	for _, rel := range rels {
		ids = append(ids, rel.ID)

		if _, err := r.db.ExecContext(ctx, `UPDATE relationships SET deleted_at = $1, updated_at = $1 WHERE id = $2`, now, rel.ID); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to soft delete relationship")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationships")
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE relationship_id = $1`, rel.ID); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to delete links")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationships")
		}

		other := rel.Entity1ID
		if other == entityID {
			other = rel.Entity2ID
		}
		if _, err := r.db.ExecContext(ctx, `UPDATE entities SET link_count = GREATEST(link_count - 1, 0) WHERE id = $1`, other); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to adjust link count")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationships")
		}
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE entities SET link_count = 0 WHERE id = $1`, entityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to reset link count")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationships")
	}

	return ids, nil
}

// RestoreByIDs clears the deletion marks on the given relationships,
// regenerates their links, and restores link counts on both endpoints.
// Joins the caller's transaction.
func (r *Repository) RestoreByIDs(ctx context.Context, ids []int64) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.RestoreByIDs")
	defer span.End()

	for _, id := range ids {
		var rel models.Relationship
		query := `SELECT id, entity1_id, entity2_id, category_id FROM relationships WHERE id = $1 AND deleted_at IS NOT NULL`
		if err := r.db.GetContext(ctx, &rel, query, id); err != nil {
			if err.Error() == "sql: no rows in result set" {
				continue // already live or gone
			}
			r.logger.WithContext(ctx).WithError(err).Error("Failed to load relationship for restore")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to restore relationships")
		}

		if _, err := r.db.ExecContext(ctx, `UPDATE relationships SET deleted_at = NULL, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to restore relationship")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to restore relationships")
		}

		insert := `
			INSERT INTO links (entity1_id, entity2_id, relationship_id, category_id, is_reverse)
			VALUES ($1, $2, $3, $4, false), ($2, $1, $3, $4, true)
			ON CONFLICT DO NOTHING`
		if _, err := r.db.ExecContext(ctx, insert, rel.Entity1ID, rel.Entity2ID, rel.ID, rel.CategoryID); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to regenerate links")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to restore relationships")
		}

		if _, err := r.db.ExecContext(ctx, `UPDATE entities SET link_count = link_count + 1 WHERE id IN ($1, $2)`, rel.Entity1ID, rel.Entity2ID); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to adjust link count")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to restore relationships")
		}
	}

	return nil
}

// GetLinksForEntity returns the entity's outbound links with their
// relationships hydrated, for the read-side grouping.
func (r *Repository) GetLinksForEntity(ctx context.Context, entityID int64) ([]models.Link, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.GetLinksForEntity")
	defer span.End()

	query := `
		SELECT l.id, l.entity1_id, l.entity2_id, l.relationship_id, l.category_id, l.is_reverse,
		       r.id AS "rel.id", r.entity1_id AS "rel.entity1_id", r.entity2_id AS "rel.entity2_id",
		       r.category_id AS "rel.category_id", r.description1 AS "rel.description1",
		       r.description2 AS "rel.description2", r.amount AS "rel.amount",
		       r.start_date AS "rel.start_date", r.end_date AS "rel.end_date",
		       r.is_current AS "rel.is_current", r.notes AS "rel.notes",
		       r.created_by AS "rel.created_by", r.created_at AS "rel.created_at",
		       r.updated_at AS "rel.updated_at"
		FROM links l
		JOIN relationships r ON r.id = l.relationship_id
		WHERE l.entity1_id = $1 AND r.deleted_at IS NULL
		ORDER BY l.id ASC`

	rows, err := r.db.QueryxContext(ctx, query, entityID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get links")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get links")
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var row struct {
			models.Link
			Rel models.Relationship `db:"rel"`
		}
		if err := rows.StructScan(&row); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to scan link")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get links")
		}
		link := row.Link
		rel := row.Rel
		link.Relationship = &rel
		links = append(links, link)
	}

	return links, nil
}
