package entity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/extensions"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Repository handles entity persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger

	// resolveMaxDepth bounds merged_id chain resolution; a longer chain is
	// treated as data corruption.
	resolveMaxDepth int
}

// NewRepository creates a new entity repository
func NewRepository(db database.DB, logger ectologger.Logger, resolveMaxDepth int) *Repository {
	if resolveMaxDepth <= 0 {
		resolveMaxDepth = 10
	}
	return &Repository{
		db:              db,
		logger:          logger,
		resolveMaxDepth: resolveMaxDepth,
	}
}

// DB exposes the underlying database handle for transactional operations.
func (r *Repository) DB() database.DB {
	return r.db
}

var entityColumns = []string{
	"id", "name", "primary_ext", "blurb", "summary", "website",
	"start_date", "end_date", "is_current", "link_count", "merged_id",
	"created_by", "created_at", "updated_at", "deleted_at",
}

// Create inserts a new entity along with its primary alias and primary
// extension record.
func (r *Repository) Create(ctx context.Context, req *models.CreateEntityRequest, createdBy int64) (*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.Create")
	defer span.End()

	def, err := extensions.DefinitionByName(req.PrimaryExt)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("unknown primary extension %q", req.PrimaryExt))
	}

	ctxTx, tx, err := r.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to begin transaction")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create entity")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	query := `
		INSERT INTO entities (name, primary_ext, blurb, start_date, end_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + "id, name, primary_ext, blurb, summary, website, start_date, end_date, is_current, link_count, merged_id, created_by, created_at, updated_at, deleted_at"

	var entity models.Entity
	if err := tx.GetContext(ctxTx, &entity, query, req.Name, req.PrimaryExt, req.Blurb, req.StartDate, req.EndDate, createdBy, now); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create entity")
	}

	aliasQuery := `INSERT INTO aliases (entity_id, name, is_primary, created_at) VALUES ($1, $2, true, $3)`
	if _, err := tx.ExecContext(ctxTx, aliasQuery, entity.ID, entity.Name, now); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create primary alias")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create entity")
	}

	extQuery := `INSERT INTO extension_records (entity_id, definition_id, created_at, updated_at) VALUES ($1, $2, $3, $3)`
	if _, err := tx.ExecContext(ctxTx, extQuery, entity.ID, def.ID, now); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create primary extension record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create entity")
	}

	if err := tx.Commit(ctxTx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit entity create")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create entity")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": entity.ID, "name": entity.Name}).Info("Created entity")
	return &entity, nil
}

// Get retrieves a live entity by id.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(entityColumns...)
	sb.From("entities")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var entity models.Entity
	if err := r.db.GetContext(ctx, &entity, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get entity")
	}

	return &entity, nil
}

// GetWithDeleted retrieves an entity by id regardless of deletion state.
func (r *Repository) GetWithDeleted(ctx context.Context, id int64) (*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.GetWithDeleted")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(entityColumns...)
	sb.From("entities")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var entity models.Entity
	if err := r.db.GetContext(ctx, &entity, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get entity")
	}

	return &entity, nil
}

// List returns a page of live entities.
func (r *Repository) List(ctx context.Context, page, pageSize int) (*models.EntityListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(entityColumns...)
	sb.From("entities")
	sb.Where(sb.IsNull("deleted_at"))
	sb.OrderBy("id ASC")
	sb.Limit(pageSize)
	sb.Offset((page - 1) * pageSize)

	query, args := sb.Build()
	var entities []models.Entity
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list entities")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list entities")
	}

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("entities")
	countSb.Where(countSb.IsNull("deleted_at"))

	countQuery, countArgs := countSb.Build()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count entities")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list entities")
	}

	return &models.EntityListResponse{
		Items:      entities,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Update applies a partial update to a live entity.
func (r *Repository) Update(ctx context.Context, id int64, req *models.UpdateEntityRequest) (*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.Update")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("entities")

	assignments := []string{sb.Assign("updated_at", time.Now().UTC())}
	if req.Name != nil {
		assignments = append(assignments, sb.Assign("name", *req.Name))
	}
	if req.Blurb != nil {
		assignments = append(assignments, sb.Assign("blurb", *req.Blurb))
	}
	if req.Summary != nil {
		assignments = append(assignments, sb.Assign("summary", *req.Summary))
	}
	if req.Website != nil {
		assignments = append(assignments, sb.Assign("website", *req.Website))
	}
	if req.StartDate != nil {
		assignments = append(assignments, sb.Assign("start_date", *req.StartDate))
	}
	if req.EndDate != nil {
		assignments = append(assignments, sb.Assign("end_date", *req.EndDate))
	}

	sb.Set(assignments...)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update entity")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %d not found", id))
	}

	return r.Get(ctx, id)
}

// LockPair locks both entity rows for update, ordered by ascending id so
// two concurrent merges over the same pair cannot deadlock. Returns the
// locked rows keyed by id.
func (r *Repository) LockPair(ctx context.Context, firstID, secondID int64) (map[int64]*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.LockPair")
	defer span.End()

	lo, hi := firstID, secondID
	if lo > hi {
		lo, hi = hi, lo
	}

	query := `
		SELECT id, name, primary_ext, blurb, summary, website, start_date, end_date, is_current,
		       link_count, merged_id, created_by, created_at, updated_at, deleted_at
		FROM entities
		WHERE id IN ($1, $2)
		ORDER BY id ASC
		FOR UPDATE`

	var entities []models.Entity
	if err := r.db.SelectContext(ctx, &entities, query, lo, hi); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to lock entity pair")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to lock entities")
	}

	out := make(map[int64]*models.Entity, len(entities))
	for i := range entities {
		out[entities[i].ID] = &entities[i]
	}
	return out, nil
}

// MarkMerged soft-deletes the source entity and points it at the entity it
// was merged into, storing the association snapshot alongside.
func (r *Repository) MarkMerged(ctx context.Context, sourceID, destID int64, snapshot *models.AssociationSnapshot) error {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.MarkMerged")
	defer span.End()

	data, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to serialize association snapshot")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to serialize association snapshot")
	}

	query := `
		UPDATE entities
		SET merged_id = $1, deleted_at = $2, association_snapshot = $3, updated_at = $2
		WHERE id = $4 AND deleted_at IS NULL AND merged_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, destID, time.Now().UTC(), data, sourceID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to mark entity merged")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark entity merged")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusConflict, fmt.Sprintf("entity %d is already merged or deleted", sourceID))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"source_id": sourceID, "dest_id": destID}).Info("Marked entity merged")
	return nil
}

// SoftDelete marks an entity deleted and stores its association snapshot.
func (r *Repository) SoftDelete(ctx context.Context, id int64, snapshot *models.AssociationSnapshot) error {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.SoftDelete")
	defer span.End()

	data, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to serialize association snapshot")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to serialize association snapshot")
	}

	query := `
		UPDATE entities
		SET deleted_at = $1, association_snapshot = $2, updated_at = $1
		WHERE id = $3 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), data, id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to soft delete entity")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete entity")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %d not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Soft deleted entity")
	return nil
}

// GetAssociationSnapshot reads back the snapshot stored at delete time.
func (r *Repository) GetAssociationSnapshot(ctx context.Context, id int64) (*models.AssociationSnapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.GetAssociationSnapshot")
	defer span.End()

	var raw []byte
	query := `SELECT association_snapshot FROM entities WHERE id = $1 AND deleted_at IS NOT NULL`
	if err := r.db.GetContext(ctx, &raw, query, id); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("deleted entity %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get association snapshot")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get association snapshot")
	}

	snapshot := &models.AssociationSnapshot{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, snapshot); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to parse association snapshot")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "corrupt association snapshot")
		}
	}

	return snapshot, nil
}

// Restore clears the soft-delete state. Merged entities cannot be restored
// here; unmerging is not supported.
func (r *Repository) Restore(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.Restore")
	defer span.End()

	query := `
		UPDATE entities
		SET deleted_at = NULL, association_snapshot = NULL, updated_at = $1
		WHERE id = $2 AND deleted_at IS NOT NULL AND merged_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to restore entity")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to restore entity")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusConflict, fmt.Sprintf("entity %d is not restorable", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Restored entity")
	return nil
}

// ResolveMerges follows the merged_id chain from the given entity to its
// terminal live entity. The walk is bounded; exceeding the bound or
// revisiting an id means the chain is corrupt.
func (r *Repository) ResolveMerges(ctx context.Context, id int64) (*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.ResolveMerges")
	defer span.End()

	seen := make(map[int64]bool)
	currentID := id

	for depth := 0; depth < r.resolveMaxDepth; depth++ {
		if seen[currentID] {
			r.logger.WithContext(ctx).WithFields(map[string]any{"id": id, "cycle_at": currentID}).Error("Merge chain contains a cycle")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("merge chain for entity %d contains a cycle", id))
		}
		seen[currentID] = true

		entity, err := r.GetWithDeleted(ctx, currentID)
		if err != nil {
			return nil, err
		}

		if entity.MergedID == nil {
			return entity, nil
		}
		currentID = *entity.MergedID
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id, "max_depth": r.resolveMaxDepth}).Error("Merge chain exceeds maximum depth")
	return nil, httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("merge chain for entity %d exceeds maximum depth", id))
}

// AdjustLinkCount bumps the denormalized link counter.
func (r *Repository) AdjustLinkCount(ctx context.Context, id int64, delta int) error {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.AdjustLinkCount")
	defer span.End()

	query := `UPDATE entities SET link_count = GREATEST(link_count + $1, 0) WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, delta, id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to adjust link count")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to adjust link count")
	}

	return nil
}
