package oscategory

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Repository handles external-dataset category joins
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new external category repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetJoinsForEntity returns the entity's external category join rows.
func (r *Repository) GetJoinsForEntity(ctx context.Context, entityID int64) ([]models.OsEntityCategory, error) {
	ctx, span := tracing.StartSpan(ctx, "oscategory.Repository.GetJoinsForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "category_id", "entity_id")
	sb.From("os_entity_categories")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var joins []models.OsEntityCategory
	if err := r.db.SelectContext(ctx, &joins, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get external category joins")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get external category joins")
	}

	return joins, nil
}

// GetCategoryIDsForEntity returns the category ids already joined to the
// entity.
func (r *Repository) GetCategoryIDsForEntity(ctx context.Context, entityID int64) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "oscategory.Repository.GetCategoryIDsForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("category_id")
	sb.From("os_entity_categories")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("category_id ASC")

	query, args := sb.Build()
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get external category ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get external category ids")
	}

	return ids, nil
}

// RepointJoin moves one category join row to another entity.
func (r *Repository) RepointJoin(ctx context.Context, joinID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "oscategory.Repository.RepointJoin")
	defer span.End()

	query := `UPDATE os_entity_categories SET entity_id = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, toEntityID, joinID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint external category join")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint external category join")
	}

	return nil
}

// DeleteJoin removes a duplicate category join row.
func (r *Repository) DeleteJoin(ctx context.Context, joinID int64) error {
	ctx, span := tracing.StartSpan(ctx, "oscategory.Repository.DeleteJoin")
	defer span.End()

	query := `DELETE FROM os_entity_categories WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, joinID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete external category join")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete external category join")
	}

	return nil
}
