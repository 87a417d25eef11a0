package alias

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Repository handles alias persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new alias repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetForEntity returns the entity's aliases, primary first.
func (r *Repository) GetForEntity(ctx context.Context, entityID int64) ([]models.Alias, error) {
	ctx, span := tracing.StartSpan(ctx, "alias.Repository.GetForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_id", "name", "is_primary", "created_at")
	sb.From("aliases")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("is_primary DESC", "id ASC")

	query, args := sb.Build()
	var aliases []models.Alias
	if err := r.db.SelectContext(ctx, &aliases, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get aliases")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get aliases")
	}

	return aliases, nil
}

// Create adds a non-primary alias. Alias names are case-sensitive; the
// caller is responsible for dedup against existing names.
func (r *Repository) Create(ctx context.Context, entityID int64, name string) (*models.Alias, error) {
	ctx, span := tracing.StartSpan(ctx, "alias.Repository.Create")
	defer span.End()

	query := `
		INSERT INTO aliases (entity_id, name, is_primary, created_at)
		VALUES ($1, $2, false, $3)
		RETURNING id, entity_id, name, is_primary, created_at`

	var a models.Alias
	if err := r.db.GetContext(ctx, &a, query, entityID, name, time.Now().UTC()); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create alias")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create alias")
	}

	return &a, nil
}

// CreatePrimary adds the primary alias for a freshly created entity.
func (r *Repository) CreatePrimary(ctx context.Context, entityID int64, name string) (*models.Alias, error) {
	ctx, span := tracing.StartSpan(ctx, "alias.Repository.CreatePrimary")
	defer span.End()

	query := `
		INSERT INTO aliases (entity_id, name, is_primary, created_at)
		VALUES ($1, $2, true, $3)
		RETURNING id, entity_id, name, is_primary, created_at`

	var a models.Alias
	if err := r.db.GetContext(ctx, &a, query, entityID, name, time.Now().UTC()); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create primary alias")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create primary alias")
	}

	return &a, nil
}

// Delete removes an alias by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "alias.Repository.Delete")
	defer span.End()

	query := `DELETE FROM aliases WHERE id = $1 AND is_primary = false`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete alias")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete alias")
	}

	return nil
}
