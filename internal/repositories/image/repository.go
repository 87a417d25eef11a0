package image

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

// Repository handles image persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new image repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetForEntity returns the entity's images.
func (r *Repository) GetForEntity(ctx context.Context, entityID int64) ([]models.Image, error) {
	ctx, span := tracing.StartSpan(ctx, "image.Repository.GetForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_id", "title", "url", "is_featured")
	sb.From("images")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var images []models.Image
	if err := r.db.SelectContext(ctx, &images, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get images")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get images")
	}

	return images, nil
}

// Repoint moves every image from one entity to another. Featured flags are
// cleared on the way over so the destination keeps its own featured image.
func (r *Repository) Repoint(ctx context.Context, fromEntityID, toEntityID int64) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "image.Repository.Repoint")
	defer span.End()

	query := `UPDATE images SET entity_id = $1, is_featured = false WHERE entity_id = $2`
	result, err := r.db.ExecContext(ctx, query, toEntityID, fromEntityID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint images")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint images")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
