package article

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

// Repository handles article-entity join persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new article repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetJoinsForEntity returns the entity's article join rows.
func (r *Repository) GetJoinsForEntity(ctx context.Context, entityID int64) ([]models.ArticleEntity, error) {
	ctx, span := tracing.StartSpan(ctx, "article.Repository.GetJoinsForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "article_id", "entity_id")
	sb.From("article_entities")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var joins []models.ArticleEntity
	if err := r.db.SelectContext(ctx, &joins, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get article joins")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get article joins")
	}

	return joins, nil
}

// GetArticleIDsForEntity returns the distinct article ids already joined to
// the entity.
func (r *Repository) GetArticleIDsForEntity(ctx context.Context, entityID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "article.Repository.GetArticleIDsForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("article_id")
	sb.From("article_entities")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("article_id ASC")

	query, args := sb.Build()
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get article ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get article ids")
	}

	return ids, nil
}

// RepointJoin moves one article join row to another entity.
func (r *Repository) RepointJoin(ctx context.Context, joinID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "article.Repository.RepointJoin")
	defer span.End()

	query := `UPDATE article_entities SET entity_id = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, toEntityID, joinID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint article join")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint article join")
	}

	return nil
}
