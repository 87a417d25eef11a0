package list

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

// Repository handles list and list-membership persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new list repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a live list by id.
func (r *Repository) Get(ctx context.Context, id int64) (*models.List, error) {
	ctx, span := tracing.StartSpan(ctx, "list.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "description", "access_level", "creator_user_id", "created_at", "deleted_at")
	sb.From("lists")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var l models.List
	if err := r.db.GetContext(ctx, &l, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("list %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get list")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get list")
	}

	return &l, nil
}

// Create inserts a new list.
func (r *Repository) Create(ctx context.Context, name string, description *string, accessLevel int, creatorUserID int64) (*models.List, error) {
	ctx, span := tracing.StartSpan(ctx, "list.Repository.Create")
	defer span.End()

	query := `
		INSERT INTO lists (name, description, access_level, creator_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, access_level, creator_user_id, created_at, deleted_at`

	var l models.List
	if err := r.db.GetContext(ctx, &l, query, name, description, accessLevel, creatorUserID, time.Now().UTC()); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create list")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create list")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": l.ID, "name": l.Name}).Info("Created list")
	return &l, nil
}

// GetListIDsForEntity returns the ids of every live list the entity
// belongs to.
func (r *Repository) GetListIDsForEntity(ctx context.Context, entityID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "list.Repository.GetListIDsForEntity")
	defer span.End()

	query := `
		SELECT le.list_id
		FROM list_entities le
		JOIN lists l ON l.id = le.list_id
		WHERE le.entity_id = $1 AND l.deleted_at IS NULL
		ORDER BY le.list_id ASC`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, entityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get list memberships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get list memberships")
	}

	return ids, nil
}

// AddMembership adds the entity to a list. Existing memberships are left
// untouched.
func (r *Repository) AddMembership(ctx context.Context, listID, entityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "list.Repository.AddMembership")
	defer span.End()

	query := `
		INSERT INTO list_entities (list_id, entity_id)
		VALUES ($1, $2)
		ON CONFLICT (list_id, entity_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, listID, entityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to add list membership")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add list membership")
	}

	return nil
}

// RemoveMembership removes the entity from a list.
func (r *Repository) RemoveMembership(ctx context.Context, listID, entityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "list.Repository.RemoveMembership")
	defer span.End()

	query := `DELETE FROM list_entities WHERE list_id = $1 AND entity_id = $2`
	if _, err := r.db.ExecContext(ctx, query, listID, entityID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to remove list membership")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove list membership")
	}

	return nil
}

// GetMembershipIDsForEntity returns the entity's membership row ids; used
// when snapshotting associations at delete time.
func (r *Repository) GetMembershipIDsForEntity(ctx context.Context, entityID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "list.Repository.GetMembershipIDsForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("list_entities")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get membership ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get membership ids")
	}

	return ids, nil
}
