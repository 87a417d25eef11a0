package user

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Repository handles user lookups for permission checks
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new user repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type userRow struct {
	ID        int64                    `db:"id"`
	Username  string                   `db:"username"`
	Abilities database.JSONB[[]string] `db:"abilities"`
}

// Get retrieves a user with their abilities. Returns 404 for unknown ids.
func (r *Repository) Get(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "username", "abilities")
	sb.From("users")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("user %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get user")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get user")
	}

	return &models.User{
		ID:        row.ID,
		Username:  row.Username,
		Abilities: row.Abilities.GetValue(),
	}, nil
}
