package extension

import (
	"context"
	"encoding/json"
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

// Repository handles extension record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new extension record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetForEntity returns every extension record attached to the entity.
func (r *Repository) GetForEntity(ctx context.Context, entityID int64) ([]models.ExtensionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "extension.Repository.GetForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_id", "definition_id", "fields", "created_at", "updated_at")
	sb.From("extension_records")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("definition_id ASC")

	query, args := sb.Build()
	var records []models.ExtensionRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get extension records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get extension records")
	}

	return records, nil
}

// Get returns the entity's record for one definition, or a 404.
func (r *Repository) Get(ctx context.Context, entityID int64, definitionID int) (*models.ExtensionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "extension.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_id", "definition_id", "fields", "created_at", "updated_at")
	sb.From("extension_records")
	sb.Where(
		sb.Equal("entity_id", entityID),
		sb.Equal("definition_id", definitionID),
	)

	query, args := sb.Build()
	var record models.ExtensionRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %d has no extension %d", entityID, definitionID))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get extension record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get extension record")
	}

	return &record, nil
}

// Create adds an extension record to an entity. Creating a record the
// entity already has is a no-op thanks to the uniqueness constraint.
func (r *Repository) Create(ctx context.Context, entityID int64, definitionID int, fields json.RawMessage) error {
	ctx, span := tracing.StartSpan(ctx, "extension.Repository.Create")
	defer span.End()

	if len(fields) == 0 {
		fields = json.RawMessage(`{}`)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO extension_records (entity_id, definition_id, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (entity_id, definition_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, entityID, definitionID, fields, now); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create extension record")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create extension record")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"entity_id": entityID, "definition_id": definitionID}).Info("Created extension record")
	return nil
}

// UpdateFields replaces the stored field map for one record.
func (r *Repository) UpdateFields(ctx context.Context, entityID int64, definitionID int, fields json.RawMessage) error {
	ctx, span := tracing.StartSpan(ctx, "extension.Repository.UpdateFields")
	defer span.End()

	query := `
		UPDATE extension_records
		SET fields = $1, updated_at = $2
		WHERE entity_id = $3 AND definition_id = $4`

	result, err := r.db.ExecContext(ctx, query, fields, time.Now().UTC(), entityID, definitionID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update extension fields")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update extension fields")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %d has no extension %d", entityID, definitionID))
	}

	return nil
}

// Delete removes an extension record from an entity.
func (r *Repository) Delete(ctx context.Context, entityID int64, definitionID int) error {
	ctx, span := tracing.StartSpan(ctx, "extension.Repository.Delete")
	defer span.End()

	query := `DELETE FROM extension_records WHERE entity_id = $1 AND definition_id = $2`
	if _, err := r.db.ExecContext(ctx, query, entityID, definitionID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete extension record")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete extension record")
	}

	return nil
}

// HasExtension reports whether the entity carries the definition.
func (r *Repository) HasExtension(ctx context.Context, entityID int64, definitionID int) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "extension.Repository.HasExtension")
	defer span.End()

	var count int
	query := `SELECT COUNT(*) FROM extension_records WHERE entity_id = $1 AND definition_id = $2`
	if err := r.db.GetContext(ctx, &count, query, entityID, definitionID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check extension")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check extension")
	}

	return count > 0, nil
}
