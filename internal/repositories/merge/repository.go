package merge

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Repository persists merge provenance records
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new merge record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateRecord writes one provenance row per executed merge.
func (r *Repository) CreateRecord(ctx context.Context, sourceID, destID, performedBy int64, report *models.MergeReport) (*models.MergeRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "merge.Repository.CreateRecord")
	defer span.End()

	raw, err := json.Marshal(report)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to marshal merge report")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to record merge")
	}

	query := `
		INSERT INTO merge_records (source_id, dest_id, performed_by, report, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, source_id, dest_id, performed_by, report, created_at`

	var record models.MergeRecord
	if err := r.db.GetContext(ctx, &record, query, sourceID, destID, performedBy, raw, time.Now().UTC()); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create merge record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to record merge")
	}

	return &record, nil
}

// GetRecordsForEntity returns merge records touching the entity on either
// side, newest first.
func (r *Repository) GetRecordsForEntity(ctx context.Context, entityID int64) ([]models.MergeRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "merge.Repository.GetRecordsForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "source_id", "dest_id", "performed_by", "report", "created_at")
	sb.From("merge_records")
	sb.Where(
		sb.Or(
			sb.Equal("source_id", entityID),
			sb.Equal("dest_id", entityID),
		),
	)
	sb.OrderBy("created_at DESC")

	query, args := sb.Build()
	var records []models.MergeRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get merge records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get merge records")
	}

	return records, nil
}
