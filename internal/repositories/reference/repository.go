package reference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/graft/pkg/database"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// ErrDocumentMissing is returned by Attach when the document does not exist.
var ErrDocumentMissing = errors.New("document does not exist")

// Repository handles document and reference persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new reference repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetDocument retrieves a document by id.
func (r *Repository) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	ctx, span := tracing.StartSpan(ctx, "reference.Repository.GetDocument")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "url", "name")
	sb.From("documents")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("document %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get document")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get document")
	}

	return &doc, nil
}

// GetDocumentIDsFor returns the document ids referenced by a referenceable.
func (r *Repository) GetDocumentIDsFor(ctx context.Context, referenceableType string, referenceableID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "reference.Repository.GetDocumentIDsFor")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("document_id")
	sb.From("document_references")
	sb.Where(
		sb.Equal("referenceable_type", referenceableType),
		sb.Equal("referenceable_id", referenceableID),
	)
	sb.OrderBy("document_id ASC")

	query, args := sb.Build()
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get document ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get document ids")
	}

	return ids, nil
}

// Attach connects a document to a referenceable, skipping duplicates. The
// document must exist; attaching a missing document is a client error.
func (r *Repository) Attach(ctx context.Context, documentID int64, referenceableType string, referenceableID int64) error {
	ctx, span := tracing.StartSpan(ctx, "reference.Repository.Attach")
	defer span.End()

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, documentID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check document")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to attach reference")
	}
	if !exists {
		return fmt.Errorf("document %d: %w", documentID, ErrDocumentMissing)
	}

	query := `
		INSERT INTO document_references (document_id, referenceable_type, referenceable_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id, referenceable_type, referenceable_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, documentID, referenceableType, referenceableID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to attach reference")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to attach reference")
	}

	return nil
}
