package donationmatch

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

// Repository handles external donation match rows. Matches carry their own
// donor and recipient entity ids alongside the backing relationship, so both
// sides have to move together when an entity is absorbed.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new donation match repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

var osMatchColumns = []string{
	"id", "os_donation_id", "donor_id", "recip_id", "committee_id", "relationship_id",
	"created_at", "updated_at",
}

var nyMatchColumns = []string{
	"id", "ny_disclosure_id", "donor_id", "recip_id", "relationship_id",
	"created_at", "updated_at",
}

// GetOsMatchesForDonor returns federal donation matches where the entity is
// the donor.
func (r *Repository) GetOsMatchesForDonor(ctx context.Context, entityID int64) ([]models.OsMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.GetOsMatchesForDonor")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(osMatchColumns...)
	sb.From("os_matches")
	sb.Where(sb.Equal("donor_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var matches []models.OsMatch
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get donor matches")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get donor matches")
	}

	return matches, nil
}

// GetOsMatchesForRecipient returns federal donation matches where the entity
// is the recipient.
func (r *Repository) GetOsMatchesForRecipient(ctx context.Context, entityID int64) ([]models.OsMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.GetOsMatchesForRecipient")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(osMatchColumns...)
	sb.From("os_matches")
	sb.Where(sb.Equal("recip_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var matches []models.OsMatch
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get recipient matches")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get recipient matches")
	}

	return matches, nil
}

// GetNyMatchesForDonor returns state disclosure matches where the entity is
// the donor.
func (r *Repository) GetNyMatchesForDonor(ctx context.Context, entityID int64) ([]models.NyMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.GetNyMatchesForDonor")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(nyMatchColumns...)
	sb.From("ny_matches")
	sb.Where(sb.Equal("donor_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var matches []models.NyMatch
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get state donor matches")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get state donor matches")
	}

	return matches, nil
}

// GetNyMatchesForRecipient returns state disclosure matches where the entity
// is the recipient.
func (r *Repository) GetNyMatchesForRecipient(ctx context.Context, entityID int64) ([]models.NyMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.GetNyMatchesForRecipient")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(nyMatchColumns...)
	sb.From("ny_matches")
	sb.Where(sb.Equal("recip_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var matches []models.NyMatch
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get state recipient matches")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get state recipient matches")
	}

	return matches, nil
}

// HasMatchesForRelationship reports whether any federal or state match backs
// the relationship. Matched relationships are synthesized and must not be
// deleted by hand.
func (r *Repository) HasMatchesForRelationship(ctx context.Context, relationshipID int64) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.HasMatchesForRelationship")
	defer span.End()

	query := `
		SELECT EXISTS (SELECT 1 FROM os_matches WHERE relationship_id = $1)
			OR EXISTS (SELECT 1 FROM ny_matches WHERE relationship_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, relationshipID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check matches for relationship")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check matches for relationship")
	}

	return exists, nil
}

// RepointOsDonor moves a federal match's donor to another entity.
func (r *Repository) RepointOsDonor(ctx context.Context, matchID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.RepointOsDonor")
	defer span.End()

	query := `UPDATE os_matches SET donor_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, toEntityID, time.Now().UTC(), matchID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint donor match")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint donor match")
	}

	return nil
}

// RepointOsRecipient moves a federal match's recipient to another entity.
func (r *Repository) RepointOsRecipient(ctx context.Context, matchID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.RepointOsRecipient")
	defer span.End()

	query := `UPDATE os_matches SET recip_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, toEntityID, time.Now().UTC(), matchID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint recipient match")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint recipient match")
	}

	return nil
}

// RepointNyDonor moves a state match's donor to another entity.
func (r *Repository) RepointNyDonor(ctx context.Context, matchID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.RepointNyDonor")
	defer span.End()

	query := `UPDATE ny_matches SET donor_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, toEntityID, time.Now().UTC(), matchID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint state donor match")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint state donor match")
	}

	return nil
}

// RepointNyRecipient moves a state match's recipient to another entity.
func (r *Repository) RepointNyRecipient(ctx context.Context, matchID, toEntityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "donationmatch.Repository.RepointNyRecipient")
	defer span.End()

	query := `UPDATE ny_matches SET recip_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, toEntityID, time.Now().UTC(), matchID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to repoint state recipient match")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to repoint state recipient match")
	}

	return nil
}
