package contactinfo

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

// Repository handles address, phone, and email persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contact info repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetAddresses returns the entity's addresses.
func (r *Repository) GetAddresses(ctx context.Context, entityID int64) ([]models.Address, error) {
	ctx, span := tracing.StartSpan(ctx, "contactinfo.Repository.GetAddresses")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_id", "street1", "street2", "city", "state", "country", "postal", "latitude", "longitude")
	sb.From("addresses")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var addresses []models.Address
	if err := r.db.SelectContext(ctx, &addresses, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get addresses")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get addresses")
	}

	return addresses, nil
}

// CreateAddress inserts a copy of the address for the given entity.
func (r *Repository) CreateAddress(ctx context.Context, entityID int64, a *models.Address) error {
	ctx, span := tracing.StartSpan(ctx, "contactinfo.Repository.CreateAddress")
	defer span.End()

	query := `
		INSERT INTO addresses (entity_id, street1, street2, city, state, country, postal, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := r.db.ExecContext(ctx, query, entityID, a.Street1, a.Street2, a.City, a.State, a.Country, a.Postal, a.Latitude, a.Longitude); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create address")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create address")
	}

	return nil
}

// GetPhones returns the entity's phone numbers.
func (r *Repository) GetPhones(ctx context.Context, entityID int64) ([]models.Phone, error) {
	ctx, span := tracing.StartSpan(ctx, "contactinfo.Repository.GetPhones")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_id", "number", "type")
	sb.From("phones")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var phones []models.Phone
	if err := r.db.SelectContext(ctx, &phones, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get phones")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get phones")
	}

	return phones, nil
}

// CreatePhone inserts a copy of the phone for the given entity.
func (r *Repository) CreatePhone(ctx context.Context, entityID int64, p *models.Phone) error {
	ctx, span := tracing.StartSpan(ctx, "contactinfo.Repository.CreatePhone")
	defer span.End()

	query := `INSERT INTO phones (entity_id, number, type) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, entityID, p.Number, p.Type); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create phone")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create phone")
	}

	return nil
}

// GetEmails returns the entity's email addresses.
func (r *Repository) GetEmails(ctx context.Context, entityID int64) ([]models.Email, error) {
	ctx, span := tracing.StartSpan(ctx, "contactinfo.Repository.GetEmails")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "entity_id", "address")
	sb.From("emails")
	sb.Where(sb.Equal("entity_id", entityID))
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var emails []models.Email
	if err := r.db.SelectContext(ctx, &emails, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get emails")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get emails")
	}

	return emails, nil
}

// CreateEmail inserts a copy of the email for the given entity.
func (r *Repository) CreateEmail(ctx context.Context, entityID int64, e *models.Email) error {
	ctx, span := tracing.StartSpan(ctx, "contactinfo.Repository.CreateEmail")
	defer span.End()

	query := `INSERT INTO emails (entity_id, address) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, entityID, e.Address); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create email")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create email")
	}

	return nil
}
