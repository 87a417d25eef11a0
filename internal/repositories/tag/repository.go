package tag

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

// Repository handles tag and tagging persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new tag repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a tag by id.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Tag, error) {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "description", "restricted")
	sb.From("tags")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var t models.Tag
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("tag %d not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get tag")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get tag")
	}

	return &t, nil
}

// All returns every tag. Feeds the lookup cache.
func (r *Repository) All(ctx context.Context) ([]models.Tag, error) {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.All")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "description", "restricted")
	sb.From("tags")
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list tags")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list tags")
	}

	return tags, nil
}

// Create inserts a new tag. Names are globally unique.
func (r *Repository) Create(ctx context.Context, name string, description *string, restricted bool) (*models.Tag, error) {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.Create")
	defer span.End()

	query := `
		INSERT INTO tags (name, description, restricted)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, restricted`

	var t models.Tag
	if err := r.db.GetContext(ctx, &t, query, name, description, restricted); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create tag")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create tag")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": t.ID, "name": t.Name}).Info("Created tag")
	return &t, nil
}

// GetTagIDsFor returns the tag ids attached to a tagable.
func (r *Repository) GetTagIDsFor(ctx context.Context, tagableClass string, tagableID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.GetTagIDsFor")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("tag_id")
	sb.From("taggings")
	sb.Where(
		sb.Equal("tagable_class", tagableClass),
		sb.Equal("tagable_id", tagableID),
	)
	sb.OrderBy("tag_id ASC")

	query, args := sb.Build()
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get tag ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get tag ids")
	}

	return ids, nil
}

// AddTagging attaches a tag to a tagable, skipping duplicates.
func (r *Repository) AddTagging(ctx context.Context, tagID int64, tagableClass string, tagableID int64) error {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.AddTagging")
	defer span.End()

	query := `
		INSERT INTO taggings (tag_id, tagable_class, tagable_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (tag_id, tagable_class, tagable_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, tagID, tagableClass, tagableID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to add tagging")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add tagging")
	}

	return nil
}

// RemoveTagging detaches a tag from a tagable.
func (r *Repository) RemoveTagging(ctx context.Context, tagID int64, tagableClass string, tagableID int64) error {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.RemoveTagging")
	defer span.End()

	query := `DELETE FROM taggings WHERE tag_id = $1 AND tagable_class = $2 AND tagable_id = $3`
	if _, err := r.db.ExecContext(ctx, query, tagID, tagableClass, tagableID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to remove tagging")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove tagging")
	}

	return nil
}

// GetTaggingIDsForEntity returns the entity's tagging row ids for the
// association snapshot.
func (r *Repository) GetTaggingIDsForEntity(ctx context.Context, entityID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.GetTaggingIDsForEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("taggings")
	sb.Where(
		sb.Equal("tagable_class", models.TagableEntity),
		sb.Equal("tagable_id", entityID),
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get tagging ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get tagging ids")
	}

	return ids, nil
}

// EntityRelationshipCount pairs a tagged entity with the number of its
// links whose other endpoint carries the same tag.
type EntityRelationshipCount struct {
	EntityID   int64 `db:"entity_id"`
	NumRelated int   `db:"num_related"`
}

// EntitiesByRelationshipCount ranks entities of one primary type tagged
// with the tag by how connected they are to other entities with the same
// tag.
func (r *Repository) EntitiesByRelationshipCount(ctx context.Context, tagID int64, primaryExt string) ([]EntityRelationshipCount, error) {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.EntitiesByRelationshipCount")
	defer span.End()

	if primaryExt != models.PrimaryExtPerson && primaryExt != models.PrimaryExtOrg {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid primary extension %q", primaryExt))
	}

	// Join each tagged entity to its links, then check whether the other
	// endpoint of every link carries the same tag. Links to untagged
	// entities contribute zero.
	query := `
		SELECT tagged.tagable_id AS entity_id,
		       SUM(CASE WHEN tagged.entity1_id IS NULL THEN 0
		                WHEN other_taggings.id IS NULL THEN 0
		                ELSE 1 END) AS num_related
		FROM (
		    SELECT taggings.tagable_id, links.entity1_id, links.entity2_id
		    FROM taggings
		    LEFT JOIN links ON links.entity1_id = taggings.tagable_id
		    WHERE taggings.tag_id = $1 AND taggings.tagable_class = 'Entity'
		) AS tagged
		LEFT JOIN taggings AS other_taggings
		    ON tagged.entity2_id = other_taggings.tagable_id
		    AND other_taggings.tag_id = $1
		    AND other_taggings.tagable_class = 'Entity'
		JOIN entities ON entities.id = tagged.tagable_id
		WHERE entities.primary_ext = $2 AND entities.deleted_at IS NULL
		GROUP BY tagged.tagable_id
		ORDER BY num_related DESC, entity_id ASC`

	var counts []EntityRelationshipCount
	if err := r.db.SelectContext(ctx, &counts, query, tagID, primaryExt); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to rank entities by relationship count")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to rank entities")
	}

	return counts, nil
}

// GetEditableTagIDsForUser returns the restricted-tag ids the user may edit.
func (r *Repository) GetEditableTagIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.GetEditableTagIDsForUser")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("tag_id")
	sb.From("user_tag_permissions")
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("tag_id ASC")

	query, args := sb.Build()
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get editable tag ids")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get editable tag ids")
	}

	return ids, nil
}

// SetEditableTagIDsForUser replaces the user's restricted-tag grants.
func (r *Repository) SetEditableTagIDsForUser(ctx context.Context, userID int64, tagIDs []int64) error {
	ctx, span := tracing.StartSpan(ctx, "tag.Repository.SetEditableTagIDsForUser")
	defer span.End()

	ctxTx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.ExecContext(ctxTx, `DELETE FROM user_tag_permissions WHERE user_id = $1`, userID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to clear tag grants")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update tag grants")
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctxTx, `INSERT INTO user_tag_permissions (user_id, tag_id) VALUES ($1, $2)`, userID, tagID); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to insert tag grant")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update tag grants")
		}
	}

	return tx.Commit(ctxTx)
}
