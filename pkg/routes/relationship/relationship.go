package relationship

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/graft/config"
	donationmatchrepo "github.com/Ramsey-B/graft/internal/repositories/donationmatch"
	relationshiprepo "github.com/Ramsey-B/graft/internal/repositories/relationship"
	userrepo "github.com/Ramsey-B/graft/internal/repositories/user"
	"github.com/Ramsey-B/graft/pkg/context"
	"github.com/Ramsey-B/graft/pkg/events"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/permissions"
)

var validate = validator.New()

// Register registers relationship routes
func Register(g *echo.Group) {
	g.POST("", CreateRelationship)
	g.GET("/:id", GetRelationship)
	g.DELETE("/:id", DeleteRelationship)
	g.GET("/:id/permissions", GetRelationshipPermissions)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func currentUser(c echo.Context) (*models.User, error) {
	ctx := c.Request().Context()

	userID := context.GetUserID(ctx)
	if userID == 0 {
		return nil, nil
	}

	ctx, repo, err := ectoinject.GetContext[*userrepo.Repository](ctx)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	return repo.Get(ctx, userID)
}

// CreateRelationship creates a relationship and its two directional links
func CreateRelationship(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateRelationshipRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Entity1ID == req.Entity2ID {
		return httperror.NewHTTPError(http.StatusUnprocessableEntity, "a relationship needs two distinct entities")
	}

	ctx, repo, err := ectoinject.GetContext[*relationshiprepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, &req, context.GetUserID(ctx))
	if err != nil {
		return err
	}

	// The event is best-effort; the write already committed.
	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil && emitter != nil {
		_ = emitter.RelationshipCreated(ctx, created)
	}

	return c.JSON(http.StatusCreated, created)
}

// GetRelationship gets a live relationship by ID
func GetRelationship(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*relationshiprepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rel, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rel)
}

// relationshipPermissions evaluates the actor's capabilities for one
// relationship, including the donation-match guard.
func relationshipPermissions(c echo.Context, id int64) (*models.Relationship, permissions.RelationshipPermissions, error) {
	ctx := c.Request().Context()

	actor, err := currentUser(c)
	if err != nil {
		return nil, permissions.RelationshipPermissions{}, err
	}

	ctx, cfg, err := ectoinject.GetContext[*config.Config](ctx)
	if err != nil {
		return nil, permissions.RelationshipPermissions{}, httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	ctx, repo, err := ectoinject.GetContext[*relationshiprepo.Repository](ctx)
	if err != nil {
		return nil, permissions.RelationshipPermissions{}, httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rel, err := repo.Get(ctx, id)
	if err != nil {
		return nil, permissions.RelationshipPermissions{}, err
	}

	ctx, matchRepo, err := ectoinject.GetContext[*donationmatchrepo.Repository](ctx)
	if err != nil {
		return nil, permissions.RelationshipPermissions{}, httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	hasMatches, err := matchRepo.HasMatchesForRelationship(ctx, id)
	if err != nil {
		return nil, permissions.RelationshipPermissions{}, err
	}

	policy := permissions.Policy{
		DeletionGracePeriod:   cfg.DeletionGracePeriod,
		DeletionLinkThreshold: cfg.DeletionLinkThreshold,
	}

	return rel, permissions.ForRelationship(policy, actor, rel, hasMatches), nil
}

// DeleteRelationship soft-deletes a relationship when the actor is permitted
func DeleteRelationship(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	rel, perms, err := relationshipPermissions(c, id)
	if err != nil {
		return err
	}
	if !perms.Deleteable {
		return httperror.NewHTTPError(http.StatusForbidden, fmt.Sprintf("not permitted to delete relationship %d", id))
	}

	ctx, repo, err := ectoinject.GetContext[*relationshiprepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil && emitter != nil {
		_ = emitter.RelationshipDeleted(ctx, rel)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetRelationshipPermissions returns the acting user's capabilities
func GetRelationshipPermissions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	_, perms, err := relationshipPermissions(c, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, perms)
}
