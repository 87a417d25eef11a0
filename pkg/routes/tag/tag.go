package tag

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	tagrepo "github.com/Ramsey-B/graft/internal/repositories/tag"
	userrepo "github.com/Ramsey-B/graft/internal/repositories/user"
	"github.com/Ramsey-B/graft/pkg/context"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/permissions"
)

var validate = validator.New()

// Register registers tag routes
func Register(g *echo.Group) {
	g.GET("", ListTags)
	g.POST("", CreateTag)
	g.GET("/:id", GetTag)
	g.GET("/:id/entities", GetTagEntities)
	g.GET("/:id/permissions", GetTagPermissions)
	g.PUT("/for/:class/:tagableID", UpdateTaggings)
	g.PUT("/grants/:userID", UpdateGrants)
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, "invalid "+name)
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

func tagableClass(c echo.Context) (string, error) {
	switch c.Param("class") {
	case "entities":
		return models.TagableEntity, nil
	case "lists":
		return models.TagableList, nil
	case "relationships":
		return models.TagableRelationship, nil
	default:
		return "", httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown tagable class %q", c.Param("class")))
	}
}

// ListTags lists all tags, or looks one up by name when ?name= is given.
// Name lookup tolerates case and dash/space differences.
func ListTags(c echo.Context) error {
	ctx := c.Request().Context()

	if name := c.QueryParam("name"); name != "" {
		_, cache, err := ectoinject.GetContext[*tagrepo.Cache](ctx)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
		}

		t, ok := cache.SearchByName(name)
		if !ok {
			return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("tag %q not found", name))
		}
		return c.JSON(http.StatusOK, t)
	}

	ctx, repo, err := ectoinject.GetContext[*tagrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	tags, err := repo.All(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tags)
}

// CreateTagRequest is the request body for creating a tag
type CreateTagRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Restricted  bool    `json:"restricted"`
}

// CreateTag creates a new tag. Admin only.
func CreateTag(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsAdmin() {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to create tags")
	}

	var req CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*tagrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, req.Name, req.Description, req.Restricted)
	if err != nil {
		return err
	}

	// New tags should be findable by name right away.
	_, cache, cacheErr := ectoinject.GetContext[*tagrepo.Cache](ctx)
	if cacheErr == nil {
		_ = cache.Refresh(ctx)
	}

	return c.JSON(http.StatusCreated, created)
}

// GetTag gets a tag by ID
func GetTag(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*tagrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	t, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, t)
}

// GetTagEntities lists the tag's entities ordered by relationship count
func GetTagEntities(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	primaryExt := c.QueryParam("primary_ext")
	if primaryExt != models.PrimaryExtPerson && primaryExt != models.PrimaryExtOrg {
		return httperror.NewHTTPError(http.StatusBadRequest, "primary_ext must be Person or Org")
	}

	ctx, repo, err := ectoinject.GetContext[*tagrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entities, err := repo.EntitiesByRelationshipCount(ctx, id, primaryExt)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entities)
}

// GetTagPermissions returns the acting user's capabilities on the tag
func GetTagPermissions(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*tagrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	t, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if actor == nil {
		return c.JSON(http.StatusOK, permissions.AnonTag(t))
	}

	editable, err := repo.GetEditableTagIDsForUser(ctx, actor.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, permissions.ForTag(actor, t, editable))
}

// UpdateTaggingsRequest is the full desired tag set for one tagable
type UpdateTaggingsRequest struct {
	TagIDs []int64 `json:"tag_ids"`
}

// UpdateTaggings reconciles the tagable's tag set against the submitted
// one: tags the actor may not edit are left alone, the rest are added or
// removed to match.
func UpdateTaggings(c echo.Context) error {
	ctx := c.Request().Context()

	class, err := tagableClass(c)
	if err != nil {
		return err
	}
	tagableID, err := parseID(c, "tagableID")
	if err != nil {
		return err
	}

	var req UpdateTaggingsRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if actor == nil {
		return httperror.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	ctx, repo, err := ectoinject.GetContext[*tagrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	current, err := repo.GetTagIDsFor(ctx, class, tagableID)
	if err != nil {
		return err
	}

	editable, err := repo.GetEditableTagIDsForUser(ctx, actor.ID)
	if err != nil {
		return err
	}

	actions := tagrepo.ParseUpdateActions(req.TagIDs, current)

	canEdit := func(tagID int64) (bool, error) {
		t, err := repo.Get(ctx, tagID)
		if err != nil {
			return false, err
		}
		return permissions.ForTag(actor, t, editable).Editable, nil
	}

	for _, tagID := range actions.Add {
		ok, err := canEdit(tagID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := repo.AddTagging(ctx, tagID, class, tagableID); err != nil {
			return err
		}
	}

	for _, tagID := range actions.Remove {
		ok, err := canEdit(tagID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := repo.RemoveTagging(ctx, tagID, class, tagableID); err != nil {
			return err
		}
	}

	updated, err := repo.GetTagIDsFor(ctx, class, tagableID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"tag_ids": updated})
}

// UpdateGrantsRequest is the request body for changing a user's
// restricted-tag grants
type UpdateGrantsRequest struct {
	TagIDs []int64 `json:"tag_ids" validate:"required"`
	Mode   string  `json:"mode" validate:"required"`
}

// UpdateGrants applies a set operation to a user's restricted-tag grants.
// Admin only.
func UpdateGrants(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseID(c, "userID")
	if err != nil {
		return err
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsAdmin() {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to manage tag grants")
	}

	var req UpdateGrantsRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*tagrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	current, err := repo.GetEditableTagIDsForUser(ctx, userID)
	if err != nil {
		return err
	}

	updated, err := permissions.UpdateTagGrants(current, req.TagIDs, req.Mode)
	if err != nil {
		var invalidOp *permissions.ErrInvalidOperation
		if errors.As(err, &invalidOp) {
			return httperror.NewHTTPError(http.StatusBadRequest, invalidOp.Error())
		}
		return err
	}

	if err := repo.SetEditableTagIDsForUser(ctx, userID, updated); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"tag_ids": updated})
}
