package list

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	listrepo "github.com/Ramsey-B/graft/internal/repositories/list"
	userrepo "github.com/Ramsey-B/graft/internal/repositories/user"
	"github.com/Ramsey-B/graft/pkg/context"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/permissions"
)

var validate = validator.New()

// Register registers list routes
func Register(g *echo.Group) {
	g.POST("", CreateList)
	g.GET("/:id", GetList)
	g.GET("/:id/permissions", GetListPermissions)
	g.POST("/:id/entities", AddListEntity)
	g.DELETE("/:id/entities/:entityID", RemoveListEntity)
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

// listPermissions loads the list and evaluates the actor's capabilities
func listPermissions(c echo.Context, id int64) (*models.List, permissions.ListPermissions, error) {
	ctx := c.Request().Context()

	ctx, repo, err := ectoinject.GetContext[*listrepo.Repository](ctx)
	if err != nil {
		return nil, permissions.ListPermissions{}, httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	l, err := repo.Get(ctx, id)
	if err != nil {
		return nil, permissions.ListPermissions{}, err
	}

	actor, err := currentUser(c)
	if err != nil {
		return nil, permissions.ListPermissions{}, err
	}

	if actor == nil {
		return l, permissions.AnonList(l), nil
	}
	return l, permissions.ForList(actor, l), nil
}

// CreateListRequest is the request body for creating a list
type CreateListRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	AccessLevel int     `json:"access_level" validate:"min=0,max=2"`
}

// CreateList creates a new list owned by the acting user
func CreateList(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateListRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID := context.GetUserID(ctx)
	if userID == 0 {
		return httperror.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	ctx, repo, err := ectoinject.GetContext[*listrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, req.Name, req.Description, req.AccessLevel, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// GetList gets a list when the actor may view it
func GetList(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	l, perms, err := listPermissions(c, id)
	if err != nil {
		return err
	}
	if !perms.Viewable {
		// Private lists do not exist for outsiders.
		return httperror.NewHTTPError(http.StatusNotFound, "list not found")
	}

	return c.JSON(http.StatusOK, l)
}

// GetListPermissions returns the acting user's capabilities on the list
func GetListPermissions(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	_, perms, err := listPermissions(c, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, perms)
}

// AddListEntityRequest is the request body for adding a list member
type AddListEntityRequest struct {
	EntityID int64 `json:"entity_id" validate:"required"`
}

// AddListEntity adds an entity to the list
func AddListEntity(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req AddListEntityRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, perms, err := listPermissions(c, id)
	if err != nil {
		return err
	}
	if !perms.Editable {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to edit this list")
	}

	ctx, repo, err := ectoinject.GetContext[*listrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.AddMembership(ctx, id, req.EntityID); err != nil {
		return err
	}

	return c.NoContent(http.StatusCreated)
}

// RemoveListEntity removes an entity from the list
func RemoveListEntity(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entityID, err := parseID(c, "entityID")
	if err != nil {
		return err
	}

	_, perms, err := listPermissions(c, id)
	if err != nil {
		return err
	}
	if !perms.Editable {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to edit this list")
	}

	ctx, repo, err := ectoinject.GetContext[*listrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.RemoveMembership(ctx, id, entityID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
