package entity

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/graft/config"
	entityrepo "github.com/Ramsey-B/graft/internal/repositories/entity"
	extensionrepo "github.com/Ramsey-B/graft/internal/repositories/extension"
	mergerepo "github.com/Ramsey-B/graft/internal/repositories/merge"
	relationshiprepo "github.com/Ramsey-B/graft/internal/repositories/relationship"
	userrepo "github.com/Ramsey-B/graft/internal/repositories/user"
	"github.com/Ramsey-B/graft/pkg/context"
	"github.com/Ramsey-B/graft/pkg/deletion"
	"github.com/Ramsey-B/graft/pkg/links"
	"github.com/Ramsey-B/graft/pkg/merging"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/permissions"
)

var validate = validator.New()

// Register registers entity routes
func Register(g *echo.Group) {
	g.GET("", ListEntities)
	g.POST("", CreateEntity)
	g.GET("/:id", GetEntity)
	g.PUT("/:id", UpdateEntity)
	g.DELETE("/:id", DeleteEntity)
	g.POST("/:id/restore", RestoreEntity)
	g.GET("/:id/resolve", ResolveEntity)
	g.GET("/:id/links", GetEntityLinks)
	g.GET("/:id/permissions", GetEntityPermissions)
	g.POST("/:id/merge", MergeEntity)
	g.GET("/:id/merge/preview", PreviewMerge)
	g.GET("/:id/merge/records", GetMergeRecords)
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// currentUser resolves the authenticated user from the request context.
// Returns nil for anonymous requests.
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

func accessPolicy(c echo.Context) (permissions.Policy, error) {
	ctx := c.Request().Context()

	_, cfg, err := ectoinject.GetContext[*config.Config](ctx)
	if err != nil {
		return permissions.Policy{}, httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	return permissions.Policy{
		DeletionGracePeriod:   cfg.DeletionGracePeriod,
		DeletionLinkThreshold: cfg.DeletionLinkThreshold,
	}, nil
}

// mergeErrorToHTTP translates merge engine errors to HTTP errors. Anything
// else passes through to the error middleware.
func mergeErrorToHTTP(err error) error {
	var mergeErr *merging.MergeError
	if errors.As(err, &mergeErr) {
		return httperror.NewHTTPError(mergeErr.HTTPStatus(), mergeErr.Error())
	}
	return err
}

// ListEntities returns a page of live entities
func ListEntities(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	resp, err := repo.List(ctx, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// CreateEntity creates a new entity with its primary alias and extension
func CreateEntity(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateEntityRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, &req, context.GetUserID(ctx))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// GetEntity gets a live entity by ID
func GetEntity(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entity, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entity)
}

// UpdateEntity updates mutable entity fields
func UpdateEntity(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateEntityRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := repo.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteEntity soft-deletes an entity when the actor is permitted
func DeleteEntity(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	policy, err := accessPolicy(c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entity, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if perms := permissions.ForEntity(policy, actor, entity); !perms.Deleteable {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to delete this entity")
	}

	ctx, engine, err := ectoinject.GetContext[*deletion.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := engine.SoftDelete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// RestoreEntity brings back a soft-deleted entity and its relationships
func RestoreEntity(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsAdmin() {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to restore entities")
	}

	ctx, engine, err := ectoinject.GetContext[*deletion.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entity, err := engine.Restore(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entity)
}

// ResolveEntity follows the merged_id chain to the live endpoint
func ResolveEntity(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entity, err := repo.ResolveMerges(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entity)
}

// GetEntityLinks returns the entity's relationships grouped for display
func GetEntityLinks(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, relRepo, err := ectoinject.GetContext[*relationshiprepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}
	ctx, entRepo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}
	ctx, extRepo, err := ectoinject.GetContext[*extensionrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	linkRows, err := relRepo.GetLinksForEntity(ctx, id)
	if err != nil {
		return err
	}

	// Counterparts repeat across links; hydrate each once.
	counterparts := make(map[int64]*models.Entity)
	definitionIDs := make(map[int64][]int)

	items := make([]*links.Item, 0, len(linkRows))
	for i := range linkRows {
		link := &linkRows[i]

		counterpart, ok := counterparts[link.Entity2ID]
		if !ok {
			counterpart, err = entRepo.Get(ctx, link.Entity2ID)
			if err != nil {
				// A dangling link to a dead entity should not break the page.
				counterparts[link.Entity2ID] = nil
				continue
			}
			counterparts[link.Entity2ID] = counterpart

			records, err := extRepo.GetForEntity(ctx, link.Entity2ID)
			if err != nil {
				return err
			}
			ids := make([]int, 0, len(records))
			for _, rec := range records {
				ids = append(ids, rec.DefinitionID)
			}
			definitionIDs[link.Entity2ID] = ids
		}
		if counterpart == nil {
			continue
		}

		items = append(items, &links.Item{
			Link:                     link,
			Relationship:             link.Relationship,
			Counterpart:              counterpart,
			CounterpartDefinitionIDs: definitionIDs[link.Entity2ID],
		})
	}

	return c.JSON(http.StatusOK, links.SortedLinks(items))
}

// GetEntityPermissions returns the acting user's capabilities on the entity
func GetEntityPermissions(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	policy, err := accessPolicy(c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entity, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, permissions.ForEntity(policy, actor, entity))
}

// MergeRequest is the request body for merging another entity into this one
type MergeRequest struct {
	SourceID int64 `json:"source_id" validate:"required"`
}

// MergeEntity absorbs the source entity into the addressed entity
func MergeEntity(c echo.Context) error {
	ctx := c.Request().Context()

	destID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req MergeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if actor == nil || !actor.HasAbility(models.AbilityMerge) {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to merge entities")
	}

	ctx, merger, err := ectoinject.GetContext[*merging.EntityMerger](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	report, err := merger.Merge(ctx, req.SourceID, destID, actor.ID)
	if err != nil {
		return mergeErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, report)
}

// PreviewMerge builds a merge plan without applying it
func PreviewMerge(c echo.Context) error {
	ctx := c.Request().Context()

	destID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	sourceID, err := strconv.ParseInt(c.QueryParam("source_id"), 10, 64)
	if err != nil || sourceID <= 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "source_id query parameter is required")
	}

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if actor == nil || !actor.HasAbility(models.AbilityMerge) {
		return httperror.NewHTTPError(http.StatusForbidden, "not permitted to merge entities")
	}

	ctx, merger, err := ectoinject.GetContext[*merging.EntityMerger](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	plan, err := merger.BuildPlan(ctx, sourceID, destID)
	if err != nil {
		return mergeErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, plan)
}

// GetMergeRecords returns the merge history touching the entity
func GetMergeRecords(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*mergerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	records, err := repo.GetRecordsForEntity(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}
