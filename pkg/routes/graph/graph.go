package graph

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	graphpkg "github.com/Ramsey-B/graft/pkg/graph"
)

// Register registers the graph query routes
func Register(g *echo.Group) {
	g.POST("/query", ExecuteQuery)
	g.GET("/path", FindShortestPath)
	g.GET("/neighbors/:id", FindNeighbors)
}

func queryService(c echo.Context) (*graphpkg.QueryService, error) {
	ctx := c.Request().Context()

	_, svc, err := ectoinject.GetContext[*graphpkg.QueryService](ctx)
	if err != nil || svc == nil {
		// 503 because the graph projection can be disabled.
		return nil, httperror.NewHTTPError(http.StatusServiceUnavailable, "graph query service unavailable")
	}
	return svc, nil
}

// QueryRequest is the request body for executing a Cypher query
type QueryRequest struct {
	Query  string         `json:"query" validate:"required"`
	Params map[string]any `json:"params,omitempty"`
}

// ExecuteQuery executes a read-only Cypher query
func ExecuteQuery(c echo.Context) error {
	ctx := c.Request().Context()

	qs, err := queryService(c)
	if err != nil {
		return err
	}

	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Query == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	result, err := qs.ExecuteQuery(ctx, req.Query, req.Params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// FindShortestPath finds the shortest path between two entities
func FindShortestPath(c echo.Context) error {
	ctx := c.Request().Context()

	qs, err := queryService(c)
	if err != nil {
		return err
	}

	fromID, err1 := strconv.ParseInt(c.QueryParam("from"), 10, 64)
	toID, err2 := strconv.ParseInt(c.QueryParam("to"), 10, 64)
	if err1 != nil || err2 != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "from and to parameters are required")
	}

	maxHops := 10
	if hopsStr := c.QueryParam("max_hops"); hopsStr != "" {
		var parsed int
		if err := echo.QueryParamsBinder(c).Int("max_hops", &parsed).BindError(); err == nil && parsed > 0 {
			maxHops = parsed
		}
	}

	result, err := qs.FindShortestPath(ctx, fromID, toID, maxHops)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// FindNeighbors finds all entities connected to a given entity
func FindNeighbors(c echo.Context) error {
	ctx := c.Request().Context()

	qs, err := queryService(c)
	if err != nil {
		return err
	}

	entityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || entityID <= 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	hops := 1
	if hopsStr := c.QueryParam("hops"); hopsStr != "" {
		var parsed int
		if err := echo.QueryParamsBinder(c).Int("hops", &parsed).BindError(); err == nil && parsed > 0 {
			hops = parsed
		}
	}

	result, err := qs.FindNeighbors(ctx, entityID, hops)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
