// Package server assembles the echo application: middleware stack, route
// groups, and health endpoints. Dependency construction and registration
// happen in the deployment entrypoint; handlers resolve their dependencies
// from the request context.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/graft/config"
	"github.com/Ramsey-B/graft/pkg/middleware"
	entityroutes "github.com/Ramsey-B/graft/pkg/routes/entity"
	graphroutes "github.com/Ramsey-B/graft/pkg/routes/graph"
	"github.com/Ramsey-B/graft/pkg/routes/health"
	listroutes "github.com/Ramsey-B/graft/pkg/routes/list"
	relationshiproutes "github.com/Ramsey-B/graft/pkg/routes/relationship"
	tagroutes "github.com/Ramsey-B/graft/pkg/routes/tag"
)

// New builds the echo application for the given config
func New(cfg *config.Config, logger ectologger.Logger, checker *health.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(echomiddleware.Recover())

	e.HTTPErrorHandler = middleware.Error(logger)

	api := e.Group("/api/v1")
	entityroutes.Register(api.Group("/entities"))
	relationshiproutes.Register(api.Group("/relationships"))
	listroutes.Register(api.Group("/lists"))
	tagroutes.Register(api.Group("/tags"))
	graphroutes.Register(api.Group("/graph"))

	if checker != nil {
		checker.RegisterRoutes(e)
	}

	return e
}

// Start runs the server until the listener fails or is closed
func Start(e *echo.Echo, cfg *config.Config, logger ectologger.Logger) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.WithFields(map[string]any{"addr": addr}).Info("Starting HTTP server")

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
