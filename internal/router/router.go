// Package router registers the HTTP routes. Unauthenticated routes
// (health, metrics, categories, tag listing, auth) live at the top;
// everything else sits behind the bearer-token middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-planner/internal/config"
	"github.com/iliyamo/event-planner/internal/handler"
	"github.com/iliyamo/event-planner/internal/metrics"
	"github.com/iliyamo/event-planner/internal/middleware"
	"github.com/iliyamo/event-planner/internal/service"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Auth    *handler.AuthHandler
	Events  *handler.EventHandler
	Groups  *handler.GroupHandler
	Tags    *handler.TagHandler
	AuthSvc *service.AuthService
	Stats   *metrics.Collector
	Redis   *redis.Client
}

// Register wires the full route table onto e.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))

	e.GET("/healthz", handler.Health)
	if d.Stats != nil {
		e.GET("/metrics", echo.WrapHandler(d.Stats.Handler()))
	}

	// Public, read-only and cacheable.
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	e.GET("/v1/categories", d.Tags.Categories, cached)
	e.GET("/v1/tags", d.Tags.List, cached)

	// Session lifecycle; no token needed.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)

	// Everything below requires a valid access token.
	v1 := e.Group("/v1", middleware.RequireAuth(d.AuthSvc))
	v1.GET("/me", d.Auth.Me)

	v1.POST("/groups", d.Groups.Create)
	v1.GET("/groups", d.Groups.List)
	v1.GET("/groups/:id", d.Groups.Get)

	v1.POST("/events", d.Events.Create)
	v1.GET("/events", d.Events.List)
	v1.GET("/events/:id", d.Events.Get)
	v1.PATCH("/events/:id", d.Events.Update)
	v1.DELETE("/events/:id", d.Events.Delete)

	v1.POST("/tags", d.Tags.Create)
}
