package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-booking-gateway/internal/handler"
	"github.com/iliyamo/tourism-booking-gateway/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Cart         *handler.CartHandler
	Catalog      *handler.CatalogHandler
	Availability *handler.AvailabilityHandler
}

// RegisterRoutes registers the health check, which sits outside /v1 and
// every middleware but recover.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers login/logout and the profile endpoint.  Login and
// logout accept anonymous callers; /v1/me needs a session.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler, loginPath string) {
	g.POST("/auth/login", a.Login)
	g.POST("/auth/logout", a.Logout)
	g.GET("/me", a.Me, middleware.RequireSession(loginPath))
}

// RegisterCart registers the guarded cart routes.
func RegisterCart(g *echo.Group, h *handler.CartHandler, loginPath string) {
	guard := middleware.RequireSession(loginPath)
	g.GET("/cart", h.Get, guard)
	g.POST("/cart/items", h.AddItem, guard)
	g.DELETE("/cart/items/:id", h.RemoveItem, guard)
	g.POST("/cart/confirm", h.Confirm, guard)
	g.DELETE("/cart", h.Clear, guard)
	g.GET("/my-reservations", h.MyReservations, guard)
}

// RegisterPublic registers the catalog and availability endpoints.  They
// work without a session; the cache middleware skips callers that send one.
func RegisterPublic(g *echo.Group, h *handler.CatalogHandler, av *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	g.GET("/services", h.Services(), cache)
	g.GET("/services/:id", h.Service(), cache)
	g.GET("/enterprises", h.Enterprises(), cache)
	g.GET("/enterprises/:id", h.Enterprise(), cache)
	g.GET("/categories", h.Categories(), cache)
	g.GET("/associations", h.Associations(), cache)
	g.GET("/municipalities", h.Municipalities(), cache)
	g.GET("/municipalities/:id", h.Municipality(), cache)
	g.GET("/events", h.Events(), cache)
	g.GET("/events/:id", h.Event(), cache)

	g.GET("/availability", av.Check)
}

// Register wires every route onto e under /v1.  The session is resolved
// before limit runs so per-session buckets see the caller.
func Register(e *echo.Echo, h Handlers, r middleware.Resolver, limit, cache echo.MiddlewareFunc, loginPath string) {
	RegisterRoutes(e)
	v1 := e.Group("/v1", middleware.LoadSession(r), limit)
	RegisterAuth(v1, h.Auth, loginPath)
	RegisterCart(v1, h.Cart, loginPath)
	RegisterPublic(v1, h.Catalog, h.Availability, cache)
}
