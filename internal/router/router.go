// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dineshkumaran1996/library-api/internal/handler"
	"github.com/dineshkumaran1996/library-api/internal/middleware"
	"github.com/dineshkumaran1996/library-api/internal/model"
)

// Deps carries everything route registration needs: the handlers, the
// JWT secret for the auth middleware, the user resolver backing token
// subjects, and the optional cache / rate-limit middleware (nil-safe
// passthroughs when Redis is absent).
type Deps struct {
	Auth      *handler.AuthHandler
	Books     *handler.BookHandler
	History   *handler.HistoryHandler
	JWTSecret string
	Users     middleware.UserResolver
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// Register wires every route of the service onto e. Public reads carry
// the response cache; credential endpoints carry the rate limiter; all
// authenticated routes resolve the bearer token to a stored user, and
// admin routes additionally pass the role gate.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	cache := d.Cache
	if cache == nil {
		cache = passthrough
	}
	limit := d.RateLimit
	if limit == nil {
		limit = passthrough
	}

	jwtAuth := middleware.JWTAuth(d.JWTSecret, d.Users)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Credential endpoints: no auth, rate limited.
	e.POST("/api/user/register", d.Auth.Register, limit)
	e.POST("/api/user/login", d.Auth.Login, limit)

	e.GET("/users/me", d.Auth.Me, jwtAuth)

	// Public catalog reads, response-cached.
	e.GET("/api/book", d.Books.List, cache)
	e.GET("/api/book/:id", d.Books.Get, cache)
	e.GET("/api/user/book", d.Books.BorrowedByUser)

	// Admin-only catalog mutations.
	e.POST("/api/book", d.Books.Create, jwtAuth, adminOnly)
	e.PUT("/api/book/:id", d.Books.Update, jwtAuth, adminOnly)
	e.DELETE("/api/book/:id", d.Books.Delete, jwtAuth, adminOnly)

	// Borrow/return: any authenticated user.
	e.PUT("/api/book/:id/borrow", d.Books.Borrow, jwtAuth)
	e.PUT("/api/book/:id/return", d.Books.Return, jwtAuth)

	// Admin-only loan history.
	e.GET("/api/history", d.History.Search, jwtAuth, adminOnly)
}
