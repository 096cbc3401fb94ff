package middleware // reusable HTTP middleware shared by the route groups

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dineshkumaran1996/library-api/internal/model"
	"github.com/dineshkumaran1996/library-api/internal/utils"
)

// UserContextKey is the echo context key under which JWTAuth stores the
// resolved model.User.
const UserContextKey = "user"

// UserResolver resolves a token subject to a stored user. Satisfied by
// *repository.UserRepo.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and resolves its subject against the user store. A token whose subject
// no longer maps to a stored user is rejected, so deleting a user cuts
// off their outstanding tokens despite tokens being unrevocable on their
// own. On success the full user is stored in the context under
// UserContextKey for handlers and RequireRole.
func JWTAuth(secret string, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			subject, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			u, err := users.GetByUsername(c.Request().Context(), subject)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(UserContextKey, u)
			return next(c)
		}
	}
}

// CurrentUser extracts the authenticated user placed in the context by
// JWTAuth. The boolean is false when no user is present, which means the
// route was not wrapped by JWTAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(UserContextKey).(model.User)
	return u, ok
}
