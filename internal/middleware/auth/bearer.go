package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

const userKey = "user"

type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

// RequireUser resolves the bearer token to a user and stores it on the
// context. Requests without a valid token stop here with 401.
func RequireUser(r Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "require_user")

			token, ok := BearerToken(c)
			if !ok {
				l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
				return unauthorized(c, "not authenticated")
			}

			user, err := r.Resolve(ctx, token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					l.Warn("auth_failed", "status", 401, "reason", "could not validate credentials", "error", err)
					return unauthorized(c, "could not validate credentials")
				}
				l.Error("auth_failed", "status", 500, "reason", "cannot resolve user", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}

			c.Set(userKey, user)
			loggingmw.SetUserID(c, user.ID)
			ul := logging.FromContext(ctx).With("user_id", user.ID)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, ul)))
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok && u != nil
}
