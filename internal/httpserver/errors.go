package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var sentinels = []struct {
	err    error
	status int
}{
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrConflict, http.StatusBadRequest},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrForbidden, http.StatusForbidden},
}

func statusFor(err error) int {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// publicMessage drops the "<sentinel>: " prefix the service layer adds.
func publicMessage(err error) string {
	msg := err.Error()
	for _, s := range sentinels {
		if rest, ok := strings.CutPrefix(msg, s.err.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

// respondError logs a failed operation and turns it into an echo error.
// Internal failures never leak their cause to the client.
func respondError(c echo.Context, event string, err error) error {
	l := logging.FromContext(c.Request().Context())
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "internal server error")
	}
	l.Warn(event, "status", status, "reason", publicMessage(err))
	if status == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}
	return echo.NewHTTPError(status, publicMessage(err))
}

func badRequest(c echo.Context, event, reason string, err error) error {
	logging.FromContext(c.Request().Context()).Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
