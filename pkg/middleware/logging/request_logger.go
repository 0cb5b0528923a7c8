package loggingmw

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const userIDKey = "loggingmw.user_id"

// SetUserID tags the request with the authenticated user so the access log
// line carries it. Auth middleware calls it after resolving the caller.
func SetUserID(c echo.Context, id uint) {
	c.Set(userIDKey, id)
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger gives each request a logger carrying its route and request id,
// and writes one access line after the error handler has set the final status.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = res.Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "route", c.Path())
			if rid != "" {
				l = l.With("request_id", rid)
				res.Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			attrs := []slog.Attr{
				slog.Int("status", res.Status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("bytes", res.Size),
				slog.String("url", req.URL.Path),
				slog.String("remote_ip", c.RealIP()),
			}
			if id, ok := c.Get(userIDKey).(uint); ok {
				attrs = append(attrs, slog.Uint64("user_id", uint64(id)))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			l.LogAttrs(context.Background(), levelFor(res.Status), "http_request", attrs...)
			return nil
		}
	}
}
