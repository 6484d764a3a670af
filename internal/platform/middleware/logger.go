package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/auth"
)

// Logger emits one line per request. The session identity is read after the
// handler ran, so lines carry the subject and role the guards actually saw.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if id, ok := auth.IdentityFromContext(c.Request().Context()); ok {
				evt = evt.Str("subject_id", id.SubjectID.String()).Str("role", id.Role)
			}

			evt.Msg("request")
			return err
		}
	}
}
