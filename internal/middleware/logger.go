package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/iliyamo/dantour/internal/tracing"
)

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-ID"

// RequestLogger attaches a child of the global logger to the request
// context with request_id, trace_id, method and route, and logs one line
// per request once the handler returns.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, rid)

			ctx := req.Context()
			lc := zlog.With().Str("request_id", rid).Str("method", req.Method).Str("route", c.Path())
			if tid := tracing.TraceID(ctx); tid != "" {
				lc = lc.Str("trace_id", tid)
			}
			logger := lc.Logger()
			c.SetRequest(req.WithContext(logger.WithContext(ctx)))

			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			var ev *zerolog.Event
			switch {
			case status >= 500:
				ev = zerolog.Ctx(c.Request().Context()).Error().Err(err)
			case status >= 400:
				ev = zerolog.Ctx(c.Request().Context()).Warn()
			default:
				ev = zerolog.Ctx(c.Request().Context()).Info()
			}
			ev.Int("status", status).Dur("latency", time.Since(start)).Str("remote_ip", c.RealIP()).Msg("request")
			return err
		}
	}
}
