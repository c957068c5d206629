package metricserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// requestLogger logs every request served. Scrapes are frequent, so successful ones go
// to debug.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			req := ctx.Request()
			res := ctx.Response()

			fields := map[string]any{
				"remote_ip":  ctx.RealIP(),
				"latency":    time.Since(start).String(),
				"request":    req.Method + " " + req.URL.String(),
				"status":     res.Status,
				"size":       res.Size,
				"user_agent": req.UserAgent(),
			}

			logRequest(logger, fields, err, res.Status)

			return nil
		}
	}
}

func logRequest(log zerolog.Logger, fields map[string]any, err error, status int) {
	logger := log.With().Fields(fields).Logger()
	if err != nil {
		logger = logger.With().Err(err).Logger()
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Msg("The request has resulted in a server error")
	case status >= http.StatusBadRequest:
		logger.Warn().Msg("The request has resulted in a client error")
	default:
		logger.Debug().Msg("The request has completed successfully")
	}
}
