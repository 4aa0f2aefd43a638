package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zaidrahmann/sportz-websockets/internal/platform/errors"
	"github.com/zaidrahmann/sportz-websockets/internal/platform/logging"
)

func (s *Server) registerRoutes() {
	s.echo.Use(requestIDMiddleware())
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(errors.Middleware())

	s.registerHealthRoutes()
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiLimiter := newRateLimiter(s.config.APIRatePerSecond, s.config.APIRateBurst)

	api := s.echo.Group("/api", apiLimiter)
	api.GET("/matches", s.handleListMatches)
	api.POST("/matches", s.handleCreateMatch)
	api.GET("/matches/:id", s.handleGetMatch)
	api.PATCH("/matches/:id", s.handleUpdateMatch)
	api.PATCH("/matches/:id/score", s.handleUpdateScore)
	api.GET("/matches/:id/commentary", s.handleListCommentary)
	api.POST("/matches/:id/commentary", s.handleAddCommentary)
	api.DELETE("/matches/:id/commentary/:commentId", s.handleDeleteCommentary)

	s.echo.GET("/ws", s.handleWebSocket)
}

// requestIDMiddleware tags each request with a short ID carried through
// the context so handler log lines can be correlated.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := logging.NewRequestID()
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
			c.Response().Header().Set("X-Request-ID", id)
			return next(c)
		}
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if id, ok := logging.RequestID(c.Request().Context()); ok {
				attrs = append(attrs, "request_id", id)
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("Request", attrs...)
			return nil
		},
	})
}
