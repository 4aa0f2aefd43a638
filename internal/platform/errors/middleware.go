package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zaidrahmann/sportz-websockets/internal/platform/logging"
)

// HTTPErrorsTotal tracks handler errors by type
var HTTPErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Handler errors by error type",
	},
	[]string{"type"},
)

// Middleware converts errors returned by handlers into JSON responses.
// Echo HTTPErrors (from built-in middleware such as the rate limiter) pass
// through to Echo's default handler so their status codes survive.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				HTTPErrorsTotal.WithLabelValues(typeForStatus(httpErr.Code)).Inc()
				return err
			}

			structured := AsStructured(err)
			HTTPErrorsTotal.WithLabelValues(string(structured.Type)).Inc()
			logError(c, structured)

			if err := c.JSON(structured.HTTPStatus(), structured.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func typeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return string(TypeNotFound)
	case status == http.StatusServiceUnavailable:
		return string(TypeUnavailable)
	case status >= 400 && status < 500:
		return string(TypeValidation)
	default:
		return string(TypeInternal)
	}
}

func logError(c echo.Context, err *Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}
	if id, ok := logging.RequestID(c.Request().Context()); ok {
		attrs = append(attrs, "request_id", id)
	}
	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	switch err.Type {
	case TypeValidation:
		slog.Info("Validation error", attrs...)
	case TypeNotFound:
		slog.Info("Not found", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.Error("Request failed", attrs...)
	}
}
