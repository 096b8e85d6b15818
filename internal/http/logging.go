package http

import (
	"context"
	"log/slog"

	"github.com/example/availability-scheduler/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger { return logging.Or(logger) }

// handlerLogger tags the request logger with the handler and route name.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, fallback, "handler", handlerName, operation, attrs...)
}
