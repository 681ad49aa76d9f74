// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key carrying the per-command correlation ID.
const CorrelationID LogContextKey = "correlation_id"

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

// OpLogger provides structured logging for store and engine operations.
type OpLogger struct {
	component string
	logger    *Logger
}

// NewOpLogger creates a new OpLogger for the given component.
func NewOpLogger(component string) *OpLogger {
	return &OpLogger{component: component, logger: GlobalLogger}
}

// Log emits one structured record for an operation.
func (l *OpLogger) Log(ctx context.Context, operation string, fields map[string]any) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("operation", operation),
	}
	if id := ExtractCorrelationID(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.Info("op", attrs...)
}

// Warn emits one structured warning record for a degraded operation.
func (l *OpLogger) Warn(ctx context.Context, operation string, err error) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	if id := ExtractCorrelationID(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	l.logger.Logger.Warn("op degraded", attrs...)
}
