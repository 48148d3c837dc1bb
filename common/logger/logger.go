package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// New builds the process logger.
// Inside Kubernetes or with ENV=prod|dev records are JSON for log aggregation,
// otherwise a text handler highlights errors for local runs.
// Every record carries trace_id/span_id when the context holds a span.
func New() *slog.Logger {
	return slog.New(withTraceContext(baseHandler(os.Stdout)))
}

func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

func baseHandler(w io.Writer) slog.Handler {
	_, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST")
	env := os.Getenv("ENV")

	if inK8s || env == "prod" || env == "dev" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     levelFromEnv(slog.LevelInfo),
			AddSource: true,
		})
	}
	return &highlightHandler{next: slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelFromEnv(slog.LevelDebug),
	})}
}

// levelFromEnv reads LOG_LEVEL (debug, info, warn, error).
func levelFromEnv(fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}
	return level
}

// highlightHandler paints ERROR messages red.
type highlightHandler struct {
	next slog.Handler
}

func (h *highlightHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *highlightHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < slog.LevelError {
		return h.next.Handle(ctx, r)
	}

	painted := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("\x1b[31m%s\x1b[0m", r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		painted.AddAttrs(a)
		return true
	})
	return h.next.Handle(ctx, painted)
}

func (h *highlightHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &highlightHandler{next: h.next.WithAttrs(attrs)}
}

func (h *highlightHandler) WithGroup(name string) slog.Handler {
	return &highlightHandler{next: h.next.WithGroup(name)}
}

type traceHandler struct {
	next slog.Handler
}

func withTraceContext(h slog.Handler) slog.Handler {
	return &traceHandler{next: h}
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.next.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{next: h.next.WithGroup(name)}
}
