// Package logger wraps log/slog with optional OpenTelemetry tracing.
// Every helper takes a context so trace and span ids follow the request.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "earningsdesk"

// Config holds logging configuration.
type Config struct {
	Level   string // debug, info, warn, error
	Format  string // text or json
	Tracing bool   // export spans to stderr
	Version string
	Output  io.Writer // defaults to os.Stderr
}

var (
	mu             sync.RWMutex
	base           = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
)

// Init configures the global logger and, when enabled, the tracer provider.
func Init(cfg Config) error {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	l := slog.New(handler)
	mu.Lock()
	base = l
	mu.Unlock()
	slog.SetDefault(l)

	if cfg.Tracing {
		if err := initTracer(cfg.Version); err != nil {
			l.Warn("tracing disabled", "error", err)
		}
	}
	return nil
}

func initTracer(version string) error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return err
	}

	if version == "" {
		version = "dev"
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mu.Lock()
	tracerProvider = tp
	tracer = tp.Tracer(serviceName)
	mu.Unlock()
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	mu.RLock()
	tp := tracerProvider
	mu.RUnlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the configured logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// StartSpan starts a span when tracing is enabled; otherwise it returns the
// span already in ctx (a no-op span if none).
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	mu.RLock()
	t := tracer
	mu.RUnlock()
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.Start(ctx, name, opts...)
}

func traceAttrs(ctx context.Context) []any {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ids := traceAttrs(ctx); ids != nil {
		args = append(ids, args...)
	}
	L().Log(ctx, level, msg, args...)
}

func Debug(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelDebug, msg, args...) }
func Info(ctx context.Context, msg string, args ...any)  { log(ctx, slog.LevelInfo, msg, args...) }
func Warn(ctx context.Context, msg string, args ...any)  { log(ctx, slog.LevelWarn, msg, args...) }
func Error(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelError, msg, args...) }

// ErrorWithErr logs err and records it on the active span.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	log(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

// Operation measures one unit of work (a resolution, a directory load) as a span.
type Operation struct {
	ctx   context.Context
	span  trace.Span
	name  string
	start time.Time
}

// StartOperation opens a span named name with fields as attributes.
// fields are key/value pairs, as for slog.
func StartOperation(ctx context.Context, name string, fields ...any) *Operation {
	ctx, span := StartSpan(ctx, name)
	span.SetAttributes(toAttributes(fields)...)
	return &Operation{ctx: ctx, span: span, name: name, start: time.Now()}
}

// Context returns the context carrying the operation span.
func (o *Operation) Context() context.Context { return o.ctx }

// End closes the span and logs the duration at debug level.
func (o *Operation) End(fields ...any) {
	d := time.Since(o.start)
	o.span.SetAttributes(toAttributes(fields)...)
	o.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	o.span.SetStatus(codes.Ok, "")
	o.span.End()
	Debug(o.ctx, o.name+" done", append(fields, "duration_ms", d.Milliseconds())...)
}

// EndWithError closes the span as failed and logs at warn level.
func (o *Operation) EndWithError(err error, fields ...any) {
	d := time.Since(o.start)
	o.span.RecordError(err)
	o.span.SetStatus(codes.Error, err.Error())
	o.span.End()
	Warn(o.ctx, o.name+" failed", append(fields, "error", err, "duration_ms", d.Milliseconds())...)
}

func toAttributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		case interface{ String() string }:
			attrs = append(attrs, attribute.String(key, v.String()))
		}
	}
	return attrs
}
