// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey identifies request-scoped values that log records pick up.
type ContextKey string

const (
	ContextKeyRequestID   ContextKey = "request_id"
	ContextKeyUserID      ContextKey = "user_id"
	ContextKeyTraceID     ContextKey = "trace_id"
	ContextKeyClientIP    ContextKey = "client_ip"
	ContextKeyUserAgent   ContextKey = "user_agent"
	ContextKeyMethod      ContextKey = "method"
	ContextKeyPath        ContextKey = "path"
	ContextKeyStatusCode  ContextKey = "status_code"
	ContextKeyDuration    ContextKey = "duration_ms"
	ContextKeyEnvironment ContextKey = "environment"
	ContextKeyService     ContextKey = "service"
	ContextKeyVersion     ContextKey = "version"
)

// loggedContextKeys are the keys WithContext copies onto every record.
var loggedContextKeys = []ContextKey{
	ContextKeyRequestID,
	ContextKeyUserID,
	ContextKeyTraceID,
	ContextKeyClientIP,
	ContextKeyUserAgent,
	ContextKeyMethod,
	ContextKeyPath,
	ContextKeyStatusCode,
	ContextKeyDuration,
}

// OutputConfig describes one extra log destination.
type OutputConfig struct {
	Type    string         `json:"type"` // file, elasticsearch
	Level   string         `json:"level"`
	Format  string         `json:"format"`
	Options map[string]any `json:"options"`
}

// LogConfig controls how the application logger is assembled.
type LogConfig struct {
	Level            string         `json:"level"`
	Format           string         `json:"format"`
	Output           string         `json:"output"`
	AddSource        bool           `json:"add_source"`
	SampleRate       float64        `json:"sample_rate"`
	Environment      string         `json:"environment"`
	ServiceName      string         `json:"service_name"`
	ServiceVersion   string         `json:"service_version"`
	EnableSampling   bool           `json:"enable_sampling"`
	EnableStackTrace bool           `json:"enable_stack_trace"`
	Outputs          []OutputConfig `json:"outputs"`
}

// Logger is the application logger. It embeds slog.Logger so call sites
// keep the standard API, and adds context-aware helpers on top.
type Logger struct {
	*slog.Logger
	config *LogConfig
}

// SetupLogger builds the process-wide logger from the level/format pair
// the config layer hands over, and installs it as the slog default.
func SetupLogger(level, format string) *Logger {
	l := NewLogger(&LogConfig{
		Level:            level,
		Format:           format,
		Output:           "stdout",
		AddSource:        true,
		EnableStackTrace: level == "debug",
		ServiceName:      os.Getenv("SERVICE_NAME"),
		ServiceVersion:   os.Getenv("SERVICE_VERSION"),
		Environment:      os.Getenv("APP_ENV"),
	})
	slog.SetDefault(l.Logger)
	return l
}

// NewLogger assembles the handler chain described by cfg.
func NewLogger(cfg *LogConfig) *Logger {
	if cfg == nil {
		cfg = &LogConfig{Level: "info", Format: "json", Output: "stdout"}
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return normalizeAttr(cfg, a)
		},
	}

	w := openWriter(cfg.Output)

	var h slog.Handler
	if cfg.Format == "text" {
		h = NewPrettyTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	h = NewContextHandler(h, cfg)
	if cfg.EnableSampling && cfg.SampleRate > 0 && cfg.SampleRate < 1.0 {
		h = NewSamplingHandler(h, cfg.SampleRate)
	}
	h = NewSanitizationHandler(h)

	handlers := []slog.Handler{h}
	for _, out := range cfg.Outputs {
		if extra := buildOutputHandler(out); extra != nil {
			handlers = append(handlers, extra)
		}
	}
	if len(handlers) > 1 {
		h = NewMultiHandler(handlers...)
	}

	if attrs := serviceAttrs(cfg); len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}

	return &Logger{Logger: slog.New(h), config: cfg}
}

func serviceAttrs(cfg *LogConfig) []slog.Attr {
	var attrs []slog.Attr
	if cfg.ServiceName != "" {
		attrs = append(attrs, slog.String("service", cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, slog.String("env", cfg.Environment))
	}
	return attrs
}

// WithContext returns a slog.Logger carrying every request-scoped value
// found in ctx as a permanent attribute.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	if attrs := contextAttrs(ctx, loggedContextKeys); len(attrs) > 0 {
		return l.Logger.With(attrs...)
	}
	return l.Logger
}

// LogWithContext logs msg at the given level, attaching context values
// and, for errors with stack traces enabled, the caller and stack.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if level >= slog.LevelError || l.config.EnableStackTrace {
		if pc, file, line, ok := runtime.Caller(1); ok {
			args = append(args,
				slog.String("caller", fmt.Sprintf("%s:%d", file, line)),
				slog.String("function", runtime.FuncForPC(pc).Name()),
			)
		}
	}
	if level >= slog.LevelError && l.config.EnableStackTrace {
		args = append(args, slog.String("stack", string(stackTrace())))
	}
	l.WithContext(ctx).Log(ctx, level, msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
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

func openWriter(output string) io.Writer {
	switch {
	case output == "stderr":
		return os.Stderr
	case strings.HasPrefix(output, "file:"):
		f, err := os.OpenFile(strings.TrimPrefix(output, "file:"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return os.Stdout
		}
		return f
	default:
		return os.Stdout
	}
}

func contextAttrs(ctx context.Context, keys []ContextKey) []any {
	var attrs []any
	for _, key := range keys {
		val := ctx.Value(key)
		if val == nil {
			continue
		}
		name := string(key)
		switch v := val.(type) {
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(name, v))
			}
		case int:
			attrs = append(attrs, slog.Int(name, v))
		case int64:
			attrs = append(attrs, slog.Int64(name, v))
		case float64:
			attrs = append(attrs, slog.Float64(name, v))
		case bool:
			attrs = append(attrs, slog.Bool(name, v))
		case time.Duration:
			attrs = append(attrs, slog.Duration(name, v))
		case time.Time:
			attrs = append(attrs, slog.Time(name, v))
		case uuid.UUID:
			attrs = append(attrs, slog.String(name, v.String()))
		default:
			attrs = append(attrs, slog.Any(name, v))
		}
	}
	return attrs
}

func stackTrace() []byte {
	buf := make([]byte, 8*1024)
	return buf[:runtime.Stack(buf, false)]
}

// normalizeAttr rewrites a few attributes for log aggregators: RFC3339
// timestamps, a "severity" level key in JSON mode, and durations stored
// under *_ms keys rendered as milliseconds.
func normalizeAttr(cfg *LogConfig, a slog.Attr) slog.Attr {
	switch {
	case a.Key == slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
		}
	case a.Key == slog.LevelKey && cfg.Format == "json":
		a.Key = "severity"
	case strings.HasSuffix(a.Key, "_ms"):
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Milliseconds()))
		}
	}
	return a
}

func buildOutputHandler(out OutputConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(out.Level), AddSource: true}

	switch out.Type {
	case "elasticsearch":
		var elkCfg ELKConfig
		if raw, err := json.Marshal(out.Options); err == nil {
			_ = json.Unmarshal(raw, &elkCfg)
		}
		return NewELKHandler(elkCfg, slog.NewJSONHandler(io.Discard, opts))

	case "file":
		name, ok := out.Options["filename"].(string)
		if !ok {
			return nil
		}
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil
		}
		return slog.NewJSONHandler(f, opts)
	}

	return nil
}
