// Package logger wraps log/slog with env driven configuration, trace ids and
// record level event hooks.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/jrazmi/taskclock/sdk/environment"
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

// TraceIDFn extracts the trace id stored in a context.
type TraceIDFn func(ctx context.Context) string

// Record is the view of a log record handed to event functions.
type Record struct {
	Time       time.Time
	Message    string
	Level      slog.Level
	Attributes map[string]any
}

// EventFn is called for every record logged at its level.
type EventFn func(ctx context.Context, r Record)

// Events hooks functions into specific log levels.
type Events struct {
	Debug EventFn
	Info  EventFn
	Warn  EventFn
	Error EventFn
}

// options holds all configurable settings for the logger.
type options struct {
	level      slog.Level
	output     io.Writer
	addSource  bool
	format     string // "json" or "text"
	timeFormat string
	service    string
	traceIDFn  TraceIDFn
	events     Events
}

// Options is the exportable configuration struct
type Options struct {
	Level      string `env:"LOG_LEVEL" default:"INFO"`
	Output     string `env:"LOG_OUTPUT" default:"STDOUT"`
	Format     string `env:"LOG_FORMAT" default:"json"`
	TimeFormat string `env:"LOG_TIME_FORMAT" default:"RFC3339"`
	AddSource  bool   `env:"LOG_ADD_SOURCE" default:"false"`
}

// Option takes config option and returns formatted config
type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) {
		o.level = parseLevel(level)
	}
}

// WithOutput redirects records, mostly useful in tests.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithService adds a service attribute to every record.
func WithService(name string) Option {
	return func(o *options) {
		o.service = name
	}
}

// WithTraceID attaches the trace id returned by fn to every record.
func WithTraceID(fn TraceIDFn) Option {
	return func(o *options) {
		o.traceIDFn = fn
	}
}

func WithEvents(events Events) Option {
	return func(o *options) {
		o.events = events
	}
}

func NewDefault(opts ...Option) *Logger {
	cfg := Options{
		Level:      "INFO",
		Output:     "STDERR",
		Format:     "json",
		TimeFormat: "RFC3339",
	}
	return newLogger(cfg, opts...)
}

// NewDiscard returns a logger that drops everything. Tests use it.
func NewDiscard() *Logger {
	return NewDefault(WithOutput(io.Discard), WithLevel("ERROR"))
}

func NewStdLogger(logger *Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Logger.Handler(), level)
}

func NewFromEnv(prefix string, opts ...Option) (*Logger, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing logger config: %w", err)
	}
	return newLogger(cfg, opts...), nil
}

func newLogger(cfg Options, opts ...Option) *Logger {
	o := &options{
		level:      parseLevel(cfg.Level),
		output:     parseOutput(cfg.Output),
		addSource:  cfg.AddSource,
		timeFormat: cfg.TimeFormat,
		format:     cfg.Format,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey || len(groups) > 0 {
				return a
			}
			return formatTime(a, o.timeFormat)
		},
	}

	var handler slog.Handler
	switch o.format {
	case "text":
		handler = slog.NewTextHandler(o.output, handlerOpts)
	default:
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	}

	if o.service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", o.service)})
	}

	handler = &logHandler{
		Handler:   handler,
		traceIDFn: o.traceIDFn,
		events:    o.events,
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

func formatTime(a slog.Attr, format string) slog.Attr {
	t := a.Value.Time()
	switch format {
	case "":
		return a
	case "Unix":
		return slog.Int64(slog.TimeKey, t.Unix())
	case "UnixMilli":
		return slog.Int64(slog.TimeKey, t.UnixMilli())
	case "RFC3339":
		return slog.String(slog.TimeKey, t.Format(time.RFC3339))
	case "RFC3339Nano":
		return slog.String(slog.TimeKey, t.Format(time.RFC3339Nano))
	default:
		return slog.String(slog.TimeKey, t.Format(format))
	}
}

// DebugContextf logs a debug message with formatting
func (l *Logger) DebugContextf(ctx context.Context, format string, args ...any) {
	l.DebugContext(ctx, fmt.Sprintf(format, args...))
}

// InfoContextf logs an info message with formatting
func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// WarnContextf logs a warning message with formatting
func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.WarnContext(ctx, fmt.Sprintf(format, args...))
}

// ErrorContextf logs an error message with formatting
func (l *Logger) ErrorContextf(ctx context.Context, format string, args ...any) {
	l.ErrorContext(ctx, fmt.Sprintf(format, args...))
}
