package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the structured logger handed to every component.
type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string `yaml:"level" default:"info"`           // debug, info, warn, error
	Format     string `yaml:"format" default:"json"`          // json or console
	Output     string `yaml:"output" default:"stdout"`        // stdout, stderr, or file path
	TimeFormat string `yaml:"time_format" default:"RFC3339"` // Go layout or RFC3339/RFC3339Nano/unix
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	timeFormat := resolveTimeFormat(cfg.TimeFormat)
	zerolog.TimeFieldFormat = timeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: timeFormat}
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &Logger{zl: zl}, nil
}

// NewWriter builds a JSON logger on w. Used by tests to capture output.
func NewWriter(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func resolveTimeFormat(s string) string {
	switch s {
	case "", "RFC3339":
		return time.RFC3339
	case "RFC3339Nano":
		return time.RFC3339Nano
	case "unix":
		return zerolog.TimeFormatUnix
	default:
		return s
	}
}

// With returns a child logger that always carries fields.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = f.addToContext(ctx)
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(l.zl.Error(), msg, fields) }

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...Field) { l.emit(l.zl.Fatal(), msg, fields) }

func (l *Logger) emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		f.AddTo(event)
	}
	event.Msg(msg)
}

// Field is a typed key/value attached to a log line.
type Field struct {
	key   string
	event func(*zerolog.Event) *zerolog.Event
	ctx   func(zerolog.Context) zerolog.Context
}

func (f Field) AddTo(event *zerolog.Event) { f.event(event) }

func (f Field) addToContext(c zerolog.Context) zerolog.Context { return f.ctx(c) }

// Key returns the field name.
func (f Field) Key() string { return f.key }

func String(key, value string) Field {
	return Field{
		key:   key,
		event: func(e *zerolog.Event) *zerolog.Event { return e.Str(key, value) },
		ctx:   func(c zerolog.Context) zerolog.Context { return c.Str(key, value) },
	}
}

func Int(key string, value int) Field {
	return Field{
		key:   key,
		event: func(e *zerolog.Event) *zerolog.Event { return e.Int(key, value) },
		ctx:   func(c zerolog.Context) zerolog.Context { return c.Int(key, value) },
	}
}

func Int64(key string, value int64) Field {
	return Field{
		key:   key,
		event: func(e *zerolog.Event) *zerolog.Event { return e.Int64(key, value) },
		ctx:   func(c zerolog.Context) zerolog.Context { return c.Int64(key, value) },
	}
}

func Float64(key string, value float64) Field {
	return Field{
		key:   key,
		event: func(e *zerolog.Event) *zerolog.Event { return e.Float64(key, value) },
		ctx:   func(c zerolog.Context) zerolog.Context { return c.Float64(key, value) },
	}
}

func Bool(key string, value bool) Field {
	return Field{
		key:   key,
		event: func(e *zerolog.Event) *zerolog.Event { return e.Bool(key, value) },
		ctx:   func(c zerolog.Context) zerolog.Context { return c.Bool(key, value) },
	}
}

func Error(err error) Field {
	return Field{
		key:   zerolog.ErrorFieldName,
		event: func(e *zerolog.Event) *zerolog.Event { return e.Err(err) },
		ctx:   func(c zerolog.Context) zerolog.Context { return c.Err(err) },
	}
}

func Any(key string, value any) Field {
	return Field{
		key:   key,
		event: func(e *zerolog.Event) *zerolog.Event { return e.Interface(key, value) },
		ctx:   func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) },
	}
}

// Duration is logged in milliseconds.
func Duration(key string, value time.Duration) Field {
	return Int64(key, value.Milliseconds())
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}
