package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "message"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string { return strings.ToUpper(l.String()) }
}

type Logger struct {
	service string
	w       io.Writer
	zl      zerolog.Logger
}

func New(service string) *Logger { return NewWithWriter(service, os.Stdout) }

func NewWithWriter(service string, w io.Writer) *Logger {
	zl := zerolog.New(w).With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname()).
		Logger()
	return &Logger{service: service, w: w, zl: zl}
}

// Named returns a logger for another service name sharing the same output.
func (l *Logger) Named(service string) *Logger { return NewWithWriter(service, l.w) }

// WithRequestID tags every entry of the returned logger with request_id.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{service: l.service, w: l.w, zl: l.zl.With().Str("request_id", id).Logger()}
}

func (l *Logger) Service() string { return l.service }

func (l *Logger) log(ev *zerolog.Event, action string, fields map[string]any, err error) {
	if err != nil {
		ev = ev.Dict("error", zerolog.Dict().
			Str("msg", err.Error()).
			Str("stack", fmt.Sprintf("%T", err)))
	}
	ev.Str("action", action).Fields(fields).Msg(action)
}

func (l *Logger) Info(action string, fields map[string]any) { l.log(l.zl.Info(), action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) {
	l.log(l.zl.Debug(), action, fields, nil)
}
func (l *Logger) Warn(action string, err error, fields map[string]any) {
	l.log(l.zl.Warn(), action, fields, err)
}
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(l.zl.Error(), action, fields, err)
}

// SetLevel changes the process-wide minimum level. Unknown names fall back to info.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func hostname() string { h, _ := os.Hostname(); return h }
