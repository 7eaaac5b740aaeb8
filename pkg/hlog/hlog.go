// Package hlog provides the structured logging seam used across httpcore.
// Callers inject a Logger; the zero value is silent.
package hlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured-logging capability httpcore consumes.
// Fields are passed as alternating key/value pairs, mirroring zerolog's
// ergonomics without leaking the zerolog type into component APIs.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// Noop discards every log line. It is the default when a component is
// constructed without an explicit Logger.
type noop struct{}

func (noop) Debug(string, ...any)          {}
func (noop) Info(string, ...any)           {}
func (noop) Warn(string, ...any)           {}
func (noop) Error(string, error, ...any)   {}

// Noop is the shared no-op Logger instance.
var Noop Logger = noop{}

// zlog adapts a zerolog.Logger to the Logger interface.
type zlog struct {
	l zerolog.Logger
}

// New builds a Logger backed by zerolog, writing to w (os.Stderr if nil).
func New(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &zlog{l: zerolog.New(w).With().Timestamp().Logger()}
}

func withFields(e *zerolog.Event, fields []any) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, fields[i+1])
	}
	return e
}

func (z *zlog) Debug(msg string, fields ...any) {
	withFields(z.l.Debug(), fields).Msg(msg)
}

func (z *zlog) Info(msg string, fields ...any) {
	withFields(z.l.Info(), fields).Msg(msg)
}

func (z *zlog) Warn(msg string, fields ...any) {
	withFields(z.l.Warn(), fields).Msg(msg)
}

func (z *zlog) Error(msg string, err error, fields ...any) {
	withFields(z.l.Error().Err(err), fields).Msg(msg)
}
