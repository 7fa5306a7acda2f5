package notify

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/abhisek/adaptutor/internal/logging"
)

// watermillLogger adapts the zap-backed logger to watermill.LoggerAdapter.
type watermillLogger struct {
	l *logging.Logger
}

// NewWatermillLogger returns a watermill logger that writes through l.
func NewWatermillLogger(l *logging.Logger) watermill.LoggerAdapter {
	return watermillLogger{l: l}
}

func kvs(fields watermill.LogFields) []any {
	out := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

func (w watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.l.Error(msg, append(kvs(fields), "error", err)...)
}

func (w watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.l.Info(msg, kvs(fields)...)
}

func (w watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.l.Debug(msg, kvs(fields)...)
}

func (w watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.l.Debug(msg, kvs(fields)...)
}

func (w watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{l: w.l.With(kvs(fields)...)}
}
