// Package logging provides the structured logger shared by every component.
package logging

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

type (
	// Logger is the logging surface components depend on.
	Logger interface {
		Debugf(string, ...interface{})
		Infof(string, ...interface{})
		Warnf(string, ...interface{})
		Errorf(string, ...interface{})

		WithField(key string, val interface{}) Logger
		WithFields(fields Fields) Logger
		WithError(err error) Logger
	}

	// Fields is alias of map
	Fields = map[string]interface{}

	contextKey string
)

const loggerKey contextKey = "logger_key"

type rlog struct {
	entry *logrus.Entry
}

// New wraps a logrus logger.
func New(l *logrus.Logger) Logger {
	return &rlog{entry: logrus.NewEntry(l)}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(l)
}

// Component returns a child logger tagged with the component name.
func Component(l Logger, name string) Logger {
	if l == nil {
		l = Nop()
	}
	return l.WithField("component", name)
}

// NewContext returns a context carrying logger.
func NewContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or fallback.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(Logger); ok {
			return logger
		}
	}
	if fallback == nil {
		return Nop()
	}
	return fallback
}

func (r *rlog) Debugf(f string, v ...interface{}) {
	r.entry.Debugf(f, v...)
}

func (r *rlog) Infof(f string, v ...interface{}) {
	r.entry.Infof(f, v...)
}

func (r *rlog) Warnf(f string, v ...interface{}) {
	r.entry.Warnf(f, v...)
}

func (r *rlog) Errorf(f string, v ...interface{}) {
	r.entry.Errorf(f, v...)
}

func (r *rlog) WithField(key string, val interface{}) Logger {
	return &rlog{entry: r.entry.WithField(key, val)}
}

func (r *rlog) WithFields(fields Fields) Logger {
	return &rlog{entry: r.entry.WithFields(logrus.Fields(fields))}
}

func (r *rlog) WithError(err error) Logger {
	return &rlog{entry: r.entry.WithError(err)}
}
