package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type implLogger struct {
	logger *logrus.Logger
}

// New creates a new Logger instance writing to stdout.
// format is "text" (default) or "json". An unknown level means info.
func New(level, format string) Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer, level, format string) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(parseLevel(level))

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &implLogger{logger: l}
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func (l *implLogger) shouldLog(level logrus.Level) bool {
	return l.logger.IsLevelEnabled(level)
}

func (l *implLogger) entry(ctx context.Context) *logrus.Entry {
	e := l.logger.WithContext(ctx)
	if id, ok := JobID(ctx); ok {
		e = e.WithField("job_id", id)
	}
	return e
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.DebugLevel) {
		l.entry(ctx).Debugf(msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.InfoLevel) {
		l.entry(ctx).Infof(msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.WarnLevel) {
		l.entry(ctx).Warnf(msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog(logrus.ErrorLevel) {
		l.entry(ctx).Errorf(msg, args...)
	}
}

type jobIDKey struct{}

// WithJobID attaches a job id that is added as a field to every entry.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey{}, id)
}

// JobID returns the job id stored by WithJobID.
func JobID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(jobIDKey{}).(string)
	return id, ok && id != ""
}
