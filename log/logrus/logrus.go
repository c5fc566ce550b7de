// Package logrus adapts a sirupsen/logrus entry to rangecache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/rangecache"
)

var _ rangecache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New tags every entry with component=rangecache.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "rangecache")}
}

func (l Logger) Debug(msg string, f rangecache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f rangecache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f rangecache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f rangecache.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f rangecache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
