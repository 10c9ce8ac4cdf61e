// Package logrus adapts a *logrus.Entry to wtcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/wtcache"
)

var _ wtcache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New tags every line with component=wtcache.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "wtcache")}
}

func (l Logger) Debug(msg string, f wtcache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f wtcache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f wtcache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f wtcache.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f wtcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	lf := make(logrus.Fields, len(f))
	for k, v := range f {
		// logrus renders errors only under its own key
		if err, ok := v.(error); ok && k == "err" {
			lf[logrus.ErrorKey] = err
			continue
		}
		lf[k] = v
	}
	return l.E.WithFields(lf)
}
