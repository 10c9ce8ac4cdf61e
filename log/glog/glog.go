// Package glog adapts github.com/golang/glog to wtcache.Logger.
//
// glog has no debug level; Debug lines go to V(Verbosity).Info.
package glog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/unkn0wn-root/wtcache"
)

var _ wtcache.Logger = Logger{}

type Logger struct {
	// Verbosity gates Debug. Zero means 2.
	Verbosity glog.Level
}

func (l Logger) Debug(msg string, f wtcache.Fields) {
	v := l.Verbosity
	if v == 0 {
		v = 2
	}
	if glog.V(v) {
		glog.InfoDepth(1, line(msg, f))
	}
}
func (l Logger) Info(msg string, f wtcache.Fields)  { glog.InfoDepth(1, line(msg, f)) }
func (l Logger) Warn(msg string, f wtcache.Fields)  { glog.WarningDepth(1, line(msg, f)) }
func (l Logger) Error(msg string, f wtcache.Fields) { glog.ErrorDepth(1, line(msg, f)) }

// line renders msg followed by key=value pairs in key order.
func line(msg string, f wtcache.Fields) string {
	if len(f) == 0 {
		return msg
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, f[k])
	}
	return b.String()
}
