package elog

import (
	"io"

	"github.com/sirupsen/logrus"
)

type LogLevel uint32

const (
	ErrorLevel LogLevel = LogLevel(logrus.ErrorLevel)
	WarnLevel  LogLevel = LogLevel(logrus.WarnLevel)
	InfoLevel  LogLevel = LogLevel(logrus.InfoLevel)
	DebugLevel LogLevel = LogLevel(logrus.DebugLevel)
	TraceLevel LogLevel = LogLevel(logrus.TraceLevel)
)

// IsJSON is set when log output is machine readable. Progress bars are
// suppressed while it is set.
var IsJSON bool

type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Finish(success bool)
	Infof(format string, args ...interface{})
	IsLogLevelEnabled(level LogLevel) bool
	Logf(level LogLevel, format string, args ...interface{})
	Scoped(scope string) Logger
	Tracef(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// View is a Logger that can also talk to a user directly.
type View interface {
	Logger
	Printf(format string, args ...interface{})
	NewProgress(label string, units string, total int64) Progress
}

type Progress interface {
	ProxyReader(r io.Reader) io.ReadCloser
	Finish(success bool)
}

// Discard is a View that drops everything.
var Discard View = discard{}

type discard struct{}

func (discard) Debugf(format string, args ...interface{})               {}
func (discard) Errorf(format string, args ...interface{})               {}
func (discard) Finish(success bool)                                     {}
func (discard) Infof(format string, args ...interface{})                {}
func (discard) IsLogLevelEnabled(level LogLevel) bool                   { return false }
func (discard) Logf(level LogLevel, format string, args ...interface{}) {}
func (discard) Scoped(scope string) Logger                              { return discard{} }
func (discard) Tracef(format string, args ...interface{})               {}
func (discard) Warnf(format string, args ...interface{})                {}
func (discard) Printf(format string, args ...interface{})               {}

func (discard) NewProgress(label string, units string, total int64) Progress {
	return nopProgress{}
}

type nopProgress struct{}

func (nopProgress) ProxyReader(r io.Reader) io.ReadCloser {
	return io.NopCloser(r)
}

func (nopProgress) Finish(success bool) {}
