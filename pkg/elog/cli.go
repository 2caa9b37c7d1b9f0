package elog

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	fieldScope = "scope"
	fieldPlain = "plain"
)

// CLI is the terminal logger. It doubles as the logrus formatter so that
// messages logged through logrus directly look the same.
type CLI struct {
	IsDebug    bool
	IsVerbose  bool
	DisableTTY bool

	scope string
}

func (log *CLI) entry() *logrus.Entry {
	if log.scope == "" {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.WithField(fieldScope, log.scope)
}

func (log *CLI) Debugf(format string, args ...interface{}) {
	if !log.IsDebug {
		return
	}
	log.entry().Debugf(format, args...)
}

func (log *CLI) Tracef(format string, args ...interface{}) {
	if !log.IsDebug {
		return
	}
	log.entry().Tracef(format, args...)
}

func (log *CLI) Infof(format string, args ...interface{}) {
	if !log.IsVerbose {
		return
	}
	log.entry().Infof(format, args...)
}

func (log *CLI) Warnf(format string, args ...interface{}) {
	log.entry().Warnf(format, args...)
}

func (log *CLI) Errorf(format string, args ...interface{}) {
	log.entry().Errorf(format, args...)
}

// Printf writes a message without a level prefix, regardless of verbosity.
func (log *CLI) Printf(format string, args ...interface{}) {
	log.entry().WithField(fieldPlain, true).Infof(format, args...)
}

func (log *CLI) Logf(level LogLevel, format string, args ...interface{}) {
	switch level {
	case ErrorLevel:
		log.Errorf(format, args...)
	case WarnLevel:
		log.Warnf(format, args...)
	case InfoLevel:
		log.Infof(format, args...)
	case DebugLevel:
		log.Debugf(format, args...)
	default:
		log.Tracef(format, args...)
	}
}

func (log *CLI) IsLogLevelEnabled(level LogLevel) bool {
	switch level {
	case ErrorLevel, WarnLevel:
		return true
	case InfoLevel:
		return log.IsVerbose
	default:
		return log.IsDebug
	}
}

func (log *CLI) Scoped(scope string) Logger {
	l := *log
	if l.scope != "" {
		scope = l.scope + "/" + scope
	}
	l.scope = scope
	return &l
}

func (log *CLI) Finish(success bool) {}

func (log *CLI) colour() bool {
	if log.DisableTTY || IsJSON {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var levelPrefixes = map[logrus.Level]struct {
	text   string
	colour *color.Color
}{
	logrus.PanicLevel: {"PANIC ", color.New(color.FgRed, color.Bold)},
	logrus.FatalLevel: {"FATAL ", color.New(color.FgRed, color.Bold)},
	logrus.ErrorLevel: {"ERROR ", color.New(color.FgRed)},
	logrus.WarnLevel:  {"WARN  ", color.New(color.FgYellow)},
	logrus.InfoLevel:  {"", nil},
	logrus.DebugLevel: {"DEBUG ", color.New(color.FgCyan)},
	logrus.TraceLevel: {"TRACE ", color.New(color.FgHiBlack)},
}

// Format implements logrus.Formatter.
func (log *CLI) Format(entry *logrus.Entry) ([]byte, error) {

	buf := new(bytes.Buffer)

	if _, plain := entry.Data[fieldPlain]; !plain {
		p := levelPrefixes[entry.Level]
		if p.colour != nil && log.colour() {
			buf.WriteString(p.colour.Sprint(p.text))
		} else {
			buf.WriteString(p.text)
		}
		if scope, ok := entry.Data[fieldScope]; ok {
			fmt.Fprintf(buf, "%v: ", scope)
		}
	}

	buf.WriteString(strings.TrimSuffix(entry.Message, "\n"))
	buf.WriteByte('\n')

	return buf.Bytes(), nil

}

func (log *CLI) NewProgress(label string, units string, total int64) Progress {
	if !log.colour() {
		return &quietProgress{log: log, label: label}
	}
	return newBarProgress(label, units, total)
}
