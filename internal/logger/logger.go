// Copyright 2020 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"log/syslog"
	"os"
)

// ProgrammeName is used while writing logs to the syslog file; it lets a
// syslog-based filter pick hgfsd's own lines out of a syslog stream that
// also carries every other daemon's output.
const ProgrammeName string = "hgfsd"

var (
	defaultLoggerFactory *loggerFactory
	defaultInfoLogger    *log.Logger
	defaultErrorLogger   *log.Logger
)

// InitLogFile initializes the logger factory to write to filename, in
// either "text" or "json" format, at the given severity. An empty
// filename falls back to syslog.
func InitLogFile(filename, format, level string) error {
	var f *os.File
	var sysWriter *syslog.Writer
	var err error
	if filename != "" {
		f, err = os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
	} else {
		sysWriter, err = syslog.New(syslog.LOG_ALERT, ProgrammeName)
		if err != nil {
			return fmt.Errorf("error while creating syswriter: %w", err)
		}
	}

	defaultLoggerFactory = &loggerFactory{
		file:      f,
		sysWriter: sysWriter,
		flag:      0,
		format:    format,
		level:     level,
	}
	defaultInfoLogger = NewInfo("")
	defaultErrorLogger = NewError("")

	return nil
}

// init sets up a stdout/stderr logger factory so the package is usable
// before InitLogFile is called (e.g. from tests, or from cmd/ before
// config has been parsed).
func init() {
	defaultLoggerFactory = &loggerFactory{
		file:  nil,
		flag:  log.Ldate | log.Ltime | log.Lmicroseconds,
		level: "INFO",
	}
	defaultInfoLogger = NewInfo("")
	defaultErrorLogger = NewError("")
}

// Close closes the log file, if one is open.
func Close() {
	if f := defaultLoggerFactory.file; f != nil {
		f.Close()
		defaultLoggerFactory.file = nil
	}
}

// NewNotice returns a logger for operator-facing notices: session
// connect/disconnect, share table reloads.
func NewNotice(prefix string) *log.Logger { return defaultLoggerFactory.newLogger("NOTICE", prefix) }

// NewDebug returns a logger for per-request tracing: decoded opcode,
// resolved host path, handle allocated.
func NewDebug(prefix string) *log.Logger { return defaultLoggerFactory.newLogger("DEBUG", prefix) }

// NewInfo returns a logger for informational messages.
func NewInfo(prefix string) *log.Logger { return defaultLoggerFactory.newLogger("INFO", prefix) }

// NewError returns a logger for handler and transport errors.
func NewError(prefix string) *log.Logger { return defaultLoggerFactory.newLogger("ERROR", prefix) }

// Infof logs to the default info logger with Printf-style formatting.
func Infof(format string, v ...interface{}) { defaultInfoLogger.Printf(format, v...) }

// Info logs to the default info logger with Println-style formatting.
func Info(v ...interface{}) { defaultInfoLogger.Println(v...) }

// Errorf logs to the default error logger with Printf-style formatting.
func Errorf(format string, v ...interface{}) { defaultErrorLogger.Printf(format, v...) }

// Error logs to the default error logger with Println-style formatting.
func Error(v ...interface{}) { defaultErrorLogger.Println(v...) }

type loggerFactory struct {
	// If set, log to this file; otherwise to sysWriter if set, else to
	// stdout or stderr.
	file      *os.File
	sysWriter *syslog.Writer
	flag      int
	format    string
	level     string
}

func (f *loggerFactory) newLogger(level, prefix string) *log.Logger {
	return log.New(f.writer(level), prefix, f.flag)
}

func (f *loggerFactory) writer(level string) io.Writer {
	target := f.target(level)
	if f.format == "json" {
		return &jsonWriter{w: target, level: level}
	}
	return &textWriter{w: target, level: level}
}

func (f *loggerFactory) target(level string) io.Writer {
	if f.file != nil {
		return f.file
	}
	if f.sysWriter != nil {
		return f.sysWriter
	}
	switch level {
	case "ERROR":
		return os.Stderr
	default:
		return os.Stdout
	}
}

// Handler returns an slog.Handler over this factory's configured target
// at the factory's configured severity, for call sites that want
// structured key/value logging instead of a formatted line.
func (f *loggerFactory) handler() slog.Handler {
	programLevel := new(slog.LevelVar)
	setLoggingLevel(f.level, programLevel)
	opts := &slog.HandlerOptions{Level: programLevel}
	target := f.target("INFO")
	if f.format == "json" {
		return slog.NewJSONHandler(target, opts)
	}
	return slog.NewTextHandler(target, opts)
}

// Handler returns an slog.Handler over the default factory.
func Handler() slog.Handler {
	return defaultLoggerFactory.handler()
}

// StructuredLogger returns a *log.Logger that, unlike NewDebug/NewInfo/
// NewError, routes every line through the default factory's slog.Handler
// (so a json-configured factory gets one structured record per line
// instead of jsonWriter's ad hoc wrapping).
func StructuredLogger(prefix string, level slog.Level) *log.Logger {
	w := &handlerWriter{h: defaultLoggerFactory.handler(), level: level}
	return log.New(w, prefix, 0)
}
