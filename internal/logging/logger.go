// go-mcprotocol
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mcprotocol.
//
// go-mcprotocol is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mcprotocol is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mcprotocol; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package logging is the levelled logger of the command line tools.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelVerbose
	LogLevelDebug
)

var levelNames = map[string]LogLevel{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"info":    LogLevelInfo,
	"verbose": LogLevelVerbose,
	"debug":   LogLevelDebug,
}

// ParseLevel converts a level name to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q: must be silent, error, info, verbose or debug", name)
	}
	return level, nil
}

// Logger writes errors to stderr and everything else to stdout once the
// level is verbose or higher. A log file, when set, gets every message that
// passes the level.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	file    *os.File
	fileLog *log.Logger
	stdout  *log.Logger
	stderr  *log.Logger
}

// NewLogger creates a logger on the process's stdout and stderr.
func NewLogger(level LogLevel, logFile string) (*Logger, error) {
	l := NewLoggerTo(level, os.Stdout, os.Stderr)
	if logFile != "" {
		file, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		l.file = file
		l.fileLog = log.New(file, "", log.LstdFlags)
	}
	return l, nil
}

// NewLoggerTo creates a logger on the given writers.
func NewLoggerTo(level LogLevel, stdout, stderr io.Writer) *Logger {
	return &Logger{
		level:  level,
		stdout: log.New(stdout, "", 0),
		stderr: log.New(stderr, "", 0),
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file, l.fileLog = nil, nil
		return err
	}
	return nil
}

// Error logs an error message
func (l *Logger) Error(format string, v ...any) {
	l.logAt(LogLevelError, "ERROR: ", format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...any) {
	l.logAt(LogLevelInfo, "INFO: ", format, v...)
}

// Verbose logs a verbose message
func (l *Logger) Verbose(format string, v ...any) {
	l.logAt(LogLevelVerbose, "VERBOSE: ", format, v...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...any) {
	l.logAt(LogLevelDebug, "DEBUG: ", format, v...)
}

func (l *Logger) logAt(level LogLevel, prefix, format string, v ...any) {
	if l.GetLevel() < level {
		return
	}
	l.write(fmt.Sprintf(prefix+format, v...), level == LogLevelError)
}

func (l *Logger) write(msg string, isError bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		l.fileLog.Println(msg)
	}
	if isError {
		l.stderr.Println(msg)
	} else if l.level >= LogLevelVerbose {
		l.stdout.Println(msg)
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// LogOperation logs one client operation: failures at info, successes at
// verbose.
func (l *Logger) LogOperation(operation, target string, elapsed time.Duration, err error) {
	ms := float64(elapsed.Microseconds()) / 1000
	if err != nil {
		l.Info("FAILED %s on %s (%.3fms) - error: %v", operation, target, ms, err)
		return
	}
	l.Verbose("SUCCESS %s on %s (%.3fms)", operation, target, ms)
}

// LogHex logs a frame as space separated hex at debug level.
func (l *Logger) LogHex(label string, data []byte) {
	if l.GetLevel() < LogLevelDebug {
		return
	}
	l.Debug("%s: % X", label, data)
}

// Writer returns an io.Writer that logs each line at debug level. It lets
// the standard library logger used by the protocol package feed this one.
func (l *Logger) Writer() io.Writer {
	return debugWriter{l}
}

type debugWriter struct {
	l *Logger
}

func (w debugWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.l.Debug("%s", line)
		}
	}
	return len(p), nil
}
