/*
Copyright 2026 The Filebench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fblog is the logging sink shared by the master and every
// worker. Every line is prefixed "pid: elapsed-seconds: " and
// serialized by a single mutex, so concurrent threadflows and the
// master never interleave partial lines.
package fblog

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Level is a log-record kind.
type Level int

const (
	LevelFatal Level = iota
	LevelError
	LevelError1 // rate-limited: only the first occurrence is emitted
	LevelInfo
	LevelVerbose
	LevelDebugScript
	LevelDebugImpl
	LevelDebugNever
	LevelDump
)

func (l Level) String() string {
	switch l {
	case LevelFatal:
		return "fatal"
	case LevelError:
		return "error"
	case LevelError1:
		return "error1"
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelDebugScript:
		return "debug-script"
	case LevelDebugImpl:
		return "debug-impl"
	case LevelDebugNever:
		return "debug-never"
	case LevelDump:
		return "dump"
	default:
		return "unknown"
	}
}

// Logger serializes access to an underlying *log.Logger and tracks the
// run's epoch so every line can be prefixed "pid: elapsed: ".
type Logger struct {
	mu       sync.Mutex
	out      *log.Logger
	epoch    time.Time
	debug    int
	seen1    map[string]bool
}

// New returns a Logger writing to os.Stderr with no timestamp prefix
// of its own (fblog supplies its own prefix).
func New() *Logger {
	return &Logger{
		out:   log.New(os.Stderr, "", 0),
		epoch: time.Now(),
		seen1: make(map[string]bool),
	}
}

// SetDebugLevel sets the maximum debug verbosity (0 disables all
// debug-* output); matches the shared region's debug-level flag.
func (l *Logger) SetDebugLevel(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = n
}

func (l *Logger) prefix() string {
	return fmt.Sprintf("%d: %.6f: ", os.Getpid(), time.Since(l.epoch).Seconds())
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch level {
	case LevelDebugScript, LevelDebugImpl, LevelDebugNever:
		if l.debug <= 0 {
			return
		}
	}
	l.out.Printf("%s[%s] %s", l.prefix(), level, fmt.Sprintf(format, args...))
}

// Fatalf logs at fatal level and terminates the process with exit
// code 1, matching spec.md's exit-code contract.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(LevelFatal, format, args...)
	os.Exit(1)
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }

// Error1f logs the first occurrence of a given key at error level and
// silently drops subsequent occurrences of the same key.
func (l *Logger) Error1f(key, format string, args ...interface{}) {
	l.mu.Lock()
	already := l.seen1[key]
	l.seen1[key] = true
	l.mu.Unlock()
	if already {
		return
	}
	l.log(LevelError1, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{})        { l.log(LevelInfo, format, args...) }
func (l *Logger) Verbosef(format string, args ...interface{})     { l.log(LevelVerbose, format, args...) }
func (l *Logger) DebugScriptf(format string, args ...interface{}) { l.log(LevelDebugScript, format, args...) }
func (l *Logger) DebugImplf(format string, args ...interface{})   { l.log(LevelDebugImpl, format, args...) }
func (l *Logger) Dumpf(format string, args ...interface{})        { l.log(LevelDump, format, args...) }

// Default is the process-wide logger shared by every goroutine and,
// in multiprocess mode, independently constructed in each worker.
var Default = New()
