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

package fblog

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	return &Logger{
		out:   log.New(buf, "", 0),
		epoch: time.Now(),
		seen1: make(map[string]bool),
	}
}

func TestLevelStringNamesEveryLevel(t *testing.T) {
	cases := map[Level]string{
		LevelFatal:       "fatal",
		LevelError:       "error",
		LevelError1:      "error1",
		LevelInfo:        "info",
		LevelVerbose:     "verbose",
		LevelDebugScript: "debug-script",
		LevelDebugImpl:   "debug-impl",
		LevelDebugNever:  "debug-never",
		LevelDump:        "dump",
		Level(99):        "unknown",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q; want %q", level, got, want)
		}
	}
}

func TestInfofWritesPrefixedLine(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.Infof("hello %s", "world")
	if !strings.Contains(buf.String(), "[info] hello world") {
		t.Errorf("Infof() output = %q; want it to contain \"[info] hello world\"", buf.String())
	}
}

func TestDebugImplfSuppressedBelowDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.DebugImplf("should not appear")
	if buf.Len() != 0 {
		t.Errorf("DebugImplf() with debug level 0 wrote %q; want nothing", buf.String())
	}

	l.SetDebugLevel(1)
	l.DebugImplf("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("DebugImplf() after SetDebugLevel(1) wrote %q; want it to contain the message", buf.String())
	}
}

func TestError1fDropsRepeatsOfTheSameKey(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.Error1f("dup-key", "first")
	l.Error1f("dup-key", "second")
	out := buf.String()
	if strings.Count(out, "[error1]") != 1 {
		t.Errorf("Error1f() with a repeated key logged %d lines; want 1, got %q", strings.Count(out, "[error1]"), out)
	}
	if !strings.Contains(out, "first") || strings.Contains(out, "second") {
		t.Errorf("Error1f() repeated-key output = %q; want only the first occurrence", out)
	}

	l.Error1f("other-key", "third")
	if !strings.Contains(buf.String(), "third") {
		t.Error("Error1f() with a distinct key: want it logged")
	}
}
