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

package stats

import (
	"bytes"
	"strings"
	"testing"
)

func testSnaps() []Snapshot {
	return []Snapshot{
		{Name: "read-file", Count: 10, RCount: 10, Bytes: 40960, MeanLatencyUS: 12.5, MinLatencyUS: 1, MaxLatencyUS: 99.9},
		{Name: "IOSUMMARY", Count: 10, RCount: 10, Bytes: 40960, MeanLatencyUS: 12.5, MinLatencyUS: 1, MaxLatencyUS: 99.9},
	}
}

func TestDumpTextIncludesEveryFlowop(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpText(&buf, testSnaps()); err != nil {
		t.Fatalf("DumpText() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "read-file:") {
		t.Errorf("DumpText output missing read-file line: %q", out)
	}
	if !strings.Contains(out, "IOSUMMARY:") {
		t.Errorf("DumpText output missing IOSUMMARY line: %q", out)
	}
}

func TestDumpMultitabHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpMultitab(&buf, testSnaps()); err != nil {
		t.Fatalf("DumpMultitab() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("DumpMultitab produced %d lines; want 3 (header + 2 rows)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "name") {
		t.Errorf("first line = %q; want header starting with \"name\"", lines[0])
	}
}

func TestDumpXMLWellFormed(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpXML(&buf, testSnaps()); err != nil {
		t.Fatalf("DumpXML() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<filebench_stats>") {
		t.Errorf("DumpXML output missing root element: %q", out)
	}
	if strings.Count(out, "<flowop ") != 2 {
		t.Errorf("DumpXML output has %d flowop elements; want 2", strings.Count(out, "<flowop "))
	}
}
