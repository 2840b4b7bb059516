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

import "testing"

func TestEndOpCountsByClass(t *testing.T) {
	var s FlowStats
	op := s.BeginOp(IORead)
	s.EndOp(op, 4096)
	op = s.BeginOp(IOWrite)
	s.EndOp(op, 1024)

	if s.Count != 2 {
		t.Errorf("Count = %d; want 2", s.Count)
	}
	if s.RCount != 1 || s.RBytes != 4096 {
		t.Errorf("RCount, RBytes = %d, %d; want 1, 4096", s.RCount, s.RBytes)
	}
	if s.WCount != 1 || s.WBytes != 1024 {
		t.Errorf("WCount, WBytes = %d, %d; want 1, 1024", s.WCount, s.WBytes)
	}
	if s.Bytes != 5120 {
		t.Errorf("Bytes = %d; want 5120", s.Bytes)
	}
}

func TestHistogramSumMatchesCount(t *testing.T) {
	var s FlowStats
	for i := 0; i < 10; i++ {
		op := s.BeginOp(IONone)
		s.EndOp(op, 0)
	}
	if got := s.HistogramSum(); got != s.Count {
		t.Errorf("HistogramSum() = %d; want Count = %d", got, s.Count)
	}
}

func TestSetQuietFreezesUpdates(t *testing.T) {
	var s FlowStats
	s.SetQuiet(true)
	op := s.BeginOp(IORead)
	s.EndOp(op, 100)
	if s.Count != 0 {
		t.Errorf("Count after EndOp while quiet = %d; want 0", s.Count)
	}
	s.SetQuiet(false)
	op = s.BeginOp(IORead)
	s.EndOp(op, 100)
	if s.Count != 1 {
		t.Errorf("Count after EndOp while not quiet = %d; want 1", s.Count)
	}
}

func TestClearZeroesButPreservesQuiet(t *testing.T) {
	var s FlowStats
	op := s.BeginOp(IORead)
	s.EndOp(op, 100)
	s.SetQuiet(true)
	s.Clear()
	if s.Count != 0 {
		t.Errorf("Count after Clear = %d; want 0", s.Count)
	}
	if !s.quiet {
		t.Error("Clear() reset quiet; want it preserved")
	}
}

func TestAddIntoAccumulates(t *testing.T) {
	var a, dst FlowStats
	op := a.BeginOp(IORead)
	a.EndOp(op, 10)
	op = a.BeginOp(IORead)
	a.EndOp(op, 20)
	a.AddInto(&dst)

	var b FlowStats
	op = b.BeginOp(IOWrite)
	b.EndOp(op, 5)
	b.AddInto(&dst)

	if dst.Count != 3 {
		t.Errorf("dst.Count = %d; want 3", dst.Count)
	}
	if dst.Bytes != 35 {
		t.Errorf("dst.Bytes = %d; want 35", dst.Bytes)
	}
}

func TestTotalsMatchesCounters(t *testing.T) {
	var s FlowStats
	op := s.BeginOp(IORead)
	s.EndOp(op, 42)
	count, bytes := s.Totals()
	if count != 1 || bytes != 42 {
		t.Errorf("Totals() = %d, %d; want 1, 42", count, bytes)
	}
}

func TestMeanLatencyNSZeroWhenEmpty(t *testing.T) {
	var s FlowStats
	if got := s.MeanLatencyNS(); got != 0 {
		t.Errorf("MeanLatencyNS() on empty FlowStats = %v; want 0", got)
	}
}
