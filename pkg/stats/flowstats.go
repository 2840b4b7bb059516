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

// Package stats implements per-flowop statistics: FlowStats counters,
// begin_op/end_op latency measurement, snapshot aggregation into
// per-name and global totals, and the text/tsv/xml dump formats
// (spec.md §4.7).
package stats

import (
	"math/bits"
	"sync"
	"time"
)

const histogramBuckets = 64

// FlowStats is one live flowop's accumulated counters
// (spec.md §4.7).
type FlowStats struct {
	mu sync.Mutex

	Count  int64
	RCount int64
	WCount int64

	Bytes  int64
	RBytes int64
	WBytes int64

	TotalLatencyNS int64
	MinLatencyNS   int64
	MaxLatencyNS   int64

	Histogram [histogramBuckets]int64

	quiet bool
}

// IOClass distinguishes read/write/other for rcount/wcount
// bookkeeping (spec.md §8 invariant 4).
type IOClass int

const (
	IONone IOClass = iota
	IORead
	IOWrite
)

// Op tracks one in-flight operation's begin time for latency
// measurement.
type Op struct {
	start time.Time
	class IOClass
}

// BeginOp samples the start time for an operation.
func (s *FlowStats) BeginOp(class IOClass) Op {
	return Op{start: time.Now(), class: class}
}

// EndOp finalizes an operation: records latency, count, byte totals,
// and updates the log2 latency histogram (spec.md §4.7).
func (s *FlowStats) EndOp(op Op, bytesIO int64) {
	latency := time.Since(op.start).Nanoseconds()
	if latency < 1 {
		latency = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiet {
		return
	}
	s.Count++
	switch op.class {
	case IORead:
		s.RCount++
		s.RBytes += bytesIO
	case IOWrite:
		s.WCount++
		s.WBytes += bytesIO
	}
	s.Bytes += bytesIO
	s.TotalLatencyNS += latency
	if s.MinLatencyNS == 0 || latency < s.MinLatencyNS {
		s.MinLatencyNS = latency
	}
	if latency > s.MaxLatencyNS {
		s.MaxLatencyNS = latency
	}
	bucket := bits.Len64(uint64(latency)) - 1
	if bucket < 0 {
		bucket = 0
	}
	if bucket >= histogramBuckets {
		bucket = histogramBuckets - 1
	}
	s.Histogram[bucket]++
}

// SetQuiet freezes (or unfreezes) further updates, letting Snapshot
// observe a consistent cut (spec.md §4.7, §5).
func (s *FlowStats) SetQuiet(q bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiet = q
}

// Clear zeroes every counter.
func (s *FlowStats) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Count, s.RCount, s.WCount = 0, 0, 0
	s.Bytes, s.RBytes, s.WBytes = 0, 0, 0
	s.TotalLatencyNS, s.MinLatencyNS, s.MaxLatencyNS = 0, 0, 0
	s.Histogram = [histogramBuckets]int64{}
}

// AddInto accumulates s's counters into dst (used when rolling live
// flowop stats up into per-name/per-type/global totals).
func (s *FlowStats) AddInto(dst *FlowStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dst.mu.Lock()
	defer dst.mu.Unlock()
	dst.Count += s.Count
	dst.RCount += s.RCount
	dst.WCount += s.WCount
	dst.Bytes += s.Bytes
	dst.RBytes += s.RBytes
	dst.WBytes += s.WBytes
	dst.TotalLatencyNS += s.TotalLatencyNS
	if dst.MinLatencyNS == 0 || (s.MinLatencyNS != 0 && s.MinLatencyNS < dst.MinLatencyNS) {
		dst.MinLatencyNS = s.MinLatencyNS
	}
	if s.MaxLatencyNS > dst.MaxLatencyNS {
		dst.MaxLatencyNS = s.MaxLatencyNS
	}
	for i := range s.Histogram {
		dst.Histogram[i] += s.Histogram[i]
	}
}

// Totals returns the current op count and byte count under lock, for
// callers (e.g. finishoncount/finishonbytes) that need a consistent
// read without racing EndOp.
func (s *FlowStats) Totals() (count, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Count, s.Bytes
}

// MeanLatencyNS returns the mean per-op latency, or 0 if Count is 0.
func (s *FlowStats) MeanLatencyNS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Count == 0 {
		return 0
	}
	return float64(s.TotalLatencyNS) / float64(s.Count)
}

// HistogramSum returns the sum of all histogram buckets, which must
// equal Count (spec.md §8 invariant 6).
func (s *FlowStats) HistogramSum() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, v := range s.Histogram {
		sum += v
	}
	return sum
}

// Snapshot is an immutable copy of a FlowStats for dumping.
type Snapshot struct {
	Name   string
	Class  string
	Count  int64
	RCount int64
	WCount int64
	Bytes  int64
	RBytes int64
	WBytes int64
	MeanLatencyUS float64
	MinLatencyUS  float64
	MaxLatencyUS  float64
}

func (s *FlowStats) toSnapshot(name, class string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	mean := 0.0
	if s.Count > 0 {
		mean = float64(s.TotalLatencyNS) / float64(s.Count) / 1000
	}
	return Snapshot{
		Name: name, Class: class,
		Count: s.Count, RCount: s.RCount, WCount: s.WCount,
		Bytes: s.Bytes, RBytes: s.RBytes, WBytes: s.WBytes,
		MeanLatencyUS: mean,
		MinLatencyUS:  float64(s.MinLatencyNS) / 1000,
		MaxLatencyUS:  float64(s.MaxLatencyNS) / 1000,
	}
}

