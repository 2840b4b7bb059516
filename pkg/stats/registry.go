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
	"sync"

	"github.com/filebench/filebench-sub000/pkg/fblog"
)

// LiveFlowop is anything the registry can roll up at snapshot time: a
// name, a class ("io", "sync", "other"), and its FlowStats.
type LiveFlowop struct {
	Name  string
	Class string
	Stats *FlowStats
}

// Registry tracks every live flowop instance plus per-name MASTER
// totals and a single global total, matching spec.md §4.7's
// Snapshot contract.
type Registry struct {
	mu    sync.Mutex
	live  []LiveFlowop
	byName map[string]*FlowStats
	global FlowStats
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*FlowStats)}
}

// Register adds a live flowop instance to the registry.
func (r *Registry) Register(name, class string, s *FlowStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live = append(r.live, LiveFlowop{Name: name, Class: class, Stats: s})
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = &FlowStats{}
	}
}

// Snapshot freezes every live flowop, rolls its counters into the
// per-name and global totals, logs a breakdown, and thaws again
// (spec.md §4.7).
func (r *Registry) Snapshot() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, lf := range r.live {
		lf.Stats.SetQuiet(true)
	}

	for _, acc := range r.byName {
		*acc = FlowStats{}
	}
	r.global = FlowStats{}

	var out []Snapshot
	for _, lf := range r.live {
		lf.Stats.AddInto(r.byName[lf.Name])
		lf.Stats.AddInto(&r.global)
	}
	for name, acc := range r.byName {
		snap := acc.toSnapshot(name, "MASTER")
		out = append(out, snap)
		fblog.Default.Infof("%-20s %10d ops %12d bytes %8.1fus/op avg",
			name, snap.Count, snap.Bytes, snap.MeanLatencyUS)
	}
	globalSnap := r.global.toSnapshot("IOSUMMARY", "global")
	out = append(out, globalSnap)
	fblog.Default.Infof("IO Summary: %d ops, %d bytes, %.1fus/op avg",
		globalSnap.Count, globalSnap.Bytes, globalSnap.MeanLatencyUS)

	for _, lf := range r.live {
		lf.Stats.SetQuiet(false)
	}
	return out
}

// Clear zeroes every live flowop's stats and the per-name/global
// totals, stamping nothing else (the region's epoch reset is the
// caller's responsibility).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lf := range r.live {
		lf.Stats.Clear()
	}
	for _, acc := range r.byName {
		acc.Clear()
	}
	r.global.Clear()
}

// Global returns the live aggregated totals across every registered
// flowop instance, recomputed on every call so rate-limiting and
// finish-on-count/bytes flowops (spec.md §4.5) see continuously
// up-to-date counters rather than whatever was true as of the last
// explicit Snapshot.
func (r *Registry) Global() *FlowStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc := &FlowStats{}
	for _, lf := range r.live {
		lf.Stats.AddInto(acc)
	}
	return acc
}

// ByName returns the live aggregated totals across every registered
// flowop instance sharing name, or nil if name was never registered
// (spec.md §4.5 "limit target").
func (r *Registry) ByName(name string) *FlowStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return nil
	}
	acc := &FlowStats{}
	for _, lf := range r.live {
		if lf.Name == name {
			lf.Stats.AddInto(acc)
		}
	}
	return acc
}
