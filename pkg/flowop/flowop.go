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

// Package flowop implements the flowop library: the primitive I/O and
// synchronization operations a threadflow executes in order, each
// with init/run/destruct contracts and per-instance statistics
// (spec.md §4.5). To avoid an import cycle with the threadflow
// package that owns the per-thread fd table and scratch buffer, a
// flowop only sees its caller through the ThreadContext interface
// below; package threadflow implements it.
package flowop

import (
	"context"
	"math/rand"
	"os"
	"sync"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/eventgen"
	"github.com/filebench/filebench-sub000/pkg/fileset"
	"github.com/filebench/filebench-sub000/pkg/stats"
)

// Class is a flowop's execution category (spec.md §3).
type Class int

const (
	ClassIO Class = iota
	ClassSync
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassIO:
		return "io"
	case ClassSync:
		return "sync"
	default:
		return "other"
	}
}

// Category distinguishes a parsed template from its per-thread live
// replicas and from an inner definition nested in a composite flowop
// (spec.md §3).
type Category int

const (
	CategoryMasterDefinition Category = iota
	CategoryPerThreadLive
	CategoryCompositeInner
)

// FDSlot is one entry in a threadflow's 32-entry file-descriptor
// rotor table.
type FDSlot struct {
	File  *os.File
	Entry *fileset.FilesetEntry
	Fsname string
}

// ThreadContext is everything a flowop Run needs from its owning
// threadflow, kept as an interface so this package need not import
// package threadflow (which imports this package for the Flowop
// type).
type ThreadContext interface {
	context.Context

	Fileset(name string) (*fileset.Fileset, bool)
	Rand() *rand.Rand
	EventGen() *eventgen.Generator

	FD(slot int) FDSlot
	SetFD(slot int, s FDSlot)
	ClearFD(slot int)
	NextFDSlot(rotate bool) int

	Scratch(minSize int) []byte

	// FindByTargetName resolves every live flowop in the run whose
	// Def.TargetName or Def.Name equals name, the first-call-only
	// linear search spec.md §9 describes for wake/sem target lists.
	FindByTargetName(name string) []*Instance

	// Stats returns the run's shared stats registry, used by
	// iopslimit/opslimit/bwlimit/finishoncount/finishonbytes to read a
	// named target's (or the workload-wide global's) running totals
	// (spec.md §4.5). May be nil if the run was built without one.
	Stats() *stats.Registry
}

// Def is a flowop's parsed, AVD-typed configuration — the template
// replicated into a live Instance at thread-spawn time.
type Def struct {
	Name     string
	TypeName string
	Class    Class
	Category Category

	FilesetName string
	FileIndex   *avd.AVD
	TargetName  string

	Iosize      *avd.AVD
	WSS         *avd.AVD
	Iters       *avd.AVD
	Value       *avd.AVD
	Random      *avd.AVD
	DSync       *avd.AVD
	DirectIO    *avd.AVD
	NoReadAhead *avd.AVD
	Blocking    *avd.AVD
	RotateFD    *avd.AVD

	Inner []*Def // composite flowop's inner definitions

	run func(ctx ThreadContext, in *Instance) error
}

// Instance is a live, per-thread replica of a Def, owning its own
// statistics and synchronization primitives.
type Instance struct {
	Def   *Def
	Stats stats.FlowStats

	mu   sync.Mutex
	cond *sync.Cond

	semCount int64
	blocked  bool

	targets     []*Instance
	targetsOnce sync.Once

	scratch []byte

	testRVCount  int64
	testRVSum    float64
	testRVSumSq  float64

	offset int64 // sequential read/write position, advanced under mu

	// tput* track the delta-bucket state iopslimit/opslimit/bwlimit use
	// to throttle against a resolved target's counter, advanced under mu
	// (spec.md §4.5).
	tputInitted bool
	tputLast    int64
	tputBucket  int64
}

// NewInstance replicates def into a live per-thread Instance.
func NewInstance(def *Def) *Instance {
	in := &Instance{Def: def}
	in.cond = sync.NewCond(&in.mu)
	return in
}

// Run executes the flowop's single underlying operation once. The
// thread loop (package threadflow) is responsible for calling Run
// Iters times per pass and bracketing each call with latency
// measurement via in.Stats.
func (in *Instance) Run(ctx ThreadContext) error {
	return in.Def.run(ctx, in)
}

// resolveTargets resolves the wake/sem target list by name on first
// call only; subsequent calls reuse the cached slice
// (spec.md §4.5 wakeup, §9 "Flowop target list caching").
func (in *Instance) resolveTargets(ctx ThreadContext) []*Instance {
	in.targetsOnce.Do(func() {
		name := in.Def.TargetName
		if name == "" {
			name = in.Def.Name
		}
		in.targets = ctx.FindByTargetName(name)
	})
	return in.targets
}

// Cond returns the instance's private condvar, used by block/wakeup.
func (in *Instance) Cond() *sync.Cond { return in.cond }

// Lock/Unlock expose the instance's private mutex to block/wakeup.
func (in *Instance) Lock()   { in.mu.Lock() }
func (in *Instance) Unlock() { in.mu.Unlock() }

// watchCancel broadcasts on in.cond once ctx is done, so a
// block/semblock waiter parked in cond.Wait() reliably wakes to
// recheck ctx.Err(). The returned func must be deferred to stop the
// watcher once the wait loop exits normally.
func (in *Instance) watchCancel(ctx ThreadContext) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			in.Lock()
			in.cond.Broadcast()
			in.Unlock()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// semValue resolves Def.Value for semblock/sempost, defaulting to 1
// (spec.md §4.5 "semblock decrements by value", "sempost increments
// by value").
func (in *Instance) semValue() int64 {
	n, err := avd.GetInt(in.Def.Value)
	if err != nil || n == 0 {
		return 1
	}
	return n
}
