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

// Package workload implements the Builder: the construction-call
// surface spec.md §6 describes as "consumed from the parser" — a
// workload description language's parser is explicitly out of scope,
// but the calls it would make (DefineFileset, DefineProcess,
// DefineThread, DefineFlowop, Start, Warmup, Sleep, StatsClear,
// StatsSnap, StatsDump, Shutdown) are not, so this package exposes
// them directly as an API any driver — a CLI, a config-file loader, a
// test — can call.
package workload

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/filebench/filebench-sub000/pkg/eventgen"
	"github.com/filebench/filebench-sub000/pkg/fblog"
	"github.com/filebench/filebench-sub000/pkg/fileset"
	"github.com/filebench/filebench-sub000/pkg/flowop"
	"github.com/filebench/filebench-sub000/pkg/procflow"
	"github.com/filebench/filebench-sub000/pkg/region"
	"github.com/filebench/filebench-sub000/pkg/stats"
	"github.com/filebench/filebench-sub000/pkg/threadflow"
)

// Builder accumulates a workload's declared filesets, processes, and
// their flowop lists, then Start() hands them to procflow.Create
// (spec.md §6, §4.8).
type Builder struct {
	mu sync.Mutex

	Region  *region.Region
	Runtime *threadflow.Runtime
	Stats   *stats.Registry

	filesets map[string]*fileset.Fileset
	procs    []*procflow.Def

	controller *procflow.Controller
	runCtx     context.Context
	runCancel  context.CancelFunc
}

// New constructs a Builder around a fresh Region, event generator and
// stats registry (spec.md §4.1).
func New() *Builder {
	r := region.New()
	eg := eventgen.New()
	statsReg := stats.NewRegistry()
	rt := threadflow.NewRuntime(eg, statsReg)
	return &Builder{
		Region:   r,
		Runtime:  rt,
		Stats:    statsReg,
		filesets: make(map[string]*fileset.Fileset),
	}
}

// DefineFileset registers a fileset under cfg.Name, usable by any
// later DefineFlowop call naming it.
func (b *Builder) DefineFileset(cfg fileset.Config) *fileset.Fileset {
	b.mu.Lock()
	defer b.mu.Unlock()
	fs := fileset.New(cfg)
	b.filesets[cfg.Name] = fs
	b.Runtime.AddFileset(cfg.Name, fs)
	return fs
}

// Fileset looks up a previously defined fileset by name.
func (b *Builder) Fileset(name string) (*fileset.Fileset, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fs, ok := b.filesets[name]
	return fs, ok
}

// PopulateFileset runs Populate then CreateOnDisk for the named
// fileset (spec.md §4.4.1, §4.4.2), the
// "fileset create" workload-language verb.
func (b *Builder) PopulateFileset(ctx context.Context, name string, rng *rand.Rand) error {
	fs, ok := b.Fileset(name)
	if !ok {
		return fmt.Errorf("workload: unknown fileset %q", name)
	}
	if err := fs.Populate(rng); err != nil {
		return fmt.Errorf("workload: populate %q: %w", name, err)
	}
	if err := fs.CreateOnDisk(ctx, rng); err != nil {
		return fmt.Errorf("workload: create %q on disk: %w", name, err)
	}
	return nil
}

// DefineProcess registers a process definition; its Threads slice is
// filled in by subsequent DefineThread/DefineFlowop calls against the
// returned *procflow.Def.
func (b *Builder) DefineProcess(name string, instances int) *procflow.Def {
	b.mu.Lock()
	defer b.mu.Unlock()
	def := &procflow.Def{Name: name, Instances: instances}
	b.procs = append(b.procs, def)
	return def
}

// DefineThread appends a thread definition to proc, returning it so
// DefineFlowop calls can append to its Flowops list.
func (b *Builder) DefineThread(proc *procflow.Def, name string, instances int) *threadflow.Def {
	tdef := &threadflow.Def{Name: name, Instances: instances}
	proc.Threads = append(proc.Threads, tdef)
	return tdef
}

// DefineFlowop appends a bound flowop definition to thread's flowop
// list, failing if def.TypeName names no registered primitive.
func (b *Builder) DefineFlowop(thread *threadflow.Def, def *flowop.Def) error {
	if err := flowop.Bind(def); err != nil {
		return err
	}
	thread.Flowops = append(thread.Flowops, def)
	return nil
}

// Start runs proc_create over every declared process
// (spec.md §4.8, the workload-language "run" verb).
func (b *Builder) Start(ctx context.Context) error {
	b.mu.Lock()
	defs := append([]*procflow.Def(nil), b.procs...)
	b.mu.Unlock()

	b.controller = procflow.NewController(b.Region, b.Runtime)
	runCtx, cancel := context.WithCancel(ctx)
	b.runCtx = runCtx
	b.runCancel = cancel

	gctx, err := b.controller.Create(runCtx, defs)
	if err != nil {
		cancel()
		return err
	}
	b.runCtx = gctx
	return nil
}

// Warmup sleeps for d before the workload's stats are cleared, letting
// caches/filesystems reach steady state (spec.md §6 "warmup").
func (b *Builder) Warmup(d time.Duration) {
	fblog.Default.Infof("warmup: sleeping %s", d)
	time.Sleep(d)
	b.StatsClear()
}

// Sleep blocks the caller for d while the run continues in the
// background (spec.md §6 "sleep").
func (b *Builder) Sleep(d time.Duration) { time.Sleep(d) }

// StatsClear zeroes every live flowop's statistics and re-stamps the
// region epoch (spec.md §4.7 "clear").
func (b *Builder) StatsClear() {
	b.Stats.Clear()
	b.Region.ResetEpoch()
}

// StatsSnap freezes and rolls up every live flowop's statistics,
// returning the per-name and global snapshot (spec.md §4.7
// "snapshot").
func (b *Builder) StatsSnap() []stats.Snapshot { return b.Stats.Snapshot() }

// StatsDump writes the named format's rendering of the latest snapshot
// to w (spec.md §6 "File formats").
func (b *Builder) StatsDump(w io.Writer, format string) error {
	snaps := b.StatsSnap()
	switch format {
	case "text", "":
		return stats.DumpText(w, snaps)
	case "multitab":
		return stats.DumpMultitab(w, snaps)
	case "xml":
		return stats.DumpXML(w, snaps)
	default:
		return fmt.Errorf("workload: unknown stats dump format %q", format)
	}
}

// Shutdown runs the shutdown sequence of spec.md §4.8: mark the run
// done, wait for workers to drain, then cancel the run context.
func (b *Builder) Shutdown() {
	if b.controller != nil {
		b.controller.Shutdown(region.AbortDone)
	}
	if b.runCancel != nil {
		b.runCancel()
	}
}
