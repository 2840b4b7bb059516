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

// Package threadflow runs one thread's flowop list in a loop: it owns
// the per-thread 32-entry fd rotor, a scratch I/O buffer, and the
// iteration/abort bookkeeping that brackets each flowop call with
// latency measurement (spec.md §4.6).
package threadflow

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/eventgen"
	"github.com/filebench/filebench-sub000/pkg/ferr"
	"github.com/filebench/filebench-sub000/pkg/fblog"
	"github.com/filebench/filebench-sub000/pkg/fileset"
	"github.com/filebench/filebench-sub000/pkg/flowop"
	"github.com/filebench/filebench-sub000/pkg/lru"
	"github.com/filebench/filebench-sub000/pkg/stats"
)

const fdSlots = 32

// Def is a thread's declared configuration: its name, how many
// instances to spawn, and the ordered flowop list every instance runs
// per iteration (spec.md §4.6).
type Def struct {
	Name      string
	Instances int
	Flowops   []*flowop.Def
}

// Runtime is the shared, process-wide state every Threadflow needs:
// the fileset table, the event generator, and the target-resolution
// registry used by wakeup/sempost (spec.md §4.5, §4.9).
type Runtime struct {
	mu        sync.RWMutex
	filesets  map[string]*fileset.Fileset
	eventgen  *eventgen.Generator
	all       []*flowop.Instance
	stats     *stats.Registry
	targetLRU *lru.Cache
}

// targetLRUSize bounds how many distinct wakeup/sempost target names
// Runtime.findByTargetName memoizes; beyond it, the least-recently-used
// name's scan result is evicted and recomputed on next lookup.
const targetLRUSize = 256

// NewRuntime constructs an empty Runtime around the given event
// generator. If reg is non-nil, every flowop instance a Threadflow
// creates is also registered there for stats snapshot/dump
// (spec.md §4.7).
func NewRuntime(eg *eventgen.Generator, reg *stats.Registry) *Runtime {
	return &Runtime{
		filesets:  make(map[string]*fileset.Fileset),
		eventgen:  eg,
		stats:     reg,
		targetLRU: lru.New(targetLRUSize),
	}
}

// EventGen returns the runtime's shared event generator.
func (r *Runtime) EventGen() *eventgen.Generator { return r.eventgen }

// AddFileset registers fs under name for flowop lookups.
func (r *Runtime) AddFileset(name string, fs *fileset.Fileset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filesets[name] = fs
}

// register records every instance a Threadflow creates so
// wakeup/sempost can resolve target names across the whole run.
func (r *Runtime) register(instances []*flowop.Instance) {
	r.mu.Lock()
	r.all = append(r.all, instances...)
	// New instances can change every name's match set (spec.md §9
	// target-list resolution happens after every procflow has
	// registered), so any memoized scan is now stale.
	r.targetLRU = lru.New(targetLRUSize)
	r.mu.Unlock()

	if r.stats == nil {
		return
	}
	for _, in := range instances {
		r.stats.Register(in.Def.Name, in.Def.Class.String(), &in.Stats)
	}
}

// findByTargetName scans every registered flowop instance for a
// Def.Name or Def.TargetName match, memoizing the result per name so
// repeated wakeup/sempost calls against a busy target don't re-walk
// the whole instance list (spec.md §9 "Flowop target list caching").
func (r *Runtime) findByTargetName(name string) []*flowop.Instance {
	r.mu.RLock()
	cache := r.targetLRU
	r.mu.RUnlock()

	if cached, ok := cache.Get(name); ok {
		return cached.([]*flowop.Instance)
	}

	r.mu.RLock()
	var out []*flowop.Instance
	for _, in := range r.all {
		if in.Def.Name == name || in.Def.TargetName == name {
			out = append(out, in)
		}
	}
	sameCache := r.targetLRU == cache
	r.mu.RUnlock()

	if sameCache {
		cache.Add(name, out)
	}
	return out
}

// Threadflow is one live thread: an ordered list of flowop instances,
// a private fd table, a scratch buffer, and a per-thread RNG stream
// (spec.md §4.6).
type Threadflow struct {
	ctx    context.Context
	cancel context.CancelFunc

	runtime *Runtime
	name    string
	rng     *rand.Rand

	ops []*flowop.Instance

	fdMu  sync.Mutex
	fds   [fdSlots]flowop.FDSlot
	rotor int

	scratchMu sync.Mutex
	scratch   []byte
}

// New builds a Threadflow from def, binding every flowop's run
// implementation and seeding a private RNG stream from seed.
func New(ctx context.Context, rt *Runtime, def *Def, seed int64) (*Threadflow, error) {
	tctx, cancel := context.WithCancel(ctx)
	tf := &Threadflow{
		ctx:     tctx,
		cancel:  cancel,
		runtime: rt,
		name:    def.Name,
		rng:     rand.New(rand.NewSource(seed)),
	}
	for _, fd := range def.Flowops {
		if err := flowop.Bind(fd); err != nil {
			cancel()
			return nil, err
		}
		tf.ops = append(tf.ops, flowop.NewInstance(fd))
	}
	rt.register(tf.ops)
	return tf, nil
}

// Cancel stops the threadflow's blocking waits (block/semblock/delay)
// promptly, used by procflow's abort propagation.
func (tf *Threadflow) Cancel() { tf.cancel() }

// Run executes the thread's flowop list in order, repeating for iters
// passes (iters <= 0 means "until abort or NoResource"). It returns
// nil on a clean finishoncount/finishonbytes/NoResource stop, and
// propagates KindError/KindFatal flowop errors to the caller (spec.md
// §4.6, §5 "thread completion").
func (tf *Threadflow) Run(iters int) error {
	pass := 0
	for iters <= 0 || pass < iters {
		if tf.ctx.Err() != nil {
			return nil
		}
		for _, in := range tf.ops {
			if tf.ctx.Err() != nil {
				return nil
			}
			if err := in.Run(tf); err != nil {
				if ferr.Is(err, ferr.KindNoResource) {
					return nil
				}
				if ferr.Is(err, ferr.KindTransient) {
					fblog.Default.Verbosef("%s: %s: %v", tf.name, in.Def.Name, err)
					continue
				}
				return err
			}
		}
		pass++
	}
	return nil
}

// --- flowop.ThreadContext implementation ---

func (tf *Threadflow) Deadline() (time.Time, bool) { return tf.ctx.Deadline() }
func (tf *Threadflow) Done() <-chan struct{}       { return tf.ctx.Done() }
func (tf *Threadflow) Err() error                  { return tf.ctx.Err() }
func (tf *Threadflow) Value(key any) any           { return tf.ctx.Value(key) }

func (tf *Threadflow) Fileset(name string) (*fileset.Fileset, bool) {
	tf.runtime.mu.RLock()
	defer tf.runtime.mu.RUnlock()
	fs, ok := tf.runtime.filesets[name]
	return fs, ok
}

func (tf *Threadflow) Rand() *rand.Rand { return tf.rng }

func (tf *Threadflow) EventGen() *eventgen.Generator { return tf.runtime.eventgen }

func (tf *Threadflow) FD(slot int) flowop.FDSlot {
	tf.fdMu.Lock()
	defer tf.fdMu.Unlock()
	return tf.fds[slot%fdSlots]
}

func (tf *Threadflow) SetFD(slot int, s flowop.FDSlot) {
	tf.fdMu.Lock()
	defer tf.fdMu.Unlock()
	tf.fds[slot%fdSlots] = s
}

func (tf *Threadflow) ClearFD(slot int) {
	tf.fdMu.Lock()
	defer tf.fdMu.Unlock()
	tf.fds[slot%fdSlots] = flowop.FDSlot{}
}

// NextFDSlot returns the current rotor position, advancing it first
// when rotate is true (spec.md §4.5 "fd rotor").
func (tf *Threadflow) NextFDSlot(rotate bool) int {
	tf.fdMu.Lock()
	defer tf.fdMu.Unlock()
	if rotate {
		tf.rotor = (tf.rotor + 1) % fdSlots
	}
	return tf.rotor
}

// Scratch returns the thread's private scratch buffer, growing it if
// minSize exceeds its current capacity (spec.md §4.5 shared I/O
// buffer).
func (tf *Threadflow) Scratch(minSize int) []byte {
	tf.scratchMu.Lock()
	defer tf.scratchMu.Unlock()
	if len(tf.scratch) < minSize {
		tf.scratch = make([]byte, minSize)
	}
	return tf.scratch
}

func (tf *Threadflow) FindByTargetName(name string) []*flowop.Instance {
	return tf.runtime.findByTargetName(name)
}

// Stats returns the run's shared stats registry, or nil if the
// runtime was built without one.
func (tf *Threadflow) Stats() *stats.Registry { return tf.runtime.stats }

// CloseFDs closes every open fd slot, called at thread teardown
// (spec.md §4.6 "thread exit").
func (tf *Threadflow) CloseFDs() {
	tf.fdMu.Lock()
	defer tf.fdMu.Unlock()
	for i := range tf.fds {
		if tf.fds[i].File != nil {
			_ = tf.fds[i].File.Close()
			tf.fds[i] = flowop.FDSlot{}
		}
	}
}
