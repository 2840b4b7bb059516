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

package flowop

import (
	"context"
	"math/rand"
	"testing"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/eventgen"
	"github.com/filebench/filebench-sub000/pkg/fileset"
	"github.com/filebench/filebench-sub000/pkg/randvar"
	"github.com/filebench/filebench-sub000/pkg/stats"
)

// fakeCtx is a minimal, single-goroutine ThreadContext for exercising
// flowop run functions without a real threadflow.
type fakeCtx struct {
	context.Context
	fsMap   map[string]*fileset.Fileset
	rng     *rand.Rand
	evgen   *eventgen.Generator
	fds     [32]FDSlot
	rotor   int
	scratch []byte
	targets map[string][]*Instance
	reg     *stats.Registry
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{
		Context: context.Background(),
		fsMap:   make(map[string]*fileset.Fileset),
		rng:     rand.New(rand.NewSource(1)),
		evgen:   eventgen.New(),
		targets: make(map[string][]*Instance),
		reg:     stats.NewRegistry(),
	}
}

// registerStats adds in to the fake context's stats registry under
// name, letting iopslimit/opslimit/bwlimit/finishoncount/finishonbytes
// tests resolve a named target's live totals via ctx.Stats().
func (c *fakeCtx) registerStats(name string, in *Instance) {
	c.reg.Register(name, in.Def.Class.String(), &in.Stats)
}

func (c *fakeCtx) Fileset(name string) (*fileset.Fileset, bool) {
	fs, ok := c.fsMap[name]
	return fs, ok
}
func (c *fakeCtx) Rand() *rand.Rand                  { return c.rng }
func (c *fakeCtx) EventGen() *eventgen.Generator     { return c.evgen }
func (c *fakeCtx) FD(slot int) FDSlot                { return c.fds[slot] }
func (c *fakeCtx) SetFD(slot int, s FDSlot)          { c.fds[slot] = s }
func (c *fakeCtx) ClearFD(slot int)                  { c.fds[slot] = FDSlot{} }
func (c *fakeCtx) NextFDSlot(rotate bool) int {
	if rotate {
		c.rotor = (c.rotor + 1) % 32
	}
	return c.rotor
}
func (c *fakeCtx) Scratch(minSize int) []byte {
	if len(c.scratch) < minSize {
		c.scratch = make([]byte, minSize)
	}
	return c.scratch
}
func (c *fakeCtx) FindByTargetName(name string) []*Instance { return c.targets[name] }
func (c *fakeCtx) Stats() *stats.Registry                   { return c.reg }

// newTestFilesetWithFiles populates and materializes a fileset of n
// files, each sized 64KiB, entirely on disk (PreallocPercent=100), so
// read/write/stat/delete flowops have something to pick.
func newTestFilesetWithFiles(t *testing.T, n int64) *fileset.Fileset {
	t.Helper()
	// A uniform distribution with min == mean always yields exactly
	// that value, giving every file a fixed, nonzero size without
	// needing to walk the populated tree after the fact.
	sizeDist := randvar.New(randvar.ModeUniform, randvar.NewGenerator48(1), 65536, 0, 65536, 0, nil)
	fs := fileset.New(fileset.Config{
		Name:            "fs1",
		Root:            t.TempDir(),
		Entries:         avd.Int(n),
		LeafDirs:        avd.Int(1),
		MeanWidth:       avd.Double(4),
		PreallocPercent: avd.Double(100),
		SizeDist:        sizeDist,
	})
	if err := fs.Populate(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if err := fs.CreateOnDisk(context.Background(), rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("CreateOnDisk() error = %v", err)
	}
	return fs
}

func newDef(name, typeName string) *Def {
	return &Def{Name: name, TypeName: typeName}
}

// newTestFilesetNoPrealloc is like newTestFilesetWithFiles but leaves
// every file not-on-disk (PreallocPercent=0), the fixture createfile
// and makedir tests need so there is something left to pick via
// SelNonexisting.
func newTestFilesetNoPrealloc(t *testing.T, n int64) *fileset.Fileset {
	t.Helper()
	sizeDist := randvar.New(randvar.ModeUniform, randvar.NewGenerator48(1), 65536, 0, 65536, 0, nil)
	fs := fileset.New(fileset.Config{
		Name:            "fs1",
		Root:            t.TempDir(),
		Entries:         avd.Int(n),
		LeafDirs:        avd.Int(1),
		MeanWidth:       avd.Double(4),
		PreallocPercent: avd.Double(0),
		SizeDist:        sizeDist,
	})
	if err := fs.Populate(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if err := fs.CreateOnDisk(context.Background(), rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("CreateOnDisk() error = %v", err)
	}
	return fs
}
