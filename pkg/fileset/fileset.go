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

package fileset

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/randvar"
)

// Flags bundles the fileset-wide boolean attributes from spec.md §3.
type Flags struct {
	RawDevice          bool
	SingleFile         bool
	ReadOnly           bool
	WriteOnly          bool
	ReuseExisting      bool
	TrustTree          bool
	Cached             bool
	Preallocate        bool
	ParallelPreallocate bool
}

// Config is a fileset's declared parameters, still AVD-typed where the
// spec calls for late binding.
type Config struct {
	Name            string
	Root            string
	Flags           Flags
	Entries         *avd.AVD // entries-count attr
	LeafDirs        *avd.AVD // leafdirs-count attr
	MeanWidth       *avd.AVD
	PreallocPercent *avd.AVD // 0..100
	SizeDist        *randvar.RandDist
	DepthDist       *randvar.RandDist // optional; nil uses mean-depth
}

// Fileset is the in-memory tree plus the on-disk materialization
// state (spec.md §3, §4.4).
type Fileset struct {
	Config

	root *FilesetEntry

	pickLock   sync.Mutex
	idleCond   map[EntryKind]*sync.Cond
	thrdWaitCV *sync.Cond

	files    kindPartition
	leafdirs kindPartition
	dirs     orderedIndex // all exist once populated; no free/noex split

	nextIndex int64

	realfiles    int64
	realleafdirs int64
	fsBytes      int64

	meanDepth float64
}

// kindPartition is the three-way {free, exists, not-on-disk} split
// for file and leaf-dir entries (spec.md §3 invariants).
type kindPartition struct {
	free   orderedIndex
	exists orderedIndex
	noex   orderedIndex

	idleFree   int
	idleExists int
	idleNoex   int
}

// New constructs an empty, unpopulated fileset.
func New(cfg Config) *Fileset {
	fs := &Fileset{Config: cfg}
	fs.idleCond = map[EntryKind]*sync.Cond{
		KindFile:    sync.NewCond(&fs.pickLock),
		KindLeafDir: sync.NewCond(&fs.pickLock),
		KindDir:     sync.NewCond(&fs.pickLock),
	}
	fs.thrdWaitCV = sync.NewCond(&fs.pickLock)
	return fs
}

// RealFiles, RealLeafDirs, and FSBytes report the counts and total
// byte footprint of files actually created on disk.
func (fs *Fileset) RealFiles() int64    { return atomic.LoadInt64(&fs.realfiles) }
func (fs *Fileset) RealLeafDirs() int64 { return atomic.LoadInt64(&fs.realleafdirs) }
func (fs *Fileset) FSBytes() int64      { return atomic.LoadInt64(&fs.fsBytes) }

// MeanDepth returns the computed mean directory depth,
// log(entries+leafdirs)/log(meanWidth), per spec.md §4.4.1.
func (fs *Fileset) MeanDepth() float64 { return fs.meanDepth }

// resolvedParams collects the AVD-resolved scalar parameters used by
// Populate and CreateOnDisk.
type resolvedParams struct {
	entries         int64
	leafdirs        int64
	meanWidth       float64
	preallocPercent float64
}

func (fs *Fileset) resolve() (resolvedParams, error) {
	var p resolvedParams
	var err error
	if p.entries, err = avd.GetInt(fs.Entries); err != nil {
		return p, fmt.Errorf("fileset %s: entries: %w", fs.Name, err)
	}
	if p.leafdirs, err = avd.GetInt(fs.LeafDirs); err != nil {
		return p, fmt.Errorf("fileset %s: leafdirs: %w", fs.Name, err)
	}
	if p.meanWidth, err = avd.GetDouble(fs.MeanWidth); err != nil {
		return p, fmt.Errorf("fileset %s: meanwidth: %w", fs.Name, err)
	}
	if p.meanWidth <= 1 {
		p.meanWidth = 2
	}
	if p.preallocPercent, err = avd.GetDouble(fs.PreallocPercent); err != nil {
		return p, fmt.Errorf("fileset %s: preallocpercent: %w", fs.Name, err)
	}
	return p, nil
}

func computeMeanDepth(entries, leafdirs int64, width float64) float64 {
	total := float64(entries + leafdirs)
	if total <= 0 || width <= 1 {
		return 1
	}
	return math.Log(total) / math.Log(width)
}
