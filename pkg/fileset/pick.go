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
	"math/rand"

	"github.com/filebench/filebench-sub000/pkg/ferr"
)

// Selector is the existence/placement half of a pick mode.
type Selector int

const (
	SelFree        Selector = iota // unique-from-free
	SelExisting                    // pick an entry that exists on disk
	SelNonexisting                 // pick an entry not on disk
	SelByIndex                     // caller-supplied index, exists partition
	SelRotor                       // sequential rotor selection
)

// PickMode names which kind and which partition/selector to draw
// from (spec.md §4.4.3).
type PickMode struct {
	Kind     EntryKind
	Selector Selector
}

// idleDirs tracks non-leaf directories not currently BUSY; non-leaf
// dirs have no free/exists/noex split (spec.md §3: "all non-leaf
// dirs always exist once populated").
func (fs *Fileset) idleDirs() int {
	n := 0
	for i := 0; i < fs.dirs.Len(); i++ {
		if !fs.dirs.At(i).hasFlag(FlagBusy) {
			n++
		}
	}
	return n
}

func (fs *Fileset) partitionFor(kind EntryKind, sel Selector) (*orderedIndex, *int) {
	var part *kindPartition
	switch kind {
	case KindFile:
		part = &fs.files
	case KindLeafDir:
		part = &fs.leafdirs
	default:
		return nil, nil
	}
	switch sel {
	case SelFree:
		return &part.free, &part.idleFree
	case SelExisting:
		return &part.exists, &part.idleExists
	case SelNonexisting:
		return &part.noex, &part.idleNoex
	default:
		// by-index/rotor search only the "existing" partition, since
		// that is the common case for open/stat/delete.
		return &part.exists, &part.idleExists
	}
}

// Pick selects an entry per mode, blocking on the relevant idle
// condvar until one is available, then marking it BUSY
// (spec.md §4.4.3). indexHint is used only for SelByIndex; SelRotor
// continues from the index's own rotor cursor.
func (fs *Fileset) Pick(mode PickMode, rng *rand.Rand, indexHint int64) (*FilesetEntry, error) {
	fs.pickLock.Lock()
	defer fs.pickLock.Unlock()

	if mode.Kind == KindDir {
		for fs.idleDirs() == 0 {
			if fs.dirs.Len() == 0 {
				return nil, ferr.NoResource("pick", nil)
			}
			fs.idleCond[KindDir].Wait()
		}
		key := indexHint
		if mode.Selector != SelByIndex {
			key = fs.randomKey(fs.dirs.Len(), rng)
		}
		e, ok := fs.dirs.FindUnbusyGE(key)
		if !ok {
			return nil, ferr.NoResource("pick", nil)
		}
		e.addFlag(FlagBusy)
		return e, nil
	}

	ix, idle := fs.partitionFor(mode.Kind, mode.Selector)
	if ix == nil {
		return nil, ferr.Errorf("pick", "unsupported kind %v", mode.Kind)
	}
	for *idle <= 0 {
		if ix.Len() == 0 {
			return nil, ferr.NoResource("pick", nil)
		}
		fs.idleCond[mode.Kind].Wait()
	}

	var e *FilesetEntry
	var ok bool
	switch mode.Selector {
	case SelByIndex:
		e, ok = ix.FindUnbusyGE(indexHint)
	case SelRotor:
		e, ok = ix.Rotor()
		if ok && e.hasFlag(FlagBusy) {
			e, ok = ix.FindUnbusyGE(e.Index)
		}
	default:
		key := fs.randomKey(ix.Len(), rng)
		e, ok = ix.FindUnbusyGE(key)
	}
	if !ok {
		return nil, ferr.NoResource("pick", nil)
	}

	*idle--
	e.addFlag(FlagBusy)
	return e, nil
}

func (fs *Fileset) randomKey(n int, rng *rand.Rand) int64 {
	if n == 0 {
		return 0
	}
	return int64(rng.Intn(n))
}

// Unbusy releases an entry previously returned by Pick, optionally
// transitioning it between the exists/not-on-disk indexes and
// adjusting its open-reference count (spec.md §4.4.4).
func (fs *Fileset) Unbusy(e *FilesetEntry, updateExist bool, newExists bool, openDelta int32) {
	fs.pickLock.Lock()
	defer fs.pickLock.Unlock()

	if updateExist && (e.Kind == KindFile || e.Kind == KindLeafDir) {
		part := &fs.files
		if e.Kind == KindLeafDir {
			part = &fs.leafdirs
		}
		wasExists := e.hasFlag(FlagExists)
		if newExists && !wasExists {
			part.noex.Remove(e)
			part.exists.Insert(e)
			e.addFlag(FlagExists)
		} else if !newExists && wasExists {
			part.exists.Remove(e)
			part.noex.Insert(e)
			e.clearFlag(FlagExists)
		}
	}

	e.addOpen(openDelta)
	// Only an entry that Pick made busy goes back into the idle counts;
	// a call on an entry that is not busy (closefile) adjusts its open
	// count without counting it idle twice.
	wasBusy := e.hasFlag(FlagBusy)
	e.clearFlag(FlagBusy)

	if e.hasFlag(FlagThreadWaiting) {
		e.clearFlag(FlagThreadWaiting)
		fs.thrdWaitCV.Broadcast()
	}

	switch e.Kind {
	case KindFile, KindLeafDir:
		if !wasBusy {
			break
		}
		part := &fs.files
		if e.Kind == KindLeafDir {
			part = &fs.leafdirs
		}
		switch {
		case e.hasFlag(FlagFree):
			part.idleFree++
		case e.hasFlag(FlagExists):
			part.idleExists++
		default:
			part.idleNoex++
		}
	}
	fs.idleCond[e.Kind].Signal()
}

// WaitUnbusy blocks the calling goroutine until e is no longer BUSY,
// marking THRD-WAITING so the holder's Unbusy call broadcasts
// thrdWaitCV (spec.md §4.5 closefile/deletefile contract).
func (fs *Fileset) WaitUnbusy(e *FilesetEntry) {
	fs.pickLock.Lock()
	defer fs.pickLock.Unlock()
	for e.hasFlag(FlagBusy) {
		e.addFlag(FlagThreadWaiting)
		fs.thrdWaitCV.Wait()
	}
}
