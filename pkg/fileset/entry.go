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

// Package fileset implements the in-memory fileset tree, its three
// per-kind ordered indexes, on-disk population, and the thread-safe
// pick/unbusy operations (spec.md §4.4).
package fileset

import (
	"path/filepath"
	"sync/atomic"
)

// EntryKind is the kind of a FilesetEntry.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
	KindLeafDir
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindLeafDir:
		return "leafdir"
	default:
		return "unknown"
	}
}

// EntryFlag is a bit in FilesetEntry.Flags.
type EntryFlag uint32

const (
	FlagFree EntryFlag = 1 << iota
	FlagExists
	FlagBusy
	FlagReusing
	FlagThreadWaiting
)

// FilesetEntry is one file, directory, or leaf-directory in a
// fileset's in-memory tree (spec.md §3).
type FilesetEntry struct {
	Parent *FilesetEntry
	Local  string
	Depth  int
	Kind   EntryKind
	Size   int64
	Index  int64 // monotonic key, primary index into this kind's ordered index

	flags     uint32 // EntryFlag bits, accessed atomically
	openCount int32

	children []*FilesetEntry // dir/leafdir only, populated at tree-build time
}

// Flags returns the entry's current flag bits.
func (e *FilesetEntry) Flags() EntryFlag { return EntryFlag(atomic.LoadUint32(&e.flags)) }

func (e *FilesetEntry) setFlags(f EntryFlag)   { atomic.StoreUint32(&e.flags, uint32(f)) }
func (e *FilesetEntry) hasFlag(f EntryFlag) bool { return EntryFlag(atomic.LoadUint32(&e.flags))&f != 0 }

func (e *FilesetEntry) addFlag(f EntryFlag) {
	for {
		old := atomic.LoadUint32(&e.flags)
		nw := old | uint32(f)
		if atomic.CompareAndSwapUint32(&e.flags, old, nw) {
			return
		}
	}
}

func (e *FilesetEntry) clearFlag(f EntryFlag) {
	for {
		old := atomic.LoadUint32(&e.flags)
		nw := old &^ uint32(f)
		if atomic.CompareAndSwapUint32(&e.flags, old, nw) {
			return
		}
	}
}

// OpenCount returns the entry's current open-reference count.
func (e *FilesetEntry) OpenCount() int32 { return atomic.LoadInt32(&e.openCount) }

func (e *FilesetEntry) addOpen(delta int32) int32 { return atomic.AddInt32(&e.openCount, delta) }

// Path resolves the entry's full filesystem path by walking parent
// pointers up to the fileset root (spec.md §4.4.5).
func (e *FilesetEntry) Path(root string) string {
	var segs []string
	for cur := e; cur != nil; cur = cur.Parent {
		if cur.Local == "" {
			continue
		}
		segs = append([]string{cur.Local}, segs...)
	}
	return filepath.Join(append([]string{root}, segs...)...)
}
