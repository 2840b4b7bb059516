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

import "sort"

// orderedIndex is a per-kind ordered index keyed by Entry.Index,
// supporting insertion, removal, and "nearest entry with key >= k,
// wrapping to the smallest if none" lookup (spec.md §4.4.3). It is
// always accessed under the owning Fileset's pickLock; spec.md §9
// notes implementations may substitute a skip list or B-tree for the
// sorted-slice representation used here without changing the
// contract.
type orderedIndex struct {
	entries []*FilesetEntry // kept sorted by Index
	cursor  int             // rotor position for mode=rotor lookups
}

func (ix *orderedIndex) Len() int { return len(ix.entries) }

func (ix *orderedIndex) search(key int64) int {
	return sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].Index >= key })
}

// Insert adds e, maintaining sorted order.
func (ix *orderedIndex) Insert(e *FilesetEntry) {
	i := ix.search(e.Index)
	ix.entries = append(ix.entries, nil)
	copy(ix.entries[i+1:], ix.entries[i:])
	ix.entries[i] = e
}

// Remove deletes e from the index. It is a no-op if e is not present.
func (ix *orderedIndex) Remove(e *FilesetEntry) {
	i := ix.search(e.Index)
	if i < len(ix.entries) && ix.entries[i] == e {
		ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
		return
	}
	// Fell out of sorted order (shouldn't happen); fall back to a
	// linear scan rather than silently leaking the entry.
	for j, cur := range ix.entries {
		if cur == e {
			ix.entries = append(ix.entries[:j], ix.entries[j+1:]...)
			return
		}
	}
}

// FindGE returns the entry with the smallest Index >= key, wrapping
// to the smallest-indexed entry if none is >= key. ok is false if the
// index is empty.
func (ix *orderedIndex) FindGE(key int64) (e *FilesetEntry, ok bool) {
	if len(ix.entries) == 0 {
		return nil, false
	}
	i := ix.search(key)
	if i >= len(ix.entries) {
		i = 0
	}
	return ix.entries[i], true
}

// FindUnbusyGE walks forward from the entry with key >= key (wrapping)
// until it finds one without FlagBusy set, or returns ok=false once it
// has examined every entry without success (spec.md §4.4.3 step 3).
func (ix *orderedIndex) FindUnbusyGE(key int64) (e *FilesetEntry, ok bool) {
	n := len(ix.entries)
	if n == 0 {
		return nil, false
	}
	start := ix.search(key)
	if start >= n {
		start = 0
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		cand := ix.entries[idx]
		if !cand.hasFlag(FlagBusy) {
			return cand, true
		}
	}
	return nil, false
}

// Rotor returns the next entry in rotor order and advances the
// cursor, wrapping at the end. Used by "existing"/"nonexisting" pick
// modes that request sequential rather than random selection.
func (ix *orderedIndex) Rotor() (e *FilesetEntry, ok bool) {
	n := len(ix.entries)
	if n == 0 {
		return nil, false
	}
	if ix.cursor >= n {
		ix.cursor = 0
	}
	e = ix.entries[ix.cursor]
	ix.cursor++
	return e, true
}

// At returns the i'th entry in sorted order, for random-index pick.
func (ix *orderedIndex) At(i int) *FilesetEntry { return ix.entries[i] }
