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

package region

// StrRef is an offset into a string arena.
type StrRef int32

// Arena is a bump-only, append-only string/path store. Entries are
// never freed individually; ResetAll bulk-frees everything at once
// for post-run cleanup, matching the fileset-path arena's contract in
// spec.md §4.1.
type Arena struct {
	mu      RobustMutex
	entries []string
}

// NewArena returns an empty Arena.
func NewArena() *Arena { return &Arena{mu: *NewRobustMutex("arena")} }

// Alloc appends s and returns a stable reference to it.
func (a *Arena) Alloc(s string) StrRef {
	var ref StrRef
	a.mu.Guarded(func() {
		a.entries = append(a.entries, s)
		ref = StrRef(len(a.entries) - 1)
	})
	return ref
}

// Get returns the string for ref.
func (a *Arena) Get(ref StrRef) string {
	var s string
	a.mu.Guarded(func() { s = a.entries[ref] })
	return s
}

// ResetAll bulk-frees every entry in the arena.
func (a *Arena) ResetAll() {
	a.mu.Guarded(func() { a.entries = a.entries[:0] })
}

// Len reports how many strings are currently allocated.
func (a *Arena) Len() int {
	var n int
	a.mu.Guarded(func() { n = len(a.entries) })
	return n
}

// ISMPool hands out large per-thread scratch buffers. With a nil
// backing (as region.New builds it) this is a thin wrapper over
// make([]byte, n); with a backing buffer, scratch is carved out of it
// bump-style until it runs out, then falls back to the heap.
type ISMPool struct {
	backing []byte
	mu      RobustMutex
	next    int
}

// NewISMPool returns a pool backed by buf (nil for heap-only mode).
func NewISMPool(buf []byte) *ISMPool {
	return &ISMPool{backing: buf, mu: *NewRobustMutex("ism")}
}

// Alloc returns n freshly zeroed scratch bytes.
func (p *ISMPool) Alloc(n int) []byte {
	if p.backing == nil {
		return make([]byte, n)
	}
	var out []byte
	p.mu.Guarded(func() {
		if p.next+n > len(p.backing) {
			out = make([]byte, n) // overflowed the shared arena; fall back to heap
			return
		}
		out = p.backing[p.next : p.next+n]
		p.next += n
	})
	return out
}
