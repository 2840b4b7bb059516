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

import "fmt"

// Slot is an index into a Pool's backing array. Every cross-entity
// reference in this package is a Slot rather than a pointer, per
// spec.md §9's recommended safer target design: this removes the
// requirement that worker processes attach the shared region at an
// identical virtual address, since a Slot resolves to a local address
// after each process maps its own copy of the backing region.
type Slot int32

// NilSlot is the zero value meaning "no entry".
const NilSlot Slot = -1

// OutOfSlots is returned by Pool.Alloc when every slot is in use.
type OutOfSlots struct{ Kind string }

func (e *OutOfSlots) Error() string { return fmt.Sprintf("region: out of slots for kind %q", e.Kind) }

// Pool is a fixed-capacity, bitmap-allocated slot pool for one entity
// kind. Allocation scans the bitmap starting from the slot after the
// last one allocated, wrapping around; Free clears the bit but never
// zeroes the slot, since a reader may still be walking a list that
// briefly references it (spec.md §4.1).
type Pool[T any] struct {
	mu       RobustMutex
	kind     string
	slots    []T
	used     []bool
	lastHint int
}

// NewPool returns a Pool with the given fixed capacity.
func NewPool[T any](kind string, capacity int) *Pool[T] {
	return &Pool[T]{
		mu:    *NewRobustMutex("pool:" + kind),
		kind:  kind,
		slots: make([]T, capacity),
		used:  make([]bool, capacity),
	}
}

// Cap returns the pool's fixed capacity.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Alloc returns the first clear bit at or after the last allocated
// index (mod capacity), zeroes that slot, and marks it used.
func (p *Pool[T]) Alloc() (Slot, error) {
	var s Slot = NilSlot
	var err error
	p.mu.Guarded(func() {
		n := len(p.slots)
		for i := 0; i < n; i++ {
			idx := (p.lastHint + i) % n
			if !p.used[idx] {
				p.used[idx] = true
				var zero T
				p.slots[idx] = zero
				p.lastHint = (idx + 1) % n
				s = Slot(idx)
				return
			}
		}
		err = &OutOfSlots{Kind: p.kind}
	})
	return s, err
}

// Free clears the bit for slot without zeroing its contents.
func (p *Pool[T]) Free(s Slot) {
	p.mu.Guarded(func() {
		if int(s) >= 0 && int(s) < len(p.used) {
			p.used[s] = false
		}
	})
}

// Get returns a pointer to the slot's contents. The caller must hold
// whatever higher-level lock protects concurrent mutation of T; Get
// itself does not serialize access beyond the allocator bitmap.
func (p *Pool[T]) Get(s Slot) *T {
	return &p.slots[s]
}

// InUse reports whether a slot is currently allocated.
func (p *Pool[T]) InUse(s Slot) bool {
	var in bool
	p.mu.Guarded(func() { in = p.used[s] })
	return in
}
