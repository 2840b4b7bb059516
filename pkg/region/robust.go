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

import (
	"sync"
	"sync/atomic"

	"github.com/filebench/filebench-sub000/pkg/fblog"
)

// RobustMutex is the Go analogue of a process-shared, robust pthread
// mutex: if the goroutine holding the lock panics mid-critical-section,
// the next acquirer observes the mutex as inconsistent, recovers it,
// and continues, logging at most one "inconsistent" line per mutex
// (spec.md §4.1, §8 boundary behavior 14).
type RobustMutex struct {
	mu           sync.Mutex
	inconsistent int32
	warned       int32
	name         string
}

// NewRobustMutex returns a RobustMutex identified by name for logging.
func NewRobustMutex(name string) *RobustMutex {
	return &RobustMutex{name: name}
}

// Lock acquires the mutex. If the previous holder left it inconsistent
// (a panic inside Guarded), Lock recovers it and logs once.
func (m *RobustMutex) Lock() {
	m.mu.Lock()
	if atomic.CompareAndSwapInt32(&m.inconsistent, 1, 0) {
		if atomic.CompareAndSwapInt32(&m.warned, 0, 1) {
			fblog.Default.Errorf("mutex %s: recovered from inconsistent state (owner died)", m.name)
		}
	}
}

func (m *RobustMutex) Unlock() { m.mu.Unlock() }

// Guarded runs fn holding the mutex. If fn panics, the mutex is marked
// inconsistent before being released so the next Lock recovers it
// instead of deadlocking or silently losing the panic.
func (m *RobustMutex) Guarded(fn func()) {
	m.Lock()
	defer func() {
		if r := recover(); r != nil {
			atomic.StoreInt32(&m.inconsistent, 1)
			m.mu.Unlock()
			panic(r)
		}
		m.mu.Unlock()
	}()
	fn()
}
