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

// Package cvar implements the custom-variable plugin host described in
// spec.md §6: a named factory registry standing in for the original
// dynamically-loaded-library symbol set
// (alloc_handle/revalidate_handle/next_value/free_handle). Go has no
// safe analogue of dlopen-ing an arbitrary shared object into a
// long-running server process (plugin.Open requires the plugin to be
// built by the exact same toolchain version and is effectively
// one-shot; see DESIGN.md), so custom variables are registered at
// compile time by the binary that wants to offer them, the same
// build-time-registration idiom a storage-backend registry would use
// for pluggable backends.
package cvar

import (
	"fmt"
	"sync"

	"github.com/filebench/filebench-sub000/pkg/fblog"
)

// Handle is one live custom-variable instance, matching the four
// lifecycle calls of the original symbol set minus the C memory
// callbacks (spec.md §6).
type Handle interface {
	// Revalidate re-checks the handle's backing parameters, called
	// after a workload edits its bound variable's attributes.
	Revalidate() error
	// NextValue produces the variable's next sampled value.
	NextValue() (float64, error)
	// Free releases any resources the handle holds.
	Free()
}

// Factory constructs a Handle from its declared parameters.
type Factory func(params map[string]string) (Handle, error)

// Registry maps a custom-variable type name to its Factory.
type Registry struct {
	mu       sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs factory under name, overwriting any prior
// registration — matching module_init()'s "last one wins" semantics
// when multiple plugins declare the same symbol.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New allocates a fresh Handle of the named type, the Go-native
// equivalent of alloc_handle (spec.md §6).
func (r *Registry) New(name string, params map[string]string) (Handle, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cvar: unregistered custom variable %q", name)
	}
	h, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("cvar: alloc %q: %w", name, err)
	}
	return h, nil
}

// Names lists every registered custom-variable type, for CLI help and
// workload validation.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}

// Distribution adapts a Handle to avd.Distribution (Next() float64),
// so a custom variable can be bound directly to an avd.Variable the
// same way a randvar.RandDist is. A NextValue error is logged once via
// Error1f and degrades to 0 rather than panicking the calling flowop.
type Distribution struct {
	Handle Handle
	Name   string
}

// Next implements avd.Distribution.
func (d Distribution) Next() float64 {
	v, err := d.Handle.NextValue()
	if err != nil {
		fblog.Default.Error1f("cvar:"+d.Name, "custom variable %q next_value: %v", d.Name, err)
		return 0
	}
	return v
}
