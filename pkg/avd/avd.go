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

package avd

import "strconv"

type kind int

const (
	kindNone kind = iota
	kindBool
	kindInt
	kindDouble
	kindString
	kindVarRef
)

// AVD is a tagged sum: either an inline value or a reference to a
// Variable, resolved lazily at read time (spec.md §3, §4.2).
type AVD struct {
	k      kind
	b      bool
	i      int64
	d      float64
	s      string
	varref *Variable
}

// Bool, Int, Double, and String construct inline-valued AVDs.
func Bool(b bool) *AVD      { return &AVD{k: kindBool, b: b} }
func Int(i int64) *AVD      { return &AVD{k: kindInt, i: i} }
func Double(d float64) *AVD { return &AVD{k: kindDouble, d: d} }
func String(s string) *AVD  { return &AVD{k: kindString, s: s} }

// VarRef constructs an AVD bound to a variable, resolved at read time.
func VarRef(v *Variable) *AVD { return &AVD{k: kindVarRef, varref: v} }

// IsNil reports whether avd is an unset (nil) pointer — a convenience
// for optional flowop parameters.
func IsNil(a *AVD) bool { return a == nil }

// GetBool, GetInt, GetDouble, and GetString coerce avd to the requested type,
// resolving a variable reference if needed. Bool<->int<->double are
// mutually coercible (nonzero is true; float truncates to int).
func GetBool(a *AVD) (bool, error) {
	if a == nil {
		return false, nil
	}
	switch a.k {
	case kindBool:
		return a.b, nil
	case kindInt:
		return a.i != 0, nil
	case kindDouble:
		return a.d != 0, nil
	case kindString:
		b, err := strconv.ParseBool(a.s)
		return b, err
	case kindVarRef:
		f, ok := a.varref.readNumeric()
		if !ok {
			return false, &ErrUnsetVariable{Name: a.varref.Name}
		}
		return f != 0, nil
	}
	return false, nil
}

func GetInt(a *AVD) (int64, error) {
	if a == nil {
		return 0, nil
	}
	switch a.k {
	case kindBool:
		if a.b {
			return 1, nil
		}
		return 0, nil
	case kindInt:
		return a.i, nil
	case kindDouble:
		return int64(a.d), nil
	case kindString:
		return strconv.ParseInt(a.s, 10, 64)
	case kindVarRef:
		f, ok := a.varref.readNumeric()
		if !ok {
			return 0, &ErrUnsetVariable{Name: a.varref.Name}
		}
		return int64(f), nil
	}
	return 0, nil
}

func GetDouble(a *AVD) (float64, error) {
	if a == nil {
		return 0, nil
	}
	switch a.k {
	case kindBool:
		if a.b {
			return 1, nil
		}
		return 0, nil
	case kindInt:
		return float64(a.i), nil
	case kindDouble:
		return a.d, nil
	case kindString:
		return strconv.ParseFloat(a.s, 64)
	case kindVarRef:
		f, ok := a.varref.readNumeric()
		if !ok {
			return 0, &ErrUnsetVariable{Name: a.varref.Name}
		}
		return f, nil
	}
	return 0, nil
}

func GetString(a *AVD) (string, error) {
	if a == nil {
		return "", nil
	}
	switch a.k {
	case kindString:
		return a.s, nil
	case kindBool:
		return strconv.FormatBool(a.b), nil
	case kindInt:
		return strconv.FormatInt(a.i, 10), nil
	case kindDouble:
		return strconv.FormatFloat(a.d, 'g', -1, 64), nil
	case kindVarRef:
		a.varref.mu.Lock()
		defer a.varref.mu.Unlock()
		if a.varref.typ == TypeString {
			return a.varref.stringVal, nil
		}
		return "", nil
	}
	return "", nil
}

// Scope resolves names to Variables, checking a local (composite
// flowop) scope before falling back to the global scope, matching
// spec.md §4.2's "local variables shadow the global list" rule.
type Scope struct {
	local  map[string]*Variable
	parent *Scope
}

// NewScope returns a root scope with no parent.
func NewScope() *Scope { return &Scope{local: make(map[string]*Variable)} }

// Child returns a nested scope that shadows s, for a composite
// flowop's local variables.
func (s *Scope) Child() *Scope { return &Scope{local: make(map[string]*Variable), parent: s} }

// Define installs a variable in this scope's local map.
func (s *Scope) Define(v *Variable) { s.local[v.Name] = v }

// Lookup resolves name first in this scope, then ancestors.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.local[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupOrCreate resolves name, allocating a fresh untyped Variable in
// this scope if it does not already exist anywhere in the chain.
func (s *Scope) LookupOrCreate(name string) *Variable {
	if v, ok := s.Lookup(name); ok {
		return v
	}
	v := NewVariable(name)
	s.Define(v)
	return v
}
