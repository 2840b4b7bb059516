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

package cvar

import "testing"

type fakeHandle struct {
	next    float64
	nextErr error
	freed   bool
}

func (h *fakeHandle) Revalidate() error          { return nil }
func (h *fakeHandle) NextValue() (float64, error) { return h.next, h.nextErr }
func (h *fakeHandle) Free()                      { h.freed = true }

func TestRegisterAndNew(t *testing.T) {
	r := NewRegistry()
	r.Register("counter", func(params map[string]string) (Handle, error) {
		return &fakeHandle{next: 7}, nil
	})

	h, err := r.New("counter", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	v, err := h.NextValue()
	if err != nil || v != 7 {
		t.Errorf("NextValue() = %v, %v; want 7, nil", v, err)
	}
}

func TestNewUnregisteredReturnsError(t *testing.T) {
	r := NewRegistry()
	if _, err := r.New("nope", nil); err == nil {
		t.Error("New(unregistered name): want error, got nil")
	}
}

func TestRegisterOverwritesLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register("counter", func(params map[string]string) (Handle, error) {
		return &fakeHandle{next: 1}, nil
	})
	r.Register("counter", func(params map[string]string) (Handle, error) {
		return &fakeHandle{next: 2}, nil
	})

	h, err := r.New("counter", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	v, _ := h.NextValue()
	if v != 2 {
		t.Errorf("NextValue() after re-Register = %v; want 2 (last registration wins)", v)
	}
}

func TestNamesListsRegistered(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(map[string]string) (Handle, error) { return &fakeHandle{}, nil })
	r.Register("b", func(map[string]string) (Handle, error) { return &fakeHandle{}, nil })

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("Names() = %v; want 2 entries", names)
	}
}

func TestFactoryErrorWrapped(t *testing.T) {
	r := NewRegistry()
	r.Register("bad", func(map[string]string) (Handle, error) {
		return nil, errTest
	})
	if _, err := r.New("bad", nil); err == nil {
		t.Error("New() when the factory errors: want error, got nil")
	}
}

func TestDistributionNextDegradesToZeroOnError(t *testing.T) {
	d := Distribution{Handle: &fakeHandle{nextErr: errTest}, Name: "broken"}
	if got := d.Next(); got != 0 {
		t.Errorf("Next() on an erroring handle = %v; want 0", got)
	}
}

func TestDistributionNextPassesThroughValue(t *testing.T) {
	d := Distribution{Handle: &fakeHandle{next: 3.5}, Name: "ok"}
	if got := d.Next(); got != 3.5 {
		t.Errorf("Next() = %v; want 3.5", got)
	}
}

var errTest = testErr("boom")

type testErr string

func (e testErr) Error() string { return string(e) }
