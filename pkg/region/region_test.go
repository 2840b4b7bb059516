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

import "testing"

func TestSetAbortFirstWriterWins(t *testing.T) {
	r := New()
	r.SetAbort(AbortError)
	r.SetAbort(AbortDone)
	if got := r.Abort(); got != AbortError {
		t.Errorf("Abort() after two SetAbort calls = %v; want %v (first wins)", got, AbortError)
	}
}

func TestSetAbortClosesDone(t *testing.T) {
	r := New()
	select {
	case <-r.Done():
		t.Fatal("Done() already closed before SetAbort")
	default:
	}
	r.SetAbort(AbortFini)
	select {
	case <-r.Done():
	default:
		t.Fatal("Done() not closed after SetAbort")
	}
}

func TestRunModeRoundTrip(t *testing.T) {
	r := New()
	r.SetRunMode(RunModeAllDone)
	if got := r.RunModeGet(); got != RunModeAllDone {
		t.Errorf("RunModeGet() = %v; want %v", got, RunModeAllDone)
	}
}

func TestDebugLevelRoundTrip(t *testing.T) {
	r := New()
	r.SetDebugLevel(3)
	if got := r.DebugLevel(); got != 3 {
		t.Errorf("DebugLevel() = %d; want 3", got)
	}
}

func TestResetEpochAdvancesTime(t *testing.T) {
	r := New()
	first := r.Epoch()
	r.ResetEpoch()
	if !r.Epoch().After(first) && r.Epoch() != first {
		// Equal is acceptable on a very fast clock; just ensure it never
		// goes backward.
		if r.Epoch().Before(first) {
			t.Error("ResetEpoch() moved the epoch backward")
		}
	}
}

func TestAbortKindString(t *testing.T) {
	cases := map[AbortKind]string{
		AbortNone:     "none",
		AbortDone:     "done",
		AbortError:    "error",
		AbortResource: "resource",
		AbortFini:     "fini",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q; want %q", k, got, want)
		}
	}
}
