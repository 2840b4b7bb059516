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

import "testing"

func TestCountsUnsupportedKindIsZero(t *testing.T) {
	fs := newTestFileset(1, 0, 4)
	if got := fs.Counts(KindDir); got != (Counts{}) {
		t.Errorf("Counts(KindDir) = %+v; want the zero value (use DirCount instead)", got)
	}
}

func TestDirCountMatchesPopulatedTree(t *testing.T) {
	fs := populatedFileset(t, 30)
	if got := fs.DirCount(); got < 1 {
		t.Errorf("DirCount() = %d; want at least 1 (the root)", got)
	}
}
