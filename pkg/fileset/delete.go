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

import "os"

// DeleteStorage removes the fileset's on-disk tree and resets all
// in-memory indexes/counters so a subsequent Populate with the same
// seed reproduces an identical tree (spec.md §8, round-trip law 8).
func (fs *Fileset) DeleteStorage() error {
	fs.pickLock.Lock()
	fs.root = nil
	fs.files = kindPartition{}
	fs.leafdirs = kindPartition{}
	fs.dirs = orderedIndex{}
	fs.nextIndex = 0
	fs.realfiles = 0
	fs.realleafdirs = 0
	fs.fsBytes = 0
	fs.pickLock.Unlock()

	if fs.Root == "" {
		return nil
	}
	return os.RemoveAll(fs.Root)
}
