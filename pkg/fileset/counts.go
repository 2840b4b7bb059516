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

// Counts reports the {free, exists, not-on-disk} partition sizes for
// a given kind, for exercising spec.md §8 invariant 1.
type Counts struct {
	Free, Exists, NotOnDisk int
}

// Counts returns the current partition sizes for kind. Valid for
// KindFile and KindLeafDir; KindDir has no partitions and returns all
// zeroes (use DirCount instead).
func (fs *Fileset) Counts(kind EntryKind) Counts {
	fs.pickLock.Lock()
	defer fs.pickLock.Unlock()
	var part *kindPartition
	switch kind {
	case KindFile:
		part = &fs.files
	case KindLeafDir:
		part = &fs.leafdirs
	default:
		return Counts{}
	}
	return Counts{
		Free:      part.free.Len(),
		Exists:    part.exists.Len(),
		NotOnDisk: part.noex.Len(),
	}
}

// IdleCounts returns the current idle counters for kind, for
// exercising spec.md §8 invariant 3.
func (fs *Fileset) IdleCounts(kind EntryKind) Counts {
	fs.pickLock.Lock()
	defer fs.pickLock.Unlock()
	var part *kindPartition
	switch kind {
	case KindFile:
		part = &fs.files
	case KindLeafDir:
		part = &fs.leafdirs
	default:
		return Counts{}
	}
	return Counts{
		Free:      part.idleFree,
		Exists:    part.idleExists,
		NotOnDisk: part.idleNoex,
	}
}

// DirCount returns the total number of non-leaf directory entries.
func (fs *Fileset) DirCount() int {
	fs.pickLock.Lock()
	defer fs.pickLock.Unlock()
	return fs.dirs.Len()
}
