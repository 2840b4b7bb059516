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

import (
	"fmt"
	"math/rand"
)

// Populate builds the in-memory directory tree per spec.md §4.4.1:
// recursively descending from the root, drawing a depth and width at
// each node, until realfiles == entries and realleafdirs == leafdirs.
func (fs *Fileset) Populate(rng *rand.Rand) error {
	p, err := fs.resolve()
	if err != nil {
		return err
	}
	fs.meanDepth = computeMeanDepth(p.entries, p.leafdirs, p.meanWidth)

	fs.root = &FilesetEntry{Kind: KindDir, Depth: 0}
	fs.dirs.Insert(fs.root)

	for fs.realfiles < p.entries || fs.realleafdirs < p.leafdirs {
		before := fs.realfiles + fs.realleafdirs
		fs.populateNode(fs.root, p, rng)
		// Safety valve: if a pass makes no progress, bail out rather
		// than spin forever.
		if fs.realfiles+fs.realleafdirs == before {
			break
		}
	}
	return nil
}

func (fs *Fileset) drawDepth(rng *rand.Rand) int {
	if fs.DepthDist != nil {
		d := fs.DepthDist.Next()
		if d < 0 {
			d = 0
		}
		return int(d + 0.5)
	}
	// Uniformly jittered in [0.5, 1.5) times the mean depth, floored
	// at 1 and rounded.
	jitter := fs.meanDepth * (0.5 + rng.Float64())
	if jitter < 1 {
		jitter = 1
	}
	return int(jitter + 0.5)
}

func (fs *Fileset) drawWidth(mean float64, rng *rand.Rand) int {
	w := int(mean*(0.5+rng.Float64()) + 0.5)
	if w < 1 {
		w = 1
	}
	return w
}

func (fs *Fileset) populateNode(node *FilesetEntry, p resolvedParams, rng *rand.Rand) {
	if fs.realfiles >= p.entries && fs.realleafdirs >= p.leafdirs {
		return
	}
	depth := fs.drawDepth(rng)
	width := fs.drawWidth(p.meanWidth, rng)

	if node.Depth < depth && (fs.realfiles < p.entries || fs.realleafdirs < p.leafdirs) {
		for i := 0; i < width; i++ {
			fs.nextIndex++
			child := &FilesetEntry{
				Parent: node,
				Local:  fmt.Sprintf("dir%07d", fs.nextIndex),
				Depth:  node.Depth + 1,
				Kind:   KindDir,
				Index:  fs.nextIndex,
			}
			node.children = append(node.children, child)
			fs.dirs.Insert(child)
			fs.populateNode(child, p, rng)
		}
		return
	}

	// Leaf: populate with files, and possibly leaf-dirs.
	for i := 0; i < width && fs.realfiles < p.entries; i++ {
		fs.addFileEntry(node, rng)
	}
	for i := 0; i < width && fs.realleafdirs < p.leafdirs; i++ {
		fs.addLeafDirEntry(node)
	}
}

func (fs *Fileset) addFileEntry(parent *FilesetEntry, rng *rand.Rand) {
	size := int64(0)
	if fs.SizeDist != nil {
		size = int64(fs.SizeDist.Next())
		if size < 0 {
			size = 0
		}
	}
	fs.nextIndex++
	e := &FilesetEntry{
		Parent: parent,
		Local:  fmt.Sprintf("%08d", fs.nextIndex),
		Depth:  parent.Depth + 1,
		Kind:   KindFile,
		Size:   size,
		Index:  fs.nextIndex,
	}
	e.addFlag(FlagFree)
	fs.realfiles++
	parent.children = append(parent.children, e)
	fs.files.free.Insert(e)
	fs.files.idleFree++
}

func (fs *Fileset) addLeafDirEntry(parent *FilesetEntry) {
	fs.nextIndex++
	e := &FilesetEntry{
		Parent: parent,
		Local:  fmt.Sprintf("leaf%08d", fs.nextIndex),
		Depth:  parent.Depth + 1,
		Kind:   KindLeafDir,
		Index:  fs.nextIndex,
	}
	e.addFlag(FlagFree)
	fs.realleafdirs++
	parent.children = append(parent.children, e)
	fs.leafdirs.free.Insert(e)
	fs.leafdirs.idleFree++
}

// RootEntry returns the fileset's root directory entry (nil until
// Populate has run).
func (fs *Fileset) RootEntry() *FilesetEntry { return fs.root }
