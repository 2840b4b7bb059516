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
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// FileAllocBlock is the size of the shared zero-filled block written
// repeatedly to preallocate a file (spec.md §4.4.2).
const FileAllocBlock = 1 << 20

// maxConcurrentAllocators bounds the preallocation worker pool
// (spec.md §4.4.2).
const maxConcurrentAllocators = 32

var zeroBlock = make([]byte, FileAllocBlock)

// CreateOnDisk materializes the populated tree on disk: removes and
// recreates the root unless reuse/trust-tree allow skipping that,
// creates directories bottom-down, then preallocates a
// preallocpercent-selected subset of files, dispatching allocation
// across a worker pool capped at maxConcurrentAllocators using a
// counting semaphore for backpressure (spec.md §4.4.2). Any worker's
// failure aborts the whole create.
func (fs *Fileset) CreateOnDisk(ctx context.Context, rng *rand.Rand) error {
	p, err := fs.resolve()
	if err != nil {
		return err
	}

	skipRemoval := fs.Flags.ReuseExisting && (fs.Flags.TrustTree || statOK(fs.Root))
	if !skipRemoval {
		if err := os.RemoveAll(fs.Root); err != nil {
			return fmt.Errorf("fileset %s: remove root: %w", fs.Name, err)
		}
	}
	if err := os.MkdirAll(fs.Root, 0o755); err != nil {
		return fmt.Errorf("fileset %s: mkdir root: %w", fs.Name, err)
	}

	if err := fs.createDirsBottomDown(fs.root); err != nil {
		return err
	}

	sem := semaphore.NewWeighted(maxConcurrentAllocators)
	errCh := make(chan error, 1)
	var aborted int32

	var walk func(n *FilesetEntry)
	walk = func(n *FilesetEntry) {
		if atomic.LoadInt32(&aborted) != 0 {
			return
		}
		for _, c := range n.children {
			switch c.Kind {
			case KindFile:
				fs.dispatchFileCreate(ctx, c, p, rng, sem, errCh, &aborted)
			case KindLeafDir:
				fs.retireLeafDirToNoex(c)
			default:
				walk(c)
			}
		}
	}
	walk(fs.root)

	if err := sem.Acquire(ctx, maxConcurrentAllocators); err != nil {
		return fmt.Errorf("fileset %s: waiting for allocators: %w", fs.Name, err)
	}
	sem.Release(maxConcurrentAllocators)

	select {
	case err := <-errCh:
		return err
	default:
	}
	return nil
}

// retireLeafDirToNoex moves a freshly populated leaf directory out of
// the free partition into not-on-disk: unlike files, leaf directories
// have no preallocpercent step, so every one of them starts eligible
// for the makedir flowop to create on demand (spec.md §4.4.2).
func (fs *Fileset) retireLeafDirToNoex(e *FilesetEntry) {
	fs.pickLock.Lock()
	defer fs.pickLock.Unlock()
	fs.leafdirs.free.Remove(e)
	e.clearFlag(FlagFree)
	fs.leafdirs.idleFree--
	fs.leafdirs.noex.Insert(e)
	fs.leafdirs.idleNoex++
}

func statOK(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (fs *Fileset) createDirsBottomDown(n *FilesetEntry) error {
	// Post-order: children's subtrees before this directory's own
	// children so mkdir proceeds leaf-first, as spec.md describes.
	for _, c := range n.children {
		if c.Kind == KindDir {
			if err := fs.createDirsBottomDown(c); err != nil {
				return err
			}
		}
	}
	if n != fs.root {
		if err := os.MkdirAll(n.Path(fs.Root), 0o755); err != nil {
			return fmt.Errorf("fileset %s: mkdir %s: %w", fs.Name, n.Local, err)
		}
	}
	return nil
}

func (fs *Fileset) dispatchFileCreate(ctx context.Context, e *FilesetEntry, p resolvedParams, rng *rand.Rand, sem *semaphore.Weighted, errCh chan error, aborted *int32) {
	fs.files.free.Remove(e)
	e.clearFlag(FlagFree)
	fs.files.idleFree--

	selected := p.preallocPercent > 0 && rng.Float64()*100 < p.preallocPercent
	if !selected {
		fs.files.noex.Insert(e)
		fs.files.idleNoex++
		return
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		atomic.StoreInt32(aborted, 1)
		select {
		case errCh <- err:
		default:
		}
		return
	}
	go func() {
		defer sem.Release(1)
		if atomic.LoadInt32(aborted) != 0 {
			return
		}
		if err := fs.preallocateFile(e); err != nil {
			atomic.StoreInt32(aborted, 1)
			select {
			case errCh <- err:
			default:
			}
			return
		}
		fs.pickLock.Lock()
		e.addFlag(FlagExists)
		fs.files.exists.Insert(e)
		fs.files.idleExists++
		atomic.AddInt64(&fs.fsBytes, e.Size)
		fs.pickLock.Unlock()
	}()
}

// preallocateFile creates path and writes target bytes using the
// shared zero-filled block, or truncates/reuses an existing file when
// fs.Flags.ReuseExisting permits it (spec.md §4.4.2).
func (fs *Fileset) preallocateFile(e *FilesetEntry) error {
	path := e.Path(fs.Root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if fs.Flags.ReuseExisting {
		if fi, err := os.Stat(path); err == nil {
			switch {
			case fi.Size() == e.Size:
				return nil
			case fi.Size() > e.Size:
				return os.Truncate(path, e.Size)
			}
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("fileset %s: create %s: %w", fs.Name, e.Local, err)
	}
	defer f.Close()
	remaining := e.Size
	for remaining > 0 {
		n := int64(len(zeroBlock))
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(zeroBlock[:n]); err != nil {
			return fmt.Errorf("fileset %s: write %s: %w", fs.Name, e.Local, err)
		}
		remaining -= n
	}
	return nil
}
