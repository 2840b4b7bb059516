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
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SharedHeader is the small fixed-layout control block that is
// genuinely shared across OS processes in multiprocess mode: the
// run-wide abort flag and the count of still-running workers. It is
// backed by a memory-mapped file created the way spec.md §6 describes
// (mkstemp-style temp file, MAP_SHARED), so every worker process
// observes the same bytes without needing to attach at an identical
// virtual address — only the fixed-size header is actually mapped raw;
// full entity pools stay process-local (see DESIGN.md for why this is
// the Go-appropriate redesign spec.md §9 sanctions).
type SharedHeader struct {
	f    *os.File
	data []byte
}

// headerSize must stay a multiple of 4 so the int32 fields below stay
// aligned; 64 bytes leaves ample room to grow.
const headerSize = 64

const (
	offAbort   = 0
	offRunning = 4
)

// CreateSharedHeader makes a backing file at path (truncated to
// headerSize+1MiB, matching spec.md §6's "sizeof(SharedRegion)+1MiB"
// sizing rule) and maps it MAP_SHARED. The caller (master) owns
// removing the file on clean exit.
func CreateSharedHeader(path string) (*SharedHeader, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("region: create shared header: %w", err)
	}
	const size = headerSize + 1<<20
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("region: truncate shared header: %w", err)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("region: mmap shared header: %w", err)
	}
	return &SharedHeader{f: f, data: data}, nil
}

// OpenSharedHeader attaches an existing backing file created by
// CreateSharedHeader. Unlike the original C design, the worker does
// not need to map at the master's address: Go slices are
// process-local views over the same kernel pages.
func OpenSharedHeader(path string) (*SharedHeader, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("region: open shared header %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("region: mmap shared header: %w", err)
	}
	return &SharedHeader{f: f, data: data}, nil
}

// Close unmaps and closes the backing file without removing it.
func (h *SharedHeader) Close() error {
	if err := unix.Munmap(h.data); err != nil {
		return err
	}
	return h.f.Close()
}

// Remove closes and deletes the backing file; called by the master
// on clean shutdown per spec.md §6.
func (h *SharedHeader) Remove() error {
	path := h.f.Name()
	if err := h.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

func (h *SharedHeader) abortPtr() *int32 {
	return (*int32)(unsafe.Pointer(&h.data[offAbort]))
}

func (h *SharedHeader) runningPtr() *int32 {
	return (*int32)(unsafe.Pointer(&h.data[offRunning]))
}

// SetAbort stores the abort kind into the shared header.
func (h *SharedHeader) SetAbort(k AbortKind) {
	atomic.StoreInt32(h.abortPtr(), int32(k))
}

// Abort loads the abort kind from the shared header.
func (h *SharedHeader) Abort() AbortKind {
	return AbortKind(atomic.LoadInt32(h.abortPtr()))
}

// IncRunning/DecRunning track how many workers are still alive: a
// worker process increments on start and decrements on exit
// (spec.md §4.8). procflow's Shutdown wait reads each Proc's own
// running count, not this one.
func (h *SharedHeader) IncRunning() int32 { return atomic.AddInt32(h.runningPtr(), 1) }
func (h *SharedHeader) DecRunning() int32 { return atomic.AddInt32(h.runningPtr(), -1) }
func (h *SharedHeader) Running() int32    { return atomic.LoadInt32(h.runningPtr()) }
