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

package procflow

import (
	"syscall"
	"time"

	"github.com/filebench/filebench-sub000/pkg/fblog"
	"github.com/filebench/filebench-sub000/pkg/region"
)

// Shutdown implements spec.md §4.8's shutdown sequence: set the abort
// flag, wait up to ShutdownWaitSeconds for each procflow's running
// count to drain, escalate to SIGUSR1 for stragglers, then release the
// event generator back to its reset state.
func (c *Controller) Shutdown(kind region.AbortKind) {
	c.Region.SetAbort(kind)

	deadline := time.Now().Add(ShutdownWaitSeconds)
	for _, p := range c.allProcs() {
		for p.Running() > 0 && time.Now().Before(deadline) {
			time.Sleep(20 * time.Millisecond)
		}
		if p.Running() > 0 {
			c.signalStuck(p)
		}
	}

	c.mu.Lock()
	c.procs = nil
	cancel := c.cancel
	gctx := c.gctx
	c.mu.Unlock()
	// Unblocks any in-process threadflow still parked on its context
	// (delay/block/semblock); multiprocess workers already had their
	// chance to exit gracefully via SIGUSR1 above.
	if cancel != nil {
		cancel()
	}
	// gctx is cancelled by now, so Reset zeroes the queue and its
	// restarted fill source exits at once.
	if gctx != nil {
		c.Runtime.EventGen().Reset(gctx)
	}
}

// signalStuck sends SIGUSR1 to a still-running multiprocess worker,
// which is expected to cancel its threads gracefully on receipt
// (spec.md §4.8). In-process procflows have no OS process to signal;
// their threadflows are cancelled via the run's context instead.
func (c *Controller) signalStuck(p *Proc) {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	fblog.Default.Error1f("procflow:shutdown-stuck",
		"%s[%d] still running after %s, sending SIGUSR1", p.Name, p.Instance, ShutdownWaitSeconds)
	_ = p.cmd.Process.Signal(syscall.SIGUSR1)
}
