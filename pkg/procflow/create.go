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
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/filebench/filebench-sub000/pkg/fblog"
	"github.com/filebench/filebench-sub000/pkg/region"
	"github.com/filebench/filebench-sub000/pkg/threadflow"
	"golang.org/x/sync/errgroup"
)

// Create runs the five-step proc_create sequence of spec.md §4.8 over
// defs: acquire the run barrier for read, spawn every declared
// process's instances, wait for them to reach the running state,
// release the barrier, then reset the event generator and record the
// run's start epoch.
func (c *Controller) Create(ctx context.Context, defs []*Def) (context.Context, error) {
	// Step 1: hold the run barrier's read side for the whole startup.
	// Nothing takes its write side, and in-process threadflows start
	// without waiting on it.
	c.Region.RunBarrier.RLock()

	gctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(gctx)
	c.mu.Lock()
	c.group = group
	c.gctx = gctx
	c.cancel = cancel
	c.mu.Unlock()

	var procs []*Proc
	for _, def := range defs {
		for i := 1; i <= def.Instances; i++ {
			p := &Proc{Name: def.Name, Instance: i}
			procs = append(procs, p)
			def := def
			group.Go(func() error {
				return c.spawnInstance(gctx, def, p)
			})
		}
	}
	c.mu.Lock()
	c.procs = append(c.procs, procs...)
	c.mu.Unlock()

	// Step 3: wait for every procflow to report threads_defined, then
	// running, soft-failing stuck processes after a generous timeout.
	deadline := time.Now().Add(2 * time.Minute)
	for _, p := range procs {
		for !p.ThreadsDefined() {
			if time.Now().After(deadline) {
				fblog.Default.Error1f("procflow:stuck-define", "%s[%d] never reported threads_defined", p.Name, p.Instance)
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	for _, p := range procs {
		for p.Running() == 0 && p.ThreadsDefined() {
			if time.Now().After(deadline) {
				fblog.Default.Error1f("procflow:stuck-run", "%s[%d] never reported running", p.Name, p.Instance)
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	// Step 4: release the run barrier's read side.
	c.Region.RunBarrier.RUnlock()

	// Step 5: reset the event generator and stamp the run epoch.
	c.Runtime.EventGen().Reset(gctx)
	c.Region.ResetEpoch()

	go c.supervise(cancel)
	return gctx, nil
}

// spawnInstance builds and runs one procflow instance, either as an
// in-process goroutine group (default) or as a re-exec'd child process
// (Multiprocess mode).
func (c *Controller) spawnInstance(ctx context.Context, def *Def, p *Proc) error {
	if c.Multiprocess {
		return c.spawnWorkerProcess(ctx, def, p)
	}
	return c.spawnInProcess(ctx, def, p)
}

func (c *Controller) spawnInProcess(ctx context.Context, def *Def, p *Proc) error {
	for _, tdef := range def.Threads {
		for i := 0; i < tdef.Instances; i++ {
			tf, err := threadflow.New(ctx, c.Runtime, tdef, c.nextSeed())
			if err != nil {
				return err
			}
			p.threads = append(p.threads, tf)
		}
	}
	atomic.StoreInt32(&p.threadsDefined, 1)

	group, _ := errgroup.WithContext(ctx)
	for _, tf := range p.threads {
		tf := tf
		atomic.AddInt32(&p.running, 1)
		group.Go(func() error {
			defer atomic.AddInt32(&p.running, -1)
			defer tf.CloseFDs()
			return tf.Run(0)
		})
	}
	return group.Wait()
}

// spawnWorkerProcess re-execs the running binary with the -a/-i/-m
// worker-spawn flags (spec.md §6; no -s address is passed) and waits
// for it to exit. It marks p defined and running once the child starts
// and not running once it exits; Create's step-3 wait and Shutdown's
// drain loop read these Proc counters, not the shared header's.
func (c *Controller) spawnWorkerProcess(ctx context.Context, def *Def, p *Proc) error {
	bin := c.BinaryPath
	if bin == "" {
		bin = os.Args[0]
	}
	cmd := exec.CommandContext(ctx, bin,
		"-a", def.Name,
		"-i", strconv.Itoa(p.Instance),
		"-m", c.ShmPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	p.cmd = cmd

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("procflow: spawn %s[%d]: %w", def.Name, p.Instance, err)
	}
	atomic.StoreInt32(&p.threadsDefined, 1)
	atomic.StoreInt32(&p.running, 1)
	err := cmd.Wait()
	atomic.StoreInt32(&p.running, 0)
	return err
}

// supervise implements spec.md §4.8's supervisor thread: it waits for
// the process group to finish, and if it ended because of an error
// rather than a requested shutdown, escalates to abort=resource.
func (c *Controller) supervise(cancel context.CancelFunc) {
	defer cancel()
	c.mu.Lock()
	group := c.group
	c.mu.Unlock()
	if group == nil {
		return
	}
	if err := group.Wait(); err != nil && c.Region.Abort() == region.AbortNone {
		fblog.Default.Errorf("procflow: unexpected worker exit: %v", err)
		c.Region.SetAbort(region.AbortResource)
	}
}
