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

package flowop

import (
	"math"
	"time"

	"golang.org/x/sys/unix"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/ferr"
	"github.com/filebench/filebench-sub000/pkg/fblog"
	"github.com/filebench/filebench-sub000/pkg/stats"
)

// runDelay sleeps for Def.Value seconds, waking early if ctx is
// cancelled (spec.md §4.5 "delay").
func runDelay(ctx ThreadContext, in *Instance) error {
	secs, err := avd.GetDouble(in.Def.Value)
	if err != nil {
		return ferr.Errorf(in.Def.Name, "value: %v", err)
	}
	op := in.Stats.BeginOp(stats.IONone)
	t := time.NewTimer(time.Duration(secs * float64(time.Second)))
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	in.Stats.EndOp(op, 0)
	return ctx.Err()
}

// runHog burns CPU for Def.Value seconds, the synthetic
// non-I/O-bound-thread primitive (spec.md §4.5 "hog").
func runHog(ctx ThreadContext, in *Instance) error {
	secs, err := avd.GetDouble(in.Def.Value)
	if err != nil {
		return ferr.Errorf(in.Def.Name, "value: %v", err)
	}
	op := in.Stats.BeginOp(stats.IONone)
	deadline := time.Now().Add(time.Duration(secs * float64(time.Second)))
	x := 1.0001
	for time.Now().Before(deadline) {
		for i := 0; i < 10000; i++ {
			x = math.Sqrt(x*x + 1)
		}
		if ctx.Err() != nil {
			break
		}
	}
	in.Stats.EndOp(op, 0)
	_ = x
	return ctx.Err()
}

// runPrint logs Def.Value as a string through the run's logger
// (spec.md §4.5 "print").
func runPrint(ctx ThreadContext, in *Instance) error {
	msg, err := avd.GetString(in.Def.Value)
	if err != nil {
		return ferr.Errorf(in.Def.Name, "value: %v", err)
	}
	fblog.Default.Infof("%s: %s", in.Def.Name, msg)
	return nil
}

// runTestRandVar samples Def.Value — ordinarily an AVD bound to a
// randvar.RandDist or custom-variable handle — and accumulates running
// mean/stddev so a workload can validate a distribution's shape
// without doing any I/O (spec.md §4.5 "testrandvar").
func runTestRandVar(ctx ThreadContext, in *Instance) error {
	sample, err := avd.GetDouble(in.Def.Value)
	if err != nil {
		return ferr.Errorf(in.Def.Name, "value: %v", err)
	}
	in.Lock()
	in.testRVCount++
	in.testRVSum += sample
	in.testRVSumSq += sample * sample
	n := in.testRVCount
	sum := in.testRVSum
	sumSq := in.testRVSumSq
	in.Unlock()

	if n%10000 == 0 {
		mean := sum / float64(n)
		variance := sumSq/float64(n) - mean*mean
		if variance < 0 {
			variance = 0
		}
		fblog.Default.Infof("%s: n=%d mean=%.4f stddev=%.4f", in.Def.Name, n, mean, math.Sqrt(variance))
	}
	return nil
}

// runIoctl issues a raw ioctl on the currently held fd slot, the
// escape hatch for device-specific flowops (spec.md §4.5 "ioctl").
// Def.Value supplies the request number; the argument is always 0,
// matching the subset of ioctls filebench workloads actually issue
// (discarding a cached page range, forcing a raw-device re-read).
func runIoctl(ctx ThreadContext, in *Instance) error {
	req, err := avd.GetInt(in.Def.Value)
	if err != nil {
		return ferr.Errorf(in.Def.Name, "value: %v", err)
	}
	slot := ctx.NextFDSlot(false)
	s := ctx.FD(slot)
	if s.File == nil {
		return ferr.NoResource(in.Def.Name, nil)
	}
	op := in.Stats.BeginOp(stats.IONone)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.File.Fd(), uintptr(req), 0)
	in.Stats.EndOp(op, 0)
	if errno != 0 {
		return ferr.Transient(in.Def.Name, errno)
	}
	return nil
}
