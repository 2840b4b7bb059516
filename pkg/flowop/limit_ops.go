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
	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/ferr"
	"github.com/filebench/filebench-sub000/pkg/stats"
)

// runEventLimit claims a single event from the process-wide generator
// before letting the thread continue (spec.md §4.5, §4.9 "eventlimit").
func runEventLimit(ctx ThreadContext, in *Instance) error {
	op := in.Stats.BeginOp(stats.IONone)
	err := ctx.EventGen().Claim(ctx, 1)
	in.Stats.EndOp(op, 0)
	if err != nil {
		return ferr.NoResource(in.Def.Name, err)
	}
	return nil
}

// bytesPerEvent is the throughput unit bwlimit's bucket is denominated
// in: one claimed event buys this many bytes of budget
// (spec.md §4.5 "bwlimit").
const bytesPerEvent = 1 << 20

// targetTotals resolves Def.TargetName to a named flowop's live
// aggregated (count, bytes) totals via the run's stats registry,
// falling back to the workload-wide global total when no target is
// named (spec.md §4.5 "limit target").
func targetTotals(ctx ThreadContext, in *Instance) (count, bytes int64, err error) {
	reg := ctx.Stats()
	if reg == nil {
		return 0, 0, nil
	}
	name := in.Def.TargetName
	if name == "" {
		c, b := reg.Global().Totals()
		return c, b, nil
	}
	s := reg.ByName(name)
	if s == nil {
		return 0, 0, ferr.Errorf(in.Def.Name, "limit target: could not find flowop %q", name)
	}
	c, b := s.Totals()
	return c, b, nil
}

// rateLimit implements the delta-bucket throttle shared by
// iopslimit/opslimit/bwlimit: track how much the resolved counter has
// moved since the last call, and once the local bucket runs negative,
// claim enough events from the shared generator to refill it back to
// non-negative (spec.md §4.5; confirmed against the original's
// fo_tputbucket/fo_tputlast pair).
func rateLimit(ctx ThreadContext, in *Instance, current, unitsPerEvent int64) error {
	in.Lock()
	if !in.tputInitted {
		in.tputInitted = true
		in.tputLast = current
		in.Unlock()
		return nil
	}
	delta := current - in.tputLast
	in.tputLast = current
	in.tputBucket -= delta
	bucket := in.tputBucket
	in.Unlock()

	if bucket >= 0 {
		return nil
	}

	events := (-bucket)/unitsPerEvent + 1
	if err := ctx.EventGen().Claim(ctx, events); err != nil {
		return ferr.NoResource(in.Def.Name, err)
	}
	in.Lock()
	in.tputBucket += events * unitsPerEvent
	in.Unlock()
	return nil
}

// runIOPSLimit throttles the calling thread so the resolved target's
// (or the run's global) op rate stays near the shared event
// generator's rate (spec.md §4.5 "iopslimit").
func runIOPSLimit(ctx ThreadContext, in *Instance) error {
	count, _, err := targetTotals(ctx, in)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	err = rateLimit(ctx, in, count, 1)
	in.Stats.EndOp(op, 0)
	return err
}

// runOpsLimit is iopslimit's sibling for the general op rate rather
// than just I/O ops (spec.md §4.5 "opslimit"); the original's
// iopslimit and opslimit bodies differ only in which field of the
// target's stats they read (fs_count either way once a target is
// named), and FlowStats.Count already counts every op kind, so both
// share one implementation here.
func runOpsLimit(ctx ThreadContext, in *Instance) error {
	return runIOPSLimit(ctx, in)
}

// runBWLimit throttles the calling thread so the resolved target's (or
// the run's global) byte rate stays near the shared event generator's
// rate times bytesPerEvent (spec.md §4.5 "bwlimit").
func runBWLimit(ctx ThreadContext, in *Instance) error {
	_, bytes, err := targetTotals(ctx, in)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	err = rateLimit(ctx, in, bytes, bytesPerEvent)
	in.Stats.EndOp(op, 0)
	return err
}

// runFinishOnCount ends the enclosing threadflow with NoResource once
// the resolved target's (or the run's global) op count reaches
// Def.Value (spec.md §4.5 "finishoncount").
func runFinishOnCount(ctx ThreadContext, in *Instance) error {
	target, err := avd.GetInt(in.Def.Value)
	if err != nil {
		return ferr.Errorf(in.Def.Name, "value: %v", err)
	}
	count, _, err := targetTotals(ctx, in)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	in.Stats.EndOp(op, 0)
	if count >= target {
		return ferr.NoResource(in.Def.Name, nil)
	}
	return nil
}

// runFinishOnBytes ends the enclosing threadflow with NoResource once
// the resolved target's (or the run's global) accumulated byte count
// reaches Def.Value (spec.md §4.5 "finishonbytes").
func runFinishOnBytes(ctx ThreadContext, in *Instance) error {
	target, err := avd.GetInt(in.Def.Value)
	if err != nil {
		return ferr.Errorf(in.Def.Name, "value: %v", err)
	}
	_, bytes, err := targetTotals(ctx, in)
	if err != nil {
		return err
	}
	op := in.Stats.BeginOp(stats.IONone)
	in.Stats.EndOp(op, 0)
	if bytes >= target {
		return ferr.NoResource(in.Def.Name, nil)
	}
	return nil
}
