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

import "github.com/filebench/filebench-sub000/pkg/stats"

// runBlock suspends the calling thread on its own condvar until a
// matching wakeup flowop elsewhere signals it (spec.md §4.5 "block").
func runBlock(ctx ThreadContext, in *Instance) error {
	op := in.Stats.BeginOp(stats.IONone)
	stop := in.watchCancel(ctx)
	defer stop()

	in.Lock()
	in.blocked = true
	for in.blocked && ctx.Err() == nil {
		in.cond.Wait()
	}
	in.blocked = false
	in.Unlock()
	in.Stats.EndOp(op, 0)
	return ctx.Err()
}

// runWakeup signals every live flowop instance named by TargetName (or
// Name, if TargetName is empty), clearing their blocked state
// (spec.md §4.5 "wakeup").
func runWakeup(ctx ThreadContext, in *Instance) error {
	op := in.Stats.BeginOp(stats.IONone)
	for _, t := range in.resolveTargets(ctx) {
		t.Lock()
		t.blocked = false
		t.cond.Broadcast()
		t.Unlock()
	}
	in.Stats.EndOp(op, 0)
	return nil
}

// runSemBlock waits until this instance's own semaphore count is at
// least Def.Value (default 1), then decrements it by that same amount
// (spec.md §4.5 "semblock").
func runSemBlock(ctx ThreadContext, in *Instance) error {
	n := in.semValue()
	op := in.Stats.BeginOp(stats.IONone)
	stop := in.watchCancel(ctx)
	defer stop()

	in.Lock()
	for in.semCount < n && ctx.Err() == nil {
		in.cond.Wait()
	}
	if ctx.Err() != nil {
		in.Unlock()
		in.Stats.EndOp(op, 0)
		return ctx.Err()
	}
	in.semCount -= n
	in.Unlock()
	in.Stats.EndOp(op, 0)
	return nil
}

// runSemPost increments every target instance's semaphore by
// Def.Value (default 1) and wakes one waiter each
// (spec.md §4.5 "sempost").
func runSemPost(ctx ThreadContext, in *Instance) error {
	n := in.semValue()
	op := in.Stats.BeginOp(stats.IONone)
	for _, t := range in.resolveTargets(ctx) {
		t.Lock()
		t.semCount += n
		t.cond.Signal()
		t.Unlock()
	}
	in.Stats.EndOp(op, 0)
	return nil
}
