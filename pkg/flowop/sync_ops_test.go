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
	"context"
	"testing"
	"time"

	"github.com/filebench/filebench-sub000/pkg/avd"
)

func TestRunBlockWaitsForWakeup(t *testing.T) {
	ctx := newFakeCtx()
	waiter := NewInstance(newDef("waiter", "block"))
	ctx.targets["waiter"] = []*Instance{waiter}

	done := make(chan error, 1)
	go func() { done <- runBlock(ctx, waiter) }()

	time.Sleep(20 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("runBlock() returned early with err=%v; want it still parked", err)
	default:
	}

	wakeDef := newDef("wakeup1", "wakeup")
	wakeDef.TargetName = "waiter"
	wakeIn := NewInstance(wakeDef)
	if err := runWakeup(ctx, wakeIn); err != nil {
		t.Fatalf("runWakeup() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runBlock() error after wakeup = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runBlock() did not return after matching wakeup")
	}
}

func TestRunBlockUnblocksOnContextCancel(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	ctx := newFakeCtx()
	ctx.Context = base
	waiter := NewInstance(newDef("waiter", "block"))

	done := make(chan error, 1)
	go func() { done <- runBlock(ctx, waiter) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("runBlock() after ctx cancellation: want non-nil error, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runBlock() did not return after context cancellation")
	}
}

func TestRunSemBlockWaitsForSemPost(t *testing.T) {
	ctx := newFakeCtx()
	waiter := NewInstance(newDef("waiter", "semblock"))
	ctx.targets["sem1"] = []*Instance{waiter}

	done := make(chan error, 1)
	go func() { done <- runSemBlock(ctx, waiter) }()

	time.Sleep(20 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("runSemBlock() returned early with err=%v; want it still parked", err)
	default:
	}

	postDef := newDef("post1", "sempost")
	postDef.TargetName = "sem1"
	postIn := NewInstance(postDef)
	if err := runSemPost(ctx, postIn); err != nil {
		t.Fatalf("runSemPost() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runSemBlock() error after sempost = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runSemBlock() did not return after matching sempost")
	}
}

func TestRunSemPostCustomValueCoversMultipleWaiters(t *testing.T) {
	ctx := newFakeCtx()
	waiter := NewInstance(newDef("waiter", "semblock"))
	ctx.targets["sem1"] = []*Instance{waiter}

	postDef := newDef("post1", "sempost")
	postDef.TargetName = "sem1"
	postDef.Value = avd.Int(2)
	postIn := NewInstance(postDef)
	if err := runSemPost(ctx, postIn); err != nil {
		t.Fatalf("runSemPost() error = %v", err)
	}

	if err := runSemBlock(ctx, waiter); err != nil {
		t.Fatalf("first runSemBlock() error = %v", err)
	}
	if err := runSemBlock(ctx, waiter); err != nil {
		t.Fatalf("second runSemBlock() error = %v", err)
	}
}
