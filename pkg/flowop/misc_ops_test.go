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

func TestRunDelaySleepsForValueSeconds(t *testing.T) {
	ctx := newFakeCtx()
	def := newDef("d1", "delay")
	def.Value = avd.Double(0.02)
	in := NewInstance(def)

	start := time.Now()
	if err := runDelay(ctx, in); err != nil {
		t.Fatalf("runDelay() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("runDelay() returned after %v; want at least ~20ms", elapsed)
	}
}

func TestRunDelayReturnsEarlyOnCancel(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	ctx := newFakeCtx()
	ctx.Context = base
	def := newDef("d1", "delay")
	def.Value = avd.Double(10)
	in := NewInstance(def)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := runDelay(ctx, in); err == nil {
		t.Error("runDelay() after context cancel: want error, got nil")
	}
}

func TestRunHogBurnsForValueSeconds(t *testing.T) {
	ctx := newFakeCtx()
	def := newDef("h1", "hog")
	def.Value = avd.Double(0.02)
	in := NewInstance(def)

	start := time.Now()
	if err := runHog(ctx, in); err != nil {
		t.Fatalf("runHog() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("runHog() returned after %v; want at least ~20ms", elapsed)
	}
}

func TestRunPrintLogsValueString(t *testing.T) {
	ctx := newFakeCtx()
	def := newDef("p1", "print")
	def.Value = avd.String("hello")
	in := NewInstance(def)
	if err := runPrint(ctx, in); err != nil {
		t.Fatalf("runPrint() error = %v", err)
	}
}

func TestRunTestRandVarAccumulates(t *testing.T) {
	ctx := newFakeCtx()
	def := newDef("tr1", "testrandvar")
	def.Value = avd.Double(3)
	in := NewInstance(def)

	for i := 0; i < 5; i++ {
		if err := runTestRandVar(ctx, in); err != nil {
			t.Fatalf("runTestRandVar() error = %v", err)
		}
	}
	if in.testRVCount != 5 {
		t.Errorf("testRVCount = %d; want 5", in.testRVCount)
	}
	if in.testRVSum != 15 {
		t.Errorf("testRVSum = %v; want 15", in.testRVSum)
	}
}

func TestRunIoctlWithoutOpenFDIsNoResource(t *testing.T) {
	ctx := newFakeCtx()
	def := newDef("io1", "ioctl")
	def.Value = avd.Int(0)
	in := NewInstance(def)
	if err := runIoctl(ctx, in); err == nil {
		t.Error("runIoctl() with no open fd: want error, got nil")
	}
}
