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
	"testing"
	"time"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/eventgen"
	"github.com/filebench/filebench-sub000/pkg/flowop"
	"github.com/filebench/filebench-sub000/pkg/region"
	"github.com/filebench/filebench-sub000/pkg/stats"
	"github.com/filebench/filebench-sub000/pkg/threadflow"
)

func newTestController() *Controller {
	r := region.New()
	rt := threadflow.NewRuntime(eventgen.New(), stats.NewRegistry())
	return NewController(r, rt)
}

// longDelayDef builds a single-thread process definition whose only
// flowop blocks on ctx.Done(), so the process stays "running" until
// the controller cancels its context (Shutdown's drain path).
func longDelayDef() *Def {
	return &Def{
		Name:      "proc1",
		Instances: 1,
		Threads: []*threadflow.Def{
			{
				Name:      "thread1",
				Instances: 1,
				Flowops: []*flowop.Def{
					{Name: "d1", TypeName: "delay", Value: avd.Double(30)},
				},
			},
		},
	}
}

func TestCreateReachesRunningThenShutdownDrains(t *testing.T) {
	c := newTestController()
	_, err := c.Create(context.Background(), []*Def{longDelayDef()})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	procs := c.allProcs()
	if len(procs) != 1 {
		t.Fatalf("allProcs() = %d; want 1", len(procs))
	}
	deadline := time.Now().Add(2 * time.Second)
	for procs[0].Running() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if procs[0].Running() == 0 {
		t.Fatal("procflow never reported a running threadflow")
	}

	c.Shutdown(region.AbortDone)

	drainDeadline := time.Now().Add(2 * time.Second)
	for procs[0].Running() > 0 && time.Now().Before(drainDeadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := procs[0].Running(); got != 0 {
		t.Errorf("Running() after Shutdown = %d; want 0", got)
	}
	if c.Region.Abort() != region.AbortDone {
		t.Errorf("Region.Abort() after Shutdown = %v; want AbortDone", c.Region.Abort())
	}
}

func TestShutdownKeepsFirstAbortKind(t *testing.T) {
	c := newTestController()
	c.Region.SetAbort(region.AbortError)
	c.Shutdown(region.AbortDone)
	if c.Region.Abort() != region.AbortError {
		t.Errorf("Abort() = %v; want the first-set kind (AbortError) to stick", c.Region.Abort())
	}
}
