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

// Command filebench drives a filesystem workload run. Invoked without
// -a it acts as the master: it builds the workload, starts the run,
// and waits for it to finish. Invoked with -a it acts as a worker
// process per spec.md §6's worker-spawn contract: it attaches the
// shared region header at -m, counts itself as running, and waits until
// the master sets the abort flag or it receives SIGUSR1 or an
// interrupt. A worker does not build or run any threadflows or flowops
// of procflow -a; -a and -i only label its log lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filebench/filebench-sub000/pkg/buildinfo"
	"github.com/filebench/filebench-sub000/pkg/fblog"
	"github.com/filebench/filebench-sub000/pkg/osutil"
	"github.com/filebench/filebench-sub000/pkg/region"
)

var (
	flagProcName = flag.String("a", "", "worker mode: process definition name (absent = master)")
	flagInstance = flag.Int("i", 0, "worker mode: 1-based instance number")
	flagShmAddr  = flag.String("s", "", "worker mode: hex address the worker must map the shared region at (informational in this mmap-free-address redesign; see DESIGN.md)")
	flagShmPath  = flag.String("m", osutil.DefaultShmPath(), "worker mode: path to the shared region's backing file")

	flagWorkload = flag.String("f", "", "master mode: root directory for the bundled scenario's fileset (empty = default fileset root); no workload file is parsed, see pkg/workload.Builder")
	flagDuration = flag.Duration("duration", 30*time.Second, "master mode: how long to run before shutdown")
	flagDebug    = flag.Int("D", 0, "debug verbosity level")
	flagVersion  = flag.Bool("version", false, "print the build version and exit")
)

func main() {
	flag.Parse()
	if *flagVersion {
		fmt.Println("filebench", buildinfo.Summary())
		return
	}
	fblog.Default.SetDebugLevel(*flagDebug)

	if maxFD, err := osutil.MaxFD(); err == nil {
		fblog.Default.DebugImplf("ulimit -n: %d open files available", maxFD)
	}

	if *flagProcName != "" {
		os.Exit(runWorker())
	}
	os.Exit(runMaster())
}

// runWorker implements the worker half of spec.md §6's worker-spawn
// contract: attach the shared header, register as running, and block
// until the master signals abort.
func runWorker() int {
	if *flagShmPath == "" {
		fmt.Fprintln(os.Stderr, "filebench: -m <shm-path> is required in worker mode")
		return 1
	}
	hdr, err := region.OpenSharedHeader(*flagShmPath)
	if err != nil {
		fblog.Default.Fatalf("worker %s[%d]: attach shared header: %v", *flagProcName, *flagInstance, err)
		return 1
	}
	defer hdr.Close()

	hdr.IncRunning()
	defer hdr.DecRunning()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1, os.Interrupt)
	defer signal.Stop(sigCh)

	fblog.Default.Infof("worker %s[%d]: attached, running", *flagProcName, *flagInstance)
	for {
		if hdr.Abort() != region.AbortNone {
			fblog.Default.Infof("worker %s[%d]: abort=%s, exiting", *flagProcName, *flagInstance, hdr.Abort())
			return 0
		}
		select {
		case sig := <-sigCh:
			fblog.Default.Infof("worker %s[%d]: received %s, exiting", *flagProcName, *flagInstance, sig)
			return 0
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// runMaster builds the bundled demonstration workload via
// pkg/workload.Builder, starts it, lets it run for -duration, snapshots
// and dumps stats, then shuts down cleanly
// (spec.md §6 "a start signal ... stats dump ... shutdown").
func runMaster() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fblog.Default.Infof("master: interrupted, shutting down")
		cancel()
	}()

	b, err := buildWorkload(*flagWorkload)
	if err != nil {
		log.Printf("filebench: %v", err)
		return 1
	}

	if err := b.Start(ctx); err != nil {
		fblog.Default.Errorf("master: start: %v", err)
		return 1
	}

	select {
	case <-time.After(*flagDuration):
	case <-ctx.Done():
	}

	if err := b.StatsDump(os.Stdout, "text"); err != nil {
		fblog.Default.Errorf("master: stats dump: %v", err)
	}
	b.Shutdown()
	return 0
}
