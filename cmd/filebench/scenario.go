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

package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/filebench/filebench-sub000/pkg/avd"
	"github.com/filebench/filebench-sub000/pkg/fileset"
	"github.com/filebench/filebench-sub000/pkg/flowop"
	"github.com/filebench/filebench-sub000/pkg/osutil"
	"github.com/filebench/filebench-sub000/pkg/randvar"
	"github.com/filebench/filebench-sub000/pkg/workload"
)

// buildWorkload assembles the bundled demonstration workload: a single
// fileset populated and preallocated on disk, one process running two
// reader/writer threads against it. A non-empty path is used as the
// fileset's root directory; an empty one falls back to
// osutil.DefaultFilesetRoot(). No workload file is parsed: this binary
// ships only the construction-call equivalent.
func buildWorkload(path string) (*workload.Builder, error) {
	root := path
	if root == "" {
		root = osutil.DefaultFilesetRoot()
	}

	b := workload.New()
	rng := rand.New(rand.NewSource(1))

	sizeDist := randvar.New(randvar.ModeGamma, randvar.NewGenerator48(42), 4096, 4096, 131072, 1.5, nil)

	b.DefineFileset(fileset.Config{
		Name:            "bigfileset",
		Root:            root,
		Entries:         avd.Int(1000),
		LeafDirs:        avd.Int(10),
		MeanWidth:       avd.Double(20),
		PreallocPercent: avd.Double(100),
		SizeDist:        sizeDist,
		Flags: fileset.Flags{
			Preallocate: true,
		},
	})

	ctx := context.Background()
	if err := b.PopulateFileset(ctx, "bigfileset", rng); err != nil {
		return nil, fmt.Errorf("buildWorkload: %w", err)
	}

	proc := b.DefineProcess("filereader", 1)
	thread := b.DefineThread(proc, "reader", 4)

	if err := b.DefineFlowop(thread, &flowop.Def{
		Name:        "read-op",
		TypeName:    "read",
		Class:       flowop.ClassIO,
		FilesetName: "bigfileset",
		Iosize:      avd.Int(8192),
		Random:      avd.Bool(true),
		RotateFD:    avd.Bool(false),
	}); err != nil {
		return nil, err
	}
	if err := b.DefineFlowop(thread, &flowop.Def{
		Name:     "read-sleep",
		TypeName: "delay",
		Class:    flowop.ClassOther,
		Value:    avd.Double(0.001),
	}); err != nil {
		return nil, err
	}

	writerThread := b.DefineThread(proc, "writer", 2)
	if err := b.DefineFlowop(writerThread, &flowop.Def{
		Name:        "write-op",
		TypeName:    "write",
		Class:       flowop.ClassIO,
		FilesetName: "bigfileset",
		Iosize:      avd.Int(16384),
		Random:      avd.Bool(true),
		RotateFD:    avd.Bool(false),
	}); err != nil {
		return nil, err
	}

	return b, nil
}
