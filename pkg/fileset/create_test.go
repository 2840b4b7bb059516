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

package fileset

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/filebench/filebench-sub000/pkg/avd"
)

func TestCreateOnDiskMakesRootAndDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fs")
	fs := newTestFileset(20, 2, 4)
	fs.Root = root
	if err := fs.Populate(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if err := fs.CreateOnDisk(context.Background(), rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("CreateOnDisk() error = %v", err)
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		t.Fatalf("fileset root not created as a directory: %v", err)
	}
}

func TestCreateOnDiskPreallocatesSelectedFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fs")
	fs := New(Config{
		Name:            "testfs",
		Root:            root,
		Entries:         avd.Int(10),
		LeafDirs:        avd.Int(0),
		MeanWidth:       avd.Double(4),
		PreallocPercent: avd.Double(100),
	})
	fs.SizeDist = nil
	if err := fs.Populate(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	// Give every file a non-zero size directly since SizeDist is nil.
	var walk func(n *FilesetEntry)
	walk = func(n *FilesetEntry) {
		for _, c := range n.children {
			if c.Kind == KindFile {
				c.Size = 4096
			} else {
				walk(c)
			}
		}
	}
	walk(fs.RootEntry())

	if err := fs.CreateOnDisk(context.Background(), rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("CreateOnDisk() error = %v", err)
	}

	if got := fs.RealFiles(); got != 10 {
		t.Fatalf("RealFiles() = %d; want 10", got)
	}
	counts := fs.Counts(KindFile)
	if counts.Exists != 10 {
		t.Errorf("Counts(KindFile).Exists = %d; want 10 (preallocpercent=100)", counts.Exists)
	}
	if fs.FSBytes() != 10*4096 {
		t.Errorf("FSBytes() = %d; want %d", fs.FSBytes(), 10*4096)
	}
}

func TestCreateOnDiskReuseExistingSkipsRemoval(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fs")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	sentinel := filepath.Join(root, "keep-me")
	if err := os.WriteFile(sentinel, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := New(Config{
		Name:            "testfs",
		Root:            root,
		Flags:           Flags{ReuseExisting: true, TrustTree: true},
		Entries:         avd.Int(3),
		LeafDirs:        avd.Int(0),
		MeanWidth:       avd.Double(4),
		PreallocPercent: avd.Double(0),
	})
	if err := fs.Populate(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if err := fs.CreateOnDisk(context.Background(), rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("CreateOnDisk() error = %v", err)
	}
	if _, err := os.Stat(sentinel); err != nil {
		t.Errorf("ReuseExisting+TrustTree should not have removed the pre-existing root; sentinel file gone: %v", err)
	}
}
