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

package osutil

import (
	"path/filepath"
	"testing"
)

func TestCacheDirHonorsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FILEBENCH_CACHE_DIR", dir)
	if got := cacheDir(); got != dir {
		t.Errorf("cacheDir() = %q; want %q", got, dir)
	}
}

func TestDefaultShmPathUnderCacheDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FILEBENCH_CACHE_DIR", dir)
	want := filepath.Join(dir, "region.shm")
	if got := DefaultShmPath(); got != want {
		t.Errorf("DefaultShmPath() = %q; want %q", got, want)
	}
}

func TestDefaultFilesetRootUnderCacheDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FILEBENCH_CACHE_DIR", dir)
	want := filepath.Join(dir, "fileset-root")
	if got := DefaultFilesetRoot(); got != want {
		t.Errorf("DefaultFilesetRoot() = %q; want %q", got, want)
	}
}
