/*
Copyright 2011 Google Inc.

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

// Package osutil provides operating system-specific path information
// used to pick default locations for a run's shared-region file and
// generated fileset trees when a caller doesn't specify one (spec.md
// §6 "defaults").
package osutil

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// HomeDir returns the path to the user's home directory.
// It returns the empty string if the value isn't known.
func HomeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}

// Username returns the current user's username, as
// reported by the relevant environment variable.
func Username() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("USERNAME")
	}
	return os.Getenv("USER")
}

var cacheDirOnce sync.Once

// CacheDir returns the directory filebench uses for its default shared
// region file and run scratch state, creating it if needed. Overridden
// by FILEBENCH_CACHE_DIR.
func CacheDir() string {
	cacheDirOnce.Do(makeCacheDir)
	return cacheDir()
}

func cacheDir() string {
	if d := os.Getenv("FILEBENCH_CACHE_DIR"); d != "" {
		return d
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(HomeDir(), "Library", "Caches", "filebench")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return filepath.Join(v, "filebench")
			}
		}
		panic("No Windows TEMP or TMP environment variables found; please file a bug report.")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "filebench")
	}
	return filepath.Join(HomeDir(), ".cache", "filebench")
}

func makeCacheDir() {
	if err := os.MkdirAll(cacheDir(), 0700); err != nil {
		log.Fatalf("osutil: could not create cache dir %v: %v", cacheDir(), err)
	}
}

// DefaultShmPath returns the default backing-file path for a run's
// shared region header (spec.md §4.8 worker-spawn contract "-m").
func DefaultShmPath() string {
	return filepath.Join(CacheDir(), "region.shm")
}

// DefaultFilesetRoot returns the default root directory new filesets
// are populated under when a workload doesn't name one.
func DefaultFilesetRoot() string {
	return filepath.Join(CacheDir(), "fileset-root")
}
