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

import "testing"

func TestBuildWorkloadPopulatesFilesetAndWiresFlowops(t *testing.T) {
	b, err := buildWorkload(t.TempDir())
	if err != nil {
		t.Fatalf("buildWorkload() error = %v", err)
	}

	fs, ok := b.Fileset("bigfileset")
	if !ok {
		t.Fatal(`Fileset("bigfileset") not found after buildWorkload`)
	}
	if fs.RootEntry() == nil {
		t.Error("buildWorkload() left \"bigfileset\" unpopulated")
	}
}

func TestBuildWorkloadDefaultsRootWhenPathEmpty(t *testing.T) {
	if _, err := buildWorkload(""); err != nil {
		t.Fatalf("buildWorkload(\"\") error = %v", err)
	}
}
