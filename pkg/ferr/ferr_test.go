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

package ferr

import (
	"errors"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := Transient("read", errors.New("eio"))
	if !Is(err, KindTransient) {
		t.Error("Is(Transient(...), KindTransient) = false; want true")
	}
	if Is(err, KindFatal) {
		t.Error("Is(Transient(...), KindFatal) = true; want false")
	}
}

func TestIsRejectsPlainErrors(t *testing.T) {
	if Is(errors.New("plain"), KindError) {
		t.Error("Is(plain error, KindError) = true; want false")
	}
	if Is(nil, KindError) {
		t.Error("Is(nil, KindError) = true; want false")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Fatal("write", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is(Fatal(cause), cause) = false; want true")
	}
}

func TestErrorfFormatsMessage(t *testing.T) {
	err := Errorf("parse", "unknown flowop %q", "bogus")
	if got, want := err.Error(), `parse: error: unknown flowop "bogus"`; got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}
