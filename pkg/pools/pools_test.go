/*
Copyright 2014 The Camlistore Authors

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

package pools

import "testing"

func TestBytesBufferIsEmpty(t *testing.T) {
	buf := BytesBuffer()
	defer PutBuffer(buf)
	if buf.Len() != 0 {
		t.Errorf("BytesBuffer().Len() = %d; want 0", buf.Len())
	}
}

func TestPutBufferRecyclesForReuse(t *testing.T) {
	buf := BytesBuffer()
	buf.WriteString("leftover")
	PutBuffer(buf)

	for i := 0; i < 8; i++ {
		buf2 := BytesBuffer()
		if buf2.Len() != 0 {
			t.Fatalf("BytesBuffer() after PutBuffer = %q; want Reset to have cleared it", buf2.String())
		}
		PutBuffer(buf2)
	}
}
