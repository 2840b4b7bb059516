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

package eventgen

import (
	"context"
	"testing"
	"time"
)

func TestClaimBlocksUntilFilled(t *testing.T) {
	g := New()
	g.SetRate(1000) // fast enough to keep this test quick
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g.Start(ctx)

	deadline, cancelDeadline := context.WithTimeout(ctx, 2*time.Second)
	defer cancelDeadline()
	if err := g.Claim(deadline, 1); err != nil {
		t.Fatalf("Claim(1) = %v; want nil", err)
	}
}

func TestClaimReturnsOnContextCancel(t *testing.T) {
	g := New() // rate 0: never fills
	ctx, cancel := context.WithCancel(context.Background())
	g.Start(ctx)

	claimCtx, claimCancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- g.Claim(claimCtx, 1) }()

	claimCancel()
	select {
	case err := <-errc:
		if err == nil {
			t.Fatal("Claim returned nil after its context was cancelled")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Claim did not return after its context was cancelled")
	}
	cancel()
}

func TestClaimBytesRoundsUp(t *testing.T) {
	g := New()
	g.mu.Lock()
	g.q = 1
	g.mu.Unlock()

	ctx := context.Background()
	if err := g.ClaimBytes(ctx, BytesPerEvent-1); err != nil {
		t.Fatalf("ClaimBytes(< 1 event worth) = %v; want nil", err)
	}
	if got := g.Available(); got != 0 {
		t.Errorf("Available() after claiming a partial event = %d; want 0", got)
	}
}

func TestResetZeroesQueue(t *testing.T) {
	g := New()
	g.mu.Lock()
	g.q = 5
	g.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g.Reset(ctx)
	if got := g.Available(); got != 0 {
		t.Errorf("Available() after Reset = %d; want 0", got)
	}
}
