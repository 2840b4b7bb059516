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

// Package eventgen implements the event generator E: a process-wide
// token bucket that fills at a declared rate and is drained by
// rate-limiting flowops (spec.md §4.9). The fill source is a
// golang.org/x/time/rate.Limiter-driven ticker goroutine.
package eventgen

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// BytesPerEvent is the conversion factor bwlimit uses to translate a
// byte count into a number of events to claim, configurable per
// spec.md §9 ("Rate limiters").
const BytesPerEvent = 1 << 20 // 1 MiB per event

// Generator is the shared token-bucket counter q plus its condvar.
type Generator struct {
	mu      sync.Mutex
	cond    *sync.Cond
	q       int64
	rateHz  float64
	enabled bool

	cancel context.CancelFunc
}

// New returns a disabled generator; call SetRate and Start to begin
// filling.
func New() *Generator {
	g := &Generator{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// SetRate configures the fill rate in events per second.
func (g *Generator) SetRate(hz float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rateHz = hz
}

// Start launches the background source goroutine that increments q
// at rateHz events/sec while enabled.
func (g *Generator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g.mu.Lock()
	g.cancel = cancel
	g.enabled = true
	hz := g.rateHz
	g.mu.Unlock()

	if hz <= 0 {
		return
	}
	limiter := rate.NewLimiter(rate.Limit(hz), 1)
	go func() {
		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			g.mu.Lock()
			if !g.enabled {
				g.mu.Unlock()
				return
			}
			g.q++
			g.cond.Signal()
			g.mu.Unlock()
		}
	}()
}

// Stop disables the generator and halts the fill source.
func (g *Generator) Stop() {
	g.mu.Lock()
	g.enabled = false
	cancel := g.cancel
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset zeroes q and restarts the source, per spec.md §4.9; callers
// pass the same ctx they intend to Start with next.
func (g *Generator) Reset(ctx context.Context) {
	g.Stop()
	g.mu.Lock()
	g.q = 0
	g.mu.Unlock()
	g.Start(ctx)
}

// Claim blocks until n events are available, then atomically
// decrements q by n. Returns immediately if ctx is done.
func (g *Generator) Claim(ctx context.Context, n int64) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			g.mu.Lock()
			g.cond.Broadcast()
			g.mu.Unlock()
		case <-done:
		}
	}()

	g.mu.Lock()
	defer g.mu.Unlock()
	for g.q < n {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.cond.Wait()
	}
	g.q -= n
	return nil
}

// ClaimBytes claims enough events to cover nBytes, rounding up per
// spec.md §9 ("bwlimit rounds the required events up").
func (g *Generator) ClaimBytes(ctx context.Context, nBytes int64) error {
	events := (nBytes + BytesPerEvent - 1) / BytesPerEvent
	if events < 1 {
		events = 1
	}
	return g.Claim(ctx, events)
}

// Available reports the current token count, for tests.
func (g *Generator) Available() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q
}
