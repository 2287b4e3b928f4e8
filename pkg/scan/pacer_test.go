// Copyright 2025 CKSEARCH Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scan

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPacerSerializesPerHost(t *testing.T) {
	p := NewPacer(20*time.Millisecond, nil)
	ctx := context.Background()

	var (
		mu       sync.Mutex
		inFlight int
		max      int
	)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Acquire(ctx, "a.example.com"); err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			inFlight++
			if inFlight > max {
				max = inFlight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			p.Release("a.example.com")
		}()
	}
	wg.Wait()
	if max != 1 {
		t.Fatalf("observed %d concurrent holders for one host, want 1", max)
	}
}

func TestPacerEnforcesInterval(t *testing.T) {
	interval := 50 * time.Millisecond
	p := NewPacer(interval, nil)
	ctx := context.Background()

	if err := p.Acquire(ctx, "a.example.com"); err != nil {
		t.Fatal(err)
	}
	p.Release("a.example.com")

	start := time.Now()
	if err := p.Acquire(ctx, "a.example.com"); err != nil {
		t.Fatal(err)
	}
	p.Release("a.example.com")

	if elapsed := time.Since(start); elapsed < interval-5*time.Millisecond {
		t.Fatalf("second acquire returned after %v, want at least ~%v", elapsed, interval)
	}
}

func TestPacerHostsAreIndependent(t *testing.T) {
	p := NewPacer(time.Hour, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := p.Acquire(ctx, "a.example.com"); err != nil {
		t.Fatal(err)
	}
	defer p.Release("a.example.com")

	// A slow host must not delay a different host.
	done := make(chan error, 1)
	go func() {
		done <- p.Acquire(ctx, "b.example.com")
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
		p.Release("b.example.com")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("acquire on an unrelated host blocked")
	}
}

func TestPacerOverride(t *testing.T) {
	p := NewPacer(time.Millisecond, map[string]time.Duration{"slow.example.com": 80 * time.Millisecond})
	ctx := context.Background()

	if err := p.Acquire(ctx, "slow.example.com"); err != nil {
		t.Fatal(err)
	}
	p.Release("slow.example.com")

	start := time.Now()
	if err := p.Acquire(ctx, "slow.example.com"); err != nil {
		t.Fatal(err)
	}
	p.Release("slow.example.com")
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Fatalf("override interval not honoured, waited only %v", elapsed)
	}
}

func TestPacerAcquireCancellation(t *testing.T) {
	p := NewPacer(10*time.Millisecond, nil)

	if err := p.Acquire(context.Background(), "a.example.com"); err != nil {
		t.Fatal(err)
	}

	// The slot is held, so a second acquire must give up on cancel.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Acquire(ctx, "a.example.com")
	}()
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled acquire did not return")
	}

	// The cancelled waiter must not have consumed the slot: after the
	// holder releases, a fresh acquire succeeds.
	p.Release("a.example.com")
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if err := p.Acquire(ctx2, "a.example.com"); err != nil {
		t.Fatalf("slot leaked by cancelled waiter: %v", err)
	}
	p.Release("a.example.com")
}

// Cancellation during the interval wait must hand the slot back.
func TestPacerCancelDuringIntervalWait(t *testing.T) {
	p := NewPacer(time.Hour, nil)
	ctx := context.Background()

	if err := p.Acquire(ctx, "a.example.com"); err != nil {
		t.Fatal(err)
	}
	p.Release("a.example.com")

	waitCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- p.Acquire(waitCtx, "a.example.com")
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-done; err == nil {
		t.Fatal("expected context error")
	}

	// Slot must be free again.
	b := p.bucket("a.example.com")
	select {
	case b.slot <- struct{}{}:
		<-b.slot
	default:
		t.Fatal("slot still held after cancelled interval wait")
	}
}
