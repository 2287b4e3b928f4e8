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
	"time"
)

const defaultHostInterval = 100 * time.Millisecond

// Pacer serialises requests per host: at most one in flight and a
// minimum interval between a release and the next acquire of the same
// host. Buckets are created lazily and live for one scan.
type Pacer struct {
	defaultInterval time.Duration
	overrides       map[string]time.Duration

	mu      sync.RWMutex
	buckets map[string]*hostBucket
}

type hostBucket struct {
	slot     chan struct{} // capacity 1, holds the in-flight token
	interval time.Duration

	mu          sync.Mutex
	lastRelease time.Time
}

// NewPacer builds a pacer with the default per-host interval and
// per-host overrides for rate-sensitive endpoints.
func NewPacer(interval time.Duration, overrides map[string]time.Duration) *Pacer {
	if interval <= 0 {
		interval = defaultHostInterval
	}
	return &Pacer{
		defaultInterval: interval,
		overrides:       overrides,
		buckets:         map[string]*hostBucket{},
	}
}

func (p *Pacer) bucket(host string) *hostBucket {
	p.mu.RLock()
	b, ok := p.buckets[host]
	p.mu.RUnlock()
	if ok {
		return b
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok = p.buckets[host]; ok {
		return b
	}
	interval := p.defaultInterval
	if ov, ok := p.overrides[host]; ok {
		interval = ov
	}
	b = &hostBucket{slot: make(chan struct{}, 1), interval: interval}
	p.buckets[host] = b
	return b
}

// Interval returns the minimum spacing enforced for a host. The
// executor uses it to keep retry attempts at least that far apart
// while the host slot is held.
func (p *Pacer) Interval(host string) time.Duration {
	if ov, ok := p.overrides[host]; ok {
		return ov
	}
	return p.defaultInterval
}

// Acquire blocks until the host's slot is free and its interval since
// the previous release has elapsed. On cancellation it returns without
// holding the slot.
func (p *Pacer) Acquire(ctx context.Context, host string) error {
	b := p.bucket(host)

	select {
	case b.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.mu.Lock()
	wait := b.interval - time.Since(b.lastRelease)
	b.mu.Unlock()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		<-b.slot
		return ctx.Err()
	}
}

// Release records the completion instant and frees the host's slot.
func (p *Pacer) Release(host string) {
	b := p.bucket(host)
	b.mu.Lock()
	b.lastRelease = time.Now()
	b.mu.Unlock()
	<-b.slot
}
