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
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/semaphore"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

const (
	defaultConcurrency   = 50
	defaultRetries       = 2
	defaultRetryInterval = 100 * time.Millisecond
	retryMultiplier      = 4
)

// ExecutorConfig bounds one scan's fan-out.
type ExecutorConfig struct {
	// Concurrency caps requests in flight across all hosts.
	Concurrency int
	// Retries is the number of re-attempts after a transient failure.
	Retries int
	// RetryInterval is the first backoff step; each step multiplies by 4.
	RetryInterval time.Duration
}

func (c *ExecutorConfig) fillDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.Retries < 0 {
		c.Retries = defaultRetries
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = defaultRetryInterval
	}
}

// Executor fans a probe set out over the transport under the global
// semaphore and the per-host pacer, classifies each response and streams
// outcomes in completion order.
type Executor struct {
	transport *Transport
	pacer     *Pacer
	sem       *semaphore.Weighted
	cfg       ExecutorConfig
	logger    log.Logger
	metrics   *Metrics
}

// NewExecutor wires an executor for one scan.
func NewExecutor(transport *Transport, pacer *Pacer, cfg ExecutorConfig, logger log.Logger, metrics *Metrics) *Executor {
	cfg.fillDefaults()
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Executor{
		transport: transport,
		pacer:     pacer,
		sem:       semaphore.NewWeighted(int64(cfg.Concurrency)),
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run dispatches every probe and returns the outcome stream. Exactly one
// outcome is emitted per probe, then the channel closes. Workers launch
// in the order of the probe slice, but admission to the network is
// governed by the pacer and the semaphore, so outcomes arrive in
// completion order; report ordering is the aggregator's job.
func (e *Executor) Run(ctx context.Context, probes []probe.Probe, id probe.Identifier) <-chan Outcome {
	// Buffered to the probe count so emission never blocks and the
	// stream closes promptly on cancellation.
	out := make(chan Outcome, len(probes))
	var wg sync.WaitGroup
	for _, p := range probes {
		wg.Add(1)
		go func(p probe.Probe) {
			defer wg.Done()
			o := e.runProbe(ctx, p, id)
			e.metrics.outcomes.WithLabelValues(string(o.State)).Inc()
			out <- o
		}(p)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// serverStatusError marks a 5xx answer as a retryable transport-level
// failure; the classifier never sees these.
type serverStatusError struct{ status int }

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("server error: status %d", e.status)
}

func (e *Executor) runProbe(ctx context.Context, p probe.Probe, id probe.Identifier) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			_ = level.Error(e.logger).Log("msg", "probe worker panicked", "probe", p.ID, "panic", r)
			out = Outcome{ProbeID: p.ID, State: probe.StateError, Diagnostic: fmt.Sprintf("panic: %v", r)}
		}
	}()

	host, err := p.Host()
	if err != nil {
		return Outcome{ProbeID: p.ID, State: probe.StateError, Diagnostic: "malformed url template"}
	}

	if err := e.pacer.Acquire(ctx, host); err != nil {
		return e.cancelledOutcome(ctx, p)
	}
	defer e.pacer.Release(host)

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return e.cancelledOutcome(ctx, p)
	}
	defer e.sem.Release(1)

	method := p.Method
	if method == "" {
		method = http.MethodGet
	}
	req := Request{Method: method, URL: p.URL(id), Body: p.Body(id), Headers: p.Headers}

	var (
		resp        *probe.Response
		attempts    int
		lastLatency time.Duration
	)
	op := func() error {
		attempts++
		if attempts > 1 {
			e.metrics.retries.Inc()
		}
		e.metrics.inFlight.Inc()
		start := time.Now()
		r, err := e.transport.Fetch(ctx, req)
		lastLatency = time.Since(start)
		e.metrics.inFlight.Dec()
		e.metrics.requestDuration.Observe(lastLatency.Seconds())
		if err != nil {
			var terr *TransportError
			if errors.As(err, &terr) && terr.Transient() {
				return terr
			}
			return backoff.Permanent(err)
		}
		if r.StatusCode >= 500 {
			return &serverStatusError{status: r.StatusCode}
		}
		resp = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.RetryInterval
	// Retries happen while the host slot is held, so the pacer cannot
	// space them; the backoff enforces the host's minimum interval
	// between attempts instead.
	if hostInterval := e.pacer.Interval(host); hostInterval > bo.InitialInterval {
		bo.InitialInterval = hostInterval
	}
	bo.Multiplier = retryMultiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(e.cfg.Retries)), ctx))
	if err != nil {
		if ctx.Err() != nil {
			o := e.cancelledOutcome(ctx, p)
			o.Attempts = attempts
			return o
		}
		_ = level.Debug(e.logger).Log("msg", "probe failed", "probe", p.ID, "attempts", attempts, "err", err)
		return Outcome{
			ProbeID:    p.ID,
			State:      probe.StateError,
			LatencyMS:  lastLatency.Milliseconds(),
			Diagnostic: diagnosticFor(err),
			Attempts:   attempts,
		}
	}

	state, diag := p.Rule.Classify(resp)
	return Outcome{
		ProbeID:    p.ID,
		State:      state,
		FinalURL:   resp.FinalURL,
		LatencyMS:  lastLatency.Milliseconds(),
		Diagnostic: diag,
		Attempts:   attempts,
	}
}

func (e *Executor) cancelledOutcome(ctx context.Context, p probe.Probe) Outcome {
	diag := "cancelled"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		diag = "scan deadline exceeded"
	}
	return Outcome{ProbeID: p.ID, State: probe.StateError, Diagnostic: diag}
}

func diagnosticFor(err error) string {
	var terr *TransportError
	if errors.As(err, &terr) {
		return string(terr.Kind)
	}
	var sErr *serverStatusError
	if errors.As(err, &sErr) {
		return sErr.Error()
	}
	return err.Error()
}
