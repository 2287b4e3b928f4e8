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

// Package scan implements the concurrent probe engine: transport,
// per-host pacing, the bounded fan-out executor, outcome aggregation and
// the per-kind scan orchestrator.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

var (
	// ErrCancelled reports a scan stopped by its cancellation signal.
	// The report returned alongside it still carries partial data.
	ErrCancelled = errors.New("scan cancelled")
	// ErrDeadlineExceeded reports a scan stopped by the scan deadline.
	ErrDeadlineExceeded = errors.New("scan deadline exceeded")
)

// Adapter is an external single-endpoint lookup whose result attaches to
// the report as a named section. Adapters run concurrently with the
// probe fan-out, hold their own rate limits and deadlines, and a failure
// degrades only their own section.
type Adapter interface {
	Name() string
	Lookup(ctx context.Context, id probe.Identifier) (any, error)
}

// LicenseGate is consulted before each scan and notified after it.
type LicenseGate interface {
	Permit(ctx context.Context, kind probe.Kind, mode probe.Tier) error
	Record(ctx context.Context, kind probe.Kind, success bool)
}

// Config bounds one scanner's behaviour.
type Config struct {
	Concurrency           int
	Retries               int
	RetryInterval         time.Duration
	RequestTimeout        time.Duration
	HostInterval          time.Duration
	HostIntervalOverrides map[string]time.Duration
	QuickDeadline         time.Duration
	DeepDeadline          time.Duration
	Selection             probe.Selection
	UserAgents            []string
	// Seed fixes the user-agent rotation sequence; 0 derives one from
	// the scan start time.
	Seed int64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:    defaultConcurrency,
		Retries:        defaultRetries,
		RetryInterval:  defaultRetryInterval,
		RequestTimeout: defaultRequestTimeout,
		HostInterval:   defaultHostInterval,
		QuickDeadline:  180 * time.Second,
		DeepDeadline:   600 * time.Second,
	}
}

// Scanner is the public entry point. One Scanner may serve concurrent
// scans; each scan owns its transport, pacer and executor, so scans
// share no mutable state.
type Scanner struct {
	reg      *probe.Registry
	cfg      Config
	logger   log.Logger
	metrics  *Metrics
	adapters map[probe.Kind][]Adapter
	license  LicenseGate
}

// Option configures optional scanner collaborators.
type Option func(*Scanner)

// WithAdapters attaches adapters for an identifier kind.
func WithAdapters(kind probe.Kind, adapters ...Adapter) Option {
	return func(s *Scanner) {
		s.adapters[kind] = append(s.adapters[kind], adapters...)
	}
}

// WithLicenseGate attaches the licence gateway.
func WithLicenseGate(gate LicenseGate) Option {
	return func(s *Scanner) { s.license = gate }
}

// NewScanner builds a scanner over a registry.
func NewScanner(reg *probe.Registry, cfg Config, logger log.Logger, promReg prometheus.Registerer, opts ...Option) *Scanner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	s := &Scanner{
		reg:      reg,
		cfg:      cfg,
		logger:   logger,
		metrics:  NewMetrics(promReg),
		adapters: map[probe.Kind][]Adapter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanUsername scans a username target.
func (s *Scanner) ScanUsername(ctx context.Context, username string, mode probe.Tier) (*Report, error) {
	id, err := probe.NewUsername(username)
	if err != nil {
		return nil, err
	}
	return s.scan(ctx, id, mode)
}

// ScanEmail scans an email target.
func (s *Scanner) ScanEmail(ctx context.Context, email string, mode probe.Tier) (*Report, error) {
	id, err := probe.NewEmail(email)
	if err != nil {
		return nil, err
	}
	return s.scan(ctx, id, mode)
}

// ScanPhone scans an E.164 phone target.
func (s *Scanner) ScanPhone(ctx context.Context, e164 string, mode probe.Tier) (*Report, error) {
	id, err := probe.NewPhone(e164)
	if err != nil {
		return nil, err
	}
	return s.scan(ctx, id, mode)
}

// ScanDomain scans a domain target.
func (s *Scanner) ScanDomain(ctx context.Context, domain string, mode probe.Tier) (*Report, error) {
	id, err := probe.NewDomain(domain)
	if err != nil {
		return nil, err
	}
	return s.scan(ctx, id, mode)
}

func (s *Scanner) scan(ctx context.Context, id probe.Identifier, mode probe.Tier) (*Report, error) {
	if mode != probe.TierQuick && mode != probe.TierDeep {
		return nil, fmt.Errorf("unknown scan mode %q", mode)
	}
	if s.license != nil {
		if err := s.license.Permit(ctx, id.Kind, mode); err != nil {
			return nil, fmt.Errorf("scan not permitted: %w", err)
		}
	}

	deadline := s.cfg.QuickDeadline
	if mode == probe.TierDeep {
		deadline = s.cfg.DeepDeadline
	}
	scanCtx := ctx
	var cancel context.CancelFunc
	if deadline > 0 {
		scanCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	started := time.Now().UTC()
	seed := s.cfg.Seed
	if seed == 0 {
		seed = started.UnixNano()
	}
	transport := NewTransport(TransportConfig{
		PoolSize:       s.cfg.Concurrency,
		RequestTimeout: s.cfg.RequestTimeout,
		UserAgents:     s.cfg.UserAgents,
		Seed:           seed,
	})
	defer transport.CloseIdleConnections()

	pacer := NewPacer(s.cfg.HostInterval, s.cfg.HostIntervalOverrides)
	executor := NewExecutor(transport, pacer, ExecutorConfig{
		Concurrency:   s.cfg.Concurrency,
		Retries:       s.cfg.Retries,
		RetryInterval: s.cfg.RetryInterval,
	}, s.logger, s.metrics)

	probes := s.reg.Select(id.Kind, mode, s.cfg.Selection)
	_ = level.Info(s.logger).Log("msg", "starting scan", "kind", id.Kind, "mode", mode, "probes", len(probes))

	report := &Report{
		ID:        uuid.NewString(),
		Target:    id,
		Mode:      mode,
		StartedAt: started,
		Sections:  map[string]any{},
	}

	// Adapters run alongside the fan-out; each writes only its own
	// section and failures degrade to a SectionError.
	var sectionMu sync.Mutex
	var adapterWG sync.WaitGroup
	for _, a := range s.adapters[id.Kind] {
		adapterWG.Add(1)
		go func(a Adapter) {
			defer adapterWG.Done()
			section := s.runAdapter(scanCtx, a, id)
			sectionMu.Lock()
			report.Sections[a.Name()] = section
			sectionMu.Unlock()
		}(a)
	}

	agg := NewAggregator(s.reg)
	for o := range executor.Run(scanCtx, probes, id) {
		agg.Consume(o)
	}
	adapterWG.Wait()

	report.FinishedAt = time.Now().UTC()
	agg.Finalize(report)

	var scanErr error
	switch {
	case errors.Is(scanCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		scanErr = ErrDeadlineExceeded
	case scanCtx.Err() != nil:
		scanErr = ErrCancelled
	}

	if s.license != nil {
		// Usage is recorded even when the scan context is already done.
		s.license.Record(context.WithoutCancel(ctx), id.Kind, scanErr == nil)
	}
	_ = level.Info(s.logger).Log("msg", "scan finished", "kind", id.Kind,
		"attempted", report.Stats.Attempted, "present", report.Stats.Present,
		"errors", report.Stats.Error, "took", report.FinishedAt.Sub(started))
	return report, scanErr
}

func (s *Scanner) runAdapter(ctx context.Context, a Adapter, id probe.Identifier) (section any) {
	defer func() {
		if r := recover(); r != nil {
			_ = level.Error(s.logger).Log("msg", "adapter panicked", "adapter", a.Name(), "panic", r)
			section = SectionError{Error: fmt.Sprintf("panic: %v", r)}
		}
	}()
	res, err := a.Lookup(ctx, id)
	if err != nil {
		_ = level.Warn(s.logger).Log("msg", "adapter failed", "adapter", a.Name(), "err", err)
		return SectionError{Error: err.Error()}
	}
	return res
}
