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
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

// Realistic desktop browser user agents rotated across requests.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

const (
	defaultMaxRedirects   = 5
	defaultRequestTimeout = 15 * time.Second
	maxBodyBytes          = 2 << 20 // profile pages past 2 MiB carry no classification signal
)

// TransportConfig configures one scan's HTTP transport.
type TransportConfig struct {
	// PoolSize caps pooled connections; defaults to the executor's
	// global concurrency cap.
	PoolSize       int
	MaxRedirects   int
	RequestTimeout time.Duration
	UserAgents     []string
	// Seed makes the per-request user-agent sequence reproducible
	// within a scan.
	Seed int64
}

// Transport performs probe requests over a pooled connection set owned
// by one scan. There is no process-wide HTTP state.
type Transport struct {
	client  *http.Client
	timeout time.Duration

	mu     sync.Mutex
	rnd    *rand.Rand
	agents []string
}

// Request is one probe request before identifier substitution has been
// applied by the executor.
type Request struct {
	Method  string
	URL     string
	Body    string
	Headers map[string]string
}

// NewTransport builds a transport from the config, filling defaults.
func NewTransport(cfg TransportConfig) *Transport {
	rt := cleanhttp.DefaultPooledTransport()
	if cfg.PoolSize > 0 {
		rt.MaxIdleConns = cfg.PoolSize
		rt.MaxIdleConnsPerHost = 2
		rt.MaxConnsPerHost = cfg.PoolSize
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = defaultMaxRedirects
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	client := &http.Client{
		Transport: rt,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &Transport{
		client:  client,
		timeout: timeout,
		rnd:     rand.New(rand.NewSource(cfg.Seed)),
		agents:  agents,
	}
}

// Fetch performs one request under the per-request deadline and returns
// the final response. Cancellation closes the in-flight connection.
func (t *Transport) Fetch(ctx context.Context, req Request) (*probe.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Kind: ErrKindBadRequest, Err: err}
	}
	httpReq.Header.Set("User-Agent", t.nextUserAgent())
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	return &probe.Response{
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

// CloseIdleConnections releases the pool at end of scan.
func (t *Transport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

func (t *Transport) nextUserAgent() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.agents[t.rnd.Intn(len(t.agents))]
}

// ErrKind partitions transport failures for the retry policy.
type ErrKind string

const (
	ErrKindTimeout    ErrKind = "timeout"
	ErrKindCancelled  ErrKind = "cancelled"
	ErrKindDNS        ErrKind = "dns failure"
	ErrKindConnection ErrKind = "connection failure"
	ErrKindTLS        ErrKind = "tls verification failure"
	ErrKindBadRequest ErrKind = "malformed request"
)

// TransportError wraps a network failure with its retry class.
type TransportError struct {
	Kind ErrKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transient reports whether the executor may retry this failure.
func (e *TransportError) Transient() bool {
	switch e.Kind {
	case ErrKindTimeout, ErrKindConnection:
		return true
	case ErrKindDNS:
		var dnsErr *net.DNSError
		if errors.As(e.Err, &dnsErr) {
			return dnsErr.IsTemporary || dnsErr.IsTimeout
		}
		return false
	default:
		return false
	}
}

func classifyTransportError(ctx context.Context, err error) *TransportError {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return &TransportError{Kind: ErrKindCancelled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &TransportError{Kind: ErrKindTimeout, Err: err}
	}
	var certErr *x509.UnknownAuthorityError
	var hostErr *x509.HostnameError
	var invErr *x509.CertificateInvalidError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) || errors.As(err, &invErr) {
		return &TransportError{Kind: ErrKindTLS, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Kind: ErrKindDNS, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: ErrKindTimeout, Err: err}
	}
	return &TransportError{Kind: ErrKindConnection, Err: err}
}
