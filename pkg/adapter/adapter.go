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

// Package adapter implements the external single-endpoint lookups that
// attach to a scan report as named sections: breach database, phone
// carrier, IP geolocation, DNS, WHOIS, TLS certificate and security
// headers. Adapters are not part of the probe fan-out; each holds its
// own rate limit and deadline.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"
)

const defaultDeadline = 10 * time.Second

// client is the shared HTTP plumbing: pooled transport, per-service
// rate limit and per-lookup deadline.
type client struct {
	http     *http.Client
	limiter  *rate.Limiter
	deadline time.Duration
}

func newClient(requestsPerSecond float64, deadline time.Duration) *client {
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	return &client{
		http:     cleanhttp.DefaultPooledClient(),
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		deadline: deadline,
	}
}

// getJSON fetches a URL and decodes the JSON answer, honouring the
// adapter's rate limit and deadline.
func (c *client) getJSON(ctx context.Context, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("constructing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

var errNotFound = fmt.Errorf("not found")
