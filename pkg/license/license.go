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

// Package license gates scans through the licence backend: a pre-scan
// permit call and a post-scan usage record. The backend's store is not
// our concern; the client only speaks its HTTP API.
package license

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/cimenkdev/cksearch/pkg/fingerprint"
	"github.com/cimenkdev/cksearch/pkg/probe"
)

const (
	defaultBaseURL = "https://api.cimeng.web.id"
	clientTimeout  = 10 * time.Second
)

// ErrDenied reports a refused scan with the backend's reason.
var ErrDenied = errors.New("denied by licence gateway")

// Client talks to the licence backend. It caches the last successful
// validation so a flaky backend degrades to a grace period instead of
// blocking quick scans.
type Client struct {
	baseURL     string
	http        *http.Client
	logger      log.Logger
	fingerprint string
	version     string

	mu     sync.Mutex
	cached *validateResponse
}

type validateResponse struct {
	Success            bool   `json:"success"`
	Tier               string `json:"tier"`
	RemainingRequests  int    `json:"remaining_requests"`
	DailyLimit         int    `json:"daily_limit"`
	IsBanned           bool   `json:"is_banned"`
	BanReason          string `json:"ban_reason"`
	MaintenanceMode    bool   `json:"maintenance_mode"`
	MaintenanceMessage string `json:"maintenance_message"`
}

// New builds a client. An empty baseURL uses the production backend.
func New(baseURL, version string, logger log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Client{
		baseURL:     baseURL,
		http:        cleanhttp.DefaultClient(),
		logger:      logger,
		fingerprint: fingerprint.Generate(),
		version:     version,
	}
}

// Permit validates the device before a scan. Deep mode needs a paid
// tier; when the backend is unreachable the cached validation is used,
// and with no cache quick scans are allowed offline while deep is not.
func (c *Client) Permit(ctx context.Context, kind probe.Kind, mode probe.Tier) error {
	v, err := c.validate(ctx)
	if err != nil {
		_ = level.Warn(c.logger).Log("msg", "licence backend unreachable", "err", err)
		c.mu.Lock()
		v = c.cached
		c.mu.Unlock()
		if v == nil {
			if mode == probe.TierDeep {
				return fmt.Errorf("%w: deep mode requires a reachable licence backend", ErrDenied)
			}
			return nil
		}
	}
	switch {
	case v.MaintenanceMode:
		return fmt.Errorf("%w: maintenance: %s", ErrDenied, v.MaintenanceMessage)
	case v.IsBanned:
		return fmt.Errorf("%w: banned: %s", ErrDenied, v.BanReason)
	case !v.Success:
		return fmt.Errorf("%w: validation rejected", ErrDenied)
	case v.RemainingRequests <= 0:
		return fmt.Errorf("%w: daily limit of %d requests reached", ErrDenied, v.DailyLimit)
	case mode == probe.TierDeep && v.Tier == "free":
		return fmt.Errorf("%w: deep mode requires a premium tier", ErrDenied)
	}
	return nil
}

// Record reports scan usage. Failures are logged, never surfaced; a
// scan result is not discarded over telemetry.
func (c *Client) Record(ctx context.Context, kind probe.Kind, success bool) {
	body := map[string]any{
		"fingerprint": c.fingerprint,
		"module":      string(kind),
		"success":     success,
		"version":     c.version,
	}
	if err := c.post(ctx, "/api/v1/telemetry", body, nil); err != nil {
		_ = level.Debug(c.logger).Log("msg", "telemetry post failed", "err", err)
	}
}

func (c *Client) validate(ctx context.Context) (*validateResponse, error) {
	body := map[string]any{
		"fingerprint": c.fingerprint,
		"version":     c.version,
		"device_info": fingerprint.Info(),
	}
	var v validateResponse
	if err := c.post(ctx, "/api/v1/validate", body, &v); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cached = &v
	c.mu.Unlock()
	return &v, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, clientTimeout)
	defer cancel()

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("constructing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s failed with status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	rawResp, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(rawResp, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
