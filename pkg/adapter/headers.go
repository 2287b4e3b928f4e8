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

package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

var securityHeaders = []string{
	"Content-Security-Policy",
	"Strict-Transport-Security",
	"X-Frame-Options",
	"X-Content-Type-Options",
	"Referrer-Policy",
	"Permissions-Policy",
}

// HeaderInspect reports which standard security headers a domain's
// front page sets.
type HeaderInspect struct {
	c *client
}

// HeaderResult is the "security_headers" report section.
type HeaderResult struct {
	Present map[string]string `json:"present"`
	Missing []string          `json:"missing"`
}

func NewHeaderInspect() *HeaderInspect {
	return &HeaderInspect{c: newClient(5, defaultDeadline)}
}

func (h *HeaderInspect) Name() string { return "security_headers" }

func (h *HeaderInspect) Lookup(ctx context.Context, id probe.Identifier) (any, error) {
	if id.Kind != probe.KindDomain {
		return nil, fmt.Errorf("header inspection needs a domain, got %s", id.Kind)
	}
	ctx, cancel := context.WithTimeout(ctx, h.c.deadline)
	defer cancel()

	if err := h.c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+id.Value+"/", nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", id.Value, err)
	}
	defer resp.Body.Close()

	result := HeaderResult{Present: map[string]string{}}
	for _, name := range securityHeaders {
		if v := resp.Header.Get(name); v != "" {
			result.Present[name] = v
		} else {
			result.Missing = append(result.Missing, name)
		}
	}
	return result, nil
}
