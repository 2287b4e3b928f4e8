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
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

const (
	ianaWhois     = "whois.iana.org:43"
	maxWhoisBytes = 64 << 10
)

// WhoisLookup performs a WHOIS query with one referral hop: IANA names
// the TLD's registry server, which answers for the domain.
type WhoisLookup struct {
	dialer   *net.Dialer
	deadline time.Duration
}

// WhoisResult is the "whois" report section.
type WhoisResult struct {
	Server string `json:"server"`
	Raw    string `json:"raw"`
}

func NewWhoisLookup() *WhoisLookup {
	return &WhoisLookup{
		dialer:   &net.Dialer{Timeout: 5 * time.Second},
		deadline: defaultDeadline,
	}
}

func (w *WhoisLookup) Name() string { return "whois" }

func (w *WhoisLookup) Lookup(ctx context.Context, id probe.Identifier) (any, error) {
	if id.Kind != probe.KindDomain {
		return nil, fmt.Errorf("whois lookup needs a domain, got %s", id.Kind)
	}
	ctx, cancel := context.WithTimeout(ctx, w.deadline)
	defer cancel()

	ianaAnswer, err := w.query(ctx, ianaWhois, id.Value)
	if err != nil {
		return nil, fmt.Errorf("querying iana: %w", err)
	}
	server := referralServer(ianaAnswer)
	if server == "" {
		return WhoisResult{Server: ianaWhois, Raw: ianaAnswer}, nil
	}
	answer, err := w.query(ctx, server+":43", id.Value)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", server, err)
	}
	return WhoisResult{Server: server, Raw: answer}, nil
}

func (w *WhoisLookup) query(ctx context.Context, addr, domain string) (string, error) {
	conn, err := w.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := fmt.Fprintf(conn, "%s\r\n", domain); err != nil {
		return "", err
	}
	raw, err := io.ReadAll(io.LimitReader(conn, maxWhoisBytes))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func referralServer(answer string) string {
	sc := bufio.NewScanner(strings.NewReader(answer))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, "refer:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
