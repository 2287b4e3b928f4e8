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
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

// TLSCertLookup reads the leaf certificate a domain serves on :443.
type TLSCertLookup struct {
	dialer   *net.Dialer
	deadline time.Duration
}

// TLSCertResult is the "tls_certificate" report section.
type TLSCertResult struct {
	Subject   string    `json:"subject"`
	Issuer    string    `json:"issuer"`
	DNSNames  []string  `json:"dns_names,omitempty"`
	NotBefore time.Time `json:"not_before"`
	NotAfter  time.Time `json:"not_after"`
	DaysLeft  int       `json:"days_left"`
}

func NewTLSCertLookup() *TLSCertLookup {
	return &TLSCertLookup{
		dialer:   &net.Dialer{Timeout: 5 * time.Second},
		deadline: defaultDeadline,
	}
}

func (t *TLSCertLookup) Name() string { return "tls_certificate" }

func (t *TLSCertLookup) Lookup(ctx context.Context, id probe.Identifier) (any, error) {
	if id.Kind != probe.KindDomain {
		return nil, fmt.Errorf("tls lookup needs a domain, got %s", id.Kind)
	}
	ctx, cancel := context.WithTimeout(ctx, t.deadline)
	defer cancel()

	rawConn, err := t.dialer.DialContext(ctx, "tcp", net.JoinHostPort(id.Value, "443"))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", id.Value, err)
	}
	defer rawConn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = rawConn.SetDeadline(deadline)
	}

	conn := tls.Client(rawConn, &tls.Config{ServerName: id.Value})
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("tls handshake with %s: %w", id.Value, err)
	}
	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("%s presented no certificate", id.Value)
	}
	leaf := certs[0]
	return TLSCertResult{
		Subject:   leaf.Subject.String(),
		Issuer:    leaf.Issuer.String(),
		DNSNames:  leaf.DNSNames,
		NotBefore: leaf.NotBefore,
		NotAfter:  leaf.NotAfter,
		DaysLeft:  int(time.Until(leaf.NotAfter).Hours() / 24),
	}, nil
}
