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
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

// DNSLookup queries A/AAAA/MX/NS/TXT records for a domain.
type DNSLookup struct {
	client   *dns.Client
	server   string
	deadline time.Duration
}

// DNSResult is the "dns" report section.
type DNSResult struct {
	A    []string `json:"a,omitempty"`
	AAAA []string `json:"aaaa,omitempty"`
	MX   []string `json:"mx,omitempty"`
	NS   []string `json:"ns,omitempty"`
	TXT  []string `json:"txt,omitempty"`
}

// NewDNSLookup builds the adapter. An empty server uses the system
// resolver from /etc/resolv.conf, falling back to a public one.
func NewDNSLookup(server string) *DNSLookup {
	if server == "" {
		server = "1.1.1.1:53"
		if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
			server = conf.Servers[0] + ":" + conf.Port
		}
	}
	return &DNSLookup{
		client:   &dns.Client{Timeout: 5 * time.Second},
		server:   server,
		deadline: defaultDeadline,
	}
}

func (d *DNSLookup) Name() string { return "dns" }

func (d *DNSLookup) Lookup(ctx context.Context, id probe.Identifier) (any, error) {
	if id.Kind != probe.KindDomain {
		return nil, fmt.Errorf("dns lookup needs a domain, got %s", id.Kind)
	}
	ctx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	fqdn := dns.Fqdn(id.Value)
	var result DNSResult
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeMX, dns.TypeNS, dns.TypeTXT} {
		rrs, err := d.query(ctx, fqdn, qtype)
		if err != nil {
			return nil, fmt.Errorf("querying %s %s: %w", dns.TypeToString[qtype], id.Value, err)
		}
		for _, rr := range rrs {
			switch t := rr.(type) {
			case *dns.A:
				result.A = append(result.A, t.A.String())
			case *dns.AAAA:
				result.AAAA = append(result.AAAA, t.AAAA.String())
			case *dns.MX:
				result.MX = append(result.MX, fmt.Sprintf("%d %s", t.Preference, strings.TrimSuffix(t.Mx, ".")))
			case *dns.NS:
				result.NS = append(result.NS, strings.TrimSuffix(t.Ns, "."))
			case *dns.TXT:
				result.TXT = append(result.TXT, strings.Join(t.Txt, ""))
			}
		}
	}
	return result, nil
}

func (d *DNSLookup) query(ctx context.Context, fqdn string, qtype uint16) ([]dns.RR, error) {
	m := new(dns.Msg)
	m.SetQuestion(fqdn, qtype)
	m.RecursionDesired = true
	resp, _, err := d.client.ExchangeContext(ctx, m, d.server)
	if err != nil {
		return nil, err
	}
	if resp.Rcode == dns.RcodeNameError {
		return nil, nil
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("rcode %s", dns.RcodeToString[resp.Rcode])
	}
	return resp.Answer, nil
}
