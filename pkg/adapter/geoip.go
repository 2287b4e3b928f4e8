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
	"net"
	"net/url"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

const ipinfoBase = "https://ipinfo.io"

// GeoIPLookup resolves city/country/ASN for the A records of a domain
// via ipinfo.io.
type GeoIPLookup struct {
	c       *client
	baseURL string
	token   string
}

// GeoIPResult is the "geoip" report section, keyed by address.
type GeoIPResult struct {
	Addresses map[string]GeoIPEntry `json:"addresses"`
}

type GeoIPEntry struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
	Org     string `json:"org,omitempty"`
	Loc     string `json:"loc,omitempty"`
}

func NewGeoIPLookup(token string) *GeoIPLookup {
	return &GeoIPLookup{c: newClient(10, defaultDeadline), baseURL: ipinfoBase, token: token}
}

func (g *GeoIPLookup) Name() string { return "geoip" }

func (g *GeoIPLookup) Lookup(ctx context.Context, id probe.Identifier) (any, error) {
	if id.Kind != probe.KindDomain {
		return nil, fmt.Errorf("geoip lookup needs a domain, got %s", id.Kind)
	}
	addrs, err := net.DefaultResolver.LookupHost(ctx, id.Value)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id.Value, err)
	}
	result := GeoIPResult{Addresses: map[string]GeoIPEntry{}}
	for _, addr := range addrs {
		u := g.baseURL + "/" + url.PathEscape(addr) + "/json"
		if g.token != "" {
			u += "?token=" + url.QueryEscape(g.token)
		}
		var entry GeoIPEntry
		if err := g.c.getJSON(ctx, u, &entry); err != nil {
			return nil, fmt.Errorf("ipinfo %s: %w", addr, err)
		}
		result.Addresses[addr] = entry
	}
	return result, nil
}
