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
	"net/url"
	"strings"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

const numverifyBase = "http://apilayer.net/api"

// CarrierLookup resolves carrier, line type and country for a phone
// number via the Numverify API. The free tier is strictly metered, so
// the limiter stays at one request per second.
type CarrierLookup struct {
	c       *client
	baseURL string
	apiKey  string
}

// CarrierResult is the "carrier" report section.
type CarrierResult struct {
	Valid    bool   `json:"valid"`
	Carrier  string `json:"carrier,omitempty"`
	LineType string `json:"line_type,omitempty"`
	Country  string `json:"country,omitempty"`
	Location string `json:"location,omitempty"`
}

func NewCarrierLookup(apiKey string) *CarrierLookup {
	return &CarrierLookup{c: newClient(1, defaultDeadline), baseURL: numverifyBase, apiKey: apiKey}
}

func (c *CarrierLookup) Name() string { return "carrier" }

func (c *CarrierLookup) Lookup(ctx context.Context, id probe.Identifier) (any, error) {
	if id.Kind != probe.KindPhone {
		return nil, fmt.Errorf("carrier lookup needs a phone number, got %s", id.Kind)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("no numverify API key configured")
	}
	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("number", strings.TrimPrefix(id.Value, "+"))
	var resp struct {
		Valid       bool   `json:"valid"`
		Carrier     string `json:"carrier"`
		LineType    string `json:"line_type"`
		CountryName string `json:"country_name"`
		Location    string `json:"location"`
		Error       *struct {
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := c.c.getJSON(ctx, c.baseURL+"/validate?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("numverify: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("numverify: %s", resp.Error.Info)
	}
	return CarrierResult{
		Valid:    resp.Valid,
		Carrier:  resp.Carrier,
		LineType: resp.LineType,
		Country:  resp.CountryName,
		Location: resp.Location,
	}, nil
}
