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
	"errors"
	"fmt"
	"net/url"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

const xposedOrNotBase = "https://api.xposedornot.com/v1"

// BreachLookup checks an email address against the XposedOrNot breach
// index. The free API allows roughly one request per second.
type BreachLookup struct {
	c       *client
	baseURL string
}

// BreachResult is the "breaches" report section.
type BreachResult struct {
	Found    bool     `json:"found"`
	Breaches []string `json:"breaches,omitempty"`
}

func NewBreachLookup() *BreachLookup {
	return &BreachLookup{c: newClient(1, defaultDeadline), baseURL: xposedOrNotBase}
}

func (b *BreachLookup) Name() string { return "breaches" }

func (b *BreachLookup) Lookup(ctx context.Context, id probe.Identifier) (any, error) {
	if id.Kind != probe.KindEmail {
		return nil, fmt.Errorf("breach lookup needs an email, got %s", id.Kind)
	}
	var resp struct {
		Breaches [][]string `json:"breaches"`
	}
	err := b.c.getJSON(ctx, b.baseURL+"/check-email/"+url.PathEscape(id.Value), &resp)
	if errors.Is(err, errNotFound) {
		// The API answers 404 for addresses absent from the index.
		return BreachResult{Found: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xposedornot: %w", err)
	}
	var names []string
	for _, group := range resp.Breaches {
		names = append(names, group...)
	}
	return BreachResult{Found: len(names) > 0, Breaches: names}, nil
}
