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

// Package probe defines the endpoint catalogue of the scan engine: probe
// descriptors, the closed decision-rule alphabet and the registry they
// live in. Probes are built once at startup and read-only afterwards.
package probe

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Tier governs quick/deep subset selection.
type Tier string

const (
	TierQuick Tier = "quick"
	TierDeep  Tier = "deep"
)

// Probe describes one reachable endpoint and how to read its answer.
type Probe struct {
	ID          string
	DisplayName string
	Kind        Kind
	Category    string
	// URLTemplate and BodyTemplate carry exactly one {} placeholder
	// between them: in the URL for GET probes, in either for POST.
	URLTemplate  string
	Method       string // GET or POST
	BodyTemplate string
	Headers      map[string]string
	Rule        Rule
	Tier        Tier
	NSFW        bool
	// MD5Value substitutes the md5 of the identifier instead of the
	// identifier itself (Gravatar-style avatar endpoints).
	MD5Value bool
}

// URL substitutes the identifier into the template, escaped for the
// component the placeholder sits in: query-escaped after a "?" (so a
// "+" in an E.164 number survives the round trip), path-escaped
// otherwise (so a crafted target cannot break out of its segment).
func (p *Probe) URL(id Identifier) string {
	idx := strings.Index(p.URLTemplate, "{}")
	if idx < 0 {
		return p.URLTemplate
	}
	v := p.substituted(id)
	if q := strings.Index(p.URLTemplate, "?"); q >= 0 && q < idx {
		v = url.QueryEscape(v)
	} else {
		v = url.PathEscape(v)
	}
	return p.URLTemplate[:idx] + v + p.URLTemplate[idx+2:]
}

// Body substitutes the identifier into the POST body template.
func (p *Probe) Body(id Identifier) string {
	if p.BodyTemplate == "" {
		return ""
	}
	return strings.Replace(p.BodyTemplate, "{}", p.substituted(id), 1)
}

func (p *Probe) substituted(id Identifier) string {
	if p.MD5Value {
		sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(id.Value))))
		return hex.EncodeToString(sum[:])
	}
	return id.Value
}

// Host returns the endpoint host the pacer keys on.
func (p *Probe) Host() (string, error) {
	u, err := url.Parse(strings.Replace(p.URLTemplate, "{}", "x", 1))
	if err != nil {
		return "", fmt.Errorf("probe %s: parsing url template: %w", p.ID, err)
	}
	return u.Host, nil
}

func (p *Probe) validate() error {
	if p.ID == "" {
		return fmt.Errorf("probe with empty id")
	}
	urlCount := strings.Count(p.URLTemplate, "{}")
	bodyCount := strings.Count(p.BodyTemplate, "{}")
	switch p.Method {
	case "", "GET":
		if urlCount != 1 || bodyCount != 0 {
			return fmt.Errorf("probe %s: GET probes need exactly one {} placeholder, in the url template", p.ID)
		}
	case "POST":
		if urlCount+bodyCount != 1 {
			return fmt.Errorf("probe %s: POST probes need exactly one {} placeholder across url and body templates", p.ID)
		}
	default:
		return fmt.Errorf("probe %s: unsupported method %q", p.ID, p.Method)
	}
	if p.Rule == nil {
		return fmt.Errorf("probe %s: missing decision rule", p.ID)
	}
	if _, err := p.Host(); err != nil {
		return err
	}
	return nil
}
