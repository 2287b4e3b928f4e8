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

package probe

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
)

// Registry is the single source of truth for probes. It is built once,
// refuses duplicate or malformed entries, and is read-only afterwards,
// so workers share it without synchronisation.
type Registry struct {
	probes []Probe
	byID   map[string]int // registry position, which is also report order
}

// Builder accumulates probes and ingest errors; Build reports them all
// at once instead of stopping at the first bad entry.
type Builder struct {
	probes []Probe
	byID   map[string]int
	errs   *multierror.Error
}

func NewBuilder() *Builder {
	return &Builder{byID: map[string]int{}}
}

// Add appends a probe in declared order. A duplicate id with an
// identical definition is merged silently (the source catalogues
// overlap); a duplicate with a conflicting rule is an ingest error.
func (b *Builder) Add(p Probe) *Builder {
	if err := p.validate(); err != nil {
		b.errs = multierror.Append(b.errs, err)
		return b
	}
	if pos, ok := b.byID[p.ID]; ok {
		if !reflect.DeepEqual(b.probes[pos], p) {
			b.errs = multierror.Append(b.errs, fmt.Errorf("probe %s: conflicting definitions", p.ID))
		}
		return b
	}
	b.byID[p.ID] = len(b.probes)
	b.probes = append(b.probes, p)
	return b
}

func (b *Builder) Build() (*Registry, error) {
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("building probe registry: %w", err)
	}
	return &Registry{probes: b.probes, byID: b.byID}, nil
}

// Selection filters the probe subset beyond kind and tier.
type Selection struct {
	IncludeCategories []string
	ExcludeCategories []string
	IncludeNSFW       bool
}

// Select returns the probes for an identifier kind and mode in registry
// order. Mode quick keeps tier-quick probes only; deep keeps all.
func (r *Registry) Select(kind Kind, mode Tier, sel Selection) []Probe {
	include := map[string]bool{}
	for _, c := range sel.IncludeCategories {
		include[c] = true
	}
	exclude := map[string]bool{}
	for _, c := range sel.ExcludeCategories {
		exclude[c] = true
	}

	var out []Probe
	for _, p := range r.probes {
		if p.Kind != kind {
			continue
		}
		if mode == TierQuick && p.Tier != TierQuick {
			continue
		}
		if p.NSFW && !sel.IncludeNSFW {
			continue
		}
		if len(include) > 0 && !include[p.Category] {
			continue
		}
		if exclude[p.Category] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Lookup returns the probe for an id.
func (r *Registry) Lookup(id string) (Probe, bool) {
	pos, ok := r.byID[id]
	if !ok {
		return Probe{}, false
	}
	return r.probes[pos], true
}

// Position returns the registry position of a probe id. Reports sort
// hits by it so the user-visible order is stable across scans.
func (r *Registry) Position(id string) (int, bool) {
	pos, ok := r.byID[id]
	return pos, ok
}

// Len returns the number of registered probes.
func (r *Registry) Len() int { return len(r.probes) }
