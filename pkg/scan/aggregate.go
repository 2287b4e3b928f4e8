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

package scan

import (
	"sort"
	"strings"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

// Aggregator collects the outcome stream of one scan. It is the single
// consumer of the executor's channel and is never touched by workers.
type Aggregator struct {
	reg      *probe.Registry
	stats    Stats
	outcomes []Outcome
}

func NewAggregator(reg *probe.Registry) *Aggregator {
	return &Aggregator{reg: reg}
}

// Consume records one outcome in arrival order.
func (a *Aggregator) Consume(o Outcome) {
	a.stats.Attempted++
	switch o.State {
	case probe.StatePresent:
		a.stats.Present++
	case probe.StateAbsent:
		a.stats.Absent++
	case probe.StateIndeterminate:
		a.stats.Indeterminate++
	default:
		a.stats.Error++
	}
	a.outcomes = append(a.outcomes, o)
}

// canonicalURL folds case and a trailing slash so mirrored probes that
// redirect to the same resource collapse into one hit.
func canonicalURL(u string) string {
	return strings.TrimSuffix(strings.ToLower(u), "/")
}

// Finalize orders the present outcomes by registry position, collapses
// duplicates by canonical final URL (keeping the earlier probe), and
// fills the report's hits, grouping and stats.
func (a *Aggregator) Finalize(report *Report) {
	type positioned struct {
		pos int
		out Outcome
	}
	var present []positioned
	for _, o := range a.outcomes {
		if o.State != probe.StatePresent {
			continue
		}
		pos, ok := a.reg.Position(o.ProbeID)
		if !ok {
			// Outcomes always reference a registered probe; treat a
			// miss as a bug rather than dropping it silently.
			pos = a.reg.Len() + len(present)
		}
		present = append(present, positioned{pos: pos, out: o})
	}
	sort.Slice(present, func(i, j int) bool { return present[i].pos < present[j].pos })

	seen := map[string]bool{}
	hits := make([]Hit, 0, len(present))
	byCategory := map[string][]Hit{}
	for _, pc := range present {
		key := canonicalURL(pc.out.FinalURL)
		if key != "" && seen[key] {
			a.stats.Present--
			continue
		}
		seen[key] = true

		p, _ := a.reg.Lookup(pc.out.ProbeID)
		hit := Hit{
			ProbeID:  pc.out.ProbeID,
			Name:     p.DisplayName,
			Category: p.Category,
			URL:      pc.out.FinalURL,
		}
		hits = append(hits, hit)
		byCategory[p.Category] = append(byCategory[p.Category], hit)
	}

	report.Stats = a.stats
	report.Hits = hits
	report.ByCategory = byCategory
	report.Outcomes = a.outcomes
}
