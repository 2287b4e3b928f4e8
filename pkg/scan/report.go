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
	"time"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

// Outcome is the classification of one dispatched probe. Exactly one is
// produced per selected probe, cancellation included.
type Outcome struct {
	ProbeID    string      `json:"probe_id"`
	State      probe.State `json:"state"`
	FinalURL   string      `json:"final_url,omitempty"`
	LatencyMS  int64       `json:"latency_ms"`
	Diagnostic string      `json:"diagnostic,omitempty"`
	Attempts   int         `json:"attempts"`
}

// Hit is a present outcome enriched with its probe's display fields.
type Hit struct {
	ProbeID  string `json:"probe_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// Stats are the aggregate counters of one scan.
type Stats struct {
	Attempted     int `json:"attempted"`
	Present       int `json:"present"`
	Error         int `json:"error"`
	Absent        int `json:"absent"`
	Indeterminate int `json:"indeterminate"`
}

// SectionError is the degraded form an adapter section takes when its
// lookup failed. The scan itself is unaffected.
type SectionError struct {
	Error string `json:"error"`
}

// Report is the aggregated output of one scan. Hits are ordered by
// registry position so the report is deterministic regardless of
// completion order.
type Report struct {
	ID         string           `json:"scan_id"`
	Target     probe.Identifier `json:"target"`
	Mode       probe.Tier       `json:"mode"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Stats      Stats            `json:"stats"`
	Hits       []Hit            `json:"hits"`
	ByCategory map[string][]Hit `json:"by_category"`
	Sections   map[string]any   `json:"sections,omitempty"`

	// Outcomes retains every classification for metrics and debugging;
	// it is not part of the stable report schema.
	Outcomes []Outcome `json:"-"`
}
