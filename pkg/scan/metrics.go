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
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the probe engine. All outcomes are counted, not
// just the present ones that reach the user-facing report.
type Metrics struct {
	outcomes        *prometheus.CounterVec
	retries         prometheus.Counter
	inFlight        prometheus.Gauge
	requestDuration prometheus.Histogram
}

// NewMetrics registers the scan engine metrics. A nil registerer yields
// unregistered (but usable) collectors for library callers.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cksearch_probe_outcomes_total",
			Help: "Classified probe outcomes by state.",
		}, []string{"state"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cksearch_probe_retries_total",
			Help: "Transient transport failures that were retried.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cksearch_probe_in_flight",
			Help: "Probe requests currently in flight.",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cksearch_probe_request_duration_seconds",
			Help:    "Per-attempt probe request latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes, m.retries, m.inFlight, m.requestDuration)
	}
	return m
}
