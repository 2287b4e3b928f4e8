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

// Package output renders scan reports. Renderers consume the report by
// its schema only and never call back into the engine.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/cimenkdev/cksearch/pkg/scan"
)

// WriteConsole renders the report as a terminal table.
func WriteConsole(w io.Writer, r *scan.Report) error {
	fmt.Fprintf(w, "Target: %s (%s), mode %s\n", r.Target.Value, r.Target.Kind, r.Mode)
	fmt.Fprintf(w, "Scanned %d probes in %s: %d present, %d absent, %d indeterminate, %d errors\n\n",
		r.Stats.Attempted, r.FinishedAt.Sub(r.StartedAt).Round(1e7),
		r.Stats.Present, r.Stats.Absent, r.Stats.Indeterminate, r.Stats.Error)

	if len(r.Hits) == 0 {
		fmt.Fprintln(w, "No confirmed accounts found.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PLATFORM\tCATEGORY\tURL")
		for _, h := range r.Hits {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Name, h.Category, h.URL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.Sections) > 0 {
		names := make([]string, 0, len(r.Sections))
		for name := range r.Sections {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "\n[%s]\n", name)
			raw, err := json.MarshalIndent(r.Sections[name], "", "  ")
			if err != nil {
				return fmt.Errorf("rendering section %s: %w", name, err)
			}
			fmt.Fprintln(w, string(raw))
		}
	}
	return nil
}

// WriteJSON renders the report in the stable JSON shape.
func WriteJSON(w io.Writer, r *scan.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
