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
	"os"

	"gopkg.in/yaml.v3"
)

// overlayProbe is the YAML form of a probe. Overlay files let operators
// extend the built-in catalogue without a rebuild.
type overlayProbe struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Kind     Kind              `yaml:"kind"`
	Category string            `yaml:"category"`
	URL      string            `yaml:"url"`
	Method   string            `yaml:"method"`
	Body     string            `yaml:"body"`
	Headers  map[string]string `yaml:"headers"`
	Tier     Tier              `yaml:"tier"`
	NSFW     bool              `yaml:"nsfw"`
	Rule     overlayRule       `yaml:"rule"`
}

type overlayRule struct {
	Type           string   `yaml:"type"`
	ExpectedStatus int      `yaml:"expected_status"`
	NotFound       []string `yaml:"not_found"`
	MustExist      []string `yaml:"must_exist"`
	Pointer        string   `yaml:"pointer"`
	Expected       any      `yaml:"expected"`
	Sentinels      []any    `yaml:"sentinels"`
}

type overlayFile struct {
	Probes []overlayProbe `yaml:"probes"`
}

func (o overlayRule) build() (Rule, error) {
	switch o.Type {
	case "status_exists":
		return StatusExists{ExpectedStatus: o.ExpectedStatus}, nil
	case "content_absent":
		return ContentAbsent{NotFound: o.NotFound}, nil
	case "content_present":
		return ContentPresent{MustExist: o.MustExist}, nil
	case "json_field_equals":
		return JSONFieldEquals{Pointer: o.Pointer, Expected: o.Expected}, nil
	case "json_field_truthy":
		return JSONFieldTruthy{Pointer: o.Pointer}, nil
	case "json_field_absent":
		return JSONFieldAbsent{Pointer: o.Pointer, Sentinels: o.Sentinels}, nil
	default:
		return nil, fmt.Errorf("unknown rule type %q", o.Type)
	}
}

// AddOverlayFile ingests a YAML probe overlay into the builder.
func (b *Builder) AddOverlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading probe overlay: %w", err)
	}
	var f overlayFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parsing probe overlay %s: %w", path, err)
	}
	for _, op := range f.Probes {
		rule, err := op.Rule.build()
		if err != nil {
			return fmt.Errorf("probe overlay %s: probe %s: %w", path, op.ID, err)
		}
		method := op.Method
		if method == "" {
			method = "GET"
		}
		tier := op.Tier
		if tier == "" {
			tier = TierDeep
		}
		b.Add(Probe{
			ID:           op.ID,
			DisplayName:  op.Name,
			Kind:         op.Kind,
			Category:     op.Category,
			URLTemplate:  op.URL,
			Method:       method,
			BodyTemplate: op.Body,
			Headers:      op.Headers,
			Rule:         rule,
			Tier:         tier,
			NSFW:         op.NSFW,
		})
	}
	return nil
}
