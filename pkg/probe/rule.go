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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// State is the classification of one probe response.
type State string

const (
	StatePresent       State = "present"
	StateAbsent        State = "absent"
	StateIndeterminate State = "indeterminate"
	StateError         State = "error"
)

// Response is the transport result a rule classifies. Rules are pure:
// the same response and rule always yield the same state.
type Response struct {
	StatusCode int
	FinalURL   string
	Header     http.Header
	Body       []byte
}

// Rule maps a response to present/absent/indeterminate. The alphabet is
// closed: a site whose behaviour fits no variant needs a new variant
// here, not a bespoke check function.
type Rule interface {
	// Classify returns the state and, for indeterminate, a short
	// diagnostic naming the failed precondition.
	Classify(r *Response) (State, string)
	isRule()
}

// Final URLs that generic sites redirect missing profiles to.
var errorURLFragments = []string{"/404", "/error", "/notfound"}

func redirectedToErrorPage(finalURL string) bool {
	lower := strings.ToLower(finalURL)
	for _, frag := range errorURLFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// StatusExists marks the identifier present when the endpoint answers
// with the expected status (default 200) and did not land on a generic
// error page. For sites that return 404 on missing accounts.
type StatusExists struct {
	ExpectedStatus int
}

func (StatusExists) isRule() {}

func (s StatusExists) Classify(r *Response) (State, string) {
	want := s.ExpectedStatus
	if want == 0 {
		want = http.StatusOK
	}
	if r.StatusCode != want {
		return StateAbsent, ""
	}
	if redirectedToErrorPage(r.FinalURL) {
		return StateAbsent, ""
	}
	return StatePresent, ""
}

// ContentAbsent marks the identifier present when none of the not-found
// substrings occur in a 200 body. For sites that serve an error page
// with status 200.
type ContentAbsent struct {
	NotFound []string
}

func (ContentAbsent) isRule() {}

func (c ContentAbsent) Classify(r *Response) (State, string) {
	if r.StatusCode != http.StatusOK {
		return StateIndeterminate, fmt.Sprintf("expected status 200, got %d", r.StatusCode)
	}
	body := strings.ToLower(string(r.Body))
	for _, pat := range c.NotFound {
		if strings.Contains(body, strings.ToLower(pat)) {
			return StateAbsent, ""
		}
	}
	return StatePresent, ""
}

// ContentPresent marks the identifier present when at least one
// must-exist substring occurs in a 200 body. For sites that render a
// generic page on miss and a specific one on hit.
type ContentPresent struct {
	MustExist []string
}

func (ContentPresent) isRule() {}

func (c ContentPresent) Classify(r *Response) (State, string) {
	if r.StatusCode != http.StatusOK {
		return StateIndeterminate, fmt.Sprintf("expected status 200, got %d", r.StatusCode)
	}
	body := strings.ToLower(string(r.Body))
	for _, pat := range c.MustExist {
		if strings.Contains(body, strings.ToLower(pat)) {
			return StatePresent, ""
		}
	}
	return StateAbsent, ""
}

// JSONFieldEquals marks the identifier present when the field at the
// JSON pointer equals the expected value, e.g. "taken": true or
// "status": 20.
type JSONFieldEquals struct {
	Pointer  string
	Expected any
}

func (JSONFieldEquals) isRule() {}

func (j JSONFieldEquals) Classify(r *Response) (State, string) {
	v, found, diag := evalPointer(r.Body, j.Pointer)
	if diag != "" {
		return StateIndeterminate, diag
	}
	if found && jsonEqual(v, j.Expected) {
		return StatePresent, ""
	}
	return StateAbsent, ""
}

// JSONFieldTruthy marks the identifier present when the field at the
// JSON pointer exists and is truthy.
type JSONFieldTruthy struct {
	Pointer string
}

func (JSONFieldTruthy) isRule() {}

func (j JSONFieldTruthy) Classify(r *Response) (State, string) {
	v, found, diag := evalPointer(r.Body, j.Pointer)
	if diag != "" {
		return StateIndeterminate, diag
	}
	if found && truthy(v) {
		return StatePresent, ""
	}
	return StateAbsent, ""
}

// JSONFieldAbsent marks the identifier present when the field at the
// JSON pointer is missing or equals one of the sentinel values.
type JSONFieldAbsent struct {
	Pointer   string
	Sentinels []any
}

func (JSONFieldAbsent) isRule() {}

func (j JSONFieldAbsent) Classify(r *Response) (State, string) {
	v, found, diag := evalPointer(r.Body, j.Pointer)
	if diag != "" {
		return StateIndeterminate, diag
	}
	if !found {
		return StatePresent, ""
	}
	for _, s := range j.Sentinels {
		if jsonEqual(v, s) {
			return StatePresent, ""
		}
	}
	return StateAbsent, ""
}

// evalPointer walks an RFC 6901 JSON pointer through the decoded body.
// The second return reports whether the field exists; a non-empty third
// return means the body was not usable JSON.
func evalPointer(body []byte, pointer string) (any, bool, string) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false, "body is not valid JSON"
	}
	if pointer == "" {
		return doc, true, ""
	}
	cur := doc
	for _, raw := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		key := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false, ""
		}
		next, ok := obj[key]
		if !ok {
			return nil, false, ""
		}
		cur = next
	}
	return cur, true, ""
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "false" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// jsonEqual compares a decoded JSON value with an expected Go literal,
// tolerating the int-vs-float64 mismatch of encoding/json.
func jsonEqual(got, want any) bool {
	switch w := want.(type) {
	case int:
		f, ok := got.(float64)
		return ok && f == float64(w)
	case float64:
		f, ok := got.(float64)
		return ok && f == w
	case string:
		s, ok := got.(string)
		return ok && s == w
	case bool:
		b, ok := got.(bool)
		return ok && b == w
	case nil:
		return got == nil
	default:
		return false
	}
}
