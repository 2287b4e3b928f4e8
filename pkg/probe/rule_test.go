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
	"net/http"
	"testing"
)

func TestRuleClassify(t *testing.T) {
	cases := []struct {
		name     string
		rule     Rule
		resp     *Response
		want     State
		wantDiag bool
	}{
		{
			name: "status exists hit",
			rule: StatusExists{},
			resp: &Response{StatusCode: 200, FinalURL: "https://github.com/octocat"},
			want: StatePresent,
		},
		{
			name: "status exists miss on 404",
			rule: StatusExists{},
			resp: &Response{StatusCode: 404, FinalURL: "https://github.com/nobody"},
			want: StateAbsent,
		},
		{
			name: "status exists redirect to error page",
			rule: StatusExists{},
			resp: &Response{StatusCode: 200, FinalURL: "https://example.com/404"},
			want: StateAbsent,
		},
		{
			name: "status exists custom expected status",
			rule: StatusExists{ExpectedStatus: 302},
			resp: &Response{StatusCode: 302, FinalURL: "https://example.com/u/x"},
			want: StatePresent,
		},
		{
			name: "content absent hit",
			rule: ContentAbsent{NotFound: []string{"not found"}},
			resp: &Response{StatusCode: 200, Body: []byte("<html>octocat's profile</html>")},
			want: StatePresent,
		},
		{
			name: "content absent miss is case insensitive",
			rule: ContentAbsent{NotFound: []string{"Not Found"}},
			resp: &Response{StatusCode: 200, Body: []byte("<html>page NOT FOUND</html>")},
			want: StateAbsent,
		},
		{
			name:     "content absent non-200 is indeterminate",
			rule:     ContentAbsent{NotFound: []string{"not found"}},
			resp:     &Response{StatusCode: 403, Body: []byte("forbidden")},
			want:     StateIndeterminate,
			wantDiag: true,
		},
		{
			name: "content present hit",
			rule: ContentPresent{MustExist: []string{"Public Playlists"}},
			resp: &Response{StatusCode: 200, Body: []byte("user has public playlists here")},
			want: StatePresent,
		},
		{
			name: "content present miss",
			rule: ContentPresent{MustExist: []string{"Public Playlists"}},
			resp: &Response{StatusCode: 200, Body: []byte("generic landing page")},
			want: StateAbsent,
		},
		{
			name: "json field equals bool",
			rule: JSONFieldEquals{Pointer: "/taken", Expected: true},
			resp: &Response{StatusCode: 200, Body: []byte(`{"valid":true,"taken":true}`)},
			want: StatePresent,
		},
		{
			name: "json field equals int against float64 decode",
			rule: JSONFieldEquals{Pointer: "/status", Expected: 20},
			resp: &Response{StatusCode: 200, Body: []byte(`{"status":20}`)},
			want: StatePresent,
		},
		{
			name: "json field equals mismatch",
			rule: JSONFieldEquals{Pointer: "/status", Expected: 20},
			resp: &Response{StatusCode: 200, Body: []byte(`{"status":1}`)},
			want: StateAbsent,
		},
		{
			name: "json field equals nested pointer",
			rule: JSONFieldEquals{Pointer: "/data/user/exists", Expected: true},
			resp: &Response{StatusCode: 200, Body: []byte(`{"data":{"user":{"exists":true}}}`)},
			want: StatePresent,
		},
		{
			name:     "json rule on non-json body is indeterminate",
			rule:     JSONFieldEquals{Pointer: "/taken", Expected: true},
			resp:     &Response{StatusCode: 200, Body: []byte("<html>rate limited</html>")},
			want:     StateIndeterminate,
			wantDiag: true,
		},
		{
			name: "json field truthy on non-empty array",
			rule: JSONFieldTruthy{Pointer: "/suggestions"},
			resp: &Response{StatusCode: 200, Body: []byte(`{"suggestions":["a","b"]}`)},
			want: StatePresent,
		},
		{
			name: "json field truthy on empty array",
			rule: JSONFieldTruthy{Pointer: "/suggestions"},
			resp: &Response{StatusCode: 200, Body: []byte(`{"suggestions":[]}`)},
			want: StateAbsent,
		},
		{
			name: "json field truthy on missing field",
			rule: JSONFieldTruthy{Pointer: "/suggestions"},
			resp: &Response{StatusCode: 200, Body: []byte(`{}`)},
			want: StateAbsent,
		},
		{
			name: "json field absent when missing",
			rule: JSONFieldAbsent{Pointer: "/error"},
			resp: &Response{StatusCode: 200, Body: []byte(`{"ok":true}`)},
			want: StatePresent,
		},
		{
			name: "json field absent sentinel match",
			rule: JSONFieldAbsent{Pointer: "/error", Sentinels: []any{nil}},
			resp: &Response{StatusCode: 200, Body: []byte(`{"error":null}`)},
			want: StatePresent,
		},
		{
			name: "json field absent when set",
			rule: JSONFieldAbsent{Pointer: "/error"},
			resp: &Response{StatusCode: 200, Body: []byte(`{"error":"no such user"}`)},
			want: StateAbsent,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			state, diag := c.rule.Classify(c.resp)
			if state != c.want {
				t.Fatalf("got state %q (diag %q), want %q", state, diag, c.want)
			}
			if c.wantDiag && diag == "" {
				t.Fatal("expected a diagnostic for indeterminate")
			}
			if !c.wantDiag && diag != "" {
				t.Fatalf("unexpected diagnostic %q", diag)
			}
		})
	}
}

// Rules are pure functions of the response: classifying the same bytes
// twice always yields the same state.
func TestRuleClassifyDeterministic(t *testing.T) {
	resp := &Response{
		StatusCode: http.StatusOK,
		FinalURL:   "https://example.com/u/x",
		Body:       []byte(`{"taken":true,"suggestions":["x1"]}`),
	}
	rules := []Rule{
		StatusExists{},
		ContentAbsent{NotFound: []string{"not found"}},
		ContentPresent{MustExist: []string{"taken"}},
		JSONFieldEquals{Pointer: "/taken", Expected: true},
		JSONFieldTruthy{Pointer: "/suggestions"},
		JSONFieldAbsent{Pointer: "/error"},
	}
	for _, r := range rules {
		s1, d1 := r.Classify(resp)
		for i := 0; i < 10; i++ {
			s2, d2 := r.Classify(resp)
			if s1 != s2 || d1 != d2 {
				t.Fatalf("%T: classification changed between runs: %q/%q vs %q/%q", r, s1, d1, s2, d2)
			}
		}
	}
}

func TestEvalPointerEscapes(t *testing.T) {
	body := []byte(`{"a/b":{"~":1}}`)
	v, found, diag := evalPointer(body, "/a~1b/~0")
	if diag != "" || !found {
		t.Fatalf("pointer with escapes not resolved: found=%v diag=%q", found, diag)
	}
	if v.(float64) != 1 {
		t.Fatalf("got %v, want 1", v)
	}
}
