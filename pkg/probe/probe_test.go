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

import "testing"

func TestProbeURLSubstitution(t *testing.T) {
	p := Probe{URLTemplate: "https://example.com/u/{}"}
	id := Identifier{Kind: KindUsername, Value: "octocat"}
	if got, want := p.URL(id), "https://example.com/u/octocat"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestProbeURLEscapesIdentifier(t *testing.T) {
	// Identifier validation already rejects these characters; the URL
	// builder still must not let them restructure the path.
	p := Probe{URLTemplate: "https://example.com/u/{}"}
	id := Identifier{Kind: KindUsername, Value: "a/b?c=d"}
	got := p.URL(id)
	if want := "https://example.com/u/a%2Fb%3Fc=d"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestProbeURLMD5Value(t *testing.T) {
	p := Probe{URLTemplate: "https://www.gravatar.com/avatar/{}?d=404", MD5Value: true}
	id := Identifier{Kind: KindEmail, Value: "MyEmailAddress@example.com"}
	// Reference hash from the Gravatar documentation.
	want := "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?d=404"
	if got := p.URL(id); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestProbeURLQueryEscaping(t *testing.T) {
	cases := []struct {
		name     string
		template string
		value    string
		want     string
	}{
		{
			name:     "plus in query survives as %2B",
			template: "https://sync.example.com/search/?number={}",
			value:    "+6281234567890",
			want:     "https://sync.example.com/search/?number=%2B6281234567890",
		},
		{
			name:     "plus-addressed email in query",
			template: "https://api.example.com/check?email={}",
			value:    "first.last+tag@example.org",
			want:     "https://api.example.com/check?email=first.last%2Btag%40example.org",
		},
		{
			name:     "placeholder before the query keeps path escaping",
			template: "https://www.gravatar.com/avatar/{}?d=404",
			value:    "abc",
			want:     "https://www.gravatar.com/avatar/abc?d=404",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := Probe{URLTemplate: c.template}
			id := Identifier{Kind: KindPhone, Value: c.value}
			if got := p.URL(id); got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestProbeBody(t *testing.T) {
	p := Probe{
		URLTemplate:  "https://example.com/api/{}",
		BodyTemplate: `{"email":"{}"}`,
	}
	id := Identifier{Kind: KindEmail, Value: "a@b.co"}
	if got, want := p.Body(id), `{"email":"a@b.co"}`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	empty := Probe{URLTemplate: "https://example.com/{}"}
	if got := empty.Body(id); got != "" {
		t.Fatalf("got %q, want empty body", got)
	}
}

func TestProbeHost(t *testing.T) {
	p := Probe{ID: "x", URLTemplate: "https://sub.example.com:8443/u/{}"}
	host, err := p.Host()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "sub.example.com:8443" {
		t.Fatalf("got %q", host)
	}
	// Subdomain templates resolve to a concrete host too.
	sub := Probe{ID: "y", URLTemplate: "https://{}.tumblr.com"}
	host, err = sub.Host()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "x.tumblr.com" {
		t.Fatalf("got %q", host)
	}
}
