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

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cimenkdev/cksearch/pkg/probe"
)

func TestBreachLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check-email/pwned@example.com":
			fmt.Fprint(w, `{"breaches":[["SiteA","SiteB"],["SiteC"]]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b := NewBreachLookup()
	b.baseURL = srv.URL

	got, err := b.Lookup(context.Background(), probe.Identifier{Kind: probe.KindEmail, Value: "pwned@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	want := BreachResult{Found: true, Breaches: []string{"SiteA", "SiteB", "SiteC"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	// The API answers 404 for clean addresses; that is a result, not an
	// error.
	got, err = b.Lookup(context.Background(), probe.Identifier{Kind: probe.KindEmail, Value: "clean@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(BreachResult{Found: false}, got); diff != "" {
		t.Fatalf("clean address mismatch (-want +got):\n%s", diff)
	}

	if _, err := b.Lookup(context.Background(), probe.Identifier{Kind: probe.KindUsername, Value: "x"}); err == nil {
		t.Fatal("expected kind mismatch error")
	}
}

func TestCarrierLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_key") != "test-key" {
			fmt.Fprint(w, `{"error":{"info":"invalid access key"}}`)
			return
		}
		if r.URL.Query().Get("number") != "6281234567890" {
			t.Errorf("leading + not stripped: %q", r.URL.Query().Get("number"))
		}
		fmt.Fprint(w, `{"valid":true,"carrier":"Telkomsel","line_type":"mobile","country_name":"Indonesia","location":"Jakarta"}`)
	}))
	defer srv.Close()

	c := NewCarrierLookup("test-key")
	c.baseURL = srv.URL

	got, err := c.Lookup(context.Background(), probe.Identifier{Kind: probe.KindPhone, Value: "+6281234567890"})
	if err != nil {
		t.Fatal(err)
	}
	want := CarrierResult{Valid: true, Carrier: "Telkomsel", LineType: "mobile", Country: "Indonesia", Location: "Jakarta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	bad := NewCarrierLookup("wrong")
	bad.baseURL = srv.URL
	if _, err := bad.Lookup(context.Background(), probe.Identifier{Kind: probe.KindPhone, Value: "+6281234567890"}); err == nil {
		t.Fatal("expected API error to surface")
	}

	keyless := NewCarrierLookup("")
	if _, err := keyless.Lookup(context.Background(), probe.Identifier{Kind: probe.KindPhone, Value: "+6281234567890"}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestAdapterNames(t *testing.T) {
	cases := map[string]interface{ Name() string }{
		"breaches":         NewBreachLookup(),
		"carrier":          NewCarrierLookup("k"),
		"geoip":            NewGeoIPLookup(""),
		"dns":              NewDNSLookup(""),
		"whois":            NewWhoisLookup(),
		"tls_certificate":  NewTLSCertLookup(),
		"security_headers": NewHeaderInspect(),
	}
	for want, a := range cases {
		if got := a.Name(); got != want {
			t.Errorf("got section name %q, want %q", got, want)
		}
	}
}
