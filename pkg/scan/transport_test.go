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
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTransportFetch(t *testing.T) {
	var gotUA, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Probe")
		fmt.Fprint(w, "profile page")
	}))
	defer srv.Close()

	tr := NewTransport(TransportConfig{UserAgents: []string{"test-agent/1.0"}})
	resp, err := tr.Fetch(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     srv.URL + "/u/octocat",
		Headers: map[string]string{"X-Probe": "yes"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	if string(resp.Body) != "profile page" {
		t.Fatalf("got body %q", resp.Body)
	}
	if gotUA != "test-agent/1.0" {
		t.Fatalf("got user agent %q", gotUA)
	}
	if gotHeader != "yes" {
		t.Fatalf("probe header not forwarded, got %q", gotHeader)
	}
}

func TestTransportPostBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
	}))
	defer srv.Close()

	tr := NewTransport(TransportConfig{})
	_, err := tr.Fetch(context.Background(), Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   `{"email":"a@b.co"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotBody != `{"email":"a@b.co"}` {
		t.Fatalf("got body %q", gotBody)
	}
}

func TestTransportFollowsRedirectsToFinalURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		fmt.Fprint(w, "landed")
	}))
	defer srv.Close()

	tr := NewTransport(TransportConfig{})
	resp, err := tr.Fetch(context.Background(), Request{Method: http.MethodGet, URL: srv.URL + "/old"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.FinalURL != srv.URL+"/new" {
		t.Fatalf("got final url %q", resp.FinalURL)
	}
	if string(resp.Body) != "landed" {
		t.Fatalf("got body %q", resp.Body)
	}
}

func TestTransportStopsAtRedirectCap(t *testing.T) {
	var hops int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops++
		http.Redirect(w, r, fmt.Sprintf("/hop%d", hops), http.StatusFound)
	}))
	defer srv.Close()

	tr := NewTransport(TransportConfig{MaxRedirects: 3})
	resp, err := tr.Fetch(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("redirect cap must yield the last response, got error: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("got status %d, want the raw 302", resp.StatusCode)
	}
	if hops > 4 {
		t.Fatalf("server saw %d hops, cap not applied", hops)
	}
}

func TestTransportTimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	tr := NewTransport(TransportConfig{RequestTimeout: 30 * time.Millisecond})
	_, err := tr.Fetch(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("got %T (%v), want TransportError", err, err)
	}
	if terr.Kind != ErrKindTimeout {
		t.Fatalf("got kind %q, want timeout", terr.Kind)
	}
	if !terr.Transient() {
		t.Fatal("timeouts must be retryable")
	}
}

func TestTransportCancellationIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	tr := NewTransport(TransportConfig{})
	_, err := tr.Fetch(ctx, Request{Method: http.MethodGet, URL: srv.URL})
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("got %T (%v), want TransportError", err, err)
	}
	if terr.Kind != ErrKindCancelled {
		t.Fatalf("got kind %q, want cancelled", terr.Kind)
	}
	if terr.Transient() {
		t.Fatal("cancellation must not be retried")
	}
}

func TestTransportConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr := NewTransport(TransportConfig{})
	_, err := tr.Fetch(context.Background(), Request{Method: http.MethodGet, URL: url})
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("got %T (%v), want TransportError", err, err)
	}
	if !terr.Transient() {
		t.Fatalf("connection failure (%q) must be retryable", terr.Kind)
	}
}

// Two transports with the same seed and agent list draw the same
// user-agent sequence.
func TestTransportUserAgentSeedReproducible(t *testing.T) {
	agents := []string{"a", "b", "c", "d", "e"}
	t1 := NewTransport(TransportConfig{UserAgents: agents, Seed: 42})
	t2 := NewTransport(TransportConfig{UserAgents: agents, Seed: 42})
	for i := 0; i < 50; i++ {
		if ua1, ua2 := t1.nextUserAgent(), t2.nextUserAgent(); ua1 != ua2 {
			t.Fatalf("draw %d diverged: %q vs %q", i, ua1, ua2)
		}
	}
}
