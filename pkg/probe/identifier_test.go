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
	"errors"
	"testing"
)

func TestNewUsername(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "octocat", want: "octocat"},
		{in: "  octocat  ", want: "octocat"},
		{in: "user.name_01-x", want: "user.name_01-x"},
		{in: "a", wantErr: true},
		{in: "", wantErr: true},
		{in: "with space", wantErr: true},
		{in: "semi;colon", wantErr: true},
		{in: "path/../traversal", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			id, err := NewUsername(c.in)
			if c.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Kind != KindUsername || id.Value != c.want {
				t.Fatalf("got %+v, want value %q", id, c.want)
			}
		})
	}
}

func TestNewEmail(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a@b.co", want: "a@b.co"},
		{in: "First.Last+tag@Example.ORG", want: "first.last+tag@example.org"},
		{in: "no-at-sign", wantErr: true},
		{in: "a@b", wantErr: true},
		{in: "@example.com", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			id, err := NewEmail(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Value != c.want {
				t.Fatalf("got %q, want %q", id.Value, c.want)
			}
		})
	}
}

func TestNewPhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "+6281234567890", want: "+6281234567890"},
		{in: "+62 812-3456-7890", want: "+6281234567890"},
		{in: "081234567890", wantErr: true},
		{in: "+0123456789", wantErr: true},
		{in: "0062812345678", wantErr: true},
		{in: "+1234", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			id, err := NewPhone(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Value != c.want {
				t.Fatalf("got %q, want %q", id.Value, c.want)
			}
		})
	}
}

func TestNewDomain(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "example.com", want: "example.com"},
		{in: "HTTPS://Example.COM/path?q=1", want: "example.com"},
		{in: "sub.example.co.id.", want: "sub.example.co.id"},
		{in: "localhost", wantErr: true},
		{in: "-bad.example.com", wantErr: true},
		{in: "exa_mple.com", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			id, err := NewDomain(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.Value != c.want {
				t.Fatalf("got %q, want %q", id.Value, c.want)
			}
		})
	}
}

func TestNewDispatchesByKind(t *testing.T) {
	if _, err := New(KindEmail, "a@b.co"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(Kind("ip"), "1.2.3.4"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
