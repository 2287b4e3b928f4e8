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
	"regexp"
	"strings"
)

// Kind is the identifier variant a probe accepts.
type Kind string

const (
	KindUsername Kind = "username"
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
	KindDomain   Kind = "domain"
)

// Identifier is the immutable target of one scan.
type Identifier struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// ValidationError reports a rejected identifier. No probe runs after one.
type ValidationError struct {
	Kind   Kind
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Value, e.Reason)
}

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	phoneRe  = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)
	labelRe  = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	userOkRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// NewUsername validates and wraps a username target.
func NewUsername(v string) (Identifier, error) {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return Identifier{}, &ValidationError{KindUsername, v, "must be at least 2 characters"}
	}
	if !userOkRe.MatchString(v) {
		return Identifier{}, &ValidationError{KindUsername, v, "contains characters not used by any platform handle"}
	}
	return Identifier{Kind: KindUsername, Value: v}, nil
}

// NewEmail validates and wraps an email target.
func NewEmail(v string) (Identifier, error) {
	v = strings.TrimSpace(v)
	if !emailRe.MatchString(v) {
		return Identifier{}, &ValidationError{KindEmail, v, "not an RFC-shaped address"}
	}
	return Identifier{Kind: KindEmail, Value: strings.ToLower(v)}, nil
}

// NewPhone validates and wraps an E.164 phone target. A leading 00 or a
// bare national number is rejected rather than guessed at.
func NewPhone(v string) (Identifier, error) {
	v = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(v, " ", ""), "-", ""))
	if !phoneRe.MatchString(v) {
		return Identifier{}, &ValidationError{KindPhone, v, "not E.164 (+ and 7-15 digits)"}
	}
	return Identifier{Kind: KindPhone, Value: v}, nil
}

// NewDomain validates and wraps a domain target.
func NewDomain(v string) (Identifier, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.TrimPrefix(strings.TrimPrefix(v, "https://"), "http://")
	v = strings.TrimSuffix(strings.SplitN(v, "/", 2)[0], ".")
	labels := strings.Split(v, ".")
	if len(labels) < 2 {
		return Identifier{}, &ValidationError{KindDomain, v, "needs at least two labels"}
	}
	if len(v) > 253 {
		return Identifier{}, &ValidationError{KindDomain, v, "longer than 253 characters"}
	}
	for _, l := range labels {
		if !labelRe.MatchString(l) {
			return Identifier{}, &ValidationError{KindDomain, v, fmt.Sprintf("label %q is invalid", l)}
		}
	}
	return Identifier{Kind: KindDomain, Value: v}, nil
}

// New validates a raw value against the given kind.
func New(kind Kind, v string) (Identifier, error) {
	switch kind {
	case KindUsername:
		return NewUsername(v)
	case KindEmail:
		return NewEmail(v)
	case KindPhone:
		return NewPhone(v)
	case KindDomain:
		return NewDomain(v)
	default:
		return Identifier{}, &ValidationError{kind, v, "unknown identifier kind"}
	}
}
