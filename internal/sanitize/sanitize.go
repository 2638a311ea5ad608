// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize cleans AI-generated HTML before it is published and
// stored.
//
// The default policy keeps every tag and attribute, since the generated page
// depends on the Tailwind and Font Awesome CDN scripts. Either policy then
// removes "$" runs that open a word-like token so that no part of the stored
// document can be read as a query operator key such as "$where" or "$gt".
package sanitize

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policy names accepted by New.
const (
	Permissive = "permissive"
	Strict     = "strict"
)

// ErrSanitize reports an internal failure while cleaning. It is a server
// fault, never a client error.
var ErrSanitize = errors.New("sanitize: internal failure")

// operatorRe matches one or more "$" that begin a token, together with the
// character before the run so the match only fires at a token boundary.
var operatorRe = regexp.MustCompile(`(^|[^\p{L}\p{N}_$])\$+([\p{L}_])`)

// Sanitizer cleans HTML according to a policy. It is safe for concurrent use.
type Sanitizer struct {
	policy string
	clean  func(string) string
}

// New returns a Sanitizer for the named policy.
func New(policy string) (*Sanitizer, error) {
	switch policy {
	case "", Permissive:
		return &Sanitizer{policy: Permissive, clean: func(s string) string { return s }}, nil
	case Strict:
		p := strictPolicy()
		return &Sanitizer{policy: Strict, clean: p.Sanitize}, nil
	default:
		return nil, fmt.Errorf("sanitize: unknown policy %q", policy)
	}
}

// Policy returns the active policy name.
func (s *Sanitizer) Policy() string { return s.policy }

// Clean returns the sanitized document. The only error is ErrSanitize,
// returned when the underlying policy panics on some input.
func (s *Sanitizer) Clean(html string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("sanitizer panic", "policy", s.policy, "panic", rec)
			out, err = "", ErrSanitize
		}
	}()

	out = strings.ReplaceAll(html, "\x00", "")
	out = s.clean(out)
	return stripOperators(out), nil
}

// stripOperators removes token-leading "$" runs until none remain. "$10"
// and "${" are left alone since they cannot name a field.
func stripOperators(s string) string {
	for {
		next := operatorRe.ReplaceAllString(s, "${1}${2}")
		if next == s {
			return s
		}
		s = next
	}
}

// strictPolicy starts from bluemonday's user-generated-content policy and
// adds the page structure and styling hooks a landing page needs. Scripts,
// inline handlers and iframes are removed.
func strictPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowElements(
		"html", "head", "body", "title", "header", "nav", "main",
		"section", "article", "aside", "footer",
		"form", "label", "input", "textarea", "button", "i",
	)
	p.AllowAttrs("type", "name", "placeholder", "required", "for", "id").
		OnElements("input", "textarea", "button", "label", "form")
	p.AllowAttrs("aria-label", "aria-hidden", "role").Globally()
	return p
}
