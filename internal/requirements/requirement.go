// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package requirements parses PEP 508 dependency specifiers and rewrites them
// as conda match specs.
package requirements

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadRequirement is returned for a Requires-Dist entry that is not a valid
// PEP 508 requirement.
var ErrBadRequirement = errors.New("malformed requirement")

var (
	nameRegex      = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)
	separatorRegex = regexp.MustCompile(`[-_.]+`)
)

// specOps lists comparison operators longest first so prefixes match greedily.
var specOps = []string{"===", "~=", "==", "!=", "<=", ">=", "<", ">"}

// NormalizeName returns the PEP 503 normalised form of a distribution name.
func NormalizeName(name string) string {
	return separatorRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Specifier is one version clause such as >=2.0.
type Specifier struct {
	Op      string
	Version string
}

// String returns the clause with no inner whitespace.
func (s Specifier) String() string {
	return s.Op + s.Version
}

// Requirement is a parsed PEP 508 dependency specifier.
type Requirement struct {
	Name       string
	Extras     []string
	Specifiers []Specifier
	URL        string
	// Marker is nil when the requirement is unconditional.
	Marker *Marker
}

// Parse parses a Requires-Dist value such as
// `requests[socks] (>=2.0,<3); python_version >= "3.8"`.
func Parse(s string) (Requirement, error) {
	body, markerSrc, hasMarker := strings.Cut(s, ";")
	body = strings.TrimSpace(body)

	var r Requirement
	r.Name = nameRegex.FindString(body)
	if r.Name == "" {
		return Requirement{}, fmt.Errorf("%w: %q: missing distribution name", ErrBadRequirement, s)
	}
	rest := strings.TrimSpace(body[len(r.Name):])

	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Requirement{}, fmt.Errorf("%w: %q: unterminated extras", ErrBadRequirement, s)
		}
		for _, e := range strings.Split(rest[1:end], ",") {
			if e = strings.TrimSpace(e); e != "" {
				r.Extras = append(r.Extras, e)
			}
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	switch {
	case strings.HasPrefix(rest, "@"):
		r.URL = strings.TrimSpace(rest[1:])
		if r.URL == "" {
			return Requirement{}, fmt.Errorf("%w: %q: empty URL", ErrBadRequirement, s)
		}
	case rest != "":
		if strings.HasPrefix(rest, "(") {
			if !strings.HasSuffix(rest, ")") {
				return Requirement{}, fmt.Errorf("%w: %q: unbalanced parentheses", ErrBadRequirement, s)
			}
			rest = strings.TrimSpace(rest[1 : len(rest)-1])
		}
		specs, err := parseSpecifiers(rest)
		if err != nil {
			return Requirement{}, fmt.Errorf("%w: %q: %v", ErrBadRequirement, s, err)
		}
		r.Specifiers = specs
	}

	if hasMarker {
		m, err := ParseMarker(markerSrc)
		if err != nil {
			return Requirement{}, fmt.Errorf("%w: %q: %v", ErrBadRequirement, s, err)
		}
		r.Marker = m
	}
	return r, nil
}

func parseSpecifiers(s string) ([]Specifier, error) {
	var specs []Specifier
	for _, clause := range strings.Split(s, ",") {
		clause = strings.TrimSpace(clause)
		op := ""
		for _, candidate := range specOps {
			if strings.HasPrefix(clause, candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			return nil, fmt.Errorf("clause %q has no comparison operator", clause)
		}
		v := strings.TrimSpace(clause[len(op):])
		if v == "" || strings.ContainsAny(v, " \t") {
			return nil, fmt.Errorf("clause %q has an invalid version", clause)
		}
		specs = append(specs, Specifier{Op: op, Version: v})
	}
	return specs, nil
}

// String renders the requirement back in PEP 508 form.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
	}
	for i, s := range r.Specifiers {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(s.String())
	}
	if r.Marker != nil {
		b.WriteString("; " + r.Marker.String())
	}
	return b.String()
}
