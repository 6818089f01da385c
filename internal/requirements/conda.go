// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"fmt"
	"regexp"
	"strings"

	version "github.com/aquasecurity/go-pep440-version"
)

// Names maps PEP 503 normalised PyPI names to conda package names. Names not
// in the map keep their normalised PyPI spelling.
type Names map[string]string

// Conda returns the conda package name for a PyPI distribution name.
func (n Names) Conda(name string) string {
	norm := NormalizeName(name)
	if mapped, ok := n[norm]; ok {
		return mapped
	}
	return norm
}

// Constraints returns the version clauses in conda semantics. Compatible
// release (~=) expands to a lower bound plus a prefix match and arbitrary
// equality (===) becomes plain equality.
func (r Requirement) Constraints() ([]Specifier, error) {
	var out []Specifier
	for _, s := range r.Specifiers {
		switch s.Op {
		case "~=":
			prefix, err := compatiblePrefix(s.Version)
			if err != nil {
				return nil, err
			}
			out = append(out, Specifier{">=", s.Version}, Specifier{"==", prefix + ".*"})
		case "===":
			out = append(out, Specifier{"==", s.Version})
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

var releaseRegex = regexp.MustCompile(`^(?:v)?((?:\d+!)?\d+(?:\.\d+)*)`)

// compatiblePrefix returns the release segments of v without the last one,
// so "2.2.post3" gives "2" and "1.4.5rc1" gives "1.4". Pre, post, dev and
// local parts never take part in the prefix.
func compatiblePrefix(v string) (string, error) {
	if _, err := version.Parse(v); err != nil {
		return "", fmt.Errorf("%w: ~=%s: %v", ErrBadRequirement, v, err)
	}
	release := releaseRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(v)))
	if release == nil {
		return "", fmt.Errorf("%w: ~=%s has no release segment", ErrBadRequirement, v)
	}
	parts := strings.Split(release[1], ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: ~=%s needs at least two release segments", ErrBadRequirement, v)
	}
	return strings.Join(parts[:len(parts)-1], "."), nil
}

// CondaSpec renders r as a conda match spec such as "requests >=2.0,<3".
func (r Requirement) CondaSpec(names Names) (string, error) {
	constraints, err := r.Constraints()
	if err != nil {
		return "", err
	}
	name := names.Conda(r.Name)
	if len(constraints) == 0 {
		return name, nil
	}
	clauses := make([]string, len(constraints))
	for i, c := range constraints {
		clauses[i] = condaClause(c)
	}
	return name + " " + strings.Join(clauses, ","), nil
}

// condaClause writes prefix matches in conda's bare "1.4.*" form. conda
// reads "==1.4.*" as a deprecated relational wildcard.
func condaClause(s Specifier) string {
	if s.Op == "==" && strings.HasSuffix(s.Version, ".*") {
		return s.Version
	}
	return s.Op + s.Version
}

// ParseCondaSpec parses a match spec produced by CondaSpec back into a name
// and constraint list.
func ParseCondaSpec(spec string) (string, []Specifier, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(spec), " ")
	if name == "" {
		return "", nil, fmt.Errorf("%w: empty match spec", ErrBadRequirement)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return name, nil, nil
	}

	var specs []Specifier
	for _, clause := range strings.Split(rest, ",") {
		clause = strings.TrimSpace(clause)
		op := ""
		for _, candidate := range specOps {
			if strings.HasPrefix(clause, candidate) {
				op = candidate
				break
			}
		}
		v := strings.TrimSpace(clause[len(op):])
		if op == "" {
			if !strings.HasSuffix(v, "*") {
				return "", nil, fmt.Errorf("%w: %q: bare version %q is a fuzzy match", ErrBadRequirement, spec, v)
			}
			op = "=="
		}
		if v == "" {
			return "", nil, fmt.Errorf("%w: %q: empty version in %q", ErrBadRequirement, spec, clause)
		}
		specs = append(specs, Specifier{Op: op, Version: v})
	}
	return name, specs, nil
}

// ToConda converts Requires-Dist entries into conda match specs for one
// target environment. Requirements whose marker is false in env are dropped.
func ToConda(reqs []string, env Env, names Names) ([]string, error) {
	var out []string
	for _, raw := range reqs {
		r, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if r.Marker != nil {
			ok, err := r.Marker.Evaluate(env)
			if err != nil {
				return nil, fmt.Errorf("evaluating marker of %q: %w", raw, err)
			}
			if !ok {
				continue
			}
		}
		spec, err := r.CondaSpec(names)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}
