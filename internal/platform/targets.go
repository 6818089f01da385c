// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package platform

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	version "github.com/aquasecurity/go-pep440-version"

	"github.com/pdiddy/wheel2conda/internal/wheel"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

// ErrNoTargets is returned when no configured (platform, Python) pair can
// install the wheel.
var ErrNoTargets = errors.New("no applicable targets")

var (
	pythonTagRegex = regexp.MustCompile(`^([a-z]+)(\d*)$`)
	cpythonABI     = regexp.MustCompile(`^cp\d+[dmu]*$`)
	pythonVersion  = regexp.MustCompile(`^(\d+)\.(\d+)$`)
)

type pyVersion struct {
	major, minor int
}

func parsePython(v string) (pyVersion, error) {
	m := pythonVersion.FindStringSubmatch(v)
	if m == nil {
		return pyVersion{}, fmt.Errorf("python version %q is not in X.Y form", v)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return pyVersion{major, minor}, nil
}

// pythonMatches reports whether CPython v can load a wheel tagged py-abi.
func pythonMatches(py, abi string, v pyVersion) (bool, error) {
	m := pythonTagRegex.FindStringSubmatch(py)
	if m == nil || m[2] == "" {
		return false, fmt.Errorf("%w: python %q", ErrUnsupportedTag, py)
	}
	impl, digits := m[1], m[2]
	if impl != "py" && impl != "cp" {
		return false, nil
	}

	major, _ := strconv.Atoi(digits[:1])
	if major != v.major {
		return false, nil
	}
	if len(digits) == 1 {
		return abi == "none" || abi == "abi3", nil
	}
	minor, _ := strconv.Atoi(digits[1:])

	switch {
	case abi == "none" && impl == "py", abi == "abi3" && impl == "cp":
		return v.minor >= minor, nil
	case abi == "none", cpythonABI.MatchString(abi):
		return v.minor == minor, nil
	}
	return false, nil
}

// Targets returns the (platform, Python) pairs the wheel applies to, in the
// order of subdirs then pythons. Every platform tag must be recognised; an
// empty result is ErrNoTargets.
func Targets(tags []wheel.Tag, pythons, subdirs []string, requiresPython string) ([]types.Target, error) {
	var rp *version.Specifiers
	if strings.TrimSpace(requiresPython) != "" {
		s, err := version.NewSpecifiers(requiresPython)
		if err != nil {
			return nil, fmt.Errorf("invalid Requires-Python %q: %w", requiresPython, err)
		}
		rp = &s
	}

	tagPlatforms := make(map[string]map[string]bool)
	for _, t := range tags {
		if t.Platform == "any" || tagPlatforms[t.Platform] != nil {
			continue
		}
		plats, err := FromTag(t.Platform)
		if err != nil {
			return nil, err
		}
		set := make(map[string]bool, len(plats))
		for _, p := range plats {
			set[p.Subdir()] = true
		}
		tagPlatforms[t.Platform] = set
	}

	var targets []types.Target
	for _, subdir := range subdirs {
		if _, err := Parse(subdir); err != nil {
			return nil, err
		}
		for _, py := range pythons {
			v, err := parsePython(py)
			if err != nil {
				return nil, err
			}
			if rp != nil && !rp.Check(version.MustParse(py)) {
				continue
			}
			ok, err := anyTagMatches(tags, tagPlatforms, subdir, v)
			if err != nil {
				return nil, err
			}
			if ok {
				targets = append(targets, types.Target{Subdir: subdir, Python: py})
			}
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: tags %v, pythons %v, platforms %v", ErrNoTargets,
			tagStrings(tags), pythons, subdirs)
	}
	return targets, nil
}

func anyTagMatches(tags []wheel.Tag, tagPlatforms map[string]map[string]bool, subdir string, v pyVersion) (bool, error) {
	for _, t := range tags {
		if t.Platform != "any" && !tagPlatforms[t.Platform][subdir] {
			continue
		}
		ok, err := pythonMatches(t.Python, t.ABI, v)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func tagStrings(tags []wheel.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
