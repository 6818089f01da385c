// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wheel

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrBadFilename is returned when a wheel filename does not follow
// {dist}-{version}(-{build})?-{python}-{abi}-{platform}.whl.
var ErrBadFilename = errors.New("malformed wheel filename")

// Tag is one expanded compatibility tag (e.g. py3-none-any).
type Tag struct {
	Python   string
	ABI      string
	Platform string
}

// String returns the tag in python-abi-platform form.
func (t Tag) String() string {
	return t.Python + "-" + t.ABI + "-" + t.Platform
}

// Filename holds the fields encoded in a wheel filename.
type Filename struct {
	Name    string
	Version string
	Build   string
	Tags    []Tag
}

// ParseFilename parses the base name of path as a wheel filename. Compressed
// tag sets such as py2.py3 are expanded into one Tag per combination.
func ParseFilename(path string) (Filename, error) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".whl") {
		return Filename{}, fmt.Errorf("%w: %s: missing .whl suffix", ErrBadFilename, base)
	}
	parts := strings.Split(strings.TrimSuffix(base, ".whl"), "-")

	var f Filename
	switch len(parts) {
	case 5:
	case 6:
		f.Build = parts[2]
		if f.Build == "" || f.Build[0] < '0' || f.Build[0] > '9' {
			return Filename{}, fmt.Errorf("%w: %s: build tag %q must start with a digit", ErrBadFilename, base, f.Build)
		}
	default:
		return Filename{}, fmt.Errorf("%w: %s: expected 5 or 6 dash-separated fields, got %d", ErrBadFilename, base, len(parts))
	}

	f.Name = parts[0]
	f.Version = parts[1]
	if f.Name == "" || f.Version == "" {
		return Filename{}, fmt.Errorf("%w: %s: empty name or version", ErrBadFilename, base)
	}

	n := len(parts)
	pythons := strings.Split(parts[n-3], ".")
	abis := strings.Split(parts[n-2], ".")
	platforms := strings.Split(parts[n-1], ".")
	for _, py := range pythons {
		for _, abi := range abis {
			for _, plat := range platforms {
				if py == "" || abi == "" || plat == "" {
					return Filename{}, fmt.Errorf("%w: %s: empty compatibility tag", ErrBadFilename, base)
				}
				f.Tags = append(f.Tags, Tag{Python: py, ABI: abi, Platform: plat})
			}
		}
	}
	return f, nil
}

// TagStrings returns the expanded tags in python-abi-platform form.
func (f Filename) TagStrings() []string {
	out := make([]string, len(f.Tags))
	for i, t := range f.Tags {
		out[i] = t.String()
	}
	return out
}
