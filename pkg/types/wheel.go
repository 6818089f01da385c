// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// WheelRecord is the source record read from a wheel: the filename tags plus
// the METADATA fields the conversion consumes.
type WheelRecord struct {
	// Name is the distribution name as written in METADATA (e.g. "Requests").
	Name string `json:"name" yaml:"name"`

	// Version is the distribution version (e.g. "2.31.0").
	Version string `json:"version" yaml:"version"`

	// RequiresDist lists the Requires-Dist entries in METADATA order.
	RequiresDist []string `json:"requires_dist,omitempty" yaml:"requires_dist,omitempty"`

	// RequiresPython is the Requires-Python specifier, if any (e.g. ">=3.8").
	RequiresPython string `json:"requires_python,omitempty" yaml:"requires_python,omitempty"`

	// Tags holds the expanded compatibility tags from the filename
	// (e.g. "py3-none-any").
	Tags []string `json:"tags" yaml:"tags"`

	// RootIsPurelib reports the WHEEL Root-Is-Purelib flag.
	RootIsPurelib bool `json:"root_is_purelib" yaml:"root_is_purelib"`

	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	HomePage    string   `json:"home_page,omitempty" yaml:"home_page,omitempty"`
	License     string   `json:"license,omitempty" yaml:"license,omitempty"`
	Classifiers []string `json:"classifiers,omitempty" yaml:"classifiers,omitempty"`
}
