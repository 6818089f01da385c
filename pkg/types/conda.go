// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// IndexRecord is the target record written to info/index.json and, with the
// archive hashes filled in, to repodata.json.
type IndexRecord struct {
	Arch        string   `json:"arch" yaml:"arch"`
	Build       string   `json:"build" yaml:"build"`
	BuildNumber int      `json:"build_number" yaml:"build_number"`
	Depends     []string `json:"depends" yaml:"depends"`
	License     string   `json:"license" yaml:"license"`
	Name        string   `json:"name" yaml:"name"`
	Platform    string   `json:"platform" yaml:"platform"`
	Subdir      string   `json:"subdir" yaml:"subdir"`
	Version     string   `json:"version" yaml:"version"`

	// Archive fields are only present in repodata.json.
	MD5    string `json:"md5,omitempty" yaml:"md5,omitempty"`
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	Size   int64  `json:"size,omitempty" yaml:"size,omitempty"`
}

// AboutRecord is written to info/about.json.
type AboutRecord struct {
	Home    string `json:"home,omitempty" yaml:"home,omitempty"`
	License string `json:"license" yaml:"license"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Target is one (platform, Python version) pair a wheel is converted for.
type Target struct {
	// Subdir is the conda platform directory (e.g. "linux-64").
	Subdir string `json:"subdir" yaml:"subdir"`

	// Python is the "X.Y" interpreter version (e.g. "3.11").
	Python string `json:"python" yaml:"python"`
}
