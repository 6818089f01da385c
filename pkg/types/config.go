// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ArchiveFormat selects the conda package container.
type ArchiveFormat string

const (
	// FormatTarBz2 is the legacy bzip2 tarball (".tar.bz2").
	FormatTarBz2 ArchiveFormat = "tar.bz2"
	// FormatConda is the v2 zip-of-zstd-tarballs format (".conda").
	FormatConda ArchiveFormat = "conda"
)

// Ext returns the filename extension including the leading dot.
func (f ArchiveFormat) Ext() string {
	return "." + string(f)
}

// Valid reports whether f names a supported format.
func (f ArchiveFormat) Valid() bool {
	return f == FormatTarBz2 || f == FormatConda
}

// ConvertConfig holds settings for a conversion run.
type ConvertConfig struct {
	// OutputDir is the channel root; archives land in OutputDir/<subdir>/.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// PythonVersions lists the "X.Y" interpreter versions to build for.
	PythonVersions []string `json:"python_versions" yaml:"python_versions"`

	// Platforms lists the conda subdirs to build for (e.g. "linux-64").
	Platforms []string `json:"platforms" yaml:"platforms"`

	// Format selects the archive container.
	Format ArchiveFormat `json:"format" yaml:"format"`

	// BuildNumber is the conda build number (default 0).
	BuildNumber int `json:"build_number" yaml:"build_number"`

	// NameMap renames PyPI distributions to conda package names. Keys are
	// PEP 503 normalised PyPI names.
	NameMap map[string]string `json:"name_map,omitempty" yaml:"name_map,omitempty"`

	// Index controls whether repodata.json is rebuilt after conversion.
	Index bool `json:"index" yaml:"index"`
}

// DefaultPythonVersions is the interpreter set used when none is configured.
var DefaultPythonVersions = []string{"3.13", "3.12", "3.11", "3.10", "3.9"}

// DefaultPlatforms is the subdir set used when none is configured.
var DefaultPlatforms = []string{
	"linux-64",
	"linux-32",
	"linux-aarch64",
	"osx-64",
	"osx-arm64",
	"win-64",
	"win-32",
}

// DefaultConvertConfig returns the configuration used when no config file or
// flag overrides a setting.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		OutputDir:      ".",
		PythonVersions: append([]string(nil), DefaultPythonVersions...),
		Platforms:      append([]string(nil), DefaultPlatforms...),
		Format:         FormatTarBz2,
		Index:          true,
	}
}
