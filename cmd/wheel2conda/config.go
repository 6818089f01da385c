// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wheel2conda/internal/requirements"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

// Config keys shared by flags, the config file and WHEEL2CONDA_* variables.
const (
	keyOutputDir      = "output_dir"
	keyPythonVersions = "python_versions"
	keyPlatforms      = "platforms"
	keyFormat         = "format"
	keyBuildNumber    = "build_number"
	keyNameMap        = "name_map"
	keyIndex          = "index"
)

func init() {
	d := types.DefaultConvertConfig()
	viper.SetDefault(keyOutputDir, d.OutputDir)
	viper.SetDefault(keyPythonVersions, d.PythonVersions)
	viper.SetDefault(keyPlatforms, d.Platforms)
	viper.SetDefault(keyFormat, string(d.Format))
	viper.SetDefault(keyBuildNumber, d.BuildNumber)
	viper.SetDefault(keyIndex, d.Index)
}

// convertFlags maps the conversion flags to their config keys.
var convertFlags = map[string]string{
	"output-dir":   keyOutputDir,
	"python":       keyPythonVersions,
	"platform":     keyPlatforms,
	"format":       keyFormat,
	"build-number": keyBuildNumber,
	"name-map":     keyNameMap,
}

// addConvertFlags registers the flags that shape a conversion on cmd.
func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "o", ".", "channel directory that receives <subdir>/ folders")
	cmd.Flags().StringSlice("python", nil, "Python versions to build for (default 3.13,3.12,3.11,3.10,3.9)")
	cmd.Flags().StringSlice("platform", nil, "conda subdirs to build for (default linux-64,linux-32,linux-aarch64,osx-64,osx-arm64,win-64,win-32)")
	cmd.Flags().String("format", "tar.bz2", "archive format: tar.bz2 or conda")
	cmd.Flags().Int("build-number", 0, "conda build number")
	cmd.Flags().String("name-map", "", "YAML file mapping PyPI names to conda names")
}

// loadConvertConfig binds cmd's conversion flags and resolves the settings
// from flags, WHEEL2CONDA_* variables, the config file and defaults, in that
// order.
func loadConvertConfig(cmd *cobra.Command) (types.ConvertConfig, error) {
	for flag, key := range convertFlags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return types.ConvertConfig{}, fmt.Errorf("binding --%s: %w", flag, err)
		}
	}

	cfg := types.ConvertConfig{
		OutputDir:      viper.GetString(keyOutputDir),
		PythonVersions: splitList(viper.GetStringSlice(keyPythonVersions)),
		Platforms:      splitList(viper.GetStringSlice(keyPlatforms)),
		Format:         types.ArchiveFormat(strings.TrimPrefix(viper.GetString(keyFormat), ".")),
		BuildNumber:    viper.GetInt(keyBuildNumber),
		Index:          viper.GetBool(keyIndex),
	}
	if !cfg.Format.Valid() {
		return cfg, fmt.Errorf("unsupported format %q: use %s or %s", cfg.Format, types.FormatTarBz2, types.FormatConda)
	}
	if cfg.BuildNumber < 0 {
		return cfg, fmt.Errorf("build number must not be negative, got %d", cfg.BuildNumber)
	}
	if path := viper.GetString(keyNameMap); path != "" {
		names, err := loadNameMap(path)
		if err != nil {
			return cfg, err
		}
		cfg.NameMap = names
	}
	return cfg, nil
}

// loadNameMap reads a YAML mapping of PyPI names to conda names. Keys are
// normalised so "PyYAML" and "pyyaml" both match.
func loadNameMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading name map: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing name map %s: %w", path, err)
	}
	names := make(map[string]string, len(raw))
	for pypi, conda := range raw {
		conda = strings.TrimSpace(conda)
		if conda == "" {
			return nil, fmt.Errorf("name map %s: empty conda name for %q", path, pypi)
		}
		names[requirements.NormalizeName(pypi)] = conda
	}
	return names, nil
}

// splitList flattens comma-separated entries, as given by environment
// variables, into one list.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
