// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wheel2conda/internal/wheel"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

func tagsOf(t *testing.T, filename string) []wheel.Tag {
	t.Helper()
	f, err := wheel.ParseFilename(filename)
	require.NoError(t, err)
	return f.Tags
}

func TestTargetsPureWheelCoversEveryPlatform(t *testing.T) {
	subdirs := []string{"linux-64", "osx-arm64", "win-64"}
	got, err := Targets(tagsOf(t, "demo-1.0-py3-none-any.whl"), []string{"3.12", "3.11"}, subdirs, "")
	require.NoError(t, err)

	assert.Equal(t, []types.Target{
		{Subdir: "linux-64", Python: "3.12"},
		{Subdir: "linux-64", Python: "3.11"},
		{Subdir: "osx-arm64", Python: "3.12"},
		{Subdir: "osx-arm64", Python: "3.11"},
		{Subdir: "win-64", Python: "3.12"},
		{Subdir: "win-64", Python: "3.11"},
	}, got)
}

func TestTargets(t *testing.T) {
	all := []string{"linux-64", "linux-aarch64", "osx-64", "osx-arm64", "win-64"}
	pythons := []string{"3.12", "3.11", "3.8", "2.7"}

	tests := []struct {
		name           string
		filename       string
		requiresPython string
		want           []types.Target
	}{
		{
			name:     "py2 only",
			filename: "old-1.0-py2-none-any.whl",
			want: []types.Target{
				{Subdir: "linux-64", Python: "2.7"}, {Subdir: "linux-aarch64", Python: "2.7"}, {Subdir: "osx-64", Python: "2.7"},
				{Subdir: "osx-arm64", Python: "2.7"}, {Subdir: "win-64", Python: "2.7"},
			},
		},
		{
			name:           "requires python filters versions",
			filename:       "six-1.16.0-py2.py3-none-any.whl",
			requiresPython: ">=3.9",
			want: []types.Target{
				{Subdir: "linux-64", Python: "3.12"}, {Subdir: "linux-64", Python: "3.11"},
				{Subdir: "linux-aarch64", Python: "3.12"}, {Subdir: "linux-aarch64", Python: "3.11"},
				{Subdir: "osx-64", Python: "3.12"}, {Subdir: "osx-64", Python: "3.11"},
				{Subdir: "osx-arm64", Python: "3.12"}, {Subdir: "osx-arm64", Python: "3.11"},
				{Subdir: "win-64", Python: "3.12"}, {Subdir: "win-64", Python: "3.11"},
			},
		},
		{
			name:     "minimum python tag",
			filename: "new-1.0-py311-none-any.whl",
			want: []types.Target{
				{Subdir: "linux-64", Python: "3.12"}, {Subdir: "linux-64", Python: "3.11"},
				{Subdir: "linux-aarch64", Python: "3.12"}, {Subdir: "linux-aarch64", Python: "3.11"},
				{Subdir: "osx-64", Python: "3.12"}, {Subdir: "osx-64", Python: "3.11"},
				{Subdir: "osx-arm64", Python: "3.12"}, {Subdir: "osx-arm64", Python: "3.11"},
				{Subdir: "win-64", Python: "3.12"}, {Subdir: "win-64", Python: "3.11"},
			},
		},
		{
			name:     "compiled for one interpreter and platform",
			filename: "fast-0.3-cp311-cp311-manylinux_2_17_x86_64.manylinux2014_x86_64.whl",
			want:     []types.Target{{Subdir: "linux-64", Python: "3.11"}},
		},
		{
			name:     "stable abi",
			filename: "fast-0.3-cp38-abi3-macosx_10_9_universal2.whl",
			want: []types.Target{
				{Subdir: "osx-64", Python: "3.12"}, {Subdir: "osx-64", Python: "3.11"}, {Subdir: "osx-64", Python: "3.8"},
				{Subdir: "osx-arm64", Python: "3.12"}, {Subdir: "osx-arm64", Python: "3.11"}, {Subdir: "osx-arm64", Python: "3.8"},
			},
		},
		{
			name:     "platform specific pure python",
			filename: "winonly-1.0-py3-none-win_amd64.whl",
			want:     []types.Target{{Subdir: "win-64", Python: "3.12"}, {Subdir: "win-64", Python: "3.11"}, {Subdir: "win-64", Python: "3.8"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Targets(tagsOf(t, tt.filename), pythons, all, tt.requiresPython)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetsErrors(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		pythons        []string
		subdirs        []string
		requiresPython string
		want           error
	}{
		{
			name:     "unsupported platform tag",
			filename: "x-1.0-cp311-cp311-manylinux2014_armv7l.whl",
			want:     ErrUnsupportedTag,
		},
		{
			name:     "malformed python tag",
			filename: "x-1.0-py-none-any.whl",
			want:     ErrUnsupportedTag,
		},
		{
			name:     "platform not configured",
			filename: "x-1.0-py3-none-win_amd64.whl",
			subdirs:  []string{"linux-64"},
			want:     ErrNoTargets,
		},
		{
			name:     "pypy only",
			filename: "x-1.0-pp39-pypy39_pp73-manylinux2014_x86_64.whl",
			want:     ErrNoTargets,
		},
		{
			name:           "requires python excludes everything",
			filename:       "x-1.0-py3-none-any.whl",
			requiresPython: ">=4",
			want:           ErrNoTargets,
		},
		{
			name:     "unknown configured platform",
			filename: "x-1.0-py3-none-any.whl",
			subdirs:  []string{"plan9-64"},
			want:     ErrUnknownPlatform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pythons := tt.pythons
			if pythons == nil {
				pythons = []string{"3.11"}
			}
			subdirs := tt.subdirs
			if subdirs == nil {
				subdirs = []string{"linux-64", "win-64"}
			}
			_, err := Targets(tagsOf(t, tt.filename), pythons, subdirs, tt.requiresPython)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTargetsBadConfig(t *testing.T) {
	tags := tagsOf(t, "x-1.0-py3-none-any.whl")

	_, err := Targets(tags, []string{"3"}, []string{"linux-64"}, "")
	assert.Error(t, err)

	_, err = Targets(tags, []string{"3.11"}, []string{"linux-64"}, "not a specifier")
	assert.ErrorContains(t, err, "invalid Requires-Python")
}
