// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wheel2conda/internal/conda"
	"github.com/pdiddy/wheel2conda/internal/platform"
	"github.com/pdiddy/wheel2conda/internal/wheel"
	"github.com/pdiddy/wheel2conda/internal/wheeltest"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

func testConfig(outDir string) types.ConvertConfig {
	cfg := types.DefaultConvertConfig()
	cfg.OutputDir = outDir
	cfg.PythonVersions = []string{"3.12", "3.11"}
	cfg.Platforms = []string{"linux-64", "osx-arm64", "win-64"}
	return cfg
}

// listArchives returns every regular file under dir, relative to it.
func listArchives(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, _ := filepath.Rel(dir, p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

func TestConvertPureWheel(t *testing.T) {
	whl := wheeltest.Write(t, t.TempDir(), wheeltest.Spec{})
	outDir := t.TempDir()
	var buf bytes.Buffer

	result, err := Convert(context.Background(), whl, testConfig(outDir), &buf)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Total())
	assert.Equal(t, []string{"linux-64", "osx-arm64", "win-64"}, result.Subdirs)
	assert.Equal(t, []string{
		"linux-64/demo-1.0-py311_0.tar.bz2",
		"linux-64/demo-1.0-py312_0.tar.bz2",
		"osx-arm64/demo-1.0-py311_0.tar.bz2",
		"osx-arm64/demo-1.0-py312_0.tar.bz2",
		"win-64/demo-1.0-py311_0.tar.bz2",
		"win-64/demo-1.0-py312_0.tar.bz2",
	}, listArchives(t, outDir))

	assert.Contains(t, buf.String(), "converted: linux-64/demo-1.0-py312_0.tar.bz2\n")
	assert.Contains(t, buf.String(), "Conversion summary: 6 archives in 3 platform directories")

	rec, err := conda.ReadIndex(filepath.Join(outDir, "win-64", "demo-1.0-py311_0.tar.bz2"))
	require.NoError(t, err)
	assert.Equal(t, "win-64", rec.Subdir)
	assert.Equal(t, []string{"python 3.11.*"}, rec.Depends)
}

func TestConvertCondaFormatAndOptions(t *testing.T) {
	whl := wheeltest.Write(t, t.TempDir(), wheeltest.Spec{
		Name:     "Demo_Pkg",
		Tag:      "cp312-cp312-manylinux_2_17_x86_64.manylinux2014_x86_64",
		Metadata: []string{"Requires-Dist: PyYAML>=6"},
		Files:    map[string]string{"demo_pkg/__init__.py": ""},
	})
	cfg := testConfig(t.TempDir())
	cfg.Format = types.FormatConda
	cfg.BuildNumber = 3
	cfg.NameMap = map[string]string{"pyyaml": "yaml"}

	result, err := Convert(context.Background(), whl, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(cfg.OutputDir, "linux-64", "demo-pkg-1.0-py312_3.conda")}, result.Written)

	rec, err := conda.ReadIndex(result.Written[0])
	require.NoError(t, err)
	assert.Equal(t, "demo-pkg", rec.Name)
	assert.Equal(t, 3, rec.BuildNumber)
	assert.Equal(t, []string{"python 3.12.*", "yaml >=6"}, rec.Depends)
}

func TestConvertErrorsWriteNothing(t *testing.T) {
	tests := []struct {
		name string
		spec wheeltest.Spec
		cfg  func(*types.ConvertConfig)
		want error
	}{
		{
			name: "missing METADATA",
			spec: wheeltest.Spec{Omit: []string{"METADATA"}},
			want: wheel.ErrBadWheel,
		},
		{
			name: "bad filename",
			spec: wheeltest.Spec{FileName: "demo.whl"},
			want: wheel.ErrBadFilename,
		},
		{
			name: "unsupported platform tag",
			spec: wheeltest.Spec{Tag: "cp311-cp311-freebsd_13_0_amd64"},
			want: platform.ErrUnsupportedTag,
		},
		{
			name: "no applicable python",
			spec: wheeltest.Spec{Metadata: []string{"Requires-Python: >=3.14"}},
			want: platform.ErrNoTargets,
		},
		{
			name: "unsupported data scheme",
			spec: wheeltest.Spec{Files: map[string]string{"demo-1.0.data/config/x": ""}},
			want: conda.ErrUnsupportedDataDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			whl := wheeltest.Write(t, t.TempDir(), tt.spec)
			outDir := t.TempDir()
			var buf bytes.Buffer

			_, err := Convert(context.Background(), whl, testConfig(outDir), &buf)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, listArchives(t, outDir))
			assert.NotContains(t, buf.String(), "converted:")
		})
	}
}

func TestConvertRollsBackOnWriteFailure(t *testing.T) {
	whl := wheeltest.Write(t, t.TempDir(), wheeltest.Spec{})
	outDir := t.TempDir()
	// A file where a platform directory should go makes the second subdir
	// unwritable.
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "osx-arm64"), nil, 0o644))

	_, err := Convert(context.Background(), whl, testConfig(outDir), &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, []string{"osx-arm64"}, listArchives(t, outDir))
}

func TestConvertInvalidFormat(t *testing.T) {
	whl := wheeltest.Write(t, t.TempDir(), wheeltest.Spec{})
	cfg := testConfig(t.TempDir())
	cfg.Format = "zip"
	_, err := Convert(context.Background(), whl, cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported archive format")
}

func TestConvertCancelled(t *testing.T) {
	whl := wheeltest.Write(t, t.TempDir(), wheeltest.Spec{})
	outDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Convert(ctx, whl, testConfig(outDir), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, listArchives(t, outDir))
}

func TestConvertIsDeterministic(t *testing.T) {
	whl := wheeltest.Write(t, t.TempDir(), wheeltest.Spec{
		EntryPoints: "[console_scripts]\ndemo = demo.cli:main\n",
	})
	first, second := testConfig(t.TempDir()), testConfig(t.TempDir())

	r1, err := Convert(context.Background(), whl, first, &bytes.Buffer{})
	require.NoError(t, err)
	r2, err := Convert(context.Background(), whl, second, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, r1.Total(), r2.Total())

	for i := range r1.Written {
		a, err := os.ReadFile(r1.Written[i])
		require.NoError(t, err)
		b, err := os.ReadFile(r2.Written[i])
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a, b), "%s differs between runs", filepath.Base(r1.Written[i]))
	}
}

func TestPlan(t *testing.T) {
	w, err := Load(wheeltest.Write(t, t.TempDir(), wheeltest.Spec{
		Metadata: []string{"Requires-Python: >=3.12"},
	}))
	require.NoError(t, err)

	targets, err := Plan(w, testConfig(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, []types.Target{
		{Subdir: "linux-64", Python: "3.12"},
		{Subdir: "osx-arm64", Python: "3.12"},
		{Subdir: "win-64", Python: "3.12"},
	}, targets)
}
