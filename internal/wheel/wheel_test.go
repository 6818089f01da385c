// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wheel

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wheel2conda/internal/wheeltest"
)

func TestOpen(t *testing.T) {
	path := wheeltest.Write(t, t.TempDir(), wheeltest.Spec{
		Metadata: []string{
			"Summary: A demo package",
			"Requires-Dist: requests (>=2.0)",
			"Requires-Python: >=3.8",
			"Project-URL: Homepage, https://example.org/demo",
			"Classifier: License :: OSI Approved :: MIT License",
		},
		Files: map[string]string{
			"demo/__init__.py":             "",
			"demo-1.0.data/data/share/x.txt": "x",
		},
	})

	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Check())

	assert.Equal(t, "demo-1.0.dist-info", w.DistInfo)
	assert.Equal(t, "demo-1.0.data", w.DataDir)
	assert.True(t, wheeltest.ModTime.Equal(w.ModTime()), w.ModTime())

	rec := w.Record()
	assert.Equal(t, "demo", rec.Name)
	assert.Equal(t, "1.0", rec.Version)
	assert.Equal(t, []string{"requests (>=2.0)"}, rec.RequiresDist)
	assert.Equal(t, ">=3.8", rec.RequiresPython)
	assert.Equal(t, []string{"py3-none-any"}, rec.Tags)
	assert.True(t, rec.RootIsPurelib)
	assert.Equal(t, "A demo package", rec.Summary)
	assert.Equal(t, "https://example.org/demo", rec.HomePage)

	rows, err := w.RecordRows()
	require.NoError(t, err)
	assert.Equal(t, "demo-1.0.data/data/share/x.txt", rows[0][0])
	assert.Len(t, rows, 5)

	data, ok := w.File("demo/__init__.py")
	assert.True(t, ok)
	assert.Empty(t, data)
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		spec wheeltest.Spec
		want error
	}{
		{
			name: "missing METADATA",
			spec: wheeltest.Spec{Omit: []string{"METADATA"}},
			want: ErrBadWheel,
		},
		{
			name: "missing WHEEL",
			spec: wheeltest.Spec{Omit: []string{"WHEEL"}},
			want: ErrBadWheel,
		},
		{
			name: "missing RECORD",
			spec: wheeltest.Spec{Omit: []string{"RECORD"}},
			want: ErrBadWheel,
		},
		{
			name: "two dist-info directories",
			spec: wheeltest.Spec{Files: map[string]string{
				"other-2.0.dist-info/METADATA": "Name: other\n",
			}},
			want: ErrBadWheel,
		},
		{
			name: "bad filename",
			spec: wheeltest.Spec{Tag: "py3-none"},
			want: ErrBadFilename,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := wheeltest.Write(t, t.TempDir(), tt.spec)
			_, err := Open(path)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenNotZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo-1.0-py3-none-any.whl")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	_, err := Open(path)
	assert.ErrorIs(t, err, ErrBadWheel)
}

func TestOpenRejectsEscapingPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo-1.0-py3-none-any.whl")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("../evil.py")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrBadWheel)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		spec    wheeltest.Spec
		wantErr string
	}{
		{
			name: "valid",
			spec: wheeltest.Spec{},
		},
		{
			name: "normalised name matches",
			spec: wheeltest.Spec{Name: "Demo_Pkg", FileName: "demo.pkg-1.0-py3-none-any.whl"},
		},
		{
			name:    "future wheel version",
			spec:    wheeltest.Spec{WheelVersion: "2.0"},
			wantErr: "unsupported Wheel-Version",
		},
		{
			name:    "name mismatch",
			spec:    wheeltest.Spec{FileName: "other-1.0-py3-none-any.whl"},
			wantErr: "filename names",
		},
		{
			name:    "tampered file",
			spec:    wheeltest.Spec{Tamper: map[string]string{"demo/cli.py": "import os\n"}},
			wantErr: "does not match its RECORD hash",
		},
		{
			name:    "file missing from RECORD",
			spec:    wheeltest.Spec{Tamper: map[string]string{"demo/extra.py": ""}},
			wantErr: "missing from RECORD",
		},
		{
			name:    "version mismatch",
			spec:    wheeltest.Spec{FileName: "demo-2.0-py3-none-any.whl"},
			wantErr: "does not match METADATA version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Open(wheeltest.Write(t, t.TempDir(), tt.spec))
			require.NoError(t, err)
			err = w.Check()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrBadWheel)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEntryPoints(t *testing.T) {
	w, err := Open(wheeltest.Write(t, t.TempDir(), wheeltest.Spec{
		EntryPoints: "[console_scripts]\ndemo = demo.cli:main\n\n[gui_scripts]\ndemo-gui = demo.gui:App.run [gui]\n",
	}))
	require.NoError(t, err)

	eps, err := w.EntryPoints()
	require.NoError(t, err)
	assert.Equal(t, []EntryPoint{
		{Name: "demo", Module: "demo.cli", Func: "main"},
		{Name: "demo-gui", Module: "demo.gui", Func: "App.run", GUI: true},
	}, eps)
}
