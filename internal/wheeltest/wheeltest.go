// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wheeltest builds small wheel archives for tests.
package wheeltest

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

// Spec describes a wheel to build. Zero values give a pure-Python
// demo-1.0-py3-none-any wheel with one module.
type Spec struct {
	Name    string
	Version string
	// Tag is the python-abi-platform part of the filename.
	Tag string

	// Metadata is appended to the METADATA headers after Name and Version.
	Metadata []string

	// Files maps archive paths to contents. dist-info files are generated.
	Files map[string]string

	// EntryPoints is written verbatim to entry_points.txt when non-empty.
	EntryPoints string

	// Omit names dist-info files (METADATA, WHEEL, RECORD) to leave out.
	Omit []string

	// WheelVersion overrides the WHEEL Wheel-Version header.
	WheelVersion string

	// FileName overrides the generated wheel filename.
	FileName string

	// Tamper replaces file contents after RECORD has been computed.
	Tamper map[string]string
}

// ModTime is the timestamp stamped on every entry.
var ModTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func (s *Spec) defaults() {
	if s.Name == "" {
		s.Name = "demo"
	}
	if s.Version == "" {
		s.Version = "1.0"
	}
	if s.Tag == "" {
		s.Tag = "py3-none-any"
	}
	if s.Files == nil {
		s.Files = map[string]string{
			"demo/__init__.py": "VERSION = '1.0'\n",
			"demo/cli.py":      "def main():\n    print('hi')\n",
		}
	}
	if s.WheelVersion == "" {
		s.WheelVersion = "1.0"
	}
}

// Filename returns the wheel filename for s.
func (s Spec) Filename() string {
	s.defaults()
	if s.FileName != "" {
		return s.FileName
	}
	return fmt.Sprintf("%s-%s-%s.whl", s.Name, s.Version, s.Tag)
}

// Write builds the wheel in dir and returns its path.
func Write(t *testing.T, dir string, s Spec) string {
	t.Helper()
	s.defaults()

	distInfo := fmt.Sprintf("%s-%s.dist-info", s.Name, s.Version)
	files := make(map[string]string, len(s.Files)+4)
	for k, v := range s.Files {
		files[k] = v
	}

	meta := []string{"Metadata-Version: 2.1", "Name: " + s.Name, "Version: " + s.Version}
	meta = append(meta, s.Metadata...)
	files[distInfo+"/METADATA"] = strings.Join(meta, "\n") + "\n\nLong description.\n"
	files[distInfo+"/WHEEL"] = fmt.Sprintf(
		"Wheel-Version: %s\nGenerator: wheeltest\nRoot-Is-Purelib: true\nTag: %s\n", s.WheelVersion, s.Tag)
	if s.EntryPoints != "" {
		files[distInfo+"/entry_points.txt"] = s.EntryPoints
	}

	names := make([]string, 0, len(files))
	for k := range files {
		names = append(names, k)
	}
	sort.Strings(names)

	var record strings.Builder
	for _, n := range names {
		sum := sha256.Sum256([]byte(files[n]))
		fmt.Fprintf(&record, "%s,sha256=%s,%d\n", n,
			base64.RawURLEncoding.EncodeToString(sum[:]), len(files[n]))
	}
	fmt.Fprintf(&record, "%s/RECORD,,\n", distInfo)
	files[distInfo+"/RECORD"] = record.String()
	names = append(names, distInfo+"/RECORD")

	for k, v := range s.Tamper {
		if _, ok := files[k]; !ok {
			names = append(names, k)
		}
		files[k] = v
	}

	omit := make(map[string]bool)
	for _, o := range s.Omit {
		omit[distInfo+"/"+o] = true
	}

	path := filepath.Join(dir, s.Filename())
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, n := range names {
		if omit[n] {
			continue
		}
		hdr := &zip.FileHeader{Name: n, Method: zip.Deflate, Modified: ModTime}
		hdr.SetMode(0o644)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[n])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}
