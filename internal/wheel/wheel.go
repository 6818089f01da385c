// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wheel reads and validates Python wheel archives.
package wheel

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	version "github.com/aquasecurity/go-pep440-version"

	"github.com/pdiddy/wheel2conda/internal/requirements"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

// ErrBadWheel is returned when the archive layout or metadata does not
// conform to the wheel format.
var ErrBadWheel = errors.New("invalid wheel")

// Entry is one regular file from the wheel archive.
type Entry struct {
	// Name is the slash-separated archive path.
	Name     string
	Mode     fs.FileMode
	Modified time.Time
	Data     []byte
}

// Wheel is an opened wheel archive held in memory.
type Wheel struct {
	Filename Filename

	// Metadata is the parsed .dist-info/METADATA file.
	Metadata Metadata

	// Info is the parsed .dist-info/WHEEL file.
	Info Metadata

	// DistInfo is the top-level .dist-info directory name.
	DistInfo string

	// DataDir is the top-level .data directory name, or "" if absent.
	DataDir string

	// Entries lists every regular file sorted by name.
	Entries []Entry

	index map[string]int
}

// Open reads the wheel at path. It fails with ErrBadFilename or ErrBadWheel
// when the filename or archive layout is malformed.
func Open(path string) (*Wheel, error) {
	fn, err := ParseFilename(path)
	if err != nil {
		return nil, err
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrBadWheel, path, err)
	}
	defer zr.Close()
	return read(fn, &zr.Reader)
}

// Read parses a wheel from r. name is used for the filename fields only.
func Read(name string, r io.ReaderAt, size int64) (*Wheel, error) {
	fn, err := ParseFilename(name)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrBadWheel, name, err)
	}
	return read(fn, zr)
}

func read(fn Filename, zr *zip.Reader) (*Wheel, error) {
	w := &Wheel{Filename: fn, index: make(map[string]int)}

	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		clean := path.Clean(f.Name)
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return nil, fmt.Errorf("%w: entry %q escapes the archive root", ErrBadWheel, f.Name)
		}

		top, rest, isDir := strings.Cut(clean, "/")
		switch {
		case strings.HasSuffix(top, ".dist-info"):
			if !isDir || rest == "" {
				return nil, fmt.Errorf("%w: %s is not a directory", ErrBadWheel, top)
			}
			if w.DistInfo != "" && w.DistInfo != top {
				return nil, fmt.Errorf("%w: multiple .dist-info directories (%s, %s)", ErrBadWheel, w.DistInfo, top)
			}
			w.DistInfo = top
		case strings.HasSuffix(top, ".data"):
			if !isDir || rest == "" {
				return nil, fmt.Errorf("%w: %s is not a directory", ErrBadWheel, top)
			}
			if w.DataDir != "" && w.DataDir != top {
				return nil, fmt.Errorf("%w: multiple .data directories (%s, %s)", ErrBadWheel, w.DataDir, top)
			}
			w.DataDir = top
		}

		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrBadWheel, f.Name, err)
		}
		mode := fs.FileMode(0o644)
		if f.Mode()&0o111 != 0 {
			mode = 0o755
		}
		w.Entries = append(w.Entries, Entry{
			Name:     clean,
			Mode:     mode,
			Modified: f.Modified.UTC().Truncate(time.Second),
			Data:     data,
		})
	}

	if w.DistInfo == "" {
		return nil, fmt.Errorf("%w: didn't find .dist-info directory", ErrBadWheel)
	}

	sort.Slice(w.Entries, func(i, j int) bool { return w.Entries[i].Name < w.Entries[j].Name })
	for i, e := range w.Entries {
		w.index[e.Name] = i
	}

	var err error
	if w.Metadata, err = w.parseDistInfo("METADATA"); err != nil {
		return nil, err
	}
	if w.Info, err = w.parseDistInfo("WHEEL"); err != nil {
		return nil, err
	}
	if _, ok := w.File(w.DistInfo + "/RECORD"); !ok {
		return nil, fmt.Errorf("%w: missing %s/RECORD", ErrBadWheel, w.DistInfo)
	}
	return w, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (w *Wheel) parseDistInfo(name string) (Metadata, error) {
	data, ok := w.File(w.DistInfo + "/" + name)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s/%s", ErrBadWheel, w.DistInfo, name)
	}
	m, err := ParseMetadata(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s/%s: %v", ErrBadWheel, w.DistInfo, name, err)
	}
	return m, nil
}

// File returns the contents of the archive entry at name.
func (w *Wheel) File(name string) ([]byte, bool) {
	i, ok := w.index[name]
	if !ok {
		return nil, false
	}
	return w.Entries[i].Data, true
}

// Check validates the WHEEL and METADATA fields the conversion relies on.
func (w *Wheel) Check() error {
	wv := w.Info.Get("Wheel-Version")
	if wv == "" {
		return fmt.Errorf("%w: WHEEL has no Wheel-Version", ErrBadWheel)
	}
	if major, _, _ := strings.Cut(wv, "."); major != "1" {
		return fmt.Errorf("%w: unsupported Wheel-Version %s (only 1.x is understood)", ErrBadWheel, wv)
	}

	for _, field := range []string{"Name", "Version"} {
		if w.Metadata.Get(field) == "" {
			return fmt.Errorf("%w: missing required metadata field: %s", ErrBadWheel, field)
		}
	}

	name := w.Metadata.Get("Name")
	if requirements.NormalizeName(name) != requirements.NormalizeName(w.Filename.Name) {
		return fmt.Errorf("%w: filename names %q but METADATA names %q", ErrBadWheel, w.Filename.Name, name)
	}
	if !sameVersion(w.Filename.Version, w.Metadata.Get("Version")) {
		return fmt.Errorf("%w: filename version %q does not match METADATA version %q",
			ErrBadWheel, w.Filename.Version, w.Metadata.Get("Version"))
	}
	return w.verifyRecord()
}

// verifyRecord checks that RECORD lists every archive file and that listed
// sha256 digests match. RECORD itself and its signatures carry no hash.
func (w *Wheel) verifyRecord() error {
	rows, err := w.RecordRows()
	if err != nil {
		return err
	}
	listed := make(map[string]bool, len(rows))
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		name := path.Clean(row[0])
		listed[name] = true
		data, ok := w.File(name)
		if !ok {
			return fmt.Errorf("%w: RECORD lists %s but the archive does not contain it", ErrBadWheel, name)
		}
		if len(row) < 2 || row[1] == "" {
			continue
		}
		algo, digest, _ := strings.Cut(row[1], "=")
		if algo != "sha256" {
			continue
		}
		sum := sha256.Sum256(data)
		if base64.RawURLEncoding.EncodeToString(sum[:]) != strings.TrimRight(digest, "=") {
			return fmt.Errorf("%w: %s does not match its RECORD hash", ErrBadWheel, name)
		}
	}

	unlisted := map[string]bool{
		w.DistInfo + "/RECORD":     true,
		w.DistInfo + "/RECORD.jws": true,
		w.DistInfo + "/RECORD.p7s": true,
	}
	for _, e := range w.Entries {
		if !listed[e.Name] && !unlisted[e.Name] {
			return fmt.Errorf("%w: %s is missing from RECORD", ErrBadWheel, e.Name)
		}
	}
	return nil
}

func sameVersion(fromFilename, fromMetadata string) bool {
	if fromFilename == strings.ReplaceAll(fromMetadata, "-", "_") {
		return true
	}
	a, err := version.Parse(fromFilename)
	if err != nil {
		return false
	}
	b, err := version.Parse(fromMetadata)
	if err != nil {
		return false
	}
	return a.Equal(b)
}

// Record returns the source record for the wheel.
func (w *Wheel) Record() types.WheelRecord {
	lic := w.Metadata.Get("License-Expression")
	if lic == "" {
		lic = w.Metadata.Get("License")
	}
	return types.WheelRecord{
		Name:           w.Metadata.Get("Name"),
		Version:        w.Metadata.Get("Version"),
		RequiresDist:   w.Metadata.Values("Requires-Dist"),
		RequiresPython: w.Metadata.Get("Requires-Python"),
		Tags:           w.Filename.TagStrings(),
		RootIsPurelib:  strings.EqualFold(w.Info.Get("Root-Is-Purelib"), "true"),
		Summary:        w.Metadata.Get("Summary"),
		HomePage:       w.homePage(),
		License:        lic,
		Classifiers:    w.Metadata.Values("Classifier"),
	}
}

func (w *Wheel) homePage() string {
	if hp := w.Metadata.Get("Home-page"); hp != "" {
		return hp
	}
	for _, pu := range w.Metadata.Values("Project-URL") {
		label, url, ok := strings.Cut(pu, ",")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "homepage", "home", "home-page", "source":
			return strings.TrimSpace(url)
		}
	}
	return ""
}

// RecordRows parses the wheel's own RECORD file.
func (w *Wheel) RecordRows() ([][]string, error) {
	data, _ := w.File(w.DistInfo + "/RECORD")
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parsing RECORD: %v", ErrBadWheel, err)
	}
	return rows, nil
}

// EntryPoints returns the console and GUI scripts declared in
// entry_points.txt. A wheel without the file has none.
func (w *Wheel) EntryPoints() ([]EntryPoint, error) {
	data, ok := w.File(w.DistInfo + "/entry_points.txt")
	if !ok {
		return nil, nil
	}
	return ParseEntryPoints(data)
}

// ModTime returns the newest entry modification time. Generated files use it
// so repeated conversions produce identical archives.
func (w *Wheel) ModTime() time.Time {
	var newest time.Time
	for _, e := range w.Entries {
		if e.Modified.After(newest) {
			newest = e.Modified
		}
	}
	return newest
}
