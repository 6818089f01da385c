// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conda

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/wheel2conda/pkg/types"
)

type pathEntry struct {
	Path              string `json:"_path"`
	PathType          string `json:"path_type"`
	SHA256            string `json:"sha256"`
	SizeInBytes       int    `json:"size_in_bytes"`
	FileMode          string `json:"file_mode,omitempty"`
	PrefixPlaceholder string `json:"prefix_placeholder,omitempty"`
}

type pathsJSON struct {
	Paths        []pathEntry `json:"paths"`
	PathsVersion int         `json:"paths_version"`
}

func (b *builder) infoFiles(index types.IndexRecord) ([]File, error) {
	indexJSON, err := marshalJSON(index)
	if err != nil {
		return nil, fmt.Errorf("encoding index.json: %w", err)
	}
	aboutJSON, err := marshalJSON(types.AboutRecord{
		Home:    b.record.HomePage,
		License: index.License,
		Summary: b.record.Summary,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding about.json: %w", err)
	}

	var files, hasPrefix strings.Builder
	paths := pathsJSON{Paths: make([]pathEntry, 0, len(b.files)), PathsVersion: 1}
	for _, f := range b.files {
		files.WriteString(f.Path + "\n")
		sum := sha256.Sum256(f.Data)
		pe := pathEntry{
			Path:        f.Path,
			PathType:    "hardlink",
			SHA256:      hex.EncodeToString(sum[:]),
			SizeInBytes: len(f.Data),
		}
		if f.HasPrefix {
			fmt.Fprintf(&hasPrefix, "%s text %s\n", Prefix, f.Path)
			pe.FileMode = "text"
			pe.PrefixPlaceholder = Prefix
		}
		paths.Paths = append(paths.Paths, pe)
	}
	pathsData, err := marshalJSON(paths)
	if err != nil {
		return nil, fmt.Errorf("encoding paths.json: %w", err)
	}

	return []File{
		{Path: "info/about.json", Data: aboutJSON, Mode: 0o644},
		{Path: "info/files", Data: []byte(files.String()), Mode: 0o644},
		{Path: "info/has_prefix", Data: []byte(hasPrefix.String()), Mode: 0o644},
		{Path: "info/index.json", Data: indexJSON, Mode: 0o644},
		{Path: "info/paths.json", Data: pathsData, Mode: 0o644},
	}, nil
}

// marshalJSON indents with two spaces and leaves <, > and & unescaped so
// match specs stay readable.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// recordHash returns the unpadded urlsafe base64 sha256 digest used in
// RECORD files.
func recordHash(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func encodeCSV(rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	_ = w.WriteAll(rows)
	return buf.Bytes()
}
