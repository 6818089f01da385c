// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/wheel2conda/pkg/types"
)

// RepodataFile is the per-subdir index file name.
const RepodataFile = "repodata.json"

// RepodataInfo is the "info" block of repodata.json.
type RepodataInfo struct {
	Subdir string `json:"subdir"`
}

// Repodata is the content of a subdir's repodata.json.
type Repodata struct {
	Info            RepodataInfo                 `json:"info"`
	Packages        map[string]types.IndexRecord `json:"packages"`
	PackagesConda   map[string]types.IndexRecord `json:"packages.conda"`
	Removed         []string                     `json:"removed"`
	RepodataVersion int                          `json:"repodata_version"`
}

// BuildRepodata assembles the repodata for subdir from the store.
func BuildRepodata(ctx context.Context, store *Store, subdir string) (Repodata, error) {
	entries, err := store.Entries(ctx, subdir)
	if err != nil {
		return Repodata{}, err
	}
	rd := Repodata{
		Info:            RepodataInfo{Subdir: subdir},
		Packages:        make(map[string]types.IndexRecord),
		PackagesConda:   make(map[string]types.IndexRecord),
		Removed:         []string{},
		RepodataVersion: 1,
	}
	for _, e := range entries {
		if e.Format == types.FormatConda {
			rd.PackagesConda[e.Filename] = e.Record
		} else {
			rd.Packages[e.Filename] = e.Record
		}
	}
	return rd, nil
}

// ReadRepodata loads a repodata.json file.
func ReadRepodata(path string) (Repodata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Repodata{}, err
	}
	var rd Repodata
	if err := json.Unmarshal(data, &rd); err != nil {
		return Repodata{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rd, nil
}

func writeRepodata(ctx context.Context, store *Store, dir, subdir string) error {
	rd, err := BuildRepodata(ctx, store, subdir)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rd); err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", subdir, RepodataFile, err)
	}

	path := filepath.Join(dir, subdir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return os.WriteFile(filepath.Join(path, RepodataFile), buf.Bytes(), 0o644)
}
