// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package channel

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/wheel2conda/internal/conda"
	"github.com/pdiddy/wheel2conda/internal/ctxlog"
	"github.com/pdiddy/wheel2conda/internal/platform"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

// Noarch is the platform-independent subdir every channel carries.
const Noarch = "noarch"

// Summary holds counts from an index run.
type Summary struct {
	Subdirs  int
	Packages int
}

// Index rebuilds repodata.json for each subdir of dir. With no subdirs
// given, every platform directory found in dir is indexed. noarch is always
// indexed so dir is a valid channel. An unreadable archive aborts the run.
func Index(ctx context.Context, dir string, subdirs []string, w io.Writer) (Summary, error) {
	logger := ctxlog.FromContext(ctx)

	if len(subdirs) == 0 {
		found, err := discoverSubdirs(dir)
		if err != nil {
			return Summary{}, err
		}
		subdirs = found
	}
	subdirs = withNoarch(subdirs)

	store, err := NewStore()
	if err != nil {
		return Summary{}, err
	}
	defer store.Close()

	var summary Summary
	for _, subdir := range subdirs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		n, err := scanSubdir(ctx, store, dir, subdir)
		if err != nil {
			return summary, err
		}
		if err := writeRepodata(ctx, store, dir, subdir); err != nil {
			return summary, err
		}
		logger.Debug("indexed subdir", "subdir", subdir, "packages", n)
		fmt.Fprintf(w, "indexed: %s (%d packages)\n", subdir, n)
		summary.Subdirs++
	}

	if summary.Packages, err = store.Count(ctx); err != nil {
		return summary, err
	}
	fmt.Fprintf(w, "\nIndex summary: %d packages in %d subdirs\n", summary.Packages, summary.Subdirs)
	return summary, nil
}

// discoverSubdirs returns the directories of dir named after a known conda
// platform.
func discoverSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading channel directory %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := platform.Parse(e.Name()); err == nil {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func withNoarch(subdirs []string) []string {
	seen := make(map[string]bool, len(subdirs)+1)
	out := make([]string, 0, len(subdirs)+1)
	for _, s := range append(subdirs, Noarch) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func archiveFormat(name string) (types.ArchiveFormat, bool) {
	for _, f := range []types.ArchiveFormat{types.FormatTarBz2, types.FormatConda} {
		if strings.HasSuffix(name, f.Ext()) {
			return f, true
		}
	}
	return "", false
}

func scanSubdir(ctx context.Context, store *Store, dir, subdir string) (int, error) {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(dir, subdir)

	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	n := 0
	for _, e := range entries {
		format, ok := archiveFormat(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}

		archive := filepath.Join(path, e.Name())
		rec, err := conda.ReadIndex(archive)
		if err != nil {
			return n, err
		}
		if rec.Subdir != "" && rec.Subdir != subdir {
			logger.Warn("archive subdir does not match its directory",
				"archive", archive, "subdir", rec.Subdir)
		}
		if rec.MD5, rec.SHA256, rec.Size, err = digest(archive); err != nil {
			return n, err
		}

		if err := store.Add(ctx, Entry{Subdir: subdir, Filename: e.Name(), Format: format, Record: rec}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func digest(path string) (md5sum, sha256sum string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", 0, err
	}
	defer f.Close()

	m, s := md5.New(), sha256.New()
	size, err = io.Copy(io.MultiWriter(m, s), f)
	if err != nil {
		return "", "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(m.Sum(nil)), hex.EncodeToString(s.Sum(nil)), size, nil
}
