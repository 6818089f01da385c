// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns one wheel into conda archives under a channel
// directory. A run either writes every planned archive or none of them.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/wheel2conda/internal/conda"
	"github.com/pdiddy/wheel2conda/internal/ctxlog"
	"github.com/pdiddy/wheel2conda/internal/platform"
	"github.com/pdiddy/wheel2conda/internal/requirements"
	"github.com/pdiddy/wheel2conda/internal/wheel"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

// Result holds the outcome of a conversion run.
type Result struct {
	// Written lists the archive paths in the order they were written.
	Written []string
	// Subdirs lists the platform directories that received an archive.
	Subdirs []string
}

// Total returns the number of archives written.
func (r Result) Total() int {
	return len(r.Written)
}

// Plan returns the targets w is converted for under cfg without writing
// anything.
func Plan(w *wheel.Wheel, cfg types.ConvertConfig) ([]types.Target, error) {
	rec := w.Record()
	return platform.Targets(w.Filename.Tags, cfg.PythonVersions, cfg.Platforms, rec.RequiresPython)
}

// Load opens and validates the wheel at path.
func Load(path string) (*wheel.Wheel, error) {
	w, err := wheel.Open(path)
	if err != nil {
		return nil, err
	}
	if err := w.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return w, nil
}

// Convert converts the wheel at wheelPath for every applicable target and
// writes the archives to cfg.OutputDir/<subdir>/. Progress lines go to out.
// On error every archive written by this call is removed.
func Convert(ctx context.Context, wheelPath string, cfg types.ConvertConfig, out io.Writer) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	if !cfg.Format.Valid() {
		return Result{}, fmt.Errorf("unsupported archive format %q", cfg.Format)
	}

	w, err := Load(wheelPath)
	if err != nil {
		return Result{}, err
	}
	targets, err := Plan(w, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", filepath.Base(wheelPath), err)
	}
	logger.Debug("planned targets", "wheel", filepath.Base(wheelPath), "count", len(targets))

	// Every package is built before the first archive is written.
	opts := conda.Options{BuildNumber: cfg.BuildNumber, Names: requirements.Names(cfg.NameMap)}
	pkgs := make([]*conda.Package, 0, len(targets))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		pkg, err := conda.Build(w, target, opts)
		if err != nil {
			return Result{}, fmt.Errorf("building %s for %s python %s: %w",
				filepath.Base(wheelPath), target.Subdir, target.Python, err)
		}
		logger.Debug("built package", "subdir", target.Subdir, "python", target.Python,
			"files", len(pkg.Files), "depends", pkg.Index.Depends)
		pkgs = append(pkgs, pkg)
	}

	var result Result
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			rollback(ctx, result.Written)
			return Result{}, err
		}
		dest, err := writePackage(cfg.OutputDir, pkg, cfg.Format)
		if err != nil {
			rollback(ctx, result.Written)
			return Result{}, err
		}
		result.Written = append(result.Written, dest)
		if !seen[pkg.Index.Subdir] {
			seen[pkg.Index.Subdir] = true
			result.Subdirs = append(result.Subdirs, pkg.Index.Subdir)
		}
		fmt.Fprintf(out, "converted: %s/%s\n", pkg.Index.Subdir, filepath.Base(dest))
	}

	fmt.Fprintf(out, "\nConversion summary: %d archives in %d platform directories\n",
		result.Total(), len(result.Subdirs))
	return result, nil
}

// writePackage serialises pkg next to its final location and renames it into
// place.
func writePackage(root string, pkg *conda.Package, format types.ArchiveFormat) (string, error) {
	dir := filepath.Join(root, pkg.Index.Subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := conda.Write(&buf, pkg, format); err != nil {
		return "", fmt.Errorf("writing %s: %w", pkg.Filename(format), err)
	}

	dest := filepath.Join(dir, pkg.Filename(format))
	tmp, err := os.CreateTemp(dir, ".wheel2conda-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("setting mode on %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("moving %s into place: %w", dest, err)
	}
	return dest, nil
}

func rollback(ctx context.Context, written []string) {
	logger := ctxlog.FromContext(ctx)
	for _, p := range written {
		if err := os.Remove(p); err != nil {
			logger.Warn("removing partial output", "path", p, "error", err)
			continue
		}
		logger.Debug("removed partial output", "path", p)
	}
}
