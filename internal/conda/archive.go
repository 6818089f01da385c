// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conda

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"

	"github.com/pdiddy/wheel2conda/pkg/types"
)

// Write serialises pkg to w in the given container format.
func Write(w io.Writer, pkg *Package, format types.ArchiveFormat) error {
	switch format {
	case types.FormatTarBz2:
		return WriteTarBz2(w, pkg)
	case types.FormatConda:
		return WriteConda(w, pkg)
	}
	return fmt.Errorf("unsupported archive format %q", format)
}

// WriteTarBz2 writes the legacy format: one bzip2 tarball with info/ first.
func WriteTarBz2(w io.Writer, pkg *Package) error {
	bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return fmt.Errorf("creating bzip2 writer: %w", err)
	}
	files := make([]File, 0, len(pkg.Info)+len(pkg.Files))
	files = append(files, pkg.Info...)
	files = append(files, pkg.Files...)
	if err := writeTar(bw, files, pkg.ModTime); err != nil {
		bw.Close()
		return err
	}
	return bw.Close()
}

// WriteConda writes the v2 format: an uncompressed zip holding
// metadata.json and zstd tarballs for info/ and the payload.
func WriteConda(w io.Writer, pkg *Package) error {
	zw := zip.NewWriter(w)

	members := []struct {
		name  string
		files []File
	}{
		{"info-" + pkg.Basename + ".tar.zst", pkg.Info},
		{"pkg-" + pkg.Basename + ".tar.zst", pkg.Files},
	}

	if err := addZipMember(zw, "metadata.json", []byte(`{"conda_pkg_format_version": 2}`), pkg.ModTime); err != nil {
		return err
	}
	for _, m := range members {
		data, err := zstdTar(m.files, pkg.ModTime)
		if err != nil {
			return fmt.Errorf("compressing %s: %w", m.name, err)
		}
		if err := addZipMember(zw, m.name, data, pkg.ModTime); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addZipMember(zw *zip.Writer, name string, data []byte, mtime time.Time) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Store, Modified: mtime}
	hdr.SetMode(0o644)
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func zstdTar(files []File, mtime time.Time) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}
	if err := writeTar(enc, files, mtime); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeTar writes files with fixed ownership and mtime so identical input
// gives identical bytes.
func writeTar(w io.Writer, files []File, mtime time.Time) error {
	tw := tar.NewWriter(w)
	for _, f := range files {
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     f.Path,
			Mode:     int64(f.Mode.Perm()),
			Size:     int64(len(f.Data)),
			ModTime:  mtime,
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing tar header for %s: %w", f.Path, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}
	return tw.Close()
}
