// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conda

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"

	"github.com/pdiddy/wheel2conda/pkg/types"
)

const indexPath = "info/index.json"

// ReadIndex returns info/index.json from the archive at path. The format is
// chosen by extension.
func ReadIndex(path string) (types.IndexRecord, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasSuffix(path, types.FormatTarBz2.Ext()):
		data, err = readTarBz2Member(path, indexPath)
	case strings.HasSuffix(path, types.FormatConda.Ext()):
		data, err = readCondaInfoMember(path, indexPath)
	default:
		return types.IndexRecord{}, fmt.Errorf("%s: not a conda archive", path)
	}
	if err != nil {
		return types.IndexRecord{}, fmt.Errorf("reading %s from %s: %w", indexPath, path, err)
	}

	var rec types.IndexRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.IndexRecord{}, fmt.Errorf("parsing %s in %s: %w", indexPath, path, err)
	}
	return rec, nil
}

func readTarBz2Member(path, name string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer br.Close()
	return findTarMember(br, name)
}

func readCondaInfoMember(path, name string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "info-") || !strings.HasSuffix(f.Name, ".tar.zst") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return findTarMember(dec, name)
	}
	return nil, errors.New("no info-*.tar.zst member")
}

func findTarMember(r io.Reader, name string) ([]byte, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s not found", name)
		}
		if err != nil {
			return nil, err
		}
		if hdr.Name == name {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, tr); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}
	}
}
