// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conda lays out a wheel as a conda package and writes it as a
// .tar.bz2 or .conda archive.
package conda

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/wheel2conda/internal/platform"
	"github.com/pdiddy/wheel2conda/internal/requirements"
	"github.com/pdiddy/wheel2conda/internal/wheel"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

// Prefix is the placeholder conda replaces with the environment prefix at
// install time.
const Prefix = "/opt/anaconda1anaconda2anaconda3"

// ErrUnsupportedDataDir is returned for a .data subdirectory other than
// data, scripts, purelib, platlib or headers.
var ErrUnsupportedDataDir = errors.New("unsupported .data scheme")

// File is one archive member.
type File struct {
	Path string
	Data []byte
	Mode fs.FileMode
	// HasPrefix marks text files containing Prefix.
	HasPrefix bool
}

// Package is a fully laid out conda package.
type Package struct {
	// Basename is the archive name without extension
	// (e.g. "demo-1.0-py311_0").
	Basename string
	Index    types.IndexRecord
	// Files is the payload sorted by path.
	Files []File
	// Info holds the info/ metadata files.
	Info    []File
	ModTime time.Time
}

// Filename returns the archive filename for format.
func (p *Package) Filename(format types.ArchiveFormat) string {
	return p.Basename + format.Ext()
}

// Options tunes a build.
type Options struct {
	BuildNumber int
	Names       requirements.Names
}

type builder struct {
	wheel    *wheel.Wheel
	record   types.WheelRecord
	platform platform.Platform
	python   string
	opts     Options
	files    []File
}

// Build lays out w for target.
func Build(w *wheel.Wheel, target types.Target, opts Options) (*Package, error) {
	plat, err := platform.Parse(target.Subdir)
	if err != nil {
		return nil, err
	}
	b := &builder{
		wheel:    w,
		record:   w.Record(),
		platform: plat,
		python:   target.Python,
		opts:     opts,
	}
	if strings.ContainsAny(b.record.Version, "- ") {
		return nil, fmt.Errorf("version %q is not a valid conda version", b.record.Version)
	}

	if err := b.addWheelFiles(); err != nil {
		return nil, err
	}
	if err := b.addEntryPoints(); err != nil {
		return nil, err
	}
	b.addRecord()
	sort.Slice(b.files, func(i, j int) bool { return b.files[i].Path < b.files[j].Path })

	index, err := b.index()
	if err != nil {
		return nil, err
	}
	info, err := b.infoFiles(index)
	if err != nil {
		return nil, err
	}

	return &Package{
		Basename: fmt.Sprintf("%s-%s-%s", index.Name, index.Version, index.Build),
		Index:    index,
		Files:    b.files,
		Info:     info,
		ModTime:  w.ModTime(),
	}, nil
}

func (b *builder) sitePackages() string {
	if b.platform.Windows() {
		return "Lib/site-packages/"
	}
	return "lib/python" + b.python + "/site-packages/"
}

func (b *builder) scriptsDir() string {
	if b.platform.Windows() {
		return "Scripts/"
	}
	return "bin/"
}

func (b *builder) headersDir() string {
	name := requirements.NormalizeName(b.record.Name)
	if b.platform.Windows() {
		return "Include/" + name + "/"
	}
	return "include/python" + b.python + "/" + name + "/"
}

func (b *builder) interpreter(gui bool) string {
	if b.platform.Windows() {
		if gui {
			return Prefix + "/pythonw.exe"
		}
		return Prefix + "/python.exe"
	}
	return Prefix + "/bin/python"
}

func (b *builder) addWheelFiles() error {
	record := b.wheel.DistInfo + "/RECORD"
	for _, e := range b.wheel.Entries {
		if e.Name == record {
			continue
		}
		if b.wheel.DataDir != "" && strings.HasPrefix(e.Name, b.wheel.DataDir+"/") {
			if err := b.addDataFile(e); err != nil {
				return err
			}
			continue
		}
		b.files = append(b.files, File{Path: b.sitePackages() + e.Name, Data: e.Data, Mode: e.Mode})
	}
	return nil
}

func (b *builder) addDataFile(e wheel.Entry) error {
	scheme, rest, _ := strings.Cut(strings.TrimPrefix(e.Name, b.wheel.DataDir+"/"), "/")
	f := File{Data: e.Data, Mode: e.Mode}
	switch scheme {
	case "data":
		f.Path = rest
	case "purelib", "platlib":
		f.Path = b.sitePackages() + rest
	case "headers":
		f.Path = b.headersDir() + rest
	case "scripts":
		f.Path = b.scriptsDir() + rest
		f.Mode = 0o755
		if bytes.HasPrefix(e.Data, []byte("#!python")) {
			_, body, _ := bytes.Cut(e.Data, []byte("\n"))
			f.Data = append([]byte("#!"+b.interpreter(bytes.HasPrefix(e.Data, []byte("#!pythonw")))+"\n"), body...)
			f.HasPrefix = true
		}
	default:
		return fmt.Errorf("%w: %s/%s", ErrUnsupportedDataDir, b.wheel.DataDir, scheme)
	}
	if rest == "" {
		return fmt.Errorf("%w: %s is not a file inside a scheme directory", ErrUnsupportedDataDir, e.Name)
	}
	b.files = append(b.files, f)
	return nil
}

const scriptTemplate = `#!%s
# -*- coding: utf-8 -*-
import re
import sys

from %s import %s

if __name__ == '__main__':
    sys.argv[0] = re.sub(r'(-script\.pyw?|\.exe|\.bat)?$', '', sys.argv[0])
    sys.exit(%s())
`

const batchTemplate = "@echo off\r\n\"%%~dp0..\\%s\" \"%%~dp0%s\" %%*\r\n"

func (b *builder) addEntryPoints() error {
	eps, err := b.wheel.EntryPoints()
	if err != nil {
		return err
	}
	for _, ep := range eps {
		head, _, _ := strings.Cut(ep.Func, ".")
		script := fmt.Sprintf(scriptTemplate, b.interpreter(ep.GUI), ep.Module, head, ep.Func)

		if !b.platform.Windows() {
			b.files = append(b.files, File{
				Path: b.scriptsDir() + ep.Name, Data: []byte(script), Mode: 0o755, HasPrefix: true,
			})
			continue
		}

		scriptName, exe := ep.Name+"-script.py", "python.exe"
		if ep.GUI {
			scriptName, exe = ep.Name+"-script.pyw", "pythonw.exe"
		}
		b.files = append(b.files,
			File{Path: b.scriptsDir() + scriptName, Data: []byte(script), Mode: 0o644, HasPrefix: true},
			File{Path: b.scriptsDir() + ep.Name + ".bat", Data: []byte(fmt.Sprintf(batchTemplate, exe, scriptName)), Mode: 0o755},
		)
	}
	return nil
}

// addRecord writes a PEP 376 RECORD describing the installed layout. Paths
// outside site-packages are relative to it.
func (b *builder) addRecord() {
	site := b.sitePackages()
	toPrefix := "../../.."
	if b.platform.Windows() {
		toPrefix = "../.."
	}
	recordPath := site + b.wheel.DistInfo + "/RECORD"

	rows := make([][]string, 0, len(b.files)+1)
	for _, f := range b.files {
		rel := strings.TrimPrefix(f.Path, site)
		if rel == f.Path {
			rel = path.Join(toPrefix, f.Path)
		}
		rows = append(rows, []string{rel, "sha256=" + recordHash(f.Data), fmt.Sprint(len(f.Data))})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	rows = append(rows, []string{strings.TrimPrefix(recordPath, site), "", ""})

	b.files = append(b.files, File{Path: recordPath, Data: encodeCSV(rows), Mode: 0o644})
}

func (b *builder) index() (types.IndexRecord, error) {
	env := b.platform.Env(b.python)
	deps, err := requirements.ToConda(b.record.RequiresDist, env, b.opts.Names)
	if err != nil {
		return types.IndexRecord{}, err
	}
	nodot := strings.ReplaceAll(b.python, ".", "")
	return types.IndexRecord{
		Arch:        b.platform.IndexArch(),
		Build:       fmt.Sprintf("py%s_%d", nodot, b.opts.BuildNumber),
		BuildNumber: b.opts.BuildNumber,
		Depends:     append([]string{"python " + b.python + ".*"}, deps...),
		License:     IdentifyLicense(b.record),
		Name:        b.opts.Names.Conda(b.record.Name),
		Platform:    b.platform.OS,
		Subdir:      b.platform.Subdir(),
		Version:     b.record.Version,
	}, nil
}
