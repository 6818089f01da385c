// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package platform maps wheel compatibility tags onto conda platform
// subdirectories and Python versions.
package platform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/wheel2conda/internal/requirements"
)

var (
	// ErrUnsupportedTag is returned for a compatibility tag with no conda
	// equivalent.
	ErrUnsupportedTag = errors.New("unsupported compatibility tag")

	// ErrUnknownPlatform is returned for a subdir name that is not a conda
	// platform this tool builds for.
	ErrUnknownPlatform = errors.New("unknown conda platform")
)

// Platform is a conda operating system and architecture pair.
type Platform struct {
	// OS is the conda platform name: linux, osx or win.
	OS string
	// Arch is the subdir suffix: 64, 32, aarch64, arm64, ppc64le or s390x.
	Arch string
}

type archInfo struct {
	index   string // index.json arch
	machine string // platform.machine() on that system
}

var known = map[string]archInfo{
	"linux-64":      {"x86_64", "x86_64"},
	"linux-32":      {"x86", "i686"},
	"linux-aarch64": {"aarch64", "aarch64"},
	"linux-ppc64le": {"ppc64le", "ppc64le"},
	"linux-s390x":   {"s390x", "s390x"},
	"osx-64":        {"x86_64", "x86_64"},
	"osx-arm64":     {"arm64", "arm64"},
	"win-64":        {"x86_64", "AMD64"},
	"win-32":        {"x86", "x86"},
	"win-arm64":     {"arm64", "ARM64"},
}

// Parse returns the platform for a conda subdir such as "linux-64".
func Parse(subdir string) (Platform, error) {
	if _, ok := known[subdir]; !ok {
		return Platform{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, subdir)
	}
	os, arch, _ := strings.Cut(subdir, "-")
	return Platform{OS: os, Arch: arch}, nil
}

func mustParse(subdir string) Platform {
	p, err := Parse(subdir)
	if err != nil {
		panic(err)
	}
	return p
}

// Subdir returns the conda directory name (e.g. "osx-arm64").
func (p Platform) Subdir() string {
	return p.OS + "-" + p.Arch
}

// IndexArch returns the value of the index.json "arch" field.
func (p Platform) IndexArch() string {
	return known[p.Subdir()].index
}

// Windows reports whether p uses the Windows prefix layout.
func (p Platform) Windows() bool {
	return p.OS == "win"
}

// Env returns the PEP 508 marker environment for CPython at python ("X.Y")
// on p.
func (p Platform) Env(python string) requirements.Env {
	env := requirements.Env{
		"python_version":                 python,
		"python_full_version":            python + ".0",
		"implementation_version":         python + ".0",
		"implementation_name":            "cpython",
		"platform_python_implementation": "CPython",
		"platform_machine":               known[p.Subdir()].machine,
	}
	switch p.OS {
	case "linux":
		env["sys_platform"], env["os_name"], env["platform_system"] = "linux", "posix", "Linux"
	case "osx":
		env["sys_platform"], env["os_name"], env["platform_system"] = "darwin", "posix", "Darwin"
	case "win":
		env["sys_platform"], env["os_name"], env["platform_system"] = "win32", "nt", "Windows"
	}
	return env
}

var (
	linuxTag = regexp.MustCompile(`^(?:many|musl)?linux(?:1|2010|2014|_\d+_\d+)?_(.+)$`)
	macTag   = regexp.MustCompile(`^macosx_\d+_\d+_(.+)$`)
)

// FromTag returns the platforms a wheel platform tag can be installed on.
// The "any" tag is not handled here; it applies to every platform.
func FromTag(tag string) ([]Platform, error) {
	var subdirs []string

	if m := linuxTag.FindStringSubmatch(tag); m != nil {
		switch m[1] {
		case "x86_64":
			subdirs = []string{"linux-64"}
		case "i686", "i386":
			subdirs = []string{"linux-32"}
		case "aarch64":
			subdirs = []string{"linux-aarch64"}
		case "ppc64le":
			subdirs = []string{"linux-ppc64le"}
		case "s390x":
			subdirs = []string{"linux-s390x"}
		}
	} else if m := macTag.FindStringSubmatch(tag); m != nil {
		switch m[1] {
		case "x86_64", "intel", "universal":
			subdirs = []string{"osx-64"}
		case "arm64":
			subdirs = []string{"osx-arm64"}
		case "universal2":
			subdirs = []string{"osx-64", "osx-arm64"}
		}
	} else {
		switch tag {
		case "win32":
			subdirs = []string{"win-32"}
		case "win_amd64":
			subdirs = []string{"win-64"}
		case "win_arm64":
			subdirs = []string{"win-arm64"}
		}
	}

	if len(subdirs) == 0 {
		return nil, fmt.Errorf("%w: platform %q", ErrUnsupportedTag, tag)
	}
	out := make([]Platform, len(subdirs))
	for i, s := range subdirs {
		out[i] = mustParse(s)
	}
	return out, nil
}
