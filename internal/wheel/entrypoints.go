// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wheel

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// ErrBadEntryPoint is returned for an entry point that is not module:func.
var ErrBadEntryPoint = errors.New("bad entry point")

// EntryPoint is one console_scripts or gui_scripts declaration.
type EntryPoint struct {
	Name   string
	Module string
	// Func is the attribute path inside Module (e.g. "cli.main").
	Func string
	GUI  bool
}

// ParseEntryPoints parses an entry_points.txt file.
func ParseEntryPoints(data []byte) ([]EntryPoint, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:  "=",
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing entry_points.txt: %v", ErrBadEntryPoint, err)
	}

	var eps []EntryPoint
	for _, group := range []struct {
		section string
		gui     bool
	}{{"console_scripts", false}, {"gui_scripts", true}} {
		if !cfg.HasSection(group.section) {
			continue
		}
		for _, key := range cfg.Section(group.section).Keys() {
			ep, err := parseEntryPoint(key.Name(), key.Value())
			if err != nil {
				return nil, err
			}
			ep.GUI = group.gui
			eps = append(eps, ep)
		}
	}
	return eps, nil
}

func parseEntryPoint(name, value string) (EntryPoint, error) {
	v := strings.TrimSpace(value)
	if i := strings.Index(v, "["); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if strings.Count(v, ":") != 1 {
		return EntryPoint{}, fmt.Errorf("%w: %s = %q", ErrBadEntryPoint, name, value)
	}
	mod, fn, _ := strings.Cut(v, ":")
	mod, fn = strings.TrimSpace(mod), strings.TrimSpace(fn)
	if name == "" || mod == "" || fn == "" {
		return EntryPoint{}, fmt.Errorf("%w: %s = %q", ErrBadEntryPoint, name, value)
	}
	// The name becomes a file under bin/ or Scripts/.
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || name == "." {
		return EntryPoint{}, fmt.Errorf("%w: script name %q is not a plain file name", ErrBadEntryPoint, name)
	}
	return EntryPoint{Name: name, Module: mod, Func: fn}, nil
}
