// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wheel

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"strings"
)

// Metadata holds the header fields of a METADATA or WHEEL file. Keys are
// stored in canonical MIME form so lookups are case-insensitive.
type Metadata map[string][]string

// Get returns the first value for key, or "" if absent.
func (m Metadata) Get(key string) string {
	if v := m[textproto.CanonicalMIMEHeaderKey(key)]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns every value for key in file order.
func (m Metadata) Values(key string) []string {
	return m[textproto.CanonicalMIMEHeaderKey(key)]
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}

// ParseMetadata reads RFC 822 style headers up to the first blank line.
// Repeated keys accumulate; indented lines continue the previous value.
func ParseMetadata(r io.Reader) (Metadata, error) {
	m := make(Metadata)
	var lastKey string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey == "" {
				return nil, fmt.Errorf("line %d: continuation before any header", lineNo)
			}
			vals := m[lastKey]
			vals[len(vals)-1] += "\n" + strings.TrimSpace(line)
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("line %d: expected \"Key: value\", got %q", lineNo, line)
		}
		lastKey = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(k))
		m[lastKey] = append(m[lastKey], strings.TrimSpace(v))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
