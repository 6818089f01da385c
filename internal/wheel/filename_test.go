// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wheel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Filename
	}{
		{
			name:  "pure python",
			input: "requests-2.31.0-py3-none-any.whl",
			want: Filename{
				Name: "requests", Version: "2.31.0",
				Tags: []Tag{{"py3", "none", "any"}},
			},
		},
		{
			name:  "compressed python tag",
			input: "/tmp/dl/six-1.16.0-py2.py3-none-any.whl",
			want: Filename{
				Name: "six", Version: "1.16.0",
				Tags: []Tag{{"py2", "none", "any"}, {"py3", "none", "any"}},
			},
		},
		{
			name:  "build tag",
			input: "demo-1.0-1local-py3-none-any.whl",
			want: Filename{
				Name: "demo", Version: "1.0", Build: "1local",
				Tags: []Tag{{"py3", "none", "any"}},
			},
		},
		{
			name:  "compressed platform tag",
			input: "fast-0.3-cp311-cp311-manylinux_2_17_x86_64.manylinux2014_x86_64.whl",
			want: Filename{
				Name: "fast", Version: "0.3",
				Tags: []Tag{
					{"cp311", "cp311", "manylinux_2_17_x86_64"},
					{"cp311", "cp311", "manylinux2014_x86_64"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilename(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFilename mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFilenameErrors(t *testing.T) {
	for _, input := range []string{
		"demo-1.0.tar.gz",
		"demo-1.0-py3-none.whl",
		"demo-1.0-x-y-py3-none-any.whl",
		"demo-1.0-abc-py3-none-any.whl",
		"-1.0-py3-none-any.whl",
		"demo-1.0-py3..py2-none-any.whl",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFilename(input)
			assert.ErrorIs(t, err, ErrBadFilename)
		})
	}
}

func TestTagStrings(t *testing.T) {
	f, err := ParseFilename("six-1.16.0-py2.py3-none-any.whl")
	require.NoError(t, err)
	assert.Equal(t, []string{"py2-none-any", "py3-none-any"}, f.TagStrings())
}
