// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerEvaluate(t *testing.T) {
	env := Env{
		"python_version":                 "3.10",
		"python_full_version":            "3.10.0",
		"sys_platform":                   "darwin",
		"os_name":                        "posix",
		"platform_machine":               "arm64",
		"platform_system":                "Darwin",
		"platform_python_implementation": "CPython",
		"implementation_name":            "cpython",
		"platform_release":               "9.0",
	}

	tests := []struct {
		marker string
		want   bool
	}{
		{`python_version >= "3.8"`, true},
		{`platform_release >= "10.0"`, false},
		{`platform_release < "10.0"`, true},
		{`platform_release == "9"`, true},
		{`python_version < "3.9"`, false},
		{`python_version > "3.9"`, true},
		{`"3.11" <= python_version`, false},
		{`python_full_version ~= "3.10.0"`, true},
		{`python_version != "3.10"`, false},
		{`sys_platform == 'darwin' and platform_machine == 'arm64'`, true},
		{`sys_platform == 'win32' or os_name == 'posix'`, true},
		{`(sys_platform == 'win32' or sys_platform == 'linux') and python_version >= '3'`, false},
		{`'arm' in platform_machine`, true},
		{`'x86' not in platform_machine`, true},
		{`extra == "test"`, false},
		{`extra != "test"`, true},
		{`sys.platform == "darwin"`, true},
		{`os.name == "nt"`, false},
		{`platform.python_implementation == "CPython"`, true},
		{`python_implementation == "PyPy"`, false},
		{`implementation_name === "cpython"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			m, err := ParseMarker(tt.marker)
			require.NoError(t, err)
			got, err := m.Evaluate(env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMarkerErrors(t *testing.T) {
	for _, input := range []string{
		`python_version`,
		`python_version >= `,
		`python_version >= "3.8`,
		`(python_version >= "3.8"`,
		`python_version >= "3.8" and`,
		`python_version >= "3.8" "extra"`,
		`unknown_var == "x"`,
		`python_version not "3"`,
		`python_version & "3"`,
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseMarker(input)
			assert.ErrorIs(t, err, ErrBadMarker)
		})
	}
}

func TestMarkerString(t *testing.T) {
	m, err := ParseMarker(`  python_version < "3.8" `)
	require.NoError(t, err)
	assert.Equal(t, `python_version < "3.8"`, m.String())
}
