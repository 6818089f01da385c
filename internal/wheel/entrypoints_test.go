// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryPoints(t *testing.T) {
	eps, err := ParseEntryPoints([]byte("[console_scripts]\nMixedCase = pkg.mod:run\n\n[pytest11]\nplugin = pkg.plugin\n"))
	require.NoError(t, err)
	assert.Equal(t, []EntryPoint{{Name: "MixedCase", Module: "pkg.mod", Func: "run"}}, eps)
}

func TestParseEntryPointsErrors(t *testing.T) {
	for _, input := range []string{
		"[console_scripts]\ndemo = demo.cli\n",
		"[console_scripts]\ndemo = a:b:c\n",
		"[console_scripts]\ndemo = :main\n",
		"[console_scripts]\n../../evil = demo.cli:main\n",
		"[console_scripts]\nsub/demo = demo.cli:main\n",
		"[gui_scripts]\n..\\evil = demo.gui:main\n",
	} {
		_, err := ParseEntryPoints([]byte(input))
		assert.ErrorIs(t, err, ErrBadEntryPoint, input)
	}
}
