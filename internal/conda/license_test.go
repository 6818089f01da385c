// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conda

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/wheel2conda/pkg/types"
)

func TestIdentifyLicense(t *testing.T) {
	tests := []struct {
		name string
		rec  types.WheelRecord
		want string
	}{
		{"license field", types.WheelRecord{License: "Apache-2.0"}, "Apache-2.0"},
		{"multi-line license text", types.WheelRecord{License: "BSD 3-Clause\nCopyright ..."}, "BSD 3-Clause"},
		{"unknown falls back to classifier", types.WheelRecord{
			License:     "UNKNOWN",
			Classifiers: []string{"Programming Language :: Python", "License :: OSI Approved :: BSD License"},
		}, "BSD"},
		{"nothing known", types.WheelRecord{Classifiers: []string{"License :: Other/Proprietary License"}}, "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentifyLicense(tt.rec))
		})
	}
}
