// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conda

import (
	"strings"

	"github.com/pdiddy/wheel2conda/pkg/types"
)

// licenseClassifiers maps trove classifiers to short license names.
var licenseClassifiers = map[string]string{
	"License :: OSI Approved :: MIT License":                                             "MIT",
	"License :: OSI Approved :: BSD License":                                             "BSD",
	"License :: OSI Approved :: Apache Software License":                                 "Apache",
	"License :: OSI Approved :: ISC License (ISCL)":                                      "ISC",
	"License :: OSI Approved :: Mozilla Public License 2.0 (MPL 2.0)":                    "MPL-2.0",
	"License :: OSI Approved :: Python Software Foundation License":                      "PSF",
	"License :: OSI Approved :: GNU General Public License (GPL)":                        "GPL",
	"License :: OSI Approved :: GNU General Public License v2 (GPLv2)":                   "GPLv2",
	"License :: OSI Approved :: GNU General Public License v2 or later (GPLv2+)":         "GPLv2+",
	"License :: OSI Approved :: GNU General Public License v3 (GPLv3)":                   "GPLv3",
	"License :: OSI Approved :: GNU General Public License v3 or later (GPLv3+)":         "GPLv3+",
	"License :: OSI Approved :: GNU Lesser General Public License v2 (LGPLv2)":           "LGPLv2",
	"License :: OSI Approved :: GNU Lesser General Public License v2 or later (LGPLv2+)": "LGPLv2+",
	"License :: OSI Approved :: GNU Lesser General Public License v3 (LGPLv3)":           "LGPLv3",
	"License :: OSI Approved :: GNU Lesser General Public License v3 or later (LGPLv3+)": "LGPLv3+",
	"License :: OSI Approved :: GNU Library or Lesser General Public License (LGPL)":     "LGPL",
}

// IdentifyLicense picks the license string for index.json: the License
// field unless it is empty or UNKNOWN, then the first recognised trove
// classifier, else "UNKNOWN".
func IdentifyLicense(rec types.WheelRecord) string {
	if lic := strings.TrimSpace(rec.License); lic != "" && !strings.EqualFold(lic, "unknown") {
		if first, _, _ := strings.Cut(lic, "\n"); first != "" {
			return first
		}
	}
	for _, c := range rec.Classifiers {
		if name, ok := licenseClassifiers[c]; ok {
			return name
		}
	}
	return "UNKNOWN"
}
