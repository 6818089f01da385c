// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wheel2conda/internal/conda"
	"github.com/pdiddy/wheel2conda/internal/convert"
	"github.com/pdiddy/wheel2conda/internal/requirements"
	"github.com/pdiddy/wheel2conda/pkg/types"
)

// inspectReport is what inspect prints: the source record and the packages a
// conversion would produce.
type inspectReport struct {
	Wheel    types.WheelRecord `json:"wheel" yaml:"wheel"`
	Packages []plannedPackage  `json:"packages" yaml:"packages"`
}

type plannedPackage struct {
	Filename string            `json:"filename" yaml:"filename"`
	Index    types.IndexRecord `json:"index" yaml:"index"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect WHEEL",
	Short: "Show a wheel's metadata and the packages it would convert to",
	Long: `Inspect validates a wheel and prints its source record together with
the index.json of every package convert would write, without writing
anything. Output is YAML unless --json is given. The convert settings
(--python, --platform, config file) apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConvertConfig(cmd)
	if err != nil {
		return err
	}
	w, err := convert.Load(args[0])
	if err != nil {
		return err
	}
	targets, err := convert.Plan(w, cfg)
	if err != nil {
		return err
	}

	report := inspectReport{Wheel: w.Record()}
	opts := conda.Options{BuildNumber: cfg.BuildNumber, Names: requirements.Names(cfg.NameMap)}
	for _, t := range targets {
		pkg, err := conda.Build(w, t, opts)
		if err != nil {
			return fmt.Errorf("planning %s python %s: %w", t.Subdir, t.Python, err)
		}
		report.Packages = append(report.Packages, plannedPackage{
			Filename: t.Subdir + "/" + pkg.Filename(cfg.Format),
			Index:    pkg.Index,
		})
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeReport(cmd.OutOrStdout(), report, jsonOutput)
}

func writeReport(w io.Writer, report inspectReport, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	addConvertFlags(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	rootCmd.AddCommand(inspectCmd)
}
