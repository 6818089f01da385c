// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/wheel2conda/internal/channel"
	"github.com/pdiddy/wheel2conda/internal/convert"
	"github.com/pdiddy/wheel2conda/internal/ctxlog"
)

var convertCmd = &cobra.Command{
	Use:   "convert WHEEL",
	Short: "Convert a wheel into conda packages",
	Long: `Convert reads a wheel, translates its metadata, and writes one conda
package per applicable platform and Python version to
<output-dir>/<subdir>/. Either every package is written or none is.
Afterwards the repodata.json of every touched subdir (and noarch) is
rebuilt unless --no-index is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConvertConfig(cmd)
	if err != nil {
		return err
	}
	if noIndex, _ := cmd.Flags().GetBool("no-index"); noIndex {
		cfg.Index = false
	}

	ctx := cmd.Context()
	ctxlog.FromContext(ctx).Debug("converting", "wheel", args[0], "output_dir", cfg.OutputDir,
		"pythons", cfg.PythonVersions, "platforms", cfg.Platforms, "format", cfg.Format)

	out := cmd.OutOrStdout()
	result, err := convert.Convert(ctx, args[0], cfg, out)
	if err != nil {
		return err
	}

	if cfg.Index {
		if _, err := channel.Index(ctx, cfg.OutputDir, result.Subdirs, out); err != nil {
			return err
		}
	}
	color.New(color.FgGreen).Fprintf(out, "wrote %d packages to %s\n", result.Total(), cfg.OutputDir)
	return nil
}

func init() {
	addConvertFlags(convertCmd)
	convertCmd.Flags().Bool("no-index", false, "do not rebuild repodata.json after converting")

	rootCmd.AddCommand(convertCmd)
}
