// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/wheel2conda/internal/channel"
)

var indexCmd = &cobra.Command{
	Use:   "index DIR",
	Short: "Rebuild repodata.json for a local channel directory",
	Long: `Index scans the conda archives (.tar.bz2 and .conda) in each platform
subdirectory of DIR and writes a fresh repodata.json per subdir.
noarch/repodata.json is always written. Without --subdir every platform
directory found in DIR is indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subdirs, _ := cmd.Flags().GetStringSlice("subdir")
		_, err := channel.Index(cmd.Context(), args[0], subdirs, cmd.OutOrStdout())
		return err
	},
}

func init() {
	indexCmd.Flags().StringSlice("subdir", nil, "subdirs to index (default: all platform directories)")

	rootCmd.AddCommand(indexCmd)
}
