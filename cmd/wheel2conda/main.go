// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wheel2conda CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wheel2conda/internal/ctxlog"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the wheel2conda CLI.
var rootCmd = &cobra.Command{
	Use:   "wheel2conda",
	Short: "Convert Python wheels into conda packages",
	Long: `wheel2conda repackages a Python wheel as conda packages without the
conda build toolchain. It translates the wheel metadata into conda metadata,
writes one archive per applicable platform and Python version, and refreshes
the repodata.json of a local channel directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := ctxlog.New(os.Stderr, viper.GetBool("verbose"))
		slog.SetDefault(logger)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wheel2conda.yaml or ~/.config/wheel2conda/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging on stderr")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wheel2conda")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wheel2conda"))
		}
	}

	viper.SetEnvPrefix("WHEEL2CONDA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, color.YellowString("warning: reading config %s: %v", cfgFile, err))
		}
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
