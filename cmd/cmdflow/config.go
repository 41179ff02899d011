/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cristianoliveira/cmdflow/internal/colors"
	"github.com/cristianoliveira/cmdflow/internal/config"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	configCmd.AddCommand(newConfigInitCmd(), newConfigGetCmd())
	return configCmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file holding the current values",
		Long: `Write a configuration file holding the current values.

The file goes to CMDFLOW_CONFIG_PATH, or {config_dir}/config.toml, unless a
path is given. An existing file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := configPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			colors.Success("wrote " + path)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0], ""))
			return nil
		},
	}
}

func configPath() string {
	if path := os.Getenv(config.EnvPrefix + "CONFIG_PATH"); path != "" {
		return path
	}
	return filepath.Join(config.Get("config_dir", "."), "config.toml")
}
