/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/

// Package cmd holds the root command shared by the cmdflow binary.
package cmd

import (
	"fmt"

	"github.com/cristianoliveira/cmdflow/internal/colors"
	"github.com/cristianoliveira/cmdflow/internal/config"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags map persistent flags onto configuration keys.
var globalFlags = map[string]string{
	"debug":           "debug",
	"quiet":           "quiet",
	"non-interactive": "non_interactive",
}

// RootCmd is the base command; subcommands register themselves on it.
var RootCmd = NewRootCmd()

// NewRootCmd creates a root command with the global flags and setup.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cmdflow",
		Short: "Run commands and multi-page wizards from the terminal.",
		Long: `cmdflow runs declared commands from the command line, an interactive
shell or a full screen form. Wizards collect their input page by page and
execute every page only once the whole flow is valid.`,
		Version:           version.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	flags := root.PersistentFlags()
	flags.Bool("debug", false, "Print debug output and log at debug level")
	flags.BoolP("quiet", "q", false, "Only print warnings and errors")
	flags.Bool("non-interactive", false, "Never prompt; wizards run with the values given")
	return root
}

// setup loads configuration, lets flags override it, then configures
// output and logging.
func setup(cmd *cobra.Command, _ []string) error {
	config.Load()
	applyFlags(cmd.Flags())

	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))
	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("logging disabled: %v", err))
	}
	return nil
}

func applyFlags(flags *pflag.FlagSet) {
	for name, key := range globalFlags {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		config.Set(key, f.Value.String())
	}
}

// Execute runs RootCmd and shuts the global logger down.
func Execute() error {
	defer func() {
		if err := logging.ShutdownGlobal(); err != nil {
			colors.Debug("logging shutdown:", err.Error())
		}
	}()
	return RootCmd.Execute()
}
