/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"errors"
	"fmt"

	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewDescribeCmd creates the describe command with explicit dependencies.
func NewDescribeCmd(deps cliDeps) *cobra.Command {
	if deps.locator == nil {
		panic("NewDescribeCmd: locator dependency cannot be nil")
	}

	var all bool
	describeCmd := &cobra.Command{
		Use:   "describe [command]",
		Short: "Print the options of a command as YAML",
		Long: `Print the option model of a command as YAML: names, types, arity,
defaults and choices. For wizards this is the first page. With --all every
registered command is described.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return deps.locator.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := app.NewDescribeUseCase(deps.locator, logging.GetGlobal())
			var doc any
			switch {
			case all:
				doc = uc.All()
			case len(args) == 1:
				m, err := uc.Execute(args[0])
				if err != nil {
					return err
				}
				doc = m.Describe()
			default:
				return errors.New("describe: give a command name or --all")
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("describe: encode: %w", err)
			}
			return enc.Close()
		},
	}
	describeCmd.Flags().BoolVar(&all, "all", false, "Describe every command")
	return describeCmd
}
