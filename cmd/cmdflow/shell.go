/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"github.com/cristianoliveira/cmdflow/internal/config"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/shell"
	"github.com/spf13/cobra"
)

const shellCommandLong = `Start an interactive shell.

Type a command line as you would after "cmdflow run". Wizards prompt page
by page. Tab completes command names, options and choices. Type "help" for
the list of commands and "exit" or Ctrl-D to leave.

CONFIGURATION:
    prompt          Prompt shown before each line (default "cmdflow> ")
    history_file    Where typed lines are kept (default {state_dir}/history)
    history_limit   Number of lines kept (default 500)`

// NewShellCmd creates the shell command with explicit dependencies.
func NewShellCmd(deps cliDeps) *cobra.Command {
	if deps.locator == nil || deps.openTerminal == nil {
		panic("NewShellCmd: locator and terminal dependencies cannot be nil")
	}

	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Long:  shellCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.GetGlobal()
			journal, closeJournal, err := deps.openJournal()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeJournal(); err != nil {
					logger.Warn("shell: close journal failed", "error", err.Error())
				}
			}()

			term := deps.openTerminal(historyFile(), config.GetInt("history_limit", 500))
			defer func() {
				if err := term.Close(); err != nil {
					logger.Warn("shell: close terminal failed", "error", err.Error())
				}
			}()

			sh := shell.New(term, deps.locator, journal, shell.Config{
				Prompt:   config.Get("prompt", ""),
				Out:      cmd.OutOrStdout(),
				Err:      cmd.ErrOrStderr(),
				Handler:  apperrors.NewDefaultCLIHandler(),
				Logger:   logger,
				Listener: deps.listener(logger),
			})
			term.SetCompleter(sh.Complete)
			return sh.Run(contextOf(cmd))
		},
	}
}
