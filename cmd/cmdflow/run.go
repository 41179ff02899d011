/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/config"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/ports"
	"github.com/cristianoliveira/cmdflow/internal/shell"
	"github.com/cristianoliveira/cmdflow/internal/validation"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
	"github.com/spf13/cobra"
)

const runCommandLong = `Run a command with its options.

Everything after the command name belongs to the command itself; use
"cmdflow describe <command>" or "cmdflow run <command> --help" to list its
options.

Wizards prompt for every page. With --non-interactive they run with the
values given on the command line and fail if a page is incomplete. With
--tui they open as a full screen form.

EXAMPLES:
    cmdflow run greet --times 2 Ada
    cmdflow --non-interactive run project-new --name demo --features ci
    cmdflow run --tui project-new`

// NewRunCmd creates the run command with explicit dependencies.
func NewRunCmd(deps cliDeps) *cobra.Command {
	if deps.locator == nil {
		panic("NewRunCmd: locator dependency cannot be nil")
	}

	var useTUI bool
	runCmd := &cobra.Command{
		Use:   "run [--tui] <command> [args...]",
		Short: "Run a command or wizard",
		Long:  runCommandLong,
		Args:  cobra.MinimumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}
			return deps.locator.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &runner{deps: deps, cmd: cmd, handler: apperrors.NewDefaultCLIHandler(), logger: logging.GetGlobal()}
			return r.run(contextOf(cmd), args[0], args[1:], useTUI)
		},
	}
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "Open wizards as a full screen form")
	runCmd.Flags().SetInterspersed(false)
	return runCmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type runner struct {
	deps    cliDeps
	cmd     *cobra.Command
	handler apperrors.ErrorHandler
	logger  logging.Logger
}

func (r *runner) run(ctx context.Context, name string, args []string, useTUI bool) error {
	factory, ok := r.deps.locator.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", app.ErrUnknownCommand, name)
	}
	journal, closeJournal, err := r.deps.openJournal()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeJournal(); err != nil {
			r.logger.Warn("run: close journal failed", "error", err.Error())
		}
	}()

	if _, isWizard := command.AsWizard(factory()); !isWizard {
		return r.runCommand(ctx, journal, name, args)
	}
	return r.runWizard(ctx, journal, name, args, useTUI)
}

func (r *runner) runCommand(ctx context.Context, journal ports.ExecutionJournal, name string, args []string) error {
	uc := app.NewRunUseCase(r.deps.locator, journal, r.logger).WithListener(r.deps.listener(r.logger))
	res, err := uc.Execute(ctx, app.RunInput{Name: name, Args: args, Out: r.cmd.OutOrStdout(), Err: r.cmd.ErrOrStderr()})
	if errors.Is(err, options.ErrHelp) {
		return r.usage(name)
	}
	if err != nil {
		return err
	}
	apperrors.ReportMessages(r.handler, nonErrors(res.Messages))
	apperrors.ReportResult(r.handler, res.Result)
	return nil
}

func (r *runner) runWizard(ctx context.Context, journal ports.ExecutionJournal, name string, args []string, useTUI bool) error {
	uc := app.NewWizardUseCase(r.deps.locator, journal, r.logger).WithListener(r.deps.listener(r.logger))
	in := app.WizardInput{Name: name, Args: args, Out: r.cmd.OutOrStdout(), Err: r.cmd.ErrOrStderr()}

	var res app.WizardOutput
	var err error
	if useTUI {
		res, err = r.runTUI(ctx, uc, in)
	} else {
		driver, closeDriver := r.driver()
		in.Driver = driver
		res, err = uc.Execute(ctx, in)
		closeDriver()
	}

	if errors.Is(err, options.ErrHelp) {
		return r.usage(name)
	}
	if errors.Is(err, app.ErrCancelled) {
		r.handler.Info(name + " cancelled")
		return nil
	}
	for _, result := range res.Results {
		apperrors.ReportResult(r.handler, result)
	}
	return err
}

// driver prompts on the terminal, or fills pages from the command line
// when prompting is off.
func (r *runner) driver() (ports.WizardDriver, func()) {
	if config.GetBool("non_interactive", false) {
		return &app.AutoDriver{}, func() {}
	}
	term := r.deps.openTerminal("", 0)
	return shell.NewPromptDriver(term, r.cmd.OutOrStdout(), r.handler), func() {
		if err := term.Close(); err != nil {
			r.logger.Warn("run: close terminal failed", "error", err.Error())
		}
	}
}

func (r *runner) runTUI(ctx context.Context, uc *app.WizardUseCase, in app.WizardInput) (app.WizardOutput, error) {
	s, err := uc.Start(in)
	if err != nil {
		return app.WizardOutput{}, err
	}
	defer func() { _ = s.Close() }()

	var out app.WizardOutput
	finish := func(ctx context.Context, s *wizard.Session) ([]command.Result, error) {
		var err error
		out, err = uc.Finish(ctx, s)
		return out.Results, err
	}
	m, err := r.deps.runTUI(ctx, s, finish)
	if err != nil {
		return app.WizardOutput{}, err
	}
	if m.Cancelled() {
		return app.WizardOutput{}, app.ErrCancelled
	}
	return out, m.Err()
}

func (r *runner) usage(name string) error {
	m, err := app.NewDescribeUseCase(r.deps.locator, r.logger).Execute(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(r.cmd.OutOrStdout(), m.Usage())
	return err
}

func nonErrors(messages []validation.Message) []validation.Message {
	var out []validation.Message
	for _, m := range messages {
		if !m.IsError() {
			out = append(out, m)
		}
	}
	return out
}
