// Package shell is the interactive front-end: a line editing REPL that runs
// commands from typed lines and prompts wizards page by page.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/colors"
	"github.com/cristianoliveira/cmdflow/internal/command"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/ports"
	"github.com/cristianoliveira/cmdflow/internal/validation"
	"github.com/google/shlex"
)

const defaultHistoryRows = 10

// builtins are handled by the shell itself.
var builtins = map[string]string{
	"help":     "list commands, or show the options of one",
	"describe": "print the option model of a command as YAML",
	"history":  "show recent executions",
	"exit":     "leave the shell",
	"quit":     "leave the shell",
}

// Config holds the presentation settings of a Shell.
type Config struct {
	Prompt   string
	Out      io.Writer
	Err      io.Writer
	Handler  apperrors.ErrorHandler
	Logger   logging.Logger
	// Listener is notified around every execution, next to the journal.
	Listener command.ExecutionListener
}

// Shell runs commands typed on a LineReader.
type Shell struct {
	reader   LineReader
	locator  ports.CommandLocator
	run      *app.RunUseCase
	wizard   *app.WizardUseCase
	describe *app.DescribeUseCase
	history  *app.HistoryUseCase

	prompt  string
	out     io.Writer
	errOut  io.Writer
	handler apperrors.ErrorHandler
	logger  logging.Logger
}

// New creates a shell. journal may be nil, which disables history.
func New(reader LineReader, locator ports.CommandLocator, journal ports.ExecutionJournal, cfg Config) *Shell {
	if reader == nil {
		panic("shell.New: reader dependency cannot be nil")
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "cmdflow> "
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	if cfg.Handler == nil {
		cfg.Handler = apperrors.NewDefaultCLIHandler()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Shell{
		reader:   reader,
		locator:  locator,
		run:      app.NewRunUseCase(locator, journal, cfg.Logger).WithListener(cfg.Listener),
		wizard:   app.NewWizardUseCase(locator, journal, cfg.Logger).WithListener(cfg.Listener),
		describe: app.NewDescribeUseCase(locator, cfg.Logger),
		history:  app.NewHistoryUseCase(journal),
		prompt:   cfg.Prompt,
		out:      cfg.Out,
		errOut:   cfg.Err,
		handler:  cfg.Handler,
		logger:   cfg.Logger,
	}
}

// Run reads lines until EOF, exit or ctx is cancelled. Ctrl-C discards the
// current line.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.reader.Prompt(s.prompt)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("shell: read line: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.reader.AppendHistory(line)

		quit, err := s.Execute(ctx, line)
		if err != nil {
			s.logger.Debug("shell: line failed", "line", line, "error", err.Error())
			apperrors.Report(s.handler, err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one line. It reports whether the shell should stop.
func (s *Shell) Execute(ctx context.Context, line string) (bool, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse line: %w", err)
	}
	if len(tokens) == 0 {
		return false, nil
	}
	name, args := tokens[0], tokens[1:]

	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		return false, s.help(args)
	case "describe":
		return false, s.describeCommand(args)
	case "history":
		return false, s.showHistory(ctx, args)
	}

	factory, ok := s.locator.Lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %s (type help for a list)", app.ErrUnknownCommand, name)
	}
	if _, isWizard := command.AsWizard(factory()); isWizard {
		return false, s.runWizard(ctx, name, args)
	}
	return false, s.runCommand(ctx, name, args)
}

func (s *Shell) runCommand(ctx context.Context, name string, args []string) error {
	res, err := s.run.Execute(ctx, app.RunInput{Name: name, Args: args, Out: s.out, Err: s.errOut})
	if errors.Is(err, options.ErrHelp) {
		return s.help([]string{name})
	}
	if err != nil {
		return err
	}
	apperrors.ReportMessages(s.handler, withoutErrors(res.Messages))
	apperrors.ReportResult(s.handler, res.Result)
	return nil
}

func (s *Shell) runWizard(ctx context.Context, name string, args []string) error {
	driver := NewPromptDriver(s.reader, s.out, s.handler)
	res, err := s.wizard.Execute(ctx, app.WizardInput{Name: name, Args: args, Driver: driver, Out: s.out, Err: s.errOut})
	if errors.Is(err, options.ErrHelp) {
		return s.help([]string{name})
	}
	if errors.Is(err, app.ErrCancelled) {
		s.handler.Info(name + " cancelled")
		return nil
	}
	for _, r := range res.Results {
		apperrors.ReportResult(s.handler, r)
	}
	return err
}

func withoutErrors(messages []validation.Message) []validation.Message {
	var out []validation.Message
	for _, m := range messages {
		if !m.IsError() {
			out = append(out, m)
		}
	}
	return out
}

func (s *Shell) help(args []string) error {
	if len(args) > 0 {
		m, err := s.describe.Execute(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, m.Usage())
		return nil
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, colors.Bold("Commands:"))
	for _, name := range s.locator.Names() {
		md, _ := s.locator.Metadata(name)
		fmt.Fprintf(tw, "  %s\t%s\n", name, md.Description)
	}
	fmt.Fprintln(tw, colors.Bold("Shell:"))
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, builtins[name])
	}
	return tw.Flush()
}

func (s *Shell) describeCommand(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: describe <command>")
	}
	m, err := s.describe.Execute(args[0])
	if err != nil {
		return err
	}
	data, err := m.DescribeYAML()
	if err != nil {
		return err
	}
	_, err = s.out.Write(data)
	return err
}

func (s *Shell) showHistory(ctx context.Context, args []string) error {
	limit := defaultHistoryRows
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: history [count]: invalid count %q", args[0])
		}
		limit = n
	}
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		s.handler.Info("no executions recorded")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		detail := e.Message
		if e.Error != "" {
			detail = e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.FinishedAt.Local().Format("2006-01-02 15:04:05"), e.Command, e.Status, detail)
	}
	return tw.Flush()
}
