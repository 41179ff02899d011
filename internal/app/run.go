// Package app holds the use cases shared by the CLI, the shell and the TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/ports"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

var (
	// ErrUnknownCommand reports a name the locator does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrWizardCommand reports a wizard given to the single-shot runner.
	ErrWizardCommand = errors.New("command is a wizard")
	// ErrCommandDisabled reports a command whose IsEnabled is false.
	ErrCommandDisabled = errors.New("command is disabled")
	// ErrCancelled reports a wizard abandoned by its driver.
	ErrCancelled = errors.New("cancelled")
)

// RunInput holds everything needed for one single-shot run.
type RunInput struct {
	Name      string
	Args      []string
	Selection []any
	Out       io.Writer
	Err       io.Writer
}

// RunOutput describes a completed run.
type RunOutput struct {
	Result command.Result
	// RunID is set when the run was journaled.
	RunID string
	// Messages holds non-error validation findings worth showing.
	Messages []validation.Message
}

// RunUseCase parses a command line against a plain command and executes it.
type RunUseCase struct {
	locator    ports.CommandLocator
	journal    ports.ExecutionJournal
	converters convert.Service
	logger     logging.Logger
	listener   command.ExecutionListener
}

// NewRunUseCase creates a run use-case. journal may be nil.
func NewRunUseCase(locator ports.CommandLocator, journal ports.ExecutionJournal, logger logging.Logger) *RunUseCase {
	if locator == nil {
		panic("NewRunUseCase: locator dependency cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RunUseCase{
		locator:    locator,
		journal:    journal,
		converters: convert.Default(),
		logger:     logger,
	}
}

// WithListener adds l to the listeners notified around every execution.
func (u *RunUseCase) WithListener(l command.ExecutionListener) *RunUseCase {
	u.listener = l
	return u
}

// Execute runs the named command with args. Parsing and validation failures
// are returned before anything executes.
func (u *RunUseCase) Execute(ctx context.Context, in RunInput) (RunOutput, error) {
	var out RunOutput
	factory, ok := u.locator.Lookup(in.Name)
	if !ok {
		return out, fmt.Errorf("%w: %s", ErrUnknownCommand, in.Name)
	}
	cmd := factory()
	if _, isWizard := command.AsWizard(cmd); isWizard {
		return out, fmt.Errorf("%w: %s", ErrWizardCommand, in.Name)
	}

	uictx := command.NewContext(in.Selection...)
	defer func() {
		if err := uictx.Close(); err != nil {
			u.logger.Warn("run: close context failed", "command", in.Name, "error", err.Error())
		}
	}()

	b, err := command.NewBuilder(uictx, cmd, u.converters)
	if err != nil {
		return out, err
	}
	if !b.IsEnabled() {
		return out, fmt.Errorf("%w: %s", ErrCommandDisabled, in.Name)
	}
	model := options.FromBuilder(b, options.WithConverters(u.converters), options.WithLogger(u.logger))
	if _, err := model.Parse(in.Args); err != nil {
		return out, err
	}
	messages := b.Validate()
	if verr := validation.NewError(validation.ErrorsOnly(messages)); verr != nil {
		return out, verr
	}
	out.Messages = messages

	listener := u.listener
	var recorder ports.RunRecorder
	if u.journal != nil {
		recorder = u.journal.Recorder(ctx, u.logger)
		recorder.Track(b)
		listener = command.Listeners{recorder, u.listener}
		out.RunID = recorder.RunID()
	}

	ectx := command.NewExecutionContext(ctx, uictx, writerOr(in.Out, os.Stdout), writerOr(in.Err, os.Stderr))
	u.logger.Info("run: executing", "command", in.Name, "args", len(in.Args))
	res, err := command.Execute(ectx, cmd, listener)
	if recorder != nil && recorder.Err() != nil {
		u.logger.Warn("run: journal incomplete", "run_id", out.RunID, "error", recorder.Err().Error())
	}
	if err != nil {
		return out, err
	}
	out.Result = res
	return out, nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
