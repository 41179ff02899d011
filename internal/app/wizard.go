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
	"github.com/cristianoliveira/cmdflow/internal/wizard"
)

// WizardInput holds everything needed to drive one wizard run.
type WizardInput struct {
	Name string
	// Args prefill the first page, parsed like a single-shot command line.
	Args      []string
	Selection []any
	Driver    ports.WizardDriver
	Out       io.Writer
	Err       io.Writer
}

// WizardOutput describes a finished wizard run.
type WizardOutput struct {
	Results []command.Result
	RunID   string
	Pages   int
}

// WizardUseCase drives a wizard session with a front-end supplied driver.
type WizardUseCase struct {
	locator    ports.CommandLocator
	journal    ports.ExecutionJournal
	converters convert.Service
	logger     logging.Logger
	listener   command.ExecutionListener
}

// NewWizardUseCase creates a wizard use-case. journal may be nil.
func NewWizardUseCase(locator ports.CommandLocator, journal ports.ExecutionJournal, logger logging.Logger) *WizardUseCase {
	if locator == nil {
		panic("NewWizardUseCase: locator dependency cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &WizardUseCase{
		locator:    locator,
		journal:    journal,
		converters: convert.Default(),
		logger:     logger,
	}
}

// WithListener adds l to the listeners notified around every execution.
func (u *WizardUseCase) WithListener(l command.ExecutionListener) *WizardUseCase {
	u.listener = l
	return u
}

// Start creates and launches a session for the named command, prefilling
// the first page from in.Args. The caller owns the session and must Close it.
func (u *WizardUseCase) Start(in WizardInput) (*wizard.Session, error) {
	factory, ok := u.locator.Lookup(in.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, in.Name)
	}
	s := wizard.New(factory,
		wizard.WithConverters(u.converters),
		wizard.WithLogger(u.logger.With("wizard", in.Name)),
		wizard.WithOutput(writerOr(in.Out, os.Stdout), writerOr(in.Err, os.Stderr)),
	)
	s.SetInitialSelection(in.Selection...)
	if err := s.Launch(); err != nil {
		_ = s.Close()
		return nil, err
	}
	if len(in.Args) > 0 {
		m := options.FromBuilder(s.Current(), options.WithConverters(u.converters), options.WithLogger(u.logger))
		if _, err := m.Parse(in.Args); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Execute launches the named command as a session and loops over the
// driver until it finishes or cancels. Plain commands run as a single page.
func (u *WizardUseCase) Execute(ctx context.Context, in WizardInput) (WizardOutput, error) {
	var out WizardOutput
	if in.Driver == nil {
		return out, errors.New("wizard: driver cannot be nil")
	}
	s, err := u.Start(in)
	if err != nil {
		return out, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			u.logger.Warn("wizard: close failed", "command", in.Name, "error", err.Error())
		}
	}()

	models := make(map[*command.Builder]*options.Model)
	modelFor := func(page *command.Builder) *options.Model {
		if m, ok := models[page]; ok {
			return m
		}
		m := options.FromBuilder(page, options.WithConverters(u.converters), options.WithLogger(u.logger))
		models[page] = m
		return m
	}

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		action, err := in.Driver.Page(ctx, s, modelFor(s.Current()))
		if err != nil {
			return out, err
		}
		u.logger.Debug("wizard: action", "action", action.String(), "page", s.Current().Metadata().Name)

		switch action {
		case ports.ActionNext:
			if err := s.Next(); err != nil {
				if errors.Is(err, wizard.ErrIllegalNavigation) {
					in.Driver.Problem(err)
					continue
				}
				return out, err
			}
		case ports.ActionPrevious:
			if err := s.Previous(); err != nil {
				if errors.Is(err, wizard.ErrIllegalNavigation) {
					in.Driver.Problem(err)
					continue
				}
				return out, err
			}
		case ports.ActionFinish:
			if verr := validation.NewError(validation.ErrorsOnly(s.ValidateAll())); verr != nil {
				in.Driver.Problem(verr)
				continue
			}
			return u.Finish(ctx, s)
		case ports.ActionCancel:
			return out, ErrCancelled
		default:
			return out, fmt.Errorf("wizard: unknown action %d", int(action))
		}
	}
}

// Finish commits s, journaling the run when a journal is configured.
func (u *WizardUseCase) Finish(ctx context.Context, s *wizard.Session) (WizardOutput, error) {
	out := WizardOutput{Pages: s.PageCount()}
	listener := u.listener
	var recorder ports.RunRecorder
	if u.journal != nil {
		recorder = u.journal.Recorder(ctx, u.logger)
		recorder.Track(s.Pages()...)
		listener = command.Listeners{recorder, u.listener}
		out.RunID = recorder.RunID()
	}
	results, err := s.Finish(ctx, listener)
	out.Results = results
	if recorder != nil && recorder.Err() != nil {
		u.logger.Warn("wizard: journal incomplete", "run_id", out.RunID, "error", recorder.Err().Error())
	}
	return out, err
}

// AutoDriver finishes a session without asking anything: it advances while
// a next page exists and then finishes. Pages keep their defaults or the
// values prefilled from the command line. A rejected step ends the run.
type AutoDriver struct {
	err error
}

var _ ports.WizardDriver = (*AutoDriver)(nil)

func (d *AutoDriver) Page(_ context.Context, s *wizard.Session, _ *options.Model) (ports.WizardAction, error) {
	if d.err != nil {
		return ports.ActionCancel, d.err
	}
	if s.CanFlipToNextPage() {
		return ports.ActionNext, nil
	}
	return ports.ActionFinish, nil
}

func (d *AutoDriver) Problem(err error) { d.err = err }
