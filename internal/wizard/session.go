// Package wizard drives multi-page command flows: forward and backward
// navigation, branching sub-flows and the all-or-nothing commit.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

var (
	// ErrNotLaunched reports an operation on a session before Launch.
	ErrNotLaunched = errors.New("wizard: session not launched")
	// ErrClosed reports an operation on a finished or abandoned session.
	ErrClosed = errors.New("wizard: session closed")
	// ErrIllegalNavigation reports Next or Previous while the matching
	// predicate is false.
	ErrIllegalNavigation = errors.New("wizard: illegal navigation")
	// ErrUnknownInput reports an input name not declared on the current page.
	ErrUnknownInput = errors.New("wizard: unknown input")
)

// State is the lifecycle state of a session.
type State int

const (
	StateNotStarted State = iota
	StateOnPage
	StateFinished
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateOnPage:
		return "on-page"
	case StateFinished:
		return "finished"
	case StateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session navigates the pages of one wizard run. It is not safe for
// concurrent use.
type Session struct {
	initial    command.Factory
	ctx        *command.Context
	converters convert.Service
	logger     logging.Logger
	out        io.Writer
	errOut     io.Writer

	state   State
	pages   []*command.Builder
	pending []command.Factory
}

// Option configures a Session.
type Option func(*Session)

// WithContext shares ctx with every page instead of a fresh context.
func WithContext(ctx *command.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// WithConverters sets the conversion service bound to page inputs.
func WithConverters(svc convert.Service) Option {
	return func(s *Session) { s.converters = svc }
}

// WithLogger sets the logger used for navigation tracing.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithOutput sets the writers handed to commands on Finish.
func WithOutput(out, errOut io.Writer) Option {
	return func(s *Session) { s.out, s.errOut = out, errOut }
}

// New creates a session for the wizard built by initial. Nothing is
// instantiated until Launch.
func New(initial command.Factory, opts ...Option) *Session {
	s := &Session{
		initial:    initial,
		converters: convert.Default(),
		logger:     logging.Discard(),
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ctx == nil {
		s.ctx = command.NewContext()
	}
	return s
}

// SetInitialSelection records what the user had selected when the wizard
// was started. Pages read it from the shared context.
func (s *Session) SetInitialSelection(selection ...any) {
	s.ctx.SetInitialSelection(selection...)
}

// Launch instantiates the initial wizard and moves to its first page.
func (s *Session) Launch() error {
	switch s.state {
	case StateOnPage:
		return fmt.Errorf("%w: already launched", ErrIllegalNavigation)
	case StateFinished, StateAbandoned:
		return ErrClosed
	}
	if s.initial == nil {
		return errors.New("wizard: initial command factory is nil")
	}
	page, err := s.build(s.initial)
	if err != nil {
		return err
	}
	s.pages = []*command.Builder{page}
	s.state = StateOnPage
	s.logger.Debug("wizard launched", "page", page.Metadata().Name)
	return nil
}

func (s *Session) build(f command.Factory) (*command.Builder, error) {
	cmd := f()
	if cmd == nil {
		return nil, errors.New("wizard: factory returned nil command")
	}
	b, err := command.NewBuilder(s.ctx, cmd, s.converters)
	if err != nil {
		return nil, fmt.Errorf("wizard: build page: %w", err)
	}
	return b, nil
}

func (s *Session) active() error {
	switch s.state {
	case StateNotStarted:
		return ErrNotLaunched
	case StateFinished, StateAbandoned:
		return ErrClosed
	}
	return nil
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Context returns the context shared by every page.
func (s *Session) Context() *command.Context { return s.ctx }

// PageCount returns the number of pages visited and not rewound.
func (s *Session) PageCount() int { return len(s.pages) }

// PendingCount returns the number of deferred branches.
func (s *Session) PendingCount() int { return len(s.pending) }

// Current returns the current page, or nil before Launch.
func (s *Session) Current() *command.Builder {
	if len(s.pages) == 0 {
		return nil
	}
	return s.pages[len(s.pages)-1]
}

// Pages returns the visited pages in order.
func (s *Session) Pages() []*command.Builder {
	return append([]*command.Builder(nil), s.pages...)
}

// navigation asks the current page where to go. Plain commands never
// navigate.
func (s *Session) navigation() command.NavigationResult {
	w, ok := command.AsWizard(s.Current().Command())
	if !ok {
		return command.Terminal()
	}
	return w.Next(s.ctx)
}

// CanFlipToNextPage reports whether Next would succeed: the current page
// names successors, or it is terminal and a deferred branch remains.
func (s *Session) CanFlipToNextPage() bool {
	if s.active() != nil {
		return false
	}
	if s.navigation().IsTerminal() {
		return len(s.pending) > 0
	}
	return true
}

// Next advances to the first successor of the current page and defers the
// others. When the current page is terminal the most recently deferred
// branch is resumed, so alternates run last-declared first.
func (s *Session) Next() error {
	if err := s.active(); err != nil {
		return err
	}
	if !s.CanFlipToNextPage() {
		return fmt.Errorf("%w: no next page", ErrIllegalNavigation)
	}

	nav := s.navigation()
	pending := s.pending
	var target command.Factory
	if nav.IsTerminal() {
		target = pending[len(pending)-1]
		pending = pending[:len(pending)-1]
	} else {
		successors := nav.Successors()
		target = successors[0]
		pending = append(append([]command.Factory(nil), pending...), successors[1:]...)
	}

	page, err := s.build(target)
	if err != nil {
		return err
	}
	s.pending = pending
	s.pages = append(s.pages, page)
	s.logger.Debug("wizard next", "page", page.Metadata().Name, "pages", len(s.pages), "pending", len(s.pending))
	return nil
}

// CanFlipToPreviousPage reports whether more than one page exists.
func (s *Session) CanFlipToPreviousPage() bool {
	return s.active() == nil && len(s.pages) > 1
}

// Previous drops the current page. Deferred branches are kept.
func (s *Session) Previous() error {
	if err := s.active(); err != nil {
		return err
	}
	if !s.CanFlipToPreviousPage() {
		return fmt.Errorf("%w: already on the first page", ErrIllegalNavigation)
	}
	dropped := s.pages[len(s.pages)-1]
	s.pages = s.pages[:len(s.pages)-1]
	s.logger.Debug("wizard previous", "dropped", dropped.Metadata().Name, "pages", len(s.pages))
	return nil
}

// IsValid reports whether the current page has no ERROR messages.
func (s *Session) IsValid() bool {
	return len(s.ValidationErrors()) == 0
}

// ValidationErrors returns the ERROR descriptions of the current page.
func (s *Session) ValidationErrors() []string {
	page := s.Current()
	if page == nil {
		return nil
	}
	return page.ValidationErrors()
}

// ValidationMessages returns every message of the current page, any severity.
func (s *Session) ValidationMessages() []validation.Message {
	page := s.Current()
	if page == nil {
		return nil
	}
	return page.Validate()
}

// ValidateAll validates every visited page in order. Front-ends call it
// before Finish, which closes the session even when validation fails.
func (s *Session) ValidateAll() []validation.Message {
	var messages []validation.Message
	for _, page := range s.pages {
		messages = append(messages, page.Validate()...)
	}
	return messages
}

// CanFinish reports whether the current page is valid and nothing is left
// to navigate to.
func (s *Session) CanFinish() bool {
	return s.active() == nil && s.IsValid() && !s.CanFlipToNextPage()
}

// IsEnabled reports whether the current page's command is enabled.
func (s *Session) IsEnabled() bool {
	page := s.Current()
	return page != nil && page.IsEnabled()
}

// InputComponent returns the named input of the current page.
func (s *Session) InputComponent(name string) (*input.Input, error) {
	if err := s.active(); err != nil {
		return nil, err
	}
	in, ok := s.Current().Input(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrUnknownInput, name, s.Current().Metadata().Name)
	}
	return in, nil
}

// SetValueFor assigns value to the named input of the current page.
func (s *Session) SetValueFor(name string, value any) error {
	in, err := s.InputComponent(name)
	if err != nil {
		return err
	}
	return in.SetValue(value)
}

// Finish validates every page and, only if none reports an ERROR, executes
// the page commands in order. The first execution failure stops the run and
// is returned with the results collected so far. The shared context is
// closed on every path.
func (s *Session) Finish(ctx context.Context, listener command.ExecutionListener) (results []command.Result, err error) {
	if err := s.active(); err != nil {
		return nil, err
	}
	defer func() {
		if s.state == StateOnPage {
			s.state = StateAbandoned
		}
		if cerr := s.ctx.Close(); cerr != nil {
			s.logger.Warn("wizard context close failed", "error", cerr.Error())
			if err == nil {
				err = fmt.Errorf("wizard: close context: %w", cerr)
			}
		}
	}()

	messages := validation.ErrorsOnly(s.ValidateAll())
	if verr := validation.NewError(messages); verr != nil {
		s.logger.Info("wizard finish rejected", "errors", len(messages))
		return nil, verr
	}

	ectx := command.NewExecutionContext(ctx, s.ctx, s.out, s.errOut)
	results = make([]command.Result, 0, len(s.pages))
	for _, page := range s.pages {
		res, err := command.Execute(ectx, page.Command(), listener)
		if err != nil {
			s.logger.Error("wizard page failed", "page", page.Metadata().Name, "error", err.Error())
			return results, err
		}
		results = append(results, res)
	}
	s.state = StateFinished
	s.logger.Info("wizard finished", "pages", len(results))
	return results, nil
}

// Close abandons the session and releases the shared context. It is safe
// to call after Finish and more than once.
func (s *Session) Close() error {
	if s.state != StateFinished {
		s.state = StateAbandoned
	}
	return s.ctx.Close()
}
