// Package ports defines the interfaces the use cases depend on. Front-ends
// and tests plug concrete registries, journals and prompters in here.
package ports

import (
	"context"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/journal"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
)

// CommandLocator finds command factories by name.
type CommandLocator interface {
	Lookup(name string) (command.Factory, bool)
	Metadata(name string) (command.Metadata, bool)
	Names() []string
}

// RunRecorder is an execution listener that also tracks the pages of the
// run it records.
type RunRecorder interface {
	command.ExecutionListener
	RunID() string
	Track(pages ...*command.Builder)
	Err() error
}

// ExecutionJournal persists executions and answers history queries.
type ExecutionJournal interface {
	Recorder(ctx context.Context, logger logging.Logger) RunRecorder
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	Run(ctx context.Context, runID string) ([]journal.Entry, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// ConfigProvider provides configuration values.
type ConfigProvider interface {
	Get(key, defaultValue string) string
	GetInt(key string, defaultValue int) int
	GetBool(key string, defaultValue bool) bool
}

// WizardAction is the step a wizard driver picks after filling a page.
type WizardAction int

const (
	ActionNext WizardAction = iota
	ActionPrevious
	ActionFinish
	ActionCancel
)

func (a WizardAction) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionPrevious:
		return "previous"
	case ActionFinish:
		return "finish"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// WizardDriver collects values for the current page of a session and
// chooses where to go. The shell prompts line by line; tests script it.
type WizardDriver interface {
	Page(ctx context.Context, s *wizard.Session, model *options.Model) (WizardAction, error)
	// Problem reports a rejected step; the driver is asked again afterwards.
	Problem(err error)
}
