package journal

import (
	"context"
	"errors"
	"time"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/logging"
)

// Listener records every execution of one run. Pages are expected to run
// sequentially, in the order given to Track.
type Listener struct {
	journal  *Journal
	ctx      context.Context
	runID    string
	logger   logging.Logger
	builders []*command.Builder

	seq     int
	started time.Time
	inputs  map[string]string
	err     error
}

var _ command.ExecutionListener = (*Listener)(nil)

// Listener returns a listener recording under runID. A blank runID gets a
// fresh one.
func (j *Journal) Listener(ctx context.Context, runID string, logger logging.Logger) *Listener {
	if runID == "" {
		runID = NewRunID()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Listener{journal: j, ctx: ctx, runID: runID, logger: logger}
}

// RunID returns the identifier shared by the recorded entries.
func (l *Listener) RunID() string { return l.runID }

// Track registers the pages about to run so their inputs are recorded.
func (l *Listener) Track(builders ...*command.Builder) {
	l.builders = append(l.builders, builders...)
}

// Err returns the accumulated write failures. Recording never interrupts
// the execution itself.
func (l *Listener) Err() error { return l.err }

func (l *Listener) PreCommandExecuted(cmd command.Command, _ *command.ExecutionContext) {
	l.started = l.journal.now()
	l.inputs = nil
	if l.seq < len(l.builders) {
		l.inputs = Snapshot(l.builders[l.seq])
	}
}

func (l *Listener) PostCommandExecuted(cmd command.Command, _ *command.ExecutionContext, result command.Result) {
	status := StatusSucceeded
	if !result.Success {
		status = StatusFailed
	}
	l.record(cmd, status, result.Message, "")
}

func (l *Listener) PostCommandFailure(cmd command.Command, _ *command.ExecutionContext, err error) {
	l.record(cmd, StatusFailed, "", err.Error())
}

func (l *Listener) record(cmd command.Command, status Status, message, errText string) {
	e := Entry{
		RunID:     l.runID,
		Seq:       l.seq,
		Command:   command.ShellifyName(cmd.Metadata().Name),
		Status:    status,
		Message:   message,
		Error:     errText,
		Inputs:    l.inputs,
		StartedAt: l.started,
	}
	l.seq++
	if _, err := l.journal.Record(l.ctx, e); err != nil {
		l.logger.Warn("journal: record failed", "command", e.Command, "error", err.Error())
		l.err = errors.Join(l.err, err)
	}
}

// Snapshot renders the enabled, non-empty inputs of b as text. Sensitive
// values are replaced with logging.Redacted.
func Snapshot(b *command.Builder) map[string]string {
	out := make(map[string]string)
	for _, in := range b.Inputs() {
		if !in.IsEnabled() || in.IsEmpty() {
			continue
		}
		if in.IsSensitive() {
			out[in.Name()] = logging.Redacted
			continue
		}
		out[in.Name()] = in.StringValue()
	}
	return out
}
