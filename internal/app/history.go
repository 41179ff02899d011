package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cristianoliveira/cmdflow/internal/journal"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/ports"
)

// ErrJournalDisabled reports a history query while journaling is off.
var ErrJournalDisabled = errors.New("execution journal is disabled")

// journalAdapter exposes a *journal.Journal as a ports.ExecutionJournal.
type journalAdapter struct {
	*journal.Journal
}

func (a journalAdapter) Recorder(ctx context.Context, logger logging.Logger) ports.RunRecorder {
	return a.Listener(ctx, "", logger)
}

// NewExecutionJournal wraps j for the use cases.
func NewExecutionJournal(j *journal.Journal) ports.ExecutionJournal {
	return journalAdapter{Journal: j}
}

// OpenJournal opens the journal configured by journal_enabled and
// journal_path. It returns nil and a no-op close when journaling is off.
func OpenJournal(cfg ports.ConfigProvider) (ports.ExecutionJournal, func() error, error) {
	noop := func() error { return nil }
	if !cfg.GetBool("journal_enabled", true) {
		return nil, noop, nil
	}
	path := cfg.Get("journal_path", "")
	if path == "" {
		path = filepath.Join(cfg.Get("state_dir", "."), "journal.db")
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open journal: %w", err)
	}
	return NewExecutionJournal(j), j.Close, nil
}

// HistoryUseCase answers questions about past executions.
type HistoryUseCase struct {
	journal ports.ExecutionJournal
}

// NewHistoryUseCase creates a history use-case. A nil journal makes every
// query fail with ErrJournalDisabled.
func NewHistoryUseCase(j ports.ExecutionJournal) *HistoryUseCase {
	return &HistoryUseCase{journal: j}
}

// Recent returns up to limit entries, newest first.
func (u *HistoryUseCase) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if u.journal == nil {
		return nil, ErrJournalDisabled
	}
	return u.journal.Recent(ctx, limit)
}

// Run returns the entries of one run in execution order.
func (u *HistoryUseCase) Run(ctx context.Context, runID string) ([]journal.Entry, error) {
	if u.journal == nil {
		return nil, ErrJournalDisabled
	}
	return u.journal.Run(ctx, runID)
}

// Prune keeps the newest keep entries and returns how many were removed.
func (u *HistoryUseCase) Prune(ctx context.Context, keep int) (int64, error) {
	if u.journal == nil {
		return 0, ErrJournalDisabled
	}
	return u.journal.Prune(ctx, keep)
}
