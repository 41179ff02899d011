package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})
	return j
}

type fakeCommand struct {
	command.Base
	name   string
	inputs []*input.Input
}

func (f *fakeCommand) Metadata() command.Metadata { return command.Metadata{Name: f.name} }

func (f *fakeCommand) InitializeUI(b *command.Builder) error {
	for _, in := range f.inputs {
		b.Add(in)
	}
	return nil
}

func (f *fakeCommand) Execute(*command.ExecutionContext) (command.Result, error) {
	return command.Success(f.name), nil
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	first, err := j.Record(ctx, Entry{Command: "greet", Status: StatusSucceeded, Message: "Hello, ada", Inputs: map[string]string{"arguments": "ada"}})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, first.ID, first.RunID)
	_, err = j.Record(ctx, Entry{Command: "project-new", Status: StatusFailed, Error: "disk full"})
	require.NoError(t, err)

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "project-new", entries[0].Command)
	require.Equal(t, StatusFailed, entries[0].Status)
	require.Equal(t, "disk full", entries[0].Error)
	require.Empty(t, entries[0].Inputs)
	require.Equal(t, "ada", entries[1].Inputs["arguments"])
	require.False(t, entries[1].FinishedAt.IsZero())

	entries, err = j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRecordValidatesEntry(t *testing.T) {
	j := newTestJournal(t)

	_, err := j.Record(context.Background(), Entry{Status: StatusSucceeded})
	require.True(t, errors.Is(err, ErrInvalidEntry))
	_, err = j.Recent(context.Background(), 0)
	require.True(t, errors.Is(err, ErrInvalidLimit))
}

func TestPrune(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := j.Record(ctx, Entry{Command: name, Status: StatusSucceeded})
		require.NoError(t, err)
	}

	deleted, err := j.Prune(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "c", entries[0].Command)
	require.Equal(t, "b", entries[1].Command)
}

func TestListenerRecordsRunInOrder(t *testing.T) {
	j := newTestJournal(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j.now = func() time.Time { return fixed }
	ctx := context.Background()

	first := &fakeCommand{name: "projectNew", inputs: []*input.Input{
		input.New("name"),
		input.New("token", input.Sensitive()),
		input.New("unused"),
	}}
	b, err := command.NewBuilder(nil, first, nil)
	require.NoError(t, err)
	require.NoError(t, first.inputs[0].SetValue("demo"))
	require.NoError(t, first.inputs[1].SetValue("s3cr3t"))
	second := &fakeCommand{name: "database"}

	l := j.Listener(ctx, "", nil)
	l.Track(b)
	ectx := command.NewExecutionContext(ctx, command.NewContext(), nil, nil)
	_, err = command.Execute(ectx, first, l)
	require.NoError(t, err)
	l.PreCommandExecuted(second, ectx)
	l.PostCommandFailure(second, ectx, errors.New("boom"))
	require.NoError(t, l.Err())

	entries, err := j.Run(ctx, l.RunID())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "project-new", entries[0].Command)
	require.Equal(t, 0, entries[0].Seq)
	require.Equal(t, map[string]string{"name": "demo", "token": logging.Redacted}, entries[0].Inputs)
	require.True(t, entries[0].StartedAt.Equal(fixed))
	require.Equal(t, "database", entries[1].Command)
	require.Equal(t, StatusFailed, entries[1].Status)
	require.Equal(t, "boom", entries[1].Error)
}

func TestListenerCollectsWriteFailures(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	l := j.Listener(context.Background(), "run-1", logging.Discard())
	cmd := &fakeCommand{name: "greet"}
	ectx := command.NewExecutionContext(context.Background(), command.NewContext(), nil, nil)
	_, err = command.Execute(ectx, cmd, l)
	require.NoError(t, err, "a failing journal never fails the command")
	require.Error(t, l.Err())
}
