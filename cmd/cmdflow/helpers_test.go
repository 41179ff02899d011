package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/builtin"
	"github.com/cristianoliveira/cmdflow/internal/colors"
	"github.com/cristianoliveira/cmdflow/internal/config"
	"github.com/cristianoliveira/cmdflow/internal/journal"
	"github.com/cristianoliveira/cmdflow/internal/ports"
	"github.com/cristianoliveira/cmdflow/internal/shell"
	"github.com/cristianoliveira/cmdflow/internal/tui"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

type fakeTerminal struct {
	lines     []string
	prompts   []string
	history   []string
	completer func(string) []string
	opened    []string
	closed    int
}

func (f *fakeTerminal) Prompt(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	if line == "^C" {
		return "", shell.ErrAborted
	}
	return line, nil
}

func (f *fakeTerminal) PasswordPrompt(prompt string) (string, error) { return f.Prompt(prompt) }
func (f *fakeTerminal) AppendHistory(line string)                    { f.history = append(f.history, line) }
func (f *fakeTerminal) SetCompleter(c func(string) []string)         { f.completer = c }
func (f *fakeTerminal) Close() error                                 { f.closed++; return nil }

type testEnv struct {
	deps     cliDeps
	journal  ports.ExecutionJournal
	terminal *fakeTerminal
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

// newTestEnv wires the commands to a temporary journal and a scripted
// terminal, and captures console output.
func newTestEnv(t *testing.T, lines ...string) *testEnv {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	env := &testEnv{
		journal:  app.NewExecutionJournal(j),
		terminal: &fakeTerminal{lines: lines},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
	env.deps = cliDeps{
		locator: builtin.Registry(),
		openJournal: func() (ports.ExecutionJournal, func() error, error) {
			return env.journal, func() error { return nil }, nil
		},
		openTerminal: func(historyFile string, _ int) lineTerminal {
			env.terminal.opened = append(env.terminal.opened, historyFile)
			return env.terminal
		},
		runTUI: func(ctx context.Context, s *wizard.Session, finish tui.FinishFunc) (*tui.Model, error) {
			return tui.New(ctx, s, finish), nil
		},
	}
	t.Cleanup(colors.SetOutput(env.stdout, env.stderr))
	setConfig(t, "non_interactive", "false")
	return env
}

// setConfig overrides a configuration key for the test.
func setConfig(t *testing.T, key, value string) {
	t.Helper()
	prev := config.Get(key, "")
	config.Set(key, value)
	t.Cleanup(func() { config.Set(key, prev) })
}

// execute runs c with args and returns what it printed.
func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func recent(t *testing.T, env *testEnv) []journal.Entry {
	t.Helper()
	entries, err := env.journal.Recent(context.Background(), 10)
	require.NoError(t, err)
	return entries
}
