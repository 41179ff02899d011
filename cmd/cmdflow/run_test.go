package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/tui"
	"github.com/cristianoliveira/cmdflow/internal/validation"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunCmdPanicsWhenLocatorIsNil(t *testing.T) {
	assert.PanicsWithValue(t, "NewRunCmd: locator dependency cannot be nil", func() {
		NewRunCmd(cliDeps{})
	})
}

func TestRunCommandPassesArgumentsThrough(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, NewRunCmd(env.deps), "greet", "--times", "2", "-s", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "HELLO, ADA!\nHELLO, ADA!\n", out)
	assert.Contains(t, env.stdout.String(), "greeted 2 time(s)")

	entries := recent(t, env)
	require.Len(t, entries, 1)
	assert.Equal(t, "greet", entries[0].Command)
}

func TestRunCommandHelpPrintsUsage(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, NewRunCmd(env.deps), "greet", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--times")
	assert.Empty(t, recent(t, env))
}

func TestRunCommandErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := execute(t, NewRunCmd(env.deps), "missing")
	assert.ErrorIs(t, err, app.ErrUnknownCommand)

	_, err = execute(t, NewRunCmd(env.deps), "greet", "--times", "11")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, exitInvalid, exitCode(err))

	_, err = execute(t, NewRunCmd(env.deps))
	assert.Error(t, err)
}

func TestRunWizardNonInteractive(t *testing.T) {
	env := newTestEnv(t)
	setConfig(t, "non_interactive", "true")

	out, err := execute(t, NewRunCmd(env.deps), "project-new", "--name", "demo", "--features", "ci")
	require.NoError(t, err)
	assert.Equal(t, "create library demo\nconfigure ci on github\n", out)
	assert.Contains(t, env.stdout.String(), "configure ci on github")
	assert.Empty(t, env.terminal.opened)

	entries := recent(t, env)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].RunID, entries[1].RunID)
}

func TestRunWizardNonInteractiveRejectsIncompletePage(t *testing.T) {
	env := newTestEnv(t)
	setConfig(t, "non_interactive", "true")

	_, err := execute(t, NewRunCmd(env.deps), "project-new")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "name must be specified")
	assert.Empty(t, recent(t, env))
}

func TestRunWizardPromptsOnTerminal(t *testing.T) {
	// name, kind, features, then the default step, which is finish.
	env := newTestEnv(t, "demo", "service", "", "")

	out, err := execute(t, NewRunCmd(env.deps), "project-new")
	require.NoError(t, err)
	assert.Contains(t, out, "create service demo")
	assert.Equal(t, []string{""}, env.terminal.opened)
	assert.Equal(t, 1, env.terminal.closed)
	assert.Contains(t, env.stderr.String(), "docker")
}

func TestRunWizardCancelledOnTerminal(t *testing.T) {
	env := newTestEnv(t, "^C")

	_, err := execute(t, NewRunCmd(env.deps), "project-new")
	require.NoError(t, err)
	assert.Contains(t, env.stdout.String(), "project-new cancelled")
	assert.Empty(t, recent(t, env))
}

func TestRunWizardInTUI(t *testing.T) {
	env := newTestEnv(t)
	env.deps.runTUI = func(ctx context.Context, s *wizard.Session, finish tui.FinishFunc) (*tui.Model, error) {
		m := tui.New(ctx, s, finish)
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("demo")})
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
		require.NotNil(t, cmd)
		m.Update(cmd())
		return m, nil
	}

	out, err := execute(t, NewRunCmd(env.deps), "--tui", "project-new")
	require.NoError(t, err)
	assert.Equal(t, "create library demo\n", out)
	assert.Contains(t, env.stdout.String(), "create library demo")
	require.Len(t, recent(t, env), 1)
}

func TestRunWizardInTUICancelled(t *testing.T) {
	env := newTestEnv(t)
	env.deps.runTUI = func(ctx context.Context, s *wizard.Session, finish tui.FinishFunc) (*tui.Model, error) {
		m := tui.New(ctx, s, finish)
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		return m, nil
	}

	_, err := execute(t, NewRunCmd(env.deps), "--tui", "project-new", "--name", "demo")
	require.NoError(t, err)
	assert.Contains(t, env.stdout.String(), "project-new cancelled")
	assert.Empty(t, recent(t, env))
}

func TestRunNotifiesHooksListener(t *testing.T) {
	env := newTestEnv(t)
	var ran []string
	env.deps.hooks = func(logging.Logger) command.ExecutionListener {
		return command.ListenerFuncs{
			Post: func(cmd command.Command, _ *command.ExecutionContext, _ command.Result) {
				ran = append(ran, cmd.Metadata().Name)
			},
		}
	}

	_, err := execute(t, NewRunCmd(env.deps), "greet", "Ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, ran)
	require.Len(t, recent(t, env), 1)
}
