package main

import (
	"context"
	"path/filepath"

	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/builtin"
	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/config"
	"github.com/cristianoliveira/cmdflow/internal/hooks"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/ports"
	"github.com/cristianoliveira/cmdflow/internal/shell"
	"github.com/cristianoliveira/cmdflow/internal/tui"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
)

// lineTerminal is a LineReader that completes and must be closed.
type lineTerminal interface {
	shell.LineReader
	SetCompleter(f func(line string) []string)
	Close() error
}

// cliDeps is everything the subcommands reach outside the process for.
type cliDeps struct {
	locator      ports.CommandLocator
	openJournal  func() (ports.ExecutionJournal, func() error, error)
	openTerminal func(historyFile string, limit int) lineTerminal
	runTUI       func(ctx context.Context, s *wizard.Session, finish tui.FinishFunc) (*tui.Model, error)
	// hooks returns the listener running user scripts, nil when disabled.
	hooks        func(logger logging.Logger) command.ExecutionListener
}

func defaultDeps() cliDeps {
	return cliDeps{
		locator: builtin.Registry(),
		openJournal: func() (ports.ExecutionJournal, func() error, error) {
			return app.OpenJournal(config.Provider{})
		},
		openTerminal: func(historyFile string, limit int) lineTerminal {
			return shell.NewTerminal(historyFile, limit, logging.GetGlobal())
		},
		runTUI: func(ctx context.Context, s *wizard.Session, finish tui.FinishFunc) (*tui.Model, error) {
			return tui.Run(ctx, s, finish)
		},
		hooks: func(logger logging.Logger) command.ExecutionListener {
			cfg, ok := hooks.FromConfig(config.Provider{}, logger)
			if !ok {
				return nil
			}
			return hooks.New(cfg)
		},
	}
}

// listener resolves the hooks listener of d, if any.
func (d cliDeps) listener(logger logging.Logger) command.ExecutionListener {
	if d.hooks == nil {
		return nil
	}
	return d.hooks(logger)
}

// historyFile is where the shell keeps typed lines.
func historyFile() string {
	if path := config.Get("history_file", ""); path != "" {
		return path
	}
	return filepath.Join(config.Get("state_dir", "."), "history")
}

var deps = defaultDeps()
