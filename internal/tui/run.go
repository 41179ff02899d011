package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
)

// Run shows the session on the alternate screen until it is finished or
// cancelled, and returns the final model.
func Run(ctx context.Context, s *wizard.Session, finish FinishFunc, opts ...tea.ProgramOption) (*Model, error) {
	m := New(ctx, s, finish)
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("tui: unexpected model %T", final)
	}
	return fm, nil
}
