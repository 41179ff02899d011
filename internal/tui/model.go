// Package tui drives a wizard session full screen with bubbletea: one text
// input per active option, page navigation on control keys.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/cmdflow/internal/command"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/validation"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
)

// FinishFunc commits the session once every page validates.
type FinishFunc func(ctx context.Context, s *wizard.Session) ([]command.Result, error)

// finishedMsg carries the outcome of the FinishFunc.
type finishedMsg struct {
	results []command.Result
	err     error
}

type field struct {
	opt   *options.Option
	input textinput.Model
}

// Model is the bubbletea model of one wizard run.
type Model struct {
	ctx      context.Context
	session  *wizard.Session
	finish   FinishFunc
	models   map[*command.Builder]*options.Model
	fields   []field
	focus    int
	messages *apperrors.TUIHandler
	width    int

	finishing bool
	done      bool
	cancelled bool
	results   []command.Result
	err       error
}

// New creates the model for a launched session.
func New(ctx context.Context, s *wizard.Session, finish FinishFunc) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if finish == nil {
		finish = func(ctx context.Context, s *wizard.Session) ([]command.Result, error) {
			return s.Finish(ctx, nil)
		}
	}
	m := &Model{
		ctx:      ctx,
		session:  s,
		finish:   finish,
		models:   make(map[*command.Builder]*options.Model),
		messages: apperrors.NewTUIHandler(nil),
	}
	m.loadPage()
	return m
}

// Results returns the results of a finished run.
func (m *Model) Results() []command.Result { return m.results }

// Err returns the error the run finished with.
func (m *Model) Err() error { return m.err }

// Cancelled reports whether the user left without finishing.
func (m *Model) Cancelled() bool { return m.cancelled }

// Messages returns the status messages of the current page.
func (m *Model) Messages() []apperrors.Message { return m.messages.All() }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for i := range m.fields {
			m.fields[i].input.Width = max(msg.Width-30, 10)
		}
		return m, nil
	case finishedMsg:
		m.finishing = false
		m.done = true
		m.results, m.err = msg.results, msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, m.updateFocused(msg)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done || m.finishing {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		if m.commit() {
			m.moveFocus(1)
		}
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		if m.commit() {
			m.moveFocus(-1)
		}
		return m, nil
	case tea.KeyEnter:
		if !m.commit() {
			return m, nil
		}
		if m.focus < len(m.fields)-1 {
			m.moveFocus(1)
			return m, nil
		}
		if m.session.CanFlipToNextPage() {
			m.nextPage()
			return m, nil
		}
		return m, m.startFinish()
	case tea.KeyCtrlN:
		if m.commit() {
			m.nextPage()
		}
		return m, nil
	case tea.KeyCtrlB:
		if m.commit() {
			m.previousPage()
		}
		return m, nil
	case tea.KeyCtrlF:
		if !m.commit() {
			return m, nil
		}
		return m, m.startFinish()
	}
	return m, m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return cmd
}

func (m *Model) model() *options.Model {
	page := m.session.Current()
	if om, ok := m.models[page]; ok {
		return om
	}
	om := options.FromBuilder(page)
	m.models[page] = om
	return om
}

// loadPage builds one field per active option of the current page.
func (m *Model) loadPage() {
	m.messages.Clear()
	m.focus = 0
	m.fields = m.buildFields()
	m.focusField()
}

func (m *Model) buildFields() []field {
	om := m.model()
	opts := append([]*options.Option(nil), om.Options...)
	if om.Argument != nil {
		opts = append(opts, om.Argument)
	}
	var fields []field
	for _, opt := range opts {
		if !opt.IsActivated() {
			continue
		}
		in, err := m.session.InputComponent(opt.Input)
		if err != nil {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Placeholder = opt.Description
		if len(opt.Choices) > 0 {
			ti.Placeholder = strings.Join(opt.Choices, "|")
		}
		if in.IsSensitive() {
			ti.EchoMode = textinput.EchoPassword
		}
		ti.SetValue(in.StringValue())
		if m.width > 0 {
			ti.Width = max(m.width-30, 10)
		}
		fields = append(fields, field{opt: opt, input: ti})
	}
	return fields
}

// refresh rebuilds the fields after a value changed, since enablement rules
// may have switched options on or off. Focus stays on the same option.
func (m *Model) refresh() {
	focused := ""
	if m.focus < len(m.fields) {
		focused = m.fields[m.focus].opt.Name
	}
	m.fields = m.buildFields()
	m.focus = 0
	for i, f := range m.fields {
		if f.opt.Name == focused {
			m.focus = i
		}
	}
	m.focusField()
}

func (m *Model) focusField() {
	for i := range m.fields {
		if i == m.focus {
			m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
}

func (m *Model) moveFocus(delta int) {
	if len(m.fields) == 0 {
		return
	}
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.focusField()
}

// commit assigns the focused field's text to its input. A conversion
// failure is reported and keeps the focus.
func (m *Model) commit() bool {
	if len(m.fields) == 0 {
		return true
	}
	f := m.fields[m.focus]
	in, err := m.session.InputComponent(f.opt.Input)
	if err != nil {
		m.messages.Error(err.Error())
		return false
	}
	text := strings.TrimSpace(f.input.Value())
	if text == in.StringValue() {
		return true
	}
	var value any = text
	switch {
	case text == "":
		value = nil
	case f.opt.Arity == options.ArityMany:
		value = splitList(text)
	}
	if err := m.session.SetValueFor(f.opt.Input, value); err != nil {
		m.messages.Error(err.Error())
		return false
	}
	m.messages.Clear()
	m.refresh()
	return true
}

func splitList(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m *Model) nextPage() {
	if err := m.session.Next(); err != nil {
		m.messages.Error(err.Error())
		return
	}
	m.loadPage()
}

func (m *Model) previousPage() {
	if err := m.session.Previous(); err != nil {
		m.messages.Error(err.Error())
		return
	}
	m.loadPage()
}

// startFinish validates every page and runs the FinishFunc off the update
// loop.
func (m *Model) startFinish() tea.Cmd {
	if verr := validation.NewError(validation.ErrorsOnly(m.session.ValidateAll())); verr != nil {
		apperrors.Report(m.messages, verr)
		return nil
	}
	m.finishing = true
	ctx, s, finish := m.ctx, m.session, m.finish
	return func() tea.Msg {
		results, err := finish(ctx, s)
		return finishedMsg{results: results, err: err}
	}
}
