package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleSubtitle = lipgloss.NewStyle().Faint(true)
	styleLabel    = lipgloss.NewStyle().Width(16)
	styleFocused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleHelp     = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

func (m *Model) View() string {
	switch {
	case m.cancelled:
		return styleWarning.Render("cancelled") + "\n"
	case m.done:
		return m.summaryView()
	case m.finishing:
		return styleSubtitle.Render("running...") + "\n"
	}

	var b strings.Builder
	om := m.model()
	b.WriteString(styleTitle.Render(fmt.Sprintf("%s (page %d)", om.Name, m.session.PageCount())))
	b.WriteString("\n")
	if desc := m.session.Current().Metadata().Description; desc != "" {
		b.WriteString(styleSubtitle.Render(desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, f := range m.fields {
		label := f.opt.Name
		if f.opt.Required {
			label += "*"
		}
		marker := "  "
		if i == m.focus {
			marker = styleFocused.Render("> ")
			label = styleFocused.Render(label)
		}
		b.WriteString(marker + styleLabel.Render(label) + f.input.View() + "\n")
	}
	if len(m.fields) == 0 {
		b.WriteString(styleSubtitle.Render("nothing to fill in on this page") + "\n")
	}

	if msgs := m.session.ValidationMessages(); len(msgs) > 0 {
		b.WriteString("\n")
		for _, msg := range msgs {
			b.WriteString(renderMessage(msg) + "\n")
		}
	}
	if latest, ok := m.messages.Latest(); ok && latest.Type == apperrors.MessageTypeError {
		b.WriteString("\n" + styleError.Render(latest.Text) + "\n")
	}

	b.WriteString(styleHelp.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) helpLine() string {
	keys := []string{"tab: field", "enter: confirm"}
	if m.session.CanFlipToNextPage() {
		keys = append(keys, "ctrl+n: next page")
	}
	if m.session.CanFlipToPreviousPage() {
		keys = append(keys, "ctrl+b: back")
	}
	keys = append(keys, "ctrl+f: finish", "esc: cancel")
	return strings.Join(keys, " • ")
}

func (m *Model) summaryView() string {
	var b strings.Builder
	for _, r := range m.results {
		if r.Message == "" {
			continue
		}
		if r.Success {
			b.WriteString(styleSuccess.Render("✓ "+r.Message) + "\n")
		} else {
			b.WriteString(styleWarning.Render(r.Message) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString(styleError.Render("Error: "+m.err.Error()) + "\n")
	}
	return b.String()
}

func renderMessage(msg validation.Message) string {
	switch apperrors.MessageTypeFor(msg.Severity) {
	case apperrors.MessageTypeError:
		return styleError.Render("✗ " + msg.Description)
	case apperrors.MessageTypeWarning:
		return styleWarning.Render("! " + msg.Description)
	default:
		return styleSubtitle.Render(msg.Description)
	}
}
