package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/colors"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/ports"
	"github.com/cristianoliveira/cmdflow/internal/wizard"
)

// clearValue typed at an input prompt removes the current value. A leading
// escapeChar is dropped from an answer, so `\-` enters a literal "-".
const (
	clearValue = "-"
	escapeChar = `\`
)

// promptHint follows every page header.
const promptHint = `(- clears a value, \- types a literal -)`

// PromptDriver asks for every active option of a page on the line reader,
// then for the navigation step. Ctrl-C or EOF cancels the wizard.
type PromptDriver struct {
	reader  LineReader
	out     io.Writer
	handler apperrors.ErrorHandler
}

var _ ports.WizardDriver = (*PromptDriver)(nil)

// NewPromptDriver creates a driver prompting on reader.
func NewPromptDriver(reader LineReader, out io.Writer, handler apperrors.ErrorHandler) *PromptDriver {
	return &PromptDriver{reader: reader, out: out, handler: handler}
}

// errStop ends the page early; the wizard is cancelled.
var errStop = errors.New("stop")

func (d *PromptDriver) Page(_ context.Context, s *wizard.Session, model *options.Model) (ports.WizardAction, error) {
	md := s.Current().Metadata()
	header := colors.Bold(fmt.Sprintf("[%d] %s", s.PageCount(), model.Name))
	if md.Description != "" {
		header += " " + colors.Faint(md.Description)
	}
	fmt.Fprintln(d.out, header+" "+colors.Faint(promptHint))

	fields := append([]*options.Option(nil), model.Options...)
	if model.Argument != nil {
		fields = append(fields, model.Argument)
	}
	for _, opt := range fields {
		if !opt.IsActivated() {
			continue
		}
		if err := d.ask(s, opt); err != nil {
			if errors.Is(err, errStop) {
				return ports.ActionCancel, nil
			}
			return ports.ActionCancel, err
		}
	}

	apperrors.ReportMessages(d.handler, s.ValidationMessages())
	return d.chooseAction(s)
}

func (d *PromptDriver) Problem(err error) {
	apperrors.Report(d.handler, err)
}

func (d *PromptDriver) read(prompt string, sensitive bool) (string, error) {
	var line string
	var err error
	if sensitive {
		line, err = d.reader.PasswordPrompt(prompt)
	} else {
		line, err = d.reader.Prompt(prompt)
	}
	if errors.Is(err, ErrAborted) || errors.Is(err, io.EOF) {
		return "", errStop
	}
	return strings.TrimSpace(line), err
}

// ask prompts until the answer converts. An empty answer keeps the value.
func (d *PromptDriver) ask(s *wizard.Session, opt *options.Option) error {
	in, err := s.InputComponent(opt.Input)
	if err != nil {
		return err
	}
	for {
		line, err := d.read(inputPrompt(opt, in.StringValue(), in.IsSensitive()), in.IsSensitive())
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		if err := s.SetValueFor(opt.Input, answerValue(opt, line)); err != nil {
			d.handler.Error(err.Error())
			continue
		}
		return nil
	}
}

// answerValue turns a non-empty answer into the value to assign. nil clears.
func answerValue(opt *options.Option, line string) any {
	if line == clearValue {
		return nil
	}
	line = strings.TrimPrefix(line, escapeChar)
	if opt.Arity == options.ArityMany {
		return splitList(line)
	}
	return line
}

func inputPrompt(opt *options.Option, current string, sensitive bool) string {
	var b strings.Builder
	b.WriteString(opt.Name)
	if opt.Required {
		b.WriteString("*")
	}
	if len(opt.Choices) > 0 {
		b.WriteString(" {" + strings.Join(opt.Choices, "|") + "}")
	}
	if current != "" {
		if sensitive {
			current = "***"
		}
		b.WriteString(" [" + current + "]")
	}
	b.WriteString(": ")
	return b.String()
}

func splitList(line string) []string {
	var out []string
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (d *PromptDriver) chooseAction(s *wizard.Session) (ports.WizardAction, error) {
	var labels []string
	def := ports.ActionFinish
	if s.CanFlipToNextPage() {
		labels = append(labels, "next")
		def = ports.ActionNext
	}
	if s.CanFlipToPreviousPage() {
		labels = append(labels, "back")
	}
	labels = append(labels, "finish", "cancel")
	prompt := fmt.Sprintf("%s [%s]: ", strings.Join(labels, "/"), def)

	for {
		line, err := d.read(prompt, false)
		if err != nil {
			if errors.Is(err, errStop) {
				return ports.ActionCancel, nil
			}
			return ports.ActionCancel, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "n", "next":
			return ports.ActionNext, nil
		case "b", "back", "p", "previous":
			return ports.ActionPrevious, nil
		case "f", "finish":
			return ports.ActionFinish, nil
		case "c", "cancel", "q":
			return ports.ActionCancel, nil
		default:
			d.handler.Warning(fmt.Sprintf("unknown step %q", line))
		}
	}
}
