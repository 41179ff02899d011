package shell

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/builtin"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/journal"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abort stands for Ctrl-C in scripted input.
const abort = "^C"

type fakeReader struct {
	lines   []string
	prompts []string
	history []string
}

func (f *fakeReader) next(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	if line == abort {
		return "", ErrAborted
	}
	return line, nil
}

func (f *fakeReader) Prompt(prompt string) (string, error)         { return f.next(prompt) }
func (f *fakeReader) PasswordPrompt(prompt string) (string, error) { return f.next(prompt) }
func (f *fakeReader) AppendHistory(line string)                    { f.history = append(f.history, line) }

type fixture struct {
	shell   *Shell
	reader  *fakeReader
	out     *bytes.Buffer
	handler *apperrors.TUIHandler
}

func newFixture(t *testing.T, jr ports.ExecutionJournal, lines ...string) *fixture {
	t.Helper()
	f := &fixture{
		reader:  &fakeReader{lines: lines},
		out:     &bytes.Buffer{},
		handler: apperrors.NewTUIHandler(nil),
	}
	f.shell = New(f.reader, builtin.Registry(), jr, Config{Out: f.out, Err: f.out, Handler: f.handler})
	return f
}

func (f *fixture) texts(kind apperrors.MessageType) []string {
	var out []string
	for _, m := range f.handler.All() {
		if m.Type == kind {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestRunExecutesCommands(t *testing.T) {
	f := newFixture(t, nil, "greet Ada", `greet "Ada Lovelace" -s`, "exit", "greet never")
	require.NoError(t, f.shell.Run(context.Background()))

	assert.Equal(t, "Hello, Ada!\nHELLO, ADA LOVELACE!\n", f.out.String())
	assert.Equal(t, []string{"greeted 1 time(s)", "greeted 1 time(s)"}, f.texts(apperrors.MessageTypeSuccess))
	assert.Equal(t, []string{"greet Ada", `greet "Ada Lovelace" -s`, "exit"}, f.reader.history)
	assert.Equal(t, []string{"greet never"}, f.reader.lines)
}

func TestRunSkipsBlankAbortAndComments(t *testing.T) {
	f := newFixture(t, nil, "", abort, "# note", "nope")
	require.NoError(t, f.shell.Run(context.Background()))

	errs := f.texts(apperrors.MessageTypeError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unknown command: nope")
	assert.Equal(t, []string{"nope"}, f.reader.history)
}

func TestRunReportsParseFailures(t *testing.T) {
	f := newFixture(t, nil, "greet --times 0", `greet "unterminated`)
	require.NoError(t, f.shell.Run(context.Background()))

	errs := f.texts(apperrors.MessageTypeError)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "between 1 and 10")
	assert.Contains(t, errs[1], "parse line")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t, nil, "greet")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.shell.Run(ctx), context.Canceled)
}

func TestWizardIsPromptedPageByPage(t *testing.T) {
	// Page one answers name, kind and features, then takes the default
	// step; page two keeps the derived image and finishes.
	f := newFixture(t, nil,
		"project-new",
		"demo", "", "docker",
		"",
		"",
		"",
		"exit",
	)
	require.NoError(t, f.shell.Run(context.Background()))

	assert.Equal(t, "create library demo\nbuild image demo:latest\n", stripHeaders(f.out.String()))
	assert.Equal(t, []string{"create library demo", "build image demo:latest"}, f.texts(apperrors.MessageTypeSuccess))
	assert.Contains(t, f.reader.prompts, "name*: ")
	assert.Contains(t, f.reader.prompts, "kind {library|service} [library]: ")
	assert.Contains(t, f.reader.prompts, "next/finish/cancel [next]: ")
	assert.Contains(t, f.reader.prompts, "image* [demo:latest]: ")
	assert.Contains(t, f.reader.prompts, "back/finish/cancel [finish]: ")
}

func TestWizardRepromptsOnConversionError(t *testing.T) {
	f := newFixture(t, nil,
		"project-new --name demo --features database",
		"", "", "",
		"",
		"postgres", "abc", "6543",
		"f",
	)
	require.NoError(t, f.shell.Run(context.Background()))

	assert.Contains(t, f.texts(apperrors.MessageTypeSuccess), "add database postgres on port 6543")
	errs := f.texts(apperrors.MessageTypeError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "port")
}

func TestWizardFinishRejectedThenCancelled(t *testing.T) {
	f := newFixture(t, nil,
		"project-new",
		"", "", "",
		"finish",
		"", "", "",
		"what",
		"cancel",
	)
	require.NoError(t, f.shell.Run(context.Background()))

	assert.Contains(t, f.texts(apperrors.MessageTypeError), "name must be specified")
	assert.Equal(t, []string{`unknown step "what"`}, f.texts(apperrors.MessageTypeWarning))
	assert.Contains(t, f.texts(apperrors.MessageTypeInfo), "project-new cancelled")
	assert.Empty(t, f.texts(apperrors.MessageTypeSuccess))
}

func TestWizardAbortAtPrompt(t *testing.T) {
	f := newFixture(t, nil, "project-new", abort)
	require.NoError(t, f.shell.Run(context.Background()))
	assert.Equal(t, []string{"project-new cancelled"}, f.texts(apperrors.MessageTypeInfo))
}

func TestHelpAndDescribe(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.shell.Execute(context.Background(), "help")
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "greet")
	assert.Contains(t, f.out.String(), "Scaffold a project plan step by step")

	f.out.Reset()
	_, err = f.shell.Execute(context.Background(), "greet --help")
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "--times")

	f.out.Reset()
	_, err = f.shell.Execute(context.Background(), "describe greet")
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "command: greet")

	_, err = f.shell.Execute(context.Background(), "describe")
	assert.Error(t, err)

	quit, err := f.shell.Execute(context.Background(), "quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestHistory(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.shell.Execute(context.Background(), "history")
	assert.ErrorIs(t, err, app.ErrJournalDisabled)

	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	f = newFixture(t, app.NewExecutionJournal(j))
	_, err = f.shell.Execute(context.Background(), "history")
	require.NoError(t, err)
	assert.Equal(t, []string{"no executions recorded"}, f.texts(apperrors.MessageTypeInfo))

	_, err = f.shell.Execute(context.Background(), "greet Ada")
	require.NoError(t, err)
	f.out.Reset()
	_, err = f.shell.Execute(context.Background(), "history 5")
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "greet")
	assert.Contains(t, f.out.String(), "succeeded")

	_, err = f.shell.Execute(context.Background(), "history x")
	assert.Error(t, err)
}

func TestComplete(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		line string
		want []string
	}{
		{"", []string{"describe", "exit", "greet", "help", "history", "project-new", "quit"}},
		{"gr", []string{"greet"}},
		{"help pro", []string{"help project-new"}},
		{"project-new --k", []string{"project-new --kind"}},
		{"project-new --kind ", []string{"project-new --kind library", "project-new --kind service"}},
		{"project-new --kind s", []string{"project-new --kind service"}},
		{"greet --", []string{"greet --greeting", "greet --shout", "greet --times"}},
		{"unknown --x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, f.shell.Complete(tt.line))
		})
	}
}

func TestWriteHistoryKeepsNewest(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeHistory(&out, strings.NewReader("a\nb\nc\nd\n"), 2))
	assert.Equal(t, "c\nd\n", out.String())

	out.Reset()
	require.NoError(t, writeHistory(&out, strings.NewReader(""), 2))
	assert.Empty(t, out.String())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(" , "))
}

func TestInputPromptMasksSensitiveValues(t *testing.T) {
	opt := &options.Option{Name: "token", Required: true}
	assert.Equal(t, "token* [***]: ", inputPrompt(opt, "secret", true))
	assert.Equal(t, "token*: ", inputPrompt(opt, "", true))
}

func TestAnswerValueClearsOrEscapesDash(t *testing.T) {
	single := &options.Option{Name: "suffix"}
	assert.Nil(t, answerValue(single, "-"))
	assert.Equal(t, "-", answerValue(single, `\-`))
	assert.Equal(t, `\n`, answerValue(single, `\\n`))
	assert.Equal(t, "v1", answerValue(single, "v1"))

	many := &options.Option{Name: "tags", Arity: options.ArityMany}
	assert.Nil(t, answerValue(many, "-"))
	assert.Equal(t, []string{"-", "b"}, answerValue(many, `\-,b`))
}

func TestWizardPromptAcceptsEscapedDash(t *testing.T) {
	// The escaped dash reaches the name validation as a literal value.
	f := newFixture(t, nil,
		"project-new",
		`\-`, "", "",
		"cancel",
	)
	require.NoError(t, f.shell.Run(context.Background()))

	assert.Contains(t, f.out.String(), `\- types a literal -`)
	assert.Contains(t, f.texts(apperrors.MessageTypeError),
		"name must start with a letter and contain only lower case letters, digits and dashes")
	assert.Contains(t, f.texts(apperrors.MessageTypeInfo), "project-new cancelled")
}

// stripHeaders drops the page headers, keeping command output only.
func stripHeaders(s string) string {
	var keep []string
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if strings.Contains(line, "[") {
			continue
		}
		keep = append(keep, line)
	}
	return strings.Join(keep, "\n") + "\n"
}
