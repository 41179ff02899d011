package options

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCommand struct {
	command.Base
	name    string
	inputs  []*input.Input
	check   func(vctx *validation.Context)
	builder *command.Builder
}

func (c *testCommand) Metadata() command.Metadata {
	return command.Metadata{Name: c.name, Description: "test command"}
}

func (c *testCommand) InitializeUI(b *command.Builder) error {
	for _, in := range c.inputs {
		b.Add(in)
	}
	return nil
}

func (c *testCommand) Validate(vctx *validation.Context) {
	if c.check != nil {
		c.check(vctx)
	}
}

func (c *testCommand) Execute(*command.ExecutionContext) (command.Result, error) {
	return command.Success(c.name), nil
}

func newModel(t *testing.T, cmd *testCommand) *Model {
	t.Helper()
	b, err := command.NewBuilder(nil, cmd, nil)
	require.NoError(t, err)
	cmd.builder = b
	return FromBuilder(b)
}

func names(m *Model) []string {
	out := make([]string, 0, len(m.Options))
	for _, opt := range m.Options {
		out = append(out, opt.Name)
	}
	return out
}

func TestBuild_OptionNamesAreUniqueAndRequiredIsRendered(t *testing.T) {
	m := newModel(t, &testCommand{name: "projectNew", inputs: []*input.Input{
		input.New("targetPackage", input.Required()),
		input.New("target_package"),
		input.New("overwrite", input.WithType(convert.Bool), input.WithShortName('o')),
		input.New("topLevel", input.WithShortName('o')),
		input.New("tags", input.ManyValued()),
	}})

	assert.Equal(t, "project-new", m.Name)
	assert.Equal(t, []string{"target-package", "overwrite", "tags"}, names(m))
	require.Len(t, m.Diagnostics, 2)
	assert.Equal(t, "target_package", m.Diagnostics[0].Input)
	assert.Equal(t, "topLevel", m.Diagnostics[1].Input)

	seen := make(map[string]bool)
	for _, opt := range m.Options {
		assert.False(t, seen[opt.Name], "duplicate option %s", opt.Name)
		seen[opt.Name] = true
	}

	target, ok := m.Option("target-package")
	require.True(t, ok)
	assert.True(t, target.Required)
	assert.Equal(t, RenderRequired, target.Renderer)
	assert.Equal(t, ArityOne, target.Arity)

	overwrite, _ := m.Option("overwrite")
	assert.Equal(t, ArityNone, overwrite.Arity)
	assert.Equal(t, RenderDefault, overwrite.Renderer)
	tags, _ := m.OptionFor("tags")
	assert.Equal(t, ArityMany, tags.Arity)
}

func TestBuild_SkipsMalformedDeclarations(t *testing.T) {
	var logged bytes.Buffer
	inputs := []*input.Input{
		input.New(""),
		input.New("bad name"),
		input.New("color", input.WithType(convert.ValueType("color"))),
		input.New("times", input.WithType(convert.Int), input.WithDefault("many")),
		input.New("accent", input.WithShortName('é')),
		input.New("greeting", input.WithDefault("Hello")),
	}
	ctrl := &testCommand{name: "greet"}
	b, err := command.NewBuilder(nil, ctrl, nil)
	require.NoError(t, err)

	m := Build(b, inputs, WithLogger(logging.New(&logged, "warn")))

	assert.Equal(t, []string{"greeting"}, names(m))
	require.Len(t, m.Diagnostics, 5)
	assert.ErrorIs(t, m.Diagnostics[2].Err, convert.ErrNoConverter)
	assert.Contains(t, m.Diagnostics[3].Err.Error(), "invalid default value")
	assert.Contains(t, logged.String(), "skipping invalid option")

	greeting, _ := m.Option("greeting")
	assert.True(t, greeting.HasDefault)
	assert.Equal(t, "Hello", greeting.DefaultValue)
}

func TestBuild_ManyValuedDefaultIsJoined(t *testing.T) {
	m := newModel(t, &testCommand{name: "c", inputs: []*input.Input{
		input.New("ports", input.WithType(convert.Int), input.ManyValued(), input.WithDefault([]any{80, 443})),
	}})
	opt, ok := m.Option("ports")
	require.True(t, ok)
	assert.Equal(t, "80,443", opt.DefaultValue)
}

func TestArgumentsInputIsPositional(t *testing.T) {
	args := input.New(ArgumentsInputName, input.ManyValued())
	greeting := input.New("greeting", input.WithDefault("Hello"))
	cmd := &testCommand{name: "greet", inputs: []*input.Input{args, greeting}}
	m := newModel(t, cmd)

	require.NotNil(t, m.Argument)
	assert.NotContains(t, names(m), ArgumentsInputName)
	_, ok := m.Option(ArgumentsInputName)
	assert.False(t, ok)

	res, err := m.Parse([]string{"ada", "--greeting", "Hi", "grace"})
	require.NoError(t, err)
	assert.True(t, res.HasArgument())
	assert.Equal(t, []any{"ada", "grace"}, res.Argument())

	fresh := []*input.Input{input.New(ArgumentsInputName, input.ManyValued()), input.New("greeting", input.WithDefault("Hello"))}
	populated, err := m.Populate(res, fresh)
	require.NoError(t, err)
	require.Contains(t, populated, ArgumentsInputName)
	assert.Equal(t, []string{"ada", "grace"}, populated[ArgumentsInputName].StringValues())
	assert.Equal(t, "Hi", populated["greeting"].StringValue())
}

func TestParse_SingleArgumentAcceptsOneValue(t *testing.T) {
	m := newModel(t, &testCommand{name: "open", inputs: []*input.Input{input.New(ArgumentsInputName)}})

	_, err := m.Parse([]string{"a", "b"})
	assert.ErrorIs(t, err, ErrUnexpectedArgument)

	res, err := m.Parse([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, res.Argument())
}

func TestParse_RejectsArgumentWithoutPositionalInput(t *testing.T) {
	m := newModel(t, &testCommand{name: "c", inputs: []*input.Input{input.New("name")}})
	_, err := m.Parse([]string{"stray"})
	assert.ErrorIs(t, err, ErrUnexpectedArgument)
}

func TestParse_FlagsAndCollections(t *testing.T) {
	shout := input.New("shout", input.WithType(convert.Bool), input.WithShortName('s'))
	tags := input.New("tags", input.ManyValued())
	times := input.New("times", input.WithType(convert.Int), input.WithDefault(1))
	m := newModel(t, &testCommand{name: "greet", inputs: []*input.Input{shout, tags, times}})

	res, err := m.Parse([]string{"-s", "--tags", "a,b", "--tags=c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"shout", "tags"}, res.OptionNames())
	v, ok := res.OptionValue("shout")
	require.True(t, ok)
	assert.Equal(t, true, v)
	assert.Equal(t, []any{"a", "b", "c"}, res.OptionValues("tags"))
	assert.False(t, res.HasOption("times"))

	// The validator assigns values as a side effect.
	assert.True(t, shout.BoolValue())
	assert.Equal(t, []string{"a", "b", "c"}, tags.StringValues())
	assert.Equal(t, 1, times.IntValue())
}

func TestParse_ConversionFailureRejectsLine(t *testing.T) {
	m := newModel(t, &testCommand{name: "greet", inputs: []*input.Input{
		input.New("times", input.WithType(convert.Int)),
	}})
	_, err := m.Parse([]string{"--times", "often"})

	var convErr *convert.ConversionError
	require.ErrorAs(t, err, &convErr)
	var optErr *OptionError
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, "times", optErr.Option)
}

func TestParse_CommandValidationErrorsFailTheOption(t *testing.T) {
	times := input.New("times", input.WithType(convert.Int))
	cmd := &testCommand{name: "greet", inputs: []*input.Input{times}}
	cmd.check = func(vctx *validation.Context) {
		if times.IntValue() > 10 {
			vctx.AddError("times", "times must be between 1 and 10")
		}
		vctx.AddWarning("times", "advisory only")
	}
	m := newModel(t, cmd)

	_, err := m.Parse([]string{"--times", "11"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--times: times must be between 1 and 10")

	_, err = m.Parse([]string{"--times", "3"})
	assert.NoError(t, err)
}

func TestParse_ChoicesAreEnforced(t *testing.T) {
	m := newModel(t, &testCommand{name: "c", inputs: []*input.Input{
		input.New("kind", input.WithChoices("library", "service")),
	}})
	_, err := m.Parse([]string{"--kind", "app"})
	assert.ErrorContains(t, err, "kind must be one of: library, service")
}

func TestParse_RequiredOptions(t *testing.T) {
	m := newModel(t, &testCommand{name: "c", inputs: []*input.Input{
		input.New("name", input.Required()),
		input.New("greeting", input.Required(), input.WithDefault("Hello")),
	}})

	_, err := m.Parse(nil)
	var optErr *OptionError
	require.ErrorAs(t, err, &optErr)
	assert.ErrorIs(t, err, ErrRequiredOption)
	assert.Equal(t, "name", optErr.Option)

	_, err = m.Parse([]string{"--name", "demo"})
	assert.NoError(t, err, "a default satisfies a required option")
}

func TestParse_DisabledInputIsPresentButInactive(t *testing.T) {
	secret := input.New("secret", input.Required(), input.Disabled())
	m := newModel(t, &testCommand{name: "c", inputs: []*input.Input{secret}})

	opt, ok := m.Option("secret")
	require.True(t, ok, "disabled inputs stay in the model")
	assert.False(t, opt.IsActivated())

	_, err := m.Parse(nil)
	assert.NoError(t, err, "a disabled required input is not enforced")
	assert.True(t, secret.IsEmpty(), "and it is not treated as having a value")

	_, err = m.Parse([]string{"--secret", "x"})
	assert.ErrorIs(t, err, ErrOptionNotActive)
}

func TestParse_ActivationIsEvaluatedAtParseTime(t *testing.T) {
	engine := input.New("engine", input.WithChoices("postgres", "sqlite"), input.WithDefault("sqlite"))
	port := input.New("port", input.WithType(convert.Int), input.Required(),
		input.EnabledWhen(func() bool { return engine.StringValue() == "postgres" }))
	m := newModel(t, &testCommand{name: "database", inputs: []*input.Input{engine, port}})

	_, err := m.Parse([]string{"--port", "5432"})
	assert.ErrorIs(t, err, ErrOptionNotActive)

	_, err = m.Parse([]string{"--engine", "postgres"})
	assert.ErrorIs(t, err, ErrRequiredOption)

	_, err = m.Parse([]string{"--engine", "postgres", "--port", "5432"})
	require.NoError(t, err)
	assert.Equal(t, 5432, port.IntValue())
}

func TestParse_ActivationSeesValuesDeclaredLater(t *testing.T) {
	engine := input.New("engine", input.WithChoices("postgres", "sqlite"), input.WithDefault("sqlite"))
	port := input.New("port", input.WithType(convert.Int),
		input.EnabledWhen(func() bool { return engine.StringValue() == "postgres" }))
	m := newModel(t, &testCommand{name: "database", inputs: []*input.Input{port, engine}})

	res, err := m.Parse([]string{"--engine", "postgres", "--port", "5432"})
	require.NoError(t, err)
	assert.Equal(t, []string{"port", "engine"}, res.OptionNames())
	assert.Equal(t, 5432, port.IntValue())
	assert.Equal(t, "postgres", engine.StringValue())
}

func TestParse_RejectedLineLeavesInputsUntouched(t *testing.T) {
	engine := input.New("engine", input.WithChoices("postgres", "sqlite"), input.WithDefault("sqlite"))
	port := input.New("port", input.WithType(convert.Int),
		input.EnabledWhen(func() bool { return engine.StringValue() == "postgres" }))
	name := input.New("name")
	m := newModel(t, &testCommand{name: "database", inputs: []*input.Input{name, port, engine}})

	_, err := m.Parse([]string{"--name", "demo", "--port", "5432"})
	assert.ErrorIs(t, err, ErrOptionNotActive)
	assert.True(t, port.IsEmpty())
	assert.True(t, name.IsEmpty())
	assert.Equal(t, "sqlite", engine.StringValue())
}

func TestParse_Help(t *testing.T) {
	m := newModel(t, &testCommand{name: "c", inputs: []*input.Input{input.New("name")}})
	_, err := m.Parse([]string{"--help"})
	assert.True(t, errors.Is(err, ErrHelp))

	_, err = m.Parse([]string{"--unknown"})
	assert.ErrorContains(t, err, "unknown flag: --unknown")
}

func TestPopulate_LeavesAbsentInputsUntouched(t *testing.T) {
	m := newModel(t, &testCommand{name: "c", inputs: []*input.Input{
		input.New("name"),
		input.New("greeting", input.WithDefault("Hello")),
	}})
	res, err := m.Parse([]string{"--name", "ada"})
	require.NoError(t, err)

	name := input.New("name")
	greeting := input.New("greeting", input.WithDefault("Hello"))
	populated, err := m.Populate(res, []*input.Input{name, greeting})
	require.NoError(t, err)

	assert.Len(t, populated, 1)
	assert.Same(t, name, populated["name"])
	assert.False(t, greeting.HasValue())
	assert.Equal(t, "Hello", greeting.StringValue())
}

func TestDescribeAndUsage(t *testing.T) {
	m := newModel(t, &testCommand{name: "greet", inputs: []*input.Input{
		input.New(ArgumentsInputName, input.ManyValued(), input.WithDescription("names to greet")),
		input.New("greeting", input.WithDefault("Hello"), input.WithDescription("greeting word")),
		input.New("style", input.WithChoices("plain", "fancy")),
		input.New("name", input.Required()),
		input.New("muted", input.Disabled()),
	}})

	d := m.Describe()
	assert.Equal(t, "greet", d.Command)
	require.NotNil(t, d.Argument)
	assert.Equal(t, "many", d.Argument.Arity)
	require.Len(t, d.Options, 4)
	assert.False(t, d.Options[3].Enabled)

	data, err := m.DescribeYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "command: greet")
	assert.Contains(t, string(data), "default: Hello")

	usage := m.Usage()
	assert.Contains(t, usage, "[<arguments>...]")
	assert.Contains(t, usage, "--greeting")
	assert.Contains(t, usage, "(required)")
	assert.Contains(t, usage, "one of plain, fancy")

	assert.Equal(t, []string{"--greeting"}, m.Completions("--gr"))
	assert.NotContains(t, m.Completions("--"), "--muted")
}
