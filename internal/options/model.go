package options

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

// Controller is the command side the model calls back into.
// *command.Builder implements it.
type Controller interface {
	Metadata() command.Metadata
	ValidateInput(in *input.Input) []validation.Message
}

// Model is the option set generated for one command.
type Model struct {
	Name        string
	Description string
	Options     []*Option
	// Argument is the positional argument, nil when the command declares none.
	Argument    *Option
	Diagnostics []Diagnostic

	byName map[string]*Option
}

type buildConfig struct {
	converters convert.Service
	logger     logging.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithConverters sets the conversion service used by option converters.
func WithConverters(svc convert.Service) BuildOption {
	return func(c *buildConfig) { c.converters = svc }
}

// WithLogger reports skipped options to l in addition to Diagnostics.
func WithLogger(l logging.Logger) BuildOption {
	return func(c *buildConfig) { c.logger = l }
}

// FromBuilder builds the model for the inputs declared on b.
func FromBuilder(b *command.Builder, opts ...BuildOption) *Model {
	opts = append([]BuildOption{WithConverters(b.Converters())}, opts...)
	return Build(b, b.Inputs(), opts...)
}

// Build turns inputs into options. An input that cannot become an option is
// recorded in Diagnostics and skipped; the rest of the model is still built.
func Build(ctrl Controller, inputs []*input.Input, opts ...BuildOption) *Model {
	cfg := buildConfig{converters: convert.Default(), logger: logging.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	md := ctrl.Metadata()
	m := &Model{
		Name:        command.ShellifyName(md.Name),
		Description: md.Description,
		byName:      make(map[string]*Option),
	}
	shorts := make(map[rune]string)

	for _, in := range inputs {
		opt, err := newOption(ctrl, in, cfg.converters)
		if err == nil {
			err = m.checkConflicts(opt, shorts)
		}
		if err != nil {
			name := ""
			if in != nil {
				name = in.Name()
			}
			m.Diagnostics = append(m.Diagnostics, Diagnostic{Input: name, Err: err})
			cfg.logger.Warn("options: skipping invalid option", "command", m.Name, "input", name, "error", err.Error())
			continue
		}
		if opt.Input == ArgumentsInputName {
			m.Argument = opt
			continue
		}
		if opt.ShortName != input.NoShortName {
			shorts[opt.ShortName] = opt.Name
		}
		m.byName[opt.Name] = opt
		m.Options = append(m.Options, opt)
	}
	return m
}

func (m *Model) checkConflicts(opt *Option, shorts map[rune]string) error {
	if opt.Input == ArgumentsInputName {
		if m.Argument != nil {
			return fmt.Errorf("positional argument already declared")
		}
		return nil
	}
	if _, dup := m.byName[opt.Name]; dup {
		return fmt.Errorf("duplicate option name --%s", opt.Name)
	}
	if owner, dup := shorts[opt.ShortName]; dup && opt.ShortName != input.NoShortName {
		return fmt.Errorf("short name -%c already used by --%s", opt.ShortName, owner)
	}
	return nil
}

func newOption(ctrl Controller, in *input.Input, svc convert.Service) (*Option, error) {
	if in == nil {
		return nil, errors.New("input cannot be nil")
	}
	if err := checkName(in.Name()); err != nil {
		return nil, err
	}
	if !svc.Has(in.ValueType()) {
		return nil, fmt.Errorf("%w: %s", convert.ErrNoConverter, in.ValueType())
	}
	if r := in.ShortName(); r != input.NoShortName && (r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))) {
		return nil, fmt.Errorf("short name %q must be a single ASCII letter or digit", r)
	}

	opt := &Option{
		Name:        command.ShellifyName(in.Name()),
		Input:       in.Name(),
		ShortName:   in.ShortName(),
		Description: in.Description(),
		Required:    in.IsRequired(),
		Type:        in.ValueType(),
		Choices:     in.Choices(),
	}
	if opt.Description == "" {
		opt.Description = in.Label()
	}
	switch {
	case in.IsFlag():
		opt.Arity = ArityNone
	case in.IsManyValued():
		opt.Arity = ArityMany
	default:
		opt.Arity = ArityOne
	}
	if opt.Required {
		opt.Renderer = RenderRequired
	}
	if def := in.Default(); def != nil {
		text, err := formatDefault(svc, in.ValueType(), def)
		if err != nil {
			return nil, fmt.Errorf("invalid default value: %w", err)
		}
		opt.DefaultValue, opt.HasDefault = text, true
	}

	opt.activator = in.IsEnabled
	opt.snapshot = in.Snapshot
	opt.satisfied = func() bool { return !in.IsEmpty() }
	opt.converter = func(raw string) (any, error) {
		return svc.Convert(in.ValueType(), raw)
	}
	opt.validator = func(value any) error {
		if err := in.SetValue(value); err != nil {
			return &OptionError{Option: opt.Name, Err: err}
		}
		for _, msg := range ctrl.ValidateInput(in) {
			if msg.IsError() {
				return &OptionError{Option: opt.Name, Err: errors.New(msg.Description)}
			}
		}
		return nil
	}
	return opt, nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("input name cannot be empty")
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.') {
			return fmt.Errorf("input name %q contains invalid character %q", name, r)
		}
	}
	if command.ShellifyName(name) == "" {
		return fmt.Errorf("input name %q has no usable characters", name)
	}
	return nil
}

func formatDefault(svc convert.Service, vt convert.ValueType, def any) (string, error) {
	var values []any
	switch v := def.(type) {
	case []any:
		values = v
	case []string:
		for _, s := range v {
			values = append(values, s)
		}
	default:
		values = []any{v}
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			if _, err := svc.Convert(vt, s); err != nil {
				return "", err
			}
			parts = append(parts, s)
			continue
		}
		s, err := svc.Format(vt, v)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ","), nil
}

// Option returns the option with the given external name.
func (m *Model) Option(name string) (*Option, bool) {
	opt, ok := m.byName[name]
	return opt, ok
}

// OptionFor returns the option generated for the named input.
func (m *Model) OptionFor(inputName string) (*Option, bool) {
	if inputName == ArgumentsInputName && m.Argument != nil {
		return m.Argument, true
	}
	return m.Option(command.ShellifyName(inputName))
}

// Completions returns option tokens starting with prefix, skipping options
// that are not active.
func (m *Model) Completions(prefix string) []string {
	var out []string
	for _, opt := range m.Options {
		if !opt.IsActivated() {
			continue
		}
		token := "--" + opt.Name
		if strings.HasPrefix(token, prefix) {
			out = append(out, token)
		}
	}
	return out
}
