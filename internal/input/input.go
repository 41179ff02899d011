// Package input provides the declarative description and live value holder
// for a single command parameter.
package input

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

// NoShortName marks an input without a single-character alias.
const NoShortName rune = 0

// Multiplicity tells whether an input holds one value or a collection.
type Multiplicity int

const (
	Single Multiplicity = iota
	Many
)

// Validator is a command-declared rule for one input. It reports problems
// through vctx and never fails the validation pass itself.
type Validator func(in *Input, vctx *validation.Context)

// Input describes one command parameter and holds its current value.
type Input struct {
	name         string
	label        string
	description  string
	valueType    convert.ValueType
	shortName    rune
	required     bool
	enabled      bool
	enabledFn    func() bool
	multiplicity Multiplicity
	value        any
	hasValue     bool
	defaultValue any
	defaultFn    func() any
	choices      []string
	sensitive    bool
	validators   []Validator
	converters   convert.Service
}

// Option configures an Input at construction.
type Option func(*Input)

// New creates an input. Unless configured otherwise it is an enabled,
// optional, single-valued string input.
func New(name string, opts ...Option) *Input {
	in := &Input{
		name:      name,
		valueType: convert.String,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// WithLabel sets the display text.
func WithLabel(label string) Option { return func(in *Input) { in.label = label } }

// WithDescription sets the help text shown by front-ends.
func WithDescription(d string) Option { return func(in *Input) { in.description = d } }

// WithType sets the value type.
func WithType(vt convert.ValueType) Option { return func(in *Input) { in.valueType = vt } }

// WithShortName sets the single-character alias.
func WithShortName(r rune) Option { return func(in *Input) { in.shortName = r } }

// Required marks the input as mandatory while enabled.
func Required() Option { return func(in *Input) { in.required = true } }

// Disabled creates the input disabled.
func Disabled() Option { return func(in *Input) { in.enabled = false } }

// EnabledWhen computes enablement on every check.
func EnabledWhen(fn func() bool) Option { return func(in *Input) { in.enabledFn = fn } }

// ManyValued makes the input hold a collection.
func ManyValued() Option { return func(in *Input) { in.multiplicity = Many } }

// WithDefault sets the value reported while nothing was assigned.
func WithDefault(v any) Option { return func(in *Input) { in.defaultValue = v } }

// WithDefaultFunc computes the default lazily, e.g. from another input.
func WithDefaultFunc(fn func() any) Option { return func(in *Input) { in.defaultFn = fn } }

// WithChoices restricts values to the given set.
func WithChoices(choices ...string) Option {
	return func(in *Input) { in.choices = append([]string(nil), choices...) }
}

// Sensitive marks values that must not be logged in clear.
func Sensitive() Option { return func(in *Input) { in.sensitive = true } }

// WithValidator adds a per-input validation rule.
func WithValidator(v Validator) Option {
	return func(in *Input) { in.validators = append(in.validators, v) }
}

// WithConverters binds the conversion service used by SetValue.
func WithConverters(svc convert.Service) Option { return func(in *Input) { in.converters = svc } }

func (in *Input) Name() string                 { return in.name }
func (in *Input) Description() string          { return in.description }
func (in *Input) ValueType() convert.ValueType { return in.valueType }
func (in *Input) ShortName() rune              { return in.shortName }
func (in *Input) IsRequired() bool             { return in.required }
func (in *Input) Multiplicity() Multiplicity   { return in.multiplicity }
func (in *Input) IsManyValued() bool           { return in.multiplicity == Many }
func (in *Input) IsSensitive() bool            { return in.sensitive }
func (in *Input) HasValue() bool               { return in.hasValue }
func (in *Input) SetRequired(required bool)    { in.required = required }
func (in *Input) AddValidator(v Validator)     { in.validators = append(in.validators, v) }

// Choices returns the allowed values, if restricted.
func (in *Input) Choices() []string {
	return append([]string(nil), in.choices...)
}

// SetDefault replaces the default value.
func (in *Input) SetDefault(v any) {
	in.defaultValue = v
	in.defaultFn = nil
}

// Label returns the display text, falling back to the name.
func (in *Input) Label() string {
	if in.label != "" {
		return in.label
	}
	return in.name
}

// IsFlag reports whether the input is a boolean switch: presence means true.
func (in *Input) IsFlag() bool {
	return in.valueType == convert.Bool && in.multiplicity == Single
}

// IsEnabled evaluates enablement, including any dynamic rule.
func (in *Input) IsEnabled() bool {
	if !in.enabled {
		return false
	}
	if in.enabledFn != nil {
		return in.enabledFn()
	}
	return true
}

// SetEnabled toggles static enablement.
func (in *Input) SetEnabled(enabled bool) { in.enabled = enabled }

// Converters returns the bound conversion service or the shared default.
func (in *Input) Converters() convert.Service {
	if in.converters == nil {
		return convert.Default()
	}
	return in.converters
}

// BindConverters sets the conversion service if none was configured.
func (in *Input) BindConverters(svc convert.Service) {
	if in.converters == nil {
		in.converters = svc
	}
}

// Default returns the default value.
func (in *Input) Default() any {
	if in.defaultFn != nil {
		return in.defaultFn()
	}
	return in.defaultValue
}

// Value returns the assigned value, or the default when nothing was assigned.
func (in *Input) Value() any {
	if in.hasValue {
		return in.value
	}
	return in.Default()
}

// Snapshot records the assigned value; calling restore puts it back.
func (in *Input) Snapshot() (restore func()) {
	value, hasValue := in.value, in.hasValue
	return func() { in.value, in.hasValue = value, hasValue }
}

// SetValue assigns a raw or typed value. Text is converted through the
// conversion service for the input's value type; nil clears the value.
func (in *Input) SetValue(v any) error {
	if v == nil {
		in.value, in.hasValue = nil, false
		return nil
	}
	if in.multiplicity == Many {
		values, err := in.coerceMany(v)
		if err != nil {
			return err
		}
		in.value, in.hasValue = values, true
		return nil
	}
	if list, ok := v.([]string); ok {
		if len(list) != 1 {
			return fmt.Errorf("input %s expects a single value, got %d", in.name, len(list))
		}
		v = list[0]
	}
	converted, err := in.Converters().Coerce(in.valueType, v)
	if err != nil {
		return fmt.Errorf("input %s: %w", in.name, err)
	}
	in.value, in.hasValue = converted, true
	return nil
}

func (in *Input) coerceMany(v any) ([]any, error) {
	var raw []any
	switch list := v.(type) {
	case []string:
		for _, s := range list {
			raw = append(raw, s)
		}
	case []any:
		raw = list
	default:
		raw = []any{v}
	}
	out := make([]any, 0, len(raw))
	for _, item := range raw {
		converted, err := in.Converters().Coerce(in.valueType, item)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in.name, err)
		}
		out = append(out, converted)
	}
	return out, nil
}

// Values returns the value as a collection. Single values become a
// one-element slice; an unset value yields nil.
func (in *Input) Values() []any {
	switch v := in.Value().(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

// StringValue renders the value as text. Collections are comma separated.
func (in *Input) StringValue() string {
	values := in.Values()
	parts := make([]string, 0, len(values))
	for _, v := range values {
		s, err := in.Converters().Format(in.valueType, v)
		if err != nil {
			s = fmt.Sprint(v)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}

// StringValues renders each collection element as text.
func (in *Input) StringValues() []string {
	values := in.Values()
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, err := in.Converters().Format(in.valueType, v)
		if err != nil {
			s = fmt.Sprint(v)
		}
		out = append(out, s)
	}
	return out
}

// BoolValue returns the value as a bool; unset flags are false.
func (in *Input) BoolValue() bool {
	b, _ := in.Value().(bool)
	return b
}

// IntValue returns the value as an int, or zero.
func (in *Input) IntValue() int {
	n, _ := in.Value().(int)
	return n
}

// IsEmpty reports whether the input currently has no meaningful value.
func (in *Input) IsEmpty() bool {
	switch v := in.Value().(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// Validate reports problems with the current value. Disabled inputs are
// never validated.
func (in *Input) Validate(vctx *validation.Context) {
	if !in.IsEnabled() {
		return
	}
	if in.required && in.IsEmpty() {
		vctx.AddError(in.name, in.Label()+" must be specified")
		return
	}
	if len(in.choices) > 0 && !in.IsEmpty() {
		for _, s := range in.StringValues() {
			if !in.allows(s) {
				vctx.AddError(in.name, fmt.Sprintf("%s must be one of: %s", in.Label(), strings.Join(in.choices, ", ")))
				break
			}
		}
	}
	for _, v := range in.validators {
		v(in, vctx)
	}
}

func (in *Input) allows(s string) bool {
	for _, c := range in.choices {
		if c == s {
			return true
		}
	}
	return false
}
