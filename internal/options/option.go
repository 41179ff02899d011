// Package options projects declared command inputs into a parseable option
// model for textual front-ends.
package options

import (
	"errors"
	"fmt"

	"github.com/cristianoliveira/cmdflow/internal/convert"
)

// ArgumentsInputName is the input bound to the parser's positional argument.
const ArgumentsInputName = "arguments"

// Arity is the number of values an option takes.
type Arity int

const (
	// ArityNone is a flag: presence means true.
	ArityNone Arity = iota
	ArityOne
	ArityMany
)

func (a Arity) String() string {
	switch a {
	case ArityNone:
		return "none"
	case ArityOne:
		return "one"
	case ArityMany:
		return "many"
	default:
		return fmt.Sprintf("arity(%d)", int(a))
	}
}

// Renderer is a display hint for front-ends.
type Renderer int

const (
	RenderDefault Renderer = iota
	RenderRequired
)

var (
	// ErrOptionNotActive reports an option supplied while its input is disabled.
	ErrOptionNotActive = errors.New("option is not available")
	// ErrRequiredOption reports a required, active option that was not supplied.
	ErrRequiredOption = errors.New("required option missing")
	// ErrUnexpectedArgument reports positional text the command does not accept.
	ErrUnexpectedArgument = errors.New("unexpected argument")
)

// OptionError is a parse-time failure attributed to one option.
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string {
	if e.Option == ArgumentsInputName {
		return fmt.Sprintf("<%s>: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("--%s: %v", e.Option, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}

// Option is the parser-facing definition of one input.
type Option struct {
	// Name is the external (shellified) option name.
	Name string
	// Input is the name of the declared input behind the option.
	Input        string
	ShortName    rune
	Description  string
	DefaultValue string
	HasDefault   bool
	Arity        Arity
	Required     bool
	Renderer     Renderer
	Type         convert.ValueType
	Choices      []string

	activator func() bool
	satisfied func() bool
	validator func(value any) error
	converter func(raw string) (any, error)
	snapshot  func() (restore func())
}

// IsActivated re-evaluates whether the option may be used right now.
func (o *Option) IsActivated() bool {
	if o.activator == nil {
		return true
	}
	return o.activator()
}

// Validate converts value, assigns it to the input and re-runs the owning
// command's validation for that input. The first ERROR becomes the error.
func (o *Option) Validate(value any) error {
	if o.validator == nil {
		return nil
	}
	return o.validator(value)
}

// keep records the input value so a rejected line can put it back.
func (o *Option) keep() (restore func()) {
	if o.snapshot == nil {
		return func() {}
	}
	return o.snapshot()
}

// Convert turns raw text into the typed value for downstream consumers.
func (o *Option) Convert(raw string) (any, error) {
	if o.converter == nil {
		return raw, nil
	}
	return o.converter(raw)
}

// IsSatisfied reports whether the input already holds a value, e.g. a default.
func (o *Option) IsSatisfied() bool {
	if o.satisfied == nil {
		return false
	}
	return o.satisfied()
}

// Diagnostic records an input that could not be turned into an option.
type Diagnostic struct {
	Input string
	Err   error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("input %q skipped: %v", d.Input, d.Err)
}
