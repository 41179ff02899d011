package options

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/spf13/pflag"
)

// ErrHelp is returned by Parse when -h or --help was given.
var ErrHelp = pflag.ErrHelp

// rawValue collects the text given for one option; conversion happens after
// the whole line was tokenized so enablement rules see every other value.
type rawValue struct {
	opt    *Option
	values []string
	set    bool
}

func (v *rawValue) String() string {
	if v.set {
		return strings.Join(v.values, ",")
	}
	return v.opt.DefaultValue
}

func (v *rawValue) Set(s string) error {
	v.set = true
	if v.opt.Arity == ArityMany {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				v.values = append(v.values, part)
			}
		}
		return nil
	}
	// Last occurrence wins, as for pflag's own scalar values.
	v.values = []string{s}
	return nil
}

func (v *rawValue) Type() string {
	switch v.opt.Arity {
	case ArityNone:
		return "bool"
	case ArityMany:
		return "strings"
	default:
		return string(v.opt.Type)
	}
}

// FlagSet projects the model onto a fresh pflag set. The returned lookup
// maps external names to the values collected during parsing.
func (m *Model) FlagSet() (*pflag.FlagSet, map[string]*rawValue) {
	fs := pflag.NewFlagSet(m.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	raws := make(map[string]*rawValue, len(m.Options))
	for _, opt := range m.Options {
		v := &rawValue{opt: opt}
		short := ""
		if opt.ShortName != input.NoShortName {
			short = string(opt.ShortName)
		}
		usage := opt.Description
		if opt.Required {
			usage += " (required)"
		}
		f := fs.VarPF(v, opt.Name, short, usage)
		if opt.Arity == ArityNone {
			f.NoOptDefVal = "true"
		}
		raws[opt.Name] = v
	}
	return fs, raws
}

// ParseResult holds the typed values of one successfully parsed line.
type ParseResult struct {
	order    []string
	values   map[string][]any
	argument []any
	hasArg   bool
}

// HasOption reports whether the option was given on the line.
func (r *ParseResult) HasOption(name string) bool {
	_, ok := r.values[name]
	return ok
}

// OptionValue returns the first typed value of the option.
func (r *ParseResult) OptionValue(name string) (any, bool) {
	vals, ok := r.values[name]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// OptionValues returns every typed value of the option.
func (r *ParseResult) OptionValues(name string) []any {
	return r.values[name]
}

// OptionNames returns the given options in model order.
func (r *ParseResult) OptionNames() []string {
	return append([]string(nil), r.order...)
}

// HasArgument reports whether positional text was given.
func (r *ParseResult) HasArgument() bool { return r.hasArg }

// Argument returns the typed positional values.
func (r *ParseResult) Argument() []any { return r.argument }

// Parse tokenizes args against the model, assigns the converted values to
// the inputs behind the options and validates them. Any failure rejects the
// whole line.
//
// Every given value is assigned before any enablement or validation rule
// runs, so rules see the whole line regardless of declaration order. A
// rejected line leaves the inputs as they were.
func (m *Model) Parse(args []string) (_ *ParseResult, err error) {
	fs, raws := m.FlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}

	res := &ParseResult{values: make(map[string][]any)}
	var given []*Option
	for _, opt := range m.Options {
		raw := raws[opt.Name]
		if !raw.set {
			continue
		}
		typed, err := convertAll(opt, raw.values)
		if err != nil {
			return nil, err
		}
		res.values[opt.Name] = typed
		res.order = append(res.order, opt.Name)
		given = append(given, opt)
	}
	if err := m.convertArgument(fs.Args(), res); err != nil {
		return nil, err
	}

	touched := given
	if res.hasArg {
		touched = append(touched[:len(touched):len(touched)], m.Argument)
	}
	restores := make([]func(), 0, len(touched))
	for _, opt := range touched {
		restores = append(restores, opt.keep())
	}
	defer func() {
		if err != nil {
			for i := len(restores) - 1; i >= 0; i-- {
				restores[i]()
			}
		}
	}()

	// Assignment pass. Errors are reported below, once every value is in.
	for _, opt := range given {
		_ = opt.Validate(valueFor(opt, res.values[opt.Name]))
	}
	if res.hasArg {
		_ = m.Argument.Validate(valueFor(m.Argument, res.argument))
	}

	for _, opt := range given {
		if !opt.IsActivated() {
			return nil, &OptionError{Option: opt.Name, Err: ErrOptionNotActive}
		}
		if err := opt.Validate(valueFor(opt, res.values[opt.Name])); err != nil {
			return nil, err
		}
	}
	if res.hasArg {
		if !m.Argument.IsActivated() {
			return nil, &OptionError{Option: ArgumentsInputName, Err: ErrOptionNotActive}
		}
		if err := m.Argument.Validate(valueFor(m.Argument, res.argument)); err != nil {
			return nil, err
		}
	}

	for _, opt := range m.Options {
		if !opt.Required || res.HasOption(opt.Name) || !opt.IsActivated() || opt.IsSatisfied() {
			continue
		}
		return nil, &OptionError{Option: opt.Name, Err: ErrRequiredOption}
	}
	if arg := m.Argument; arg != nil && arg.Required && !res.hasArg && arg.IsActivated() && !arg.IsSatisfied() {
		return nil, &OptionError{Option: ArgumentsInputName, Err: ErrRequiredOption}
	}
	return res, nil
}

// convertArgument converts the free arguments into res. Enablement and
// validation are checked by Parse.
func (m *Model) convertArgument(free []string, res *ParseResult) error {
	if len(free) == 0 {
		return nil
	}
	arg := m.Argument
	if arg == nil {
		return fmt.Errorf("%w: %q", ErrUnexpectedArgument, free[0])
	}
	if arg.Arity != ArityMany && len(free) > 1 {
		return &OptionError{Option: ArgumentsInputName, Err: fmt.Errorf("%w: %q", ErrUnexpectedArgument, free[1])}
	}
	typed, err := convertAll(arg, free)
	if err != nil {
		return err
	}
	res.argument, res.hasArg = typed, true
	return nil
}

func convertAll(opt *Option, raws []string) ([]any, error) {
	out := make([]any, 0, len(raws))
	for _, raw := range raws {
		v, err := opt.Convert(raw)
		if err != nil {
			return nil, &OptionError{Option: opt.Name, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

func valueFor(opt *Option, typed []any) any {
	if opt.Arity == ArityMany {
		return typed
	}
	if len(typed) == 0 {
		return nil
	}
	return typed[len(typed)-1]
}

// Populate assigns the parsed values to the matching inputs and returns the
// inputs that were updated, keyed by input name. Inputs absent from res keep
// their current value or default.
func (m *Model) Populate(res *ParseResult, inputs []*input.Input) (map[string]*input.Input, error) {
	byName := make(map[string]*input.Input, len(inputs))
	for _, in := range inputs {
		byName[in.Name()] = in
	}
	populated := make(map[string]*input.Input)

	if res.hasArg && m.Argument != nil {
		if in, ok := byName[m.Argument.Input]; ok {
			if err := in.SetValue(valueFor(m.Argument, res.argument)); err != nil {
				return nil, &OptionError{Option: ArgumentsInputName, Err: err}
			}
			populated[in.Name()] = in
		}
	}
	for _, name := range res.order {
		opt := m.byName[name]
		in, ok := byName[opt.Input]
		if !ok {
			continue
		}
		if err := in.SetValue(valueFor(opt, res.values[name])); err != nil {
			return nil, &OptionError{Option: opt.Name, Err: err}
		}
		populated[in.Name()] = in
	}
	return populated, nil
}
