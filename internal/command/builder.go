package command

import (
	"fmt"

	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

// Builder holds one instantiated command together with the live inputs it
// declared. Wizard sessions keep one Builder per page.
type Builder struct {
	ctx        *Context
	cmd        Command
	converters convert.Service
	inputs     []*input.Input
	byName     map[string]*input.Input
	err        error
}

// NewBuilder instantiates the input set of cmd. Inputs without their own
// conversion service are bound to svc (the shared default when nil).
func NewBuilder(ctx *Context, cmd Command, svc convert.Service) (*Builder, error) {
	if cmd == nil {
		return nil, fmt.Errorf("builder: command cannot be nil")
	}
	if ctx == nil {
		ctx = NewContext()
	}
	if svc == nil {
		svc = convert.Default()
	}
	b := &Builder{
		ctx:        ctx,
		cmd:        cmd,
		converters: svc,
		byName:     make(map[string]*input.Input),
	}
	if err := cmd.InitializeUI(b); err != nil {
		return nil, fmt.Errorf("builder: initialize %s: %w", cmd.Metadata().Name, err)
	}
	if b.err != nil {
		return nil, b.err
	}
	return b, nil
}

// Add declares an input. Names must be unique within the command.
func (b *Builder) Add(in *input.Input) *Builder {
	if in == nil || b.err != nil {
		return b
	}
	if _, dup := b.byName[in.Name()]; dup {
		b.err = fmt.Errorf("builder: duplicate input %q in %s", in.Name(), b.cmd.Metadata().Name)
		return b
	}
	in.BindConverters(b.converters)
	b.byName[in.Name()] = in
	b.inputs = append(b.inputs, in)
	return b
}

// Command returns the command instance.
func (b *Builder) Command() Command { return b.cmd }

// Context returns the shared context.
func (b *Builder) Context() *Context { return b.ctx }

// Metadata returns the command metadata.
func (b *Builder) Metadata() Metadata { return b.cmd.Metadata() }

// Converters returns the conversion service inputs are bound to.
func (b *Builder) Converters() convert.Service { return b.converters }

// Inputs returns the declared inputs in declaration order.
func (b *Builder) Inputs() []*input.Input {
	return append([]*input.Input(nil), b.inputs...)
}

// Input returns the input with the given name.
func (b *Builder) Input(name string) (*input.Input, bool) {
	in, ok := b.byName[name]
	return in, ok
}

// Validate runs every input validation followed by the command validation.
func (b *Builder) Validate() []validation.Message {
	vctx := validation.NewContext()
	for _, in := range b.inputs {
		in.Validate(vctx)
	}
	b.cmd.Validate(vctx)
	return vctx.Messages()
}

// ValidateInput validates the whole command and keeps only the messages
// produced for in.
func (b *Builder) ValidateInput(in *input.Input) []validation.Message {
	vctx := validation.NewContext()
	in.Validate(vctx)
	b.cmd.Validate(vctx)
	return vctx.For(in.Name())
}

// ValidationErrors returns the descriptions of every ERROR message.
func (b *Builder) ValidationErrors() []string {
	return validation.Descriptions(b.Validate(), validation.SeverityError)
}

// IsEnabled reports whether the command is currently enabled.
func (b *Builder) IsEnabled() bool {
	return b.cmd.IsEnabled(b.ctx)
}
