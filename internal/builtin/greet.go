// Package builtin provides the commands cmdflow ships with. They double as
// end-to-end samples for plain commands and branching wizards.
package builtin

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/input"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

const maxGreetings = 10

// Greet prints a greeting for every name given as argument.
type Greet struct {
	command.Base
	names    *input.Input
	greeting *input.Input
	shout    *input.Input
	times    *input.Input
}

// NewGreet is the command.Factory of Greet.
func NewGreet() command.Command { return &Greet{} }

func (g *Greet) Metadata() command.Metadata {
	return command.Metadata{
		Name:        "greet",
		Description: "Print a greeting for each name",
		Category:    "samples",
	}
}

func (g *Greet) InitializeUI(b *command.Builder) error {
	g.names = input.New("arguments",
		input.WithLabel("names"),
		input.WithDescription("people to greet"),
		input.ManyValued(),
	)
	g.greeting = input.New("greeting",
		input.WithDescription("greeting to use"),
		input.WithShortName('g'),
		input.WithDefault("Hello"),
	)
	g.shout = input.New("shout",
		input.WithDescription("print in upper case"),
		input.WithType(convert.Bool),
		input.WithShortName('s'),
	)
	g.times = input.New("times",
		input.WithDescription("how many times to greet"),
		input.WithType(convert.Int),
		input.WithShortName('n'),
		input.WithDefault(1),
	)
	b.Add(g.names).Add(g.greeting).Add(g.shout).Add(g.times)
	return nil
}

func (g *Greet) Validate(vctx *validation.Context) {
	if n := g.times.IntValue(); n < 1 || n > maxGreetings {
		vctx.AddError("times", fmt.Sprintf("times must be between 1 and %d", maxGreetings))
	}
	if strings.TrimSpace(g.greeting.StringValue()) == "" {
		vctx.AddError("greeting", "greeting must not be blank")
	}
}

func (g *Greet) Execute(ectx *command.ExecutionContext) (command.Result, error) {
	names := g.names.StringValues()
	if len(names) == 0 {
		names = []string{"world"}
	}
	count := 0
	for i := 0; i < g.times.IntValue(); i++ {
		for _, name := range names {
			line := fmt.Sprintf("%s, %s!", g.greeting.StringValue(), name)
			if g.shout.BoolValue() {
				line = strings.ToUpper(line)
			}
			if _, err := fmt.Fprintln(ectx.Out, line); err != nil {
				return command.Result{}, fmt.Errorf("write greeting: %w", err)
			}
			count++
		}
	}
	return command.Success(fmt.Sprintf("greeted %d time(s)", count)), nil
}
