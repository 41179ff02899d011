package app

import (
	"fmt"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/convert"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/ports"
)

// DescribeUseCase builds the option model of a command without running it.
type DescribeUseCase struct {
	locator    ports.CommandLocator
	converters convert.Service
	logger     logging.Logger
}

// NewDescribeUseCase creates a describe use-case.
func NewDescribeUseCase(locator ports.CommandLocator, logger logging.Logger) *DescribeUseCase {
	if locator == nil {
		panic("NewDescribeUseCase: locator dependency cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &DescribeUseCase{locator: locator, converters: convert.Default(), logger: logger}
}

// Execute returns the option model of the named command. For wizards it is
// the model of the first page.
func (u *DescribeUseCase) Execute(name string) (*options.Model, error) {
	factory, ok := u.locator.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	uictx := command.NewContext()
	defer func() { _ = uictx.Close() }()

	b, err := command.NewBuilder(uictx, factory(), u.converters)
	if err != nil {
		return nil, err
	}
	return options.FromBuilder(b, options.WithConverters(u.converters), options.WithLogger(u.logger)), nil
}

// All describes every registered command in name order. Commands that fail
// to build are logged and left out.
func (u *DescribeUseCase) All() []options.Description {
	var out []options.Description
	for _, name := range u.locator.Names() {
		m, err := u.Execute(name)
		if err != nil {
			u.logger.Warn("describe: skipping command", "command", name, "error", err.Error())
			continue
		}
		out = append(out, m.Describe())
	}
	return out
}
