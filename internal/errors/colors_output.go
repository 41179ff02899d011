package errors

import "github.com/cristianoliveira/cmdflow/internal/colors"

// ConsoleOutput is a ColorOutput made of print functions, one per level.
// A nil function drops messages of that level.
type ConsoleOutput struct {
	OnError   func(msgs ...string)
	OnWarning func(msgs ...string)
	OnInfo    func(msgs ...string)
	OnSuccess func(msgs ...string)
}

var _ ColorOutput = ConsoleOutput{}

// Colors prints through the colors package: errors and warnings to stderr,
// the rest to stdout.
var Colors = ConsoleOutput{
	OnError:   colors.Error,
	OnWarning: colors.Warning,
	OnInfo:    colors.Info,
	OnSuccess: colors.Success,
}

func (o ConsoleOutput) Error(msgs ...string)   { emit(o.OnError, msgs) }
func (o ConsoleOutput) Warning(msgs ...string) { emit(o.OnWarning, msgs) }
func (o ConsoleOutput) Info(msgs ...string)    { emit(o.OnInfo, msgs) }
func (o ConsoleOutput) Success(msgs ...string) { emit(o.OnSuccess, msgs) }

func emit(fn func(msgs ...string), msgs []string) {
	if fn != nil {
		fn(msgs...)
	}
}

// NewDefaultCLIHandler creates a CLI handler printing through Colors.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(Colors)
}
