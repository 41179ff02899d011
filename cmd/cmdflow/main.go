package main

import (
	"errors"
	"os"

	"github.com/cristianoliveira/cmdflow/cmd"
	"github.com/cristianoliveira/cmdflow/internal/app"
	apperrors "github.com/cristianoliveira/cmdflow/internal/errors"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

const (
	exitFailure   = 1
	exitInvalid   = 2
	exitCancelled = 130
)

func init() {
	cmd.RootCmd.AddCommand(
		NewRunCmd(deps),
		NewShellCmd(deps),
		NewDescribeCmd(deps),
		NewHistoryCmd(deps),
		NewConfigCmd(),
		NewVersionCmd(buildInfo{}),
	)
}

func main() {
	os.Exit(run(os.Args[1:], cmd.Execute))
}

// run executes the root command with args and maps the outcome to an exit
// code.
func run(args []string, execute func() error) int {
	cmd.RootCmd.SetArgs(args)
	err := execute()
	if err == nil {
		return 0
	}
	apperrors.Report(apperrors.NewDefaultCLIHandler(), err)
	return exitCode(err)
}

func exitCode(err error) int {
	var verr *validation.Error
	switch {
	case errors.Is(err, app.ErrCancelled):
		return exitCancelled
	case errors.As(err, &verr):
		return exitInvalid
	default:
		return exitFailure
	}
}
