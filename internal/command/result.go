package command

import (
	"fmt"
)

// Result is the outcome of a command execution.
type Result struct {
	Success bool
	Message string
	Data    any
}

// Success builds a successful result.
func Success(msg string) Result {
	return Result{Success: true, Message: msg}
}

// Fail builds a result reporting a handled failure. Unlike an error it does
// not abort a wizard commit.
func Fail(msg string) Result {
	return Result{Success: false, Message: msg}
}

// ExecutionError wraps an error returned by a command's Execute.
type ExecutionError struct {
	Command string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ExecutionListener observes command executions.
type ExecutionListener interface {
	PreCommandExecuted(cmd Command, ectx *ExecutionContext)
	PostCommandExecuted(cmd Command, ectx *ExecutionContext, result Result)
	PostCommandFailure(cmd Command, ectx *ExecutionContext, err error)
}

// Listeners fans notifications out to several listeners, skipping nils.
type Listeners []ExecutionListener

var _ ExecutionListener = Listeners(nil)

func (ls Listeners) PreCommandExecuted(cmd Command, ectx *ExecutionContext) {
	for _, l := range ls {
		if l != nil {
			l.PreCommandExecuted(cmd, ectx)
		}
	}
}

func (ls Listeners) PostCommandExecuted(cmd Command, ectx *ExecutionContext, result Result) {
	for _, l := range ls {
		if l != nil {
			l.PostCommandExecuted(cmd, ectx, result)
		}
	}
}

func (ls Listeners) PostCommandFailure(cmd Command, ectx *ExecutionContext, err error) {
	for _, l := range ls {
		if l != nil {
			l.PostCommandFailure(cmd, ectx, err)
		}
	}
}

// ListenerFuncs adapts optional callbacks into an ExecutionListener.
type ListenerFuncs struct {
	Pre     func(cmd Command, ectx *ExecutionContext)
	Post    func(cmd Command, ectx *ExecutionContext, result Result)
	Failure func(cmd Command, ectx *ExecutionContext, err error)
}

func (f ListenerFuncs) PreCommandExecuted(cmd Command, ectx *ExecutionContext) {
	if f.Pre != nil {
		f.Pre(cmd, ectx)
	}
}

func (f ListenerFuncs) PostCommandExecuted(cmd Command, ectx *ExecutionContext, result Result) {
	if f.Post != nil {
		f.Post(cmd, ectx, result)
	}
}

func (f ListenerFuncs) PostCommandFailure(cmd Command, ectx *ExecutionContext, err error) {
	if f.Failure != nil {
		f.Failure(cmd, ectx, err)
	}
}

// Execute runs cmd once, notifying listener (which may be nil) before and
// after. Errors are returned as *ExecutionError.
func Execute(ectx *ExecutionContext, cmd Command, listener ExecutionListener) (Result, error) {
	if listener != nil {
		listener.PreCommandExecuted(cmd, ectx)
	}
	result, err := cmd.Execute(ectx)
	if err != nil {
		if listener != nil {
			listener.PostCommandFailure(cmd, ectx, err)
		}
		return Result{}, &ExecutionError{Command: cmd.Metadata().Name, Err: err}
	}
	if listener != nil {
		listener.PostCommandExecuted(cmd, ectx, result)
	}
	return result, nil
}
