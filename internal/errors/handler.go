// Package errors reports failures and validation findings to the user.
package errors

import (
	stderrors "errors"
	"sync"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/options"
	"github.com/cristianoliveira/cmdflow/internal/validation"
)

// ErrorHandler is the interface for error handling.
// Different implementations can handle errors differently based on context.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// CLIHandler handles errors by printing to stdout/stderr using the colors package.
type CLIHandler struct {
	colors ColorOutput
	mu     sync.Mutex
}

type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

func NewCLIHandler(colors ColorOutput) *CLIHandler {
	return &CLIHandler{colors: colors}
}

// Error prints msg. Concurrent reports are serialized so lines of one
// report never interleave with another.
func (h *CLIHandler) Error(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Error(msg)
}

func (h *CLIHandler) Warning(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Warning(msg)
}

func (h *CLIHandler) Info(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Info(msg)
}

func (h *CLIHandler) Success(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Success(msg)
}

// Report sends err to h. Aggregated validation failures produce one line
// per finding; help requests produce nothing.
func Report(h ErrorHandler, err error) {
	if err == nil || stderrors.Is(err, options.ErrHelp) {
		return
	}
	var verr *validation.Error
	if stderrors.As(err, &verr) {
		for _, d := range verr.Descriptions() {
			h.Error(d)
		}
		return
	}
	h.Error(err.Error())
}

// ReportMessages sends each message to h according to its severity.
func ReportMessages(h ErrorHandler, messages []validation.Message) {
	for _, m := range messages {
		switch m.Severity {
		case validation.SeverityError:
			h.Error(m.Description)
		case validation.SeverityWarning:
			h.Warning(m.Description)
		default:
			h.Info(m.Description)
		}
	}
}

// ReportResult reports a command outcome. A handled failure is a warning;
// execution errors go through Report.
func ReportResult(h ErrorHandler, res command.Result) {
	if res.Message == "" {
		return
	}
	if res.Success {
		h.Success(res.Message)
		return
	}
	h.Warning(res.Message)
}
