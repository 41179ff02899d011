// Package validation collects structured validation messages produced by
// inputs and commands.
package validation

import (
	"fmt"
	"strings"
)

// Severity is the importance of a validation message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Message is a single validation finding.
// Source is the name of the input that produced it, or empty for
// command-level messages.
type Message struct {
	Source      string
	Severity    Severity
	Description string
}

// IsError reports whether the message blocks progression.
func (m Message) IsError() bool {
	return m.Severity == SeverityError
}

// Context accumulates messages during a validation pass.
type Context struct {
	messages []Message
}

// NewContext creates an empty validation context.
func NewContext() *Context {
	return &Context{}
}

// Add appends a message.
func (c *Context) Add(m Message) {
	c.messages = append(c.messages, m)
}

// AddError appends an ERROR message for source.
func (c *Context) AddError(source, description string) {
	c.Add(Message{Source: source, Severity: SeverityError, Description: description})
}

// AddWarning appends a WARNING message for source.
func (c *Context) AddWarning(source, description string) {
	c.Add(Message{Source: source, Severity: SeverityWarning, Description: description})
}

// AddInfo appends an INFO message for source.
func (c *Context) AddInfo(source, description string) {
	c.Add(Message{Source: source, Severity: SeverityInfo, Description: description})
}

// Messages returns all messages in the order they were added.
func (c *Context) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// For returns the messages whose source is the given input name.
func (c *Context) For(source string) []Message {
	var out []Message
	for _, m := range c.messages {
		if m.Source == source {
			out = append(out, m)
		}
	}
	return out
}

// HasErrors reports whether any ERROR message was recorded.
func (c *Context) HasErrors() bool {
	for _, m := range c.messages {
		if m.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the descriptions of all ERROR messages.
func (c *Context) Errors() []string {
	return Descriptions(c.messages, SeverityError)
}

// Descriptions returns the descriptions of messages with the given severity.
func Descriptions(messages []Message, severity Severity) []string {
	var out []string
	for _, m := range messages {
		if m.Severity == severity {
			out = append(out, m.Description)
		}
	}
	return out
}

// ErrorsOnly filters messages down to ERROR severity.
func ErrorsOnly(messages []Message) []Message {
	var out []Message
	for _, m := range messages {
		if m.IsError() {
			out = append(out, m)
		}
	}
	return out
}

// Error aggregates ERROR messages that blocked an operation.
type Error struct {
	Messages []Message
}

// NewError builds an Error from the ERROR messages in messages.
// It returns nil when there are none.
func NewError(messages []Message) *Error {
	errs := ErrorsOnly(messages)
	if len(errs) == 0 {
		return nil
	}
	return &Error{Messages: errs}
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Source != "" {
			parts = append(parts, m.Source+": "+m.Description)
		} else {
			parts = append(parts, m.Description)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Descriptions returns the plain descriptions of the aggregated messages.
func (e *Error) Descriptions() []string {
	return Descriptions(e.Messages, SeverityError)
}
