package command

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Context is the state shared by every page of an invocation: the initial
// selection, cross-page attributes and teardown hooks.
type Context struct {
	selection []any
	attrs     map[string]any
	onClose   []func() error

	closeOnce sync.Once
	closed    bool
	closeErr  error
}

// NewContext creates a context with an optional initial selection.
func NewContext(selection ...any) *Context {
	return &Context{
		selection: append([]any(nil), selection...),
		attrs:     make(map[string]any),
	}
}

// InitialSelection returns what the user had selected when the command started,
// e.g. the working directory of a shell.
func (c *Context) InitialSelection() []any {
	return append([]any(nil), c.selection...)
}

// SetInitialSelection replaces the initial selection.
func (c *Context) SetInitialSelection(selection ...any) {
	c.selection = append([]any(nil), selection...)
}

// Attribute returns a shared value stored by an earlier page.
func (c *Context) Attribute(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// SetAttribute stores a shared value.
func (c *Context) SetAttribute(key string, value any) {
	c.attrs[key] = value
}

// OnClose registers a teardown hook. Hooks run in reverse registration order.
func (c *Context) OnClose(fn func() error) {
	c.onClose = append(c.onClose, fn)
}

// Close releases the context. Only the first call runs the hooks; later
// calls return the same result.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		for i := len(c.onClose) - 1; i >= 0; i-- {
			if err := c.onClose[i](); err != nil {
				errs = append(errs, err)
			}
		}
		c.closed = true
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

// IsClosed reports whether Close has run.
func (c *Context) IsClosed() bool {
	return c.closed
}

// ExecutionContext is handed to Execute. It is a context.Context carrying
// the shared UI context and the output streams of the front-end.
type ExecutionContext struct {
	context.Context
	UI     *Context
	Out    io.Writer
	ErrOut io.Writer
}

// NewExecutionContext builds an execution context. Nil writers discard output.
func NewExecutionContext(ctx context.Context, ui *Context, out, errOut io.Writer) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &ExecutionContext{Context: ctx, UI: ui, Out: out, ErrOut: errOut}
}
