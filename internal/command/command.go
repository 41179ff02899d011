// Package command defines the contract a command implements, the wizard
// extension with forward navigation, and the per-invocation page builder.
package command

import (
	"strings"
	"unicode"

	"github.com/cristianoliveira/cmdflow/internal/validation"
)

// Metadata describes a command to front-ends.
type Metadata struct {
	Name        string
	Description string
	Category    string
}

// Command is the capability set every command implements.
// A fresh instance is created per invocation; inputs are declared in
// InitializeUI, populated, validated, then Execute runs at most once.
type Command interface {
	Metadata() Metadata
	// InitializeUI declares the command inputs on b.
	InitializeUI(b *Builder) error
	// Validate adds command-level findings to vctx.
	Validate(vctx *validation.Context)
	IsEnabled(ctx *Context) bool
	Execute(ectx *ExecutionContext) (Result, error)
}

// Wizard is a command split across pages with conditional forward navigation.
type Wizard interface {
	Command
	// Next reports where the flow goes after this page. It must not have
	// side effects: navigation predicates call it repeatedly.
	Next(ctx *Context) NavigationResult
}

// AsWizard returns cmd as a Wizard when it implements navigation.
func AsWizard(cmd Command) (Wizard, bool) {
	w, ok := cmd.(Wizard)
	return w, ok
}

// Factory creates a fresh command instance. Navigation results carry
// factories so pages are only instantiated when the flow reaches them.
type Factory func() Command

// Base supplies the optional parts of Command for embedding.
type Base struct{}

func (Base) Validate(*validation.Context) {}
func (Base) IsEnabled(*Context) bool     { return true }

// NavigationResult is either terminal or an ordered, non-empty list of
// successor factories.
type NavigationResult struct {
	next []Factory
}

// Terminal reports that the page forces no successor.
func Terminal() NavigationResult {
	return NavigationResult{}
}

// NavigateTo advances to first; rest become pending branches.
func NavigateTo(first Factory, rest ...Factory) NavigationResult {
	next := make([]Factory, 0, len(rest)+1)
	next = append(next, first)
	next = append(next, rest...)
	return NavigationResult{next: next}
}

// IsTerminal reports whether there is no forced successor.
func (r NavigationResult) IsTerminal() bool {
	return len(r.next) == 0
}

// Successors returns the successor factories in declaration order.
func (r NavigationResult) Successors() []Factory {
	return append([]Factory(nil), r.next...)
}

// ShellifyName derives the lower-kebab external name used by shells:
// "targetPackage" and "target_package" both become "target-package".
func ShellifyName(name string) string {
	runes := []rune(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for i, r := range runes {
		switch {
		case r == '_' || r == ' ' || r == '.' || r == '-':
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
			continue
		case unicode.IsUpper(r):
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			if !lastDash && (prevLower || (prevUpper && nextLower)) {
				b.WriteRune('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		lastDash = false
	}
	return strings.TrimSuffix(b.String(), "-")
}
