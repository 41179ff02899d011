package builtin

import "github.com/cristianoliveira/cmdflow/internal/command"

// Factories lists the top-level commands. Wizard sub-pages are reached
// through navigation only.
func Factories() []command.Factory {
	return []command.Factory{
		NewGreet,
		NewNewProject,
	}
}

// Registry returns a registry holding every builtin command.
func Registry() *command.Registry {
	r := command.NewRegistry()
	for _, f := range Factories() {
		r.MustRegister(f)
	}
	return r
}
