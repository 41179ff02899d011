package shell

import (
	"sort"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/options"
)

// Complete returns the candidate lines for tab completion of line: command
// names first, then option names, then the choices of the option or
// argument being typed.
func (s *Shell) Complete(line string) []string {
	fields := strings.Fields(line)
	trailingSpace := strings.HasSuffix(line, " ")

	if len(fields) == 0 || (len(fields) == 1 && !trailingSpace) {
		prefix := ""
		if len(fields) == 1 {
			prefix = fields[0]
		}
		return withPrefix("", s.commandNames(), prefix)
	}

	current := ""
	if !trailingSpace {
		current = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}
	head := line[:len(line)-len(current)]
	name := fields[0]

	if name == "help" || name == "describe" {
		if len(fields) == 1 {
			return withPrefix(head, s.locator.Names(), current)
		}
		return nil
	}

	m, err := s.describe.Execute(name)
	if err != nil {
		return nil
	}
	if prev := fields[len(fields)-1]; strings.HasPrefix(prev, "--") && len(fields) > 1 {
		if opt, ok := m.Option(strings.TrimPrefix(prev, "--")); ok && opt.Arity != options.ArityNone {
			return withPrefix(head, opt.Choices, current)
		}
	}
	if strings.HasPrefix(current, "-") {
		return withPrefix(head, m.Completions(current), current)
	}
	if m.Argument != nil && m.Argument.IsActivated() {
		return withPrefix(head, m.Argument.Choices, current)
	}
	return nil
}

func (s *Shell) commandNames() []string {
	names := append([]string(nil), s.locator.Names()...)
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func withPrefix(head string, words []string, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, head+w)
		}
	}
	return out
}
