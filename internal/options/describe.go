package options

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/colors"
	"gopkg.in/yaml.v3"
)

// Description is the serializable view of a model, used by `describe`.
type Description struct {
	Command     string              `yaml:"command"`
	Description string              `yaml:"description,omitempty"`
	Argument    *OptionDescription  `yaml:"argument,omitempty"`
	Options     []OptionDescription `yaml:"options,omitempty"`
	Skipped     []string            `yaml:"skipped,omitempty"`
}

// OptionDescription describes one option.
type OptionDescription struct {
	Name        string   `yaml:"name"`
	Input       string   `yaml:"input"`
	Short       string   `yaml:"short,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Type        string   `yaml:"type"`
	Arity       string   `yaml:"arity"`
	Required    bool     `yaml:"required,omitempty"`
	Enabled     bool     `yaml:"enabled"`
	Default     string   `yaml:"default,omitempty"`
	Choices     []string `yaml:"choices,omitempty"`
}

func describeOption(opt *Option) OptionDescription {
	d := OptionDescription{
		Name:        opt.Name,
		Input:       opt.Input,
		Description: opt.Description,
		Type:        string(opt.Type),
		Arity:       opt.Arity.String(),
		Required:    opt.Required,
		Enabled:     opt.IsActivated(),
		Default:     opt.DefaultValue,
		Choices:     opt.Choices,
	}
	if opt.ShortName != 0 {
		d.Short = string(opt.ShortName)
	}
	return d
}

// Describe returns the serializable description of the model.
func (m *Model) Describe() Description {
	d := Description{Command: m.Name, Description: m.Description}
	if m.Argument != nil {
		arg := describeOption(m.Argument)
		d.Argument = &arg
	}
	for _, opt := range m.Options {
		d.Options = append(d.Options, describeOption(opt))
	}
	for _, diag := range m.Diagnostics {
		d.Skipped = append(d.Skipped, diag.String())
	}
	return d
}

// DescribeYAML renders Describe as YAML.
func (m *Model) DescribeYAML() ([]byte, error) {
	data, err := yaml.Marshal(m.Describe())
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", m.Name, err)
	}
	return data, nil
}

// Usage renders help text for the command line form of the model.
func (m *Model) Usage() string {
	var b strings.Builder
	b.WriteString(colors.Bold("Usage:") + " " + m.Name)
	if len(m.Options) > 0 {
		b.WriteString(" [options]")
	}
	if arg := m.Argument; arg != nil {
		token := "<" + ArgumentsInputName + ">"
		if arg.Arity == ArityMany {
			token += "..."
		}
		if !arg.Required {
			token = "[" + token + "]"
		}
		b.WriteString(" " + token)
	}
	b.WriteString("\n")
	if m.Description != "" {
		b.WriteString("\n" + m.Description + "\n")
	}
	if len(m.Options) > 0 {
		fs, _ := m.FlagSet()
		b.WriteString("\n" + colors.Bold("Options:") + "\n")
		b.WriteString(fs.FlagUsages())
	}
	for _, opt := range m.Options {
		if len(opt.Choices) > 0 {
			b.WriteString(colors.Faint(fmt.Sprintf("  --%s: one of %s", opt.Name, strings.Join(opt.Choices, ", "))) + "\n")
		}
	}
	return b.String()
}
