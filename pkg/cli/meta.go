package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/colorfill/pkg/coloring"
)

// ParamType is the kind of a command parameter.
type ParamType string

const (
	ParamTypeInt    ParamType = "int"
	ParamTypeColor  ParamType = "color"
	ParamTypeString ParamType = "string"
)

// ValidationRule describes how a parameter is checked before the command
// runs.
type ValidationRule struct {
	Type     ParamType `json:"type"`
	Required bool      `json:"required"`
	Min      *int      `json:"min,omitempty"`
	Example  string    `json:"example,omitempty"`
	Hint     string    `json:"hint,omitempty"`
}

// GenerateTooltip renders the help text of a command.
func GenerateTooltip(c coloring.CommandSpec) string {
	var sb strings.Builder
	if c.Description != "" {
		sb.WriteString(c.Description)
	} else {
		sb.WriteString("No description")
	}
	if len(c.Args) == 0 {
		sb.WriteString(" (no parameters)")
		return sb.String()
	}
	sb.WriteString("\nparameters:\n")
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		fmt.Fprintf(&sb, "- %s (%s, %s)", a.Name, a.Type, req)
		if a.Description != "" {
			sb.WriteString(": " + a.Description)
		}
		if a.Default != "" {
			sb.WriteString(" (default: " + a.Default + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// GenerateValidationRules maps a command's ArgSpecs to rules. Integer
// coordinates must be non-negative.
func GenerateValidationRules(c coloring.CommandSpec) map[string]ValidationRule {
	rules := make(map[string]ValidationRule, len(c.Args))
	for _, a := range c.Args {
		r := ValidationRule{Required: a.Required, Hint: a.Description, Example: a.Default}
		switch strings.ToLower(a.Type) {
		case "int":
			zero := 0
			r.Type = ParamTypeInt
			r.Min = &zero
		case "color":
			r.Type = ParamTypeColor
		default:
			r.Type = ParamTypeString
		}
		rules[a.Name] = r
	}
	return rules
}

// MetaStore indexes command specs by name.
type MetaStore struct {
	Commands []coloring.CommandSpec
	byName   map[string]coloring.CommandSpec
}

// NewMetaStore builds a MetaStore from a command list.
func NewMetaStore(cmds []coloring.CommandSpec) *MetaStore {
	m := &MetaStore{Commands: cmds, byName: make(map[string]coloring.CommandSpec, len(cmds))}
	for _, c := range cmds {
		m.byName[c.Name] = c
	}
	return m
}

// Lookup returns the command named name.
func (m *MetaStore) Lookup(name string) (coloring.CommandSpec, bool) {
	c, ok := m.byName[name]
	return c, ok
}

// GetCommandHelp returns the tooltip and validation rules for a command.
func (m *MetaStore) GetCommandHelp(name string) (string, map[string]ValidationRule, error) {
	c, ok := m.byName[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown command: %s", name)
	}
	return GenerateTooltip(c), GenerateValidationRules(c), nil
}

// Resolve maps user input (a 1-based index, a full name or an unambiguous
// prefix) to a command name.
func (m *MetaStore) Resolve(selection string) (string, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return "", fmt.Errorf("empty selection")
	}
	if idx, err := strconv.Atoi(selection); err == nil {
		if idx < 1 || idx > len(m.Commands) {
			return "", fmt.Errorf("invalid selection %d", idx)
		}
		return m.Commands[idx-1].Name, nil
	}
	lower := strings.ToLower(selection)
	var matches []string
	for _, c := range m.Commands {
		name := strings.ToLower(c.Name)
		if name == lower {
			return c.Name, nil
		}
		if strings.HasPrefix(name, lower) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command: %s", selection)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous selection %q: %s", selection, strings.Join(matches, ", "))
	}
}

// NormalizeArgs validates raw user input against a command's rules and
// returns canonical values: integers re-formatted, colors as #rrggbb.
func NormalizeArgs(store *MetaStore, cmdName string, args []string) ([]string, error) {
	if store == nil {
		return nil, fmt.Errorf("metadata store is nil")
	}
	c, ok := store.byName[cmdName]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", cmdName)
	}
	rules := GenerateValidationRules(c)
	out := make([]string, 0, len(c.Args))
	for i, a := range c.Args {
		raw := ""
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required parameter: %s", a.Name)
			}
			continue
		}
		vr := rules[a.Name]
		switch vr.Type {
		case ParamTypeInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected integer, got %q", a.Name, raw)
			}
			if vr.Min != nil && v < *vr.Min {
				return nil, fmt.Errorf("parameter %s: %d < min %d", a.Name, v, *vr.Min)
			}
			out = append(out, strconv.Itoa(v))
		case ParamTypeColor:
			col, err := coloring.ParseColor(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out = append(out, coloring.HexOf(col))
		default:
			out = append(out, raw)
		}
	}
	return out, nil
}
