// Registry of session commands. The CLI reads this list for its picker,
// help text and argument validation; ApplyCommand dispatches on Name.

package coloring

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgSpec describes a single command argument. Type is textual and used
// for help and validation rather than enforced here.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "color", "string"
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandSpec defines a session command and its arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string
	Description string
}

// Commands lists every command ApplyCommand understands.
var Commands = []CommandSpec{
	{
		Name:        "fill",
		Args:        []ArgSpec{{"x", "int", true, "", "canvas column"}, {"y", "int", true, "", "canvas row"}},
		Usage:       "fill <x> <y>",
		Description: "Fill the region under (x, y) with the selected color.",
	},
	{
		Name:        "select",
		Args:        []ArgSpec{{"color", "color", true, "", "palette color or white"}},
		Usage:       "select <color>",
		Description: "Choose the fill color.",
	},
	{
		Name:        "undo",
		Usage:       "undo",
		Description: "Step back one fill.",
	},
	{
		Name:        "redo",
		Usage:       "redo",
		Description: "Re-apply an undone fill.",
	},
	{
		Name:        "check",
		Usage:       "check",
		Description: "Verify the picture against the mask.",
	},
	{
		Name:        "reset",
		Usage:       "reset",
		Description: "Discard all progress.",
	},
	{
		Name:        "palette",
		Usage:       "palette",
		Description: "List the palette colors.",
	},
}

// LookupCommand returns the registered command named name.
func LookupCommand(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}

// ApplyCommand runs a registry command against s and returns a short
// human-readable status line.
func ApplyCommand(s *Session, name string, args []string) (string, error) {
	if s == nil || !s.Loaded() {
		return "", ErrNotLoaded
	}
	switch name {
	case "fill":
		if len(args) != 2 {
			return "", fmt.Errorf("fill requires 2 args: x y")
		}
		x, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid x: %w", err)
		}
		y, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("invalid y: %w", err)
		}
		n := s.FillAt(x, y)
		if n == 0 {
			return "nothing to fill there", nil
		}
		return fmt.Sprintf("filled %d pixels with %s", n, s.Selected()), nil

	case "select":
		if len(args) != 1 {
			return "", fmt.Errorf("select requires 1 arg: color")
		}
		if err := s.SelectColor(args[0]); err != nil {
			return "", err
		}
		return "selected " + s.Selected(), nil

	case "undo":
		if !s.Undo() {
			return "nothing to undo", nil
		}
		return "undone", nil

	case "redo":
		if !s.Redo() {
			return "nothing to redo", nil
		}
		return "redone", nil

	case "check":
		res := s.Check()
		if res.IsComplete {
			return "complete", nil
		}
		return "missing: " + strings.Join(res.MissingColors, ", "), nil

	case "reset":
		s.Reset()
		return "progress cleared", nil

	case "palette":
		labels := s.Labels()
		parts := make([]string, 0, len(s.Palette()))
		for _, c := range s.Palette() {
			if n, ok := labels[c]; ok {
				parts = append(parts, fmt.Sprintf("%d:%s", n, c))
			} else {
				parts = append(parts, c)
			}
		}
		return strings.Join(parts, " "), nil

	default:
		return "", fmt.Errorf("unsupported command: %s", name)
	}
}
