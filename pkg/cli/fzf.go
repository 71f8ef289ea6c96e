package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Fepozopo/colorfill/pkg/coloring"
)

// runFzf pipes lines into fzf and returns the chosen line.
func runFzf(lines []string, args ...string) (string, error) {
	cmd := exec.Command("fzf", args...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}
	sel := strings.TrimSpace(out.String())
	if sel == "" {
		return "", fmt.Errorf("nothing selected")
	}
	return sel, nil
}

// SelectCommandWithFzf lists the session commands in fzf and returns the
// chosen command name.
func SelectCommandWithFzf(commands []coloring.CommandSpec) (string, error) {
	lines := make([]string, 0, len(commands))
	for _, c := range commands {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, c.Description))
	}
	sel, err := runFzf(lines, "--prompt=Command> ")
	if err != nil {
		return "", err
	}
	name, _, _ := strings.Cut(sel, ":")
	return strings.TrimSpace(name), nil
}

// swatchLine renders one palette entry with a truecolor block so fzf shows
// the actual color next to its hex value.
func swatchLine(hex string, label int) string {
	r, g, b, err := coloring.FromHex(hex)
	if err != nil {
		return hex
	}
	prefix := ""
	if label > 0 {
		prefix = fmt.Sprintf("%2d ", label)
	}
	return fmt.Sprintf("%s\x1b[48;2;%d;%d;%dm    \x1b[0m %s", prefix, r, g, b, hex)
}

// SelectColorWithFzf lets the user pick a palette color (or white, the
// eraser). labels may be nil; in labeled mode it numbers the swatches.
func SelectColorWithFzf(palette coloring.Palette, labels map[string]int) (string, error) {
	lines := make([]string, 0, len(palette)+1)
	for _, c := range palette {
		lines = append(lines, swatchLine(c, labels[c]))
	}
	lines = append(lines, swatchLine(coloring.White, 0)+" (eraser)")
	sel, err := runFzf(lines, "--ansi", "--prompt=Color> ")
	if err != nil {
		return "", err
	}
	for _, f := range strings.Fields(sel) {
		if strings.HasPrefix(f, "#") {
			return f, nil
		}
	}
	return "", fmt.Errorf("unexpected selection %q", sel)
}

// SelectFileWithFzf lists image files under startDir in fzf with a
// terminal-aware preview and returns the chosen path. It needs find, bash
// and fzf on PATH.
func SelectFileWithFzf(startDir string) (string, error) {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	var previewCmd string
	switch {
	case isKitty():
		previewCmd = "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || " + chafa
	case isInlineImageCapable():
		previewCmd = "imgcat {} 2>/dev/null || " + chafa
	case isSixelCapable():
		previewCmd = "img2sixel {} 2>/dev/null || " + chafa
	default:
		previewCmd = chafa
	}

	cmdStr := fmt.Sprintf(
		"find %s -type f \\( -iname '*.png' -o -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.gif' -o -iname '*.webp' -o -iname '*.bmp' -o -iname '*.tif' -o -iname '*.tiff' \\) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir),
		previewCmd,
	)
	cmd := exec.Command("bash", "-lc", cmdStr)
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	clearKittyImages()
	if err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}
	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}

// clearKittyImages deletes images left behind by the fzf previewer. Other
// terminals ignore the sequence.
func clearKittyImages() {
	fmt.Fprint(previewOut, "\x1b_Ga=d\x1b\\")
}
