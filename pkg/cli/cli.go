package cli

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/colorfill/pkg/coloring"
	"github.com/Fepozopo/colorfill/pkg/config"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Commands available:")
	fmt.Fprintln(w, "  /        - select and run a command")
	fmt.Fprintln(w, "  f [x y]  - fill the region at x y")
	fmt.Fprintln(w, "  c [hex]  - choose the fill color")
	fmt.Fprintln(w, "  u / r    - undo / redo")
	fmt.Fprintln(w, "  k        - check the picture")
	fmt.Fprintln(w, "  s        - save the picture")
	fmt.Fprintln(w, "  p        - save progress")
	fmt.Fprintln(w, "  x        - reset all progress")
	fmt.Fprintln(w, "  o        - open another picture")
	fmt.Fprintln(w, "  v        - check for updates")
	fmt.Fprintln(w, "  h        - show this help message")
	fmt.Fprintln(w, "  q        - quit")
}

// App is one interactive colorfill run.
type App struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   *MetaStore
	session *coloring.Session

	imagePath string
	maskPath  string

	out    io.Writer
	errOut io.Writer
	// preview is called after every canvas change.
	preview func(*coloring.Session)
}

// NewApp wires a session from cfg. Nothing is loaded yet.
func NewApp(cfg *config.Config, log *logrus.Logger) *App {
	a := &App{
		cfg:    cfg,
		log:    log,
		store:  NewMetaStore(coloring.Commands),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	a.preview = func(s *coloring.Session) {
		if err := PreviewImage(s.Canvas()); err != nil {
			a.log.WithError(err).Debug("preview unavailable")
		}
	}
	opts := cfg.SessionOptions()
	opts.OnComplete = func(coloring.CompletionResult) {
		fmt.Fprintln(a.out, "*** Picture complete! Well done. ***")
	}
	opts.OnMistake = func(region, fill string) {
		fmt.Fprintf(a.out, "hint: that area wants %s, not %s\n", region, fill)
	}
	if cfg.AutoSave {
		opts.Persist = func(snapshot []byte) error {
			if a.imagePath == "" {
				return nil
			}
			return WriteProgress(ProgressPath(a.imagePath), snapshot)
		}
	}
	a.session = coloring.NewSession(opts)
	return a
}

// Session exposes the underlying session.
func (a *App) Session() *coloring.Session { return a.session }

// Open loads an image and its mask. palette may be empty. Saved progress
// next to the image is resumed when present.
func (a *App) Open(imagePath, maskPath string, palette coloring.Palette) error {
	canvas, err := LoadImageFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}
	mask, err := LoadMaskFile(maskPath, canvas.Rect.Dx(), canvas.Rect.Dy())
	if err != nil {
		return fmt.Errorf("failed to read mask %s: %w", maskPath, err)
	}
	saved, err := ReadProgress(ProgressPath(imagePath))
	if err != nil {
		a.log.WithError(err).Warn("could not read saved progress")
	}
	if err := a.session.Load(canvas, mask, palette, saved); err != nil {
		return err
	}
	a.imagePath, a.maskPath = imagePath, maskPath
	if a.session.Resumed() {
		fmt.Fprintln(a.out, "Resumed saved progress.")
	} else if len(saved) > 0 {
		fmt.Fprintf(a.errOut, "Saved progress in %s could not be used; starting fresh.\n", ProgressPath(imagePath))
	}
	a.showState()
	return nil
}

func (a *App) showState() {
	a.preview(a.session)
	if info, err := GetImageInfo(a.session.Canvas()); err == nil {
		fmt.Fprintf(a.out, "%s, Colors: %d, Selected: %s\n", info, len(a.session.Palette()), a.session.Selected())
	}
}

func (a *App) requireLoaded() bool {
	if a.session.Loaded() {
		return true
	}
	fmt.Fprintln(a.out, "No picture loaded. Press 'o' to open one, or pass image and mask paths as arguments.")
	return false
}

// runCommand executes a registry command and reports the outcome.
func (a *App) runCommand(name string, raw []string) {
	args, err := NormalizeArgs(a.store, name, raw)
	if err != nil {
		fmt.Fprintf(a.errOut, "input validation error: %v\n", err)
		return
	}
	msg, err := coloring.ApplyCommand(a.session, name, args)
	if err != nil {
		fmt.Fprintf(a.errOut, "%s: %v\n", name, err)
		return
	}
	fmt.Fprintln(a.out, msg)
	switch name {
	case "fill", "undo", "redo", "reset":
		a.showState()
	}
}

// promptArgs asks for each parameter of a command that was not supplied.
func (a *App) promptArgs(name string, given []string) []string {
	c, ok := a.store.Lookup(name)
	if !ok || len(given) >= len(c.Args) {
		return given
	}
	out := append([]string(nil), given...)
	for _, p := range c.Args[len(given):] {
		val, err := PromptLine(fmt.Sprintf("%s (%s): ", p.Name, p.Type))
		if err != nil {
			fmt.Fprintf(a.errOut, "input error: %v\n", err)
		}
		out = append(out, val)
	}
	return out
}

func (a *App) chooseColor(args []string) {
	if len(args) > 0 {
		a.runCommand("select", args[:1])
		return
	}
	hex, err := SelectColorWithFzf(a.session.Palette(), a.session.Labels())
	if err != nil {
		fmt.Fprintln(a.out, "Colors:")
		labels := a.session.Labels()
		for i, c := range a.session.Palette() {
			n := i + 1
			if l, ok := labels[c]; ok {
				n = l
			}
			fmt.Fprintf(a.out, "  %d) %s\n", n, swatchLine(c, 0))
		}
		fmt.Fprintf(a.out, "  w) %s (eraser)\n", swatchLine(coloring.White, 0))
		sel, _ := PromptLine("Enter number, w, or color: ")
		hex = resolveColorChoice(a.session.Palette(), sel)
		if hex == "" {
			fmt.Fprintln(a.out, "selection cancelled")
			return
		}
	}
	a.runCommand("select", []string{hex})
}

// resolveColorChoice turns a numbered-list answer into a color.
func resolveColorChoice(palette coloring.Palette, sel string) string {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return ""
	}
	if strings.EqualFold(sel, "w") {
		return coloring.White
	}
	if n, err := strconv.Atoi(sel); err == nil {
		if n >= 1 && n <= len(palette) {
			return palette[n-1]
		}
		return ""
	}
	return sel
}

func (a *App) save(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		path, _ = PromptLine("Enter output filename: ")
	}
	if path == "" {
		fmt.Fprintln(a.out, "no filename provided")
		return
	}
	img := a.session.Canvas()
	caption, _ := PromptLine("Caption (leave empty for none): ")
	if caption != "" {
		annotated, err := coloring.Annotate(img, caption, a.cfg.FontPath, 14, 4, img.Rect.Dy()-4, color.Black)
		if err != nil {
			fmt.Fprintf(a.errOut, "caption failed: %v\n", err)
		} else {
			img = annotated
		}
	}
	if err := SaveImage(path, img); err != nil {
		fmt.Fprintf(a.errOut, "failed to write image: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Saved to %s\n", path)
}

func (a *App) saveProgress() {
	data, err := a.session.Snapshot()
	if err != nil {
		fmt.Fprintf(a.errOut, "snapshot failed: %v\n", err)
		return
	}
	path := ProgressPath(a.imagePath)
	if err := WriteProgress(path, data); err != nil {
		fmt.Fprintf(a.errOut, "failed to save progress: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Progress saved to %s\n", path)
}

func (a *App) openInteractive(args []string) {
	var img, mask string
	if len(args) >= 2 {
		img, mask = args[0], args[1]
	} else {
		img, _ = PromptLineOrFzf("Image path ('/' for fzf, empty to cancel): ")
		if img == "" {
			fmt.Fprintln(a.out, "open cancelled")
			return
		}
		mask, _ = PromptLineOrFzf("Mask path ('/' for fzf): ")
		if mask == "" {
			fmt.Fprintln(a.out, "open cancelled")
			return
		}
	}
	var palette coloring.Palette
	if len(args) >= 3 {
		p, err := ParsePaletteArg(args[2])
		if err != nil {
			fmt.Fprintf(a.errOut, "invalid palette: %v\n", err)
			return
		}
		palette = p
	}
	if err := a.Open(img, mask, palette); err != nil {
		fmt.Fprintf(a.errOut, "%v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Opened %s\n", img)
}

func (a *App) pickCommand() {
	name, err := SelectCommandWithFzf(coloring.Commands)
	if err != nil || name == "" {
		fmt.Fprintln(a.out, "Command selection (fallback):")
		for i, c := range coloring.Commands {
			fmt.Fprintf(a.out, "  %d) %s - %s\n", i+1, c.Name, c.Description)
		}
		sel, _ := PromptLine("Enter number or command name (leave empty to cancel): ")
		if sel == "" {
			fmt.Fprintln(a.out, "selection cancelled")
			return
		}
		if name, err = a.store.Resolve(sel); err != nil {
			fmt.Fprintln(a.out, err)
			return
		}
	}
	if tooltip, _, err := a.store.GetCommandHelp(name); err == nil {
		fmt.Fprintln(a.out, "\n"+tooltip+"\n")
	}
	a.runCommand(name, a.promptArgs(name, nil))
}

func (a *App) report() {
	regions := a.session.Regions()
	labels := a.session.Labels()
	for _, r := range regions {
		mark := " "
		if r.Ratio() >= a.cfg.FillThreshold {
			mark = "x"
		}
		label := ""
		if n, ok := labels[r.Color]; ok {
			label = fmt.Sprintf("%d ", n)
		}
		fmt.Fprintf(a.out, "  [%s] %s%s %5.1f%%\n", mark, label, swatchLine(r.Color, 0), 100*r.Ratio())
	}
	a.runCommand("check", nil)
}

// handle runs one input line and reports whether the loop should stop.
func (a *App) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	key, args := fields[0], fields[1:]
	switch key {
	case "q":
		fmt.Fprintln(a.out, "Exiting...")
		return true
	case "h":
		usage(a.out)
		return false
	case "v":
		if err := CheckForUpdates(); err != nil {
			fmt.Fprintf(a.errOut, "update check error: %v\n", err)
		}
		return false
	case "o":
		a.openInteractive(args)
		return false
	}

	if !a.requireLoaded() {
		return false
	}
	switch key {
	case "/":
		a.pickCommand()
	case "f":
		a.runCommand("fill", a.promptArgs("fill", args))
	case "c":
		a.chooseColor(args)
	case "u":
		a.runCommand("undo", nil)
	case "r":
		a.runCommand("redo", nil)
	case "k":
		a.report()
	case "s":
		a.save(args)
	case "p":
		a.saveProgress()
	case "x":
		ans, _ := PromptLine("Discard all progress? (y/N): ")
		if strings.EqualFold(ans, "y") || strings.EqualFold(ans, "yes") {
			a.runCommand("reset", nil)
		}
	default:
		if cmd, err := a.store.Resolve(key); err == nil {
			a.runCommand(cmd, a.promptArgs(cmd, args))
		}
	}
	return false
}

// Run reads commands until q or end of input.
func (a *App) Run() {
	fmt.Fprintln(a.out, "colorfill "+Version)
	usage(a.out)
	for {
		line, err := PromptLine("> ")
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(a.errOut, "read input error: %v\n", err)
			}
			return
		}
		if a.handle(line) {
			return
		}
	}
}

// RunCLI is the colorfill entry point:
//
//	colorfill [image mask [palette]]
func RunCLI() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}
	log := cfg.NewLogger(os.Stderr)
	coloring.SetLogger(log)
	ConfigurePreview(cfg.PreviewBackend, cfg.PreviewDebug, log)

	app := NewApp(cfg, log)
	if len(os.Args) >= 3 {
		var palette coloring.Palette
		if len(os.Args) >= 4 {
			if palette, err = ParsePaletteArg(os.Args[3]); err != nil {
				fmt.Fprintf(os.Stderr, "invalid palette: %v\n", err)
				os.Exit(2)
			}
		}
		if err := app.Open(os.Args[1], os.Args[2], palette); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	} else if len(os.Args) == 2 {
		fmt.Fprintln(os.Stderr, "usage: colorfill [image mask [palette]]")
		os.Exit(2)
	}
	app.Run()
}
