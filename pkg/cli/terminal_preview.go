package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Terminal preview of the canvas.
//
// Backends, in detection order:
//   - iTerm2-style OSC 1337 inline images (iTerm2, WezTerm, Warp, Tabby, VSCode, ...)
//   - the kitty graphics protocol (kitty, ghostty, Konsole)
//   - sixel through an external img2sixel (foot, Windows Terminal, ...)
//   - chafa block rendering for everything else
//
// The canvas is always sent as PNG so the palette colors reach the terminal
// unchanged. PREVIEW_BACKEND forces a backend ("none" disables previews);
// PREVIEW_DEBUG logs detection decisions.

var (
	previewOut     io.Writer = os.Stdout
	previewBackend string
	previewDebug   bool
	previewLog     = logrus.StandardLogger()
)

// ConfigurePreview sets the preview backend override and diagnostics. An
// empty backend means auto-detect.
func ConfigurePreview(backend string, debug bool, log *logrus.Logger) {
	previewBackend = strings.ToLower(strings.TrimSpace(backend))
	previewDebug = debug
	if log != nil {
		previewLog = log
	}
}

func debugf(format string, args ...interface{}) {
	if !previewDebug {
		return
	}
	previewLog.WithField("component", "preview").Infof(format, args...)
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "kitty") || strings.Contains(term, "ghost") {
		return true
	}
	return os.Getenv("KONSOLE_VERSION") != ""
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		debugf("TERM_PROGRAM indicates inline-capable: %s", os.Getenv("TERM_PROGRAM"))
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	for _, hint := range []string{"wez", "warp", "tabby", "vscode"} {
		if strings.Contains(term, hint) {
			debugf("TERM suggests inline-capable: %s", term)
			return true
		}
	}
	return os.Getenv("ITERM_SESSION_ID") != ""
}

// isSixelCapable is heuristic; SIXEL_PREVIEW=1 forces it.
func isSixelCapable() bool {
	if os.Getenv("SIXEL_PREVIEW") == "1" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "foot") || strings.Contains(term, "st") || strings.Contains(term, "linux") {
		return true
	}
	return os.Getenv("WT_SESSION") != ""
}

func hasChafa() bool {
	if os.Getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewSupported reports whether any preview backend is likely to work.
func PreviewSupported() bool {
	if previewBackend == "none" {
		return false
	}
	supported := isKitty() || isInlineImageCapable() || isSixelCapable() || hasChafa()
	debugf("PreviewSupported -> %v", supported)
	return supported
}

// PreviewSize is the placement of a preview in terminal cells.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// computePreviewSize fits the image into at most 80x40 cells of 8x16 pixels,
// preserving aspect ratio and never scaling up.
func computePreviewSize(img image.Image) PreviewSize {
	const (
		charW, charH     = 8, 16
		minCols, minRows = 6, 3
		maxCols, maxRows = 80, 40
	)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return PreviewSize{Cols: minCols, Rows: minRows, PixelWidth: minCols * charW, PixelHeight: minRows * charH}
	}
	scale := math.Min(1, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return PreviewSize{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

// postImageNewlines is the padding printed under an image so the prompt
// does not overlap it.
func postImageNewlines(rows int) int {
	switch {
	case rows <= 0:
		return 1
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	default:
		return 4
	}
}

// PreviewImage renders img in the terminal.
func PreviewImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	if previewBackend == "none" {
		return nil
	}
	var buf bytes.Buffer
	if err := (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	return previewBytes(buf.Bytes(), computePreviewSize(img))
}

type previewSender func([]byte, PreviewSize) error

func previewBytes(blob []byte, size PreviewSize) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty image blob")
	}
	if previewBackend != "" {
		if send, ok := senderFor(previewBackend); ok {
			if err := send(blob, size); err == nil {
				return nil
			} else {
				debugf("PREVIEW_BACKEND=%s failed: %v", previewBackend, err)
			}
		}
	}

	var chain []previewSender
	if isInlineImageCapable() {
		chain = append(chain, sendInlineImage)
	}
	if isKitty() {
		chain = append(chain, sendKittyImage)
	}
	if isSixelCapable() {
		chain = append(chain, sendSixelImage)
	}
	if hasChafa() {
		chain = append(chain, sendChafaImage)
	}
	if len(chain) == 0 {
		return fmt.Errorf("no preview protocol matched")
	}
	var firstErr error
	for _, send := range chain {
		err := send(blob, size)
		if err == nil {
			return nil
		}
		debugf("preview backend failed: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return fmt.Errorf("preview failed: %w", firstErr)
}

func senderFor(name string) (previewSender, bool) {
	switch name {
	case "kitty":
		return sendKittyImage, true
	case "inline", "iterm", "wezterm":
		return sendInlineImage, true
	case "sixel":
		return sendSixelImage, true
	case "chafa":
		return sendChafaImage, true
	}
	return nil, false
}

func padLines(n int) {
	for i := 0; i < n; i++ {
		fmt.Fprintln(previewOut)
	}
}

// sendKittyImage transmits PNG data with the kitty graphics protocol in
// base64 chunks of at most 4096 bytes. The first chunk carries placement
// (c, r); q=2 suppresses terminal responses.
func sendKittyImage(data []byte, size PreviewSize) error {
	if len(data) == 0 {
		return fmt.Errorf("no data")
	}
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(previewOut, seq); err != nil {
			return err
		}
	}
	padLines(postImageNewlines(size.Rows))
	return nil
}

// sendInlineImage emits the iTerm2 OSC 1337 inline file sequence.
func sendInlineImage(data []byte, size PreviewSize) error {
	if len(data) == 0 {
		return fmt.Errorf("no data")
	}
	meta := fmt.Sprintf("size=%d;", len(data))
	if size.PixelWidth > 0 && size.PixelHeight > 0 {
		meta += fmt.Sprintf("width=%dpx;height=%dpx;", size.PixelWidth, size.PixelHeight)
	}
	seq := "\x1b]1337;File=name=canvas.png;inline=1;" + meta + ":" + base64.StdEncoding.EncodeToString(data) + "\a"
	n, err := io.WriteString(previewOut, seq)
	debugf("wrote %d bytes for inline image (err=%v)", n, err)
	padLines(postImageNewlines(0))
	return err
}

// sendSixelImage pipes PNG data through img2sixel.
func sendSixelImage(data []byte, size PreviewSize) error {
	if len(data) == 0 {
		return fmt.Errorf("no data")
	}
	cmd := exec.Command("img2sixel", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = previewOut
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("img2sixel failed: %w", err)
	}
	padLines(postImageNewlines(0))
	return nil
}

// sendChafaImage renders block graphics with chafa. CHAFA_FILL and
// CHAFA_SYMBOLS override the defaults.
func sendChafaImage(data []byte, size PreviewSize) error {
	if len(data) == 0 {
		return fmt.Errorf("no data")
	}
	if os.Getenv("NO_CHAFA") == "1" {
		return fmt.Errorf("chafa usage disabled via NO_CHAFA=1")
	}
	if _, err := exec.LookPath("chafa"); err != nil {
		return fmt.Errorf("chafa not found in PATH: %w", err)
	}
	fill, symbols := "block", "block"
	if f := os.Getenv("CHAFA_FILL"); f != "" {
		fill = f
	}
	if s := os.Getenv("CHAFA_SYMBOLS"); s != "" {
		symbols = s
	}
	cmd := exec.Command("chafa", "--fill="+fill, "--symbols="+symbols, "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = previewOut
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa failed: %w", err)
	}
	padLines(postImageNewlines(size.Rows))
	return nil
}
