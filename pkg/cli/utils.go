package cli

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/colorfill/pkg/coloring"
)

// stdin is shared by every prompt so buffered input is never lost between
// the single-key loop and line prompts.
var stdin = bufio.NewReader(os.Stdin)

// PromptLine prints prompt and reads one trimmed line.
func PromptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptLineOrFzf reads a line; a lone "/" opens the fzf file picker
// instead. If fzf is unavailable the prompt is shown again.
func PromptLineOrFzf(prompt string) (string, error) {
	input, err := PromptLine(prompt)
	if err != nil {
		return "", err
	}
	if input != "/" {
		return input, nil
	}
	if sel, selErr := SelectFileWithFzf("."); selErr == nil && sel != "" {
		fmt.Printf(" [fzf] %s\n", sel)
		return sel, nil
	}
	return PromptLine(prompt)
}

// LoadImageFile decodes the artwork at path.
func LoadImageFile(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return coloring.LoadCanvasImage(f)
}

// LoadMaskFile decodes the mask at path scaled to w x h.
func LoadMaskFile(path string, w, h int) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return coloring.LoadMaskImage(f, w, h)
}

// SaveImage writes img using the format implied by the extension. PNG is
// the default and the only lossless choice.
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 92})
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// GetImageInfo returns a one-line summary of a canvas.
func GetImageInfo(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	b := img.Bounds()
	return fmt.Sprintf("Width: %d, Height: %d", b.Dx(), b.Dy()), nil
}

// ProgressPath is where saved progress for imagePath lives.
func ProgressPath(imagePath string) string {
	return imagePath + ".cfsn"
}

// ReadProgress returns the saved snapshot at path, or nil when none exists.
func ReadProgress(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

// WriteProgress replaces the snapshot at path atomically.
func WriteProgress(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".colorfill-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ParsePaletteArg parses a comma-separated list of colors. An empty string
// yields a nil palette, which makes the session discover it from the mask.
func ParsePaletteArg(s string) (coloring.Palette, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return coloring.NewPalette(parts...)
}
