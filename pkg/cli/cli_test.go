package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/colorfill/pkg/coloring"
	"github.com/Fepozopo/colorfill/pkg/config"
)

// writePicture writes a 20x20 outlined square and its red mask as PNGs.
func writePicture(t *testing.T, dir string) (imgPath, maskPath string) {
	t.Helper()
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	red := color.NRGBA{255, 0, 0, 255}
	canvas := coloring.NewSolid(20, 20, white)
	mask := coloring.NewSolid(20, 20, white)
	for y := 4; y <= 15; y++ {
		for x := 4; x <= 15; x++ {
			if x == 4 || x == 15 || y == 4 || y == 15 {
				canvas.SetNRGBA(x, y, black)
				mask.SetNRGBA(x, y, black)
			} else {
				mask.SetNRGBA(x, y, red)
			}
		}
	}
	imgPath = filepath.Join(dir, "square.png")
	maskPath = filepath.Join(dir, "square-mask.png")
	for path, img := range map[string]image.Image{imgPath: canvas, maskPath: mask} {
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
	return imgPath, maskPath
}

func newTestApp(cfg *config.Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	a := NewApp(cfg, log)
	var out, errOut bytes.Buffer
	a.out, a.errOut = &out, &errOut
	a.preview = func(*coloring.Session) {}
	return a, &out, &errOut
}

func TestAppFillUndoRedo(t *testing.T) {
	img, mask := writePicture(t, t.TempDir())
	a, out, errOut := newTestApp(config.Default())
	require.NoError(t, a.Open(img, mask, nil))
	assert.Contains(t, out.String(), "Width: 20, Height: 20, Colors: 1, Selected: #ff0000")

	assert.False(t, a.handle("f 10 10"))
	assert.Contains(t, out.String(), "filled 100 pixels with #ff0000")
	assert.Contains(t, out.String(), "Picture complete")

	out.Reset()
	a.handle("u")
	a.handle("k")
	assert.Contains(t, out.String(), "undone")
	assert.Contains(t, out.String(), "missing: #ff0000")

	out.Reset()
	a.handle("r")
	a.handle("k")
	assert.Contains(t, out.String(), "redone")
	assert.Contains(t, out.String(), "complete")
	assert.Contains(t, out.String(), "100.0%")

	a.handle("f -1 3")
	assert.Contains(t, errOut.String(), "input validation error")
	assert.True(t, a.handle("q"))
}

func TestAppSelectColorAndMistakeHint(t *testing.T) {
	img, mask := writePicture(t, t.TempDir())
	a, out, errOut := newTestApp(config.Default())
	require.NoError(t, a.Open(img, mask, coloring.Palette{"#ff0000", "#0000ff"}))

	a.handle("c green")
	assert.Contains(t, errOut.String(), "not in palette")

	a.handle("c blue")
	a.handle("f 10 10")
	assert.Contains(t, out.String(), "selected #0000ff")
	assert.Contains(t, out.String(), "hint: that area wants #ff0000, not #0000ff")
	assert.NotContains(t, out.String(), "Picture complete")
}

func TestAppSaveProgressAndResume(t *testing.T) {
	img, mask := writePicture(t, t.TempDir())
	a, out, _ := newTestApp(config.Default())
	require.NoError(t, a.Open(img, mask, nil))
	a.handle("f 10 10")
	a.handle("p")
	assert.Contains(t, out.String(), "Progress saved to "+ProgressPath(img))

	b, out2, _ := newTestApp(config.Default())
	require.NoError(t, b.Open(img, mask, nil))
	assert.Contains(t, out2.String(), "Resumed saved progress.")
	assert.True(t, b.Session().Check().IsComplete)
}

func TestAppIgnoresCorruptProgress(t *testing.T) {
	img, mask := writePicture(t, t.TempDir())
	require.NoError(t, WriteProgress(ProgressPath(img), []byte("CFSN-not-really")))

	a, out, errOut := newTestApp(config.Default())
	require.NoError(t, a.Open(img, mask, nil))
	assert.NotContains(t, out.String(), "Resumed saved progress.")
	assert.Contains(t, errOut.String(), "could not be used")
	assert.False(t, a.Session().Check().IsComplete)
}

func TestAppAutoSave(t *testing.T) {
	img, mask := writePicture(t, t.TempDir())
	cfg := config.Default()
	cfg.AutoSave = true
	a, _, _ := newTestApp(cfg)
	require.NoError(t, a.Open(img, mask, nil))

	a.handle("f 10 10")
	data, err := ReadProgress(ProgressPath(img))
	require.NoError(t, err)
	restored, err := coloring.RestoreSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, a.Session().Canvas().Pix, restored.Pix)
}

func TestAppRequiresPicture(t *testing.T) {
	a, out, errOut := newTestApp(config.Default())
	a.handle("u")
	assert.Contains(t, out.String(), "No picture loaded")

	a.handle("o /nonexistent.png /nonexistent-mask.png")
	assert.Contains(t, errOut.String(), "failed to read image")

	out.Reset()
	a.handle("h")
	assert.Contains(t, out.String(), "Commands available:")
	assert.False(t, a.handle("   "))
}

func TestAppOpenWithPaletteArg(t *testing.T) {
	img, mask := writePicture(t, t.TempDir())
	a, out, errOut := newTestApp(config.Default())
	a.handle("o " + img + " " + mask + " red,blue")
	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "Opened "+img)
	assert.Equal(t, coloring.Palette{"#ff0000", "#0000ff"}, a.Session().Palette())

	a.handle("o " + img + " " + mask + " red,nope")
	assert.Contains(t, errOut.String(), "invalid palette")
}

func TestResolveColorChoice(t *testing.T) {
	p := coloring.Palette{"#ff0000", "#0000ff"}
	assert.Equal(t, "#0000ff", resolveColorChoice(p, "2"))
	assert.Equal(t, coloring.White, resolveColorChoice(p, "W"))
	assert.Equal(t, "", resolveColorChoice(p, "3"))
	assert.Equal(t, "", resolveColorChoice(p, " "))
	assert.Equal(t, "red", resolveColorChoice(p, "red"))
}
