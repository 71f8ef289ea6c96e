package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/colorfill/pkg/coloring"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 50, cfg.HistoryCapacity)
	assert.Equal(t, 500000, cfg.PixelCap)
	assert.Equal(t, 0.8, cfg.FillThreshold)
	assert.Equal(t, 30, cfg.Tolerance)
	assert.True(t, cfg.AutoCheck)
	assert.False(t, cfg.AutoSave)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupMap(map[string]string{
		"COLORFILL_HISTORY_CAPACITY": "5",
		"COLORFILL_PIXEL_CAP":        "1000",
		"COLORFILL_FILL_THRESHOLD":   "0.95",
		"COLORFILL_TOLERANCE":        "10",
		"COLORFILL_MODE":             "labeled",
		"COLORFILL_AUTOCHECK":        "false",
		"COLORFILL_AUTOSAVE":         "1",
		"COLORFILL_LOG_LEVEL":        "DEBUG",
		"COLORFILL_LOG_FORMAT":       "json",
		"PREVIEW_DEBUG":              "true",
		"PREVIEW_BACKEND":            "Sixel",
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.HistoryCapacity)
	assert.Equal(t, 1000, cfg.PixelCap)
	assert.Equal(t, 0.95, cfg.FillThreshold)
	assert.Equal(t, 10, cfg.Tolerance)
	assert.Equal(t, coloring.ModeLabeled, cfg.Mode)
	assert.False(t, cfg.AutoCheck)
	assert.True(t, cfg.AutoSave)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.PreviewDebug)
	assert.Equal(t, "sixel", cfg.PreviewBackend)

	opts := cfg.SessionOptions()
	assert.Equal(t, 5, opts.HistoryCapacity)
	assert.Equal(t, 1000, opts.Fill.PixelCap)
	assert.Equal(t, coloring.CheckOptions{FillThreshold: 0.95, Tolerance: 10}, opts.Check)
	assert.Equal(t, coloring.ModeLabeled, opts.Mode)
	assert.False(t, opts.AutoCheck)
}

func TestFromEnvInvalid(t *testing.T) {
	cases := map[string]string{
		"COLORFILL_HISTORY_CAPACITY": "0",
		"COLORFILL_PIXEL_CAP":        "lots",
		"COLORFILL_FILL_THRESHOLD":   "1.5",
		"COLORFILL_TOLERANCE":        "-1",
		"COLORFILL_MODE":             "rainbow",
		"COLORFILL_AUTOCHECK":        "maybe",
		"COLORFILL_LOG_LEVEL":        "loud",
		"COLORFILL_LOG_FORMAT":       "xml",
		"PREVIEW_BACKEND":            "teletype",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(lookupMap(map[string]string{name: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestFromEnvBlankIsDefault(t *testing.T) {
	cfg, err := FromEnv(lookupMap(map[string]string{"COLORFILL_PIXEL_CAP": "  "}))
	require.NoError(t, err)
	assert.Equal(t, coloring.DefaultPixelCap, cfg.PixelCap)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COLORFILL_TOLERANCE=12\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("COLORFILL_MODE", "labeled")
	os.Unsetenv("COLORFILL_TOLERANCE")
	t.Cleanup(func() { os.Unsetenv("COLORFILL_TOLERANCE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Tolerance)
	assert.Equal(t, coloring.ModeLabeled, cfg.Mode)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "info"
	log := cfg.NewLogger(&buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.WithField("region", "#ff0000").Info("filled")
	assert.Contains(t, buf.String(), `"region":"#ff0000"`)

	buf.Reset()
	cfg = Default()
	log = cfg.NewLogger(&buf)
	log.Info("hidden")
	assert.Empty(t, buf.String())
}
