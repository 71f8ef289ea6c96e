// Package config loads colorfill settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/colorfill/pkg/coloring"
)

// Config holds every tunable of the CLI and the engine.
type Config struct {
	HistoryCapacity int
	PixelCap        int
	FillThreshold   float64
	Tolerance       int
	Mode            coloring.Mode
	AutoCheck       bool
	AutoSave        bool

	LogLevel  string
	LogFormat string // "text" or "json"

	// FontPath is a TrueType/OpenType font for export captions; empty uses
	// the built-in face.
	FontPath string

	PreviewDebug   bool
	PreviewBackend string // "", "kitty", "inline", "sixel", "chafa", "none"
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		HistoryCapacity: coloring.DefaultHistoryCapacity,
		PixelCap:        coloring.DefaultPixelCap,
		FillThreshold:   coloring.DefaultFillThreshold,
		Tolerance:       coloring.DefaultTolerance,
		Mode:            coloring.ModeSingleSelect,
		AutoCheck:       true,
		LogLevel:        "warn",
		LogFormat:       "text",
	}
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; plain environment variables also work
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default. An invalid
// value yields an error naming the variable.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.intVar(&cfg.HistoryCapacity, "COLORFILL_HISTORY_CAPACITY", 1)
	p.intVar(&cfg.PixelCap, "COLORFILL_PIXEL_CAP", 1)
	p.intVar(&cfg.Tolerance, "COLORFILL_TOLERANCE", 0)
	p.boolVar(&cfg.AutoCheck, "COLORFILL_AUTOCHECK")
	p.boolVar(&cfg.AutoSave, "COLORFILL_AUTOSAVE")
	p.boolVar(&cfg.PreviewDebug, "PREVIEW_DEBUG")

	if v, ok := p.get("COLORFILL_FONT"); ok {
		cfg.FontPath = v
	}
	if v, ok := p.get("COLORFILL_FILL_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			p.fail("COLORFILL_FILL_THRESHOLD", v, "want a number in (0, 1]")
		} else {
			cfg.FillThreshold = f
		}
	}
	if v, ok := p.get("COLORFILL_MODE"); ok {
		m, err := coloring.ParseMode(v)
		if err != nil {
			p.fail("COLORFILL_MODE", v, "want single or labeled")
		} else {
			cfg.Mode = m
		}
	}
	if v, ok := p.get("COLORFILL_LOG_LEVEL"); ok {
		if _, err := logrus.ParseLevel(v); err != nil {
			p.fail("COLORFILL_LOG_LEVEL", v, "want a logrus level")
		} else {
			cfg.LogLevel = strings.ToLower(v)
		}
	}
	if v, ok := p.get("COLORFILL_LOG_FORMAT"); ok {
		switch f := strings.ToLower(v); f {
		case "text", "json":
			cfg.LogFormat = f
		default:
			p.fail("COLORFILL_LOG_FORMAT", v, "want text or json")
		}
	}
	if v, ok := p.get("PREVIEW_BACKEND"); ok {
		switch b := strings.ToLower(v); b {
		case "auto":
			cfg.PreviewBackend = ""
		case "kitty", "inline", "sixel", "chafa", "none":
			cfg.PreviewBackend = b
		default:
			p.fail("PREVIEW_BACKEND", v, "want auto, kitty, inline, sixel, chafa or none")
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// SessionOptions maps the config onto engine options. Callbacks and the
// persistence hook are left for the caller.
func (c *Config) SessionOptions() coloring.SessionOptions {
	return coloring.SessionOptions{
		HistoryCapacity: c.HistoryCapacity,
		Fill:            coloring.FillOptions{PixelCap: c.PixelCap},
		Check:           coloring.CheckOptions{FillThreshold: c.FillThreshold, Tolerance: c.Tolerance},
		Mode:            c.Mode,
		AutoCheck:       c.AutoCheck,
	}
}

// NewLogger returns a logrus logger configured from LogLevel and LogFormat
// writing to out (stderr when nil).
func (c *Config) NewLogger(out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	log := logrus.New()
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)
	log.SetOutput(out)
	return log
}

// parser collects the first error while reading variables.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(name string) (string, bool) {
	v, ok := p.lookup(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(name, value, want string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %s", name, value, want)
	}
}

func (p *parser) intVar(dst *int, name string, floor int) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		p.fail(name, v, fmt.Sprintf("want an integer >= %d", floor))
		return
	}
	*dst = n
}

func (p *parser) boolVar(dst *bool, name string) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(name, v, "want true or false")
		return
	}
	*dst = b
}
