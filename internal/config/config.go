// Package config handles mmlc.toml configuration for the command-line
// compiler.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up next to the inputs.
const FileName = "mmlc.toml"

type Config struct {
	Compile Compile `toml:"compile"`
	Export  Export  `toml:"export"`
	Log     Log     `toml:"log"`

	// Path is the file the configuration was read from (empty for defaults).
	Path string `toml:"-"`
}

type Compile struct {
	NestedLoops   string `toml:"nested_loops"`
	FallbackScale bool   `toml:"fallback_scale"`
	FoldWidth     bool   `toml:"fold_width"`
}

type Export struct {
	Tempo         float64 `toml:"tempo"`
	UseScoreTempo bool    `toml:"use_score_tempo"`
	Resolution    int     `toml:"resolution"`
	Channel       int     `toml:"channel"`
	TrackName     string  `toml:"track_name"`
}

type Log struct {
	Verbosity int `toml:"verbosity"`
}

func Default() Config {
	return Config{
		Compile: Compile{NestedLoops: "expand", FallbackScale: true},
		Export:  Export{Tempo: 120, Resolution: 480},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// FindAndLoad loads FileName from dir, falling back to defaults when absent.
func FindAndLoad(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName), true)
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Compile.NestedLoops)) {
	case "", "expand", "flat":
	default:
		return fmt.Errorf("invalid nested_loops %q (expected expand|flat)", c.Compile.NestedLoops)
	}
	if c.Export.Tempo <= 0 {
		return fmt.Errorf("invalid export tempo %v", c.Export.Tempo)
	}
	if c.Export.Resolution <= 0 || c.Export.Resolution > 32767 {
		return fmt.Errorf("invalid export resolution %d", c.Export.Resolution)
	}
	if c.Export.Channel < 0 || c.Export.Channel > 15 {
		return fmt.Errorf("invalid export channel %d", c.Export.Channel)
	}
	return nil
}

// FlatLoops reports whether nested loops use the flat replay mode.
func (c *Config) FlatLoops() bool {
	return strings.EqualFold(strings.TrimSpace(c.Compile.NestedLoops), "flat")
}
