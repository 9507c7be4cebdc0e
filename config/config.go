// Package config loads interaction tuning from YAML or TOML files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/akmonengine/reach/input"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Jump tunes the hop triggered by the jump button
type Jump struct {
	Button string  `yaml:"button" toml:"button"`
	Height float64 `yaml:"height" toml:"height"`
	Rise   float64 `yaml:"rise" toml:"rise"`
	Fall   float64 `yaml:"fall" toml:"fall"`
}

// Config holds the tunables of the grab interaction
type Config struct {
	// GrabButton names the control that starts and ends a grab
	GrabButton string `yaml:"grab_button" toml:"grab_button"`
	// GripHalfExtents is the grip volume used when the grip node has no shape
	GripHalfExtents [3]float64 `yaml:"grip_half_extents" toml:"grip_half_extents"`

	GridCellSize  float64 `yaml:"grid_cell_size" toml:"grid_cell_size"`
	GridCells     int     `yaml:"grid_cells" toml:"grid_cells"`
	GridThreshold int     `yaml:"grid_threshold" toml:"grid_threshold"`

	Jump Jump `yaml:"jump" toml:"jump"`
}

// Default returns the tuning used when no file is provided
func Default() Config {
	return Config{
		GrabButton:      input.Squeeze.String(),
		GripHalfExtents: [3]float64{0.05, 0.05, 0.08},
		GridCellSize:    0.5,
		GridCells:       256,
		GridThreshold:   32,
		Jump: Jump{
			Button: input.ButtonA.String(),
			Height: 0.5,
			Rise:   0.2,
			Fall:   0.3,
		},
	}
}

// Load reads path over the defaults, picking the decoder from the extension
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, errors.Errorf("config: unsupported format %q", ext)
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "config: decoding %s", path)
	}

	return cfg, cfg.Validate()
}

// Validate checks that every tunable is usable
func (c Config) Validate() error {
	if _, err := input.ParseButton(c.GrabButton); err != nil {
		return errors.Wrap(err, "config: grab_button")
	}
	if _, err := input.ParseButton(c.Jump.Button); err != nil {
		return errors.Wrap(err, "config: jump.button")
	}
	for i, e := range c.GripHalfExtents {
		if e <= 0 {
			return errors.Errorf("config: grip_half_extents[%d] must be positive, got %v", i, e)
		}
	}
	if c.GridCellSize <= 0 {
		return errors.Errorf("config: grid_cell_size must be positive, got %v", c.GridCellSize)
	}
	if c.GridCells <= 0 {
		return errors.Errorf("config: grid_cells must be positive, got %d", c.GridCells)
	}
	if c.Jump.Height < 0 || c.Jump.Rise <= 0 || c.Jump.Fall <= 0 {
		return errors.New("config: jump needs a non-negative height and positive rise/fall")
	}
	return nil
}

// GrabInput resolves GrabButton; call Validate first
func (c Config) GrabInput() input.Button {
	b, _ := input.ParseButton(c.GrabButton)
	return b
}

// JumpInput resolves Jump.Button; call Validate first
func (c Config) JumpInput() input.Button {
	b, _ := input.ParseButton(c.Jump.Button)
	return b
}
