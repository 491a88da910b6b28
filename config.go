package birch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds renderer settings. Zero values are replaced by defaults in
// NewRenderer, so a partially filled Config is valid.
type Config struct {
	// BatchSize is the number of quads one pipeline batches before it must
	// flush. Buffers hold BatchSize*6 vertices.
	BatchSize int `yaml:"batchSize"`
	// MaxTextureUnits caps the units used per batch. 0 uses everything the
	// backend reports.
	MaxTextureUnits int `yaml:"maxTextureUnits"`
	// MaxLights caps the lights passed to the lighting pipeline per camera.
	MaxLights int `yaml:"maxLights"`
	// RoundPixels turns on Camera.RoundPixels for every camera the renderer
	// draws, including cameras added after the renderer was created.
	RoundPixels bool `yaml:"roundPixels"`
	// Debug enables buffer overflow assertions and tree sanity checks.
	Debug bool `yaml:"debug"`

	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	BackgroundColor uint32 `yaml:"backgroundColor"`
}

// Defaults.
const (
	DefaultBatchSize = 4096
	DefaultMaxLights = 10
	DefaultWidth     = 800
	DefaultHeight    = 600
)

// DefaultConfig returns the default renderer settings.
func DefaultConfig() Config {
	return Config{
		BatchSize: DefaultBatchSize,
		MaxLights: DefaultMaxLights,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
	}
}

// LoadConfig parses YAML on top of DefaultConfig and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("birch: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("birch: read config: %w", err)
	}
	return LoadConfig(data)
}

// Validate reports settings no renderer can run with.
func (c Config) Validate() error {
	switch {
	case c.BatchSize < 0:
		return fmt.Errorf("birch: batchSize %d is negative: %w", c.BatchSize, ErrInvalidConfig)
	case c.MaxTextureUnits < 0:
		return fmt.Errorf("birch: maxTextureUnits %d is negative: %w", c.MaxTextureUnits, ErrInvalidConfig)
	case c.MaxLights < 0:
		return fmt.Errorf("birch: maxLights %d is negative: %w", c.MaxLights, ErrInvalidConfig)
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("birch: size %dx%d is negative: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	return nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BatchSize == 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxLights == 0 {
		c.MaxLights = d.MaxLights
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	return c
}
