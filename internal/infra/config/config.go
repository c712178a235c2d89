// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/osa030/songqueue/internal/domain/catalog"
	"github.com/osa030/songqueue/internal/domain/song"
)

// Display types.
const (
	DisplayTUI     = "tui"
	DisplayConsole = "console"
)

// Config represents the application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Playback PlaybackConfig `yaml:"playback"`
	Messages MessagesConfig `yaml:"messages"`
	Display  DisplayConfig  `yaml:"display"`
	Log      LogConfig      `yaml:"log"`
}

// CatalogConfig lists the songs offered for playback.
// An empty list selects the built-in catalog.
type CatalogConfig struct {
	Songs []SongConfig `yaml:"songs" validate:"dive"`
}

// SongConfig represents a single catalog entry.
type SongConfig struct {
	ID          int    `yaml:"id" validate:"gt=0"`
	Name        string `yaml:"name" validate:"required"`
	CoverArt    string `yaml:"cover_art"`
	DurationSec int    `yaml:"duration_sec" validate:"gt=0"`
}

// PlaybackConfig represents simulated playback configuration.
// TimeScale is a pointer so that an explicit 0 is rejected instead of defaulted.
type PlaybackConfig struct {
	TimeScale      *float64 `yaml:"time_scale" default:"1.0" validate:"gt=0,lte=100"`
	TickIntervalMs int      `yaml:"tick_interval_ms" default:"100" validate:"gte=10,lte=1000"`
}

// MessagesConfig represents user-facing messages.
type MessagesConfig struct {
	PlayNoSelection    string `yaml:"play_no_selection" default:"Please select a song to play."`
	EnqueueNoSelection string `yaml:"enqueue_no_selection" default:"Please select a song to add to the queue."`
	QueueExhausted     string `yaml:"queue_exhausted" default:"Queue is empty. Playback stopped."`
}

// DisplayConfig selects the display and carries its type-specific settings.
type DisplayConfig struct {
	Type     string         `yaml:"type" default:"tui" validate:"oneof=tui console"`
	Settings map[string]any `yaml:"settings"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
}

// Load loads configuration from a YAML file.
// An empty path yields the default configuration.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("SONGQUEUE_DISPLAY"); v != "" {
		c.Display.Type = v
	}
	if v := os.Getenv("SONGQUEUE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SONGQUEUE_TIME_SCALE"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid SONGQUEUE_TIME_SCALE %q", v)
		}
		c.Playback.TimeScale = &scale
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Song IDs must be unique
	seen := make(map[int]bool, len(c.Catalog.Songs))
	for _, s := range c.Catalog.Songs {
		if seen[s.ID] {
			return errors.Newf("duplicate song id %d in catalog", s.ID)
		}
		seen[s.ID] = true
	}

	return nil
}

// TickInterval returns the scheduler polling interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Playback.TickIntervalMs) * time.Millisecond
}

// TimeScale returns the multiplier applied to song durations.
func (c *Config) TimeScale() float64 {
	if c.Playback.TimeScale == nil {
		return 1
	}
	return *c.Playback.TimeScale
}

// ToSongs converts the configured catalog entries to songs.
func (c *CatalogConfig) ToSongs() []song.Song {
	songs := make([]song.Song, len(c.Songs))
	for i, s := range c.Songs {
		songs[i] = song.Song{
			ID:          s.ID,
			Name:        s.Name,
			CoverArtRef: s.CoverArt,
			Duration:    time.Duration(s.DurationSec) * time.Second,
		}
	}
	return songs
}

// BuildCatalog returns the configured catalog, or the built-in one when none is configured.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	if len(c.Catalog.Songs) == 0 {
		return catalog.Default(), nil
	}
	cat, err := catalog.New(c.Catalog.ToSongs())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build catalog")
	}
	return cat, nil
}

// DecodeSettings decodes a display settings map into out, applies its
// defaults and validates it.
func DecodeSettings(settings map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
