// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server"`
	Operator OperatorConfig          `yaml:"operator"`
	Library  LibraryConfig           `yaml:"library"`
	Media    MediaConfig             `yaml:"media"`
	Kiosk    KioskConfig             `yaml:"kiosk"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Messages MessagesConfig          `yaml:"messages"`
	PlayLog  PlayLogConfig           `yaml:"playlog"`
	Player   PlayerConfig            `yaml:"player"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// OperatorConfig represents operator console configuration.
type OperatorConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// LibraryConfig represents the music library.
type LibraryConfig struct {
	MusicDir    string `yaml:"music_dir" validate:"required"`
	CatalogPath string `yaml:"catalog_path" default:"db.json"`
}

// MediaConfig represents the bundled promo and background clips.
type MediaConfig struct {
	PromoDir      string             `yaml:"promo_dir" default:"assets/promo"`
	PromoFile     string             `yaml:"promo_file" default:"promo.mp4"`
	BackgroundDir string             `yaml:"background_dir" default:"assets/backgrounds"`
	Backgrounds   []BackgroundConfig `yaml:"backgrounds" validate:"dive"`
}

// BackgroundConfig represents one background clip.
type BackgroundConfig struct {
	ID   string `yaml:"id" validate:"required"`
	File string `yaml:"file" validate:"required"`
}

// DefaultBackgrounds are used when no backgrounds are configured.
var DefaultBackgrounds = []BackgroundConfig{
	{ID: "bg1", File: "1.mp4"},
	{ID: "bg2", File: "2.mp4"},
	{ID: "bg3", File: "3.mp4"},
}

// KioskConfig represents kiosk behaviour.
type KioskConfig struct {
	PageSize         int  `yaml:"page_size" default:"26" validate:"gte=1,lte=500"`
	UpcomingCount    int  `yaml:"upcoming_count" default:"6" validate:"gte=1,lte=50"`
	InitialCredits   *int `yaml:"initial_credits" default:"1" validate:"gte=0"`
	NoticeDurationMs int  `yaml:"notice_duration_ms" default:"2000" validate:"gte=100,lte=60000"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents patron-facing notice texts.
// Empty values fall back to the built-in texts; {title} is replaced with
// the song title.
type MessagesConfig struct {
	SongAdded      string `yaml:"song_added"`
	SongNotFound   string `yaml:"song_not_found"`
	NoCredit       string `yaml:"no_credit"`
	CannotPlay     string `yaml:"cannot_play"`
	PromoError     string `yaml:"promo_error"`
	CatalogEmpty   string `yaml:"catalog_empty"`
	ControlsLocked string `yaml:"controls_locked"`
	DuplicateSong  string `yaml:"duplicate_song"`
	QueueFull      string `yaml:"queue_full"`
}

// PlayLogConfig represents the play history database. An empty path
// disables it.
type PlayLogConfig struct {
	Path string `yaml:"path"`
}

// PlayerConfig represents the local media player. An empty command leaves
// playback to the kiosk display, which reports back over RPC.
type PlayerConfig struct {
	Command  []string `yaml:"command"`
	LoopArgs []string `yaml:"loop_args"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if len(cfg.Media.Backgrounds) == 0 {
		cfg.Media.Backgrounds = append([]BackgroundConfig(nil), DefaultBackgrounds...)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("MUSIC_DIR"); v != "" {
		c.Library.MusicDir = v
	}
	if v := os.Getenv("ROCKOLA_OPERATOR_TOKEN"); v != "" {
		c.Operator.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	seen := make(map[string]bool, len(c.Media.Backgrounds))
	for _, bg := range c.Media.Backgrounds {
		if seen[bg.ID] {
			return errors.Newf("duplicate background id: %s", bg.ID)
		}
		seen[bg.ID] = true
	}
	return nil
}

// GetMessage returns the configured text for a notice code, or "" when the
// built-in text should be used.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "song_added":
		return c.Messages.SongAdded
	case "song_not_found":
		return c.Messages.SongNotFound
	case "no_credit":
		return c.Messages.NoCredit
	case "cannot_play":
		return c.Messages.CannotPlay
	case "promo_error":
		return c.Messages.PromoError
	case "catalog_empty":
		return c.Messages.CatalogEmpty
	case "controls_locked":
		return c.Messages.ControlsLocked
	case "duplicate_song":
		return c.Messages.DuplicateSong
	case "queue_full":
		return c.Messages.QueueFull
	default:
		return ""
	}
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// InitialCredits returns the credit balance the kiosk starts with.
func (c *Config) InitialCredits() int {
	if c.Kiosk.InitialCredits == nil {
		return 0
	}
	return *c.Kiosk.InitialCredits
}

// NoticeDuration returns how long notices stay on screen.
func (c *Config) NoticeDuration() time.Duration {
	return time.Duration(c.Kiosk.NoticeDurationMs) * time.Millisecond
}

// ResolveDir makes a relative directory absolute against base, the
// directory the config file lives in.
func ResolveDir(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
