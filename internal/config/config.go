package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the client. Values are layered: defaults,
// then the optional YAML file, then the environment.
type Config struct {
	APIURL         string        `yaml:"api_url" env:"OMNI_API_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"OMNI_REQUEST_TIMEOUT"`
	SearchLimit    int           `yaml:"search_limit" env:"OMNI_SEARCH_LIMIT"`

	ProgressInterval time.Duration `yaml:"progress_interval" env:"OMNI_PROGRESS_INTERVAL"`
	ProgressStep     int           `yaml:"progress_step" env:"OMNI_PROGRESS_STEP"`
	ProgressCap      int           `yaml:"progress_cap" env:"OMNI_PROGRESS_CAP"`
	PollInterval     time.Duration `yaml:"poll_interval" env:"OMNI_POLL_INTERVAL"`

	PreviewVolume    float64 `yaml:"preview_volume" env:"OMNI_PREVIEW_VOLUME"`
	PlayerCommand    string  `yaml:"player_command" env:"OMNI_PLAYER_COMMAND"`
	PreviewRateLimit float64 `yaml:"preview_rate_limit" env:"OMNI_PREVIEW_RATE_LIMIT"`
	PreviewFallback  string  `yaml:"preview_fallback" env:"OMNI_PREVIEW_FALLBACK"`

	SpotifyID     string `yaml:"spotify_id" env:"SPOTIFY_ID"`
	SpotifySecret string `yaml:"spotify_secret" env:"SPOTIFY_SECRET"`
	YouTubeAPIKey string `yaml:"youtube_api_key" env:"YOUTUBE_API_KEY"`
	OpenOn        string `yaml:"open_on" env:"OMNI_OPEN_ON"`

	LogFile string `yaml:"log_file" env:"OMNI_LOG_FILE"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		RequestTimeout:   30 * time.Second,
		SearchLimit:      10,
		ProgressInterval: 500 * time.Millisecond,
		ProgressStep:     1,
		ProgressCap:      90,
		PollInterval:     5 * time.Second,
		PreviewVolume:    0.4,
		PlayerCommand:    "ffplay",
		OpenOn:           "spotify",
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults, .env and the environment are consulted.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	// .env is optional; variables already present in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks values and clamps the ones that have a safe range
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil {
			return fmt.Errorf("invalid api_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("api_url scheme must be http or https")
		}
		if u.Host == "" {
			return fmt.Errorf("api_url must include a host")
		}
	}

	if c.SearchLimit < 1 || c.SearchLimit > 50 {
		return fmt.Errorf("search_limit must be between 1 and 50, got %d", c.SearchLimit)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be greater than 0")
	}
	if c.ProgressInterval <= 0 || c.PollInterval <= 0 {
		return fmt.Errorf("progress_interval and poll_interval must be greater than 0")
	}
	if c.ProgressStep < 1 {
		c.ProgressStep = 1
	}
	if c.ProgressCap < 1 || c.ProgressCap > 99 {
		return fmt.Errorf("progress_cap must be between 1 and 99, got %d", c.ProgressCap)
	}

	if c.PreviewVolume < 0 {
		c.PreviewVolume = 0
	}
	if c.PreviewVolume > 1 {
		c.PreviewVolume = 1
	}
	if c.PreviewRateLimit < 0 {
		return fmt.Errorf("preview_rate_limit cannot be negative")
	}

	switch c.PreviewFallback {
	case "", "none", "spotify":
	default:
		return fmt.Errorf("unsupported preview_fallback: %s", c.PreviewFallback)
	}
	if c.PreviewFallback == "spotify" && (c.SpotifyID == "" || c.SpotifySecret == "") {
		return fmt.Errorf("preview_fallback spotify requires SPOTIFY_ID and SPOTIFY_SECRET")
	}

	switch c.OpenOn {
	case "spotify", "youtube":
	default:
		return fmt.Errorf("unsupported open_on platform: %s", c.OpenOn)
	}

	return nil
}
