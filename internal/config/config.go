package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "smartplaylist"

type Config struct {
	Spotify  SpotifyConfig  `koanf:"spotify"`
	Lastfm   LastfmConfig   `koanf:"lastfm"`
	Resolver ResolverConfig `koanf:"resolver"`
	Cache    CacheConfig    `koanf:"cache"`
	Log      LogConfig      `koanf:"log"`
}

// SpotifyConfig holds the Spotify app credentials.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	Market       string `koanf:"market"` // ISO country code for top tracks and search (default: "US")
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
	User      string `koanf:"user"` // personal play counts are used when set
}

// ResolverConfig controls entry resolution.
type ResolverConfig struct {
	MaxPasses       int    `koanf:"max_passes"`       // resolve+flatten passes before giving up (default: 4)
	Concurrency     int    `koanf:"concurrency"`      // concurrent lookups per pass, 0 = unbounded
	PartialFailures string `koanf:"partial_failures"` // "fail" (default) or "skip"
}

// CacheConfig holds the lookup cache settings.
type CacheConfig struct {
	Enabled *bool  `koanf:"enabled"`  // default: true
	Path    string `koanf:"path"`     // default: XDG cache dir
	TTLDays int    `koanf:"ttl_days"` // default: 7
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	File       string `koanf:"file"`  // optional rotating log file
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

// Load reads configuration from the default locations.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads configuration from the given TOML files (missing files are
// skipped, last wins), then applies .env and environment overrides.
func LoadFrom(paths ...string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if cfg.Cache.Path != "" {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&cfg.Spotify.ClientID, "SPOTIFY_ID")
	override(&cfg.Spotify.ClientSecret, "SPOTIFY_SECRET")
	override(&cfg.Spotify.Market, "SPOTIFY_MARKET")
	override(&cfg.Lastfm.APIKey, "LASTFM_API_KEY")
	override(&cfg.Lastfm.APISecret, "LASTFM_API_SECRET")
	override(&cfg.Lastfm.User, "LASTFM_USER")
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/smartplaylist/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != ""
}

// GetMarket returns the market with the default applied.
func (c SpotifyConfig) GetMarket() string {
	if c.Market == "" {
		return "US"
	}
	return strings.ToUpper(c.Market)
}

// GetResolverConfig returns the resolver configuration with defaults applied.
func (c *Config) GetResolverConfig() ResolverConfig {
	cfg := c.Resolver
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = 4
	}
	if cfg.Concurrency < 0 {
		cfg.Concurrency = 0
	}
	cfg.PartialFailures = strings.ToLower(cfg.PartialFailures)
	if cfg.PartialFailures != "skip" {
		cfg.PartialFailures = "fail"
	}
	return cfg
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.TTLDays <= 0 {
		cfg.TTLDays = 7
	}
	return cfg
}
