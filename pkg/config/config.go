// Package config loads Dreamscape settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/dreamscape/config.toml
//  3. environment variables (DATABASE_URL, SOLANA_RPC_URL, GALLERY_PATH,
//     BASE_URL, PORT, REDIS_URL, DREAMSCAPE_ENV)
//
// A missing default file is not an error; a missing explicit file is.
//
// Example file:
//
//	[server]
//	port = 3300
//	base_url = "https://art.example.com"
//
//	[solana]
//	rpc_url = "https://api.mainnet-beta.solana.com"
//	timeout = "20s"
//
//	[database]
//	driver = "postgres"
//	url = "postgres://dreamscape@localhost/dreamscape"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
)

const appName = "dreamscape"

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete application configuration.
type Config struct {
	Env      string         `toml:"env"`
	Server   ServerConfig   `toml:"server"`
	Solana   SolanaConfig   `toml:"solana"`
	Gallery  GalleryConfig  `toml:"gallery"`
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port    int    `toml:"port"`
	BaseURL string `toml:"base_url"` // prefix of public artifact URLs
}

// Addr returns the listen address for Port.
func (s ServerConfig) Addr() string { return ":" + strconv.Itoa(s.Port) }

// SolanaConfig controls the ledger RPC client.
type SolanaConfig struct {
	RPCURL      string   `toml:"rpc_url"`
	Commitment  string   `toml:"commitment"`
	BatchSize   int      `toml:"batch_size"`   // concurrent getBlock calls
	WalletLimit int      `toml:"wallet_limit"` // signatures per wallet read
	Timeout     Duration `toml:"timeout"`
}

// GalleryConfig controls artifact storage.
type GalleryConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig selects the gallery store.
type DatabaseConfig struct {
	Driver string `toml:"driver"` // sqlite | postgres | mongo
	URL    string `toml:"url"`    // file path for sqlite, DSN otherwise
}

// CacheConfig selects the render cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"` // file | redis | none
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
	Prefix   string   `toml:"prefix"` // key prefix, for deployments sharing one Redis
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration read from strings like "20s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:    3300,
			BaseURL: "http://localhost:3300",
		},
		Solana: SolanaConfig{
			RPCURL:      "https://api.mainnet-beta.solana.com",
			Commitment:  "confirmed",
			BatchSize:   10,
			WalletLimit: 50,
			Timeout:     Duration{30 * time.Second},
		},
		Gallery: GalleryConfig{
			Path: "./gallery",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			URL:    "dreamscape.db",
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (or the default file when path is empty), applies the
// process environment and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read config %s", path)
			}
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.inferDriver()
	return cfg, cfg.Validate()
}

// Parse decodes TOML text on top of the defaults without consulting the
// environment.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "parse config")
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Database.URL, "DATABASE_URL")
	set(&c.Solana.RPCURL, "SOLANA_RPC_URL")
	set(&c.Gallery.Path, "GALLERY_PATH")
	set(&c.Server.BaseURL, "BASE_URL")
	set(&c.Env, "DREAMSCAPE_ENV")
	set(&c.Cache.Prefix, "CACHE_PREFIX")

	if v := getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = CacheRedis
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return derrors.New(derrors.ErrCodeInvalidInput, "PORT must be a number, got %q", v)
		}
		c.Server.Port = port
	}
	return nil
}

// inferDriver switches to the postgres or mongo store when the database URL
// names one and the driver was left at its default.
func (c *Config) inferDriver() {
	if c.Database.Driver != DriverSQLite {
		return
	}
	switch {
	case hasScheme(c.Database.URL, "postgres://", "postgresql://"):
		c.Database.Driver = DriverPostgres
	case hasScheme(c.Database.URL, "mongodb://", "mongodb+srv://"):
		c.Database.Driver = DriverMongo
	}
}

func hasScheme(url string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(url, s) {
			return true
		}
	}
	return false
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return derrors.New(derrors.ErrCodeInvalidInput, "server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if err := derrors.ValidateURL(c.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if err := derrors.ValidateURL(c.Solana.RPCURL); err != nil {
		return fmt.Errorf("solana.rpc_url: %w", err)
	}
	if c.Solana.BatchSize <= 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "solana.batch_size must be > 0")
	}
	if c.Solana.WalletLimit <= 0 || c.Solana.WalletLimit > 1000 {
		return derrors.New(derrors.ErrCodeInvalidInput, "solana.wallet_limit must be in 1..1000")
	}
	if c.Gallery.Path == "" {
		return derrors.New(derrors.ErrCodeInvalidInput, "gallery.path is required")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unsupported database.driver %q (use sqlite, postgres or mongo)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return derrors.New(derrors.ErrCodeInvalidInput, "database.url is required")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return derrors.New(derrors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unsupported cache.backend %q (use file, redis or none)", c.Cache.Backend)
	}
	return nil
}

// Production reports whether the environment is "production".
func (c *Config) Production() bool { return c.Env == "production" }

// DefaultPath returns $XDG_CONFIG_HOME/dreamscape/config.toml, falling back
// to ~/.config. It returns "" when no home directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// CacheDir returns the render cache directory: Cache.Dir when set, else
// $XDG_CACHE_HOME/dreamscape or ~/.cache/dreamscape.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
