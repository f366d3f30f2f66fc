package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FISCALFOX_SERVER_PORT.
const EnvPrefix = "FISCALFOX"

// Config holds application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port        int     `mapstructure:"port"`
	RateLimit   float64 `mapstructure:"rate_limit"` // requests per second
	Burst       int     `mapstructure:"burst"`
	BodyLimitMB int     `mapstructure:"body_limit_mb"`
	StaticDir   string  `mapstructure:"static_dir"` // optional web UI build to serve at /
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// DictionaryConfig locates the category dictionary and glossary. Each is a
// file path or an http(s) URL; empty selects the built-in document.
type DictionaryConfig struct {
	Categories string `mapstructure:"categories"`
	Glossary   string `mapstructure:"glossary"`
}

// FetchConfig holds settings for downloading pages and dictionaries.
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// AllowedHosts lists the hosts the API may fetch a "url" from. Empty
	// disables URL input on the API; "*" admits any public host.
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// BodyLimit is the request body limit in bytes.
func (s ServerConfig) BodyLimit() int {
	return s.BodyLimitMB * 1024 * 1024
}

// Load reads configuration from a .env file, an optional TOML file and the
// environment. Env var overrides use prefix FISCALFOX_; FISCALFOX_CONFIG
// names the TOML file, which otherwise is config.toml in the working
// directory when present.
func Load() (Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()

	v := viper.New()

	// default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.burst", 30)
	v.SetDefault("server.body_limit_mb", 32)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("dictionary.categories", "")
	v.SetDefault("dictionary.glossary", "")
	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.allowed_hosts", []string{})

	v.SetConfigType("toml")

	cfgPath := os.Getenv(EnvPrefix + "_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicitly named file must exist and parse
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	case c.Server.RateLimit <= 0:
		return fmt.Errorf("server.rate_limit must be positive, got %v", c.Server.RateLimit)
	case c.Server.Burst <= 0:
		return fmt.Errorf("server.burst must be positive, got %d", c.Server.Burst)
	case c.Server.BodyLimitMB <= 0:
		return fmt.Errorf("server.body_limit_mb must be positive, got %d", c.Server.BodyLimitMB)
	case c.Fetch.Timeout <= 0:
		return fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	return nil
}
