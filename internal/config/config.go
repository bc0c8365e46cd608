package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks the environment variables that override file values.
// A double underscore separates nesting levels: TRIVIA_POSTGRES__URL -> postgres.url.
const EnvPrefix = "TRIVIA_"

type Config struct {
	Env        string           `yaml:"env" koanf:"env" validate:"required"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Postgres   PostgresConfig   `yaml:"postgres" koanf:"postgres"`
	Redis      RedisConfig      `yaml:"redis" koanf:"redis"`
	Categories CategoriesConfig `yaml:"categories" koanf:"categories"`
	Logging    LoggingConfig    `yaml:"logging" koanf:"logging"`
}

type ServerConfig struct {
	Port               string   `yaml:"port" koanf:"port" validate:"omitempty,numeric"`
	ReadTimeout        string   `yaml:"read_timeout" koanf:"read_timeout"`
	WriteTimeout       string   `yaml:"write_timeout" koanf:"write_timeout"`
	IdleTimeout        string   `yaml:"idle_timeout" koanf:"idle_timeout"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// PostgresConfig selects the Postgres store; an empty URL runs the in-memory demo store.
type PostgresConfig struct {
	URL string `yaml:"url" koanf:"url"`
}

// RedisConfig enables the category cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" koanf:"addr"`
	Password string `yaml:"password" koanf:"password"`
	DB       int    `yaml:"db" koanf:"db" validate:"gte=0"`
}

type CategoriesConfig struct {
	CacheTTL string `yaml:"cache_ttl" koanf:"cache_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level" validate:"required,oneof=trace debug info warn error"`
	Format string `yaml:"format" koanf:"format" validate:"required,oneof=json console"`
}

// Default returns the values used when neither the file nor the environment sets a key.
func Default() Config {
	return Config{
		Env: "development",
		Server: ServerConfig{
			ReadTimeout:        "15s",
			WriteTimeout:       "15s",
			IdleTimeout:        "60s",
			CORSAllowedOrigins: []string{"*"},
		},
		Categories: CategoriesConfig{CacheTTL: "10m"},
		Logging:    LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads YAML config from path, applies TRIVIA_* environment overrides and validates the result.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	k := koanf.New(".")
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return cfg, fmt.Errorf("load env config: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decode env config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
