// Package config loads fit-app settings from config.yaml, a .env file and
// FITAPP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juan-esteban-berger/fit-app/bodymetrics"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FITAPP_REDIS_ADDR.
const EnvPrefix = "FITAPP"

// Config aggregates all settings.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text|json

	// Timezone is the display zone used when a request does not name one.
	Timezone string `mapstructure:"timezone"`
	// DefaultDays is the span of the default query window.
	DefaultDays int `mapstructure:"default_days"`

	Source   SourceConfig   `mapstructure:"source"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Output   OutputConfig   `mapstructure:"output"`

	Rolling []bodymetrics.Spec `mapstructure:"rolling"`
}

// SourceConfig selects the activity document store.
type SourceConfig struct {
	Kind       string `mapstructure:"kind"` // postgres|sqlite|dir
	SQLitePath string `mapstructure:"sqlite_path"`
	Dir        string `mapstructure:"dir"`
}

// DatabaseConfig is the Postgres connection holding the fitness schema.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
	// BodyMetrics enables the fitness.weight and fitness.strength sources.
	BodyMetrics bool `mapstructure:"body_metrics"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug|release|test
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"` // parquet|csv
}

// Load reads configuration. An empty path searches ./config.yaml; a missing
// file is not an error, a malformed one is.
func Load(path string) (*Config, error) {
	// .env only fills variables that are not already set.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Rolling == nil {
		cfg.Rolling = bodymetrics.DefaultSpecs()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("default_days", 1)

	v.SetDefault("source.kind", "dir")
	v.SetDefault("source.dir", ".")
	v.SetDefault("source.sqlite_path", "activities.db")

	v.SetDefault("database.url", "")
	v.SetDefault("database.body_metrics", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("output.dir", "fitdash_out")
	v.SetDefault("output.format", "parquet")
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "dir", "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("source.kind=postgres requires database.url")
		}
	default:
		return fmt.Errorf("unsupported source.kind %q (expected postgres|sqlite|dir)", c.Source.Kind)
	}
	if c.Database.BodyMetrics && c.Database.URL == "" {
		return fmt.Errorf("database.body_metrics requires database.url")
	}
	if c.DefaultDays < 0 {
		return fmt.Errorf("default_days must not be negative")
	}
	return nil
}
