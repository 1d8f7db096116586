// Package config loads application settings from an optional YAML file,
// BUDGET_* environment variables and built-in defaults, in that order of
// increasing precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BUDGET"

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
	Seed    SeedConfig    `mapstructure:"seed"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	SecureCookie    bool          `mapstructure:"secure_cookie"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DBConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SessionConfig struct {
	Duration      time.Duration `mapstructure:"duration" validate:"gt=0"`
	PurgeInterval time.Duration `mapstructure:"purge_interval" validate:"gt=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// SeedConfig controls the bootstrap identity created on an empty store.
type SeedConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Username string `mapstructure:"username" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password" validate:"required_if=Enabled true"`
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.secure_cookie", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("db.path", "budget.db")
	v.SetDefault("session.duration", 30*24*time.Hour)
	v.SetDefault("session.purge_interval", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.username", "test_user")
	v.SetDefault("seed.password", "password")
}

// Load reads configuration. An empty configPath searches ./configs/config.yml
// and tolerates its absence; an explicit configPath must exist.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for deployments that already set them.
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("db.path", EnvPrefix+"_DB_PATH", "DB_PATH"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
