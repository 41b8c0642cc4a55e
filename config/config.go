package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. Every field can be overridden through
// the environment with a TODO_ prefix, e.g. TODO_LISTEN_ADDR, TODO_DB_DRIVER,
// TODO_DB_DSN, TODO_JWT_SECRET, TODO_JWT_EXPIRATION_MINUTES.
type Config struct {
	ListenAddr           string `mapstructure:"listen_addr"`
	DBDriver             string `mapstructure:"db_driver"`
	DBDSN                string `mapstructure:"db_dsn"`
	JWTSecret            string `mapstructure:"jwt_secret"`
	JWTExpirationMinutes int    `mapstructure:"jwt_expiration_minutes"`
}

// TokenLifetime returns the configured token expiry as a duration.
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

// Load reads configuration from the environment, falling back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TODO")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "todo.db")
	v.SetDefault("jwt_secret", "changeit_changeit_changeit_changeit")
	v.SetDefault("jwt_expiration_minutes", 60)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported db driver %q (want sqlite or postgres)", cfg.DBDriver)
	}
	if cfg.JWTExpirationMinutes <= 0 {
		return nil, fmt.Errorf("jwt expiration must be positive, got %d", cfg.JWTExpirationMinutes)
	}

	return &cfg, nil
}
