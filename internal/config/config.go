package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. Values come from the environment, with an
// optional .env file in the configured directory.
type Config struct {
	Port string `mapstructure:"PORT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`

	RedisAddr string        `mapstructure:"REDIS_ADDR"`
	CacheTTL  time.Duration `mapstructure:"CACHE_TTL"`
}

// Load reads configuration from the environment and from .env in path when present.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "taskflow")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CACHE_TTL", "5m")

	if err := v.ReadInConfig(); err != nil {
		// The .env file is optional; only the environment is required.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DatabaseDSN returns DATABASE_URL when set, otherwise assembles a connection
// string from the individual DB_* settings.
func (c Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
