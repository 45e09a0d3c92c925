// Package config loads service settings from defaults, an optional config
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"catalog/internal/repositories"
)

// Config is the fully resolved service configuration.
type Config struct {
	AppPort         string
	DB              repositories.DBConfig
	DefaultPageSize int
	MaxPageSize     int
	RabbitMQURL     string
	LogLevel        string
	LogDevelopment  bool
	SeedDemoData    bool
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", repositories.DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:catalog.db?cache=shared")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("MAX_PAGE_SIZE", 100)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("SEED_DEMO_DATA", false)
}

// Load reads configuration into a fresh viper instance. When CONFIG_FILE is
// set that file must exist; otherwise ./config.yaml is read if present.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	return FromViper(v)
}

// FromViper resolves and validates a Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		DB: repositories.DBConfig{
			Driver:       v.GetString("DB_DRIVER"),
			DSN:          v.GetString("DATABASE_DSN"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
		},
		DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("MAX_PAGE_SIZE"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogDevelopment:  v.GetBool("LOG_DEVELOPMENT"),
		SeedDemoData:    v.GetBool("SEED_DEMO_DATA"),
	}

	switch cfg.DB.Driver {
	case repositories.DriverSQLite, repositories.DriverPostgres, repositories.DriverPgx, repositories.DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.DefaultPageSize < 1 {
		return nil, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		return nil, fmt.Errorf("MAX_PAGE_SIZE (%d) must not be below DEFAULT_PAGE_SIZE (%d)", cfg.MaxPageSize, cfg.DefaultPageSize)
	}
	return cfg, nil
}
