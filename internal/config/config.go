package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds the application settings.
type Config struct {
	AppPort         string
	StoreDriver     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DatabaseDSN     string
	RabbitMQURL     string
}

// Load reads configuration from the environment and, if present, a
// config file named "config" in the working directory. Environment
// variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_DATABASE", "store")
	v.SetDefault("MONGODB_COLLECTION", "products")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("RABBITMQ_URL", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv() // Load environment variables

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		StoreDriver:     v.GetString("STORE_DRIVER"),
		MongoURI:        v.GetString("MONGODB_URI"),
		MongoDatabase:   v.GetString("MONGODB_DATABASE"),
		MongoCollection: v.GetString("MONGODB_COLLECTION"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store has a connection string.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORE_DRIVER is mongo")
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when STORE_DRIVER is %s", c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}
