// Package config provides centralized configuration management for the migration.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Export  ExportConfig
	Store   StoreConfig
	Logging LoggingConfig
}

// ExportConfig holds settings for the legacy export file.
type ExportConfig struct {
	// Path is the export file to migrate (default: pokemon_cards_export.json)
	Path string `env:"EXPORT_FILE" default:"pokemon_cards_export.json"`

	// MaxFileSize is the maximum accepted export size in bytes (default: 100MB)
	MaxFileSize int64 `env:"EXPORT_MAX_FILE_SIZE" default:"104857600"`
}

// StoreConfig holds target store settings.
type StoreConfig struct {
	// Driver selects the target store: mongo, postgres, sqlite, memory (default: mongo)
	Driver string `env:"STORE_DRIVER" default:"mongo"`

	// URL is the connection string (a file path for sqlite)
	// Supports both STORE_URL and MONGODB_URI env vars for compatibility
	URL string `env:"STORE_URL" envAlt:"MONGODB_URI" default:"mongodb://localhost:27017"`

	// Database is the Mongo database holding the collection (default: pokemon_manager)
	Database string `env:"STORE_DATABASE" default:"pokemon_manager"`

	// Collection is the target collection or table (default: pokemon_cards)
	Collection string `env:"TARGET_COLLECTION" default:"pokemon_cards"`

	// ConnectTimeout bounds connecting to the store (default: 10s)
	ConnectTimeout time.Duration `env:"STORE_CONNECT_TIMEOUT" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Drivers lists the store drivers the configuration accepts.
var Drivers = []string{"mongo", "postgres", "sqlite", "memory"}

// Target returns the destination name used in progress messages.
func (c *StoreConfig) Target() string {
	if c.Driver == "mongo" && c.Database != "" {
		return c.Database + "." + c.Collection
	}
	return c.Collection
}
