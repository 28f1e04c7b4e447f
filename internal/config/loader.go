package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// collectionNameRegex restricts collection names to plain identifiers, since
// the SQL drivers interpolate the name as a table name.
var collectionNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Export validation
	if strings.TrimSpace(c.Export.Path) == "" {
		errs = append(errs, "EXPORT_FILE is required")
	}
	if c.Export.MaxFileSize <= 0 {
		errs = append(errs, "EXPORT_MAX_FILE_SIZE must be positive")
	}

	// Store validation
	if !slices.Contains(Drivers, c.Store.Driver) {
		errs = append(errs, fmt.Sprintf("STORE_DRIVER (%q) must be one of: %s", c.Store.Driver, strings.Join(Drivers, ", ")))
	}
	if c.Store.Driver != "memory" && c.Store.URL == "" {
		errs = append(errs, "STORE_URL is required")
	}
	if c.Store.URL != "" {
		isMongoURL := strings.HasPrefix(c.Store.URL, "mongodb://") || strings.HasPrefix(c.Store.URL, "mongodb+srv://")
		switch c.Store.Driver {
		case "mongo":
			if !isMongoURL {
				errs = append(errs, "STORE_URL must be a mongodb:// or mongodb+srv:// URI for the mongo driver")
			}
		case "postgres", "sqlite":
			if isMongoURL {
				errs = append(errs, fmt.Sprintf("STORE_URL is a MongoDB URI; set a %s URL or path for the %s driver", c.Store.Driver, c.Store.Driver))
			}
		}
	}
	if c.Store.Driver == "mongo" && c.Store.Database == "" {
		errs = append(errs, "STORE_DATABASE is required for the mongo driver")
	}
	if !collectionNameRegex.MatchString(c.Store.Collection) {
		errs = append(errs, fmt.Sprintf("TARGET_COLLECTION (%q) must be a plain identifier", c.Store.Collection))
	}
	if c.Store.ConnectTimeout <= 0 {
		errs = append(errs, "STORE_CONNECT_TIMEOUT must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The store URL is masked since it may contain credentials.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Export: {Path: %q, MaxFileSize: %d}, ", c.Export.Path, c.Export.MaxFileSize))
	b.WriteString(fmt.Sprintf("Store: {Driver: %q, URL: [MASKED], Database: %q, Collection: %q}, ",
		c.Store.Driver, c.Store.Database, c.Store.Collection))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
