package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DestinationPostgres = "postgres"
	DestinationSheets   = "sheets"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (optional, sync runs inline when unset)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sync destination
	SyncDestination string
	SyncDBHost      string
	SyncDBPort      string
	SyncDBUser      string
	SyncDBPassword  string
	SyncDBName      string
	SyncDBSSLMode   string
	SyncDBDSN       string
	SyncMappingFile string
	SyncInterval    time.Duration

	// Google Sheets destination
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads the environment, after loading a .env file when present.
func Load() *Config {
	// .env is for local development; its absence is not an error
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_requests"),

		SyncDestination: strings.ToLower(getEnv("SYNC_DESTINATION", DestinationPostgres)),
		SyncDBHost:      getEnv("SYNC_DB_HOST", ""),
		SyncDBPort:      getEnv("SYNC_DB_PORT", "5432"),
		SyncDBUser:      getEnv("SYNC_DB_USER", ""),
		SyncDBPassword:  getEnv("SYNC_DB_PASSWORD", ""),
		SyncDBName:      getEnv("SYNC_DB_NAME", ""),
		SyncDBSSLMode:   getEnv("SYNC_DB_SSLMODE", ""),
		SyncDBDSN:       getEnv("SYNC_DB_DSN", ""),
		SyncMappingFile: getEnv("SYNC_MAPPING_FILE", ""),
		SyncInterval:    getEnvDuration("SYNC_INTERVAL", 0),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// SyncConfigured reports whether enough is set to reach a destination.
func (c *Config) SyncConfigured() bool {
	switch c.SyncDestination {
	case DestinationPostgres:
		return c.SyncDBDSN != "" || c.SyncDBHost != ""
	case DestinationSheets:
		return c.GoogleSpreadsheetID != ""
	}
	return false
}

// AMQPEnabled reports whether sync requests go through the queue.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if err := validatePort(c.Port); err != "" {
		errors = append(errors, err)
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.SyncDestination {
	case DestinationPostgres:
		errors = append(errors, c.validatePostgres()...)
	case DestinationSheets:
		errors = append(errors, c.validateSheets()...)
	default:
		errors = append(errors, fmt.Sprintf("invalid sync destination '%s': must be one of [%s %s]",
			c.SyncDestination, DestinationPostgres, DestinationSheets))
	}

	if c.SyncMappingFile != "" {
		if _, err := os.Stat(c.SyncMappingFile); err != nil {
			errors = append(errors, fmt.Sprintf("sync mapping file is not readable: %s", c.SyncMappingFile))
		}
	}

	if c.SyncInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must not be negative", c.SyncInterval))
	} else if c.SyncInterval > 0 && c.SyncInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 minute", c.SyncInterval))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// validatePostgres only checks what is set: an unconfigured destination is
// allowed and disables sync.
func (c *Config) validatePostgres() []string {
	var errors []string
	if c.SyncDBDSN != "" {
		if u, err := url.Parse(c.SyncDBDSN); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, "invalid SYNC_DB_DSN: must be a postgres:// URL")
		}
		return errors
	}
	if c.SyncDBHost == "" {
		return nil
	}
	if c.SyncDBUser == "" {
		errors = append(errors, "SYNC_DB_USER is required when SYNC_DB_HOST is set")
	}
	if c.SyncDBName == "" {
		errors = append(errors, "SYNC_DB_NAME is required when SYNC_DB_HOST is set")
	}
	if c.SyncDBPort != "" {
		if err := validatePort(c.SyncDBPort); err != "" {
			errors = append(errors, "sync database: "+err)
		}
	}
	return errors
}

func (c *Config) validateSheets() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets destination")
	}
	hasFile := c.GoogleServiceAccountFile != ""
	if !hasFile && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets destination")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

func validatePort(p string) string {
	port, err := strconv.Atoi(p)
	if err != nil {
		return fmt.Sprintf("invalid port '%s': must be a number", p)
	}
	if port < 1 || port > 65535 {
		return fmt.Sprintf("invalid port %d: must be between 1 and 65535", port)
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
