package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"ledgerdash/internal/aggregate"
	"ledgerdash/internal/core"
	"ledgerdash/internal/log"
)

type Config struct {
	// HTTP Server
	Port               string
	Origins            string
	LoginRatePerMinute int

	// Row sources
	SourceBackend   string
	SheetCSVURL     string
	BankSheetCSVURL string
	SourceTimeout   time.Duration
	SchemaFile      string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleLedgerRange   string
	GoogleBankRange     string

	// Memory backend seed files
	DataDir string

	// Pipeline policy
	RateMode   string
	NumberMode string
	Timezone   string

	// Auth
	JWTSecret    string
	JWTExpiry    time.Duration
	AuthRequired bool
	UserStore    string
	SQLiteDBPath string

	// Login audit
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
	AMQPQueue      string

	// Logging
	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

const DefaultJWTSecret = "please_change_this_secret"

var (
	validBackends   = []string{"csv", "sheets", "memory"}
	validUserStores = []string{"memory", "sqlite"}
)

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		Origins:            getEnv("ORIGIN", ""),
		LoginRatePerMinute: getEnvInt("LOGIN_RATE_PER_MINUTE", 10),

		SourceBackend:   strings.ToLower(getEnv("SOURCE_BACKEND", "csv")),
		SheetCSVURL:     getEnv("SHEET_CSV_URL", ""),
		BankSheetCSVURL: getEnv("BANK_SHEET_CSV_URL", ""),
		SourceTimeout:   getEnvDuration("SOURCE_TIMEOUT", 8*time.Second),
		SchemaFile:      getEnv("SCHEMA_FILE", ""),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleLedgerRange:   getEnv("GOOGLE_LEDGER_RANGE", ""),
		GoogleBankRange:     getEnv("GOOGLE_BANK_RANGE", ""),

		DataDir: getEnv("DATA_DIR", "data"),

		RateMode:   getEnv("RATE_MODE", "weighted"),
		NumberMode: getEnv("NUMBER_MODE", "accounting"),
		Timezone:   getEnv("TIMEZONE", "Local"),

		JWTSecret:    getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiry:    getEnvDuration("JWT_EXPIRY", 6*time.Hour),
		AuthRequired: getEnvBool("AUTH_REQUIRED", false),
		UserStore:    strings.ToLower(getEnv("USER_STORE", "memory")),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledgerdash.db"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "ledgerdash"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "auth.login"),
		AMQPQueue:      getEnv("AMQP_AUDIT_QUEUE", "ledgerdash.login_audit"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.SourceBackend) {
		errors = append(errors, fmt.Sprintf("invalid source backend '%s': must be one of %v", c.SourceBackend, validBackends))
	}
	switch c.SourceBackend {
	case "csv":
		if c.SheetCSVURL == "" {
			errors = append(errors, "SHEET_CSV_URL is required when using csv backend")
		}
		for name, raw := range map[string]string{"SHEET_CSV_URL": c.SheetCSVURL, "BANK_SHEET_CSV_URL": c.BankSheetCSVURL} {
			if raw == "" {
				continue
			}
			if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				errors = append(errors, fmt.Sprintf("invalid %s '%s': must be an http or https URL", name, raw))
			}
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleLedgerRange == "" {
			errors = append(errors, "Google ledger range is required when using sheets backend")
		}
	}

	if c.SourceTimeout < 100*time.Millisecond || c.SourceTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid source timeout %v: must be between 100ms and 2m", c.SourceTimeout))
	}

	if c.SchemaFile != "" {
		if _, err := os.Stat(c.SchemaFile); err != nil {
			errors = append(errors, fmt.Sprintf("schema file is not readable: %s", c.SchemaFile))
		}
	}

	if _, err := aggregate.ParseRateMode(c.RateMode); err != nil {
		errors = append(errors, fmt.Sprintf("invalid rate mode '%s': must be weighted or simple", c.RateMode))
	}
	if _, err := core.ParseNumberMode(c.NumberMode); err != nil {
		errors = append(errors, fmt.Sprintf("invalid number mode '%s': must be accounting or strip", c.NumberMode))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		errors = append(errors, "JWT secret cannot be empty")
	}
	if c.JWTExpiry < time.Minute || c.JWTExpiry > 30*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid JWT expiry %v: must be between 1m and 720h", c.JWTExpiry))
	}

	if !slices.Contains(validUserStores, c.UserStore) {
		errors = append(errors, fmt.Sprintf("invalid user store '%s': must be one of %v", c.UserStore, validUserStores))
	}
	if c.UserStore == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite user store")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
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
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP audit queue cannot be empty when AMQP URL is provided")
		}
	}

	if c.LoginRatePerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid login rate %d: must be at least 1 per minute", c.LoginRatePerMinute))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the configured time zone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Policy returns the numeric and rate policy. Call after Validate.
func (c *Config) Policy() aggregate.Policy {
	rate, _ := aggregate.ParseRateMode(c.RateMode)
	number, _ := core.ParseNumberMode(c.NumberMode)
	return aggregate.Policy{Number: number, Rate: rate}
}

// LogOutput describes the log handler to build.
func (c *Config) LogOutput() log.OutputConfig {
	return log.OutputConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}

// UsesDefaultSecret reports whether JWT_SECRET was left at its default.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
