package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Notify    NotifyConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// AuthConfig carries the operator credentials and token signing material.
type AuthConfig struct {
	Username  string
	Password  string
	JWTSecret string
	TokenTTL  time.Duration
}

// MongoDBConfig holds settings for MongoDB. An empty URI switches the
// service to the in-memory repository, intended for local development only.
type MongoDBConfig struct {
	URI        string
	DBName     string
	Collection string
}

// SheetsConfig contains configuration required to export workbooks to
// Google Sheets. Leaving both fields empty disables export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// NotifyConfig points at an optional webhook receiving overdue-stock alerts.
type NotifyConfig struct {
	WebhookURL string
}

// ReportingConfig holds scheduler-related settings. Timezone fixes the
// reference calendar for every date bucket in the system.
type ReportingConfig struct {
	ExportCronSchedule  string
	OverdueCronSchedule string
	Timezone            string
	OverdueDays         int
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	tokenTTL, err := time.ParseDuration(getenvWithDefault("AUTH_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Auth: AuthConfig{
			Username:  os.Getenv("AUTH_USERNAME"),
			Password:  os.Getenv("AUTH_PASSWORD"),
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			TokenTTL:  tokenTTL,
		},
		MongoDB: MongoDBConfig{
			URI:        os.Getenv("MONGODB_URI"),
			DBName:     getenvWithDefault("MONGODB_DB_NAME", "stocktrack"),
			Collection: getenvWithDefault("MONGODB_COLLECTION", "inventory"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		},
		Reporting: ReportingConfig{
			ExportCronSchedule:  getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 21 * * *"),
			OverdueCronSchedule: getenvWithDefault("OVERDUE_CRON_SCHEDULE", "0 9 * * *"),
			Timezone:            getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
			OverdueDays:         90,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Auth.Username == "":
		return errors.New("AUTH_USERNAME must be provided")
	case c.Auth.Password == "":
		return errors.New("AUTH_PASSWORD must be provided")
	case c.Auth.JWTSecret == "":
		return errors.New("AUTH_JWT_SECRET must be provided")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}

	// Sheets export and webhook alerts are optional features, but a half
	// configured Sheets block is almost certainly a mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPORT_ID must be set together")
	}

	if c.Reporting.ExportCronSchedule == "" {
		return errors.New("EXPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.OverdueCronSchedule == "" {
		return errors.New("OVERDUE_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if c.Reporting.OverdueDays <= 0 {
		c.Reporting.OverdueDays = 90
	}

	return nil
}

// Location resolves the configured reporting timezone, defaulting to UTC
// when the zone database lookup fails.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
