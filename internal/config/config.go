package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Valuation ValuationConfig
	Webhook   WebhookConfig
	Inventory InventoryConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration for the Google Sheets export. Both
// fields empty disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ValuationConfig holds the nightly valuation snapshot schedule.
type ValuationConfig struct {
	CronSchedule string
	Timezone     string
}

// WebhookConfig holds the optional cost-change notification endpoint.
type WebhookConfig struct {
	URL string
}

// InventoryConfig holds ledger policies.
type InventoryConfig struct {
	// ClampNegativeOnHand keeps qtyOnHand at zero when a reversal would
	// drive it negative. Off by default, matching the historical behavior.
	ClampNegativeOnHand bool
	// WatchRawGoods enables the change-stream watcher for deployments
	// where other writers share the database.
	WatchRawGoods bool
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

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "backoffice"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Valuation: ValuationConfig{
			CronSchedule: getenvWithDefault("VALUATION_CRON_SCHEDULE", "0 22 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Europe/Istanbul"),
		},
		Webhook: WebhookConfig{
			URL: os.Getenv("COST_WEBHOOK_URL"),
		},
		Inventory: InventoryConfig{
			ClampNegativeOnHand: getenvBool("CLAMP_NEGATIVE_ON_HAND", false),
			WatchRawGoods:       getenvBool("WATCH_RAW_GOODS", false),
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
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	// Sheets export is optional, but a half-configured pair is a mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	if c.Valuation.CronSchedule == "" {
		return errors.New("VALUATION_CRON_SCHEDULE must be provided")
	}
	if c.Valuation.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// SheetsEnabled reports whether the spreadsheet export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
