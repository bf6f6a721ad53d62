package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCIKs is the set of companies imported when IMPORT_CIKS is not set.
var DefaultCIKs = []int64{
	320193,  // Apple
	789019,  // Microsoft
	1018724, // Amazon
	1652044, // Alphabet
	1318605, // Tesla
	1045810, // NVIDIA
	2488,    // AMD
	50863,   // Intel
	796343,  // Adobe
	1341439, // Oracle
}

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Disclosure registry
	SECBaseURL    string
	SECUserAgent  string
	SECTimeout    time.Duration
	SECMaxRetries int

	// Companies imported at startup
	ImportCIKs []int64

	// AMQP (optional, events are skipped when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets report (worker)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fora.db"),

		SECBaseURL:    getEnv("SEC_BASE_URL", "https://data.sec.gov"),
		SECUserAgent:  getEnv("SEC_USER_AGENT", ""),
		SECTimeout:    getEnvDuration("SEC_TIMEOUT", 30*time.Second),
		SECMaxRetries: getEnvInt("SEC_MAX_RETRIES", 3),

		ImportCIKs: getEnvCIKs("IMPORT_CIKS", DefaultCIKs),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fora"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "company_imported"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Funding"),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.SECBaseURL == "" {
		errors = append(errors, "SEC base URL cannot be empty")
	} else if parsed, err := url.Parse(c.SECBaseURL); err != nil || parsed.Scheme == "" {
		errors = append(errors, fmt.Sprintf("invalid SEC base URL '%s'", c.SECBaseURL))
	}

	if c.SECTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid SEC timeout %v: must be at least 1 second", c.SECTimeout))
	}
	if c.SECMaxRetries < 0 || c.SECMaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid SEC max retries %d: must be between 0 and 10", c.SECMaxRetries))
	}

	if len(c.ImportCIKs) == 0 {
		errors = append(errors, "import CIK list cannot be empty")
	}
	for _, cik := range c.ImportCIKs {
		if cik <= 0 {
			errors = append(errors, fmt.Sprintf("invalid CIK %d: must be positive", cik))
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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

// getEnvCIKs parses a comma-separated CIK list. Unparseable entries discard
// the whole value in favor of the default.
func getEnvCIKs(key string, defaultValue []int64) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		cik, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return defaultValue
		}
		out = append(out, cik)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
