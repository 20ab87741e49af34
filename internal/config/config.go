package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Report backend selection
	ReportBackend string

	// Google Sheets
	GoogleSpreadsheetID          string
	GoogleStatusSheetName        string
	GoogleBreakdownSheetName     string
	GoogleServiceAccountJSON     string
	GoogleServiceAccountFile     string
	GoogleApplicationCredentials string
	GoogleOAuthClientFile        string
	GoogleOAuthTokenFile         string
	GoogleOAuthClientJSON        string
	GoogleOAuthTokenJSON         string

	// Worker
	ReviewBatchSize int
	ReviewInterval  time.Duration
	ExportInterval  time.Duration

	// Goal status thresholds
	OnTrackFactor float64
	AtRiskFactor  float64
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/traguardi.db"),

		// Messaging is opt-in. Without AMQP_URL the server skips the
		// publisher and the worker relies on periodic reviews.
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "traguardi"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "goal_reviews"),

		ReportBackend: getEnv("REPORT_BACKEND", "memory"),

		GoogleSpreadsheetID:          getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleStatusSheetName:        getEnv("GOOGLE_STATUS_SHEET_NAME", ""),
		GoogleBreakdownSheetName:     getEnv("GOOGLE_BREAKDOWN_SHEET_NAME", ""),
		GoogleServiceAccountJSON:     getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile:     getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleApplicationCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleOAuthClientFile:        getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:         getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON:        getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:         getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		ReviewBatchSize: getEnvInt("REVIEW_BATCH_SIZE", 10),
		ReviewInterval:  getEnvDuration("REVIEW_INTERVAL", 30*time.Second),
		ExportInterval:  getEnvDuration("EXPORT_INTERVAL", 5*time.Minute),

		OnTrackFactor: getEnvFloat("STATUS_ON_TRACK_FACTOR", 0.9),
		AtRiskFactor:  getEnvFloat("STATUS_AT_RISK_FACTOR", 0.5),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate report backend
	validBackends := []string{"memory", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.ReportBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid report backend '%s': must be one of %v", c.ReportBackend, validBackends))
	}

	// Validate SQLite configuration
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
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

	// Validate Google Sheets configuration if backend is sheets. Sheet tab
	// names are optional (the client falls back to "Status"/"Breakdown").
	if c.ReportBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}

		hasServiceAccount := c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "" || c.GoogleApplicationCredentials != ""
		hasOAuthClient := c.GoogleOAuthClientJSON != "" || c.GoogleOAuthClientFile != ""
		hasOAuthToken := c.GoogleOAuthTokenJSON != "" || c.GoogleOAuthTokenFile != ""

		if !hasServiceAccount && !hasOAuthClient && !hasOAuthToken {
			errors = append(errors, "Google credentials are required for sheets backend: set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or the GOOGLE_OAUTH_* client and token variables")
		}

		// The OAuth fallback needs both halves; a service account alone
		// is sufficient.
		if !hasServiceAccount {
			if hasOAuthClient && !hasOAuthToken {
				errors = append(errors, "either GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON must accompany the OAuth client (see cmd/oauth-init)")
			}
			if hasOAuthToken && !hasOAuthClient {
				errors = append(errors, "either GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON must accompany the OAuth token")
			}
		}

		credentialFiles := []struct {
			label string
			path  string
		}{
			{"Google service account file", c.GoogleServiceAccountFile},
			{"Google application credentials file", c.GoogleApplicationCredentials},
			{"Google OAuth client file", c.GoogleOAuthClientFile},
			{"Google OAuth token file", c.GoogleOAuthTokenFile},
		}
		for _, f := range credentialFiles {
			if f.path == "" {
				continue
			}
			if _, err := os.Stat(f.path); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("%s does not exist: %s", f.label, f.path))
			}
		}
	}

	// Validate worker configuration
	if c.ReviewBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid review batch size %d: must be at least 1", c.ReviewBatchSize))
	} else if c.ReviewBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid review batch size %d: must be at most 1000", c.ReviewBatchSize))
	}

	if c.ReviewInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid review interval %v: must be at least 1 second", c.ReviewInterval))
	} else if c.ReviewInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid review interval %v: must be at most 24 hours", c.ReviewInterval))
	}

	if c.ExportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	// Validate status thresholds
	if c.AtRiskFactor < 0 {
		errors = append(errors, fmt.Sprintf("invalid at-risk factor %v: must be non-negative", c.AtRiskFactor))
	}
	if c.OnTrackFactor < c.AtRiskFactor {
		errors = append(errors, fmt.Sprintf("invalid status factors: on-track factor %v must be at least the at-risk factor %v", c.OnTrackFactor, c.AtRiskFactor))
	}

	// Return combined errors
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
