package google

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"traguardi/internal/core"
	"traguardi/internal/report"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	// Clear environment
	oldID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	defer os.Setenv("GOOGLE_SPREADSHEET_ID", oldID)
	os.Unsetenv("GOOGLE_SPREADSHEET_ID")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	vars := []string{
		"GOOGLE_SPREADSHEET_ID",
		"GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_OAUTH_CLIENT_JSON",
		"GOOGLE_OAUTH_CLIENT_FILE",
		"GOOGLE_OAUTH_TOKEN_JSON",
		"GOOGLE_OAUTH_TOKEN_FILE",
	}
	saved := map[string]string{}
	for _, v := range vars {
		saved[v] = os.Getenv(v)
		os.Unsetenv(v)
	}
	defer func() {
		for k, v := range saved {
			if v != "" {
				os.Setenv(k, v)
			}
		}
	}()

	os.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error with no credentials configured")
	}
	if !strings.Contains(err.Error(), "missing Google credentials") {
		t.Errorf("expected credentials error, got: %v", err)
	}
}

func TestAppendWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", statusSheet: "Status", breakdownSheet: "Breakdown"}

	_, err := c.AppendStatusChange(context.Background(), report.StatusChange{
		GoalID:   1,
		GoalName: "fondo",
		From:     core.StatusNotStarted,
		To:       core.StatusInProgress,
		At:       time.Now(),
	})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("AppendStatusChange without service: err = %v", err)
	}

	_, err = c.AppendBreakdown(context.Background(), report.BreakdownSnapshot{
		Kind: core.KindAsset,
		At:   time.Now(),
	})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("AppendBreakdown without service: err = %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Status", 2026, "2026 Status"},
		{"Breakdown", 2025, "2025 Breakdown"},
		{"", 2023, ""}, // Empty base returns empty
		{"Goal Report", 2022, "2022 Goal Report"},
		{"2025 Already Prefixed", 2024, "2025 Already Prefixed"}, // Already has year prefix
	}

	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q",
				tt.baseName, tt.year, got, tt.expected)
		}
	}
}
