package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"traguardi/internal/core"
	ports "traguardi/internal/report"

	"golang.org/x/oauth2"
	ggoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	statusSheet    string
	breakdownSheet string
}

// Ensure interface conformance
var (
	_ ports.StatusWriter    = (*Client)(nil)
	_ ports.BreakdownWriter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS for auth.
// Optional sheet names: GOOGLE_STATUS_SHEET_NAME (default "Status"),
// GOOGLE_BREAKDOWN_SHEET_NAME (default "Breakdown").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	statusBase := strings.TrimSpace(os.Getenv("GOOGLE_STATUS_SHEET_NAME"))
	if statusBase == "" {
		statusBase = "Status"
	}
	breakdownBase := strings.TrimSpace(os.Getenv("GOOGLE_BREAKDOWN_SHEET_NAME"))
	if breakdownBase == "" {
		breakdownBase = "Breakdown"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	// Sheet tabs are per-year, like "2026 Status".
	currentYear := time.Now().Year()

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		statusSheet:    yearPrefixedName(statusBase, currentYear),
		breakdownSheet: yearPrefixedName(breakdownBase, currentYear),
	}, nil
}

// newSheetsService initializes a Sheets Service. Service Account
// credentials are tried first (GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS), then
// an OAuth client plus stored token (GOOGLE_OAUTH_CLIENT_JSON or
// GOOGLE_OAUTH_CLIENT_FILE with GOOGLE_OAUTH_TOKEN_JSON or
// GOOGLE_OAUTH_TOKEN_FILE, see cmd/oauth-init).
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// newOAuthSheetsService builds the service from an OAuth client config and
// a previously stored token. cmd/oauth-init produces the token file.
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readEnvOrFile("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON == nil {
		return nil, errors.New("missing Google credentials (set service account variables, or GOOGLE_OAUTH_CLIENT_FILE and GOOGLE_OAUTH_TOKEN_FILE)")
	}

	tokenJSON, err := readEnvOrFile("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing OAuth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE, see cmd/oauth-init)")
	}

	cfg, err := ggoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithTokenSource(cfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created with OAuth token")
	return service, nil
}

// readEnvOrFile returns the inline variable's bytes, the named file's
// contents, or nil when neither variable is set.
func readEnvOrFile(jsonVar, fileVar string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonVar)); v != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(os.Getenv(fileVar))
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileVar, err)
	}
	return b, nil
}

// AppendStatusChange writes one status transition as a row on the status sheet.
func (c *Client) AppendStatusChange(ctx context.Context, change ports.StatusChange) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	nextRow, err := c.nextRow(ctx, c.statusSheet)
	if err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A%d:F%d", c.statusSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		change.At.Format(time.RFC3339),
		change.GoalID,
		change.GoalName,
		string(change.From),
		string(change.To),
		change.Progress,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}

	return rng, nil
}

// AppendBreakdown writes the snapshot's category rows on the breakdown sheet,
// one row per category plus a grand total row.
func (c *Client) AppendBreakdown(ctx context.Context, snapshot ports.BreakdownSnapshot) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	nextRow, err := c.nextRow(ctx, c.breakdownSheet)
	if err != nil {
		return "", err
	}

	at := snapshot.At.Format(time.RFC3339)
	values := make([][]any, 0, len(snapshot.Totals)+1)
	for _, ct := range snapshot.Totals {
		values = append(values, []any{
			at,
			string(snapshot.Kind),
			ct.Category,
			ct.Total.Euros(),
			ct.Count,
			core.PercentageOf(ct, snapshot.GrandTotal),
		})
	}
	values = append(values, []any{
		at,
		string(snapshot.Kind),
		"TOTALE",
		snapshot.GrandTotal.Euros(),
		"",
		"",
	})

	lastRow := nextRow + len(values) - 1
	rng := fmt.Sprintf("%s!A%d:F%d", c.breakdownSheet, nextRow, lastRow)
	vr := &gsheet.ValueRange{Values: values}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}

	return rng, nil
}

// nextRow finds the next empty row by reading the sheet's first column.
func (c *Client) nextRow(ctx context.Context, sheetName string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get sheet dimensions for %s: %w", sheetName, err)
	}
	return len(resp.Values) + 1, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
