package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"esgreporter/internal/core"
	ports "esgreporter/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configures the spreadsheet mirror. Tabs maps each kind to its
// tab name; missing kinds fall back to DefaultTabs.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	Tabs            map[core.MetricKind]string
}

// DefaultTabs names one tab per metric kind.
var DefaultTabs = map[core.MetricKind]string{
	core.Emissions: "Emissions",
	core.Water:     "Water",
	core.Waste:     "Waste",
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	tabs          map[core.MetricKind]string
}

var _ ports.EntryMirror = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tabs:          resolveTabs(opts.Tabs),
	}, nil
}

func resolveTabs(override map[core.MetricKind]string) map[core.MetricKind]string {
	tabs := make(map[core.MetricKind]string, len(DefaultTabs))
	for k, v := range DefaultTabs {
		tabs[k] = v
	}
	for k, v := range override {
		if v = strings.TrimSpace(v); v != "" && k.IsValid() {
			tabs[k] = v
		}
	}
	return tabs
}

// newSheetsService uses inline JSON first, then the credentials file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	credentialsFile = strings.TrimSpace(credentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	switch {
	case credentialsJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", credentialsFile)
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

func (c *Client) tab(kind core.MetricKind) (string, error) {
	name, ok := c.tabs[kind]
	if !ok {
		return "", fmt.Errorf("no tab configured for kind %q", kind)
	}
	return name, nil
}

// AppendEntry implements ports.EntryWriter
func (c *Client) AppendEntry(ctx context.Context, e core.Entry) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	tab, err := c.tab(e.Kind)
	if err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:F", tab)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(e)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", tab, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// HasEntry implements ports.EntryLookup
func (c *Client) HasEntry(ctx context.Context, kind core.MetricKind, entryID string) (bool, error) {
	if c.svc == nil {
		return false, errors.New("sheets service not initialized")
	}
	tab, err := c.tab(kind)
	if err != nil {
		return false, err
	}

	rng := fmt.Sprintf("%s!F:F", tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rng, err)
	}
	return containsEntryID(resp.Values, entryID), nil
}
