package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ledgerdash/internal/core"
	"ledgerdash/internal/log"
	ports "ledgerdash/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultTimeout bounds a single values read when none is configured.
const DefaultTimeout = 8 * time.Second

// Client reads a sheet range through the Sheets values API. The first row
// of the range is the header.
type Client struct {
	svc           *gsheet.Service
	name          string
	spreadsheetID string
	readRange     string
	timeout       time.Duration
	logger        *log.Logger
	clientOpts    []goption.ClientOption
}

// Ensure interface conformance
var _ ports.RowSource = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClientOptions builds the service from opts instead of the service
// account credentials of the environment.
func WithClientOptions(opts ...goption.ClientOption) Option {
	return func(c *Client) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// New creates a client for spreadsheetID!readRange. Unless WithClientOptions
// is given it authenticates with service account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, name, spreadsheetID, readRange string, opts ...Option) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	readRange = strings.TrimSpace(readRange)
	if readRange == "" {
		return nil, errors.New("missing sheet range")
	}
	c := &Client{
		name:          name,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		timeout:       DefaultTimeout,
		logger:        log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentSheets)

	clientOpts := c.clientOpts
	if len(clientOpts) == 0 {
		credentialsJSON, err := serviceAccountCredentials()
		if err != nil {
			return nil, fmt.Errorf("sheets service: %w", err)
		}
		c.logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			log.FieldSource, name,
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsReadonlyScope)
		clientOpts = []goption.ClientOption{
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// Fetch reads the range with formatted values, matching what a CSV export
// of the same sheet would contain. The read is bounded by the client's
// timeout.
func (c *Client) Fetch(ctx context.Context) ([]core.RawRecord, error) {
	if c.svc == nil {
		return nil, &ports.Error{Source: c.name, Op: "configure", Err: errors.New("sheets service not initialized")}
	}
	timeout := c.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &ports.Error{Source: c.name, Op: "read " + c.readRange, Err: err}
	}
	return recordsFromValues(resp.Values), nil
}

// serviceAccountCredentials reads the service account key from the
// environment.
func serviceAccountCredentials() ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}
