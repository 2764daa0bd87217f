package backend

import (
	"context"
	"time"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything the HTTP layer and the report CLI read
// from: the two row sources, the user directory and the login auditor.
type BackendResult struct {
	Ledger  sheets.RowSource
	Bank    sheets.RowSource
	Users   auth.Store
	Auditor auth.Auditor
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Source type
	Type SourceType

	// CSV export specific
	LedgerCSVURL string
	BankCSVURL   string
	Timeout      time.Duration

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleLedgerRange   string
	GoogleBankRange     string

	// Memory backend specific
	DataDirectory string

	// User directory
	UserStore    string
	SQLiteDBPath string

	// Login audit, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
	AMQPAttempts   int
}

// SourceType represents where the ledger rows come from
type SourceType string

const (
	CSVSource    SourceType = "csv"
	SheetsSource SourceType = "sheets"
	MemorySource SourceType = "memory"
)

// Source names used in logs and metrics.
const (
	LedgerSourceName = "ledger"
	BankSourceName   = "bank"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case CSVSource, SheetsSource, MemorySource:
		return true
	default:
		return false
	}
}
