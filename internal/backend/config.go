package backend

import (
	"fmt"

	"ledgerdash/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sourceType := SourceType(appConfig.SourceBackend)
	if !sourceType.IsValid() {
		return Config{}, fmt.Errorf("invalid source type in config: %s", appConfig.SourceBackend)
	}

	return Config{
		Type: sourceType,

		LedgerCSVURL: appConfig.SheetCSVURL,
		BankCSVURL:   appConfig.BankSheetCSVURL,
		Timeout:      appConfig.SourceTimeout,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleLedgerRange:   appConfig.GoogleLedgerRange,
		GoogleBankRange:     appConfig.GoogleBankRange,

		DataDirectory: appConfig.DataDir,

		UserStore:    appConfig.UserStore,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPRoutingKey: appConfig.AMQPRoutingKey,
		AMQPAttempts:   3,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid source type: %s", c.Type)
	}

	switch c.Type {
	case CSVSource:
		if c.LedgerCSVURL == "" {
			return fmt.Errorf("ledger CSV URL is required for csv source")
		}
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
		}
		if c.GoogleLedgerRange == "" {
			return fmt.Errorf("Google ledger range is required for sheets source")
		}
	case MemorySource:
		// DataDirectory defaults to "data" when empty
	}

	switch c.UserStore {
	case "", "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite user store")
		}
	default:
		return fmt.Errorf("invalid user store: %s", c.UserStore)
	}

	return nil
}

// GetSourceTypes returns all valid source types
func GetSourceTypes() []SourceType {
	return []SourceType{CSVSource, SheetsSource, MemorySource}
}

// GetSourceTypeStrings returns all valid source type strings
func GetSourceTypeStrings() []string {
	types := GetSourceTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
