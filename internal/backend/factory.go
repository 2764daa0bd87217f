package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"ledgerdash/internal/amqp"
	"ledgerdash/internal/auth"
	"ledgerdash/internal/log"
	"ledgerdash/internal/sheets"
	"ledgerdash/internal/sheets/csvsource"
	gsheet "ledgerdash/internal/sheets/google"
	"ledgerdash/internal/sheets/memory"
	"ledgerdash/internal/storage"
)

// Seed files read by the memory source.
const (
	LedgerSeedFile = "ledger.csv"
	BankSeedFile   = "bank.csv"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger   *log.Logger
	observer sheets.FetchObserver
}

// NewFactory creates a new backend factory. observer, when set, sees every
// fetch of both row sources.
func NewFactory(logger *log.Logger, observer sheets.FetchObserver) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger:   logger.WithComponent(log.ComponentBackend),
		observer: observer,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		ledger, bank sheets.RowSource
		err          error
	)
	switch config.Type {
	case CSVSource:
		ledger, bank = f.createCSVSources(config)
	case SheetsSource:
		ledger, bank, err = f.createSheetsSources(ctx, config)
	case MemorySource:
		ledger, bank, err = f.createMemorySources(config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{
		Ledger: sheets.Observe(LedgerSourceName, ledger, f.observer),
		Bank:   sheets.Observe(BankSourceName, bank, f.observer),
	}

	var cleanups []CleanupFunc
	users, cleanup, err := f.createUserStore(ctx, config)
	if err != nil {
		return nil, err
	}
	result.Users = users
	if cleanup != nil {
		cleanups = append(cleanups, cleanup)
	}

	auditor, cleanup := f.createAuditor(ctx, config)
	result.Auditor = auditor
	if cleanup != nil {
		cleanups = append(cleanups, cleanup)
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}
	return result, nil
}

func (f *DefaultFactory) createCSVSources(config Config) (sheets.RowSource, sheets.RowSource) {
	opts := []csvsource.Option{csvsource.WithTimeout(config.Timeout)}
	ledger := csvsource.New(LedgerSourceName, config.LedgerCSVURL, opts...)

	var bank sheets.RowSource = sheets.Unconfigured(BankSourceName)
	if config.BankCSVURL != "" {
		bank = csvsource.New(BankSourceName, config.BankCSVURL, opts...)
	}

	f.logger.Info("Initialized CSV export sources",
		"bank_enabled", config.BankCSVURL != "",
		"timeout", config.Timeout)
	return ledger, bank
}

func (f *DefaultFactory) createSheetsSources(ctx context.Context, config Config) (sheets.RowSource, sheets.RowSource, error) {
	opts := []gsheet.Option{gsheet.WithTimeout(config.Timeout), gsheet.WithLogger(f.logger)}
	ledger, err := gsheet.New(ctx, LedgerSourceName, config.GoogleSpreadsheetID, config.GoogleLedgerRange, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	var bank sheets.RowSource = sheets.Unconfigured(BankSourceName)
	if config.GoogleBankRange != "" {
		b, err := gsheet.New(ctx, BankSourceName, config.GoogleSpreadsheetID, config.GoogleBankRange, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Google Sheets bank client: %w", err)
		}
		bank = b
	}

	f.logger.Info("Initialized Google Sheets sources",
		"ledger_range", config.GoogleLedgerRange,
		"bank_enabled", config.GoogleBankRange != "",
		"timeout", config.Timeout)
	return ledger, bank, nil
}

func (f *DefaultFactory) createMemorySources(config Config) (sheets.RowSource, sheets.RowSource, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}

	ledger, err := memory.NewFromFile(filepath.Join(dataDir, LedgerSeedFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ledger seed: %w", err)
	}
	bank, err := memory.NewFromFile(filepath.Join(dataDir, BankSeedFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bank seed: %w", err)
	}

	f.logger.Info("Initialized memory sources",
		"data_directory", dataDir,
		"ledger_rows", ledger.Len(),
		"bank_rows", bank.Len())
	return ledger, bank, nil
}

func (f *DefaultFactory) createUserStore(ctx context.Context, config Config) (auth.Store, CleanupFunc, error) {
	if config.UserStore != "sqlite" {
		f.logger.Info("Initialized in-memory user store", "users", len(auth.DemoUsers()))
		return auth.NewMemoryStore(auth.DemoUsers()...), nil, nil
	}

	repo, err := storage.NewUserRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite user store: %w", err)
	}
	if err := repo.Seed(ctx, auth.DemoUsers()); err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("failed to seed users: %w", err)
	}

	f.logger.Info("Initialized SQLite user store", "db_path", config.SQLiteDBPath)
	return repo, repo.Close, nil
}

// createAuditor never fails: without a broker, login events go to the log.
func (f *DefaultFactory) createAuditor(ctx context.Context, config Config) (auth.Auditor, CleanupFunc) {
	fallback := auth.LogAuditor{Logger: f.logger}
	if config.AMQPURL == "" {
		return fallback, nil
	}

	client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, config.AMQPAttempts, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, auditing to log only", log.FieldError, err)
		return fallback, nil
	}

	f.logger.Info("Initialized AMQP login auditor",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return client, client.Close
}
