package backend

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/core"
	"ledgerdash/internal/log"
)

func TestSourceType_IsValid(t *testing.T) {
	for _, st := range GetSourceTypes() {
		assert.True(t, st.IsValid(), st.String())
	}
	assert.False(t, SourceType("sqlite").IsValid())
	assert.Equal(t, []string{"csv", "sheets", "memory"}, GetSourceTypeStrings())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "memory", config: Config{Type: MemorySource}},
		{name: "csv", config: Config{Type: CSVSource, LedgerCSVURL: "https://example.com/a.csv"}},
		{name: "csv without url", config: Config{Type: CSVSource}, wantErr: "ledger CSV URL is required"},
		{name: "sheets without range", config: Config{Type: SheetsSource, GoogleSpreadsheetID: "id"}, wantErr: "Google ledger range is required"},
		{name: "unknown type", config: Config{Type: "ftp"}, wantErr: "invalid source type: ftp"},
		{name: "sqlite without path", config: Config{Type: MemorySource, UserStore: "sqlite"}, wantErr: "SQLite database path is required"},
		{name: "unknown user store", config: Config{Type: MemorySource, UserStore: "ldap"}, wantErr: "invalid user store: ldap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type fetchEvent struct {
	source string
	rows   int
	err    error
}

func TestFactory_MemoryBackend(t *testing.T) {
	dir := t.TempDir()
	seed := "Date,Product Name,Amount\n01/04/2025,Paddy,100\n02/04/2025,Wheat,-50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, LedgerSeedFile), []byte(seed), 0644))

	var (
		mu     sync.Mutex
		events []fetchEvent
	)
	observer := func(source string, _ time.Duration, rows int, err error) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, fetchEvent{source, rows, err})
	}

	result, err := NewFactory(log.Discard(), observer).CreateBackend(context.Background(), Config{
		Type:          MemorySource,
		DataDirectory: dir,
	})
	require.NoError(t, err)
	defer result.Close()

	rows, err := result.Ledger.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	bank, err := result.Bank.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bank)

	require.Len(t, events, 2)
	assert.Equal(t, fetchEvent{LedgerSourceName, 2, nil}, events[0])
	assert.Equal(t, BankSourceName, events[1].source)

	_, isLog := result.Auditor.(auth.LogAuditor)
	assert.True(t, isLog)

	u, err := result.Users.FindByEmail(context.Background(), "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
}

func TestFactory_CSVBackendWithoutBank(t *testing.T) {
	result, err := NewFactory(nil, nil).CreateBackend(context.Background(), Config{
		Type:         CSVSource,
		LedgerCSVURL: "http://127.0.0.1:1/ledger.csv",
		Timeout:      time.Second,
	})
	require.NoError(t, err)

	_, err = result.Bank.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
	assert.NoError(t, result.Close())
}

func TestFactory_SQLiteUserStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "users.db")

	result, err := NewFactory(nil, nil).CreateBackend(context.Background(), Config{
		Type:          MemorySource,
		DataDirectory: t.TempDir(),
		UserStore:     "sqlite",
		SQLiteDBPath:  dbPath,
	})
	require.NoError(t, err)
	defer result.Close()

	users, err := result.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, len(auth.DemoUsers()))
}

func TestFromAppConfigRejectsNil(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)
}
