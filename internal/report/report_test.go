package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerCSV = `Date,PL Code,Grouping Code,Product Name,Amount,Stock Qty,Rate
01/04/2025,Sales,Rice,Ram Traders,"1,000",10,100
15/04/2025,Sales,Rice,Ram Traders,(200),2,100
05/04/2025,Purchase of Paddy,Paddy,Mohan,-700,7,100
07/04/2025,Nagdi Tutra,,,300,,
12/05/2025,Sales,Rice,,400,4,110
`

func writeLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(ledgerCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "summary", "--file", writeLedger(t), "--timezone", "UTC", "--month", "4", "--year", "2025")
	require.NoError(t, err)

	var body struct {
		Rows []struct {
			Left  map[string]any `json:"left"`
			Right map[string]any `json:"right"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "Purchase of Paddy", body.Rows[0].Left["product"])
	assert.Equal(t, "Sales", body.Rows[0].Right["product"])
	assert.Equal(t, 800.0, body.Rows[0].Right["amount"])
}

func TestTypesCommand(t *testing.T) {
	out, err := run(t, "types", "--file", writeLedger(t), "--timezone", "UTC", "--start", "2025-04-01", "--end", "2025-05-31", "--pl-code", "Sales")
	require.NoError(t, err)

	var body struct {
		Rows []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "Rice", body.Rows[0]["type"])
	assert.Equal(t, 1200.0, body.Rows[0]["amount"])
}

func TestItemsCommand(t *testing.T) {
	out, err := run(t, "items", "--file", writeLedger(t))
	require.NoError(t, err)

	var body struct {
		Items []string `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Contains(t, body.Items, "Sales")
	assert.Contains(t, body.Items, "Purchase of Paddy")
}

func TestMonthlyCommandWritesWorkbook(t *testing.T) {
	target := filepath.Join(t.TempDir(), "monthly.xlsx")
	out, err := run(t, "monthly", "--file", writeLedger(t), "--timezone", "UTC", "--year", "2025", "--xlsx", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "summary")
	assert.ErrorContains(t, err, "--file or --url")

	_, err = run(t, "summary", "--file", "a.csv", "--url", "https://example.com/x.csv")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = run(t, "summary", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = run(t, "summary", "--file", writeLedger(t), "--month", "13")
	assert.ErrorContains(t, err, "month")

	_, err = run(t, "summary", "--file", writeLedger(t), "--rate-mode", "median")
	assert.Error(t, err)
}

func TestAuditCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "audit.db")
	out, err := run(t, "audit", "--db", db)
	require.NoError(t, err)
	assert.JSONEq(t, `{"logins":null}`, out)
}
