package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ledgerdash/internal/services"
)

func readBack(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))

	got, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer got.Close()
	rows, err := got.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestInvoiceWorkbook(t *testing.T) {
	table := &services.InvoiceTable{
		Columns: []string{"date", "product name", "amount"},
		Rows: []map[string]any{
			{"_rowId": 1, "date": "01/04/2025", "product name": "Ram Traders", "amount": "1000"},
			{"_rowId": 2, "date": "15/04/2025", "product name": "Ram Traders", "amount": "(200)"},
		},
	}
	f, err := InvoiceWorkbook(table, "Invoices")
	require.NoError(t, err)

	rows := readBack(t, f, "Invoices")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "product name", "amount"}, rows[0])
	assert.Equal(t, []string{"01/04/2025", "Ram Traders", "1000"}, rows[1])
	assert.Equal(t, "(200)", rows[2][2])
}

func TestMonthlyWorkbook(t *testing.T) {
	m := &services.MonthlyMatrix{
		FiscalYear: "2025-26",
		Rows:       []string{"Sales"},
		Months:     []string{"April", "May"},
		Data: map[string]map[string]*services.Cell{
			"Sales": {"April": {Qty: 13, Rate: 96.15, Amount: 850}, "May": nil},
		},
	}
	f, err := MonthlyWorkbook(m)
	require.NoError(t, err)

	rows := readBack(t, f, "FY 2025-26")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Item", "April Qty", "April Rate", "April Amount", "May Qty", "May Rate", "May Amount"}, rows[0])
	assert.Equal(t, []string{"Sales", "13", "96.15", "850"}, rows[1])
}
