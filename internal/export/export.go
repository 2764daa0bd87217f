// Package export renders report tables as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"ledgerdash/internal/core"
	"ledgerdash/internal/services"
)

// ContentType is the MIME type of the workbooks produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns written as numbers when the cell parses as one.
var numericColumns = map[string]bool{
	core.FieldBags: true, core.FieldQuantity: true, core.FieldQnty: true,
	core.FieldRate: true, core.FieldAmount: true, core.FieldRatio: true,
	core.FieldStockQty: true,
}

// InvoiceWorkbook writes an invoice table to a single sheet, one column per
// table column in table order.
func InvoiceWorkbook(table *services.InvoiceTable, sheet string) (*excelize.File, error) {
	f, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := writeHeader(f, sheet, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range table.Rows {
		values := make([]any, len(table.Columns))
		for j, c := range table.Columns {
			values[j] = cellValue(c, row[c])
		}
		if err := setRow(f, sheet, i+2, values); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// MonthlyWorkbook writes the fiscal matrix with qty, rate and amount
// columns for every month. Empty cells stay blank.
func MonthlyWorkbook(m *services.MonthlyMatrix) (*excelize.File, error) {
	sheet := "FY " + m.FiscalYear
	f, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}

	header := []any{"Item"}
	for _, month := range m.Months {
		header = append(header, month+" Qty", month+" Rate", month+" Amount")
	}
	if err := writeHeader(f, sheet, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, label := range m.Rows {
		values := []any{label}
		for _, month := range m.Months {
			cell := m.Data[label][month]
			if cell == nil {
				values = append(values, nil, nil, nil)
				continue
			}
			values = append(values, cell.Qty, cell.Rate, cell.Amount)
		}
		if err := setRow(f, sheet, i+2, values); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write streams f to w and releases it.
func Write(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, header []any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func cellValue(column string, v any) any {
	s, ok := v.(string)
	if !ok || !numericColumns[column] {
		return v
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
