// Package core holds the domain values shared by the reporting pipeline:
// canonical records, numeric parsing, calendar parsing and time windows.
package core

import "strings"

// Canonical column names. Every normalized record only carries keys from
// this set.
const (
	FieldTimestamp    = "time stamp"
	FieldDate         = "date"
	FieldName         = "name"
	FieldPLCode       = "pl code"
	FieldBSCode       = "bs code"
	FieldGroupingCode = "grouping code"
	FieldProductName  = "product name"
	FieldType         = "type"
	FieldBags         = "bags"
	FieldQuantity     = "quantity"
	FieldQnty         = "qnty"
	FieldRate         = "rate"
	FieldAmount       = "amount"
	FieldRemarks      = "remarks"
	FieldRatio        = "ratio"
	FieldStockQty     = "stock qty"
)

type (
	// RawRecord is one source row keyed by its original header.
	// Values are scalars or tagged wrappers such as {"value": 12}.
	RawRecord map[string]any

	// Record is a normalized row keyed by canonical column name.
	Record map[string]string
)

// Get returns the trimmed value of field, or "" when absent.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Has reports whether field carries a non-empty value.
func (r Record) Has(field string) bool {
	return r.Get(field) != ""
}

// Match reports whether the trimmed value of field equals want (also trimmed).
func (r Record) Match(field, want string) bool {
	return r.Get(field) == strings.TrimSpace(want)
}

// Filter returns the records for which keep returns true, preserving order.
func Filter(records []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
