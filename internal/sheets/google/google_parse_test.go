package google

import (
	"testing"
)

// Values as returned by the API for a small ledger range.
func TestRecordsFromValues(t *testing.T) {
	values := [][]interface{}{
		{"Date", "PL Code", "Grouping Code", "Product Name", "Amount", ""},
		{"01/04/2025", "Sales", "Rice", "Acme", "1,000.00", "ignored"},
		{},
		{"", "", ""},
		{"02/04/2025", "Sales"},
	}
	got := recordsFromValues(values)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["Amount"] != "1,000.00" || got[0]["Product Name"] != "Acme" {
		t.Fatalf("unexpected first record: %v", got[0])
	}
	if _, ok := got[0][""]; ok {
		t.Fatalf("blank header must not produce a column")
	}
	if got[1]["Amount"] != "" || got[1]["PL Code"] != "Sales" {
		t.Fatalf("short row should be padded: %v", got[1])
	}
	if recordsFromValues(nil) != nil {
		t.Fatalf("empty matrix should yield nil")
	}
}
