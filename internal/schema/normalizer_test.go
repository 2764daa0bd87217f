package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ledgerdash/internal/core"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	s, err := Default()
	if err != nil {
		t.Fatalf("default table: %v", err)
	}
	return NewNormalizer(s)
}

func TestNormalizeCanonicalizesHeadersAndValues(t *testing.T) {
	n := newTestNormalizer(t)
	raws := []core.RawRecord{
		{
			" PL Code ":       "Sales",
			"Grouping_Code":   "Rice",
			"Product\u00a0Name": "Acme Traders",
			"Amount":          "1,234.50",
			"Stock Qty":       map[string]any{"value": 12.5},
			"Rate":            float64(98),
			"Sr No":           "7",
			"Date":            "01/04/2025",
		},
		{
			"plcode":  "Purchase",
			"Remarks": "paid, in full",
			"amount":  "(200)",
		},
	}
	got := n.Normalize(raws)
	want := []core.Record{
		{
			"pl code":       "Sales",
			"grouping code": "Rice",
			"product name":  "Acme Traders",
			"amount":        "1234.50",
			"stock qty":     "12.5",
			"rate":          "98",
			"date":          "01/04/2025",
		},
		{
			"pl code": "Purchase",
			"remarks": "paid, in full",
			"amount":  "(200)",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeFallbackHeaders(t *testing.T) {
	n := newTestNormalizer(t)
	got := n.Normalize([]core.RawRecord{
		{"New Date": "02/04/2025", "Timestamp": "01/04/2025 10:00:00"},
		{"Date": "03/04/2025", "New Date": "09/09/2025"},
		{"Date": "", "New Date": "04/04/2025"},
		{"Time Stamp": "05/04/2025", "Timestamp": "06/04/2025"},
	})
	want := []core.Record{
		{"date": "02/04/2025", "time stamp": "01/04/2025 10:00:00"},
		{"date": "03/04/2025"},
		{"date": "04/04/2025"},
		{"time stamp": "05/04/2025"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  12,345 ", "12345"},
		{"1,00,000.25", "100000.25"},
		{"13-11-2025", "13-11-2025"},
		{"Acme, Inc", "Acme, Inc"},
		{map[string]any{"value": "3,000"}, "3000"},
		{map[string]any{"value": map[string]any{"value": 4}}, "4"},
		{map[string]any{"other": 1}, ""},
		{int64(9), "9"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := CleanValue(tc.in); got != tc.want {
			t.Fatalf("CleanValue(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
