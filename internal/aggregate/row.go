package aggregate

import (
	"bytes"
	"encoding/json"

	"ledgerdash/internal/core"
)

// Row is one aggregate line. A nil Totals is the blank row: every numeric
// field renders as null.
type Row struct {
	LabelKey string
	Label    string
	Totals   *Totals
}

// Blank returns the placeholder row for a label with no contributing records.
func Blank(labelKey, label string) Row {
	return Row{LabelKey: labelKey, Label: label}
}

// IsBlank reports whether the row has no totals.
func (r Row) IsBlank() bool { return r.Totals == nil }

// Values returns stockQty, q1, q2, rate and amount rounded to two decimals,
// or nil for a blank row.
func (r Row) Values() *Values {
	if r.Totals == nil {
		return nil
	}
	return &Values{
		StockQty: core.Round2(r.Totals.StockQty),
		Q1:       core.Round2(r.Totals.Q1),
		Q2:       core.Round2(r.Totals.Q2),
		Rate:     core.Round2(r.Totals.Rate),
		Amount:   core.Round2(r.Totals.Amount),
	}
}

// Values are the display numbers of a row.
type Values struct {
	StockQty float64
	Q1       float64
	Q2       float64
	Rate     float64
	Amount   float64
}

// MarshalJSON writes the label first, then the numeric fields in a fixed order.
func (r Row) MarshalJSON() ([]byte, error) {
	key := r.LabelKey
	if key == "" {
		key = "label"
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, key, r.Label, true); err != nil {
		return nil, err
	}

	v := r.Values()
	fields := []struct {
		name string
		val  func(*Values) float64
	}{
		{"stockQty", func(v *Values) float64 { return v.StockQty }},
		{"q1", func(v *Values) float64 { return v.Q1 }},
		{"q2", func(v *Values) float64 { return v.Q2 }},
		{"rate", func(v *Values) float64 { return v.Rate }},
		{"amount", func(v *Values) float64 { return v.Amount }},
	}
	for _, f := range fields {
		var val any
		if v != nil {
			val = f.val(v)
		}
		if err := writeField(&buf, f.name, val, false); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, name string, val any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(name)
	if err != nil {
		return err
	}
	v, err := json.Marshal(val)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
