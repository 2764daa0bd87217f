// Package aggregate groups canonical records by a categorical column and
// reduces their numeric columns.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerdash/internal/core"
)

// RateMode selects the rate reducer.
type RateMode int

const (
	// RateWeighted is Σ(rate×stock qty)/Σ(stock qty).
	RateWeighted RateMode = iota
	// RateSimple is the arithmetic mean of non-empty rate cells.
	RateSimple
)

// ParseRateMode accepts "weighted" or "simple".
func ParseRateMode(s string) (RateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "weighted":
		return RateWeighted, nil
	case "simple":
		return RateSimple, nil
	default:
		return 0, fmt.Errorf("unknown rate mode %q", s)
	}
}

func (m RateMode) String() string {
	if m == RateSimple {
		return "simple"
	}
	return "weighted"
}

// Policy holds the numeric parsing and rate averaging rules applied by every
// view.
type Policy struct {
	Number core.NumberMode
	Rate   RateMode
}

// Totals is the reduction of a group of records.
type Totals struct {
	StockQty decimal.Decimal
	Q1       decimal.Decimal // sum of "qnty"
	Q2       decimal.Decimal // sum of "quantity"
	Rate     decimal.Decimal
	Amount   decimal.Decimal
	Count    int
}

// Group is the records sharing one key value.
type Group struct {
	Key     string
	Records []core.Record
}

// GroupBy partitions records by the trimmed value of field. Groups come out
// in first-seen order. Records with an empty key belong to no group.
func GroupBy(records []core.Record, field string) []Group {
	var groups []Group
	index := map[string]int{}
	for _, r := range records {
		key := r.Get(field)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Reduce sums the numeric columns of records and averages their rate.
func (p Policy) Reduce(records []core.Record) Totals {
	var (
		t                Totals
		weighted, weight decimal.Decimal
		rateSum          decimal.Decimal
		rateCount        int64
	)
	for _, r := range records {
		stock := p.Number.Decimal(r[core.FieldStockQty])
		rate := p.Number.Decimal(r[core.FieldRate])

		t.StockQty = t.StockQty.Add(stock)
		t.Q1 = t.Q1.Add(p.Number.Decimal(r[core.FieldQnty]))
		t.Q2 = t.Q2.Add(p.Number.Decimal(r[core.FieldQuantity]))
		t.Amount = t.Amount.Add(p.Number.Decimal(r[core.FieldAmount]))
		t.Count++

		if !stock.IsZero() {
			weighted = weighted.Add(rate.Mul(stock))
			weight = weight.Add(stock)
		}
		if r.Has(core.FieldRate) {
			rateSum = rateSum.Add(rate)
			rateCount++
		}
	}

	switch p.Rate {
	case RateSimple:
		if rateCount > 0 {
			t.Rate = rateSum.Div(decimal.NewFromInt(rateCount))
		}
	default:
		if !weight.IsZero() {
			t.Rate = weighted.Div(weight)
		}
	}
	return t
}

// Summarize groups records by field and reduces every group into a row
// labelled with labelKey.
func (p Policy) Summarize(records []core.Record, field, labelKey string) []Row {
	groups := GroupBy(records, field)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		t := p.Reduce(g.Records)
		rows = append(rows, Row{LabelKey: labelKey, Label: g.Key, Totals: &t})
	}
	return rows
}

// Sum adds one numeric column across records.
func (p Policy) Sum(records []core.Record, field string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(p.Number.Decimal(r[field]))
	}
	return total
}
