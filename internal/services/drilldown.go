package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerdash/internal/aggregate"
	"ledgerdash/internal/core"
)

// Codes of the singleton groups, matched case-insensitively as substrings
// of the top-level code.
const (
	OpeningBalanceCode = "opening balance"
	NagdiTutraCode     = "nagdi tutra"
)

// Level is one step of a drill-down hierarchy: the column grouped on, the
// request parameter that selects a value of it and the JSON key of its label.
type Level struct {
	Field string
	Param string
	Label string
}

// Hierarchy is the fixed three-level grouping of a table. Raw invoice rows
// sit below the last level.
type Hierarchy struct {
	Name   string
	Levels [3]Level
}

var (
	LedgerHierarchy = Hierarchy{
		Name: "ledger",
		Levels: [3]Level{
			{Field: core.FieldPLCode, Param: "plCode", Label: "product"},
			{Field: core.FieldGroupingCode, Param: "groupCode", Label: "type"},
			{Field: core.FieldProductName, Param: "productName", Label: "party"},
		},
	}
	BankHierarchy = Hierarchy{
		Name: "bank",
		Levels: [3]Level{
			{Field: core.FieldBSCode, Param: "plCode", Label: "product"},
			{Field: core.FieldGroupingCode, Param: "groupCode", Label: "type"},
			{Field: core.FieldName, Param: "productName", Label: "party"},
		},
	}
)

// PreferredInvoiceColumns lead the column list of an invoice table.
var PreferredInvoiceColumns = []string{
	core.FieldTimestamp, core.FieldDate, core.FieldName, core.FieldPLCode,
	core.FieldGroupingCode, core.FieldProductName, core.FieldBags, core.FieldQuantity,
	core.FieldQnty, core.FieldRate, core.FieldAmount, core.FieldRemarks,
	core.FieldRatio, core.FieldStockQty,
}

type (
	// SummaryPair is one display line of the product summary. Left and
	// right are zipped by position only and are otherwise unrelated.
	SummaryPair struct {
		Left  *aggregate.Row `json:"left"`
		Right *aggregate.Row `json:"right"`
	}

	KPITotals struct {
		LeftStockQty  float64 `json:"leftStockQty"`
		LeftAmount    float64 `json:"leftAmount"`
		RightStockQty float64 `json:"rightStockQty"`
		RightAmount   float64 `json:"rightAmount"`
	}

	ProductSummary struct {
		Rows      []SummaryPair `json:"rows"`
		KPITotals KPITotals     `json:"kpiTotals"`
	}

	// InvoiceTable is the leaf level: raw records plus their column order.
	InvoiceTable struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}

	OpeningBalance struct {
		StockQty float64 `json:"stockQty"`
		Rate     float64 `json:"rate"`
	}

	CashTotal struct {
		Amount float64 `json:"amount"`
	}
)

// Drilldown resolves the levels of a hierarchy over one table. It is
// stateless: forgetting deeper selections when a parent changes is up to
// the caller.
type Drilldown struct {
	pipeline  *Pipeline
	hierarchy Hierarchy
	policy    aggregate.Policy
}

func NewDrilldown(pipeline *Pipeline, hierarchy Hierarchy, policy aggregate.Policy) *Drilldown {
	return &Drilldown{pipeline: pipeline, hierarchy: hierarchy, policy: policy}
}

// Hierarchy returns the levels served by d.
func (d *Drilldown) Hierarchy() Hierarchy { return d.hierarchy }

// Summary groups the window by the top level and splits the groups into a
// left column (negative amount) and a right column (positive, then zero).
func (d *Drilldown) Summary(ctx context.Context, w core.Window) (*ProductSummary, error) {
	scoped, err := d.pipeline.Select(ctx, w)
	if err != nil {
		return nil, err
	}
	top := d.hierarchy.Levels[0]
	rows := d.policy.Summarize(scoped, top.Field, top.Label)

	var left, positive, zero []aggregate.Row
	for _, r := range rows {
		switch r.Totals.Amount.Sign() {
		case -1:
			left = append(left, r)
		case 1:
			positive = append(positive, r)
		default:
			zero = append(zero, r)
		}
	}
	right := append(positive, zero...)

	pairs := make([]SummaryPair, max(len(left), len(right)))
	for i := range pairs {
		if i < len(left) {
			pairs[i].Left = &left[i]
		}
		if i < len(right) {
			pairs[i].Right = &right[i]
		}
	}
	return &ProductSummary{Rows: pairs, KPITotals: d.kpiTotals(scoped)}, nil
}

// kpiTotals works on individual records, not on groups.
func (d *Drilldown) kpiTotals(records []core.Record) KPITotals {
	var leftQty, leftAmt, rightQty, rightAmt decimal.Decimal
	for _, r := range records {
		amount := d.policy.Number.Decimal(r[core.FieldAmount])
		stock := d.policy.Number.Decimal(r[core.FieldStockQty])
		switch amount.Sign() {
		case -1:
			leftQty, leftAmt = leftQty.Add(stock), leftAmt.Add(amount)
		case 1:
			rightQty, rightAmt = rightQty.Add(stock), rightAmt.Add(amount)
		}
	}
	return KPITotals{
		LeftStockQty:  core.Round2(leftQty),
		LeftAmount:    core.Round2(leftAmt),
		RightStockQty: core.Round2(rightQty),
		RightAmount:   core.Round2(rightAmt),
	}
}

// Children lists the level below the given parent selections: one parent
// yields level two, two parents level three. A blank selection matches
// nothing and yields no rows.
func (d *Drilldown) Children(ctx context.Context, w core.Window, parents ...string) ([]aggregate.Row, error) {
	if len(parents) == 0 || len(parents) >= len(d.hierarchy.Levels) {
		return nil, core.NewValidationError("", "one or two parent selections are required")
	}
	if blankSelection(parents) {
		return []aggregate.Row{}, nil
	}
	scoped, err := d.pipeline.Select(ctx, w)
	if err != nil {
		return nil, err
	}
	next := d.hierarchy.Levels[len(parents)]
	rows := d.policy.Summarize(d.under(scoped, parents), next.Field, next.Label)
	if rows == nil {
		rows = []aggregate.Row{}
	}
	return rows, nil
}

// Invoices returns the raw records under a full selection, numbered from 1.
// A blank selection yields the preferred columns and no rows.
func (d *Drilldown) Invoices(ctx context.Context, w core.Window, parents ...string) (*InvoiceTable, error) {
	if len(parents) != len(d.hierarchy.Levels) {
		return nil, core.NewValidationError("", "a selection for every level is required")
	}
	if blankSelection(parents) {
		return &InvoiceTable{Columns: InvoiceColumns(nil, nil), Rows: []map[string]any{}}, nil
	}
	scoped, err := d.pipeline.Select(ctx, w)
	if err != nil {
		return nil, err
	}
	matched := d.under(scoped, parents)

	table := &InvoiceTable{
		Columns: InvoiceColumns(matched, d.pipeline.Fields()),
		Rows:    make([]map[string]any, 0, len(matched)),
	}
	for i, r := range matched {
		row := make(map[string]any, len(r)+1)
		for k, v := range r {
			row[k] = v
		}
		row["_rowId"] = i + 1
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// InvoiceColumns orders the columns present in records: preferred columns
// first, then the rest in canonical order. With no records the preferred
// list is returned as is.
func InvoiceColumns(records []core.Record, canonical []string) []string {
	if len(records) == 0 {
		return append([]string(nil), PreferredInvoiceColumns...)
	}
	present := map[string]bool{}
	for _, r := range records {
		for k := range r {
			present[k] = true
		}
	}
	cols := make([]string, 0, len(present))
	used := map[string]bool{}
	for _, group := range [][]string{PreferredInvoiceColumns, canonical} {
		for _, c := range group {
			if present[c] && !used[c] {
				cols = append(cols, c)
				used[c] = true
			}
		}
	}
	return cols
}

// OpeningBalance reads the first record whose top-level code mentions
// "opening balance". It ignores the time window. Zeroes when absent.
func (d *Drilldown) OpeningBalance(ctx context.Context) (*OpeningBalance, error) {
	records, err := d.pipeline.Load(ctx)
	if err != nil {
		return nil, err
	}
	field := d.hierarchy.Levels[0].Field
	for _, r := range records {
		if matchesCode(r.Get(field), OpeningBalanceCode) {
			return &OpeningBalance{
				StockQty: core.Round2(d.policy.Number.Decimal(r[core.FieldStockQty])),
				Rate:     core.Round2(d.policy.Number.Decimal(r[core.FieldRate])),
			}, nil
		}
	}
	return &OpeningBalance{}, nil
}

// NagdiTutra sums the amount of every record in w whose top-level code
// mentions "nagdi tutra".
func (d *Drilldown) NagdiTutra(ctx context.Context, w core.Window) (*CashTotal, error) {
	scoped, err := d.pipeline.Select(ctx, w)
	if err != nil {
		return nil, err
	}
	field := d.hierarchy.Levels[0].Field
	matched := core.Filter(scoped, func(r core.Record) bool {
		return matchesCode(r.Get(field), NagdiTutraCode)
	})
	return &CashTotal{Amount: core.Round2(d.policy.Sum(matched, core.FieldAmount))}, nil
}

func blankSelection(parents []string) bool {
	for _, p := range parents {
		if strings.TrimSpace(p) == "" {
			return true
		}
	}
	return false
}

func (d *Drilldown) under(records []core.Record, parents []string) []core.Record {
	return core.Filter(records, func(r core.Record) bool {
		for i, p := range parents {
			if !r.Match(d.hierarchy.Levels[i].Field, p) {
				return false
			}
		}
		return true
	})
}

func matchesCode(value, code string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v != "" && strings.Contains(v, code)
}
