package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerdash/internal/aggregate"
	"ledgerdash/internal/core"
	"ledgerdash/internal/schema"
)

type (
	// Cell is one (label, month) entry of the monthly matrix.
	Cell struct {
		Qty    float64 `json:"qty"`
		Rate   float64 `json:"rate"`
		Amount float64 `json:"amount"`
	}

	// MonthlyMatrix maps label -> month name -> cell. A nil cell means
	// nothing was recorded for that month.
	MonthlyMatrix struct {
		FiscalYear string                      `json:"fiscalYear"`
		Rows       []string                    `json:"rows"`
		Months     []string                    `json:"months"`
		Data       map[string]map[string]*Cell `json:"data"`
	}

	Range struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	CustomCompareRequest struct {
		Left  *Range   `json:"left"`
		Right *Range   `json:"right"`
		Items []string `json:"items,omitempty"`
	}

	CompareRow struct {
		Item  string        `json:"item"`
		Left  aggregate.Row `json:"left"`
		Right aggregate.Row `json:"right"`
	}

	CustomComparison struct {
		LeftSummary  map[string]aggregate.Row `json:"leftSummary"`
		RightSummary map[string]aggregate.Row `json:"rightSummary"`
		Rows         []CompareRow             `json:"rows"`
	}
)

// Comparison builds the fiscal-year matrix and the two-range comparison of
// the ledger's top-level codes.
type Comparison struct {
	pipeline  *Pipeline
	policy    aggregate.Policy
	preferred []string
}

// NewComparison returns a builder. preferred lists the labels that lead the
// matrix, in display order.
func NewComparison(pipeline *Pipeline, policy aggregate.Policy, preferred []string) *Comparison {
	return &Comparison{pipeline: pipeline, policy: policy, preferred: preferred}
}

// MonthNames returns the fiscal month labels, April first.
func MonthNames() []string {
	names := make([]string, len(core.FiscalMonths))
	for i, m := range core.FiscalMonths {
		names[i] = m.String()
	}
	return names
}

// Monthly builds the matrix for fy. Record dates are read in loc.
func (c *Comparison) Monthly(ctx context.Context, fy core.FiscalYear, loc *time.Location) (*MonthlyMatrix, error) {
	records, err := c.pipeline.Load(ctx)
	if err != nil {
		return nil, err
	}

	labels := map[string]string{}
	cells := map[string]map[time.Month][]core.Record{}
	for _, r := range records {
		t, ok := core.RecordDate(r, loc)
		if !ok || !fy.Contains(t) {
			continue
		}
		label := r.Get(core.FieldPLCode)
		if label == "" {
			label = r.Get(core.FieldProductName)
		}
		key := schema.LabelKey(label)
		if key == "" {
			continue
		}
		if _, seen := labels[key]; !seen {
			labels[key] = label
			cells[key] = map[time.Month][]core.Record{}
		}
		cells[key][t.Month()] = append(cells[key][t.Month()], r)
	}

	m := &MonthlyMatrix{
		FiscalYear: fy.Label(),
		Rows:       make([]string, 0, len(labels)),
		Months:     MonthNames(),
		Data:       make(map[string]map[string]*Cell, len(labels)),
	}
	for _, key := range c.orderLabels(labels) {
		label := labels[key]
		row := make(map[string]*Cell, len(core.FiscalMonths))
		for _, month := range core.FiscalMonths {
			row[month.String()] = c.cell(cells[key][month])
		}
		m.Rows = append(m.Rows, label)
		m.Data[label] = row
	}
	return m, nil
}

// orderLabels puts the preferred labels first, then the rest sorted by key.
func (c *Comparison) orderLabels(labels map[string]string) []string {
	ordered := make([]string, 0, len(labels))
	used := map[string]bool{}
	for _, p := range c.preferred {
		key := schema.LabelKey(p)
		if _, ok := labels[key]; ok && !used[key] {
			ordered = append(ordered, key)
			used[key] = true
		}
	}
	var rest []string
	for key := range labels {
		if !used[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func (c *Comparison) cell(records []core.Record) *Cell {
	if len(records) == 0 {
		return nil
	}
	t := c.policy.Reduce(records)
	if t.StockQty.IsZero() && t.Amount.IsZero() {
		return nil
	}
	return &Cell{
		Qty:    core.Round2(t.StockQty),
		Rate:   core.Round2(t.Rate),
		Amount: core.Round2(t.Amount),
	}
}

// Items lists the distinct top-level codes in sheet order, ignoring time.
func (c *Comparison) Items(ctx context.Context) ([]string, error) {
	records, err := c.pipeline.Load(ctx)
	if err != nil {
		return nil, err
	}
	return sheetItems(records), nil
}

func sheetItems(records []core.Record) []string {
	items := []string{}
	seen := map[string]bool{}
	for _, r := range records {
		code := r.Get(core.FieldPLCode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		items = append(items, code)
	}
	return items
}

// Custom aggregates two independent date ranges of one load of the table
// and merges them per item. Both sides are computed concurrently. Without
// requested items every item of the sheet gets a row, in sheet order.
func (c *Comparison) Custom(ctx context.Context, req CustomCompareRequest, now time.Time) (*CustomComparison, error) {
	left, err := rangeWindow("left", req.Left, now)
	if err != nil {
		return nil, err
	}
	right, err := rangeWindow("right", req.Right, now)
	if err != nil {
		return nil, err
	}

	records, err := c.pipeline.Load(ctx)
	if err != nil {
		return nil, err
	}

	var leftRows, rightRows []aggregate.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leftRows = c.side(records, left)
		return gctx.Err()
	})
	g.Go(func() error {
		rightRows = c.side(records, right)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &CustomComparison{
		LeftSummary:  make(map[string]aggregate.Row, len(leftRows)),
		RightSummary: make(map[string]aggregate.Row, len(rightRows)),
	}
	order := sheetItems(records)
	for _, r := range leftRows {
		out.LeftSummary[r.Label] = r
		order = append(order, r.Label)
	}
	for _, r := range rightRows {
		out.RightSummary[r.Label] = r
		order = append(order, r.Label)
	}

	if requested := cleanItems(req.Items); len(requested) > 0 {
		order = requested
	} else {
		order = cleanItems(order)
	}
	out.Rows = make([]CompareRow, 0, len(order))
	for _, item := range order {
		row := CompareRow{
			Item:  item,
			Left:  aggregate.Blank("product", item),
			Right: aggregate.Blank("product", item),
		}
		if r, ok := out.LeftSummary[item]; ok {
			row.Left = r
		}
		if r, ok := out.RightSummary[item]; ok {
			row.Right = r
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (c *Comparison) side(records []core.Record, w core.Window) []aggregate.Row {
	return c.policy.Summarize(w.Select(records), core.FieldPLCode, "product")
}

func rangeWindow(side string, r *Range, now time.Time) (core.Window, error) {
	if r == nil || strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return core.Window{}, core.NewValidationError(side, "start and end are required")
	}
	w, err := core.ResolveWindow(core.TimeQuery{Start: r.Start, End: r.End}, now)
	if err != nil {
		return core.Window{}, core.NewValidationError(side, err.Error())
	}
	return w, nil
}

// cleanItems trims items and drops blanks and repeats, keeping order.
func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
