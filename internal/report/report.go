// Package report implements the ledgerdash-report command line: the
// dashboard views computed once against a CSV file or URL and printed as
// JSON or written as workbooks.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"ledgerdash/internal/aggregate"
	"ledgerdash/internal/core"
	"ledgerdash/internal/export"
	"ledgerdash/internal/log"
	"ledgerdash/internal/schema"
	"ledgerdash/internal/services"
	"ledgerdash/internal/sheets"
	"ledgerdash/internal/sheets/csvsource"
	"ledgerdash/internal/sheets/memory"
)

// source flags shared by every command.
type sourceFlags struct {
	file       string
	url        string
	bank       bool
	schemaFile string
	timezone   string
	rateMode   string
	numberMode string
	timeout    time.Duration
}

func (f *sourceFlags) setup(c *cobra.Command) {
	p := c.PersistentFlags()
	p.StringVarP(&f.file, "file", "f", "", "read rows from a CSV file")
	p.StringVar(&f.url, "url", "", "read rows from a published CSV URL")
	p.BoolVar(&f.bank, "bank", false, "use the bank statement hierarchy")
	p.StringVar(&f.schemaFile, "schema", "", "header alias table (defaults to the embedded one)")
	p.StringVar(&f.timezone, "timezone", "Local", "zone of calendar fields")
	p.StringVar(&f.rateMode, "rate-mode", "weighted", "rate reducer: weighted or simple")
	p.StringVar(&f.numberMode, "number-mode", "accounting", "negative number handling: accounting or strip")
	p.DurationVar(&f.timeout, "timeout", 8*time.Second, "fetch timeout for --url")
}

// env is what a command needs once the flags are resolved.
type env struct {
	pipeline *services.Pipeline
	aliases  *schema.Schema
	policy   aggregate.Policy
	loc      *time.Location
	now      time.Time
}

func (f *sourceFlags) resolve() (*env, error) {
	var src sheets.RowSource
	switch {
	case f.file != "" && f.url != "":
		return nil, fmt.Errorf("--file and --url are mutually exclusive")
	case f.file != "":
		if _, err := os.Stat(f.file); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.file, err)
		}
		store, err := memory.NewFromFile(f.file)
		if err != nil {
			return nil, err
		}
		src = store
	case f.url != "":
		src = csvsource.New(f.name(), f.url, csvsource.WithTimeout(f.timeout))
	default:
		return nil, fmt.Errorf("one of --file or --url is required")
	}

	aliases, err := schema.Load(f.schemaFile)
	if err != nil {
		return nil, err
	}
	rate, err := aggregate.ParseRateMode(f.rateMode)
	if err != nil {
		return nil, err
	}
	number, err := core.ParseNumberMode(f.numberMode)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(f.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", f.timezone, err)
	}

	return &env{
		pipeline: services.NewPipeline(f.name(), src, schema.NewNormalizer(aliases), log.Discard()),
		aliases:  aliases,
		policy:   aggregate.Policy{Number: number, Rate: rate},
		loc:      loc,
		now:      time.Now().In(loc),
	}, nil
}

func (f *sourceFlags) name() string {
	if f.bank {
		return "bank"
	}
	return "ledger"
}

func (f *sourceFlags) hierarchy() services.Hierarchy {
	if f.bank {
		return services.BankHierarchy
	}
	return services.LedgerHierarchy
}

// timeFlags mirror the start/end/month/year query parameters of the API.
type timeFlags struct {
	start, end, month, year string
}

func (t *timeFlags) setup(c *cobra.Command) {
	c.Flags().StringVar(&t.start, "start", "", "range start date")
	c.Flags().StringVar(&t.end, "end", "", "range end date")
	c.Flags().StringVar(&t.month, "month", "", "month number (1-12)")
	c.Flags().StringVar(&t.year, "year", "", "four-digit year")
}

func (t *timeFlags) query() core.TimeQuery {
	return core.TimeQuery{Start: t.start, End: t.end, Month: t.month, Year: t.year}
}

// NewRootCmd returns the ledgerdash-report command tree.
func NewRootCmd() *cobra.Command {
	var src sourceFlags
	root := &cobra.Command{
		Use:           "ledgerdash-report",
		Short:         "compute dashboard views from a ledger CSV",
		Long:          `Compute the dashboard views (summary, drill-down, monthly comparison) once and print them as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	src.setup(root)
	root.AddCommand(
		summaryCmd(&src),
		childrenCmd(&src, "types", "list the types under a product", 1),
		childrenCmd(&src, "parties", "list the parties under a type", 2),
		invoicesCmd(&src),
		monthlyCmd(&src),
		itemsCmd(&src),
		auditCmd(),
	)
	return root
}

// Execute runs the command tree and reports failure on stderr.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func summaryCmd(src *sourceFlags) *cobra.Command {
	var tf timeFlags
	c := &cobra.Command{
		Use:   "summary",
		Short: "print the product summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, w, err := resolveWindow(src, &tf)
			if err != nil {
				return err
			}
			summary, err := services.NewDrilldown(e.pipeline, src.hierarchy(), e.policy).Summary(cmd.Context(), w)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	tf.setup(c)
	return c
}

type selectionFlags struct {
	plCode, groupCode, productName string
}

func (s *selectionFlags) setup(c *cobra.Command, depth int) {
	c.Flags().StringVar(&s.plCode, "pl-code", "", "selected product code")
	if depth > 1 {
		c.Flags().StringVar(&s.groupCode, "group-code", "", "selected type")
	}
	if depth > 2 {
		c.Flags().StringVar(&s.productName, "product-name", "", "selected party")
	}
}

// parents returns the first depth selections, blank ones included.
func (s *selectionFlags) parents(depth int) []string {
	out := make([]string, 0, depth)
	for _, v := range []string{s.plCode, s.groupCode, s.productName}[:depth] {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func childrenCmd(src *sourceFlags, use, short string, depth int) *cobra.Command {
	var (
		tf  timeFlags
		sel selectionFlags
	)
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, w, err := resolveWindow(src, &tf)
			if err != nil {
				return err
			}
			rows, err := services.NewDrilldown(e.pipeline, src.hierarchy(), e.policy).Children(cmd.Context(), w, sel.parents(depth)...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"rows": rows})
		},
	}
	tf.setup(c)
	sel.setup(c, depth)
	return c
}

func invoicesCmd(src *sourceFlags) *cobra.Command {
	var (
		tf   timeFlags
		sel  selectionFlags
		xlsx string
	)
	c := &cobra.Command{
		Use:   "invoices",
		Short: "list the raw rows under a party",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, w, err := resolveWindow(src, &tf)
			if err != nil {
				return err
			}
			table, err := services.NewDrilldown(e.pipeline, src.hierarchy(), e.policy).Invoices(cmd.Context(), w, sel.parents(3)...)
			if err != nil {
				return err
			}
			if xlsx == "" {
				return printJSON(cmd.OutOrStdout(), table)
			}
			f, err := export.InvoiceWorkbook(table, "Invoices")
			if err != nil {
				return err
			}
			return writeWorkbook(xlsx, f)
		},
	}
	tf.setup(c)
	sel.setup(c, 3)
	c.Flags().StringVar(&xlsx, "xlsx", "", "write an XLSX workbook to this path instead of JSON")
	return c
}

func monthlyCmd(src *sourceFlags) *cobra.Command {
	var (
		tf   timeFlags
		xlsx string
	)
	c := &cobra.Command{
		Use:   "monthly",
		Short: "print the fiscal-year monthly comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := src.resolve()
			if err != nil {
				return err
			}
			fy, err := core.ResolveFiscalYear(tf.query(), e.now)
			if err != nil {
				return err
			}
			matrix, err := services.NewComparison(e.pipeline, e.policy, e.aliases.ComparisonRows).Monthly(cmd.Context(), fy, e.loc)
			if err != nil {
				return err
			}
			if xlsx == "" {
				return printJSON(cmd.OutOrStdout(), matrix)
			}
			f, err := export.MonthlyWorkbook(matrix)
			if err != nil {
				return err
			}
			return writeWorkbook(xlsx, f)
		},
	}
	tf.setup(c)
	c.Flags().StringVar(&xlsx, "xlsx", "", "write an XLSX workbook to this path instead of JSON")
	return c
}

func itemsCmd(src *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "list the comparable item labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := src.resolve()
			if err != nil {
				return err
			}
			items, err := services.NewComparison(e.pipeline, e.policy, e.aliases.ComparisonRows).Items(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"items": items})
		},
	}
}

func resolveWindow(src *sourceFlags, tf *timeFlags) (*env, core.Window, error) {
	e, err := src.resolve()
	if err != nil {
		return nil, core.Window{}, err
	}
	w, err := core.ResolveWindow(tf.query(), e.now)
	if err != nil {
		return nil, core.Window{}, err
	}
	return e, w, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeWorkbook(path string, f *excelize.File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
