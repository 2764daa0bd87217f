package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ledgerdash/internal/core"
	"ledgerdash/internal/export"
	"ledgerdash/internal/services"
)

// dashboardHandlers serves the drill-down views of one table. The ledger
// and the bank statement each get their own instance.
type dashboardHandlers struct {
	server    *Server
	drilldown *services.Drilldown
}

func (h dashboardHandlers) op(name string) string {
	return h.drilldown.Hierarchy().Name + "." + name
}

// window resolves the effective time selection once per request.
func (h dashboardHandlers) window(r *http.Request) (core.Window, error) {
	return core.ResolveWindow(ParseTimeQuery(r.URL.Query()), h.server.clock())
}

func (h dashboardHandlers) summary(w http.ResponseWriter, r *http.Request) {
	win, err := h.window(r)
	if err != nil {
		h.server.fail(w, r, h.op("summary"), err)
		return
	}
	summary, err := h.drilldown.Summary(r.Context(), win)
	if err != nil {
		h.server.fail(w, r, h.op("summary"), err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (h dashboardHandlers) types(w http.ResponseWriter, r *http.Request) {
	h.children(w, r, "types", 1)
}

func (h dashboardHandlers) parties(w http.ResponseWriter, r *http.Request) {
	h.children(w, r, "parties", 2)
}

func (h dashboardHandlers) children(w http.ResponseWriter, r *http.Request, op string, depth int) {
	win, err := h.window(r)
	if err != nil {
		h.server.fail(w, r, h.op(op), err)
		return
	}
	parents := ParseSelections(r.URL.Query(), h.drilldown.Hierarchy(), depth)
	rows, err := h.drilldown.Children(r.Context(), win, parents...)
	if err != nil {
		h.server.fail(w, r, h.op(op), err)
		return
	}
	NewJSONResponse().Body(map[string]any{"rows": rows}).Write(w)
}

func (h dashboardHandlers) loadInvoices(r *http.Request) (*services.InvoiceTable, error) {
	win, err := h.window(r)
	if err != nil {
		return nil, err
	}
	parents := ParseSelections(r.URL.Query(), h.drilldown.Hierarchy(), len(h.drilldown.Hierarchy().Levels))
	return h.drilldown.Invoices(r.Context(), win, parents...)
}

func (h dashboardHandlers) invoices(w http.ResponseWriter, r *http.Request) {
	table, err := h.loadInvoices(r)
	if err != nil {
		h.server.fail(w, r, h.op("invoices"), err)
		return
	}
	NewJSONResponse().Body(table).Write(w)
}

func (h dashboardHandlers) invoicesExport(w http.ResponseWriter, r *http.Request) {
	table, err := h.loadInvoices(r)
	if err != nil {
		h.server.fail(w, r, h.op("invoices.export"), err)
		return
	}
	f, err := export.InvoiceWorkbook(table, "Invoices")
	if err != nil {
		h.server.fail(w, r, h.op("invoices.export"), err)
		return
	}

	name := fmt.Sprintf("%s-invoices-%s.xlsx", h.drilldown.Hierarchy().Name, fileSlug(r.URL.Query().Get("productName")))
	h.server.writeWorkbook(w, r, h.op("invoices.export"), name, f)
}

func (h dashboardHandlers) openingBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.drilldown.OpeningBalance(r.Context())
	if err != nil {
		h.server.fail(w, r, h.op("opening_balance"), err)
		return
	}
	NewJSONResponse().Body(balance).Write(w)
}

func (h dashboardHandlers) nagdiTutra(w http.ResponseWriter, r *http.Request) {
	win, err := h.window(r)
	if err != nil {
		h.server.fail(w, r, h.op("nagdi_tutra"), err)
		return
	}
	total, err := h.drilldown.NagdiTutra(r.Context(), win)
	if err != nil {
		h.server.fail(w, r, h.op("nagdi_tutra"), err)
		return
	}
	NewJSONResponse().Body(total).Write(w)
}

// writeWorkbook renders f in memory first so a failure can still be
// reported as an error response.
func (s *Server) writeWorkbook(w http.ResponseWriter, r *http.Request, op, filename string, f *excelize.File) {
	var buf bytes.Buffer
	if err := export.Write(&buf, f); err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// fileSlug keeps letters, digits and dashes of s, lowercased.
func fileSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "all"
	}
	return out
}
