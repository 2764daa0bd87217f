package http

import (
	"net/http"

	"ledgerdash/internal/core"
	"ledgerdash/internal/export"
	"ledgerdash/internal/services"
)

func (s *Server) monthlyMatrix(r *http.Request) (*services.MonthlyMatrix, error) {
	fy, err := core.ResolveFiscalYear(ParseTimeQuery(r.URL.Query()), s.clock())
	if err != nil {
		return nil, err
	}
	return s.comparison.Monthly(r.Context(), fy, s.loc)
}

func (s *Server) handleMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	matrix, err := s.monthlyMatrix(r)
	if err != nil {
		s.fail(w, r, "monthly_comparison", err)
		return
	}
	NewJSONResponse().Body(matrix).Write(w)
}

func (s *Server) handleMonthlyComparisonExport(w http.ResponseWriter, r *http.Request) {
	matrix, err := s.monthlyMatrix(r)
	if err != nil {
		s.fail(w, r, "monthly_comparison.export", err)
		return
	}
	f, err := export.MonthlyWorkbook(matrix)
	if err != nil {
		s.fail(w, r, "monthly_comparison.export", err)
		return
	}
	s.writeWorkbook(w, r, "monthly_comparison.export", "monthly-comparison-"+matrix.FiscalYear+".xlsx", f)
}

func (s *Server) handleMonthItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.comparison.Items(r.Context())
	if err != nil {
		s.fail(w, r, "month_items", err)
		return
	}
	NewJSONResponse().Body(map[string]any{"items": items}).Write(w)
}

func (s *Server) handleCustomCompare(w http.ResponseWriter, r *http.Request) {
	var req services.CustomCompareRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "custom_compare", err)
		return
	}
	for i, item := range req.Items {
		req.Items[i] = sanitizeInput(item)
	}

	result, err := s.comparison.Custom(r.Context(), req, s.clock())
	if err != nil {
		s.fail(w, r, "custom_compare", err)
		return
	}
	NewJSONResponse().Body(result).Write(w)
}
