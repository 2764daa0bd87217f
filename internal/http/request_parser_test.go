package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"ledgerdash/internal/core"
	"ledgerdash/internal/services"
)

func TestParseTimeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  core.TimeQuery
	}{
		{
			name:  "all values provided",
			query: url.Values{"start": {"2025-04-01"}, "end": {"2025-04-30"}, "month": {"4"}, "year": {"2025"}},
			want:  core.TimeQuery{Start: "2025-04-01", End: "2025-04-30", Month: "4", Year: "2025"},
		},
		{
			name:  "only month and year",
			query: url.Values{"month": {" 6 "}, "year": {"2024"}},
			want:  core.TimeQuery{Month: "6", Year: "2024"},
		},
		{
			name:  "empty query",
			query: url.Values{},
			want:  core.TimeQuery{},
		},
		{
			name:  "control characters are stripped",
			query: url.Values{"start": {"2025-04-01\x00"}},
			want:  core.TimeQuery{Start: "2025-04-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimeQuery(tt.query)
			if got != tt.want {
				t.Errorf("ParseTimeQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSelections(t *testing.T) {
	query := url.Values{"plCode": {" Sales "}, "groupCode": {"Rice"}, "productName": {"Ram"}}

	got := ParseSelections(query, services.LedgerHierarchy, 2)
	if len(got) != 2 || got[0] != "Sales" || got[1] != "Rice" {
		t.Errorf("ParseSelections(depth 2) = %q", got)
	}

	got = ParseSelections(query, services.LedgerHierarchy, 5)
	if len(got) != 3 || got[2] != "Ram" {
		t.Errorf("ParseSelections(depth 5) = %q", got)
	}

	got = ParseSelections(url.Values{}, services.BankHierarchy, 1)
	if len(got) != 1 || got[0] != "" {
		t.Errorf("ParseSelections(empty) = %q", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"email":"a@b.c"}`},
		{name: "empty body", body: ``, wantErr: "request body is required"},
		{name: "malformed", body: `{"email":`, wantErr: "malformed JSON body"},
		{name: "trailing document", body: `{} {}`, wantErr: "single JSON document"},
		{name: "oversized", body: `{"email":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v struct {
				Email string `json:"email"`
			}
			err := DecodeJSON(httptest.NewRecorder(), req, &v)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("DecodeJSON() error = %v, want %q", err, tt.wantErr)
			}
			if !core.IsValidation(err) {
				t.Errorf("DecodeJSON() error is not a validation error: %v", err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"a\x01b", "ab"},
		{"tab\there", "tab\there"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
