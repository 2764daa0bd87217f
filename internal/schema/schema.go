// Package schema maps the open set of spreadsheet header spellings onto the
// closed canonical column set and normalizes source rows.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"ledgerdash/internal/core"
)

//go:embed aliases.yaml
var defaultTable []byte

// Columns the pipeline reads. A table missing any of them is rejected.
var requiredFields = []string{
	core.FieldTimestamp, core.FieldDate, core.FieldName, core.FieldPLCode,
	core.FieldBSCode, core.FieldGroupingCode, core.FieldProductName,
	core.FieldQuantity, core.FieldQnty, core.FieldRate, core.FieldAmount,
	core.FieldStockQty,
}

// Schema is the alias table: canonical columns, header aliases, fallback
// headers and the preferred comparison row order.
type Schema struct {
	Fields         []string            `yaml:"fields"`
	Aliases        map[string][]string `yaml:"aliases"`
	Fallbacks      map[string][]string `yaml:"fallbacks"`
	ComparisonRows []string            `yaml:"comparison_rows"`

	exact    map[string]string
	fallback map[string]string
	compact  map[string]string
}

// Default returns the embedded alias table.
func Default() (*Schema, error) {
	return Parse(defaultTable)
}

// Load reads an alias table from path, or the embedded one when path is empty.
func Load(path string) (*Schema, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias table: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an alias table.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode alias table: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the table against the canonical schema and builds the
// lookup indexes. Every problem found is reported.
func (s *Schema) Validate() error {
	var errs []string
	s.exact = map[string]string{}
	s.fallback = map[string]string{}
	s.compact = map[string]string{}

	known := map[string]bool{}
	for _, f := range s.Fields {
		if Fold(f) != f {
			errs = append(errs, fmt.Sprintf("canonical field %q is not in folded form", f))
			continue
		}
		if known[f] {
			errs = append(errs, fmt.Sprintf("canonical field %q listed twice", f))
			continue
		}
		known[f] = true
		s.exact[f] = f
		s.compact[Compact(f)] = f
	}
	for _, f := range requiredFields {
		if !known[f] {
			errs = append(errs, fmt.Sprintf("required field %q missing from fields", f))
		}
	}

	claim := func(index map[string]string, key, field, kind string) {
		if prev, ok := index[key]; ok && prev != field {
			errs = append(errs, fmt.Sprintf("%s %q maps to both %q and %q", kind, key, prev, field))
			return
		}
		index[key] = field
	}

	for field, variants := range s.Aliases {
		if !known[field] {
			errs = append(errs, fmt.Sprintf("alias target %q is not a canonical field", field))
			continue
		}
		for _, v := range variants {
			key := Fold(v)
			if key == "" {
				errs = append(errs, fmt.Sprintf("empty alias for %q", field))
				continue
			}
			claim(s.exact, key, field, "alias")
			claim(s.compact, Compact(key), field, "compact alias")
		}
	}
	for field, variants := range s.Fallbacks {
		if !known[field] {
			errs = append(errs, fmt.Sprintf("fallback target %q is not a canonical field", field))
			continue
		}
		for _, v := range variants {
			key := Fold(v)
			if _, taken := s.exact[key]; taken {
				errs = append(errs, fmt.Sprintf("fallback %q already resolves directly", key))
				continue
			}
			claim(s.fallback, key, field, "fallback")
		}
	}

	seen := map[string]bool{}
	for _, row := range s.ComparisonRows {
		key := LabelKey(row)
		if key == "" || seen[key] {
			errs = append(errs, fmt.Sprintf("comparison row %q is empty or duplicated", row))
		}
		seen[key] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("alias table validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Resolve maps a raw header onto a canonical field. rank orders competing
// headers for the same field: 0 exact or alias, 1 space-insensitive match,
// 2 fallback header.
func (s *Schema) Resolve(header string) (field string, rank int, ok bool) {
	key := Fold(header)
	if key == "" {
		return "", 0, false
	}
	if f, ok := s.exact[key]; ok {
		return f, 0, true
	}
	if f, ok := s.fallback[key]; ok {
		return f, 2, true
	}
	if f, ok := s.compact[Compact(key)]; ok {
		return f, 1, true
	}
	return "", 0, false
}

// Fold lowercases a header, turns whitespace, underscores, dashes and
// non-breaking spaces into single spaces and drops other punctuation.
func Fold(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	var b strings.Builder
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-':
			pendingSpace = true
		}
	}
	return b.String()
}

// Compact is a folded key without spaces.
func Compact(folded string) string {
	return strings.ReplaceAll(folded, " ", "")
}

// LabelKey is the comparison key of a row label: lowercase alphanumerics only.
func LabelKey(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
