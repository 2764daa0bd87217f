package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ledgerdash/internal/core"
)

// Values made only of digits and separators get their thousands commas removed.
var separatedNumber = regexp.MustCompile(`^[\d,.\- ]+$`)

// Normalizer turns raw source rows into canonical records.
type Normalizer struct {
	schema *Schema
}

func NewNormalizer(s *Schema) *Normalizer {
	return &Normalizer{schema: s}
}

// Fields returns the canonical columns in schema order.
func (n *Normalizer) Fields() []string {
	return append([]string(nil), n.schema.Fields...)
}

// Schema returns the alias table in use.
func (n *Normalizer) Schema() *Schema {
	return n.schema
}

// Normalize maps every raw record, preserving order. Unknown headers are dropped.
func (n *Normalizer) Normalize(raws []core.RawRecord) []core.Record {
	out := make([]core.Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Record(raw))
	}
	return out
}

// Record normalizes a single row. When several headers resolve to the same
// column the best-ranked non-empty one wins; ties go to the header that
// sorts first.
func (n *Normalizer) Record(raw core.RawRecord) core.Record {
	headers := make([]string, 0, len(raw))
	for h := range raw {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	rec := make(core.Record, len(raw))
	ranks := make(map[string]int, len(raw))
	for _, h := range headers {
		field, rank, ok := n.schema.Resolve(h)
		if !ok {
			continue
		}
		value := CleanValue(raw[h])
		prev, seen := ranks[field]
		switch {
		case !seen:
		case value == "":
			continue
		case rec[field] != "" && prev <= rank:
			continue
		}
		rec[field] = value
		ranks[field] = rank
	}
	return rec
}

// CleanValue unwraps tagged scalars, renders the scalar as text and strips
// thousands separators from purely numeric strings.
func CleanValue(v any) string {
	for {
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		inner, ok := m["value"]
		if !ok {
			return ""
		}
		v = inner
	}

	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case json.Number:
		s = val.String()
	case bool:
		s = strconv.FormatBool(val)
	default:
		s = fmt.Sprint(val)
	}

	s = strings.TrimSpace(s)
	if separatedNumber.MatchString(s) {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	}
	return s
}
