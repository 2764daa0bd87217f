package google

import (
	"fmt"
	"strings"

	"ledgerdash/internal/core"
)

// recordsFromValues converts a values matrix into raw records keyed by the
// header row. Short rows are padded with empty cells; empty rows are skipped.
func recordsFromValues(values [][]interface{}) []core.RawRecord {
	if len(values) == 0 {
		return nil
	}
	header := toStrings(values[0])
	out := make([]core.RawRecord, 0, len(values)-1)
	for _, row := range values[1:] {
		cells := toStrings(row)
		if allEmpty(cells) {
			continue
		}
		rec := make(core.RawRecord, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			rec[h] = safeGet(cells, i)
		}
		out = append(out, rec)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
