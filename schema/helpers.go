package schema

import (
	"sort"
	"strings"
)

// FirstIPC returns the first code of a semicolon-delimited IPC string, trimmed.
func FirstIPC(code string) string {
	first, _, _ := strings.Cut(code, ";")
	return strings.TrimSpace(first)
}

// FormatDate renders a YYYYMMDD string as YYYY-MM-DD. Other inputs are returned unchanged.
func FormatDate(d string) string {
	if len(d) < 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:8]
}

// SortedCounts turns a count map into a slice ordered by count descending then label.
func SortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, LabelCount{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// TopN truncates a ranked slice to at most n entries.
func TopN(counts []LabelCount, n int) []LabelCount {
	if n <= 0 || len(counts) <= n {
		return counts
	}
	return counts[:n]
}
