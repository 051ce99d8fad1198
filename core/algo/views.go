package algo

import (
	"sort"
	"strings"
	"time"

	"github.com/semiconip/patentspike/schema"
)

// MonthlyTrend counts publications per YYYY-MM. When months is positive only
// patents in [now-months, now] are counted. Months are returned in ascending order.
func MonthlyTrend(company string, patents []schema.Patent, now time.Time, months int) []schema.TrendPoint {
	from := time.Time{}
	if months > 0 {
		from = MonthsBefore(now, months)
	}
	counts := make(map[string]int)
	for _, p := range patents {
		od, ok := ParseOpenDate(p.OpenDate, now.Location())
		if !ok {
			continue
		}
		if months > 0 && !inWindow(od, from, now) {
			continue
		}
		counts[od.Format("2006-01")]++
	}
	out := make([]schema.TrendPoint, 0, len(counts))
	for m, c := range counts {
		out = append(out, schema.TrendPoint{Month: m, Company: company, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TechDistribution counts patents per technology category, including the catch-all.
func TechDistribution(patents []schema.Patent) map[string]int {
	counts := make(map[string]int)
	for _, p := range patents {
		counts[ClassifyTech(p.InventionTitle, p.Abstract)]++
	}
	return counts
}

// IPCDistribution counts patents per level-2 label.
func IPCDistribution(patents []schema.Patent) map[string]int {
	counts := make(map[string]int)
	for _, p := range patents {
		counts[ClassifyIPC(p.IPCNumber).Level2]++
	}
	return counts
}

// TopIPCCodes ranks the first IPC code of each patent, cut to its first seven characters.
func TopIPCCodes(patents []schema.Patent, n int) []schema.LabelCount {
	counts := make(map[string]int)
	for _, p := range patents {
		code := []rune(schema.FirstIPC(p.IPCNumber))
		if len(code) == 0 {
			continue
		}
		if len(code) > 7 {
			code = code[:7]
		}
		counts[string(code)]++
	}
	return schema.TopN(schema.SortedCounts(counts), n)
}

// BuildIPCTree counts patents by their IPC hierarchy.
func BuildIPCTree(patents []schema.Patent) schema.IPCTree {
	tree := schema.IPCTree{}
	for _, p := range patents {
		tree.Add(ClassifyIPC(p.IPCNumber))
	}
	return tree
}

// TreemapView selects which hierarchy a treemap is built from.
type TreemapView string

// Treemap views.
const (
	TreemapIPC  TreemapView = "ipc"  // company > level1 > level2 > level3
	TreemapTech TreemapView = "tech" // company > level1 > technology category
)

// BuildTreemapRows aggregates patents into treemap leaves sorted by count descending.
func BuildTreemapRows(company string, patents []schema.Patent, view TreemapView) []schema.TreemapRow {
	type key struct{ a, b, c string }
	counts := make(map[key]int)
	for _, p := range patents {
		n := ClassifyIPC(p.IPCNumber)
		k := key{n.Level1, n.Level2, n.Level3}
		if view == TreemapTech {
			k = key{n.Level1, ClassifyTech(p.InventionTitle, p.Abstract), ""}
		}
		counts[k]++
	}
	rows := make([]schema.TreemapRow, 0, len(counts))
	for k, c := range counts {
		path := []string{k.a, k.b}
		if view != TreemapTech {
			path = append(path, k.c)
		}
		rows = append(rows, schema.TreemapRow{Company: company, Path: path, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return joinPath(rows[i].Path) < joinPath(rows[j].Path)
	})
	return rows
}

func joinPath(path []string) string {
	return strings.Join(path, "\x00")
}

// Heatmap lays out spike ratios as company rows by category columns.
// Missing categories read as zero.
func Heatmap(reports []schema.CompanyReport) []schema.HeatmapRow {
	rows := make([]schema.HeatmapRow, len(reports))
	for i, r := range reports {
		ratios := make(map[string]float64, len(techCategories))
		for _, name := range TechCategoryNames() {
			ratios[name] = 0
		}
		for _, s := range r.Spikes {
			ratios[s.Category] = s.SpikeRatioPct
		}
		rows[i] = schema.HeatmapRow{Company: r.Company, Ratios: ratios}
	}
	return rows
}
