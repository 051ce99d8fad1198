package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/parquet"
	"github.com/semiconip/patentspike/schema"
)

// WriteTreemap outputs treemap leaves with their hierarchy path.
func WriteTreemap(rows []schema.TreemapRow, cfg *contract.Config) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, rows) },
		csvHeader: []string{"company", "path", "count"},
		csvRows:   func(w *csv.Writer) error { return writeTreemapCSV(w, rows) },
		text:      func(w io.Writer) error { return writeTreemapTable(w, rows, cfg) },
	})
}

func writeTreemapCSV(w *csv.Writer, rows []schema.TreemapRow) error {
	for _, r := range rows {
		if err := w.Write([]string{r.Company, strings.Join(r.Path, " > "), strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	return nil
}

func writeTreemapTable(w io.Writer, rows []schema.TreemapRow, cfg *contract.Config) error {
	table := newTable(w, "Company", "Path", "Count")
	var data [][]string
	for i, r := range rows {
		if i >= cfg.ResultLimit {
			break
		}
		data = append(data, []string{r.Company, strings.Join(r.Path, " > "), strconv.Itoa(r.Count)})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d treemap leaves (%s view)\n", len(data), len(rows), cfg.Treemap)
	return err
}

// WriteCompany outputs everything derived for one company.
func WriteCompany(report schema.CompanyReport, cfg *contract.Config) error {
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, report) },
		csvHeader: []string{"section", "label", "value"},
		csvRows:   func(w *csv.Writer) error { return writeCompanyCSV(w, report) },
		text:      func(w io.Writer) error { return writeCompanyText(w, report, cfg) },
	})
}

func writeCompanyCSV(w *csv.Writer, r schema.CompanyReport) error {
	fmtFloat := floatFormatter(1)
	var rows [][]string
	for _, p := range schema.Periods {
		rows = append(rows, []string{"bucket", p.Label, strconv.Itoa(r.Buckets[p.Label])})
	}
	for _, a := range r.Spikes {
		rows = append(rows, []string{"spike", a.Category, fmtFloat(a.SpikeRatioPct)})
	}
	for _, lc := range schema.SortedCounts(r.TechDistribution) {
		rows = append(rows, []string{"tech", lc.Label, strconv.Itoa(lc.Count)})
	}
	for _, lc := range schema.SortedCounts(r.IPCDistribution) {
		rows = append(rows, []string{"ipc", lc.Label, strconv.Itoa(lc.Count)})
	}
	for _, lc := range r.TopIPC {
		rows = append(rows, []string{"top_ipc", lc.Label, strconv.Itoa(lc.Count)})
	}
	return w.WriteAll(rows)
}

func writeCompanyText(w io.Writer, r schema.CompanyReport, cfg *contract.Config) error {
	fmtFloat := floatFormatter(1)
	if _, err := fmt.Fprintf(w, "%s (query %q, %d patents)\n", r.Company, r.Query, r.TotalPatents); err != nil {
		return err
	}
	parts := make([]string, 0, len(schema.Periods))
	for _, p := range schema.Periods {
		parts = append(parts, fmt.Sprintf("%s %d", p.Label, r.Buckets[p.Label]))
	}
	if _, err := fmt.Fprintf(w, "Periods: %s\n\n", strings.Join(parts, " | ")); err != nil {
		return err
	}

	spikes := newTable(w, "Category", "1M", "11M Avg", "Ratio %", "Signal")
	var data [][]string
	for _, a := range r.Spikes {
		data = append(data, []string{a.Category, strconv.Itoa(a.Count1M), fmtFloat(a.Avg11M), fmtFloat(a.SpikeRatioPct), signalLabel(cfg, a.Signal)})
	}
	if err := renderTable(spikes, data); err != nil {
		return err
	}

	if err := writeCountsTable(w, "Technology", schema.SortedCounts(r.TechDistribution)); err != nil {
		return err
	}
	if err := writeCountsTable(w, "IPC code", r.TopIPC); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\nIPC tree"); err != nil {
		return err
	}
	if err := writeIPCTree(w, r.IPCTree); err != nil {
		return err
	}

	if len(r.SamplePatents) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nRecent patents"); err != nil {
		return err
	}
	width := GetMaxTitleWidth(cfg)
	for _, p := range r.SamplePatents {
		if _, err := fmt.Fprintf(w, "  %s  %s  %s\n", schema.FormatDate(p.OpenDate), schema.FirstIPC(p.IPCNumber), contract.TruncateText(p.InventionTitle, width)); err != nil {
			return err
		}
	}
	return nil
}

func writeCountsTable(w io.Writer, label string, counts []schema.LabelCount) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	table := newTable(w, label, "Patents")
	var data [][]string
	for _, lc := range counts {
		data = append(data, []string{lc.Label, strconv.Itoa(lc.Count)})
	}
	return renderTable(table, data)
}

// writeIPCTree prints the hierarchy indented by level with subtotal counts.
func writeIPCTree(w io.Writer, tree schema.IPCTree) error {
	for _, l1 := range sortedKeys(tree) {
		l2s := tree[l1]
		total := 0
		for _, l3s := range l2s {
			for _, n := range l3s {
				total += n
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%d)\n", l1, total); err != nil {
			return err
		}
		for _, l2 := range sortedKeys(l2s) {
			sub := 0
			for _, n := range l2s[l2] {
				sub += n
			}
			if _, err := fmt.Fprintf(w, "  %s (%d)\n", l2, sub); err != nil {
				return err
			}
			for _, l3 := range sortedKeys(l2s[l2]) {
				if _, err := fmt.Fprintf(w, "    %s (%d)\n", l3, l2s[l2][l3]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var patentCSVHeader = []string{
	"company",
	"application_number",
	"invention_title",
	"applicant_name",
	"open_date",
	"application_date",
	"ipc_number",
	"register_status",
	"tech_category",
	"ipc_level1",
	"ipc_level2",
	"ipc_level3",
}

// WritePatents outputs the classified patent list, cut to the result limit.
// This is the only view that supports parquet, which requires an output file.
func WritePatents(patents []schema.ClassifiedPatent, cfg *contract.Config) error {
	if len(patents) > cfg.ResultLimit {
		patents = patents[:cfg.ResultLimit]
	}
	if cfg.Output == schema.ParquetOut {
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WritePatentsParquet(parquet.ConvertClassifiedPatents(patents), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	}
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, patents) },
		csvHeader: patentCSVHeader,
		csvRows:   func(w *csv.Writer) error { return writePatentsCSV(w, patents) },
		text:      func(w io.Writer) error { return writePatentsTable(w, patents, cfg) },
	})
}

func writePatentsCSV(w *csv.Writer, patents []schema.ClassifiedPatent) error {
	for _, p := range patents {
		rec := []string{
			p.Company,
			p.ApplicationNumber,
			p.InventionTitle,
			p.ApplicantName,
			p.OpenDate,
			p.ApplicationDate,
			p.IPCNumber,
			p.RegisterStatus,
			p.TechCategory,
			p.IPC.Level1,
			p.IPC.Level2,
			p.IPC.Level3,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writePatentsTable(w io.Writer, patents []schema.ClassifiedPatent, cfg *contract.Config) error {
	width := GetMaxTitleWidth(cfg)
	table := newTable(w, "#", "Company", "Open Date", "Title", "IPC", "Technology", "Status")
	var data [][]string
	for i, p := range patents {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			p.Company,
			schema.FormatDate(p.OpenDate),
			contract.TruncateText(p.InventionTitle, width),
			schema.FirstIPC(p.IPCNumber),
			p.TechCategory,
			p.RegisterStatus,
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d patents\n", len(patents))
	return err
}

// WriteCompanies outputs the company registry.
func WriteCompanies(companies []schema.Company, cfg *contract.Config) error {
	isDefault := make(map[string]bool, len(schema.DefaultCompanies))
	for _, n := range schema.DefaultCompanies {
		isDefault[n] = true
	}
	return render(cfg, view{
		json:      func(w io.Writer) error { return writeJSON(w, companies) },
		csvHeader: []string{"name", "name_en", "query", "default"},
		csvRows: func(w *csv.Writer) error {
			for _, c := range companies {
				if err := w.Write([]string{c.Name, c.NameEN, c.Query, strconv.FormatBool(isDefault[c.Name])}); err != nil {
					return err
				}
			}
			return nil
		},
		text: func(w io.Writer) error {
			table := newTable(w, "Name", "English", "KIPRIS Query", "Default")
			var data [][]string
			for _, c := range companies {
				mark := ""
				if isDefault[c.Name] {
					mark = "yes"
				}
				data = append(data, []string{c.Name, c.NameEN, c.Query, mark})
			}
			return renderTable(table, data)
		},
	})
}
