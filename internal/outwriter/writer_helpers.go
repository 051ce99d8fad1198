package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// ErrParquetUnsupported is returned by views that have no columnar form.
var ErrParquetUnsupported = errors.New("parquet output is only supported by the patents view")

// WriteWithFile opens outputFile (stdout when empty), hands it to writer and reports
// the destination on stderr when a file was written.
func WriteWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// floatFormatter renders floats with a fixed number of decimals.
func floatFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// view bundles the per-format writers of one output.
type view struct {
	json      func(io.Writer) error
	csvHeader []string
	csvRows   func(*csv.Writer) error
	text      func(io.Writer) error
}

// render dispatches a view on the configured output format.
func render(cfg *contract.Config, v view) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := WriteWithFile(cfg.OutputFile, v.json, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := WriteWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, v.csvHeader, v.csvRows)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return ErrParquetUnsupported
	default:
		// Default to human-readable table
		return WriteWithFile(cfg.OutputFile, v.text, "Wrote table")
	}
	return nil
}

// newTable returns a table with the shared right-aligned layout.
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// renderTable loads rows into the table and renders it.
func renderTable(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// signalLabel picks the colored or plain label depending on the config.
func signalLabel(cfg *contract.Config, s schema.Signal) string {
	if cfg.UseColors {
		return contract.GetColorLabel(s, cfg.UseEmojis)
	}
	return contract.GetPlainLabel(s, cfg.UseEmojis)
}

// writeFooter prints the run summary shared by the table views.
func writeFooter(w io.Writer, cfg *contract.Config, companies int, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "Analyzed %d companies in %v with %d workers. Cache backend: %s\n",
		companies, duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}
