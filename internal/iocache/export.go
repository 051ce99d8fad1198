package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/parquet"
)

// ExecuteAnalysisExport writes the analysis history of store to three Parquet
// files prefixed with outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	alerts, err := store.GetAllSpikeAlerts()
	if err != nil {
		return fmt.Errorf("failed to retrieve spike alerts: %w", err)
	}
	docs, err := store.GetAllSyncDocuments()
	if err != nil {
		return fmt.Errorf("failed to retrieve sync documents: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	alertsFile := outputFile + ".spike_alerts.parquet"
	if err := parquet.WriteSpikeAlertsParquet(parquet.ConvertSpikeAlertRecords(alerts), alertsFile); err != nil {
		return fmt.Errorf("failed to write spike alerts: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d spike alerts to: %s\n", len(alerts), alertsFile)

	docsFile := outputFile + ".sync_documents.parquet"
	if err := parquet.WriteSyncDocumentsParquet(parquet.ConvertSyncDocumentRecords(docs), docsFile); err != nil {
		return fmt.Errorf("failed to write sync documents: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d sync documents to: %s\n", len(docs), docsFile)
	return nil
}
