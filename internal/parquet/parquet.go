// Package parquet exports analysis history and patent lists to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/semiconip/patentspike/schema"
)

// AnalysisRun maps to the patentspike_analysis_runs table.
type AnalysisRun struct {
	AnalysisID           int64      `parquet:"analysis_id,snappy"`
	StartTime            time.Time  `parquet:"start_time,snappy"`
	EndTime              *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs        *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalPatentsAnalyzed int32      `parquet:"total_patents_analyzed,snappy"`
	TotalSpikes          int32      `parquet:"total_spikes,snappy"`
	ConfigParams         *string    `parquet:"config_params,optional,snappy"`
}

// SpikeAlert maps to the patentspike_spike_alerts table.
type SpikeAlert struct {
	AnalysisID    int64     `parquet:"analysis_id,snappy"`
	Company       string    `parquet:"company,snappy,dict"`
	Category      string    `parquet:"category,snappy,dict"`
	AnalysisTime  time.Time `parquet:"analysis_time,snappy"`
	Count1M       int32     `parquet:"count_1m,snappy"`
	Avg11M        float64   `parquet:"avg_11m,snappy"`
	SpikeRatioPct float64   `parquet:"spike_ratio_pct,snappy"`
	Signal        string    `parquet:"signal,snappy,dict"`
	Color         string    `parquet:"color,snappy,dict"`
	Blink         bool      `parquet:"blink,snappy"`
}

// SyncDocument maps to the patentspike_sync_documents table.
type SyncDocument struct {
	DocumentID string    `parquet:"document_id,snappy"`
	AnalysisID int64     `parquet:"analysis_id,snappy"`
	Collection string    `parquet:"collection,snappy,dict"`
	Payload    string    `parquet:"payload,snappy"`
	CreatedAt  time.Time `parquet:"created_at,snappy"`
}

// PatentRow is one classified patent of a company.
type PatentRow struct {
	Company           string `parquet:"company,snappy,dict"`
	ApplicationNumber string `parquet:"application_number,snappy"`
	InventionTitle    string `parquet:"invention_title,snappy"`
	ApplicantName     string `parquet:"applicant_name,snappy,dict"`
	OpenDate          string `parquet:"open_date,snappy"`
	ApplicationDate   string `parquet:"application_date,snappy"`
	IPCNumber         string `parquet:"ipc_number,snappy"`
	RegisterStatus    string `parquet:"register_status,snappy,dict"`
	TechCategory      string `parquet:"tech_category,snappy,dict"`
	IPCLevel1         string `parquet:"ipc_level1,snappy,dict"`
	IPCLevel2         string `parquet:"ipc_level2,snappy,dict"`
	IPCLevel3         string `parquet:"ipc_level3,snappy,dict"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		_ = file.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSpikeAlertsParquet writes spike alerts to a Parquet file.
func WriteSpikeAlertsParquet(data []SpikeAlert, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSyncDocumentsParquet writes dashboard documents to a Parquet file.
func WriteSyncDocumentsParquet(data []SyncDocument, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePatentsParquet writes classified patents to a Parquet file.
func WritePatentsParquet(data []PatentRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRunRecords converts store records for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, r := range records {
		result[i] = AnalysisRun{
			AnalysisID:           r.AnalysisID,
			StartTime:            r.StartTime,
			EndTime:              r.EndTime,
			RunDurationMs:        r.RunDurationMs,
			TotalPatentsAnalyzed: r.TotalPatentsAnalyzed,
			TotalSpikes:          r.TotalSpikes,
			ConfigParams:         r.ConfigParams,
		}
	}
	return result
}

// ConvertSpikeAlertRecords converts store records for Parquet export.
func ConvertSpikeAlertRecords(records []schema.SpikeAlertRecord) []SpikeAlert {
	result := make([]SpikeAlert, len(records))
	for i, r := range records {
		result[i] = SpikeAlert{
			AnalysisID:    r.AnalysisID,
			Company:       r.Company,
			Category:      r.Category,
			AnalysisTime:  r.AnalysisTime,
			Count1M:       r.Count1M,
			Avg11M:        r.Avg11M,
			SpikeRatioPct: r.SpikeRatioPct,
			Signal:        r.Signal,
			Color:         r.Color,
			Blink:         r.Blink,
		}
	}
	return result
}

// ConvertSyncDocumentRecords converts store records for Parquet export.
func ConvertSyncDocumentRecords(records []schema.SyncDocumentRecord) []SyncDocument {
	result := make([]SyncDocument, len(records))
	for i, r := range records {
		result[i] = SyncDocument{
			DocumentID: r.DocumentID,
			AnalysisID: r.AnalysisID,
			Collection: r.Collection,
			Payload:    r.Payload,
			CreatedAt:  r.CreatedAt,
		}
	}
	return result
}

// ConvertClassifiedPatents converts classified patents to parquet rows.
func ConvertClassifiedPatents(patents []schema.ClassifiedPatent) []PatentRow {
	rows := make([]PatentRow, len(patents))
	for i, p := range patents {
		rows[i] = PatentRow{
			Company:           p.Company,
			ApplicationNumber: p.ApplicationNumber,
			InventionTitle:    p.InventionTitle,
			ApplicantName:     p.ApplicantName,
			OpenDate:          p.OpenDate,
			ApplicationDate:   p.ApplicationDate,
			IPCNumber:         p.IPCNumber,
			RegisterStatus:    p.RegisterStatus,
			TechCategory:      p.TechCategory,
			IPCLevel1:         p.IPC.Level1,
			IPCLevel2:         p.IPC.Level2,
			IPCLevel3:         p.IPC.Level3,
		}
	}
	return rows
}
