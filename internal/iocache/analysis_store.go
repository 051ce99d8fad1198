package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable  = "patentspike_analysis_runs"
	spikeAlertsTable   = "patentspike_spike_alerts"
	syncDocumentsTable = "patentspike_sync_documents"
)

// analysisTables lists the analysis tables in creation order.
var analysisTables = []string{analysisRunsTable, spikeAlertsTable, syncDocumentsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore opens the store and migrates it to the latest schema.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (*AnalysisStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}
	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// table returns the quoted name of an analysis table.
func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// formatTime converts a time.Time to the storage format of the backend.
func (as *AnalysisStoreImpl) formatTime(t time.Time) any {
	if as.backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING analysis_id`, as.table(analysisRunsTable))
		err = as.db.QueryRow(query, startTime, string(configJSON)).Scan(&analysisID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, as.table(analysisRunsTable))
		var result sql.Result
		result, err = as.db.Exec(query, as.formatTime(startTime), string(configJSON))
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalPatents, totalSpikes int) error {
	if as.db == nil {
		return nil
	}

	var started timeValue
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, as.table(analysisRunsTable), placeholderList(as.backend, 1))
	if err := as.db.QueryRow(query, analysisID).Scan(&started); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(started.Time).Milliseconds()

	ph := placeholders(as.backend, 5)
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_patents_analyzed = %s, total_spikes = %s WHERE analysis_id = %s`,
		as.table(analysisRunsTable), ph[0], ph[1], ph[2], ph[3], ph[4])
	if _, err := as.db.Exec(update, as.formatTime(endTime), durationMs, totalPatents, totalSpikes, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordSpikeAlert stores one alert row.
func (as *AnalysisStoreImpl) RecordSpikeAlert(analysisID int64, company string, analysisTime time.Time, alert schema.SpikeAlert) error {
	if as.db == nil {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (analysis_id, company, category, analysis_time, count_1m, avg_11m,
		spike_ratio_pct, signal_label, color, blink) VALUES (%s)`, as.table(spikeAlertsTable), placeholderList(as.backend, 10))
	_, err := as.db.Exec(query, analysisID, company, alert.Category, as.formatTime(analysisTime),
		alert.Count1M, alert.Avg11M, alert.SpikeRatioPct, string(alert.Signal), alert.Color, alert.Blink)
	if err != nil {
		return fmt.Errorf("failed to insert spike alert: %w", err)
	}
	return nil
}

// RecordSyncDocument stores a dashboard document under a fresh UUID.
func (as *AnalysisStoreImpl) RecordSyncDocument(analysisID int64, collection string, payload []byte, createdAt time.Time) (string, error) {
	documentID := uuid.NewString()
	if as.db == nil {
		return documentID, nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (document_id, analysis_id, collection, payload, created_at) VALUES (%s)`,
		as.table(syncDocumentsTable), placeholderList(as.backend, 5))
	if _, err := as.db.Exec(query, documentID, analysisID, collection, string(payload), as.formatTime(createdAt)); err != nil {
		return "", fmt.Errorf("failed to insert sync document: %w", err)
	}
	return documentID, nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runs := as.table(analysisRunsTable)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeValue
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime = last.Time
		status.OldestRunTime = oldest.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_patents_analyzed), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalPatentsAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total patents analyzed: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", as.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalSpikeAlerts = int(status.TableSizes[spikeAlertsTable])
	status.TotalSyncDocuments = int(status.TableSizes[syncDocumentsTable])
	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs ordered by ID.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT analysis_id, start_time, end_time, run_duration_ms, total_patents_analyzed,
		total_spikes, config_params FROM %s ORDER BY analysis_id`, as.table(analysisRunsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var started timeValue
		var ended nullTimeValue
		if err := rows.Scan(&record.AnalysisID, &started, &ended, &record.RunDurationMs,
			&record.TotalPatentsAnalyzed, &record.TotalSpikes, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		record.StartTime = started.Time
		if ended.Valid {
			t := ended.Time
			record.EndTime = &t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllSpikeAlerts retrieves all alerts ordered by run, company and category.
func (as *AnalysisStoreImpl) GetAllSpikeAlerts() ([]schema.SpikeAlertRecord, error) {
	if as.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT analysis_id, company, category, analysis_time, count_1m, avg_11m,
		spike_ratio_pct, signal_label, color, blink FROM %s ORDER BY analysis_id, company, category`, as.table(spikeAlertsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query spike alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SpikeAlertRecord
	for rows.Next() {
		var record schema.SpikeAlertRecord
		var at timeValue
		if err := rows.Scan(&record.AnalysisID, &record.Company, &record.Category, &at, &record.Count1M,
			&record.Avg11M, &record.SpikeRatioPct, &record.Signal, &record.Color, &record.Blink); err != nil {
			return nil, fmt.Errorf("failed to scan spike alert: %w", err)
		}
		record.AnalysisTime = at.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spike alerts: %w", err)
	}
	return results, nil
}

// GetAllSyncDocuments retrieves all dashboard documents ordered by creation.
func (as *AnalysisStoreImpl) GetAllSyncDocuments() ([]schema.SyncDocumentRecord, error) {
	if as.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT document_id, analysis_id, collection, payload, created_at FROM %s
		ORDER BY created_at, document_id`, as.table(syncDocumentsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SyncDocumentRecord
	for rows.Next() {
		var record schema.SyncDocumentRecord
		var created timeValue
		if err := rows.Scan(&record.DocumentID, &record.AnalysisID, &record.Collection, &record.Payload, &created); err != nil {
			return nil, fmt.Errorf("failed to scan sync document: %w", err)
		}
		record.CreatedAt = created.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync documents: %w", err)
	}
	return results, nil
}

// timeLayouts are the textual encodings a driver may hand back for a time column.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// timeValue scans a time column whether the driver returns time.Time or text.
type timeValue struct {
	Time time.Time
}

// Scan implements sql.Scanner.
func (tv *timeValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		tv.Time = v
		return nil
	case string:
		return tv.parse(v)
	case []byte:
		return tv.parse(string(v))
	case nil:
		return fmt.Errorf("unexpected NULL time")
	default:
		return fmt.Errorf("unsupported time type %T", src)
	}
}

func (tv *timeValue) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			tv.Time = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}

// nullTimeValue is a timeValue that tolerates NULL.
type nullTimeValue struct {
	timeValue
	Valid bool
}

// Scan implements sql.Scanner.
func (nv *nullTimeValue) Scan(src any) error {
	if src == nil {
		nv.Valid = false
		return nil
	}
	nv.Valid = true
	return nv.timeValue.Scan(src)
}
