package schema

import "time"

// AnalysisRunRecord represents a row from the patentspike_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID           int64
	StartTime            time.Time
	EndTime              *time.Time
	RunDurationMs        *int32
	TotalPatentsAnalyzed int32
	TotalSpikes          int32
	ConfigParams         *string
}

// SpikeAlertRecord represents a row from the patentspike_spike_alerts table.
type SpikeAlertRecord struct {
	AnalysisID    int64
	Company       string
	Category      string
	AnalysisTime  time.Time
	Count1M       int32
	Avg11M        float64
	SpikeRatioPct float64
	Signal        string
	Color         string
	Blink         bool
}

// SyncDocumentRecord represents a row from the patentspike_sync_documents table.
type SyncDocumentRecord struct {
	DocumentID string
	AnalysisID int64
	Collection string
	Payload    string
	CreatedAt  time.Time
}
