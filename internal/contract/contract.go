// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/semiconip/patentspike/schema"
)

// PatentSource fetches published patents for one applicant query.
// This allows the analysis to run against a fake source in tests.
type PatentSource interface {
	// SearchPatents returns patents whose publication date lies in [start, end],
	// reading at most maxPages pages from the upstream service.
	SearchPatents(ctx context.Context, query string, start, end time.Time, maxPages int) ([]schema.Patent, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their alerts.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalPatents, totalSpikes int) error

	// RecordSpikeAlert stores one alert produced for a company
	RecordSpikeAlert(analysisID int64, company string, analysisTime time.Time, alert schema.SpikeAlert) error

	// RecordSyncDocument stores a dashboard document and returns its document ID
	RecordSyncDocument(analysisID int64, collection string, payload []byte, createdAt time.Time) (string, error)

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns retrieves all analysis runs
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllSpikeAlerts retrieves all recorded spike alerts
	GetAllSpikeAlerts() ([]schema.SpikeAlertRecord, error)

	// GetAllSyncDocuments retrieves all recorded dashboard documents
	GetAllSyncDocuments() ([]schema.SyncDocumentRecord, error)

	// Close closes the underlying connection
	Close() error
}

// Mailer delivers an HTML message.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}
