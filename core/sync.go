package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/outwriter"
	"github.com/semiconip/patentspike/internal/prompt"
	"github.com/semiconip/patentspike/schema"
	"go.uber.org/zap"
)

// syncDocument is one document bound for a dashboard collection.
type syncDocument struct {
	Collection string
	Value      any
}

// SyncBundle is the dry-run view of everything a sync would store.
type SyncBundle struct {
	Trends schema.DashboardPayload     `json:"dashboard_trends"`
	Stats  schema.Overview             `json:"dashboard_stats"`
	Alerts []schema.EnrichedSpikeAlert `json:"patent_alerts"`
}

// BuildSyncBundle derives the three dashboard documents of a run.
func BuildSyncBundle(report schema.AnalysisReport) SyncBundle {
	overview := BuildOverview(report)
	overview.Trend = nil // the trend travels in dashboard_trends

	alerts := []schema.EnrichedSpikeAlert{}
	for _, r := range report.Companies {
		var strategic []schema.SpikeAlert
		for _, s := range r.Spikes {
			if s.Signal == schema.StrategicSpike {
				strategic = append(strategic, s)
			}
		}
		alerts = append(alerts, schema.EnrichSpikes(r.Company, strategic)...)
	}
	return SyncBundle{
		Trends: BuildDashboardPayload(report),
		Stats:  overview,
		Alerts: alerts,
	}
}

func (b SyncBundle) documents() []syncDocument {
	return []syncDocument{
		{Collection: prompt.CollectionTrends, Value: b.Trends},
		{Collection: prompt.CollectionStats, Value: b.Stats},
		{Collection: prompt.CollectionAlerts, Value: b.Alerts},
	}
}

// marshalDocument encodes without HTML escaping so Korean labels and symbols stay readable.
func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExecuteSync runs the analysis and publishes the dashboard documents to the sync file
// and the analysis store. With --dry-run the documents are only printed.
func ExecuteSync(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, analysisID, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	bundle := BuildSyncBundle(report)

	if cfg.DryRun {
		return outwriter.WriteWithFile(cfg.OutputFile, func(w io.Writer) error {
			data, err := marshalDocument(bundle)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}, "Wrote sync preview")
	}

	trends, err := marshalDocument(bundle.Trends)
	if err != nil {
		return fmt.Errorf("encode dashboard payload: %w", err)
	}
	if err := os.WriteFile(cfg.SyncFile, trends, 0o644); err != nil {
		return fmt.Errorf("write sync file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote dashboard payload to %s\n", cfg.SyncFile)

	var store contract.AnalysisStore
	if mgr != nil {
		store = mgr.GetAnalysisStore()
	}
	if store == nil || analysisID == 0 {
		contract.Logger().Info("analysis store not configured, skipping document sync")
		return nil
	}
	return recordSyncDocuments(store, analysisID, bundle, time.Now())
}

// recordSyncDocuments stores each dashboard document under its collection.
func recordSyncDocuments(store contract.AnalysisStore, analysisID int64, bundle SyncBundle, createdAt time.Time) error {
	for _, doc := range bundle.documents() {
		data, err := marshalDocument(doc.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", doc.Collection, err)
		}
		id, err := store.RecordSyncDocument(analysisID, doc.Collection, data, createdAt)
		if err != nil {
			return fmt.Errorf("record %s document: %w", doc.Collection, err)
		}
		contract.Logger().Info("synced dashboard document",
			zap.String("collection", doc.Collection),
			zap.String("document_id", id))
	}
	return nil
}
