package algo

import (
	"math"
	"sort"
	"time"

	"github.com/semiconip/patentspike/schema"
)

// SpikeOptions tunes DetectSpikes.
type SpikeOptions struct {
	ThresholdPct    float64 // Strategic Spike cutoff, defaults to 200 when not positive
	NewActivityTier bool    // report categories with no history as New Activity instead of Normal
}

// DefaultSpikeOptions returns the options used when nothing is configured.
func DefaultSpikeOptions() SpikeOptions {
	return SpikeOptions{ThresholdPct: schema.DefaultThresholdPct}
}

// DetectSpikes compares, per technology category, the publications of the most recent
// month against the monthly average of the eleven months before it.
//
// Only patents with a parseable openDate in [now-12 months, now] count, and only the
// fixed categories are considered. Categories without recent publications produce no
// alert. The result is sorted by ratio, highest first, with ties in category order.
func DetectSpikes(patents []schema.Patent, now time.Time, opts SpikeOptions) []schema.SpikeAlert {
	if opts.ThresholdPct <= 0 {
		opts.ThresholdPct = schema.DefaultThresholdPct
	}
	cutoff1m := MonthsBefore(now, 1)
	cutoff12m := MonthsBefore(now, 12)

	dates := make(map[string][]time.Time, len(techCategories))
	for _, p := range patents {
		od, ok := ParseOpenDate(p.OpenDate, now.Location())
		if !ok || !inWindow(od, cutoff12m, now) {
			continue
		}
		cat := ClassifyTech(p.InventionTitle, p.Abstract)
		if !IsTechCategory(cat) {
			continue
		}
		dates[cat] = append(dates[cat], od)
	}

	alerts := make([]schema.SpikeAlert, 0, len(dates))
	for _, c := range techCategories {
		recent, older := 0, 0
		for _, d := range dates[c.name] {
			if d.Before(cutoff1m) {
				older++
			} else {
				recent++
			}
		}
		if recent == 0 {
			continue
		}
		avg := 0.0
		if older > 0 {
			avg = float64(older) / schema.HistoryMonths
		}
		ratio := 0.0
		if avg > 0 {
			ratio = float64(recent) / avg * 100
		}
		signal := classifySignal(ratio, avg, opts)
		alerts = append(alerts, schema.SpikeAlert{
			Category:      c.name,
			Count1M:       recent,
			Avg11M:        round1(avg),
			SpikeRatioPct: round1(ratio),
			Signal:        signal,
			Color:         schema.SignalColor(signal),
			Blink:         signal == schema.StrategicSpike,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].SpikeRatioPct > alerts[j].SpikeRatioPct
	})
	return alerts
}

// classifySignal assigns a tier to an unrounded ratio.
func classifySignal(ratio, avg float64, opts SpikeOptions) schema.Signal {
	switch {
	case avg == 0 && opts.NewActivityTier:
		return schema.NewActivity
	case ratio >= opts.ThresholdPct:
		return schema.StrategicSpike
	case ratio >= schema.EmergingSignalPct:
		return schema.EmergingSignal
	default:
		return schema.NormalSignal
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
