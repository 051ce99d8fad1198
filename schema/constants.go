package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// Signal represents the alert tier assigned to a spike.
	Signal string

	// DatabaseBackend represents the database backend for caching and reports.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All signal tiers, strongest first.
const (
	StrategicSpike Signal = "Strategic Spike"
	EmergingSignal Signal = "Emerging Signal"
	NewActivity    Signal = "New Activity" // only emitted when the new-activity tier is enabled
	NormalSignal   Signal = "Normal"
)

// Presentation colors that travel with each alert.
const (
	StrategicSpikeColor = "#00FF00"
	EmergingSignalColor = "#FFA500"
	NewActivityColor    = "#00BFFF"
	NormalColor         = "#AAAAAA"
)

// Detection parameters.
const (
	DefaultThresholdPct = 200.0
	MinThresholdPct     = 100.0
	MaxThresholdPct     = 500.0
	EmergingSignalPct   = 150.0 // fixed, not configurable
	HistoryMonths       = 11.0  // months averaged behind the most recent one
)

// OtherLabel is the catch-all used by every classifier.
const OtherLabel = "기타"

// All cache and report backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// Periods lists the bucket windows in ascending order.
var Periods = []Period{
	{Label: "1개월", Months: 1},
	{Label: "3개월", Months: 3},
	{Label: "6개월", Months: 6},
	{Label: "12개월", Months: 12},
}

// AllSignals lists every tier in display order.
var AllSignals = []Signal{StrategicSpike, EmergingSignal, NewActivity, NormalSignal}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {}, // patent list only
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidAnalysisBackends lists all valid report store backends.
var ValidAnalysisBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// SignalColor returns the display color of a tier.
func SignalColor(s Signal) string {
	switch s {
	case StrategicSpike:
		return StrategicSpikeColor
	case EmergingSignal:
		return EmergingSignalColor
	case NewActivity:
		return NewActivityColor
	default:
		return NormalColor
	}
}

// IsActionable reports whether the tier should be surfaced in alerts and prompts.
func (s Signal) IsActionable() bool {
	return s == StrategicSpike || s == EmergingSignal
}
