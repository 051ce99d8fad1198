package contract

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/semiconip/patentspike/schema"
)

// Default values for configuration.
const (
	DefaultPeriodMonths   = 12
	DefaultMaxPages       = 5
	MaxPages              = 5
	DefaultResultLimit    = 50
	MaxResultLimit        = 1000
	DefaultWorkers        = 4
	DefaultSMTPPort       = 587
	DefaultRequestTimeout = 15 * time.Second
	DefaultSyncFile       = "patentspike_sync.json"
	DefaultSchedule       = "0 8 * * 1-5"
	DefaultMetricsAddr    = ":9464"
)

// DefaultCacheTTL is how long a fetched result set stays valid.
const DefaultCacheTTL = time.Hour

// AsOfFormat is the layout accepted by --as-of.
const AsOfFormat = "2006-01-02"

// ValidPeriodMonths lists the analysis windows a user can pick.
var ValidPeriodMonths = []int{1, 3, 6, 12}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// SMTPConfig holds mail delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string // also used as the sender address
	Password string // Please use env var as this is plaintext
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Companies       []schema.Company
	PeriodMonths    int
	ThresholdPct    float64
	NewActivityTier bool
	MaxPages        int
	Workers         int
	ResultLimit     int
	AsOf            time.Time // zero means the wall clock at run time

	Output     schema.OutputMode
	OutputFile string
	InputFile  string // JSON records used instead of KIPRIS
	Width      int    // Terminal width override (0 = auto-detect)
	Treemap    string // "ipc" or "tech"

	KiprisAPIKey   string // Please use env var as this is plaintext
	KiprisBaseURL  string
	RequestTimeout time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	SMTP       SMTPConfig
	Recipients []string
	DryRun     bool
	SyncFile   string

	Schedule    string
	MetricsAddr string

	Debug     bool
	UseEmojis bool // Enable emojis in signal labels
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Companies         []string `mapstructure:"companies"`
	Period            int      `mapstructure:"period"`
	Threshold         float64  `mapstructure:"threshold"`
	NewActivityTier   bool     `mapstructure:"new-activity-tier"`
	MaxPages          int      `mapstructure:"max-pages"`
	Workers           int      `mapstructure:"workers"`
	Limit             int      `mapstructure:"limit"`
	AsOf              string   `mapstructure:"as-of"`
	Output            string   `mapstructure:"output"`
	OutputFile        string   `mapstructure:"output-file"`
	Input             string   `mapstructure:"input"`
	Width             int      `mapstructure:"width"`
	CacheBackend      string   `mapstructure:"cache-backend"`
	CacheDBConnect    string   `mapstructure:"cache-db-connect"`
	CacheTTL          string   `mapstructure:"cache-ttl"`
	AnalysisBackend   string   `mapstructure:"analysis-backend"`
	AnalysisDBConnect string   `mapstructure:"analysis-db-connect"`
	Debug             bool     `mapstructure:"debug"`
	Emoji             string   `mapstructure:"emoji"`
	Color             string   `mapstructure:"color"`

	// --- KIPRIS settings, usually from env ---
	KiprisAPIKey   string `mapstructure:"kipris-api-key"`
	KiprisBaseURL  string `mapstructure:"kipris-base-url"`
	RequestTimeout string `mapstructure:"request-timeout"`

	// --- Fields from treemapCmd.Flags() ---
	Treemap string `mapstructure:"treemap"`

	// --- Fields from emailCmd and syncCmd flags ---
	SMTPHost     string `mapstructure:"smtp-host"`
	SMTPPort     string `mapstructure:"smtp-port"`
	SMTPUser     string `mapstructure:"smtp-user"`
	SMTPPassword string `mapstructure:"smtp-password"`
	Recipients   string `mapstructure:"recipients"`
	DryRun       bool   `mapstructure:"dry-run"`
	SyncFile     string `mapstructure:"sync-file"`

	// --- Fields from watchCmd.Flags() ---
	Schedule    string `mapstructure:"schedule"`
	MetricsAddr string `mapstructure:"metrics-addr"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Companies != nil {
		clone.Companies = slices.Clone(c.Companies)
	}
	if c.Recipients != nil {
		clone.Recipients = slices.Clone(c.Recipients)
	}
	return &clone
}

// Now returns the analysis time: the pinned --as-of date or the wall clock.
func (c *Config) Now() time.Time {
	if !c.AsOf.IsZero() {
		return c.AsOf
	}
	return time.Now()
}

// RequireSource reports an error when neither a local input file nor an API key is configured.
func (c *Config) RequireSource() error {
	if c.InputFile == "" && c.KiprisAPIKey == "" {
		return fmt.Errorf("KIPRIS_API_KEY is not set; export it or pass --input with a JSON file of patents")
	}
	return nil
}

// CompanyNames returns the display names of the selected companies.
func (c *Config) CompanyNames() []string {
	names := make([]string, len(c.Companies))
	for i, co := range c.Companies {
		names[i] = co.Name
	}
	return names
}

// ConfigParams summarizes the run parameters for the analysis store.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"companies":         c.CompanyNames(),
		"period_months":     c.PeriodMonths,
		"threshold_pct":     c.ThresholdPct,
		"new_activity_tier": c.NewActivityTier,
		"max_pages":         c.MaxPages,
	}
	if !c.AsOf.IsZero() {
		params["as_of"] = c.AsOf.Format(AsOfFormat)
	}
	return params
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisWindow(cfg, input); err != nil {
		return err
	}
	if err := processCompanies(cfg, input); err != nil {
		return err
	}
	if err := processKipris(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processNotify(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for the host:port address")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl %q: %w", input.CacheTTL, err)
		}
		if ttl <= 0 {
			return fmt.Errorf("cache-ttl must be positive (received %s)", ttl)
		}
		cfg.CacheTTL = ttl
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidAnalysisBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and sizing fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.InputFile = input.Input
	cfg.Width = input.Width
	cfg.Debug = input.Debug
	cfg.DryRun = input.DryRun

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	cfg.Treemap = strings.ToLower(input.Treemap)
	if cfg.Treemap == "" {
		cfg.Treemap = "ipc"
	}
	if cfg.Treemap != "ipc" && cfg.Treemap != "tech" {
		return fmt.Errorf("invalid treemap view '%s'. must be ipc or tech", input.Treemap)
	}
	return nil
}

// processAnalysisWindow validates the detection parameters and the analysis time.
func processAnalysisWindow(cfg *Config, input *ConfigRawInput) error {
	if err := ValidatePeriod(input.Period); err != nil {
		return err
	}
	cfg.PeriodMonths = input.Period

	if err := ValidateThreshold(input.Threshold); err != nil {
		return err
	}
	cfg.ThresholdPct = input.Threshold
	cfg.NewActivityTier = input.NewActivityTier

	if input.MaxPages <= 0 || input.MaxPages > MaxPages {
		return fmt.Errorf("max-pages must be between 1 and %d (received %d)", MaxPages, input.MaxPages)
	}
	cfg.MaxPages = input.MaxPages

	cfg.AsOf = time.Time{}
	if input.AsOf != "" {
		t, err := time.ParseInLocation(AsOfFormat, input.AsOf, time.Local)
		if err != nil {
			return fmt.Errorf("invalid as-of date %q, expected YYYY-MM-DD: %w", input.AsOf, err)
		}
		// End of day so that patents published on the pinned date are included.
		cfg.AsOf = t.Add(24*time.Hour - time.Second)
	}
	return nil
}

// processCompanies resolves company names against the registry, dropping duplicates.
func processCompanies(cfg *Config, input *ConfigRawInput) error {
	names := SplitList(strings.Join(input.Companies, ","))
	if len(names) == 0 {
		names = schema.DefaultCompanies
	}
	cfg.Companies = ResolveCompanies(names)
	return nil
}

// ResolveCompanies looks names up in the registry and drops duplicates, keeping the first occurrence.
func ResolveCompanies(names []string) []schema.Company {
	seen := make(map[string]struct{}, len(names))
	companies := make([]schema.Company, 0, len(names))
	for _, n := range names {
		c, _ := schema.LookupCompany(n)
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		companies = append(companies, c)
	}
	return companies
}

// ValidateThreshold checks the Strategic Spike cutoff range.
func ValidateThreshold(pct float64) error {
	if pct < schema.MinThresholdPct || pct > schema.MaxThresholdPct {
		return fmt.Errorf("threshold must be between %.0f and %.0f percent (received %.1f)",
			schema.MinThresholdPct, schema.MaxThresholdPct, pct)
	}
	return nil
}

// ValidatePeriod checks that months is one of the selectable periods.
func ValidatePeriod(months int) error {
	if !slices.Contains(ValidPeriodMonths, months) {
		return fmt.Errorf("period must be one of 1, 3, 6, 12 months (received %d)", months)
	}
	return nil
}

// processKipris copies the API settings.
func processKipris(cfg *Config, input *ConfigRawInput) error {
	cfg.KiprisAPIKey = strings.TrimSpace(input.KiprisAPIKey)
	cfg.KiprisBaseURL = strings.TrimSpace(input.KiprisBaseURL)
	cfg.RequestTimeout = DefaultRequestTimeout
	if input.RequestTimeout != "" {
		d, err := time.ParseDuration(input.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request-timeout %q: %w", input.RequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// processNotify handles mail, sync and scheduling settings.
func processNotify(cfg *Config, input *ConfigRawInput) error {
	cfg.SMTP = SMTPConfig{
		Host:     strings.TrimSpace(input.SMTPHost),
		Port:     DefaultSMTPPort,
		User:     strings.TrimSpace(input.SMTPUser),
		Password: input.SMTPPassword,
	}
	if input.SMTPPort != "" {
		port, err := strconv.Atoi(strings.TrimSpace(input.SMTPPort))
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid smtp-port %q", input.SMTPPort)
		}
		cfg.SMTP.Port = port
	}
	cfg.Recipients = SplitList(input.Recipients)
	for _, r := range cfg.Recipients {
		if !strings.Contains(r, "@") {
			return fmt.Errorf("invalid recipient %q", r)
		}
	}

	cfg.SyncFile = input.SyncFile
	if cfg.SyncFile == "" {
		cfg.SyncFile = DefaultSyncFile
	}
	cfg.Schedule = input.Schedule
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	cfg.MetricsAddr = input.MetricsAddr
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
