package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/semiconip/patentspike/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input equivalent to the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Period:          DefaultPeriodMonths,
		Threshold:       schema.DefaultThresholdPct,
		MaxPages:        DefaultMaxPages,
		Workers:         DefaultWorkers,
		Limit:           DefaultResultLimit,
		Output:          "text",
		CacheBackend:    "sqlite",
		AnalysisBackend: "",
		Emoji:           "no",
		Color:           "yes",
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, []string{"삼성전자", "SK하이닉스"}, cfg.CompanyNames())
	assert.Equal(t, 12, cfg.PeriodMonths)
	assert.Equal(t, 200.0, cfg.ThresholdPct)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, "ipc", cfg.Treemap)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultSMTPPort, cfg.SMTP.Port)
	assert.Equal(t, DefaultSyncFile, cfg.SyncFile)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
	assert.True(t, cfg.AsOf.IsZero())
}

func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"threshold too low", func(in *ConfigRawInput) { in.Threshold = 99 }},
		{"threshold too high", func(in *ConfigRawInput) { in.Threshold = 501 }},
		{"period not offered", func(in *ConfigRawInput) { in.Period = 2 }},
		{"max pages above cap", func(in *ConfigRawInput) { in.MaxPages = 6 }},
		{"max pages zero", func(in *ConfigRawInput) { in.MaxPages = 0 }},
		{"workers zero", func(in *ConfigRawInput) { in.Workers = 0 }},
		{"limit too large", func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }},
		{"bad treemap", func(in *ConfigRawInput) { in.Treemap = "flat" }},
		{"bad emoji", func(in *ConfigRawInput) { in.Emoji = "maybe" }},
		{"bad as-of", func(in *ConfigRawInput) { in.AsOf = "2025/06/15" }},
		{"bad cache backend", func(in *ConfigRawInput) { in.CacheBackend = "mongo" }},
		{"redis analysis backend", func(in *ConfigRawInput) { in.AnalysisBackend = "redis" }},
		{"bad cache ttl", func(in *ConfigRawInput) { in.CacheTTL = "soon" }},
		{"negative cache ttl", func(in *ConfigRawInput) { in.CacheTTL = "-1h" }},
		{"bad request timeout", func(in *ConfigRawInput) { in.RequestTimeout = "fast" }},
		{"bad smtp port", func(in *ConfigRawInput) { in.SMTPPort = "smtp" }},
		{"bad recipient", func(in *ConfigRawInput) { in.Recipients = "ops@example.com, nobody" }},
		{"redis without url", func(in *ConfigRawInput) { in.CacheBackend = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			assert.Error(t, ProcessAndValidate(&Config{}, in))
		})
	}
}

func TestProcessAndValidateCompanies(t *testing.T) {
	in := validInput()
	in.Companies = []string{"SK하이닉스, ASML", "SK Hynix", "원익IPS"}
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))

	assert.Equal(t, []string{"SK하이닉스", "ASML", "원익IPS"}, cfg.CompanyNames())
	assert.Equal(t, "원익IPS", cfg.Companies[2].Query)
}

func TestProcessAndValidateAsOf(t *testing.T) {
	in := validInput()
	in.AsOf = "2025-06-15"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))

	y, m, d := cfg.Now().Date()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.June, m)
	assert.Equal(t, 15, d)
	assert.Equal(t, 23, cfg.Now().Hour())
	assert.Equal(t, "2025-06-15", cfg.ConfigParams()["as_of"])
}

func TestProcessAndValidateNotify(t *testing.T) {
	in := validInput()
	in.SMTPHost = " smtp.gmail.com "
	in.SMTPPort = "465"
	in.SMTPUser = "alerts@example.com"
	in.Recipients = "a@example.com, b@example.com"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))

	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Recipients)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		ok      bool
	}{
		{schema.SQLiteBackend, "", true},
		{schema.NoneBackend, "", true},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/patentspike", true},
		{schema.MySQLBackend, "user:pass@localhost", false},
		{schema.MySQLBackend, "", false},
		{schema.PostgreSQLBackend, "host=localhost dbname=patentspike", true},
		{schema.PostgreSQLBackend, "host=localhost", false},
		{schema.RedisBackend, "redis://localhost:6379/0", true},
		{schema.RedisBackend, "localhost:6379", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend)+"/"+tt.conn, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateBackendConfigsSQLitePathConflict(t *testing.T) {
	in := validInput()
	in.AnalysisBackend = "sqlite"
	assert.NoError(t, ProcessAndValidate(&Config{}, in))

	shared := filepath.Join(t.TempDir(), "shared.db")
	in.CacheDBConnect = shared
	in.AnalysisDBConnect = shared
	assert.Error(t, ProcessAndValidate(&Config{}, in))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Companies:  []schema.Company{{Name: "삼성전자"}},
		Recipients: []string{"a@example.com"},
	}
	clone := cfg.Clone()
	clone.Companies[0].Name = "changed"
	clone.Recipients[0] = "changed"
	assert.Equal(t, "삼성전자", cfg.Companies[0].Name)
	assert.Equal(t, "a@example.com", cfg.Recipients[0])
}

func TestRequireSource(t *testing.T) {
	assert.Error(t, (&Config{}).RequireSource())
	assert.NoError(t, (&Config{KiprisAPIKey: "k"}).RequireSource())
	assert.NoError(t, (&Config{InputFile: "patents.json"}).RequireSource())
}
