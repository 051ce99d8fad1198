package prompt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/semiconip/patentspike/schema"
	"gopkg.in/yaml.v3"
)

// Sync collections written by the sync command.
const (
	CollectionTrends = "dashboard_trends"
	CollectionStats  = "dashboard_stats"
	CollectionAlerts = "patent_alerts"
)

// Agent identity.
const (
	AgentName    = "IP_Strategist"
	AgentVersion = "2.0"
	AgentPersona = "반도체 20년차 수석 엔지니어"
)

// AgentConfig is the configuration document for the external agent.
type AgentConfig struct {
	Name            string            `json:"name" yaml:"name"`
	Persona         string            `json:"persona" yaml:"persona"`
	Version         string            `json:"version" yaml:"version"`
	Skills          []string          `json:"skills" yaml:"skills"`
	AnalysisConfig  AnalysisConfig    `json:"analysis_config" yaml:"analysis_config"`
	PromptTemplates map[string]string `json:"prompt_templates" yaml:"prompt_templates"`
}

// AnalysisConfig holds the detection settings passed to the agent.
type AnalysisConfig struct {
	TargetCompanies   []string          `json:"target_companies" yaml:"target_companies"`
	PeriodMonths      int               `json:"period_months" yaml:"period_months"`
	SpikeThresholdPct float64           `json:"spike_threshold_pct" yaml:"spike_threshold_pct"`
	SignalColors      map[string]string `json:"signal_colors" yaml:"signal_colors"`
	Collections       map[string]string `json:"sync_collections" yaml:"sync_collections"`
}

// NewAgentConfig builds the agent config for the selected companies.
func NewAgentConfig(companies []string, periodMonths int, thresholdPct float64) AgentConfig {
	return AgentConfig{
		Name:    AgentName,
		Persona: AgentPersona,
		Version: AgentVersion,
		Skills:  []string{"patent_search", "dashboard_sync", "email_sender"},
		AnalysisConfig: AnalysisConfig{
			TargetCompanies:   companies,
			PeriodMonths:      periodMonths,
			SpikeThresholdPct: thresholdPct,
			SignalColors: map[string]string{
				"strategic_spike": schema.StrategicSpikeColor,
				"emerging_signal": schema.EmergingSignalColor,
				"normal":          schema.NormalColor,
			},
			Collections: map[string]string{
				"trends": CollectionTrends,
				"stats":  CollectionStats,
				"alerts": CollectionAlerts,
			},
		},
		PromptTemplates: map[string]string{
			"system_role": "당신은 반도체/디스플레이 공정 전문가로, 20년 현장 경험을 보유한 수석 엔지니어입니다. " +
				"특허 데이터에서 기술 동향과 전략적 신호를 포착합니다.",
			"spike_analysis": fmt.Sprintf("공개일 기준 최근 1개월 건수가 이전 11개월 월평균의 %.0f%%를 초과하면 "+
				"'Strategic Spike'로 분류하고 Green Light(%s) 신호를 활성화하라.", thresholdPct, schema.StrategicSpikeColor),
		},
	}
}

// WriteAgentConfig encodes the config as "yaml" or "json".
func WriteAgentConfig(w io.Writer, cfg AgentConfig, format string) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode agent config: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unsupported agent config format %q, must be yaml or json", format)
	}
}
