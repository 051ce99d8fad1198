// Package prompt renders the instruction text and agent config handed to an external AI agent.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/semiconip/patentspike/schema"
)

// NoSpikesLine is printed for a company without actionable spikes.
const NoSpikesLine = "  - 현재 감지된 급증 없음"

var promptTemplate = template.Must(template.New("prompt").Parse(`# ──────────────────────────────────────────────
# IP_Strategist 실행 프롬프트
# 생성일시: {{.GeneratedAt}}
# ──────────────────────────────────────────────

[Role]: 반도체/디스플레이 20년 차 수석 엔지니어 겸 IP 전략가.
[Context]: KIPRIS 공개특허 데이터 분석 결과 기반.
[Target Companies]: {{.Companies}}
[Analysis Period]: 최근 {{.PeriodMonths}}개월

[Detected Spikes]:
{{.SpikeLines}}

[Task 1 - Spike 심층 분석]:
  위 급증 기술 카테고리에 대해:
  1. 어떤 세부 공정/구조 특허가 집중 공개되고 있는지 분석하라.
  2. 경쟁사 대비 특허 포트폴리오 강도를 평가하라.
  3. 양산 적용 시점과 공개 타이밍의 전략적 의도를 해석하라.

[Task 2 - Treemap 트렌드 분석]:
  기업별 IPC 트리맵에서:
  1. Level 3 노드 중 최근 집중 배치 중인 세부 기술을 식별하라.
  2. 어떤 기술의 공개 속도가 가장 빠른지 순위를 매겨라.
  3. 전공정/후공정/설계 각 영역별 전략적 중점 이동을 설명하라.

[Task 3 - 위협도 평가]:
  1. 현재 공개 특허 중 양산 전환 가능성이 높은 기술 Top 3를 선정하라.
  2. 특허 회피(Design Around) 전략 3가지를 제시하라.

[Output Format]:
  - 각 분석 결과를 JSON으로 출력하고 '{{.StatsCollection}}' 컬렉션에 동기화하라.
  - Strategic Spike 항목에는 신호등 색상 '{{.SpikeColor}}' + 'Blink' 태그를 부여하라.
  - 급증률 기준: 최근 1개월 공개 건수가 이전 11개월 월평균 대비 {{.ThresholdPct}}% 이상.
`))

type promptData struct {
	GeneratedAt     string
	Companies       string
	PeriodMonths    int
	SpikeLines      string
	StatsCollection string
	SpikeColor      string
	ThresholdPct    string
}

// SpikeLines lists the Strategic Spike and Emerging Signal rows of every company.
// A company with neither gets a single NoSpikesLine.
func SpikeLines(report schema.AnalysisReport) string {
	var lines []string
	for _, c := range report.Companies {
		lines = append(lines, fmt.Sprintf("  [%s]", c.Company))
		actionable := schema.ActionableSpikes(c.Spikes)
		if len(actionable) == 0 {
			lines = append(lines, NoSpikesLine)
			continue
		}
		for _, a := range actionable {
			lines = append(lines, fmt.Sprintf("  - %s: 급증률 %.0f%% (%s)", a.Category, a.SpikeRatioPct, a.Signal))
		}
	}
	if len(lines) == 0 {
		return NoSpikesLine
	}
	return strings.Join(lines, "\n")
}

// Build renders the agent prompt for a finished analysis.
func Build(report schema.AnalysisReport, now time.Time) (string, error) {
	names := make([]string, len(report.Companies))
	for i, c := range report.Companies {
		names[i] = c.Company
	}
	data := promptData{
		GeneratedAt:     now.Format("2006-01-02 15:04"),
		Companies:       strings.Join(names, ", "),
		PeriodMonths:    report.PeriodMonths,
		SpikeLines:      SpikeLines(report),
		StatsCollection: CollectionStats,
		SpikeColor:      "Green(" + schema.StrategicSpikeColor + ")",
		ThresholdPct:    fmt.Sprintf("%.0f", report.SpikeThreshold),
	}
	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}
