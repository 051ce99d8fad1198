// Package notify builds HTML spike alerts and delivers them over SMTP.
package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/semiconip/patentspike/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Banner colors and texts of the alert mail.
const (
	SpikeBannerColor    = "#00C853"
	EmergingBannerColor = "#FF8F00"
	SpikeBannerText     = "Strategic Spike 감지됨 — 즉시 검토 필요"
	EmergingBannerText  = "Emerging Signal 감지"
)

// topIPCRows is the number of level-2 IPC labels listed in the mail.
const topIPCRows = 10

//go:embed templates/*.tmpl
var templateFS embed.FS

var alertTemplate = template.Must(template.New("alert.html.tmpl").Funcs(template.FuncMap{
	"thousands": thousands,
	"textColor": func(s schema.Signal) string {
		if s == schema.StrategicSpike {
			return "#000"
		}
		return "#fff"
	},
}).ParseFS(templateFS, "templates/alert.html.tmpl"))

// Alert is a rendered mail for one company.
type Alert struct {
	Company         string
	Subject         string
	HTML            string
	StrategicSpikes int
	Actionable      int
}

// alertData is the template model.
type alertData struct {
	Company      string
	Period       string
	GeneratedAt  string
	TotalPatents int
	ThresholdPct float64
	BannerColor  string
	BannerText   string
	Spikes       []schema.SpikeAlert
	TopIPC       []schema.LabelCount
}

// Subject returns the mail subject for a company.
func Subject(company string, strategicSpikes int) string {
	return fmt.Sprintf("[특허 인텔리전스] %s — Strategic Spike %d개 감지", company, strategicSpikes)
}

// BuildAlert renders the alert for a company. It returns false when the company has
// neither a Strategic Spike nor an Emerging Signal, in which case nothing is sent.
func BuildAlert(r schema.CompanyReport, periodMonths int, thresholdPct float64, now time.Time) (Alert, bool, error) {
	actionable := schema.ActionableSpikes(r.Spikes)
	if len(actionable) == 0 {
		return Alert{}, false, nil
	}
	strategic := schema.CountSignal(actionable, schema.StrategicSpike)

	data := alertData{
		Company:      r.Company,
		Period:       fmt.Sprintf("최근 %d개월", periodMonths),
		GeneratedAt:  now.Format("2006-01-02 15:04"),
		TotalPatents: r.TotalPatents,
		ThresholdPct: thresholdPct,
		BannerColor:  EmergingBannerColor,
		BannerText:   EmergingBannerText,
		Spikes:       actionable,
		TopIPC:       schema.TopN(schema.SortedCounts(r.IPCDistribution), topIPCRows),
	}
	if strategic > 0 {
		data.BannerColor = SpikeBannerColor
		data.BannerText = SpikeBannerText
	}

	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, data); err != nil {
		return Alert{}, false, fmt.Errorf("render alert for %s: %w", r.Company, err)
	}
	return Alert{
		Company:         r.Company,
		Subject:         Subject(r.Company, strategic),
		HTML:            buf.String(),
		StrategicSpikes: strategic,
		Actionable:      len(actionable),
	}, true, nil
}

var numberPrinter = message.NewPrinter(language.Korean)

// thousands formats n with Korean digit grouping.
func thousands(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
