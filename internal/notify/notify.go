package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
	"go.uber.org/zap"
)

// Result is the delivery outcome for one company.
type Result struct {
	Company string `json:"company"`
	Subject string `json:"subject,omitempty"`
	Sent    bool   `json:"sent"`
	Skipped bool   `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// Notifier sends one alert per company with actionable spikes.
type Notifier struct {
	mailer     contract.Mailer
	recipients []string
	logger     *zap.Logger
	dryRun     io.Writer // when set, HTML is written here instead of sent
}

// NewNotifier returns a notifier. A nil logger is replaced with a no-op one.
func NewNotifier(mailer contract.Mailer, recipients []string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{mailer: mailer, recipients: recipients, logger: logger}
}

// WithDryRun makes the notifier write rendered mails to w instead of sending them.
func (n *Notifier) WithDryRun(w io.Writer) *Notifier {
	n.dryRun = w
	return n
}

// SendAlerts renders and delivers alerts for every company in the report.
// Delivery failures are recorded per company and do not stop the loop.
func (n *Notifier) SendAlerts(ctx context.Context, report schema.AnalysisReport, now time.Time) ([]Result, error) {
	if n.dryRun == nil && len(n.recipients) == 0 {
		return nil, fmt.Errorf("no recipients configured")
	}
	results := make([]Result, 0, len(report.Companies))
	for _, c := range report.Companies {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		alert, ok, err := BuildAlert(c, report.PeriodMonths, report.SpikeThreshold, now)
		if err != nil {
			return results, err
		}
		if !ok {
			n.logger.Debug("no actionable spikes, skipping mail", zap.String("company", c.Company))
			results = append(results, Result{Company: c.Company, Skipped: true})
			continue
		}

		res := Result{Company: c.Company, Subject: alert.Subject}
		if n.dryRun != nil {
			if _, err := fmt.Fprintf(n.dryRun, "Subject: %s\n\n%s\n", alert.Subject, alert.HTML); err != nil {
				return results, err
			}
			results = append(results, res)
			continue
		}
		if err := n.mailer.Send(ctx, n.recipients, alert.Subject, alert.HTML); err != nil {
			n.logger.Warn("alert mail failed", zap.String("company", c.Company), zap.Error(err))
			res.Error = err.Error()
		} else {
			n.logger.Info("alert mail sent",
				zap.String("company", c.Company),
				zap.Int("recipients", len(n.recipients)),
				zap.Int("strategic_spikes", alert.StrategicSpikes))
			res.Sent = true
		}
		results = append(results, res)
	}
	return results, nil
}
