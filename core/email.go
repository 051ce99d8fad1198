package core

import (
	"context"
	"fmt"
	"os"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/notify"
	"github.com/semiconip/patentspike/schema"
)

// newMailer builds the SMTP mailer from configuration. Tests replace it.
var newMailer = func(cfg *contract.Config) (contract.Mailer, error) {
	m := &notify.SMTPMailer{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		Timeout:  cfg.RequestTimeout,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ExecuteEmail runs the analysis and mails one alert per company with actionable spikes.
func ExecuteEmail(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if !cfg.DryRun && len(cfg.Recipients) == 0 {
		return fmt.Errorf("no recipients configured, pass --recipients")
	}
	report, _, err := analyze(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	results, err := sendAlerts(ctx, cfg, report)
	if err != nil {
		return err
	}

	sum := summarizeResults(results)
	_, _ = fmt.Fprintf(os.Stderr, "📧 Alerts: %d sent, %d previewed, %d skipped, %d failed\n",
		sum.sent, sum.previewed, sum.skipped, sum.failed)
	if sum.failed > 0 {
		return fmt.Errorf("%d alert mails failed", sum.failed)
	}
	return nil
}

// sendAlerts delivers the alerts of a report, or prints them to stdout on a dry run.
func sendAlerts(ctx context.Context, cfg *contract.Config, report schema.AnalysisReport) ([]notify.Result, error) {
	var notifier *notify.Notifier
	if cfg.DryRun {
		notifier = notify.NewNotifier(nil, cfg.Recipients, contract.Logger()).WithDryRun(os.Stdout)
	} else {
		mailer, err := newMailer(cfg)
		if err != nil {
			return nil, err
		}
		notifier = notify.NewNotifier(mailer, cfg.Recipients, contract.Logger())
	}

	results, err := notifier.SendAlerts(ctx, report, report.GeneratedAt)
	if m := metricsFromContext(ctx); m != nil && !cfg.DryRun {
		for _, r := range results {
			if !r.Skipped {
				m.MailSent(r.Error == "")
			}
		}
	}
	return results, err
}

// deliverySummary counts delivery outcomes.
type deliverySummary struct {
	sent, previewed, skipped, failed int
}

func summarizeResults(results []notify.Result) deliverySummary {
	var sum deliverySummary
	for _, r := range results {
		switch {
		case r.Skipped:
			sum.skipped++
		case r.Error != "":
			sum.failed++
		case r.Sent:
			sum.sent++
		default:
			sum.previewed++
		}
	}
	return sum
}
