// Package monitoring raises webhook alerts when a batch run goes badly.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/internal/config"
	"github.com/sells-group/outbound-dialer/internal/dialer"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertCallFailureRate  AlertType = "call_failure_rate"
	AlertBatchInterrupted AlertType = "batch_interrupted"
	AlertNoLeadsAttempted AlertType = "no_leads_attempted"
)

const (
	defaultFailureThreshold = 0.5
	defaultMinAttempted     = 5
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	UploadID  string         `json:"upload_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a batch Summary against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	if cfg.FailureRateThreshold <= 0 {
		cfg.FailureRateThreshold = defaultFailureThreshold
	}
	if cfg.MinAttempted <= 0 {
		cfg.MinAttempted = defaultMinAttempted
	}
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks one run's result against thresholds and returns any alerts.
func (a *Alerter) Evaluate(res *dialer.Result) []Alert {
	if res == nil || res.Summary == nil {
		return nil
	}
	sum := res.Summary
	now := time.Now().UTC()
	var alerts []Alert

	if sum.Attempted >= a.cfg.MinAttempted {
		rate := float64(sum.Failed) / float64(sum.Attempted)
		if rate > a.cfg.FailureRateThreshold {
			alerts = append(alerts, Alert{
				Type:     AlertCallFailureRate,
				Severity: "high",
				Message: fmt.Sprintf(
					"Call failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d attempted)",
					rate*100, a.cfg.FailureRateThreshold*100, sum.Failed, sum.Attempted,
				),
				UploadID: res.UploadID,
				Details: map[string]any{
					"failure_rate": rate,
					"threshold":    a.cfg.FailureRateThreshold,
					"failed":       sum.Failed,
					"attempted":    sum.Attempted,
				},
				Timestamp: now,
			})
		}
	}

	if sum.Cancelled {
		alerts = append(alerts, Alert{
			Type:     AlertBatchInterrupted,
			Severity: "medium",
			Message:  fmt.Sprintf("Batch interrupted after %d of %d leads", sum.Attempted, sum.Total),
			UploadID: res.UploadID,
			Details: map[string]any{
				"attempted": sum.Attempted,
				"total":     sum.Total,
			},
			Timestamp: now,
		})
	}

	if sum.Total == 0 && sum.Skipped > 0 {
		alerts = append(alerts, Alert{
			Type:      AlertNoLeadsAttempted,
			Severity:  "medium",
			Message:   fmt.Sprintf("Lead file had no callable rows (%d skipped)", sum.Skipped),
			UploadID:  res.UploadID,
			Details:   map[string]any{"skipped": sum.Skipped},
			Timestamp: now,
		})
	}

	return alerts
}

// Report evaluates res and delivers any alerts. It satisfies dialer.Reporter.
func (a *Alerter) Report(ctx context.Context, res *dialer.Result) {
	a.SendAlerts(ctx, a.Evaluate(res))
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
