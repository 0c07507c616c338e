package notify

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"
)

const slackMaxRetries = 3

var severityColors = map[string]string{
	SeverityMedium: "#e3a008",
	SeverityHigh:   "#d62d20",
}

// SlackSender posts alerts to a Slack incoming webhook.
type SlackSender struct {
	webhookURL string
	appURL     string
}

// NewSlackSender builds a sender. appURL, when set, turns alert links into
// absolute URLs.
func NewSlackSender(webhookURL, appURL string) *SlackSender {
	return &SlackSender{webhookURL: webhookURL, appURL: strings.TrimRight(appURL, "/")}
}

func (s *SlackSender) Name() string { return "slack" }

func (s *SlackSender) Send(ctx context.Context, alert Alert) error {
	msg := &slackapi.WebhookMessage{
		Text:        alert.Title,
		Attachments: []slackapi.Attachment{s.attachment(alert)},
	}
	return retryOnRateLimit(ctx, func() error {
		return slackapi.PostWebhookContext(ctx, s.webhookURL, msg)
	})
}

func (s *SlackSender) attachment(alert Alert) slackapi.Attachment {
	att := slackapi.Attachment{
		Title:    alert.Title,
		Text:     alert.Detail,
		Color:    severityColors[alert.Severity],
		Fallback: alert.Title,
		Fields: []slackapi.AttachmentField{
			{Title: "Tenant", Value: alert.TenantID, Short: true},
			{Title: "Severity", Value: alert.Severity, Short: true},
		},
	}
	if alert.Link != "" && s.appURL != "" {
		att.TitleLink = s.appURL + alert.Link
	}
	return att
}

// retryOnRateLimit retries fn while Slack answers with a rate limit.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) || attempt == slackMaxRetries {
			return err
		}

		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
