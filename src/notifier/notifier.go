package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kelseyhightower/envconfig"
	logger "github.com/sirupsen/logrus"
)

type Config struct {
	WebhookURL            string `envconfig:"NOTIFIER_WEBHOOK_URL"`
	WebhookTimeoutSeconds int    `envconfig:"NOTIFIER_TIMEOUT_SECONDS" default:"5"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Notifier posts operational alerts to a webhook. Delivery is best-effort:
// a failed or unconfigured webhook only logs, it never surfaces to the
// trading path.
type Notifier struct {
	http       *resty.Client
	webhookURL string
}

func New(config Config) *Notifier {
	return &Notifier{
		http: resty.New().
			SetTimeout(time.Duration(config.WebhookTimeoutSeconds)*time.Second).
			SetHeader("Content-Type", "application/json"),
		webhookURL: config.WebhookURL,
	}
}

type alertPayload struct {
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert delivers one notification. Safe to call with a nil receiver.
func (n *Notifier) Alert(ctx context.Context, subject, message string) {
	if n == nil || n.webhookURL == "" {
		logger.WithFields(map[string]interface{}{
			"subject": subject,
			"message": message,
		}).Info("alert (no webhook configured)")
		return
	}

	resp, err := n.http.R().
		SetContext(ctx).
		SetBody(alertPayload{Subject: subject, Message: message, Timestamp: time.Now().UTC()}).
		Post(n.webhookURL)
	if err != nil {
		logger.WithError(err).WithField("subject", subject).Warn("alert delivery failed")
		return
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		logger.WithFields(map[string]interface{}{
			"subject": subject,
			"status":  resp.StatusCode(),
		}).Warn("alert webhook returned non-success status")
	}
}
