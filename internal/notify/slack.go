package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ovotech/deployment-tracker/pkg/logger"
)

// SlackNotifier posts messages to the configured incoming-webhook URL.
// One attempt per message; there is no retry because notification is
// best-effort signaling, not a delivery guarantee.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSlackNotifier creates a notifier for the webhook URL
func NewSlackNotifier(webhookURL string, httpClient *http.Client, log *logger.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     log,
	}
}

// Notify posts a plain-text message to the channel
func (n *SlackNotifier) Notify(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return &NotificationError{Channel: "slack", Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return &NotificationError{Channel: "slack", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return &NotificationError{Channel: "slack", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &NotificationError{Channel: "slack", Err: fmt.Errorf("webhook returned status %d", resp.StatusCode)}
	}

	n.logger.Debug("notify: slack message sent")
	return nil
}
