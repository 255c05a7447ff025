package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/ovotech/deployment-tracker/pkg/logger"
)

// callTimeout bounds each notification attempt so a hanging endpoint
// cannot hang the triggering operation.
const callTimeout = 5 * time.Second

// Hub fans deployment events out to the chat channel and the issue
// tracker. Both sends are best-effort: at most one attempt each, and a
// failure never affects the outcome of the triggering operation.
type Hub struct {
	slack  *SlackNotifier
	jira   *JiraNotifier
	logger *logger.Logger
}

// Config contains the settings for all notification channels
type Config struct {
	SlackWebhookURL string
	Jira            JiraConfig
}

// NewHub builds the hub with one shared HTTP client
func NewHub(cfg Config, log *logger.Logger) *Hub {
	httpClient := &http.Client{Timeout: callTimeout}
	return &Hub{
		slack:  NewSlackNotifier(cfg.SlackWebhookURL, httpClient, log),
		jira:   NewJiraNotifier(cfg.Jira, httpClient, log),
		logger: log,
	}
}

// NotifySlack posts a message to the chat channel
func (h *Hub) NotifySlack(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return h.slack.Notify(ctx, text)
}

// NotifyJira raises a ticket and returns its reference
func (h *Hub) NotifyJira(ctx context.Context, fields IssueFields) (*TicketRef, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return h.jira.CreateIssue(ctx, fields)
}
