package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ovotech/deployment-tracker/pkg/logger"
)

// IssueFields carries the caller-supplied ticket data
type IssueFields struct {
	Project     string
	Summary     string
	Description string
	IssueType   string
}

// TicketRef identifies a created ticket: the tracker's key plus a
// human-browsable URL. Transient; never persisted by the gateway.
type TicketRef struct {
	Key       string `json:"key"`
	BrowseURL string `json:"browseUrl"`
}

// JiraNotifier raises tickets against the issue API using basic auth
// credentials resolved once at startup.
type JiraNotifier struct {
	issueAPIURL string
	browseURL   string
	username    string
	password    string
	httpClient  *http.Client
	logger      *logger.Logger
}

// JiraConfig contains the issue-tracker connection settings
type JiraConfig struct {
	IssueAPIURL      string
	BrowseTicketsURL string
	Username         string
	Password         string
}

// NewJiraNotifier creates a notifier for the issue tracker
func NewJiraNotifier(cfg JiraConfig, httpClient *http.Client, log *logger.Logger) *JiraNotifier {
	return &JiraNotifier{
		issueAPIURL: strings.TrimRight(cfg.IssueAPIURL, "/"),
		browseURL:   strings.TrimRight(cfg.BrowseTicketsURL, "/"),
		username:    cfg.Username,
		password:    cfg.Password,
		httpClient:  httpClient,
		logger:      log,
	}
}

// CreateIssue raises a ticket and returns its reference. One attempt,
// no retry.
func (n *JiraNotifier) CreateIssue(ctx context.Context, fields IssueFields) (*TicketRef, error) {
	issueType := fields.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	payload, err := json.Marshal(map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": fields.Project},
			"summary":     fields.Summary,
			"description": fields.Description,
			"issuetype":   map[string]string{"name": issueType},
		},
	})
	if err != nil {
		return nil, &NotificationError{Channel: "jira", Err: fmt.Errorf("marshal issue: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.issueAPIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &NotificationError{Channel: "jira", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(n.username, n.password)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, &NotificationError{Channel: "jira", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, &NotificationError{Channel: "jira", Err: fmt.Errorf("issue API returned status %d", resp.StatusCode)}
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, &NotificationError{Channel: "jira", Err: fmt.Errorf("decode response: %w", err)}
	}

	ref := &TicketRef{
		Key:       created.Key,
		BrowseURL: n.browseURL + "/" + created.Key,
	}

	n.logger.Debug("notify: jira ticket created", "key", ref.Key)
	return ref, nil
}
