package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ovotech/deployment-tracker/pkg/logger"
)

func TestNotifySlack(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode webhook payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hub := NewHub(Config{SlackWebhookURL: srv.URL, Jira: JiraConfig{}}, logger.Nop())

	if err := hub.NotifySlack(context.Background(), "comms 1.2.3 deployed to prod"); err != nil {
		t.Fatalf("NotifySlack() error = %v", err)
	}
	if got["text"] != "comms 1.2.3 deployed to prod" {
		t.Errorf("webhook payload = %v", got)
	}
}

func TestNotifySlackFailureIsNotificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "channel_not_found", http.StatusNotFound)
	}))
	defer srv.Close()

	hub := NewHub(Config{SlackWebhookURL: srv.URL}, logger.Nop())

	err := hub.NotifySlack(context.Background(), "hello")
	var notifErr *NotificationError
	if !errors.As(err, &notifErr) {
		t.Fatalf("NotifySlack() error = %v, want *NotificationError", err)
	}
	if notifErr.Channel != "slack" {
		t.Errorf("Channel = %q, want slack", notifErr.Channel)
	}
}

func TestNotifySlackUnreachableEndpoint(t *testing.T) {
	// Closed port: the send must fail with NotificationError, not hang
	hub := NewHub(Config{SlackWebhookURL: "http://127.0.0.1:1"}, logger.Nop())

	err := hub.NotifySlack(context.Background(), "hello")
	var notifErr *NotificationError
	if !errors.As(err, &notifErr) {
		t.Fatalf("NotifySlack() error = %v, want *NotificationError", err)
	}
}

func TestNotifyJira(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "deploy-bot" || pass != "hunter2" {
			t.Errorf("basic auth = %q/%q, ok=%v", user, pass, ok)
		}

		var payload struct {
			Fields struct {
				Project   map[string]string `json:"project"`
				Summary   string            `json:"summary"`
				IssueType map[string]string `json:"issuetype"`
			} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode issue payload: %v", err)
		}
		if payload.Fields.Project["key"] != "DEPLOY" {
			t.Errorf("project = %v", payload.Fields.Project)
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"10001","key":"DEPLOY-42"}`)
	}))
	defer srv.Close()

	hub := NewHub(Config{
		Jira: JiraConfig{
			IssueAPIURL:      srv.URL,
			BrowseTicketsURL: "https://jira.example.com/browse",
			Username:         "deploy-bot",
			Password:         "hunter2",
		},
	}, logger.Nop())

	ref, err := hub.NotifyJira(context.Background(), IssueFields{
		Project: "DEPLOY",
		Summary: "comms 1.2.3 deployed to prod",
	})
	if err != nil {
		t.Fatalf("NotifyJira() error = %v", err)
	}
	if ref.Key != "DEPLOY-42" {
		t.Errorf("Key = %q, want DEPLOY-42", ref.Key)
	}
	if ref.BrowseURL != "https://jira.example.com/browse/DEPLOY-42" {
		t.Errorf("BrowseURL = %q", ref.BrowseURL)
	}
}

func TestNotifyJiraFailureIsNotificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "field 'project' is required", http.StatusBadRequest)
	}))
	defer srv.Close()

	hub := NewHub(Config{Jira: JiraConfig{IssueAPIURL: srv.URL}}, logger.Nop())

	_, err := hub.NotifyJira(context.Background(), IssueFields{Summary: "x"})
	var notifErr *NotificationError
	if !errors.As(err, &notifErr) {
		t.Fatalf("NotifyJira() error = %v, want *NotificationError", err)
	}
	if notifErr.Channel != "jira" {
		t.Errorf("Channel = %q, want jira", notifErr.Channel)
	}
}
