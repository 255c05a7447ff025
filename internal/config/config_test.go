package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullConfig = `
server:
  port: 9090
google:
  clientId: client-id
  clientSecret: client-secret
  redirectUrl: https://deployments.example.com/oauth2/callback
aws:
  region: eu-west-1
  es:
    endpointUrl: https://search.example.com
slack:
  webhookUrl: https://hooks.slack.com/services/T000/B000/XXX
jira:
  browseTicketsUrl: https://jira.example.com/browse
  issueApiUrl: https://jira.example.com/rest/api/2/issue
  username: deploy-bot
  password: hunter2
auth:
  apiKey: automation-key
  sessionSecret: cookie-secret
admin:
  emailAddresses:
    - ops@ovoenergy.com
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.AWS.Region != "eu-west-1" {
		t.Errorf("AWS.Region = %q, want eu-west-1", cfg.AWS.Region)
	}
	if len(cfg.Admin.EmailAddresses) != 1 || cfg.Admin.EmailAddresses[0] != "ops@ovoenergy.com" {
		t.Errorf("Admin.EmailAddresses = %v, want [ops@ovoenergy.com]", cfg.Admin.EmailAddresses)
	}

	// Defaults
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.AWS.ES.Index != "deployments" {
		t.Errorf("AWS.ES.Index = %q, want deployments", cfg.AWS.ES.Index)
	}
	if cfg.AWS.Profile != "default" {
		t.Errorf("AWS.Profile = %q, want default", cfg.AWS.Profile)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_JIRA_PASSWORD", "from-env")

	content := fullConfig
	cfg, err := Load(writeConfig(t, replaceLine(content, "  password: hunter2", "  password: ${TEST_JIRA_PASSWORD}")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Jira.Password != "from-env" {
		t.Errorf("Jira.Password = %q, want from-env", cfg.Jira.Password)
	}
}

func TestLoadMissingMandatoryKey(t *testing.T) {
	tests := []struct {
		name    string
		drop    string
		wantKey string
	}{
		{"missing endpoint", "    endpointUrl: https://search.example.com", "aws.es.endpointUrl"},
		{"missing client id", "  clientId: client-id", "google.clientId"},
		{"missing webhook", "  webhookUrl: https://hooks.slack.com/services/T000/B000/XXX", "slack.webhookUrl"},
		{"missing api key", "  apiKey: automation-key", "auth.apiKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, replaceLine(fullConfig, tt.drop, "")))
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Fatalf("Load() error = %v, want *ConfigurationError", err)
			}
			if confErr.Key != tt.wantKey {
				t.Errorf("ConfigurationError.Key = %q, want %q", confErr.Key, tt.wantKey)
			}
		})
	}
}

func TestLoadMissingAdminListIsNotAnError(t *testing.T) {
	content := replaceLine(fullConfig, "admin:", "")
	content = replaceLine(content, "  emailAddresses:", "")
	content = replaceLine(content, "    - ops@ovoenergy.com", "")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Admin.EmailAddresses) != 0 {
		t.Errorf("Admin.EmailAddresses = %v, want empty", cfg.Admin.EmailAddresses)
	}
}

func replaceLine(content, old, new string) string {
	if new != "" {
		new += "\n"
	}
	return strings.ReplaceAll(content, old+"\n", new)
}
