package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigurationError indicates a missing or unusable mandatory setting.
// It is fatal: the gateway refuses to start without a complete configuration.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error for %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("missing mandatory configuration key %q", e.Key)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Config represents the gateway configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Google  GoogleConfig  `yaml:"google"`
	AWS     AWSConfig     `yaml:"aws"`
	Slack   SlackConfig   `yaml:"slack"`
	Jira    JiraConfig    `yaml:"jira"`
	Auth    AuthConfig    `yaml:"auth"`
	Admin   AdminConfig   `yaml:"admin"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// GoogleConfig contains the OAuth client settings for the corporate
// identity provider
type GoogleConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectUrl"`
}

// AWSConfig contains settings for the signed search backend
type AWSConfig struct {
	Region  string   `yaml:"region"`
	Profile string   `yaml:"profile"` // Optional: named local credentials profile
	ES      ESConfig `yaml:"es"`
}

// ESConfig contains the search backend endpoint settings
type ESConfig struct {
	EndpointURL string `yaml:"endpointUrl"`
	Index       string `yaml:"index"`
}

// SlackConfig contains the chat webhook settings
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// JiraConfig contains issue-tracker settings
type JiraConfig struct {
	BrowseTicketsURL string `yaml:"browseTicketsUrl"`
	IssueAPIURL      string `yaml:"issueApiUrl"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	ProjectKey       string `yaml:"projectKey"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	// APIKey is the single shared secret presented by automation callers
	APIKey string `yaml:"apiKey"`
	// SessionSecret keys the session and anti-forgery cookies
	SessionSecret string `yaml:"sessionSecret"`
	// SessionTTL bounds how long a verified identity stays valid
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// AdminConfig contains the administrator allow-list. An empty list means
// no caller is ever admin.
type AdminConfig struct {
	EmailAddresses []string `yaml:"emailAddresses"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Load reads, parses and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.AWS.Profile == "" {
		c.AWS.Profile = "default"
	}
	if c.AWS.ES.Index == "" {
		c.AWS.ES.Index = "deployments"
	}
	if c.Jira.ProjectKey == "" {
		c.Jira.ProjectKey = "DEPLOY"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 12 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate fails fast on the first absent mandatory key. The admin
// allow-list is deliberately not mandatory: leaving it out yields an
// empty list, never an open one.
func (c *Config) Validate() error {
	mandatory := []struct {
		key   string
		value string
	}{
		{"google.clientId", c.Google.ClientID},
		{"google.clientSecret", c.Google.ClientSecret},
		{"google.redirectUrl", c.Google.RedirectURL},
		{"aws.region", c.AWS.Region},
		{"aws.es.endpointUrl", c.AWS.ES.EndpointURL},
		{"slack.webhookUrl", c.Slack.WebhookURL},
		{"jira.browseTicketsUrl", c.Jira.BrowseTicketsURL},
		{"jira.issueApiUrl", c.Jira.IssueAPIURL},
		{"jira.username", c.Jira.Username},
		{"jira.password", c.Jira.Password},
		{"auth.apiKey", c.Auth.APIKey},
		{"auth.sessionSecret", c.Auth.SessionSecret},
	}

	for _, m := range mandatory {
		if m.value == "" {
			return &ConfigurationError{Key: m.key}
		}
	}

	return nil
}
