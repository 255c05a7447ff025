// Package gateway wires the deployment-tracker gateway together and can
// be embedded into other Go applications.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ovotech/deployment-tracker/internal/api"
	"github.com/ovotech/deployment-tracker/internal/auth"
	"github.com/ovotech/deployment-tracker/internal/config"
	"github.com/ovotech/deployment-tracker/internal/deployments"
	"github.com/ovotech/deployment-tracker/internal/notify"
	"github.com/ovotech/deployment-tracker/internal/search"
	"github.com/ovotech/deployment-tracker/pkg/logger"
)

// Gateway is the single composition of the search client, notification
// hub and admin policy consumed by the deployment-record operations.
// It is constructed exactly once at process start; any failure during
// construction is fatal and no partial gateway is ever exposed.
type Gateway struct {
	config  *config.Config
	service *deployments.Service
	router  http.Handler
	server  *http.Server
	logger  *logger.Logger
}

// New builds the gateway from validated configuration. Construction
// order is fixed: search client, then notification hub, then admin
// policy, then the HTTP surface.
func New(cfg *config.Config) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	searchClient, err := search.NewClient(context.Background(), search.ClientConfig{
		EndpointURL: cfg.AWS.ES.EndpointURL,
		Region:      cfg.AWS.Region,
		Index:       cfg.AWS.ES.Index,
		Profile:     cfg.AWS.Profile,
	}, appLogger)
	if err != nil {
		return nil, fmt.Errorf("initialize search client: %w", err)
	}
	appLogger.Info("initialized search client",
		"endpoint", cfg.AWS.ES.EndpointURL,
		"region", cfg.AWS.Region,
		"index", cfg.AWS.ES.Index)

	hub := notify.NewHub(notify.Config{
		SlackWebhookURL: cfg.Slack.WebhookURL,
		Jira: notify.JiraConfig{
			IssueAPIURL:      cfg.Jira.IssueAPIURL,
			BrowseTicketsURL: cfg.Jira.BrowseTicketsURL,
			Username:         cfg.Jira.Username,
			Password:         cfg.Jira.Password,
		},
	}, appLogger)

	adminPolicy := auth.NewAdminPolicy(cfg.Admin.EmailAddresses)
	appLogger.Info("initialized admin policy", "allow_list_size", len(cfg.Admin.EmailAddresses))

	authenticator := auth.NewGoogleAuthenticator(auth.GoogleConfig{
		ClientID:      cfg.Google.ClientID,
		ClientSecret:  cfg.Google.ClientSecret,
		RedirectURL:   cfg.Google.RedirectURL,
		SessionSecret: cfg.Auth.SessionSecret,
		SessionTTL:    cfg.Auth.SessionTTL,
	})

	svc := deployments.NewService(searchClient, hub, cfg.Jira.ProjectKey, appLogger)

	handlers := api.NewHandlers(svc, authenticator)
	router := api.NewRouter(
		handlers,
		authenticator,
		auth.NewAPIKeyGate(cfg.Auth.APIKey),
		adminPolicy,
		api.NewLoggingMiddleware(appLogger),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Gateway{
		config:  cfg,
		service: svc,
		router:  router,
		server:  srv,
		logger:  appLogger,
	}, nil
}

// NewFromConfigFile loads and validates the configuration file, then
// builds the gateway.
func NewFromConfigFile(path string) (*Gateway, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return New(cfg)
}

// Start starts the HTTP server
// This is a blocking call that will run until the context is canceled or an error occurs
func (g *Gateway) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		g.logger.Info("starting http server", "port", g.config.Server.Port)
		serverErrors <- g.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		g.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := g.server.Shutdown(shutdownCtx); err != nil {
			g.server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		g.logger.Info("server stopped gracefully")
		return nil
	}
}

// Handler returns the http.Handler for the gateway
// Use this if you want to integrate the gateway into an existing HTTP server
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Service returns the underlying deployment-record service
// Use this for direct programmatic access to gateway functionality
func (g *Gateway) Service() *deployments.Service {
	return g.service
}
