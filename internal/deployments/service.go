package deployments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ovotech/deployment-tracker/internal/notify"
	"github.com/ovotech/deployment-tracker/internal/search"
	"github.com/ovotech/deployment-tracker/pkg/logger"
)

var (
	// ErrNotFound indicates the requested deployment record doesn't exist
	ErrNotFound = errors.New("deployment not found")

	// ErrInvalid indicates the caller-supplied record is incomplete
	ErrInvalid = errors.New("invalid deployment")
)

// Store is the slice of the search client the service needs
type Store interface {
	Index(ctx context.Context, id string, doc any) error
	Get(ctx context.Context, id string, out any) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context) ([]json.RawMessage, error)
}

// Notifier is the slice of the notification hub the service needs
type Notifier interface {
	NotifySlack(ctx context.Context, text string) error
	NotifyJira(ctx context.Context, fields notify.IssueFields) (*notify.TicketRef, error)
}

// Service implements deployment-record operations: a thin CRUD layer
// over the search client, with best-effort notification fan-out on
// mutations. Search failures are the operation's failure; notification
// failures are logged and swallowed.
type Service struct {
	store          Store
	hub            Notifier
	jiraProjectKey string
	logger         *logger.Logger
}

// NewService creates the service
func NewService(store Store, hub Notifier, jiraProjectKey string, log *logger.Logger) *Service {
	return &Service{
		store:          store,
		hub:            hub,
		jiraProjectKey: jiraProjectKey,
		logger:         log,
	}
}

// Create records a deployment event and notifies the chat channel and
// issue tracker. The record write is authoritative; partial completion
// (record written, notification failed) is expected and accepted.
func (s *Service) Create(ctx context.Context, req NewDeployment) (*Deployment, error) {
	if req.Service == "" || req.Environment == "" || req.Version == "" {
		return nil, fmt.Errorf("%w: service, environment and version are required", ErrInvalid)
	}

	d := &Deployment{
		ID:          uuid.NewString(),
		Service:     req.Service,
		Environment: req.Environment,
		Version:     req.Version,
		Deployer:    req.Deployer,
		Note:        req.Note,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Index(ctx, d.ID, d); err != nil {
		s.logger.Error("deployments: record write failed", "id", d.ID, "error", err)
		return nil, fmt.Errorf("write deployment record: %w", err)
	}

	s.logger.Info("deployments: recorded",
		"id", d.ID,
		"service", d.Service,
		"environment", d.Environment,
		"version", d.Version)

	text := fmt.Sprintf("%s %s deployed to %s by %s", d.Service, d.Version, d.Environment, d.Deployer)
	if err := s.hub.NotifySlack(ctx, text); err != nil {
		s.logger.Warn("deployments: slack notification failed", "id", d.ID, "error", err)
	}

	ref, err := s.hub.NotifyJira(ctx, notify.IssueFields{
		Project:     s.jiraProjectKey,
		Summary:     text,
		Description: fmt.Sprintf("Deployment record %s\n\n%s", d.ID, d.Note),
	})
	if err != nil {
		s.logger.Warn("deployments: jira notification failed", "id", d.ID, "error", err)
	} else {
		s.logger.Info("deployments: jira ticket raised", "id", d.ID, "ticket", ref.Key)
	}

	return d, nil
}

// Get reads a single deployment record
func (s *Service) Get(ctx context.Context, id string) (*Deployment, error) {
	var d Deployment
	if err := s.store.Get(ctx, id, &d); err != nil {
		if errors.Is(err, search.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read deployment record: %w", err)
	}
	return &d, nil
}

// List returns all deployment records, newest first
func (s *Service) List(ctx context.Context) ([]*Deployment, error) {
	sources, err := s.store.Search(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deployment records: %w", err)
	}

	records := make([]*Deployment, 0, len(sources))
	for _, src := range sources {
		var d Deployment
		if err := json.Unmarshal(src, &d); err != nil {
			s.logger.Warn("deployments: skipping malformed record", "error", err)
			continue
		}
		records = append(records, &d)
	}
	return records, nil
}

// Delete removes a deployment record. Privilege is the route layer's
// concern; by the time this runs the caller has passed the admin check.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, search.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete deployment record: %w", err)
	}

	s.logger.Info("deployments: record deleted", "id", id)

	if err := s.hub.NotifySlack(ctx, fmt.Sprintf("deployment record %s was deleted", id)); err != nil {
		s.logger.Warn("deployments: slack notification failed", "id", id, "error", err)
	}

	return nil
}
