package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ovotech/deployment-tracker/internal/auth"
	"github.com/ovotech/deployment-tracker/internal/deployments"
	"github.com/ovotech/deployment-tracker/internal/search"
)

// Handlers contains HTTP handler functions
type Handlers struct {
	service *deployments.Service
	authn   *auth.GoogleAuthenticator
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *deployments.Service, authn *auth.GoogleAuthenticator) *Handlers {
	return &Handlers{service: svc, authn: authn}
}

// Health handles health check requests
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login handles GET /login: it starts the provider flow
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	url, err := h.authn.BeginLogin(w)
	if err != nil {
		if l := GetLogger(r.Context()); l != nil {
			l.Error("login: failed to start provider flow", "error", err)
		}
		respondError(w, r, http.StatusInternalServerError, "failed to start login")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// OAuthCallback handles GET /oauth2/callback from the provider
func (h *Handlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	identity, err := h.authn.CompleteLogin(w, r)
	if err != nil {
		if l := GetLogger(r.Context()); l != nil {
			l.Warn("login: callback rejected", "error", err)
		}
		if errors.Is(err, auth.ErrUnauthenticated) {
			respondError(w, r, http.StatusUnauthorized, "login failed, try again at /login")
			return
		}
		respondError(w, r, http.StatusBadGateway, "identity provider error")
		return
	}

	if l := GetLogger(r.Context()); l != nil {
		l.Info("login: session issued", "email", identity.Email)
	}
	http.Redirect(w, r, "/v1/deployments", http.StatusFound)
}

// Logout handles GET /logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.authn.ClearSession(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// ListDeployments handles GET /v1/deployments
func (h *Handlers) ListDeployments(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	records = FilterDeployments(records,
		r.URL.Query().Get("q"),
		r.URL.Query().Get("environment"))

	respondJSON(w, http.StatusOK, map[string]any{"deployments": records})
}

// CreateDeployment handles POST /v1/deployments for interactive callers
func (h *Handlers) CreateDeployment(w http.ResponseWriter, r *http.Request) {
	var req deployments.NewDeployment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// The verified identity is the deployer of record
	if identity := GetIdentity(r.Context()); identity != nil && req.Deployer == "" {
		req.Deployer = identity.Email
	}

	h.create(w, r, req)
}

// HookCreateDeployment handles POST /hooks/deployments for automation
// callers. There is no identity on this path.
func (h *Handlers) HookCreateDeployment(w http.ResponseWriter, r *http.Request) {
	var req deployments.NewDeployment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Deployer == "" {
		req.Deployer = "automation"
	}

	h.create(w, r, req)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request, req deployments.NewDeployment) {
	d, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if l := GetLogger(r.Context()); l != nil {
		l.Info("deployment recorded",
			"id", d.ID,
			"service", d.Service,
			"environment", d.Environment)
	}

	respondJSON(w, http.StatusCreated, map[string]any{"deployment": d})
}

// GetDeployment handles GET /v1/deployments/{deployment_id}
func (h *Handlers) GetDeployment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deployment_id")

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deployment": d})
}

// DeleteDeployment handles DELETE /v1/deployments/{deployment_id}.
// Reached only through the admin guard.
func (h *Handlers) DeleteDeployment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deployment_id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP status codes
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var backendErr *search.BackendError

	switch {
	case errors.Is(err, deployments.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "deployment not found")
	case errors.Is(err, deployments.ErrInvalid):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		respondError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrForbidden):
		respondError(w, r, http.StatusForbidden, "forbidden")
	case errors.As(err, &backendErr):
		if l := GetLogger(r.Context()); l != nil {
			l.Error("search backend failure", "error", err)
		}
		respondError(w, r, http.StatusBadGateway, "search backend unavailable")
	default:
		if l := GetLogger(r.Context()); l != nil {
			l.Error("unhandled service error", "error", err)
		}
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, status, map[string]any{
		"error":      message,
		"request_id": GetRequestID(r.Context()),
	})
}
