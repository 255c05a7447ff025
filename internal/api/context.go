package api

import (
	"context"

	"github.com/ovotech/deployment-tracker/internal/auth"
	"github.com/ovotech/deployment-tracker/pkg/logger"
)

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const (
	contextKeyRequestID  contextKey = "request_id"
	contextKeyLogger     contextKey = "logger"
	contextKeyIdentity   contextKey = "identity"
	contextKeyAutomation contextKey = "automation"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetLogger retrieves the logger from context
func GetLogger(ctx context.Context) *logger.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(*logger.Logger); ok {
		return l
	}
	return nil
}

// GetIdentity retrieves the verified identity from context. Nil when the
// request was authenticated by API key or not at all.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(contextKeyIdentity).(*auth.Identity); ok {
		return id
	}
	return nil
}

// IsAutomation reports whether the request was authorized by API key
func IsAutomation(ctx context.Context) bool {
	v, ok := ctx.Value(contextKeyAutomation).(bool)
	return ok && v
}
