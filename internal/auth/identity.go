package auth

import (
	"net/http"
	"time"
)

// Identity is a verified human identity, produced only by successful
// session verification. It is immutable for the lifetime of one request.
type Identity struct {
	Email         string
	DisplayName   string
	SessionExpiry time.Time
}

// Verifier validates the session assertion carried by a request and
// produces the verified identity. Signature and expiry checks are the
// identity provider's concern; callers only see the outcome.
type Verifier interface {
	Verify(r *http.Request) (*Identity, error)
}
