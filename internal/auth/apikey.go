package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// APIKeyGate authorizes non-interactive callers presenting the single
// configured shared secret. It never produces an identity: a correct key
// only establishes "trusted automation caller".
type APIKeyGate struct {
	keyDigest [sha256.Size]byte
	enabled   bool
}

// NewAPIKeyGate creates a gate for the configured secret. An empty
// secret disables the gate entirely: every check fails.
func NewAPIKeyGate(key string) *APIKeyGate {
	g := &APIKeyGate{enabled: key != ""}
	if g.enabled {
		g.keyDigest = sha256.Sum256([]byte(key))
	}
	return g
}

// Authorize compares the presented key against the configured secret.
// Both sides are hashed first so the comparison is constant-time even
// for keys of differing length.
func (g *APIKeyGate) Authorize(presented string) error {
	if !g.enabled || presented == "" {
		return ErrUnauthenticated
	}
	digest := sha256.Sum256([]byte(presented))
	if subtle.ConstantTimeCompare(digest[:], g.keyDigest[:]) != 1 {
		return ErrUnauthenticated
	}
	return nil
}
