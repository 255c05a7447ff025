package auth

import "strings"

// AdminPolicy decides whether a verified identity may perform privileged
// mutations. The allow-list is built once at startup and never mutated:
// an omitted or empty list means nobody is admin, never everybody.
type AdminPolicy struct {
	allowed map[string]struct{}
}

// NewAdminPolicy builds the policy from the configured email addresses.
// Membership checks are case-insensitive.
func NewAdminPolicy(emails []string) *AdminPolicy {
	allowed := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		allowed[e] = struct{}{}
	}
	return &AdminPolicy{allowed: allowed}
}

// IsAdmin reports whether the identity is on the allow-list.
func (p *AdminPolicy) IsAdmin(id *Identity) bool {
	if id == nil {
		return false
	}
	_, ok := p.allowed[strings.ToLower(id.Email)]
	return ok
}
