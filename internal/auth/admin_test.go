package auth

import "testing"

func TestAdminPolicy(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		email   string
		want    bool
	}{
		{"member", []string{"ops@ovoenergy.com"}, "ops@ovoenergy.com", true},
		{"non-member", []string{"ops@ovoenergy.com"}, "alice@ovoenergy.com", false},
		{"case-insensitive config", []string{"Ops@OvoEnergy.com"}, "ops@ovoenergy.com", true},
		{"case-insensitive identity", []string{"ops@ovoenergy.com"}, "OPS@ovoenergy.com", true},
		{"empty list", nil, "ops@ovoenergy.com", false},
		{"whitespace trimmed", []string{"  ops@ovoenergy.com  "}, "ops@ovoenergy.com", true},
		{"blank entries ignored", []string{"", "  "}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewAdminPolicy(tt.allowed)
			got := policy.IsAdmin(&Identity{Email: tt.email})
			if got != tt.want {
				t.Errorf("IsAdmin(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestAdminPolicyNilIdentity(t *testing.T) {
	policy := NewAdminPolicy([]string{"ops@ovoenergy.com"})
	if policy.IsAdmin(nil) {
		t.Error("IsAdmin(nil) = true, want false")
	}
}
