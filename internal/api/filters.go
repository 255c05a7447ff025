package api

import (
	"strings"

	"github.com/ovotech/deployment-tracker/internal/deployments"
)

// FilterDeployments narrows the listing by free-text search (service,
// version, deployer) and exact environment match.
func FilterDeployments(records []*deployments.Deployment, search, environment string) []*deployments.Deployment {
	if search == "" && environment == "" {
		return records
	}

	filtered := make([]*deployments.Deployment, 0, len(records))
	searchLower := strings.ToLower(search)

	for _, d := range records {
		if search != "" && !matchesSearch(d, searchLower) {
			continue
		}
		if environment != "" && !strings.EqualFold(d.Environment, environment) {
			continue
		}
		filtered = append(filtered, d)
	}

	return filtered
}

func matchesSearch(d *deployments.Deployment, searchLower string) bool {
	return strings.Contains(strings.ToLower(d.Service), searchLower) ||
		strings.Contains(strings.ToLower(d.Version), searchLower) ||
		strings.Contains(strings.ToLower(d.Deployer), searchLower)
}
