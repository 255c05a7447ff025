package deployments

import "time"

// Deployment is a single deployment event record
type Deployment struct {
	ID          string    `json:"id"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Version     string    `json:"version"`
	Deployer    string    `json:"deployer"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewDeployment carries the caller-supplied fields for a new record
type NewDeployment struct {
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Deployer    string `json:"deployer"`
	Note        string `json:"note"`
}
