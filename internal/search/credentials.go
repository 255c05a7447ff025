package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

// NewCredentials builds the credential chain used to sign backend calls:
// instance-role credentials from the metadata service first, then the
// named local profile. The order is fixed. The chain is wrapped in a
// cache that re-resolves lazily and never serves credentials past expiry.
func NewCredentials(profile string) aws.CredentialsProvider {
	chain := &chainProvider{
		providers: []namedProvider{
			{
				name: "ec2 instance role",
				provider: ec2rolecreds.New(func(o *ec2rolecreds.Options) {
					o.Client = imds.New(imds.Options{})
				}),
			},
			{
				name:     fmt.Sprintf("shared profile %q", profile),
				provider: &profileProvider{profile: profile},
			},
		},
	}
	return aws.NewCredentialsCache(chain)
}

type namedProvider struct {
	name     string
	provider aws.CredentialsProvider
}

// chainProvider tries each source in order and fails only when all do.
// There is no anonymous fallback: the backend enforces IAM authorization.
type chainProvider struct {
	providers []namedProvider
}

func (c *chainProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	var failures []string
	for _, p := range c.providers {
		creds, err := p.provider.Retrieve(ctx)
		if err == nil {
			return creds, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", p.name, err))
	}
	return aws.Credentials{}, fmt.Errorf("no credential source available: %s", strings.Join(failures, "; "))
}

// profileProvider resolves credentials from a named local profile.
type profileProvider struct {
	profile string
}

func (p *profileProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithSharedConfigProfile(p.profile),
		// Keep the SDK's own fallbacks out of the chain: IMDS is already
		// the first link above.
		awsconfig.WithEC2IMDSClientEnableState(imds.ClientDisabled),
	)
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("load profile config: %w", err)
	}
	return cfg.Credentials.Retrieve(ctx)
}
