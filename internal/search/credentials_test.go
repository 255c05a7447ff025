package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func staticProvider(accessKey string) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: accessKey, SecretAccessKey: "secret"}, nil
	})
}

func failingProvider(msg string) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New(msg)
	})
}

func TestChainPrefersFirstSource(t *testing.T) {
	chain := &chainProvider{providers: []namedProvider{
		{name: "first", provider: staticProvider("FIRST")},
		{name: "second", provider: staticProvider("SECOND")},
	}}

	creds, err := chain.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if creds.AccessKeyID != "FIRST" {
		t.Errorf("AccessKeyID = %q, want FIRST", creds.AccessKeyID)
	}
}

func TestChainFallsBackInOrder(t *testing.T) {
	chain := &chainProvider{providers: []namedProvider{
		{name: "instance role", provider: failingProvider("metadata service unreachable")},
		{name: "profile", provider: staticProvider("PROFILE")},
	}}

	creds, err := chain.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if creds.AccessKeyID != "PROFILE" {
		t.Errorf("AccessKeyID = %q, want PROFILE", creds.AccessKeyID)
	}
}

func TestChainFailsWhenAllSourcesFail(t *testing.T) {
	chain := &chainProvider{providers: []namedProvider{
		{name: "instance role", provider: failingProvider("metadata service unreachable")},
		{name: "profile", provider: failingProvider("profile not configured")},
	}}

	_, err := chain.Retrieve(context.Background())
	if err == nil {
		t.Fatal("Retrieve() error = nil, want failure")
	}
	// Both failures should be reported
	if !strings.Contains(err.Error(), "metadata service unreachable") || !strings.Contains(err.Error(), "profile not configured") {
		t.Errorf("Retrieve() error = %v, want both source failures listed", err)
	}
}
