package search

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// emptyPayloadHash is the sha256 of an empty body
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// signingTransport signs every outbound request with a freshly resolved
// set of credentials before delegating to the base transport. Plain
// composition: no request passes to the backend unsigned.
type signingTransport struct {
	base        http.RoundTripper
	signer      *v4.Signer
	credentials aws.CredentialsProvider
	region      string
	service     string
}

func newSigningTransport(base http.RoundTripper, creds aws.CredentialsProvider, region string) *signingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &signingTransport{
		base:        base,
		signer:      v4.NewSigner(),
		credentials: creds,
		region:      region,
		service:     "es",
	}
}

func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Credential resolution may block on the metadata service; the
	// request context bounds that wait.
	creds, err := t.credentials.Retrieve(req.Context())
	if err != nil {
		return nil, fmt.Errorf("resolve signing credentials: %w", err)
	}

	// RoundTrippers must not mutate the caller's request
	signed := req.Clone(req.Context())

	payloadHash := emptyPayloadHash
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body for signing: %w", err)
		}
		sum := sha256.Sum256(body)
		payloadHash = hex.EncodeToString(sum[:])
		signed.Body = io.NopCloser(bytes.NewReader(body))
		signed.ContentLength = int64(len(body))
	}

	if err := t.signer.SignHTTP(req.Context(), creds, signed, payloadHash, t.service, t.region, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	return t.base.RoundTrip(signed)
}
