package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/ovotech/deployment-tracker/internal/config"
	"github.com/ovotech/deployment-tracker/pkg/logger"
)

// ClientConfig contains the settings for the search backend client
type ClientConfig struct {
	EndpointURL string
	Region      string
	Index       string
	Profile     string

	// Credentials overrides the default chain. Used by tests and
	// embedders that already hold resolved credentials.
	Credentials aws.CredentialsProvider
}

// Client is the long-lived handle to the signed search backend. It is
// safe for unbounded concurrent use and must not be reconstructed per
// request: the gateway owns exactly one for the process lifetime.
type Client struct {
	baseURL    string
	index      string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient builds the client and eagerly resolves credentials once so
// that an unusable credential chain fails startup instead of the first
// request. There is no unsigned fallback.
func NewClient(ctx context.Context, cfg ClientConfig, log *logger.Logger) (*Client, error) {
	if cfg.EndpointURL == "" {
		return nil, &config.ConfigurationError{Key: "aws.es.endpointUrl"}
	}
	if cfg.Region == "" {
		return nil, &config.ConfigurationError{Key: "aws.region"}
	}
	if cfg.Index == "" {
		cfg.Index = "deployments"
	}

	creds := cfg.Credentials
	if creds == nil {
		creds = NewCredentials(cfg.Profile)
	}

	resolveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := creds.Retrieve(resolveCtx); err != nil {
		return nil, &config.ConfigurationError{Key: "aws credentials", Err: err}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.EndpointURL, "/"),
		index:   cfg.Index,
		httpClient: &http.Client{
			Transport: newSigningTransport(nil, creds, cfg.Region),
			Timeout:   30 * time.Second,
		},
		logger: log,
	}, nil
}

// Index writes a document under the given id, replacing any previous
// version.
func (c *Client) Index(ctx context.Context, id string, doc any) error {
	path := fmt.Sprintf("/%s/_doc/%s?refresh=true", c.index, url.PathEscape(id))

	resp, err := c.doRequest(ctx, http.MethodPut, path, doc)
	if err != nil {
		return &BackendError{Op: "index", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return parseError("index", resp)
	}
	return nil
}

// Get reads a document by id into out.
func (c *Client) Get(ctx context.Context, id string, out any) error {
	path := fmt.Sprintf("/%s/_doc/%s", c.index, url.PathEscape(id))

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return &BackendError{Op: "get", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return parseError("get", resp)
	}

	var envelope struct {
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &BackendError{Op: "get", Err: fmt.Errorf("decode response: %w", err)}
	}
	if err := json.Unmarshal(envelope.Source, out); err != nil {
		return &BackendError{Op: "get", Err: fmt.Errorf("decode document: %w", err)}
	}
	return nil
}

// Delete removes a document by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := fmt.Sprintf("/%s/_doc/%s?refresh=true", c.index, url.PathEscape(id))

	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return &BackendError{Op: "delete", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return parseError("delete", resp)
	}
	return nil
}

// Search returns the raw sources of all documents in the index, newest
// first.
func (c *Client) Search(ctx context.Context) ([]json.RawMessage, error) {
	query := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"size":  1000,
		"sort":  []map[string]any{{"createdAt": map[string]any{"order": "desc"}}},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/"+c.index+"/_search", query)
	if err != nil {
		return nil, &BackendError{Op: "search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError("search", resp)
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &BackendError{Op: "search", Err: fmt.Errorf("decode response: %w", err)}
	}

	sources := make([]json.RawMessage, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}

// doRequest performs a signed HTTP request against the backend
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	c.logger.Debug("search: http request", "method", method, "path", path)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("search: http request failed", "method", method, "path", path, "error", err)
		return nil, err
	}

	c.logger.Debug("search: http response", "method", method, "path", path, "status", resp.StatusCode)
	return resp, nil
}

func parseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &BackendError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}
