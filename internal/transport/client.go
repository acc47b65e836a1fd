// Package transport provides an authenticated JSON HTTP client shared by
// the generation-service clients.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/specsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = 2 * time.Minute

// Client provides JSON request/response handling with API key
// authentication.
type Client struct {
	http    *http.Client
	service string
	apiKey  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a transport client for the named service. The API key is
// sent on every request via the x-api-key header; pass an empty key for
// unauthenticated services.
func New(service, apiKey string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		service: service,
		apiKey:  apiKey,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response
// into out. Either side may be nil.
func (c *Client) Post(ctx context.Context, url string, body, out any) error {
	return c.do(ctx, http.MethodPost, url, body, out)
}

// Put performs a PUT request with a JSON body and decodes the response
// into out.
func (c *Client) Put(ctx context.Context, url string, body, out any) error {
	return c.do(ctx, http.MethodPut, url, body, out)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", url, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.WrapIO("create", method+" "+url, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapAPI(c.service, 0, err)
	}

	return c.decode(resp, url, out)
}

// decode reads and unmarshals a response body, converting non-200
// statuses into APIErrors carrying the response text.
func (c *Client) decode(resp *http.Response, url string, out any) error {
	defer resp.Body.Close() //nolint:errcheck // close error does not affect the result

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Message:    string(payload),
			Endpoint:   url,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.WrapParse("json", url, err)
	}
	return nil
}
