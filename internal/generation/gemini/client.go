// Package gemini implements the spec generator directly against Google's
// Gemini API, for running the pipeline without a hosted autodoc service.
package gemini

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"

	"github.com/agentstation/specsync/internal/generation"
	"github.com/agentstation/specsync/pkg/errors"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

const specPrompt = `You are generating an OpenAPI 3.0 specification in YAML for a RESTful API.
Produce a complete specification for the API implemented by the following %s source file.
Output only the YAML document, with no surrounding prose or code fences.

File: %s

%s`

const explainPrompt = `Summarize the following diff of an OpenAPI specification as a short
pull request description. Describe the API changes in plain prose, grouped by endpoint.

%s`

// Client generates spec content with the Gemini API. The underlying genai
// client is created lazily on first use.
type Client struct {
	model  string
	apiKey string

	mu          sync.Mutex
	genaiClient *genai.Client
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the Gemini model to use.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAPIKey sets the API key explicitly instead of reading it from the
// environment.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// New creates a Gemini-backed generator. The API key is read from
// GEMINI_API_KEY or GOOGLE_API_KEY unless set via WithAPIKey.
func New(opts ...Option) *Client {
	c := &Client{
		model: DefaultModel,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	return c
}

// getOrCreateClient creates the genai client on first use.
func (c *Client) getOrCreateClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genaiClient != nil {
		return c.genaiClient, nil
	}

	if c.apiKey == "" {
		return nil, &errors.AuthenticationError{
			Service: "gemini",
			Method:  "api_key",
			Message: "API key required - set GEMINI_API_KEY or GOOGLE_API_KEY",
			Err:     errors.ErrAPIKeyRequired,
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  c.apiKey,
	})
	if err != nil {
		return nil, errors.WrapAPI("gemini", 0, err)
	}

	c.genaiClient = client
	return client, nil
}

// generate runs a single text prompt and returns the response text with
// its token usage.
func (c *Client) generate(ctx context.Context, prompt string) (string, int, error) {
	client, err := c.getOrCreateClient(ctx)
	if err != nil {
		return "", 0, err
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", 0, errors.WrapAPI("gemini", 0, err)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return resp.Text(), tokens, nil
}

// GenerateSpec produces an OpenAPI specification for the given source
// file.
func (c *Client) GenerateSpec(ctx context.Context, req generation.Request) (*generation.SpecResult, error) {
	prompt := fmt.Sprintf(specPrompt, req.Language, req.FilePath, req.FileContent)
	content, tokens, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &generation.SpecResult{Content: content, TokensUsed: tokens}, nil
}

// Explain produces a prose explanation of the applied diff. The run id is
// ignored since Gemini has no run tracking.
func (c *Client) Explain(ctx context.Context, _ int64, diff string) (*generation.Explanation, error) {
	text, tokens, err := c.generate(ctx, fmt.Sprintf(explainPrompt, diff))
	if err != nil {
		return nil, err
	}
	return &generation.Explanation{Text: text, TokensUsed: tokens}, nil
}

var _ generation.Generator = (*Client)(nil)
