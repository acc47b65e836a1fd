// Package runllm implements the generation interfaces against the hosted
// RunLLM autodoc service.
package runllm

import (
	"context"
	"fmt"
	"net/url"

	"github.com/agentstation/specsync/internal/generation"
	"github.com/agentstation/specsync/internal/transport"
	"github.com/agentstation/specsync/pkg/errors"
)

// serviceName identifies this backend in errors and logs.
const serviceName = "runllm"

// Repository is a repository registered with the autodoc service.
type Repository struct {
	ID      int64  `json:"id"`
	OwnerID string `json:"owner_id"`
	// Name is in owner/repo format.
	Name string `json:"name"`
}

// registerRunResponse is the service response when creating a run.
type registerRunResponse struct {
	RunID int64 `json:"run_id"`

	// FilePathToLanguage lists the supported changed paths.
	FilePathToLanguage map[string]string `json:"file_path_to_language"`
}

// generateResponse is the service response for generated content.
type generateResponse struct {
	DocumentedContent string `json:"documented_content"`
	TokensUsed        int    `json:"tokens_used"`
}

// explainResponse is the service response for a change explanation.
type explainResponse struct {
	Explanation string `json:"explanation"`
	TokensUsed  int    `json:"tokens_used"`
}

// Client talks to a RunLLM autodoc server. It implements both
// generation.Generator and generation.RunTracker.
type Client struct {
	transport     *transport.Client
	serverAddress string
	repoName      string
}

// Option configures a Client.
type Option func(*Client)

// WithTransport overrides the transport, primarily for tests.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// New creates a client for the autodoc server at the given address.
// repoName is the owner/repo the runs belong to.
func New(serverAddress, apiKey, repoName string, opts ...Option) *Client {
	c := &Client{
		transport:     transport.New(serviceName, apiKey),
		serverAddress: serverAddress,
		repoName:      repoName,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListRepositories returns all repositories registered for this API key.
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	if err := c.transport.Get(ctx, c.serverAddress+"/api/repositories", &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// CreateRepository registers a new repository by owner/repo name.
func (c *Client) CreateRepository(ctx context.Context, name string) (*Repository, error) {
	var repo Repository
	payload := map[string]string{"name": name}
	if err := c.transport.Post(ctx, c.serverAddress+"/api/repository", payload, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ensureRepository returns the id of the configured repository, creating
// it on first use.
func (c *Client) ensureRepository(ctx context.Context) (int64, error) {
	if c.repoName == "" {
		return 0, &errors.ValidationError{
			Field:   "repository",
			Message: "repository name not configured",
		}
	}

	repos, err := c.ListRepositories(ctx)
	if err != nil {
		return 0, err
	}
	for _, repo := range repos {
		if repo.Name == c.repoName {
			return repo.ID, nil
		}
	}

	repo, err := c.CreateRepository(ctx, c.repoName)
	if err != nil {
		return 0, err
	}
	return repo.ID, nil
}

// RegisterRun creates an autodoc run for the changed files.
func (c *Client) RegisterRun(ctx context.Context, actionURL string, filePaths []string) (*generation.Run, error) {
	repoID, err := c.ensureRepository(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"repo_id":       repoID,
		"gh_action_url": actionURL,
		"file_paths":    filePaths,
	}
	var resp registerRunResponse
	if err := c.transport.Post(ctx, c.serverAddress+"/api/autodoc", payload, &resp); err != nil {
		return nil, err
	}

	return &generation.Run{
		ID:            resp.RunID,
		FileLanguages: resp.FilePathToLanguage,
	}, nil
}

// GenerateSpec asks the service for an OpenAPI spec covering the given
// source file.
func (c *Client) GenerateSpec(ctx context.Context, req generation.Request) (*generation.SpecResult, error) {
	endpoint := fmt.Sprintf("%s/api/autodoc/%d?%s",
		c.serverAddress, req.RunID, url.Values{"file_path": {req.FilePath}}.Encode())

	payload := map[string]any{
		"output_mode":  string(generation.OutputModeOpenAPI),
		"file_content": req.FileContent,
		"language":     req.Language,
	}
	var resp generateResponse
	if err := c.transport.Post(ctx, endpoint, payload, &resp); err != nil {
		return nil, err
	}

	return &generation.SpecResult{
		Content:    resp.DocumentedContent,
		TokensUsed: resp.TokensUsed,
	}, nil
}

// Explain asks the service for a prose explanation of the applied diff.
func (c *Client) Explain(ctx context.Context, runID int64, diff string) (*generation.Explanation, error) {
	payload := map[string]any{
		"output_mode": string(generation.OutputModeOpenAPI),
		"changes":     diff,
	}
	var resp explainResponse
	endpoint := fmt.Sprintf("%s/api/autodoc/%d/explanation", c.serverAddress, runID)
	if err := c.transport.Post(ctx, endpoint, payload, &resp); err != nil {
		return nil, err
	}

	return &generation.Explanation{
		Text:       resp.Explanation,
		TokensUsed: resp.TokensUsed,
	}, nil
}

// MarkCompleted records the run as succeeded with its pull request URL.
func (c *Client) MarkCompleted(ctx context.Context, runID int64, pullRequestURL string) error {
	payload := map[string]string{
		"status":           "Succeeded",
		"pull_request_url": pullRequestURL,
	}
	return c.transport.Put(ctx, fmt.Sprintf("%s/api/autodoc/%d", c.serverAddress, runID), payload, nil)
}

// MarkFailed records the run as failed with the given reason.
func (c *Client) MarkFailed(ctx context.Context, runID int64, reason string) error {
	payload := map[string]string{
		"status": "Failed",
		"error":  reason,
	}
	return c.transport.Put(ctx, fmt.Sprintf("%s/api/autodoc/%d", c.serverAddress, runID), payload, nil)
}

// Compile-time interface checks.
var (
	_ generation.Generator  = (*Client)(nil)
	_ generation.RunTracker = (*Client)(nil)
)
