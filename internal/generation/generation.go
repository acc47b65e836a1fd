// Package generation defines the interfaces for producing specification
// content and tracking documentation runs. The runllm subpackage talks to
// the hosted autodoc service; the gemini subpackage generates content
// directly with Google's Gemini API.
package generation

import "context"

// OutputMode selects which kind of documentation a run produces.
type OutputMode string

const (
	// OutputModeInline augments source code with inline docstrings.
	OutputModeInline OutputMode = "inline"

	// OutputModeOpenAPI produces an OpenAPI specification from source
	// code describing a RESTful API.
	OutputModeOpenAPI OutputMode = "openapi"
)

// Request carries everything needed to generate spec content for one
// source file.
type Request struct {
	// RunID is the registered run this generation belongs to. Zero when
	// the generator does not track runs.
	RunID int64

	// FilePath is the repo-relative path of the source file.
	FilePath string

	// FileContent is the full content of the source file.
	FileContent string

	// Language is the detected source language, e.g. "python".
	Language string
}

// SpecResult is the generated specification content for one request.
type SpecResult struct {
	Content    string
	TokensUsed int
}

// Explanation is a prose description of a set of applied changes,
// intended for a pull request body.
type Explanation struct {
	Text       string
	TokensUsed int
}

// Run is a registered documentation run.
type Run struct {
	ID int64

	// FileLanguages maps each supported changed file path to its
	// language. Files absent from the map are skipped.
	FileLanguages map[string]string
}

// Generator produces specification content and change explanations.
type Generator interface {
	// GenerateSpec produces spec content for a single source file.
	GenerateSpec(ctx context.Context, req Request) (*SpecResult, error)

	// Explain produces a prose explanation of the given applied diff.
	Explain(ctx context.Context, runID int64, diff string) (*Explanation, error)
}

// RunTracker manages the lifecycle of documentation runs for generators
// backed by a tracking service.
type RunTracker interface {
	// RegisterRun creates a run for the given changed files and returns
	// its id plus the subset of files the service supports.
	RegisterRun(ctx context.Context, actionURL string, filePaths []string) (*Run, error)

	// MarkCompleted records a successful run with its pull request URL.
	MarkCompleted(ctx context.Context, runID int64, pullRequestURL string) error

	// MarkFailed records a failed run with the failure reason.
	MarkFailed(ctx context.Context, runID int64, reason string) error
}
