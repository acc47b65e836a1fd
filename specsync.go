// Package specsync keeps a generated OpenAPI specification in sync with
// its source code. It partitions a git diff, regenerates the spec for the
// changed source file, reconciles the result against the committed spec
// under manual-precedence rules, and emits a summary for the pull request
// that carries the update.
package specsync

import (
	"context"
	"fmt"

	"github.com/agentstation/specsync/internal/generation"
	"github.com/agentstation/specsync/pkg/errors"
	"github.com/agentstation/specsync/pkg/reconcile"
)

// ErrInputUnchanged indicates the configured source file is not part of
// the provided diff, so there is nothing to regenerate.
var ErrInputUnchanged = errors.New("input file not present in diff")

// Syncer runs the spec synchronization pipeline.
type Syncer interface {
	// Sync regenerates the spec for the changed input file and
	// reconciles it against the committed spec. It is a no-op when the
	// reconciled document is byte-identical to the committed one.
	Sync(ctx context.Context) (*Outcome, error)
}

// Outcome reports what a sync run produced.
type Outcome struct {
	// Result is the reconciliation result, including the merged
	// document and its changeset.
	Result *reconcile.Result

	// Summary is the grouped human-readable change lines.
	Summary []string

	// PRBody is the rendered pull request body. Empty for a no-op run.
	PRBody string

	// RunID identifies the registered run, when the generator tracks
	// runs.
	RunID int64

	// TokensUsed is the total generation token count for the run.
	TokensUsed int

	// Cost is the USD cost of TokensUsed.
	Cost float64

	// NoOp is true when no file was modified.
	NoOp bool
}

// syncer is the internal implementation of the Syncer interface.
type syncer struct {
	config     *config
	generator  generation.Generator
	tracker    generation.RunTracker
	reconciler reconcile.Reconciler
}

// New creates a new Syncer with the given options.
func New(opts ...Option) (Syncer, error) {
	s := &syncer{
		config:     defaultConfig(),
		reconciler: reconcile.New(),
	}

	if err := s.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	if s.generator == nil {
		return nil, &errors.ConfigError{
			Component: "syncer",
			Message:   "a generator is required",
		}
	}
	if s.config.inputFile == "" || s.config.specFile == "" {
		return nil, &errors.ConfigError{
			Component: "syncer",
			Message:   "input and spec file paths are required",
		}
	}

	return s, nil
}

// options applies the given options to the syncer.
func (s *syncer) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	return nil
}
