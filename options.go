package specsync

import (
	"github.com/agentstation/specsync/internal/generation"
	"github.com/agentstation/specsync/pkg/provenance"
	"github.com/agentstation/specsync/pkg/reconcile"
)

// DefaultPRBodyFile is where the pull request body is written unless
// configured otherwise.
const DefaultPRBodyFile = "pr-body.txt"

// config holds the file paths and run metadata for one sync.
type config struct {
	inputFile      string
	specFile       string
	provenanceFile string
	diffsFile      string
	prBodyFile     string
	actionURL      string
}

func defaultConfig() *config {
	return &config{
		prBodyFile: DefaultPRBodyFile,
	}
}

// Option is a function that configures a Syncer instance
type Option func(*syncer) error

// WithInputFile sets the source file the spec is generated from.
func WithInputFile(path string) Option {
	return func(s *syncer) error {
		s.config.inputFile = path
		return nil
	}
}

// WithSpecFile sets the committed spec file to reconcile against and
// write back to.
func WithSpecFile(path string) Option {
	return func(s *syncer) error {
		s.config.specFile = path
		return nil
	}
}

// WithProvenanceFile sets the provenance side-table path. Defaults to
// the spec file path with a .provenance.yaml suffix.
func WithProvenanceFile(path string) Option {
	return func(s *syncer) error {
		s.config.provenanceFile = path
		return nil
	}
}

// WithDiffsFile sets the file containing the git diff of changes.
func WithDiffsFile(path string) Option {
	return func(s *syncer) error {
		s.config.diffsFile = path
		return nil
	}
}

// WithPRBodyFile sets where the pull request body is written.
func WithPRBodyFile(path string) Option {
	return func(s *syncer) error {
		if path != "" {
			s.config.prBodyFile = path
		}
		return nil
	}
}

// WithActionURL sets the CI run URL recorded on registered runs.
func WithActionURL(url string) Option {
	return func(s *syncer) error {
		s.config.actionURL = url
		return nil
	}
}

// WithGenerator sets the spec content generator.
func WithGenerator(g generation.Generator) Option {
	return func(s *syncer) error {
		s.generator = g
		return nil
	}
}

// WithRunTracker sets the run lifecycle tracker. Optional; without one,
// runs are not registered with a service.
func WithRunTracker(t generation.RunTracker) Option {
	return func(s *syncer) error {
		s.tracker = t
		return nil
	}
}

// WithReconciler overrides the reconciler, primarily for tests.
func WithReconciler(r reconcile.Reconciler) Option {
	return func(s *syncer) error {
		s.reconciler = r
		return nil
	}
}

// provenancePath returns the configured side-table path, deriving it
// from the spec path when unset.
func (c *config) provenancePath() string {
	if c.provenanceFile != "" {
		return c.provenanceFile
	}
	return provenance.PathFor(c.specFile)
}
