package specsync

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/agentstation/specsync/internal/generation"
	"github.com/agentstation/specsync/internal/gitdiff"
	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/logging"
	"github.com/agentstation/specsync/pkg/provenance"
	"github.com/agentstation/specsync/pkg/reconcile"
	"github.com/agentstation/specsync/pkg/summary"
)

// Sync regenerates the spec for the changed input file and reconciles it
// against the committed spec.
func (s *syncer) Sync(ctx context.Context) (*Outcome, error) {
	log := logging.FromContext(ctx)

	diffs, err := s.readDiffs()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(gitdiff.Paths(diffs), s.config.inputFile) {
		return nil, fmt.Errorf("%w: %s", ErrInputUnchanged, s.config.inputFile)
	}

	run, language, err := s.registerRun(ctx)
	if err != nil {
		return nil, err
	}
	if run != nil {
		ctx = logging.WithRun(ctx, fmt.Sprintf("%d", run.ID))
		log = logging.FromContext(ctx)
	}

	outcome, err := s.sync(ctx, run, language)
	if err != nil {
		if run != nil && s.tracker != nil {
			if failErr := s.tracker.MarkFailed(ctx, run.ID, err.Error()); failErr != nil {
				log.Warn().Err(failErr).Msg("failed to record run failure")
			}
		}
		return nil, err
	}

	return outcome, nil
}

// registerRun registers a run when a tracker is configured and resolves
// the input file's language.
func (s *syncer) registerRun(ctx context.Context) (*generation.Run, string, error) {
	if s.tracker == nil {
		language, ok := generation.DetectLanguage(s.config.inputFile)
		if !ok {
			return nil, "", fmt.Errorf("unsupported file type: %s", s.config.inputFile)
		}
		return nil, language, nil
	}

	run, err := s.tracker.RegisterRun(ctx, s.config.actionURL, []string{s.config.inputFile})
	if err != nil {
		return nil, "", err
	}
	language, ok := run.FileLanguages[s.config.inputFile]
	if !ok {
		err := fmt.Errorf("unsupported file type: %s", s.config.inputFile)
		if failErr := s.tracker.MarkFailed(ctx, run.ID, err.Error()); failErr != nil {
			logging.FromContext(ctx).Warn().Err(failErr).Msg("failed to record run failure")
		}
		return nil, "", err
	}
	return run, language, nil
}

// sync runs generation and reconciliation once the run is registered.
// Errors from here fail the registered run.
func (s *syncer) sync(ctx context.Context, run *generation.Run, language string) (*Outcome, error) {
	log := logging.FromContext(ctx)

	content, err := os.ReadFile(s.config.inputFile)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}

	req := generation.Request{
		FilePath:    s.config.inputFile,
		FileContent: string(content),
		Language:    language,
	}
	if run != nil {
		req.RunID = run.ID
	}

	spec, err := s.generator.GenerateSpec(ctx, req)
	if err != nil {
		return nil, err
	}
	tokens := spec.TokensUsed
	log.Info().
		Int("tokens", spec.TokensUsed).
		Str("cost", generation.FormatCost(spec.TokensUsed)).
		Msg("generated spec content")

	generated, err := document.ParseString(spec.Content)
	if err != nil {
		return nil, err
	}
	base, err := s.readSpec()
	if err != nil {
		return nil, err
	}
	prov, err := provenance.Load(s.config.provenancePath())
	if err != nil {
		return nil, err
	}

	result, err := s.reconciler.Reconcile(base, generated, prov)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Result:     result,
		Summary:    summary.Summarize(result),
		TokensUsed: tokens,
		NoOp:       result.IsNoOp,
	}
	if run != nil {
		outcome.RunID = run.ID
		if err := exportRunID(run.ID); err != nil {
			log.Warn().Err(err).Msg("failed to export run id")
		}
	}

	if result.IsNoOp {
		log.Info().Msg("no changes were made")
		outcome.Cost = generation.Cost(tokens)
		return outcome, nil
	}

	if err := s.writeResult(result); err != nil {
		return nil, err
	}

	body, explainTokens := s.prBody(ctx, run, result)
	outcome.PRBody = body
	outcome.TokensUsed += explainTokens
	outcome.Cost = generation.Cost(outcome.TokensUsed)

	if err := writeFileAtomic(s.config.prBodyFile, []byte(body)); err != nil {
		return nil, err
	}

	log.Info().
		Int("total_tokens", outcome.TokensUsed).
		Str("cost", generation.FormatCost(outcome.TokensUsed)).
		Int("changes", result.Changeset.Summary.Total).
		Msg("spec synchronized")
	return outcome, nil
}

// prBody renders the pull request body, preferring a generated
// explanation of the applied changes and falling back to the grouped
// change summary.
func (s *syncer) prBody(ctx context.Context, run *generation.Run, result *reconcile.Result) (string, int) {
	log := logging.FromContext(ctx)

	fallback := func() string {
		body, err := summary.PRBody(result)
		if err != nil {
			log.Warn().Err(err).Msg("failed to render change summary")
			return ""
		}
		return body
	}

	var runID int64
	if run != nil {
		runID = run.ID
	}
	explanation, err := s.generator.Explain(ctx, runID, diffText(result))
	if err != nil {
		log.Warn().Err(err).Msg("falling back to change summary for pull request body")
		return fallback(), 0
	}
	return explanation.Text, explanation.TokensUsed
}

// diffText renders the applied changeset as text for explanation prompts.
func diffText(result *reconcile.Result) string {
	lines := summary.Lines(result.Changeset)
	text := ""
	for _, line := range lines {
		text += line + "\n"
	}
	return text
}

// readDiffs loads and partitions the configured diffs file.
func (s *syncer) readDiffs() ([]gitdiff.FileDiff, error) {
	if s.config.diffsFile == "" {
		return nil, fmt.Errorf("a diffs file is required")
	}
	raw, err := os.ReadFile(s.config.diffsFile)
	if err != nil {
		return nil, fmt.Errorf("reading diffs file: %w", err)
	}
	return gitdiff.Partition(string(raw))
}

// readSpec parses the committed spec file. A missing file yields a nil
// base, which adopts the generated document wholesale.
func (s *syncer) readSpec() (*document.Node, error) {
	data, err := os.ReadFile(s.config.specFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return document.Parse(data)
}
