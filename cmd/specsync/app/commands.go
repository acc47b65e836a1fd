package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/specsync"
	"github.com/agentstation/specsync/pkg/differ"
	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/logging"
	"github.com/agentstation/specsync/pkg/summary"
)

// NewSyncCommand creates the sync command, which runs the full pipeline:
// regenerate, reconcile, and write the spec plus pull request body.
func (a *App) NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Regenerate the spec for changed source and reconcile it",
		Long: `Sync reads a git diff, regenerates the OpenAPI spec for the changed
input file, and merges the result into the committed spec. Manually
curated values are preserved, stale generated content is pruned, and a
pull request body describing the changes is written alongside.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generator, tracker, err := a.Generator()
			if err != nil {
				return err
			}

			opts := []specsync.Option{
				specsync.WithInputFile(a.config.InputFile),
				specsync.WithSpecFile(a.config.SpecFile),
				specsync.WithProvenanceFile(a.config.ProvenanceFile),
				specsync.WithDiffsFile(a.config.DiffsFile),
				specsync.WithPRBodyFile(a.config.PRBodyFile),
				specsync.WithActionURL(a.config.ActionURL),
				specsync.WithGenerator(generator),
			}
			if tracker != nil {
				opts = append(opts, specsync.WithRunTracker(tracker))
			}

			syncer, err := specsync.New(opts...)
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			outcome, err := syncer.Sync(ctx)
			if err != nil {
				return err
			}

			if outcome.NoOp {
				cmd.Println("No changes were made.")
				return nil
			}

			for _, line := range outcome.Summary {
				cmd.Println(line)
			}
			cmd.Printf("Total tokens: %d, Cost: $%.2f\n", outcome.TokensUsed, outcome.Cost)
			return nil
		},
	}

	cmd.Flags().StringVar(&a.config.ServerAddress, "server-address", a.config.ServerAddress, "address of the generation server")
	cmd.Flags().StringVar(&a.config.APIKey, "api-key", a.config.APIKey, "API key for the generation backend")
	cmd.Flags().StringVar(&a.config.Backend, "backend", a.config.Backend, "generation backend: runllm or gemini")
	cmd.Flags().StringVar(&a.config.Model, "model", a.config.Model, "model to use for the gemini backend")
	cmd.Flags().StringVar(&a.config.InputFile, "input-api-file", a.config.InputFile, "source file to generate the spec from")
	cmd.Flags().StringVar(&a.config.SpecFile, "output-spec-file", a.config.SpecFile, "spec file to reconcile and write")
	cmd.Flags().StringVar(&a.config.ProvenanceFile, "provenance-file", a.config.ProvenanceFile, "provenance side-table path (default derives from spec path)")
	cmd.Flags().StringVar(&a.config.DiffsFile, "diffs-file", a.config.DiffsFile, "file containing the git diff of changes")
	cmd.Flags().StringVar(&a.config.PRBodyFile, "pr-body-file", a.config.PRBodyFile, "where to write the pull request body")
	cmd.Flags().StringVar(&a.config.ActionURL, "action-url", a.config.ActionURL, "URL of the CI run that triggered the sync")

	return cmd
}

// NewDiffCommand creates the diff command, which compares two spec files
// and prints the structural delta.
func (a *App) NewDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <base> <candidate>",
		Short: "Show the structural delta between two spec files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := parseFile(args[0])
			if err != nil {
				return err
			}
			candidate, err := parseFile(args[1])
			if err != nil {
				return err
			}

			changeset := differ.New().Diff(base, candidate)
			for _, line := range summary.Lines(changeset) {
				cmd.Println(line)
			}
			cmd.Println(changeset.String())
			return nil
		},
	}
}

// NewRunsCommand creates the runs command group for run lifecycle
// operations.
func (a *App) NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage documentation runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(a.newRunsCompleteCommand())
	return cmd
}

// newRunsCompleteCommand marks a run as completed once its pull request
// has been opened.
func (a *App) newRunsCompleteCommand() *cobra.Command {
	var runID int64
	var pullRequestURL string

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark a run as completed with its pull request URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker, err := a.RunTracker()
			if err != nil {
				return err
			}
			if err := tracker.MarkCompleted(cmd.Context(), runID, pullRequestURL); err != nil {
				return err
			}
			cmd.Printf("Run %d marked as completed.\n", runID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&runID, "run-id", 0, "run id to mark as completed")
	cmd.Flags().StringVar(&pullRequestURL, "pr-url", "", "URL of the merged pull request")
	cmd.Flags().StringVar(&a.config.ServerAddress, "server-address", a.config.ServerAddress, "address of the generation server")
	cmd.Flags().StringVar(&a.config.APIKey, "api-key", a.config.APIKey, "API key for the generation server")
	_ = cmd.MarkFlagRequired("run-id")
	_ = cmd.MarkFlagRequired("pr-url")

	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("specsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// parseFile reads and parses a spec document from disk.
func parseFile(path string) (*document.Node, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return document.Parse(data)
}
