package reconcile

import (
	"github.com/agentstation/specsync/pkg/differ"
	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/provenance"
)

// Result is the outcome of reconciling a generated document against the
// previously committed one.
type Result struct {
	// Merged is the reconciled document tree.
	Merged *document.Node

	// Serialized is the deterministic serialization of Merged. It is
	// computed once during reconciliation so callers can both test
	// no-op-ness and publish without re-serializing.
	Serialized []byte

	// Changeset holds the delta entries applied relative to the base
	// document, in deterministic pre-order.
	Changeset *differ.Changeset

	// Skipped lists paths where a differing generated value was discarded
	// because the base value is tagged as manually curated.
	Skipped []document.Path

	// Provenance is the side-table for the merged document, to be
	// persisted alongside it.
	Provenance provenance.Table

	// IsNoOp is true when the merged document serializes byte-identically
	// to the base document.
	IsNoOp bool
}

// HasChanges returns true when the merge produced any delta entries.
func (r *Result) HasChanges() bool {
	return r.Changeset != nil && r.Changeset.HasChanges()
}

// SkippedPaths returns the manual-precedence paths as strings, in the
// order they were encountered.
func (r *Result) SkippedPaths() []string {
	out := make([]string, 0, len(r.Skipped))
	for _, p := range r.Skipped {
		out = append(out, p.String())
	}
	return out
}
