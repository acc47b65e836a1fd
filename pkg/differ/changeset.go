// Package differ computes structural deltas between two document trees.
package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/specsync/pkg/document"
)

// ChangeKind represents the type of change.
type ChangeKind string

const (
	// ChangeKindAdd indicates a node exists only in the candidate document.
	ChangeKindAdd ChangeKind = "add"
	// ChangeKindRemove indicates a node exists only in the base document.
	ChangeKindRemove ChangeKind = "remove"
	// ChangeKindChange indicates a node differs between the two documents.
	ChangeKindChange ChangeKind = "change"
)

// Change records one difference between two documents at a path.
type Change struct {
	Path document.Path // Location of the difference
	Kind ChangeKind    // Type of change
	Old  string        // Snapshot of the base value, empty when added
	New  string        // Snapshot of the candidate value, empty when removed
}

// Changeset holds all differences between two documents in deterministic
// pre-order, plus summary statistics.
type Changeset struct {
	Changes []Change
	Summary Summary
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	Added   int
	Removed int
	Changed int
	Total   int
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.Total > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.Total == 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	var parts []string
	if c.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", c.Summary.Added))
	}
	if c.Summary.Changed > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", c.Summary.Changed))
	}
	if c.Summary.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", c.Summary.Removed))
	}

	return fmt.Sprintf("Changeset: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.Total)
}

// calculateSummary computes the summary for a sequence of changes.
func calculateSummary(changes []Change) Summary {
	s := Summary{Total: len(changes)}
	for _, change := range changes {
		switch change.Kind {
		case ChangeKindAdd:
			s.Added++
		case ChangeKindRemove:
			s.Removed++
		case ChangeKindChange:
			s.Changed++
		}
	}
	return s
}
