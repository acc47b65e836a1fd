// Package summary renders a reconciliation changeset as human-readable
// lines, grouped by top-level document section, for pull request bodies
// and command output.
package summary

import (
	"fmt"

	"github.com/agentstation/specsync/pkg/differ"
	"github.com/agentstation/specsync/pkg/reconcile"
)

// Group is the set of change lines under one top-level section of the
// document, in the order the differ emitted them.
type Group struct {
	Section string
	Lines   []string
}

// Groups buckets changeset entries by the first segment of their path.
// Sections appear in first-seen order so the grouping is deterministic
// for a deterministic changeset. Root-level changes fall under the
// "document" section.
func Groups(cs *differ.Changeset) []Group {
	if cs == nil || cs.IsEmpty() {
		return nil
	}

	var groups []Group
	index := make(map[string]int)
	for _, change := range cs.Changes {
		section := change.Path.Top()
		if section == "" {
			section = "document"
		}
		i, ok := index[section]
		if !ok {
			i = len(groups)
			index[section] = i
			groups = append(groups, Group{Section: section})
		}
		groups[i].Lines = append(groups[i].Lines, Line(change))
	}
	return groups
}

// Line formats a single changeset entry.
func Line(change differ.Change) string {
	switch change.Kind {
	case differ.ChangeKindAdd:
		return fmt.Sprintf("added %s: %s", change.Path, change.New)
	case differ.ChangeKindRemove:
		return fmt.Sprintf("removed %s (was %s)", change.Path, change.Old)
	default:
		return fmt.Sprintf("changed %s: %s -> %s", change.Path, change.Old, change.New)
	}
}

// Lines flattens all groups into a single ordered slice.
func Lines(cs *differ.Changeset) []string {
	var lines []string
	for _, group := range Groups(cs) {
		lines = append(lines, group.Lines...)
	}
	return lines
}

// Summarize produces the change lines for a reconciliation result,
// including the manual-precedence skips at the end.
func Summarize(result *reconcile.Result) []string {
	if result == nil {
		return nil
	}
	lines := Lines(result.Changeset)
	for _, path := range result.SkippedPaths() {
		lines = append(lines, fmt.Sprintf("skipped %s (manually curated)", path))
	}
	return lines
}
