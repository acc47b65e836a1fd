// Package gitdiff partitions unified git diff output into per-file chunks
// so each changed source file can be documented independently.
package gitdiff

import (
	"strings"

	"github.com/agentstation/specsync/pkg/errors"
)

// header marks the start of one file's chunk in git diff output.
const header = "diff --git"

// FileDiff is the diff chunk for a single file.
type FileDiff struct {
	// Path is the post-change path of the file, relative to the repo root.
	Path string

	// Diff is the full chunk including the header line.
	Diff string
}

// Partition splits raw git diff output into per-file chunks. Chunks keep
// their original order. Empty input yields no chunks. Input whose first
// non-blank line is not a diff header is rejected.
func Partition(raw string) ([]FileDiff, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	lines := strings.Split(trimmed, "\n")
	if !strings.HasPrefix(lines[0], header) {
		return nil, &errors.ParseError{
			Format:  "git-diff",
			Message: "input does not start with a diff header",
		}
	}

	var diffs []FileDiff
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(line, header) {
			if len(current) > 0 {
				diffs = append(diffs, newFileDiff(current))
			}
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		diffs = append(diffs, newFileDiff(current))
	}

	return diffs, nil
}

// newFileDiff builds a chunk from its lines, extracting the post-change
// path from the "diff --git a/... b/..." header.
func newFileDiff(lines []string) FileDiff {
	path := ""
	if _, after, ok := strings.Cut(lines[0], " b/"); ok {
		path = after
	}
	return FileDiff{
		Path: path,
		Diff: strings.Join(lines, "\n"),
	}
}

// Paths returns the changed file paths in chunk order.
func Paths(diffs []FileDiff) []string {
	paths := make([]string, 0, len(diffs))
	for _, d := range diffs {
		paths = append(paths, d.Path)
	}
	return paths
}
