package differ

import (
	"strings"
	"unicode/utf8"

	"github.com/agentstation/specsync/pkg/document"
)

// Differ handles change detection between document trees.
type Differ interface {
	// Diff compares a base document against a candidate and returns all
	// differences, ordered by a pre-order traversal of the union of paths
	// (base key order first, then candidate-only keys).
	Diff(base, candidate *document.Node) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	snapshotLimit int
}

// New creates a new Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		snapshotLimit: defaultSnapshotLimit,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Diff compares two document trees.
func (d *differ) Diff(base, candidate *document.Node) *Changeset {
	var changes []Change
	d.walk(document.Path{}, base, candidate, &changes)
	return &Changeset{
		Changes: changes,
		Summary: calculateSummary(changes),
	}
}

// walk recursively compares the two sides at one path. A subtree present on
// only one side yields a single entry for the whole subtree, not one entry
// per leaf.
func (d *differ) walk(path document.Path, base, candidate *document.Node, changes *[]Change) {
	switch {
	case base == nil && candidate == nil:
		return
	case base == nil:
		*changes = append(*changes, Change{
			Path: path,
			Kind: ChangeKindAdd,
			New:  d.snapshot(candidate),
		})
		return
	case candidate == nil:
		*changes = append(*changes, Change{
			Path: path,
			Kind: ChangeKindRemove,
			Old:  d.snapshot(base),
		})
		return
	}

	// A variant-kind boundary replaces the whole subtree; there is no
	// partial diff across it.
	if base.Kind() != candidate.Kind() {
		*changes = append(*changes, Change{
			Path: path,
			Kind: ChangeKindChange,
			Old:  d.snapshot(base),
			New:  d.snapshot(candidate),
		})
		return
	}

	switch base.Kind() {
	case document.KindScalar:
		if !document.ScalarEqual(base.Value(), candidate.Value()) {
			*changes = append(*changes, Change{
				Path: path,
				Kind: ChangeKindChange,
				Old:  d.snapshot(base),
				New:  d.snapshot(candidate),
			})
		}

	case document.KindMap:
		for _, key := range unionKeys(base, candidate) {
			baseChild, _ := base.Get(key)
			candChild, _ := candidate.Get(key)
			d.walk(path.Child(key), baseChild, candChild, changes)
		}

	case document.KindSequence:
		baseItems := base.Items()
		candItems := candidate.Items()
		n := len(baseItems)
		if len(candItems) > n {
			n = len(candItems)
		}
		// Sequences compare by index position; reordering reports as
		// per-index changes, not moves.
		for i := 0; i < n; i++ {
			var baseItem, candItem *document.Node
			if i < len(baseItems) {
				baseItem = baseItems[i]
			}
			if i < len(candItems) {
				candItem = candItems[i]
			}
			d.walk(path.At(i), baseItem, candItem, changes)
		}
	}
}

// snapshot renders a node as a compact single-line value for change records.
func (d *differ) snapshot(n *document.Node) string {
	s := n.String()
	return truncateString(s, d.snapshotLimit)
}

// unionKeys returns base keys in order followed by candidate-only keys in
// candidate order.
func unionKeys(base, candidate *document.Node) []string {
	keys := base.Keys()
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		seen[key] = true
	}
	for _, key := range candidate.Keys() {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// truncateString shortens long values so change records stay readable.
// The cut point backs up to a rune boundary so snapshots stay valid UTF-8.
func truncateString(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
