// Package reconcile merges a freshly generated specification document into
// the previously committed one. Generated content wins by default, but
// leaves tagged as manually curated are never silently overwritten, and
// stale machine-authored content the generator no longer reproduces is
// pruned. Reconciliation is a pure transformation: repeated runs against
// unchanged inputs produce byte-identical output.
package reconcile

import (
	"bytes"
	"strings"

	"github.com/agentstation/specsync/pkg/differ"
	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/errors"
	"github.com/agentstation/specsync/pkg/provenance"
)

// Reconciler merges generated spec content into a base document.
type Reconciler interface {
	// Reconcile applies the merge policy per leaf path present in either
	// tree and returns the merged document, the applied delta, the
	// manual-precedence skips, and the provenance table for the result.
	// It fails with a SchemaMismatchError when generated is not a valid
	// document root (a container).
	Reconcile(base, generated *document.Node, prov provenance.Table) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	differ differ.Differ
}

// Option configures a Reconciler.
type Option func(*reconciler)

// WithDiffer sets the differ used to compute the applied changeset.
func WithDiffer(d differ.Differ) Option {
	return func(r *reconciler) {
		r.differ = d
	}
}

// New creates a new Reconciler with default settings.
func New(opts ...Option) Reconciler {
	r := &reconciler{
		differ: differ.New(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile merges generated content into base under manual-precedence rules.
func (r *reconciler) Reconcile(base, generated *document.Node, prov provenance.Table) (*Result, error) {
	if generated == nil || generated.Kind() == document.KindScalar {
		actual := "nil"
		if generated != nil {
			actual = generated.Kind().String()
		}
		return nil, errors.NewSchemaMismatchError("container root", actual,
			"generated document must be a map or sequence")
	}

	if base == nil {
		base = emptyLike(generated)
	}

	m := &merge{prior: prov, next: provenance.Table{}}
	merged := m.node(document.Path{}, base, generated)
	if merged == nil {
		merged = emptyLike(generated)
	}

	mergedText, err := document.Marshal(merged)
	if err != nil {
		return nil, err
	}
	baseText, err := document.Marshal(base)
	if err != nil {
		return nil, err
	}

	return &Result{
		Merged:     merged,
		Serialized: mergedText,
		Changeset:  r.differ.Diff(base, merged),
		Skipped:    m.skipped,
		Provenance: m.next,
		IsNoOp:     bytes.Equal(mergedText, baseText),
	}, nil
}

// merge carries the state of one reconciliation pass.
type merge struct {
	prior   provenance.Table
	next    provenance.Table
	skipped []document.Path
}

// node merges one position of the two trees. Either side may be nil when
// the position exists only in the other document. Returns nil when nothing
// survives at this position.
func (m *merge) node(path document.Path, base, generated *document.Node) *document.Node {
	switch {
	case base == nil && generated == nil:
		return nil
	case base == nil:
		return m.adopt(path, generated)
	case generated == nil:
		return m.retain(path, base)
	}

	// A variant-kind boundary replaces the whole subtree. Manual content
	// anywhere under the base subtree pins it in place instead.
	if base.Kind() != generated.Kind() {
		if m.manualUnder(path, base) {
			m.skipped = append(m.skipped, path)
			m.carryTree(path, base)
			return base
		}
		return m.adopt(path, generated)
	}

	switch base.Kind() {
	case document.KindScalar:
		return m.scalar(path, base, generated)

	case document.KindMap:
		pairs := make([]document.Pair, 0, base.Len()+generated.Len())
		for _, key := range unionKeys(base, generated) {
			baseChild, _ := base.Get(key)
			genChild, _ := generated.Get(key)
			if child := m.node(path.Child(key), baseChild, genChild); child != nil {
				pairs = append(pairs, document.Pair{Key: key, Value: child})
			}
		}
		if len(pairs) == 0 {
			return nil
		}
		return document.Map(pairs...)

	default: // KindSequence
		baseItems := base.Items()
		genItems := generated.Items()
		n := len(baseItems)
		if len(genItems) > n {
			n = len(genItems)
		}
		items := make([]*document.Node, 0, n)
		for i := 0; i < n; i++ {
			var baseItem, genItem *document.Node
			if i < len(baseItems) {
				baseItem = baseItems[i]
			}
			if i < len(genItems) {
				genItem = genItems[i]
			}
			if item := m.node(path.At(i), baseItem, genItem); item != nil {
				m.relocate(path.At(i), path.At(len(items)))
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return nil
		}
		return document.Sequence(items...)
	}
}

// scalar resolves a leaf present in both documents.
func (m *merge) scalar(path document.Path, base, generated *document.Node) *document.Node {
	if document.ScalarEqual(base.Value(), generated.Value()) {
		m.next.Carry(path, m.prior)
		return base
	}
	if m.prior.Manual(path) {
		m.skipped = append(m.skipped, path)
		m.next.Carry(path, m.prior)
		return base
	}
	m.next.Set(path, provenance.TagGenerated)
	return generated
}

// adopt takes a generated-only subtree, tagging every leaf as generated.
// Containers with no children are dropped.
func (m *merge) adopt(path document.Path, generated *document.Node) *document.Node {
	switch generated.Kind() {
	case document.KindScalar:
		m.next.Set(path, provenance.TagGenerated)
		return generated
	case document.KindMap:
		pairs := make([]document.Pair, 0, generated.Len())
		for _, key := range generated.Keys() {
			child, _ := generated.Get(key)
			if adopted := m.adopt(path.Child(key), child); adopted != nil {
				pairs = append(pairs, document.Pair{Key: key, Value: adopted})
			}
		}
		if len(pairs) == 0 {
			return nil
		}
		return document.Map(pairs...)
	default:
		items := make([]*document.Node, 0, generated.Len())
		for i, item := range generated.Items() {
			if adopted := m.adopt(path.At(i), item); adopted != nil {
				m.relocate(path.At(i), path.At(len(items)))
				items = append(items, adopted)
			}
		}
		if len(items) == 0 {
			return nil
		}
		return document.Sequence(items...)
	}
}

// retain filters a base-only subtree: manual leaves survive regeneration,
// machine-authored and untagged leaves are pruned as stale.
func (m *merge) retain(path document.Path, base *document.Node) *document.Node {
	switch base.Kind() {
	case document.KindScalar:
		if m.prior.Manual(path) {
			m.next.Carry(path, m.prior)
			return base
		}
		return nil
	case document.KindMap:
		pairs := make([]document.Pair, 0, base.Len())
		for _, key := range base.Keys() {
			child, _ := base.Get(key)
			if kept := m.retain(path.Child(key), child); kept != nil {
				pairs = append(pairs, document.Pair{Key: key, Value: kept})
			}
		}
		if len(pairs) == 0 {
			return nil
		}
		return document.Map(pairs...)
	default:
		items := make([]*document.Node, 0, base.Len())
		for i, item := range base.Items() {
			if kept := m.retain(path.At(i), item); kept != nil {
				m.relocate(path.At(i), path.At(len(items)))
				items = append(items, kept)
			}
		}
		if len(items) == 0 {
			return nil
		}
		return document.Sequence(items...)
	}
}

// relocate re-addresses everything recorded under a sequence item's input
// position to its output position. Pruning a lower-index item compacts the
// survivors leftward, and the table and skip list must describe the merged
// document, not the inputs.
func (m *merge) relocate(from, to document.Path) {
	if from.Equal(to) {
		return
	}

	fromPrefix := from.String()
	toPrefix := to.String()
	var moved []string
	for key := range m.next {
		if key == fromPrefix || strings.HasPrefix(key, fromPrefix+"/") {
			moved = append(moved, key)
		}
	}
	for _, key := range moved {
		entry := m.next[key]
		delete(m.next, key)
		m.next[toPrefix+key[len(fromPrefix):]] = entry
	}

	for i, p := range m.skipped {
		if len(p) >= len(from) && p[:len(from)].Equal(from) {
			shifted := make(document.Path, len(p))
			copy(shifted, p)
			shifted[len(from)-1] = to[len(to)-1]
			m.skipped[i] = shifted
		}
	}
}

// manualUnder reports whether any leaf at or under this position carries a
// manual tag.
func (m *merge) manualUnder(path document.Path, n *document.Node) bool {
	switch n.Kind() {
	case document.KindScalar:
		return m.prior.Manual(path)
	case document.KindMap:
		for _, key := range n.Keys() {
			child, _ := n.Get(key)
			if m.manualUnder(path.Child(key), child) {
				return true
			}
		}
	default:
		for i, item := range n.Items() {
			if m.manualUnder(path.At(i), item) {
				return true
			}
		}
	}
	return false
}

// carryTree carries every tracked entry of a kept subtree forward.
func (m *merge) carryTree(path document.Path, n *document.Node) {
	switch n.Kind() {
	case document.KindScalar:
		m.next.Carry(path, m.prior)
	case document.KindMap:
		for _, key := range n.Keys() {
			child, _ := n.Get(key)
			m.carryTree(path.Child(key), child)
		}
	default:
		for i, item := range n.Items() {
			m.carryTree(path.At(i), item)
		}
	}
}

// unionKeys returns base keys in order followed by generated-only keys in
// generated order.
func unionKeys(base, generated *document.Node) []string {
	keys := base.Keys()
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		seen[key] = true
	}
	for _, key := range generated.Keys() {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	return keys
}

// emptyLike returns an empty container of the same kind as the given root.
func emptyLike(root *document.Node) *document.Node {
	if root != nil && root.Kind() == document.KindSequence {
		return document.Sequence()
	}
	return document.Map()
}
