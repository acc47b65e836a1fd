// Package provenance tracks, per document path, whether a specification
// leaf was authored by the generation service or curated by hand. The table
// lives beside the specification file rather than inside it, so the
// document itself stays generation-agnostic.
package provenance

import (
	"os"
	"sort"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/errors"
)

// Tag identifies the origin of a leaf value.
type Tag string

const (
	// TagGenerated marks a value supplied by the generation service.
	TagGenerated Tag = "generated"
	// TagManual marks a value curated by hand; it survives regeneration.
	TagManual Tag = "manual"
)

// Entry records the origin of one leaf value.
type Entry struct {
	Tag       Tag      `yaml:"tag"`
	UpdatedAt utc.Time `yaml:"updated_at,omitempty"`
}

// Table maps document path strings to provenance entries. A nil or empty
// table is valid: every leaf is then untagged, which favors fresh
// generation over preserving unknown manual edits.
type Table map[string]Entry

// Tag returns the tag recorded for a path, or the empty tag when untracked.
func (t Table) Tag(p document.Path) Tag {
	if t == nil {
		return ""
	}
	return t[p.String()].Tag
}

// Manual reports whether the path is tagged as manually curated.
func (t Table) Manual(p document.Path) bool {
	return t.Tag(p) == TagManual
}

// Set records a tag for a path with the current timestamp.
func (t Table) Set(p document.Path, tag Tag) {
	t[p.String()] = Entry{Tag: tag, UpdatedAt: utc.Now()}
}

// Carry copies an existing entry forward unchanged, preserving its
// original timestamp. Untracked paths stay untracked.
func (t Table) Carry(p document.Path, from Table) {
	if from == nil {
		return
	}
	if entry, ok := from[p.String()]; ok {
		t[p.String()] = entry
	}
}

// File is the on-disk wrapper for a provenance table.
type File struct {
	Provenance Table `yaml:"provenance"`
}

// PathFor derives the side-table location for a specification file:
// the extension is replaced with ".provenance.yaml", keeping the table
// co-located with the document it describes.
func PathFor(specPath string) string {
	base := specPath
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		if len(base) > len(ext) && base[len(base)-len(ext):] == ext {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return base + ".provenance.yaml"
}

// Load reads a provenance table from a YAML file.
// A missing file is not an error: it returns an empty table, degrading to
// generated-precedence for every leaf.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if f.Provenance == nil {
		f.Provenance = Table{}
	}
	return f.Provenance, nil
}

// Save writes a provenance table to a YAML file with deterministic key
// ordering, so repeated runs produce byte-identical side-tables.
func Save(path string, t Table) error {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make(yaml.MapSlice, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, yaml.MapItem{Key: key, Value: t[key]})
	}

	data, err := yaml.MarshalWithOptions(yaml.MapSlice{
		{Key: "provenance", Value: entries},
	}, yaml.Indent(2))
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // spec metadata, not secrets
		return errors.WrapIO("write", path, err)
	}
	return nil
}
