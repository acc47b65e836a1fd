package summary

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/specsync/pkg/reconcile"
)

// PRBody renders a reconciliation result as a markdown document suitable
// for a pull request description. An empty string is returned for a no-op
// result.
func PRBody(result *reconcile.Result) (string, error) {
	if result == nil || result.IsNoOp {
		return "", nil
	}

	buffer := &bytes.Buffer{}
	doc := md.NewMarkdown(buffer)
	caser := cases.Title(language.English)

	doc.H2("Specification Changes")
	if s := result.Changeset.Summary; s.Total > 0 {
		doc.PlainTextf("%d added, %d removed, %d changed", s.Added, s.Removed, s.Changed)
		doc.LF()
	}

	for _, group := range Groups(result.Changeset) {
		doc.H3(caser.String(sectionTitle(group.Section)))
		items := make([]string, 0, len(group.Lines))
		for _, line := range group.Lines {
			items = append(items, line)
		}
		doc.BulletList(items...)
		doc.LF()
	}

	if skipped := result.SkippedPaths(); len(skipped) > 0 {
		doc.H3("Preserved Manual Edits")
		doc.PlainText("The following paths differ from the generated output and were left untouched:")
		doc.LF()
		items := make([]string, 0, len(skipped))
		for _, path := range skipped {
			items = append(items, md.Code(path))
		}
		doc.BulletList(items...)
		doc.LF()
	}

	if err := doc.Build(); err != nil {
		return "", fmt.Errorf("building pull request body: %w", err)
	}
	return buffer.String(), nil
}

// sectionTitle strips leading path noise from a section name so titles
// read naturally ("paths" rather than "/paths").
func sectionTitle(section string) string {
	for len(section) > 0 && section[0] == '/' {
		section = section[1:]
	}
	if section == "" {
		return "Document"
	}
	return section
}
