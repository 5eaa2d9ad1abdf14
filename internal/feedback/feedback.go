// Package feedback turns the human rejection journal into a bounded
// text block that is injected into generation prompts, so feedback
// given once steers every later draft.
package feedback

import (
	"fmt"
	"strings"

	"satirewire/internal/core"
)

// Params configures one aggregation pass. Rows are the journal tail in
// chronological order; the caps bound each bucket independently.
type Params struct {
	Rows       []core.FeedbackRecord
	Category   string
	EditorID   string
	EditorName string

	MaxGlobal   int
	MaxCategory int
	MaxEditor   int
}

// BuildContext walks the journal newest-first, keeping reject actions
// with non-empty feedback. Every entry lands in exactly one bucket by
// priority (editor match > category match > global), deduplicated
// case-insensitively across all buckets. Scanning stops once all
// buckets are full. Empty buckets are omitted from the output.
func BuildContext(p Params) string {
	category := strings.ToLower(strings.TrimSpace(p.Category))
	editorID := strings.TrimSpace(p.EditorID)
	editorName := strings.TrimSpace(p.EditorName)

	var editorRules, categoryRules, global []string
	seen := map[string]bool{}

	push := func(bucket *[]string, text string, cap int) {
		key := strings.ToLower(text)
		if seen[key] || len(*bucket) >= cap {
			return
		}
		seen[key] = true
		*bucket = append(*bucket, "- "+text)
	}

	for i := len(p.Rows) - 1; i >= 0; i-- {
		r := p.Rows[i]
		if r.Action != core.ActionReject {
			continue
		}
		text := strings.TrimSpace(r.Feedback)
		if text == "" {
			continue
		}

		rowCategory := strings.ToLower(strings.TrimSpace(r.Category))
		rowEditorID := strings.TrimSpace(r.EditorID)
		rowEditorName := strings.TrimSpace(r.EditorName)

		matchesEditor := (editorID != "" && rowEditorID != "" && rowEditorID == editorID) ||
			(editorName != "" && rowEditorName != "" && rowEditorName == editorName)
		matchesCategory := category != "" && rowCategory != "" && rowCategory == category

		switch {
		case matchesEditor:
			push(&editorRules, text, p.MaxEditor)
		case matchesCategory:
			push(&categoryRules, text, p.MaxCategory)
		default:
			push(&global, text, p.MaxGlobal)
		}

		if len(editorRules) >= p.MaxEditor && len(categoryRules) >= p.MaxCategory && len(global) >= p.MaxGlobal {
			break
		}
	}

	editorLabel := editorName
	if editorLabel == "" {
		editorLabel = editorID
	}

	var parts []string
	if len(editorRules) > 0 {
		parts = append(parts, fmt.Sprintf("EDITOR (%s):\n%s", editorLabel, strings.Join(editorRules, "\n")))
	}
	if len(categoryRules) > 0 {
		parts = append(parts, fmt.Sprintf("CATEGORIE (%s):\n%s", p.Category, strings.Join(categoryRules, "\n")))
	}
	if len(global) > 0 {
		parts = append(parts, "ALGEMEEN:\n"+strings.Join(global, "\n"))
	}
	return strings.Join(parts, "\n\n")
}
