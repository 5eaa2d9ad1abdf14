package feedback

import (
	"fmt"
	"strings"
	"testing"

	"satirewire/internal/core"
)

func reject(feedback, category, editorID, editorName string) core.FeedbackRecord {
	return core.FeedbackRecord{
		Action:     core.ActionReject,
		Feedback:   feedback,
		Category:   category,
		EditorID:   editorID,
		EditorName: editorName,
	}
}

func TestBucketPriorityEditorWins(t *testing.T) {
	rows := []core.FeedbackRecord{
		// Matcht zowel editor als categorie; moet alleen in EDITOR landen.
		reject("Minder uitleg in de slotalinea", "politiek", "marius-de-graaf", "Marius de Graaf"),
	}
	got := BuildContext(Params{
		Rows: rows, Category: "politiek",
		EditorID: "marius-de-graaf", EditorName: "Marius de Graaf",
		MaxGlobal: 6, MaxCategory: 6, MaxEditor: 6,
	})
	if !strings.Contains(got, "EDITOR (Marius de Graaf):") {
		t.Errorf("missing editor section: %q", got)
	}
	if strings.Contains(got, "CATEGORIE") || strings.Contains(got, "ALGEMEEN") {
		t.Errorf("entry double-counted across buckets: %q", got)
	}
}

func TestBucketAssignment(t *testing.T) {
	rows := []core.FeedbackRecord{
		reject("Te veel politiek jargon", "politiek", "x", "X"),
		reject("Kortere koppen graag", "sport", "y", "Y"),
	}
	got := BuildContext(Params{
		Rows: rows, Category: "politiek",
		EditorID: "marius-de-graaf", EditorName: "Marius de Graaf",
		MaxGlobal: 6, MaxCategory: 6, MaxEditor: 6,
	})
	if !strings.Contains(got, "CATEGORIE (politiek):\n- Te veel politiek jargon") {
		t.Errorf("category bucket wrong: %q", got)
	}
	if !strings.Contains(got, "ALGEMEEN:\n- Kortere koppen graag") {
		t.Errorf("global bucket wrong: %q", got)
	}
	if strings.Contains(got, "EDITOR") {
		t.Errorf("unexpected editor section: %q", got)
	}
}

func TestIgnoresNonRejectAndEmptyFeedback(t *testing.T) {
	rows := []core.FeedbackRecord{
		{Action: core.ActionDeletePublished, Feedback: "niet relevant"},
		reject("   ", "politiek", "", ""),
	}
	if got := BuildContext(Params{Rows: rows, MaxGlobal: 6, MaxCategory: 6, MaxEditor: 6}); got != "" {
		t.Errorf("BuildContext() = %q, want empty", got)
	}
}

func TestDedupIsCaseInsensitive(t *testing.T) {
	rows := []core.FeedbackRecord{
		reject("Minder herhaling", "", "", ""),
		reject("MINDER HERHALING", "", "", ""),
	}
	got := BuildContext(Params{Rows: rows, MaxGlobal: 6, MaxCategory: 6, MaxEditor: 6})
	if strings.Count(got, "herhaling")+strings.Count(got, "HERHALING") != 1 {
		t.Errorf("duplicate feedback not deduplicated: %q", got)
	}
}

func TestNewestFirstAndCaps(t *testing.T) {
	var rows []core.FeedbackRecord
	for i := 0; i < 10; i++ {
		rows = append(rows, reject(fmt.Sprintf("regel %d", i), "", "", ""))
	}
	got := BuildContext(Params{Rows: rows, MaxGlobal: 3, MaxCategory: 3, MaxEditor: 3})

	// Nieuwste eerst: regel 9, 8, 7; oudere vallen buiten de cap.
	for _, want := range []string{"regel 9", "regel 8", "regel 7"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "regel 6") {
		t.Errorf("cap exceeded: %q", got)
	}
}
