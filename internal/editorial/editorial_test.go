package editorial

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"satirewire/internal/editors"
	"satirewire/internal/llm"
)

// scriptedLLM returns queued responses in order.
type scriptedLLM struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *scriptedLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, req.Prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func newEngine(write, filter llm.Completer) *Engine {
	return NewEngine(Config{
		Write:  write,
		Filter: filter,
		Codec:  llm.NewCodec(nil),
		Rng:    rand.New(rand.NewSource(1)),
	})
}

func testInput(articleType string) Input {
	return Input{
		Trend:       "woningmarkt",
		NewsTitle:   "Huizenprijzen stijgen opnieuw",
		NewsLink:    "https://example.org/nieuws",
		Category:    "binnenland",
		Editor:      editors.All[0],
		ArticleType: articleType,
		TopicMode:   "trending",
	}
}

func TestClassifyCategory(t *testing.T) {
	filter := &scriptedLLM{responses: []string{" Politiek \n"}}
	e := newEngine(nil, filter)
	if got := e.ClassifyCategory(context.Background(), "t", "k"); got != "politiek" {
		t.Errorf("ClassifyCategory() = %q, want politiek", got)
	}
}

func TestClassifyCategoryFallback(t *testing.T) {
	filter := &scriptedLLM{responses: []string{"economie"}}
	e := newEngine(nil, filter)
	if got := e.ClassifyCategory(context.Background(), "t", "k"); got != "binnenland" {
		t.Errorf("ClassifyCategory() with unknown label = %q, want binnenland", got)
	}
}

func TestSummarizeSourceSkipsShortText(t *testing.T) {
	filter := &scriptedLLM{}
	e := newEngine(nil, filter)
	if got := e.SummarizeSource(context.Background(), "kop", "te kort"); got != nil {
		t.Errorf("SummarizeSource(short) = %v, want nil", got)
	}
	if filter.calls != 0 {
		t.Errorf("filter called %d times for short text, want 0", filter.calls)
	}
}

func TestSummarizeSourceCapsBullets(t *testing.T) {
	filter := &scriptedLLM{responses: []string{
		`{"summary": ["een", "twee", "drie", "vier", "vijf", "zes"]}`,
	}}
	e := newEngine(nil, filter)
	long := strings.Repeat("Feitelijke zin over het nieuws. ", 20)
	got := e.SummarizeSource(context.Background(), "kop", long)
	if len(got) != 4 {
		t.Errorf("SummarizeSource() = %d bullets, want 4", len(got))
	}
}

func TestLudicSuitableParseFailureIsUnsuitable(t *testing.T) {
	filter := &scriptedLLM{responses: []string{"geen json"}}
	e := newEngine(nil, filter)
	got, err := e.LudicSuitable(context.Background(), "t", "k")
	if err != nil {
		t.Fatalf("LudicSuitable() error: %v", err)
	}
	if got.Suitable {
		t.Error("unparseable verdict should read as unsuitable")
	}
}

func TestSocietalPulseHook(t *testing.T) {
	filter := &scriptedLLM{responses: []string{
		`{"trend": "werkdruk in de zorg", "newsTitle": "Zorgmedewerkers plannen pauze in 2031"}`,
	}}
	e := newEngine(nil, filter)
	got, err := e.SocietalPulseHook(context.Background())
	if err != nil {
		t.Fatalf("SocietalPulseHook() error: %v", err)
	}
	if got == nil || got.ActualTrend != "werkdruk in de zorg" {
		t.Errorf("SocietalPulseHook() = %+v", got)
	}
	if got.News.Link != "" {
		t.Error("societal pulse hook should have no link")
	}
}

func TestSocietalPulseHookUnusableIsNil(t *testing.T) {
	filter := &scriptedLLM{responses: []string{`{"trend": "", "newsTitle": ""}`}}
	e := newEngine(nil, filter)
	got, err := e.SocietalPulseHook(context.Background())
	if err != nil || got != nil {
		t.Errorf("SocietalPulseHook() = %+v, %v; want nil, nil", got, err)
	}
}

func TestGenerateArticleNormal(t *testing.T) {
	write := &scriptedLLM{responses: []string{
		`{"title": "NS introduceert stiltecoupé voor meningen", "subtitle": "Proef start maandag", "content_markdown": "Eerste alinea.\n\nTweede alinea."}`,
	}}
	e := newEngine(write, &scriptedLLM{})
	got, err := e.GenerateArticle(context.Background(), testInput("normal"))
	if err != nil {
		t.Fatalf("GenerateArticle() error: %v", err)
	}
	if got.Skip {
		t.Fatal("unexpected skip")
	}
	if got.Title != "NS introduceert stiltecoupé voor meningen" || got.Category != "binnenland" {
		t.Errorf("GenerateArticle() = %+v", got)
	}
}

func TestGenerateArticleSkip(t *testing.T) {
	write := &scriptedLLM{responses: []string{`{"skip": true, "reason": "Te ernstig"}`}}
	e := newEngine(write, &scriptedLLM{})
	got, err := e.GenerateArticle(context.Background(), testInput("normal"))
	if err != nil {
		t.Fatalf("GenerateArticle() error: %v", err)
	}
	if !got.Skip || got.SkipReason != "Te ernstig" {
		t.Errorf("GenerateArticle() = %+v, want skip", got)
	}
}

func TestGenerateArticleFallbackTitleAndSubtitle(t *testing.T) {
	write := &scriptedLLM{responses: []string{`{"title": "", "subtitle": "", "content_markdown": "Tekst."}`}}
	e := newEngine(write, &scriptedLLM{})
	got, err := e.GenerateArticle(context.Background(), testInput("normal"))
	if err != nil {
		t.Fatalf("GenerateArticle() error: %v", err)
	}
	if !strings.Contains(got.Title, "woningmarkt") {
		t.Errorf("fallback title should mention the trend: %q", got.Title)
	}
	if got.Subtitle == "" {
		t.Error("fallback subtitle missing")
	}
}

func TestGenerateInvestigationAccumulatesChunks(t *testing.T) {
	write := &scriptedLLM{responses: []string{
		`{"title": "Het grote parkeeronderzoek", "subtitle": "Deel 1", "content_markdown_part": "## Inleiding\n\nEerste deel.", "continue": true}`,
		`{"content_markdown_part": "Tweede deel.", "continue": true}`,
		`{"content_markdown_part": "Slotdeel.", "continue": false}`,
	}}
	e := newEngine(write, &scriptedLLM{})
	got, err := e.GenerateArticle(context.Background(), testInput("investigation"))
	if err != nil {
		t.Fatalf("GenerateArticle(investigation) error: %v", err)
	}
	for _, part := range []string{"Eerste deel.", "Tweede deel.", "Slotdeel."} {
		if !strings.Contains(got.Content, part) {
			t.Errorf("chunk missing from accumulated content: %q", part)
		}
	}
	if write.calls != 3 {
		t.Errorf("write backend called %d times, want 3", write.calls)
	}
}

func TestGenerateInvestigationStopsAtChunkLimit(t *testing.T) {
	write := &scriptedLLM{responses: []string{
		`{"title": "T", "subtitle": "S", "content_markdown_part": "Deel 1.", "continue": true}`,
		`{"content_markdown_part": "Deel 2.", "continue": true}`,
		`{"content_markdown_part": "Deel 3.", "continue": true}`,
	}}
	e := newEngine(write, &scriptedLLM{})
	if _, err := e.GenerateArticle(context.Background(), testInput("investigation")); err != nil {
		t.Fatalf("GenerateArticle() error: %v", err)
	}
	if write.calls != 3 {
		t.Errorf("chunk limit not respected: %d calls, want 3", write.calls)
	}
}

func TestWritersRoomNotesThreeReviewers(t *testing.T) {
	filter := &scriptedLLM{responses: []string{
		`{"notes": ["strakker openen"]}`,
		`{"notes": ["laatste zin droger"]}`,
		`geen json`,
	}}
	e := newEngine(nil, filter)
	notes := e.WritersRoomNotes(context.Background(), Draft{Title: "T", Content: "tekst"}, "normal", "trending")
	if len(notes) != 3 {
		t.Fatalf("got %d reviewers, want 3", len(notes))
	}
	if notes[0].Reviewer != "absurdist" || notes[1].Reviewer != "cynic" || notes[2].Reviewer != "builder" {
		t.Errorf("reviewer order wrong: %+v", notes)
	}
	if len(notes[2].Notes) != 0 {
		t.Error("failed reviewer should contribute empty notes, not break the room")
	}
}

func TestPunchUpKeepsDraftFieldsWhenEmpty(t *testing.T) {
	write := &scriptedLLM{responses: []string{`{"title": "", "subtitle": "", "content_markdown": "Herschreven."}`}}
	e := newEngine(write, &scriptedLLM{})
	d := Draft{Title: "Oude titel", Subtitle: "Oude teaser", Content: "Oud."}
	got, err := e.PunchUp(context.Background(), testInput("normal"), d, nil)
	if err != nil {
		t.Fatalf("PunchUp() error: %v", err)
	}
	if got.Title != "Oude titel" || got.Content != "Herschreven." {
		t.Errorf("PunchUp() = %+v", got)
	}
}

func TestFinalPassFallsBackToInput(t *testing.T) {
	write := &scriptedLLM{err: errors.New("backend down")}
	e := newEngine(write, &scriptedLLM{})
	d := Draft{Title: "T", Subtitle: "S", Content: "C"}
	if got := e.FinalPass(context.Background(), editors.All[0], d, "normal"); got != d {
		t.Errorf("FinalPass() on error = %+v, want input unchanged", got)
	}
}

func TestExtractTimelyClaimsCap(t *testing.T) {
	filter := &scriptedLLM{responses: []string{
		`{"claims": [{"claim":"1"},{"claim":"2"},{"claim":"3"},{"claim":"4"},{"claim":"5"},{"claim":"6"},{"claim":"7"}]}`,
	}}
	e := newEngine(nil, filter)
	got := e.ExtractTimelyClaims(context.Background(), "t", "s", "c")
	if len(got) != 5 {
		t.Errorf("ExtractTimelyClaims() = %d claims, want max 5", len(got))
	}
}

func TestActualityCheckDefaultsToOK(t *testing.T) {
	filter := &scriptedLLM{responses: []string{"onbruikbaar antwoord"}}
	e := newEngine(nil, filter)
	got := e.ActualityCheck(context.Background(), "claim", []string{"kop"})
	if !got.OK {
		t.Error("unparseable verdict should default to ok=true")
	}
}

func TestExtractPersonNames(t *testing.T) {
	filter := &scriptedLLM{responses: []string{
		`{"people": [" Jan  Jansen ", "", "Piet Pieters"]}`,
	}}
	e := newEngine(nil, filter)
	got := e.ExtractPersonNames(context.Background(), "kop", "t", "s", "c")
	if len(got) != 2 || got[0] != "Jan Jansen" {
		t.Errorf("ExtractPersonNames() = %v", got)
	}
}
