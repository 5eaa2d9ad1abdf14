// Package review is the quality gate: a hard reject on serious
// headline signals, otherwise an AI quality score with an approval
// threshold. Every verdict is persisted for audit.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"satirewire/internal/core"
	"satirewire/internal/llm"
	"satirewire/internal/logger"
	"satirewire/internal/safety"
	"satirewire/internal/textutil"
)

// Verdict is one persisted quality-review result.
type Verdict struct {
	ArticleID     string   `json:"article_id"`
	Approved      bool     `json:"approved"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
	MustFix       []string `json:"must_fix"`
	RewritePrompt string   `json:"rewrite_prompt"`
	Timestamp     string   `json:"timestamp"`
}

// VerdictStore persists review verdicts keyed by article id.
type VerdictStore interface {
	SaveReview(ctx context.Context, articleID string, verdict any) error
}

// Reviewer runs the gate.
type Reviewer struct {
	filter           llm.Completer
	model            string
	store            VerdictStore
	approveThreshold int
}

// NewReviewer builds a Reviewer. The threshold is the minimum score for
// approval on top of the model's own approved flag.
func NewReviewer(filter llm.Completer, model string, store VerdictStore, approveThreshold int) *Reviewer {
	if approveThreshold <= 0 {
		approveThreshold = 75
	}
	return &Reviewer{filter: filter, model: model, store: store, approveThreshold: approveThreshold}
}

// ClampScore normalizes a raw score to an integer in [0,100].
func ClampScore(raw float64) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	n := int(math.Round(raw))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

const (
	maxReasons       = 5
	maxRewritePrompt = 2000
)

func capStrings(in []string, n int) []string {
	out := make([]string, 0, n)
	for _, s := range in {
		if len(out) >= n {
			break
		}
		out = append(out, s)
	}
	return out
}

// Review gates one article. A serious signal in the headline material
// rejects with score 0 and no model call. Otherwise the quality model
// scores it; approval requires both the model's flag and the score
// threshold. The verdict is persisted either way; a persistence
// failure is logged but does not change the verdict.
func (r *Reviewer) Review(ctx context.Context, a core.Article) (Verdict, error) {
	verdictID := a.ID
	if verdictID == "" {
		verdictID = a.Slug
	}

	if safety.HasSeriousSignals(a.SourceHeadline, a.Title, a.Subtitle) {
		verdict := Verdict{
			ArticleID: verdictID,
			Approved:  false,
			Score:     0,
			Reasons: []string{
				"Niet ludiek geschikt: bronkop/titel/subtitle bevat duidelijke ernstige signalen (letselschade/doden/geweld/etc.).",
			},
			Timestamp: core.NowISO(),
		}
		r.persist(ctx, verdict)
		return verdict, nil
	}

	result, err := r.aiQualityReview(ctx, a)
	if err != nil {
		return Verdict{}, err
	}
	result.ArticleID = verdictID
	result.Timestamp = core.NowISO()
	r.persist(ctx, result)
	return result, nil
}

func (r *Reviewer) persist(ctx context.Context, v Verdict) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveReview(ctx, v.ArticleID, v); err != nil {
		logger.Warn("Failed to persist review verdict", "article_id", v.ArticleID, "error", err)
	}
}

func (r *Reviewer) aiQualityReview(ctx context.Context, a core.Article) (Verdict, error) {
	author := a.Author
	if author == "" {
		author = a.EditorName
	}

	prompt := fmt.Sprintf(`Je bent de EINDREDACTEUR van een ludieke satirische nieuwssite.

Doel:
- Plaats alleen artikelen die echt ludiek en grappig zijn.
- Niet gemeen, niet ongemakkelijk, niet uitleggerig.

Belangrijk:
- Ernst-check is al gedaan op bronkop/titel/subtitle. De body kan "ernstige woorden" bevatten als grap.
- Jij beoordeelt nu vooral kwaliteit, humor en ritme.

Input:
- source_headline: %q
- category: %q
- author: %q

Artikel:
TITLE: %q
SUBTITLE: %q
BODY:
%s

Beoordeel streng op:
1) Eerste zin: meteen grappig (geen aanloop).
2) Ludiek: hard op systemen/gedrag, niet op kwetsbare personen.
3) Ritme: korte alinea's met witregels, geen opsommingen/kopjes.
4) Escalatie: steeds absurder, maar logisch binnen het eigen universum.
5) Punchline: droog, abrupt, laatste alinea.

Geef score 0-100 en keur alleen goed als score >= %d.

Output: ALLEEN geldige JSON exact in dit schema:
{
  "approved": true/false,
  "score": 0-100,
  "reasons": ["...max 5 korte redenen..."],
  "must_fix": ["...max 5 concrete fixes..."],
  "rewrite_prompt": "korte instructie voor herschrijven (leeg als approved=true)"
}`,
		a.SourceHeadline, a.Category, author,
		a.Title, a.Subtitle, a.Content,
		r.approveThreshold,
	)

	raw, err := r.filter.Complete(ctx, llm.Request{Prompt: prompt, Model: r.model})
	if err != nil {
		return Verdict{}, fmt.Errorf("quality review call failed: %w", err)
	}

	data, err := llm.ExtractJSON(raw)
	if err != nil {
		return Verdict{}, fmt.Errorf("quality review produced no JSON: %w", err)
	}
	var out struct {
		Approved      bool     `json:"approved"`
		Score         float64  `json:"score"`
		Reasons       []string `json:"reasons"`
		MustFix       []string `json:"must_fix"`
		RewritePrompt string   `json:"rewrite_prompt"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Verdict{}, fmt.Errorf("quality review schema mismatch: %w", err)
	}

	score := ClampScore(out.Score)
	approved := out.Approved && score >= r.approveThreshold

	rewrite := ""
	if !approved {
		rewrite = textutil.Clamp(out.RewritePrompt, maxRewritePrompt)
	}
	return Verdict{
		Approved:      approved,
		Score:         score,
		Reasons:       capStrings(out.Reasons, maxReasons),
		MustFix:       capStrings(out.MustFix, maxReasons),
		RewritePrompt: rewrite,
	}, nil
}
