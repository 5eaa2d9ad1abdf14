// Package editorial implements the LLM orchestration functions of the
// generation chain: hooks, summaries, suitability, classification,
// drafting, writers'-room notes, punch-up, final edit, claim and person
// extraction, and the actuality verdict.
//
// Every function is stateless at the interface level: inputs in,
// validated structured result out. Long-form writing goes through the
// write backend; the short structured tasks go through the filter
// backend and tolerate parse failures with conservative defaults.
// Write-backend output is decoded through the repair codec because
// long completions are the ones that come back malformed.
package editorial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"satirewire/internal/core"
	"satirewire/internal/editors"
	"satirewire/internal/llm"
	"satirewire/internal/textutil"
)

// Config wires an Engine.
type Config struct {
	Write  llm.Completer
	Filter llm.Completer
	Codec  *llm.Codec

	// ClassifyModel overrides the filter default for the cheap
	// classification-style calls.
	ClassifyModel string

	WriteTemperature        float32
	SourceSummaryMaxBullets int
	SourceTextMaxChars      int

	Rng *rand.Rand
}

// Engine carries the backends and tuning for the generation chain.
type Engine struct {
	cfg Config
}

// NewEngine builds an Engine.
func NewEngine(cfg Config) *Engine {
	if cfg.WriteTemperature == 0 {
		cfg.WriteTemperature = 0.85
	}
	if cfg.SourceSummaryMaxBullets == 0 {
		cfg.SourceSummaryMaxBullets = 4
	}
	if cfg.SourceTextMaxChars == 0 {
		cfg.SourceTextMaxChars = 4000
	}
	return &Engine{cfg: cfg}
}

// Draft is the shape shared by the draft, punch-up and final stages.
type Draft struct {
	Title    string
	Subtitle string
	Content  string
	Category string

	Skip       bool
	SkipReason string
}

// Suitability is the ludic-gate verdict.
type Suitability struct {
	Suitable bool
	Reason   string
}

// ReviewerNotes is one writers'-room reviewer's advice.
type ReviewerNotes struct {
	Reviewer string
	Name     string
	Notes    []string
}

// Claim is one time-sensitive, checkable claim extracted from a draft.
type Claim struct {
	Claim string `json:"claim"`
	Query string `json:"query"`
	Type  string `json:"type"`
}

// ActualityVerdict is the per-claim freshness judgment. OK defaults to
// true; only a confident "probably stale or wrong" flips it.
type ActualityVerdict struct {
	OK                  bool   `json:"ok"`
	Confidence          int    `json:"confidence"`
	Reason              string `json:"reason"`
	RewriteInstructions string `json:"rewrite_instructions"`
}

// Input bundles everything the writing stages need for one article.
type Input struct {
	Trend         string
	NewsTitle     string
	NewsLink      string
	SourceSummary []string
	Category      string
	Editor        editors.Editor
	ArticleType   string
	TopicMode     string
	Feedback      string
}

const baseEditorialRules = `JE SCHRIJFT VOOR EEN SATIRISCHE NIEUWSSITE DIE KLINKT ALS ECHT NIEUWS.

Basisregels:
- Schrijf rustig, helder en leesbaar (vloeiende zinnen, normale alinea's).
- Neem de lezer serieus: journalistieke toon, concrete setting, herkenbare NL-context.
- Humor ontstaat door serieuze vorm + bijna-geloofwaardige redenering die langzaam ontspoort.
- Geen grapstapeling, geen willekeurige absurditeit zonder logica.
- Elke grap moet aan iets concreets refereren (situatie, detail, citaat, beleid, gedrag).
- Geen ondertekening in de tekst (geen "— naam").`

const safetySkipRules = `ALS de context duidelijk ernstig is (doden/ernstig gewond/geweld/(seksueel) geweld/zelfdoding/oorlog/terrorisme/rampen met slachtoffers/kinderen als slachtoffer), SKIP.

ALS JE MOET SKIPPEN:
{ "skip": true, "reason": "korte reden in het Nederlands" }`

const articleSchemaHint = `{
  "title": "string",
  "subtitle": "string",
  "content_markdown": "string"
}`

// decodeLoose parses filter-backend output without the repair step;
// short structured calls fall back to their defaults on failure.
func decodeLoose(raw string, v any) bool {
	data, err := llm.ExtractJSON(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SocietalPulseHook invents a societal theme plus a plausible headline
// hook. Returns nil when the model produces nothing usable; the caller
// skips the trend.
func (e *Engine) SocietalPulseHook(ctx context.Context) (*core.TrendContext, error) {
	prompt := `Bedenk één onderwerp dat NU leeft in Nederland (maatschappelijk gesprek), zonder te verwijzen naar een concrete echte gebeurtenis.
Maak er een plausibel ogende "nieuwskop" van die als haakje kan dienen voor satire.

Regels:
- Geen echte namen van slachtoffers, geen rampen, geen oorlog/terrorisme
- Mag wel gaan over instituties/systemen/gedrag (OV, woningmarkt, werkdruk, inflatie, onderwijs, zorg, social media, AI op werk, etc.)
- Het moet duidelijk NL-context hebben
- Output als geldige JSON, exact:
{
  "trend": "2-5 woorden onderwerp",
  "newsTitle": "korte kop (max 110 tekens)"
}
Geen extra tekst.`

	raw, err := e.cfg.Filter.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Model:       e.cfg.ClassifyModel,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Trend     string `json:"trend"`
		NewsTitle string `json:"newsTitle"`
	}
	if !decodeLoose(raw, &out) || out.Trend == "" || out.NewsTitle == "" {
		return nil, nil
	}
	return &core.TrendContext{
		News:        core.NewsItem{Title: textutil.Clean(out.NewsTitle)},
		ActualTrend: textutil.Clean(out.Trend),
	}, nil
}

// SummarizeSource condenses a source article into factual bullets.
// Too-short input or any failure yields nil; the chain continues
// without a summary.
func (e *Engine) SummarizeSource(ctx context.Context, headline, articleText string) []string {
	text := strings.TrimSpace(articleText)
	if len(text) < 300 {
		return nil
	}
	if len(text) > e.cfg.SourceTextMaxChars {
		text = text[:e.cfg.SourceTextMaxChars]
	}

	prompt := fmt.Sprintf(`Vat dit nieuwsartikel ZEER KORT samen, puur feitelijk.

Regels:
- Max %d bullets
- Geen satire
- Geen meningen
- Alleen wat er feitelijk gebeurt
- Geen aannames
- In het Nederlands

Input:
KOP: %q

TEKST:
%s

Output als geldige JSON:
{ "summary": ["feit 1", "feit 2", "feit 3"] }

Geen extra tekst.`, e.cfg.SourceSummaryMaxBullets, headline, text)

	raw, err := e.cfg.Filter.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return nil
	}
	var out struct {
		Summary []string `json:"summary"`
	}
	if !decodeLoose(raw, &out) {
		return nil
	}

	var bullets []string
	for _, b := range out.Summary {
		if len(bullets) >= e.cfg.SourceSummaryMaxBullets {
			break
		}
		if clean := textutil.Clean(b); clean != "" {
			bullets = append(bullets, clean)
		}
	}
	return bullets
}

// LudicSuitable is the hard safety gate before any writing happens.
// Parse failure reads as unsuitable.
func (e *Engine) LudicSuitable(ctx context.Context, trend, newsTitle string) (Suitability, error) {
	prompt := fmt.Sprintf(`Bepaal of deze nieuwscontext geschikt is voor LUDIEKE satire.

NIET geschikt bij o.a.:
- ernstig letsel / zwaargewond / kritieke toestand
- doden / overleden / om het leven / dodelijk
- oorlog/terrorisme/aanslagen/gijzeling
- (seksueel) geweld, mishandeling, zelfdoding
- rampen met slachtoffers
- kinderen als slachtoffer

Input:
Trend: %q
Nieuwskop: %q

Antwoord als geldige JSON, exact:
{ "suitable": true|false, "reason": "kort" }

Geen extra tekst.`, trend, newsTitle)

	raw, err := e.cfg.Filter.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return Suitability{}, err
	}
	var out struct {
		Suitable bool   `json:"suitable"`
		Reason   string `json:"reason"`
	}
	if !decodeLoose(raw, &out) {
		return Suitability{Suitable: false}, nil
	}
	return Suitability{Suitable: out.Suitable, Reason: textutil.Clean(out.Reason)}, nil
}

// ClassifyCategory picks one category label. Anything outside the fixed
// set falls back to the default category.
func (e *Engine) ClassifyCategory(ctx context.Context, trend, newsTitle string) string {
	prompt := fmt.Sprintf(`Kies precies één categorie voor een satirisch nieuwsartikel.

Input:
- Trend: %q
- Nieuwskop: %q

Kies exact één van deze labels:
%s

Regels:
- Antwoord met alleen het label, exact gespeld zoals hierboven
- Geen uitleg, geen extra woorden`, trend, newsTitle, strings.Join(core.Categories, "\n"))

	raw, err := e.cfg.Filter.Complete(ctx, llm.Request{Prompt: prompt, Model: e.cfg.ClassifyModel})
	if err != nil {
		return core.FallbackCategory
	}
	label := strings.ToLower(strings.TrimSpace(raw))
	if core.ValidCategory(label) {
		return label
	}
	return core.FallbackCategory
}

func typeRules(articleType string) string {
	switch articleType {
	case core.ArticleTypeShort:
		return `VORM (KORT NIEUWS):
- 90-150 woorden
- 2 korte alinea's (niet 1)
- Eén centrale observatie/situatie
- Rustige opbouw, één duidelijke escalatie, droge afsluiter
- Maximaal één expliciete grap per alinea (liefst impliciet)
- Geen kopjes, geen opsommingen
- Eindig altijd op een volledige zin (laatste teken: ., !, ? of …)`
	case core.ArticleTypeInvestigation:
		return `VORM (ONDERZOEKSREDACTIE):
- 1400-2200 woorden (mag door trims iets korter uitvallen)
- Rustig tempo, heel goed leesbaar, journalistieke toon
- Gebruik kopjes (4-6) zoals echte onderzoeksjournalistiek
- Open met een concrete onderzoeksvraag (1 alinea)
- Minstens 4 interviews/quotes met naam + rol (verzonnen mag, plausibel)
- Minstens 4 'bronnen' (cijfers/rapporten/notities/lekken) (verzonnen mag, plausibel)
- Laat minstens 2 bronnen elkaar tegenspreken
- Humor: serieuze toon + bureaucratische logica + herkenbare NL-details
- Eindig droog, institutioneel, zonder moraal
- Eindig altijd op een volledige zin (laatste teken: ., !, ? of …)`
	default:
		return `VORM (NORMAAL ARTIKEL):
- 320-520 woorden
- 3-5 alinea's
- Elke alinea: eerst concrete setting/context, dan observatie/verdraaiing
- Maximaal één expliciete grap per alinea (liefst onderkoeld)
- Geen kopjes, geen opsommingen
- Eindig altijd op een volledige zin (laatste teken: ., !, ? of …)`
	}
}

func modeRules(topicMode string) string {
	if topicMode == core.TopicModeSocietalPulse {
		return "CONTEXT:\n- Dit is \"societal pulse\": claim geen concrete echte gebeurtenis."
	}
	return "CONTEXT:\n- Dit is gebaseerd op een echte trending context."
}

func bulletList(items []string, fallback string) string {
	if len(items) == 0 {
		return "- " + fallback
	}
	return "- " + strings.Join(items, "\n- ")
}

func summaryBlock(in Input) string {
	if in.TopicMode != core.TopicModeTrending || len(in.SourceSummary) == 0 {
		return ""
	}
	return "FEITELIJKE SAMENVATTING (alleen context, niet kopiëren):\n- " +
		strings.Join(in.SourceSummary, "\n- ") + "\n"
}

func feedbackBlock(in Input) string {
	fb := strings.TrimSpace(in.Feedback)
	if fb == "" {
		return ""
	}
	return "REDACTIE-FEEDBACK OM TOE TE PASSEN:\n" + fb + "\n"
}

func (e *Engine) draftPrompt(in Input) string {
	return fmt.Sprintf(`%s

Je bent een vaste satirische redacteur/columnist.

Naam: %s
Rol: %s

STEM (volgen):
%s

SIGNATURE MOVES (optioneel):
%s

TABOES (hard):
%s

Catchphrases (max 1, alleen als het past):
%s

SCHRIJF ÉÉN SATIRISCH NIEUWSARTIKEL (droog, institutioneel, logisch-absurd).

%s

ANDERS:

SATIRISCHE PREMISSE (VERPLICHT):
- Bepaal: WAT wordt belachelijk gemaakt (beleid/systeem/collectief gedrag/managementtaal/moraalpaniek)?
- In de eerste alinea moet duidelijk zijn waar de spot naartoe gaat (zonder knipoog).
- Het stuk moet te herleiden zijn tot:
  "Nederland lost [probleem] op door [verkeerde maar logisch gepresenteerde maatregel]."
- Elke alinea dient diezelfde premisse (geen zijpaden).

STIJL:
- Nooit de grap uitleggen.
- Droge, journalistieke toon.
- Humor via serieuze vorm + procedure + herkenbare details.
- Eindig droog en procedureel.

%s

%s

%s
%s
INPUT:
- Thema: %q
- Haakje (kop): %q
- Link (alleen context, kan leeg zijn): %q

OUTPUT (ALLEEN GELDIGE JSON):
{
  "title": "korte, scherpe kop (max 90 tekens)",
  "subtitle": "droge teaser (max 120 tekens)",
  "content_markdown": "tekst met \n\n tussen alinea's (kopjes bij onderzoek). GEEN ondertekening."
}`,
		baseEditorialRules,
		in.Editor.Name, in.Editor.Role,
		bulletList(in.Editor.Voice, "Droog, helder, herkenbaar NL, met context."),
		bulletList(in.Editor.SignatureMoves, "Eindig droog."),
		bulletList(in.Editor.Taboos, "Geen kwetsbare slachtoffers als mikpunt."),
		bulletList(in.Editor.Catchphrases, "(geen)"),
		safetySkipRules,
		modeRules(in.TopicMode),
		typeRules(in.ArticleType),
		feedbackBlock(in),
		summaryBlock(in),
		in.Trend, in.NewsTitle, in.NewsLink,
	)
}

type draftPayload struct {
	Skip            bool   `json:"skip"`
	Reason          string `json:"reason"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	ContentMarkdown string `json:"content_markdown"`
}

// GenerateArticle produces the first draft. Investigations are written
// in up to three continuation chunks because single completions get
// truncated. A skip result means the model judged the context too
// serious; errors mean the trend is abandoned.
func (e *Engine) GenerateArticle(ctx context.Context, in Input) (Draft, error) {
	prompt := e.draftPrompt(in)

	var payload draftPayload
	if in.ArticleType == core.ArticleTypeInvestigation {
		chunked, err := e.generateInvestigation(ctx, prompt)
		if err != nil {
			return Draft{}, err
		}
		payload = *chunked
	} else {
		raw, err := e.cfg.Write.Complete(ctx, llm.Request{
			Prompt:      prompt,
			Temperature: e.cfg.WriteTemperature,
			MaxTokens:   2500,
		})
		if err != nil {
			return Draft{}, err
		}
		if err := e.cfg.Codec.Decode(ctx, raw, articleSchemaHint, &payload); err != nil {
			return Draft{}, fmt.Errorf("draft produced no valid JSON: %w", err)
		}
	}

	if payload.Skip {
		reason := textutil.Clean(payload.Reason)
		if reason == "" {
			reason = "Niet geschikt"
		}
		return Draft{Skip: true, SkipReason: reason, Category: in.Category}, nil
	}

	title := textutil.Clean(payload.Title)
	if title == "" {
		title = textutil.FallbackTitle(in.Trend)
	}
	subtitle := textutil.Clean(payload.Subtitle)
	if subtitle == "" {
		subtitle = textutil.FallbackSubtitle
	}
	return Draft{
		Title:    title,
		Subtitle: subtitle,
		Content:  strings.TrimSpace(payload.ContentMarkdown),
		Category: in.Category,
	}, nil
}

const (
	investigationMaxChunks    = 3
	investigationChunkTokens  = 1024
	investigationTailContext  = 1400
	investigationTemperatureB = 0.02
)

type chunkPayload struct {
	Title               string `json:"title"`
	Subtitle            string `json:"subtitle"`
	ContentMarkdownPart string `json:"content_markdown_part"`
	Continue            bool   `json:"continue"`
}

func (e *Engine) generateInvestigation(ctx context.Context, basePrompt string) (*draftPayload, error) {
	firstPrompt := basePrompt + `

BELANGRIJK: je output kan door max_tokens worden afgekapt. Daarom schrijf je in stukken.

Output als geldige JSON, exact:
{
  "title": "...",
  "subtitle": "...",
  "content_markdown_part": "ALLEEN DIT DEEL van de tekst (begin van artikel)",
  "continue": true|false
}

Regels:
- content_markdown_part bevat alleen artikeltekst (met \n\n en kopjes)
- continue=true als je nóg niet klaar bent
- eindig content_markdown_part op een volzin (., !, ? of …)
- geen extra tekst buiten JSON`

	raw, err := e.cfg.Write.Complete(ctx, llm.Request{
		Prompt:      firstPrompt,
		Temperature: e.cfg.WriteTemperature,
		MaxTokens:   investigationChunkTokens,
	})
	if err != nil {
		return nil, err
	}

	var first chunkPayload
	if err := e.cfg.Codec.Decode(ctx, raw, `{"title":"string","subtitle":"string","content_markdown_part":"string","continue":true}`, &first); err != nil {
		return nil, fmt.Errorf("investigation chunk 1 produced no valid JSON: %w", err)
	}
	if strings.TrimSpace(first.ContentMarkdownPart) == "" {
		return nil, errors.New("investigation chunk 1 is empty")
	}

	content := strings.TrimSpace(first.ContentMarkdownPart)
	keepGoing := first.Continue

	for i := 2; i <= investigationMaxChunks && keepGoing; i++ {
		tail := content
		if len(tail) > investigationTailContext {
			tail = tail[len(tail)-investigationTailContext:]
		}
		contPrompt := fmt.Sprintf(`Je bent bezig met een onderzoeksartikel. Ga verder waar je gebleven was.

Laatste regels (context):
%s

Schrijf het VOLGENDE deel.

Output als geldige JSON, exact:
{
  "content_markdown_part": "vervolgtekst (geen herhaling van eerdere tekst)",
  "continue": true|false
}

Regels:
- begin soepel (geen "Zoals eerder gezegd")
- geen herhaling; ga direct door
- eindig op een volzin (., !, ? of …)
- geen extra tekst buiten JSON`, tail)

		temperature := e.cfg.WriteTemperature + investigationTemperatureB
		if temperature > 0.9 {
			temperature = 0.9
		}
		rawN, err := e.cfg.Write.Complete(ctx, llm.Request{
			Prompt:      contPrompt,
			Temperature: temperature,
			MaxTokens:   investigationChunkTokens,
		})
		if err != nil {
			break
		}
		var next chunkPayload
		if err := e.cfg.Codec.Decode(ctx, rawN, `{"content_markdown_part":"string","continue":true}`, &next); err != nil {
			break
		}
		part := strings.TrimSpace(next.ContentMarkdownPart)
		if part == "" {
			break
		}
		content = content + "\n\n" + part
		keepGoing = next.Continue
	}

	return &draftPayload{
		Title:           textutil.Clean(first.Title),
		Subtitle:        textutil.Clean(first.Subtitle),
		ContentMarkdown: content,
	}, nil
}

// writersRoom are the three fixed internal reviewers.
var writersRoom = []struct {
	ID   string
	Name string
	Vibe string
}{
	{"absurdist", "De Absurdist", "Escalatie, krankzinnig maar logisch gebracht"},
	{"cynic", "De Cynicus", "Droog, snijdend, institutioneel cynisme"},
	{"builder", "De Bouwmeester", "Opbouw, timing, leesbaarheid"},
}

const maxNotesPerReviewer = 6

// WritersRoomNotes collects advisory notes from the three fixed
// reviewer personas. A reviewer that fails simply contributes an empty
// list.
func (e *Engine) WritersRoomNotes(ctx context.Context, d Draft, articleType, topicMode string) []ReviewerNotes {
	var all []ReviewerNotes
	for _, r := range writersRoom {
		prompt := fmt.Sprintf(`%s

Je bent %s. Jouw stijl: %s.

TAAK: geef REDACTIENOTITIES om dit satirische artikel beter te maken (leesbaarder + sterker + grappiger door vorm).
Regels:
- Max %d bullets
- Super concreet: wijs 1-2 plekken aan die onduidelijk/te vol/te staccato zijn en zeg wat er moet veranderen
- Geef 2 mogelijke wendingen (kort, concreet, passend bij de premisse)
- Geef 1 voorstel voor een betere laatste zin (droog)
- Geen volledige herschrijving

Context:
type=%s mode=%s

DRAFT:
TITEL: %s
SUBTITLE: %s
TEKST:
%s

Output als geldige JSON:
{ "notes": ["...","..."] }
Geen extra tekst.`,
			baseEditorialRules, r.Name, r.Vibe, maxNotesPerReviewer,
			articleType, topicMode,
			d.Title, d.Subtitle, textutil.Clamp(d.Content, 2600),
		)

		entry := ReviewerNotes{Reviewer: r.ID, Name: r.Name}
		raw, err := e.cfg.Filter.Complete(ctx, llm.Request{Prompt: prompt, Temperature: 0.2})
		if err == nil {
			var out struct {
				Notes []string `json:"notes"`
			}
			if decodeLoose(raw, &out) {
				for _, n := range out.Notes {
					if len(entry.Notes) >= maxNotesPerReviewer {
						break
					}
					if clean := textutil.Clean(n); clean != "" {
						entry.Notes = append(entry.Notes, clean)
					}
				}
			}
		}
		all = append(all, entry)
	}
	return all
}

// PunchUp rewrites the draft using the writers'-room notes. Unlike the
// draft stage it never skips; failure to produce JSON is an error.
func (e *Engine) PunchUp(ctx context.Context, in Input, d Draft, notes []ReviewerNotes) (Draft, error) {
	var notesBlock strings.Builder
	for _, n := range notes {
		notesBlock.WriteString("- " + n.Name + ":\n")
		for _, line := range n.Notes {
			notesBlock.WriteString("  • " + line + "\n")
		}
	}
	rendered := strings.TrimSpace(notesBlock.String())
	if rendered == "" {
		rendered = "(geen)"
	}

	prompt := fmt.Sprintf(`%s

Je bent de hoofdauteur. Je krijgt interne redactienotities.
HERSCHRIJF het artikel zodat het duidelijker, beter opgebouwd en scherper wordt (droog, institutioneel, logisch-absurd).

DOELEN:
- Premisse snel helder (zonder te schreeuwen)
- Minder stapeling: schrap drukke zinnen
- Betere opbouw: context, frictie, escalatie, droge uitloop
- Verhoog absurditeit via beleid/procedures/woordvoerders
- Voeg maximaal 2 citeerbare zinnen toe (kort, snijdend)
- Upgrade de laatste zin: droog, institutioneel (geen moraal)
- Eindig altijd op een volledige zin (., !, ? of …)

%s
%s

%s%sINTERN NOTES:
%s

ORIGINEEL DRAFT:
TITEL: %s
SUBTITLE: %s
TEKST:
%s

OUTPUT (ALLEEN GELDIGE JSON):
{
  "title": "korte, scherpe kop (max 90 tekens)",
  "subtitle": "droge teaser (max 120 tekens)",
  "content_markdown": "herschreven artikeltekst met \n\n tussen alinea's (of kopjes bij onderzoek). GEEN ondertekening."
}`,
		baseEditorialRules,
		modeRules(in.TopicMode), typeRules(in.ArticleType),
		feedbackBlock(in), summaryBlock(in),
		rendered,
		d.Title, d.Subtitle, d.Content,
	)

	temperature := e.cfg.WriteTemperature + 0.03
	if temperature > 0.92 {
		temperature = 0.92
	}
	raw, err := e.cfg.Write.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   2500,
	})
	if err != nil {
		return Draft{}, err
	}

	var payload draftPayload
	if err := e.cfg.Codec.Decode(ctx, raw, articleSchemaHint, &payload); err != nil {
		return Draft{}, fmt.Errorf("punch-up produced no valid JSON: %w", err)
	}

	title := textutil.Clean(payload.Title)
	if title == "" {
		title = d.Title
	}
	subtitle := textutil.Clean(payload.Subtitle)
	if subtitle == "" {
		subtitle = d.Subtitle
	}
	return Draft{
		Title:    title,
		Subtitle: subtitle,
		Content:  strings.TrimSpace(payload.ContentMarkdown),
		Category: in.Category,
	}, nil
}

const catchphraseChance = 0.30

// FinalPass is the last textual transformation. It can never lose the
// article: on any failure the input draft is returned unchanged. With
// some probability one of the editor's catchphrases is offered to the
// model.
func (e *Engine) FinalPass(ctx context.Context, editor editors.Editor, d Draft, articleType string) Draft {
	catchphrase := "(geen)"
	if len(editor.Catchphrases) > 0 && e.cfg.Rng != nil && e.cfg.Rng.Float64() < catchphraseChance {
		catchphrase = fmt.Sprintf("%q", editor.Catchphrases[e.cfg.Rng.Intn(len(editor.Catchphrases))])
	}

	prompt := fmt.Sprintf(`%s

Je bent de EINDREDACTEUR.

Naam: %s
Rol: %s

STEM (volgen):
%s

SIGNATURE MOVES (kies er 1-2 en voer ze echt uit):
%s

TABOES (hard blokkeren):
%s

DOEL:
- Maak het strakker en leesbaarder (niet 'drukker')
- Snijd verklarende zinnen weg die de grap uitleggen
- Check dat elke alinea de satirische premisse dient
- Upgrade de laatste zin: droog, procedureel, moreel leeg, laat hem terugpakken op de strekking van het artikel
- Eindig altijd op een volledige zin (., !, ? of …)

OPTIONEEL:
- 0-1 catchphrase als het natuurlijk past
Catchphrase suggestie: %s

INPUT:
TYPE: %s
TITEL: %s
SUBTITLE: %s
TEKST:
%s

Output als geldige JSON:
{
  "title": "...",
  "subtitle": "...",
  "content_markdown": "..."
}
Geen extra tekst.`,
		baseEditorialRules,
		editor.Name, editor.Role,
		bulletList(editor.Voice, "Droog, helder, weinig uitleg, wel context waar nodig."),
		bulletList(editor.SignatureMoves, "Maak de laatste zin droog en kil."),
		bulletList(editor.Taboos, "Geen privépersonen, geen slachtoffers, geen haat."),
		catchphrase,
		articleType,
		d.Title, d.Subtitle, textutil.Clamp(d.Content, 3800),
	)

	raw, err := e.cfg.Write.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   1800,
	})
	if err != nil {
		return d
	}
	var payload draftPayload
	if err := e.cfg.Codec.Decode(ctx, raw, articleSchemaHint, &payload); err != nil {
		return d
	}

	out := d
	if title := textutil.Clean(payload.Title); title != "" {
		out.Title = title
	}
	if subtitle := textutil.Clean(payload.Subtitle); subtitle != "" {
		out.Subtitle = subtitle
	}
	if content := strings.TrimSpace(payload.ContentMarkdown); content != "" {
		out.Content = content
	}
	return out
}

const maxClaims = 5

// ExtractTimelyClaims pulls at most five checkable, time-sensitive
// claims from the article. No claims is a normal outcome.
func (e *Engine) ExtractTimelyClaims(ctx context.Context, title, subtitle, content string) []Claim {
	prompt := fmt.Sprintf(`Selecteer alleen claims uit dit satirische artikel die:
1) tijdgevoelig zijn (iets dat "nu" waar/actueel moet zijn), én
2) feitelijk te verifiëren zijn via nieuwsbronnen (dus niet duidelijk satirische framing).

NEEM WEL MEE (voorbeelden):
- "X is benoemd tot ..."
- "Y is ontslagen / gestopt als ..."
- "Wet/maatregel Z is ingevoerd / teruggedraaid"
- "Bedrijf Q heeft CEO vervangen"
- "Politicus P bekleedt nu functie F"
- "Team A heeft wedstrijd B gewonnen" (alleen bij sportuitslag)

NEEM NIET MEE:
- satirische interpretaties
- algemeenheden zonder checkbare kern
- duidelijk absurdistische zinnen die niet bedoeld zijn als feit
- meningen, hyperbool, sarcasme, beeldspraak
- vage claims zonder wie/wat

Input:
TITLE: %q
SUBTITLE: %q
BODY:
%s

Output als geldige JSON:
{
  "claims": [
    {
      "claim": "letterlijke, korte, checkbare claim uit de tekst",
      "query": "zoekopdracht om te verifiëren (Nederlands, 4-10 woorden)",
      "type": "coach|player|politics|ceo|role|law|policy|election|sports_result|other"
    }
  ]
}

Regels:
- Max %d claims
- Als er geen echt checkbare tijdclaim is: { "claims": [] }
- Gebruik bij 'query' de belangrijkste eigennaam + functie/rol/onderwerp
- Geen extra tekst.`, title, subtitle, textutil.Clamp(content, 2500), maxClaims)

	raw, err := e.cfg.Filter.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return nil
	}
	var out struct {
		Claims []Claim `json:"claims"`
	}
	if !decodeLoose(raw, &out) {
		return nil
	}
	if len(out.Claims) > maxClaims {
		out.Claims = out.Claims[:maxClaims]
	}
	return out.Claims
}

// ActualityCheck judges one claim against recent headlines. Parse
// failure defaults to OK so uncertainty never blocks publication.
func (e *Engine) ActualityCheck(ctx context.Context, claim string, headlines []string) ActualityVerdict {
	var list strings.Builder
	for i, h := range headlines {
		fmt.Fprintf(&list, "%d. %s\n", i+1, h)
	}

	prompt := fmt.Sprintf(`Check actualiteit.

Claim:
%q

Recente koppen:
%s
Output:
{ "ok": true/false, "confidence": 0-100, "reason": "kort", "rewrite_instructions": "..." }

Regels:
- ok=false alleen als WAARSCHIJNLIJK onjuist/verouderd
- Onzeker: ok=true met lage confidence
- Geen extra tekst.`, claim, list.String())

	raw, err := e.cfg.Filter.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return ActualityVerdict{OK: true}
	}
	var verdict ActualityVerdict
	if !decodeLoose(raw, &verdict) {
		return ActualityVerdict{OK: true}
	}
	return verdict
}

const maxPeople = 5

// ExtractPersonNames pulls at most five real person names from the
// article material for the person-safety filter.
func (e *Engine) ExtractPersonNames(ctx context.Context, newsTitle, title, subtitle, content string) []string {
	prompt := fmt.Sprintf(`Haal alleen PERSONEN (echte mensen) uit onderstaande tekst.
Geen organisaties, landen, tv-programma's, voetbalclubs.

Input:
- Nieuwskop: %q
- Titel: %q
- Subtitle: %q
- Tekst: %q

Output:
{ "people": ["Voornaam Achternaam"] }

Regels:
- Max %d
- Geen: { "people": [] }
- Geen extra tekst.`, newsTitle, title, subtitle, textutil.Clamp(content, 1400), maxPeople)

	raw, err := e.cfg.Filter.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return nil
	}
	var out struct {
		People []string `json:"people"`
	}
	if !decodeLoose(raw, &out) {
		return nil
	}

	var people []string
	for _, p := range out.People {
		if len(people) >= maxPeople {
			break
		}
		if clean := textutil.Clean(p); clean != "" {
			people = append(people, clean)
		}
	}
	return people
}
