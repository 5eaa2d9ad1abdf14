// Package publish implements the orchestrator: the per-run control loop
// that turns trending topics into reviewed, routed articles.
//
// Per trend it decides topic mode and article type, builds context, runs
// the generation chain, applies the safety, actuality and person
// filters, attaches an image, runs the quality gate, and routes the
// result to the published set or the pending queue. A run-wide limit
// counts both outcomes; most skips do not count. All collaborators come
// in through interfaces so the whole state machine is testable without
// network or models.
package publish

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"satirewire/internal/actuality"
	"satirewire/internal/config"
	"satirewire/internal/core"
	"satirewire/internal/editorial"
	"satirewire/internal/editors"
	"satirewire/internal/feedback"
	"satirewire/internal/featured"
	"satirewire/internal/feeds"
	"satirewire/internal/images"
	"satirewire/internal/logger"
	"satirewire/internal/pick"
	"satirewire/internal/review"
	"satirewire/internal/safety"
	"satirewire/internal/textutil"
)

// Chain is the slice of the editorial engine the orchestrator drives.
type Chain interface {
	SocietalPulseHook(ctx context.Context) (*core.TrendContext, error)
	SummarizeSource(ctx context.Context, headline, articleText string) []string
	LudicSuitable(ctx context.Context, trend, newsTitle string) (editorial.Suitability, error)
	ClassifyCategory(ctx context.Context, trend, newsTitle string) string
	GenerateArticle(ctx context.Context, in editorial.Input) (editorial.Draft, error)
	WritersRoomNotes(ctx context.Context, d editorial.Draft, articleType, topicMode string) []editorial.ReviewerNotes
	PunchUp(ctx context.Context, in editorial.Input, d editorial.Draft, notes []editorial.ReviewerNotes) (editorial.Draft, error)
	FinalPass(ctx context.Context, editor editors.Editor, d editorial.Draft, articleType string) editorial.Draft
	ExtractTimelyClaims(ctx context.Context, title, subtitle, content string) []editorial.Claim
	ActualityCheck(ctx context.Context, claim string, headlines []string) editorial.ActualityVerdict
	ExtractPersonNames(ctx context.Context, newsTitle, title, subtitle, content string) []string
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	Published(ctx context.Context) ([]core.Article, error)
	SavePublished(ctx context.Context, articles []core.Article) error
	Pending(ctx context.Context) ([]core.Article, error)
	SavePending(ctx context.Context, articles []core.Article) error
	FeedbackTail(ctx context.Context, maxLines int) ([]core.FeedbackRecord, error)
}

// Reviewer is the quality gate.
type Reviewer interface {
	Review(ctx context.Context, a core.Article) (review.Verdict, error)
}

// Notifier announces items queued for human review.
type Notifier interface {
	ReviewNeeded(ctx context.Context, title string, score int, reason string)
}

// Options are the per-run flags.
type Options struct {
	Limit              int
	NewsPerTrend       int
	Force              bool
	DryRun             bool
	ForceInvestigation bool
	SkipReview         bool
}

// Summary reports what a run did.
type Summary struct {
	TrendsSeen   int
	Written      int
	PublishedNew int
	Queued       int
	Preview      []string
}

// Orchestrator runs the publish pipeline.
type Orchestrator struct {
	cfg      *config.Config
	store    Store
	fetcher  feeds.TextFetcher
	chain    Chain
	reviewer Reviewer
	images   images.Provider
	notifier Notifier

	rng *rand.Rand
	now func() time.Time
}

// New builds an Orchestrator. Rng and now are injectable for tests; nil
// selects real randomness and the wall clock.
func New(cfg *config.Config, store Store, fetcher feeds.TextFetcher, chain Chain, reviewer Reviewer, imgs images.Provider, notifier Notifier, rng *rand.Rand, now func() time.Time) *Orchestrator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if imgs == nil {
		imgs = images.Disabled{}
	}
	return &Orchestrator{
		cfg: cfg, store: store, fetcher: fetcher, chain: chain,
		reviewer: reviewer, images: imgs, notifier: notifier,
		rng: rng, now: now,
	}
}

func (o *Orchestrator) newsURL(query string) string {
	return feeds.NewsSearchURL(query, o.cfg.App.Lang, o.cfg.App.Geo)
}

// dateKey renders a timestamp as a calendar day in the site's home
// timezone, for the daily investigation quota.
var amsterdam = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		return time.UTC
	}
	return loc
}()

func dateKey(t time.Time) string {
	return t.In(amsterdam).Format("2006-01-02")
}

func countInvestigationsOn(articles []core.Article, day string) int {
	n := 0
	for _, a := range articles {
		if a.ArticleType != core.ArticleTypeInvestigation {
			continue
		}
		created, err := time.Parse(time.RFC3339, a.CreatedDate)
		if err != nil {
			continue
		}
		if dateKey(created) == day {
			n++
		}
	}
	return n
}

// Run executes one publish pass.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Limit <= 0 {
		opts.Limit = o.cfg.Publish.Limit
	}
	if opts.NewsPerTrend <= 0 {
		opts.NewsPerTrend = o.cfg.Publish.NewsPerTrend
	}

	existing, err := o.store.Published(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load published set: %w", err)
	}
	existingSlugs := map[string]bool{}
	existingSources := map[string]bool{}
	for _, a := range existing {
		if a.Slug != "" {
			existingSlugs[a.Slug] = true
		}
		if a.SourceURL != "" {
			existingSources[a.SourceURL] = true
		}
	}
	// Only published items count toward the daily investigation quota.
	allForQuota := append([]core.Article{}, existing...)

	feedbackRows, err := o.store.FeedbackTail(ctx, o.cfg.Feedback.LookbackLines)
	if err != nil {
		logger.Warn("Failed to read feedback journal", "error", err)
	}

	trends, err := o.fetchTrends(ctx, opts.Limit)
	if err != nil {
		return Summary{}, err
	}
	logger.Info("Trends found", "count", len(trends))

	summary := Summary{TrendsSeen: len(trends)}

	if opts.DryRun && !o.cfg.AI.Enabled {
		n := len(trends)
		if n > opts.Limit {
			n = opts.Limit
		}
		summary.Preview = trends[:n]
		return summary, nil
	}

	var newArticles []core.Article

	for _, trend := range trends {
		if summary.Written >= opts.Limit {
			break
		}

		topicMode := pick.Weighted(o.rng, o.cfg.Publish.TopicModeWeights)

		var articleType string
		if opts.ForceInvestigation {
			articleType = core.ArticleTypeInvestigation
		} else {
			articleType = pick.Weighted(o.rng, o.cfg.Publish.ArticleTypeWeights)
			if articleType == core.ArticleTypeInvestigation &&
				countInvestigationsOn(allForQuota, dateKey(o.now())) >= o.cfg.Publish.MaxInvestigationsPerDay {
				articleType = pick.Weighted(o.rng, map[string]float64{
					core.ArticleTypeNormal: o.cfg.Publish.ArticleTypeWeights[core.ArticleTypeNormal],
					core.ArticleTypeShort:  o.cfg.Publish.ArticleTypeWeights[core.ArticleTypeShort],
				})
			}
		}

		logger.Info("Trend", "trend", trend, "topic_mode", topicMode, "article_type", articleType)

		tctx := o.buildTrendContext(ctx, trend, topicMode, opts, existingSources)
		if tctx == nil {
			continue
		}

		suitability, err := o.chain.LudicSuitable(ctx, tctx.ActualTrend, tctx.News.Title)
		if err != nil || !suitability.Suitable {
			logger.Info("Skip (ludic filter)", "trend", trend, "reason", suitability.Reason)
			continue
		}

		category := o.chain.ClassifyCategory(ctx, tctx.ActualTrend, tctx.News.Title)
		editor := editors.PickForCategory(o.rng, category)

		feedbackContext := feedback.BuildContext(feedback.Params{
			Rows:       feedbackRows,
			Category:   category,
			EditorID:   editor.ID,
			EditorName: editor.Name,

			MaxGlobal:   o.cfg.Feedback.MaxGlobal,
			MaxCategory: o.cfg.Feedback.MaxCategory,
			MaxEditor:   o.cfg.Feedback.MaxEditor,
		})

		input := editorial.Input{
			Trend:         tctx.ActualTrend,
			NewsTitle:     tctx.News.Title,
			NewsLink:      tctx.News.Link,
			SourceSummary: tctx.SourceSummary,
			Category:      category,
			Editor:        editor,
			ArticleType:   articleType,
			TopicMode:     topicMode,
			Feedback:      feedbackContext,
		}

		draft, err := o.chain.GenerateArticle(ctx, input)
		if err != nil {
			logger.Warn("Generation failed, skipping trend", "trend", trend, "error", err)
			continue
		}
		if draft.Skip {
			logger.Info("Skip (generator)", "trend", trend, "reason", draft.SkipReason)
			continue
		}

		notes := o.chain.WritersRoomNotes(ctx, draft, articleType, topicMode)
		punched, err := o.chain.PunchUp(ctx, input, draft, notes)
		if err != nil {
			logger.Warn("Punch-up failed, skipping trend", "trend", trend, "error", err)
			continue
		}
		final := o.chain.FinalPass(ctx, editor, punched, articleType)

		title := final.Title
		subtitle := final.Subtitle
		slug := textutil.Slugify(title)
		if slug == "" {
			logger.Info("Skip (empty slug)", "trend", trend)
			continue
		}
		if !opts.Force && existingSlugs[slug] {
			logger.Info("Skip (slug exists)", "slug", slug)
			continue
		}

		content := finalizeContent(final.Content, articleType)

		if topicMode == core.TopicModeTrending {
			result := actuality.RunChecksOrExplain(ctx, o.chain, o.fetcher, o.newsURL, title, subtitle, content)
			if !result.OK {
				logger.Info("Queue (actuality)", "reason", result.Reason, "claim", result.FailedClaim)

				if !opts.DryRun && o.cfg.Review.HumanReviewMode {
					notes := []string{
						"Actualiteit-check faalde: " + result.Reason,
						"Claim: " + result.FailedClaim,
					}
					if result.RewriteInstructions != "" {
						notes = append(notes, "Rewrite-advies: "+result.RewriteInstructions)
					}
					if result.SampleHeadline != "" {
						notes = append(notes, "Voorbeeldkop: "+result.SampleHeadline)
					}
					pending := o.buildArticle(title, subtitle, slug, category, content, topicMode, articleType, editor, tctx.News, false)
					pending.ReviewStatus = core.ReviewStatusNeedsHuman
					pending.ReviewNotes = notes
					if err := o.queuePending(ctx, pending); err != nil {
						logger.Error("Failed to queue pending article", err, "slug", slug)
					} else if o.notifier != nil {
						o.notifier.ReviewNeeded(ctx, title, 0, "Actualiteit-check")
					}
					summary.Queued++
				}

				summary.Written++
				continue
			}
		}

		people := o.chain.ExtractPersonNames(ctx, tctx.News.Title, title, subtitle, content)
		if hit := safety.CheckPeople(ctx, o.fetcher, o.newsURL, people); hit.Hit {
			logger.Info("Skip (person filter)", "reason", hit.Reason)
			continue
		}

		featuredCandidate := false
		for _, c := range o.cfg.Featured.Categories {
			if c == category {
				featuredCandidate = true
				break
			}
		}

		article := o.buildArticle(title, subtitle, slug, category, content, topicMode, articleType, editor, tctx.News, featuredCandidate)
		o.attachImage(ctx, &article, tctx.ActualTrend)

		verdict, err := o.reviewArticle(ctx, article, opts)
		if err != nil {
			logger.Warn("Quality review failed, skipping trend", "slug", slug, "error", err)
			continue
		}
		if verdict.Approved {
			article.ReviewStatus = core.ReviewStatusApproved
		} else {
			article.ReviewStatus = core.ReviewStatusRejected
		}
		article.ReviewScore = verdict.Score
		article.ReviewNotes = verdict.Reasons

		needsHuman := o.cfg.Review.ForceAllToPending ||
			(o.cfg.Review.HumanReviewMode && (!verdict.Approved || verdict.Score < o.cfg.Review.ScoreBelow))

		if needsHuman {
			logger.Info("Queued for human review", "slug", slug, "score", verdict.Score)
			if !opts.DryRun {
				article.ReviewStatus = core.ReviewStatusNeedsHuman
				if err := o.queuePending(ctx, article); err != nil {
					logger.Error("Failed to queue pending article", err, "slug", slug)
				} else if o.notifier != nil {
					o.notifier.ReviewNeeded(ctx, article.Title, verdict.Score, "Pending review")
				}
				summary.Queued++
			}
			summary.Written++
			continue
		}

		logger.Info("Approved", "slug", slug, "score", verdict.Score)
		newArticles = append(newArticles, article)
		allForQuota = append([]core.Article{article}, allForQuota...)
		existingSlugs[slug] = true
		summary.Written++
		summary.PublishedNew++
	}

	if opts.DryRun {
		for _, a := range newArticles {
			summary.Preview = append(summary.Preview, fmt.Sprintf("%s | %s/%s | %s (%s)", a.Category, a.ArticleType, a.TopicMode, a.Title, a.Slug))
		}
		return summary, nil
	}

	if len(newArticles) == 0 {
		logger.Info("No new articles published", "written", summary.Written)
		return summary, nil
	}

	merged := append(newArticles, existing...)
	merged = featured.Apply(merged, featured.Options{
		MaxFeatured: o.cfg.Featured.Max,
		TTL:         o.cfg.Featured.TTL,
		Categories:  o.cfg.Featured.Categories,
		Now:         o.now(),
	})
	merged = featured.EnsureOne(merged, featured.Options{
		TTL:        o.cfg.Featured.TTL,
		Categories: o.cfg.Featured.Categories,
		Now:        o.now(),
	})

	if err := o.store.SavePublished(ctx, merged); err != nil {
		return summary, fmt.Errorf("failed to persist published set: %w", err)
	}
	logger.Info("Run complete", "published_new", summary.PublishedNew, "written", summary.Written, "limit", opts.Limit)
	return summary, nil
}

// fetchTrends loads, cleans and pre-filters the trend candidates: too
// generic titles dropped, window bounded to max(2*limit, 20).
func (o *Orchestrator) fetchTrends(ctx context.Context, limit int) ([]string, error) {
	raw, err := o.fetcher.FetchText(ctx, feeds.TrendsURL(o.cfg.App.Geo))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends: %w", err)
	}
	items, err := feeds.ParseItems(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trends feed: %w", err)
	}

	window := 2 * limit
	if window < 20 {
		window = 20
	}

	var trends []string
	for _, it := range items {
		if len(trends) >= window {
			break
		}
		t := textutil.Clean(it.Title)
		if t == "" || textutil.IsTooGeneric(t) {
			continue
		}
		trends = append(trends, t)
	}
	return trends, nil
}

// buildTrendContext resolves a trend to its generation context, or nil
// to skip the trend without counting it.
func (o *Orchestrator) buildTrendContext(ctx context.Context, trend, topicMode string, opts Options, existingSources map[string]bool) *core.TrendContext {
	if topicMode == core.TopicModeSocietalPulse {
		hook, err := o.chain.SocietalPulseHook(ctx)
		if err != nil || hook == nil {
			logger.Info("No societal pulse hook, skipping", "trend", trend)
			return nil
		}
		return hook
	}

	raw, err := o.fetcher.FetchText(ctx, o.newsURL(trend))
	if err != nil {
		logger.Info("No news context, skipping", "trend", trend)
		return nil
	}
	items, err := feeds.ParseItems(raw)
	if err != nil || len(items) == 0 {
		logger.Info("No news context, skipping", "trend", trend)
		return nil
	}
	if len(items) > opts.NewsPerTrend {
		items = items[:opts.NewsPerTrend]
	}
	news := feeds.FirstUsable(items)
	if news == nil {
		return nil
	}

	if !opts.Force && news.Link != "" && existingSources[news.Link] {
		logger.Info("Source already used, skipping", "link", news.Link)
		return nil
	}

	// Source summary is best effort: any failure continues without it.
	var sourceSummary []string
	if news.Link != "" {
		if html, err := o.fetcher.FetchText(ctx, news.Link); err == nil {
			sourceSummary = o.chain.SummarizeSource(ctx, news.Title, feeds.ReadableText(html))
		}
	}

	return &core.TrendContext{
		News:          *news,
		ActualTrend:   trend,
		SourceSummary: sourceSummary,
	}
}

func finalizeContent(content, articleType string) string {
	if content == "" {
		return ""
	}
	text := textutil.RemoveAuthorSignature(content)
	if articleType == core.ArticleTypeInvestigation {
		return textutil.ClampHeadingLevels(textutil.NormalizeInvestigationMarkdown(text))
	}
	return textutil.NormalizeParagraphs(text, 2, 4)
}

func (o *Orchestrator) buildArticle(title, subtitle, slug, category, content, topicMode, articleType string, editor editors.Editor, news core.NewsItem, featuredCandidate bool) core.Article {
	return core.Article{
		ID:       uuid.NewString(),
		Slug:     slug,
		Title:    title,
		Subtitle: subtitle,
		Category: category,
		Content:  content,

		TopicMode:   topicMode,
		ArticleType: articleType,

		IsShortNews:       articleType == core.ArticleTypeShort,
		FeaturedCandidate: featuredCandidate,

		Author:      editor.Name,
		CreatedDate: o.now().Format(time.RFC3339),

		SourceURL:      news.Link,
		SourceHeadline: news.Title,

		EditorID:   editor.ID,
		EditorName: editor.Name,
		EditorRole: editor.Role,
	}
}

func (o *Orchestrator) attachImage(ctx context.Context, a *core.Article, trend string) {
	if o.cfg.Images.Mode == "off" || o.cfg.Images.Mode == "" {
		return
	}
	img, err := o.images.FindImage(ctx, images.Query{
		Title:          a.Title,
		Trend:          trend,
		Category:       a.Category,
		SourceHeadline: a.SourceHeadline,
		Slug:           a.Slug,
	})
	if err != nil {
		logger.Warn("Image lookup failed", "slug", a.Slug, "error", err)
		return
	}
	images.Attach(a, img)
}

func (o *Orchestrator) reviewArticle(ctx context.Context, a core.Article, opts Options) (review.Verdict, error) {
	if opts.SkipReview || !o.cfg.Review.Enabled {
		return review.Verdict{ArticleID: a.ID, Approved: true, Score: 100}, nil
	}
	return o.reviewer.Review(ctx, a)
}

func (o *Orchestrator) queuePending(ctx context.Context, a core.Article) error {
	pending, err := o.store.Pending(ctx)
	if err != nil {
		return err
	}
	pending = append([]core.Article{a}, pending...)
	return o.store.SavePending(ctx, pending)
}
