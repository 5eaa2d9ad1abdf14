// Package featured applies the featured-article rules over the merged
// published set: expire stale flags, select a bounded pool of fresh
// candidates, and guarantee the site never ends up with zero featured
// items.
package featured

import (
	"sort"
	"time"

	"satirewire/internal/core"
)

// Options bound a selection pass. Now is injected so tests control the
// clock.
type Options struct {
	MaxFeatured int
	TTL         time.Duration
	Categories  []string
	Now         time.Time
}

func parseISO(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func sortNewestFirst(articles []*core.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, _ := parseISO(articles[i].CreatedDate)
		tj, _ := parseISO(articles[j].CreatedDate)
		return ti.After(tj)
	})
}

// Apply mutates articles in place: expired featured flags are cleared,
// the first MaxFeatured articles from the candidate pool (newest first,
// falling back to all non-short articles) are marked featured, and the
// transient candidate flag is stripped from everyone. A featured_at
// that is already set survives re-selection so the original feature
// start time is kept.
func Apply(articles []core.Article, opts Options) []core.Article {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	nowISO := now.UTC().Format(time.RFC3339)
	untilISO := now.Add(opts.TTL).UTC().Format(time.RFC3339)

	for i := range articles {
		a := &articles[i]
		if a.IsFeatured && a.FeaturedUntil != "" {
			if until, ok := parseISO(a.FeaturedUntil); ok && !until.After(now) {
				a.IsFeatured = false
				a.FeaturedAt = ""
				a.FeaturedUntil = ""
			}
		}
	}

	var pool []*core.Article
	for i := range articles {
		if articles[i].FeaturedCandidate {
			pool = append(pool, &articles[i])
		}
	}
	if len(pool) == 0 {
		for i := range articles {
			if !articles[i].IsShortNews {
				pool = append(pool, &articles[i])
			}
		}
	}
	sortNewestFirst(pool)

	if len(pool) > opts.MaxFeatured {
		pool = pool[:opts.MaxFeatured]
	}
	chosen := map[string]bool{}
	for _, a := range pool {
		chosen[a.ID] = true
	}

	for i := range articles {
		a := &articles[i]
		if chosen[a.ID] {
			a.IsFeatured = true
			if a.FeaturedAt == "" {
				a.FeaturedAt = nowISO
			}
			a.FeaturedUntil = untilISO
		} else {
			a.IsFeatured = false
			a.FeaturedAt = ""
			a.FeaturedUntil = ""
		}
		a.FeaturedCandidate = false
	}

	return articles
}

// EnsureOne force-features one fallback article when Apply left zero
// featured: prefer non-short, then a featured-worthy category, then
// simply the first article.
func EnsureOne(articles []core.Article, opts Options) []core.Article {
	for i := range articles {
		if articles[i].IsFeatured {
			return articles
		}
	}
	if len(articles) == 0 {
		return articles
	}

	inCategories := func(category string) bool {
		for _, c := range opts.Categories {
			if c == category {
				return true
			}
		}
		return false
	}

	fallback := -1
	for i := range articles {
		if !articles[i].IsShortNews && articles[i].ArticleType != core.ArticleTypeShort {
			fallback = i
			break
		}
	}
	if fallback == -1 {
		for i := range articles {
			if inCategories(articles[i].Category) {
				fallback = i
				break
			}
		}
	}
	if fallback == -1 {
		fallback = 0
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	a := &articles[fallback]
	a.IsFeatured = true
	a.FeaturedAt = now.UTC().Format(time.RFC3339)
	a.FeaturedUntil = now.Add(opts.TTL).UTC().Format(time.RFC3339)
	return articles
}
