// Package actuality verifies the time-sensitive claims in a trending
// article against recent headlines. Unverifiable claims pass; only a
// confident "probably stale" verdict fails the article.
package actuality

import (
	"context"

	"satirewire/internal/editorial"
	"satirewire/internal/feeds"
	"satirewire/internal/textutil"
)

// Checker is the slice of the editorial engine this package needs.
type Checker interface {
	ExtractTimelyClaims(ctx context.Context, title, subtitle, content string) []editorial.Claim
	ActualityCheck(ctx context.Context, claim string, headlines []string) editorial.ActualityVerdict
}

// Result of a check pass. When OK is false the article is queued for a
// human with the failure details as review notes.
type Result struct {
	OK                  bool
	FailedClaim         string
	Reason              string
	RewriteInstructions string
	SampleHeadline      string
}

const headlinesPerClaim = 8

// FetchRecentHeadlines fetches and cleans up to limit headlines for a
// search query.
func FetchRecentHeadlines(ctx context.Context, fetcher feeds.TextFetcher, newsURL func(query string) string, query string, limit int) ([]string, error) {
	raw, err := fetcher.FetchText(ctx, newsURL(query))
	if err != nil {
		return nil, err
	}
	items, err := feeds.ParseItems(raw)
	if err != nil {
		return nil, err
	}

	var headlines []string
	for _, it := range items {
		if len(headlines) >= limit {
			break
		}
		if title := textutil.Clean(it.Title); title != "" {
			headlines = append(headlines, title)
		}
	}
	return headlines, nil
}

// RunChecksOrExplain extracts the article's timely claims and verifies
// each against recent headlines. A claim without fetched headlines is
// skipped as unverifiable. The first failing verdict stops the pass
// and returns the structured explanation.
func RunChecksOrExplain(ctx context.Context, checker Checker, fetcher feeds.TextFetcher, newsURL func(query string) string, title, subtitle, content string) Result {
	claims := checker.ExtractTimelyClaims(ctx, title, subtitle, content)

	for _, c := range claims {
		claim := textutil.Clean(c.Claim)
		query := textutil.Clean(c.Query)
		if claim == "" || query == "" {
			continue
		}

		headlines, err := FetchRecentHeadlines(ctx, fetcher, newsURL, query, headlinesPerClaim)
		if err != nil || len(headlines) == 0 {
			continue
		}

		verdict := checker.ActualityCheck(ctx, claim, headlines)
		if !verdict.OK {
			reason := textutil.Clean(verdict.Reason)
			if reason == "" {
				reason = "Verouderde claim"
			}
			return Result{
				OK:                  false,
				FailedClaim:         claim,
				Reason:              reason,
				RewriteInstructions: textutil.Clean(verdict.RewriteInstructions),
				SampleHeadline:      headlines[0],
			}
		}
	}

	return Result{OK: true}
}
