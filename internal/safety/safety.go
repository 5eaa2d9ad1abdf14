// Package safety implements the hard topic gate: a fixed pattern list
// over headlines for severe events, and the person filter that scans
// recent news about named real people.
//
// The patterns are applied to headline material only (source headline,
// title, subtitle), never to the article body, so serious-sounding
// words inside an absurd body do not trip the gate.
package safety

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"satirewire/internal/feeds"
	"satirewire/internal/textutil"
)

var hardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bern(?:stig)?\s+gewond\b`),
	regexp.MustCompile(`(?i)\bzwaargewond\b`),
	regexp.MustCompile(`(?i)\bkritieke\s+toestand\b`),
	regexp.MustCompile(`(?i)\bop\s+de\s+ic\b`),
	regexp.MustCompile(`(?i)\bintensive\s+care\b`),
	regexp.MustCompile(`(?i)\bcoma\b`),
	regexp.MustCompile(`(?i)\boverleden\b`),
	regexp.MustCompile(`(?i)\bom\s+het\s+leven\s+gekomen\b`),
	regexp.MustCompile(`(?i)\bdodelijk\b`),
	regexp.MustCompile(`(?i)\baanslag\b`),
	regexp.MustCompile(`(?i)\bterror(?:isme|ist)?\b`),
	regexp.MustCompile(`(?i)\bschietpartij\b`),
	regexp.MustCompile(`(?i)\bsteekpartij\b`),
	regexp.MustCompile(`(?i)\bgijzel(?:ing|aar)?\b`),
	regexp.MustCompile(`(?i)\bzelfmoord\b`),
	regexp.MustCompile(`(?i)\bsu[iï]cide\b`),
	regexp.MustCompile(`(?i)\bverkracht(?:ing)?\b`),
	regexp.MustCompile(`(?i)\bseksueel\s+misbruik\b`),
}

// IsSeriousTopicTitle reports whether a headline trips the hard pattern
// list.
func IsSeriousTopicTitle(title string) bool {
	for _, re := range hardPatterns {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

// HasSeriousSignals applies the hard gate to an article's headline
// material: source headline, title and subtitle combined. The body is
// deliberately excluded.
func HasSeriousSignals(sourceHeadline, title, subtitle string) bool {
	combo := strings.TrimSpace(sourceHeadline + " | " + title + " | " + subtitle)
	return IsSeriousTopicTitle(combo)
}

// PersonHit is the person-filter result. Hit means the article must be
// discarded entirely.
type PersonHit struct {
	Hit    bool
	Who    string
	Reason string
}

const headlinesPerPerson = 10

// CheckPeople fetches recent headlines about each named person and
// flags the first one with a serious-news signal. Fetch and parse
// failures are ignored per person; an unverifiable person is not a
// hit.
func CheckPeople(ctx context.Context, fetcher feeds.TextFetcher, newsURL func(query string) string, people []string) PersonHit {
	for _, person := range people {
		raw, err := fetcher.FetchText(ctx, newsURL(person))
		if err != nil {
			continue
		}
		items, err := feeds.ParseItems(raw)
		if err != nil {
			continue
		}
		if len(items) > headlinesPerPerson {
			items = items[:headlinesPerPerson]
		}
		for _, it := range items {
			title := textutil.Clean(it.Title)
			if title == "" {
				continue
			}
			if IsSeriousTopicTitle(title) {
				return PersonHit{
					Hit:    true,
					Who:    person,
					Reason: fmt.Sprintf("Ernstig nieuws-signaal gevonden over %q (bijv. %q)", person, title),
				}
			}
		}
	}
	return PersonHit{}
}
