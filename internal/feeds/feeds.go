// Package feeds fetches and parses the external news surfaces the
// pipeline reads: the trending-topics RSS feed, news search results per
// trend, and the readable text of linked source articles.
package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"satirewire/internal/core"
)

// TextFetcher fetches a URL and returns its body as text. The pipeline
// depends on this interface so tests can substitute canned responses.
type TextFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Client is the production TextFetcher.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient builds a Client with the given user agent and per-request
// timeout.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// FetchText GETs rawURL and returns the response body. Non-2xx statuses
// are errors.
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch failed with status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	return string(body), nil
}

// TrendsURL builds the trending-topics RSS URL for a geo code.
func TrendsURL(geo string) string {
	return "https://trends.google.com/trending/rss?geo=" + url.QueryEscape(geo)
}

// NewsSearchURL builds a news search RSS URL for a query, localized to
// the given language and country codes.
func NewsSearchURL(query, lang, country string) string {
	return fmt.Sprintf(
		"https://news.google.com/rss/search?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		url.QueryEscape(query), lang, country, country, lang,
	)
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// ParseItems parses an RSS document into news items. Item order is
// preserved; parse errors surface as errors rather than empty lists so
// callers can distinguish a broken feed from an empty one.
func ParseItems(raw string) ([]core.NewsItem, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	decoder.Strict = false

	var doc rss
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]core.NewsItem, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		items = append(items, core.NewsItem{
			Title:   strings.TrimSpace(it.Title),
			Link:    strings.TrimSpace(it.Link),
			PubDate: strings.TrimSpace(it.PubDate),
		})
	}
	return items, nil
}

// FirstUsable returns the first item carrying both a title and a link,
// falling back to the first item, or nil for an empty list.
func FirstUsable(items []core.NewsItem) *core.NewsItem {
	for i := range items {
		if items[i].Title != "" && items[i].Link != "" {
			return &items[i]
		}
	}
	if len(items) > 0 {
		return &items[0]
	}
	return nil
}

// ReadableText reduces an HTML page to its visible text: scripts,
// styles and markup removed, whitespace collapsed.
func ReadableText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, iframe").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}
