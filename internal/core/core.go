// Package core defines the central entities shared across the pipeline:
// articles, comments, feedback records, and the fixed enumerations that
// classify them.
package core

import "time"

// Topic modes determine whether an article is anchored to a real news item
// or to a synthesized societal theme.
const (
	TopicModeTrending      = "trending"
	TopicModeSocietalPulse = "societal_pulse"
)

// Article types drive word-count and structure rules during generation.
const (
	ArticleTypeNormal        = "normal"
	ArticleTypeShort         = "short"
	ArticleTypeInvestigation = "investigation"
)

// Review statuses over the article lifecycle.
const (
	ReviewStatusNeedsHuman      = "needs_human"
	ReviewStatusApproved        = "approved"
	ReviewStatusApprovedByHuman = "approved_by_human"
	ReviewStatusRejected        = "rejected"
	ReviewStatusRejectedByHuman = "rejected_by_human"
)

// Feedback record actions.
const (
	ActionReject          = "reject"
	ActionDeletePublished = "delete_published"
	ActionDeleteComment   = "delete_comment"
)

// Categories is the fixed set of article categories. The classifier falls
// back to FallbackCategory for anything outside this set.
var Categories = []string{
	"politiek",
	"binnenland",
	"buitenland",
	"tech",
	"lifestyle",
	"sport",
	"cultuur",
}

// FallbackCategory is used when classification returns an unknown label.
const FallbackCategory = "binnenland"

// ValidCategory reports whether label is one of the fixed categories.
func ValidCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// ImageURLs holds the rendered size variants of an article image.
type ImageURLs struct {
	Thumb    string `json:"thumb,omitempty"`
	Small    string `json:"small,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Large    string `json:"large,omitempty"`
	Original string `json:"original,omitempty"`
}

// ImageLicense describes the license of a sourced image.
type ImageLicense struct {
	Short string `json:"short,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Image is the optional nested image object attached to an article.
type Image struct {
	URLs            ImageURLs     `json:"urls"`
	License         *ImageLicense `json:"license,omitempty"`
	AttributionText string        `json:"attribution_text,omitempty"`
	SourcePageURL   string        `json:"source_page_url,omitempty"`
	Provider        string        `json:"provider,omitempty"`
	Query           string        `json:"query,omitempty"`
}

// Article is the central entity of the pipeline. Persisted snapshots use
// the json field names below; FeaturedCandidate is transient and stripped
// before persistence by the featured-article selector.
type Article struct {
	ID       string `json:"id"`       // Opaque unique token
	Slug     string `json:"slug"`     // URL-safe, derived from title, dedup key
	Title    string `json:"title"`    // Headline
	Subtitle string `json:"subtitle"` // Dry teaser line
	Category string `json:"category"` // One of Categories
	Content  string `json:"content"`  // Body text / markdown

	TopicMode   string `json:"topic_mode"`   // trending | societal_pulse
	ArticleType string `json:"article_type"` // normal | short | investigation

	Image        *Image `json:"image"`         // Optional nested image object
	ImageURL     string `json:"image_url"`     // Convenience: large/original variant
	ThumbnailURL string `json:"thumbnail_url"` // Convenience: thumb/small variant
	ImageSource  string `json:"image_source"`  // Source page of the image
	ImageLicense string `json:"image_license"` // Short license label

	IsFeatured        bool   `json:"is_featured"`
	IsShortNews       bool   `json:"is_short_news"` // Always article_type == "short"
	FeaturedAt        string `json:"featured_at"`   // ISO-8601, empty unless featured
	FeaturedUntil     string `json:"featured_until"`
	FeaturedCandidate bool   `json:"featured_candidate,omitempty"` // Transient selector input

	Author      string `json:"author"`
	CreatedDate string `json:"created_date"` // ISO-8601, set once, immutable

	SourceURL      string `json:"source_url"`      // Empty for societal_pulse
	SourceHeadline string `json:"source_headline"` // Empty for societal_pulse

	EditorID   string `json:"editor_id"`
	EditorName string `json:"editor_name"`
	EditorRole string `json:"editor_role"`

	ReviewStatus string   `json:"review_status,omitempty"`
	ReviewScore  int      `json:"review_score"` // Clamped to [0,100]
	ReviewNotes  []string `json:"review_notes,omitempty"`
	ReviewID     string   `json:"review_id,omitempty"`
	ReviewedAt   string   `json:"reviewed_at,omitempty"` // Stamped on human approval
}

// Comment is a reader comment, stored grouped by article slug.
type Comment struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	ParentID  string `json:"parent_id,omitempty"` // Empty for top-level comments
	Name      string `json:"name"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// FeedbackRecord is one line of the append-only feedback journal. Records
// are never mutated or deleted; readers take bounded tail windows.
type FeedbackRecord struct {
	At     string `json:"at"` // ISO-8601
	Action string `json:"action"`

	ID             string `json:"id,omitempty"`
	Slug           string `json:"slug,omitempty"`
	Title          string `json:"title,omitempty"`
	SourceHeadline string `json:"source_headline,omitempty"`

	Category   string `json:"category,omitempty"`
	EditorID   string `json:"editor_id,omitempty"`
	EditorName string `json:"editor_name,omitempty"`
	EditorRole string `json:"editor_role,omitempty"`

	AIScore  int      `json:"ai_score,omitempty"`
	AINotes  []string `json:"ai_notes,omitempty"`
	Feedback string   `json:"feedback,omitempty"`

	CommentID   string `json:"comment_id,omitempty"`
	CommentName string `json:"comment_name,omitempty"`
	CommentText string `json:"comment_text,omitempty"`
}

// NewsItem is one entry parsed from a news or trends feed.
type NewsItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pub_date,omitempty"`
}

// TrendContext is the per-trend input to the generation chain. News holds
// the anchoring headline (Link empty in societal_pulse mode), ActualTrend
// the theme being written about, and SourceSummary optional factual
// bullets from the source article.
type TrendContext struct {
	News          NewsItem
	ActualTrend   string
	SourceSummary []string
}

// NowISO returns the current UTC time in the ISO-8601 format used for all
// persisted timestamps.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
