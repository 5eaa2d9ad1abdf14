// Package store is the collection layer on top of the blob store: the
// published and pending article snapshots, the append-only feedback
// journal, per-article comment lists, and persisted review verdicts.
//
// Snapshots are whole-list read-modify-write. Concurrent writers are
// last-write-wins; the blob interface is the seam where conditional
// writes would be added if that ever needs fixing.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"satirewire/internal/blob"
	"satirewire/internal/core"
)

const (
	publishedKey   = "articles/published.json"
	pendingKey     = "articles/pending.json"
	feedbackKey    = "feedback/records.jsonl"
	commentsPrefix = "comments/"
	reviewsPrefix  = "reviews/"
)

// Store wraps a blob.Store with the typed collections the pipeline and
// server work with. Lists are newest-first; saves enforce the caps.
type Store struct {
	blob         blob.Store
	publishedCap int
	pendingCap   int
}

// New builds a Store with the given snapshot caps.
func New(b blob.Store, publishedCap, pendingCap int) *Store {
	return &Store{blob: b, publishedCap: publishedCap, pendingCap: pendingCap}
}

func (s *Store) loadArticles(ctx context.Context, key string) ([]core.Article, error) {
	data, err := s.blob.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return []core.Article{}, nil
	}
	if err != nil {
		return nil, err
	}
	var articles []core.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return articles, nil
}

func (s *Store) saveArticles(ctx context.Context, key string, articles []core.Article, cap int) error {
	if cap > 0 && len(articles) > cap {
		articles = articles[:cap]
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.blob.Put(ctx, key, data, "application/json")
}

// Published returns the published snapshot, newest first. A missing
// snapshot reads as an empty list.
func (s *Store) Published(ctx context.Context) ([]core.Article, error) {
	return s.loadArticles(ctx, publishedKey)
}

// SavePublished replaces the published snapshot, truncated to the cap.
func (s *Store) SavePublished(ctx context.Context, articles []core.Article) error {
	return s.saveArticles(ctx, publishedKey, articles, s.publishedCap)
}

// Pending returns the review queue, newest first.
func (s *Store) Pending(ctx context.Context) ([]core.Article, error) {
	return s.loadArticles(ctx, pendingKey)
}

// SavePending replaces the review queue, truncated to the cap.
func (s *Store) SavePending(ctx context.Context, articles []core.Article) error {
	return s.saveArticles(ctx, pendingKey, articles, s.pendingCap)
}

// AppendFeedback appends one record as a JSON line to the feedback
// journal. Records are never mutated or removed.
func (s *Store) AppendFeedback(ctx context.Context, rec core.FeedbackRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode feedback record: %w", err)
	}

	existing, err := s.blob.Get(ctx, feedbackKey)
	if err != nil && !errors.Is(err, blob.ErrNotFound) {
		return err
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteByte('\n')
	}
	b.Write(line)
	b.WriteByte('\n')

	return s.blob.Put(ctx, feedbackKey, []byte(b.String()), "application/x-ndjson")
}

// FeedbackTail returns up to maxLines of the most recent feedback
// records, oldest first within the window. Malformed lines are skipped.
func (s *Store) FeedbackTail(ctx context.Context, maxLines int) ([]core.FeedbackRecord, error) {
	data, err := s.blob.Get(ctx, feedbackKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	var records []core.FeedbackRecord
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec core.FeedbackRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func commentsKey(slug string) string {
	return commentsPrefix + slug + ".json"
}

// Comments returns the comment list for one article slug, oldest first.
func (s *Store) Comments(ctx context.Context, slug string) ([]core.Comment, error) {
	data, err := s.blob.Get(ctx, commentsKey(slug))
	if errors.Is(err, blob.ErrNotFound) {
		return []core.Comment{}, nil
	}
	if err != nil {
		return nil, err
	}
	var comments []core.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("failed to parse comments for %s: %w", slug, err)
	}
	return comments, nil
}

// SaveComments replaces the comment list for one article slug.
func (s *Store) SaveComments(ctx context.Context, slug string, comments []core.Comment) error {
	data, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("failed to encode comments for %s: %w", slug, err)
	}
	return s.blob.Put(ctx, commentsKey(slug), data, "application/json")
}

// AllComments walks every stored comment list and returns the combined
// set, following list pagination to the end.
func (s *Store) AllComments(ctx context.Context) ([]core.Comment, error) {
	var all []core.Comment
	cursor := ""
	for {
		page, err := s.blob.List(ctx, commentsPrefix, cursor)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Objects {
			slug := strings.TrimSuffix(strings.TrimPrefix(obj.Key, commentsPrefix), ".json")
			comments, err := s.Comments(ctx, slug)
			if err != nil {
				return nil, err
			}
			all = append(all, comments...)
		}
		if !page.Truncated {
			break
		}
		cursor = page.Cursor
	}
	return all, nil
}

// SaveReview persists one quality-review verdict for audit, keyed by the
// article id.
func (s *Store) SaveReview(ctx context.Context, articleID string, verdict any) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to encode review for %s: %w", articleID, err)
	}
	return s.blob.Put(ctx, reviewsPrefix+articleID+".json", data, "application/json")
}
