package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"satirewire/internal/core"
)

const (
	maxCommentName = 40
	maxCommentText = 1200
	minCommentText = 3

	defaultCommentName = "Anoniem"
)

func normSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func clampText(s string, max int) string {
	t := strings.TrimSpace(s)
	if len(t) > max {
		t = t[:max]
	}
	return t
}

func findComment(list []core.Comment, id string) *core.Comment {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// commentDepth walks the parent chain; top-level is 0. A cycle or a
// dangling parent ends the walk.
func commentDepth(list []core.Comment, c *core.Comment) int {
	depth := 0
	seen := map[string]bool{}
	for c != nil && c.ParentID != "" {
		if seen[c.ParentID] {
			break
		}
		seen[c.ParentID] = true
		parent := findComment(list, c.ParentID)
		if parent == nil {
			break
		}
		depth++
		c = parent
		if depth > 20 {
			break
		}
	}
	return depth
}

func countChildren(list []core.Comment, parentID string) int {
	n := 0
	for _, c := range list {
		if c.ParentID == parentID {
			n++
		}
	}
	return n
}

func (s *Server) commentCaps() (perArticle, maxDepth, maxChildren int) {
	perArticle = s.comments.MaxPerArticle
	if perArticle <= 0 {
		perArticle = 300
	}
	maxDepth = s.comments.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 3
	}
	maxChildren = s.comments.MaxChildrenPerParent
	if maxChildren <= 0 {
		maxChildren = 60
	}
	return perArticle, maxDepth, maxChildren
}

// handleListComments handles GET /api/comments/{slug} (public).
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	slug := normSlug(chi.URLParam(r, "slug"))
	if slug == "" {
		s.respondError(w, http.StatusBadRequest, "Missing slug")
		return
	}
	comments, err := s.store.Comments(r.Context(), slug)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load comments")
		return
	}
	if comments == nil {
		comments = []core.Comment{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"slug": slug, "comments": comments})
}

// handlePostComment handles POST /api/comments (public, when enabled).
func (s *Server) handlePostComment(w http.ResponseWriter, r *http.Request) {
	if !s.comments.AllowPublic {
		s.respondError(w, http.StatusForbidden, "Comments disabled")
		return
	}

	var body struct {
		Slug     string `json:"slug"`
		Name     string `json:"name"`
		Text     string `json:"text"`
		ParentID string `json:"parent_id"`
	}
	decodeBody(r, &body)

	slug := normSlug(body.Slug)
	name := clampText(body.Name, maxCommentName)
	if name == "" {
		name = defaultCommentName
	}
	text := clampText(body.Text, maxCommentText)
	parentID := strings.TrimSpace(body.ParentID)

	if slug == "" {
		s.respondError(w, http.StatusBadRequest, "Missing slug")
		return
	}
	if len(text) < minCommentText {
		s.respondError(w, http.StatusBadRequest, "Comment too short")
		return
	}

	ctx := r.Context()
	list, err := s.store.Comments(ctx, slug)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	perArticle, maxDepth, maxChildren := s.commentCaps()
	if len(list) >= perArticle {
		s.respondError(w, http.StatusTooManyRequests, "Too many comments for this article")
		return
	}

	if parentID != "" {
		parent := findComment(list, parentID)
		if parent == nil {
			s.respondError(w, http.StatusBadRequest, "Parent not found")
			return
		}
		if commentDepth(list, parent)+1 > maxDepth {
			s.respondError(w, http.StatusBadRequest, "Reply nesting too deep")
			return
		}
		if countChildren(list, parentID) >= maxChildren {
			s.respondError(w, http.StatusTooManyRequests, "Too many replies on this comment")
			return
		}
	}

	comment := core.Comment{
		ID:        uuid.NewString(),
		Slug:      slug,
		ParentID:  parentID,
		Name:      name,
		Text:      text,
		CreatedAt: core.NowISO(),
	}
	list = append([]core.Comment{comment}, list...)

	if err := s.store.SaveComments(ctx, slug, list); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to save comment")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"ok": true, "comment": comment})
}

// handleAllComments handles GET /api/comments (admin moderation view),
// grouped by article slug.
func (s *Server) handleAllComments(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.AllComments(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load comments")
		return
	}
	bySlug := map[string][]core.Comment{}
	for _, c := range all {
		bySlug[c.Slug] = append(bySlug[c.Slug], c)
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"commentsBySlug": bySlug})
}

// handleDeleteComment handles POST /api/comments/delete (admin). The
// deletion is recorded in the feedback journal; replies stay in place.
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slug string `json:"slug"`
		ID   string `json:"id"`
	}
	decodeBody(r, &body)

	slug := normSlug(body.Slug)
	id := strings.TrimSpace(body.ID)
	if slug == "" || id == "" {
		s.respondError(w, http.StatusBadRequest, "Missing slug/id")
		return
	}

	ctx := r.Context()
	list, err := s.store.Comments(ctx, slug)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load comments")
		return
	}
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.respondError(w, http.StatusNotFound, "Not found")
		return
	}

	removed := list[idx]
	list = append(list[:idx], list[idx+1:]...)
	if err := s.store.SaveComments(ctx, slug, list); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to save comments")
		return
	}

	rec := core.FeedbackRecord{
		At:          core.NowISO(),
		Action:      core.ActionDeleteComment,
		Slug:        slug,
		CommentID:   removed.ID,
		CommentName: removed.Name,
		CommentText: removed.Text,
	}
	if err := s.store.AppendFeedback(ctx, rec); err != nil {
		s.log.Warn("Failed to append comment-delete feedback", "comment_id", removed.ID, "error", err)
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}
