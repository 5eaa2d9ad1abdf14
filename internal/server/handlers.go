package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"satirewire/internal/core"
)

const maxRejectFeedback = 5000

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleLogin handles POST /api/login: password in, opaque bearer token
// out. Tokens live for the lifetime of the process.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	decodeBody(r, &body)

	if s.config.AdminPassword == "" {
		s.respondError(w, http.StatusInternalServerError, "Server not configured")
		return
	}
	if body.Password != s.config.AdminPassword {
		s.respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token := uuid.NewString()
	s.issueToken(token)
	s.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handlePending handles GET /api/pending.
func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := s.store.Pending(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load pending articles")
		return
	}
	if pending == nil {
		pending = []core.Article{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"pending": pending})
}

// handlePublished handles GET /api/published.
func (s *Server) handlePublished(w http.ResponseWriter, r *http.Request) {
	published, err := s.store.Published(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load published articles")
		return
	}
	if published == nil {
		published = []core.Article{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"published": published})
}

type articleRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

func (ref articleRef) matches(a core.Article) bool {
	if ref.ID != "" && a.ID == ref.ID {
		return true
	}
	return ref.Slug != "" && a.Slug == ref.Slug
}

func (ref articleRef) empty() bool {
	return ref.ID == "" && ref.Slug == ""
}

func findArticle(articles []core.Article, ref articleRef) int {
	for i, a := range articles {
		if ref.matches(a) {
			return i
		}
	}
	return -1
}

// handleApprove handles POST /api/approve: move a pending article to the
// published set. The published write happens first so a crash between
// the two writes duplicates the article instead of losing it.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var ref articleRef
	decodeBody(r, &ref)
	if ref.empty() {
		s.respondError(w, http.StatusBadRequest, "id or slug required")
		return
	}

	ctx := r.Context()
	pending, err := s.store.Pending(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load pending articles")
		return
	}
	idx := findArticle(pending, ref)
	if idx < 0 {
		s.respondError(w, http.StatusNotFound, "Not found in pending")
		return
	}

	item := pending[idx]
	item.ReviewStatus = core.ReviewStatusApprovedByHuman
	item.ReviewedAt = time.Now().UTC().Format(time.RFC3339)

	published, err := s.store.Published(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load published articles")
		return
	}

	// Dedup by id/slug so re-approving never leaves two live copies.
	next := []core.Article{item}
	for _, a := range published {
		if a.ID == item.ID || (item.Slug != "" && a.Slug == item.Slug) {
			continue
		}
		next = append(next, a)
	}
	if err := s.store.SavePublished(ctx, next); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to save published articles")
		return
	}

	pending = append(pending[:idx], pending[idx+1:]...)
	if err := s.store.SavePending(ctx, pending); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to save pending articles")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"ok": true, "id": item.ID})
}

// handleReject handles POST /api/reject: remove a pending article and
// append its reject feedback record to the journal.
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		articleRef
		Feedback string `json:"feedback"`
	}
	decodeBody(r, &body)
	if body.empty() {
		s.respondError(w, http.StatusBadRequest, "id or slug required")
		return
	}

	ctx := r.Context()
	pending, err := s.store.Pending(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load pending articles")
		return
	}
	idx := findArticle(pending, body.articleRef)
	if idx < 0 {
		s.respondError(w, http.StatusNotFound, "Not found in pending")
		return
	}

	item := pending[idx]
	pending = append(pending[:idx], pending[idx+1:]...)
	if err := s.store.SavePending(ctx, pending); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to save pending articles")
		return
	}

	feedback := strings.TrimSpace(body.Feedback)
	if len(feedback) > maxRejectFeedback {
		feedback = feedback[:maxRejectFeedback]
	}
	rec := core.FeedbackRecord{
		At:             core.NowISO(),
		Action:         core.ActionReject,
		ID:             item.ID,
		Slug:           item.Slug,
		Title:          item.Title,
		SourceHeadline: item.SourceHeadline,
		Category:       item.Category,
		EditorID:       item.EditorID,
		EditorName:     editorNameOrAuthor(item),
		EditorRole:     item.EditorRole,
		AIScore:        item.ReviewScore,
		AINotes:        item.ReviewNotes,
		Feedback:       feedback,
	}
	if err := s.store.AppendFeedback(ctx, rec); err != nil {
		s.log.Warn("Failed to append reject feedback", "id", item.ID, "error", err)
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"ok": true, "id": item.ID})
}

// handleDeletePublished handles POST /api/delete_published: remove a
// live article and record the deletion in the feedback journal.
func (s *Server) handleDeletePublished(w http.ResponseWriter, r *http.Request) {
	var ref articleRef
	decodeBody(r, &ref)
	if ref.empty() {
		s.respondError(w, http.StatusBadRequest, "id or slug required")
		return
	}

	ctx := r.Context()
	published, err := s.store.Published(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to load published articles")
		return
	}
	idx := findArticle(published, ref)
	if idx < 0 {
		s.respondError(w, http.StatusNotFound, "Not found in published")
		return
	}

	item := published[idx]
	published = append(published[:idx], published[idx+1:]...)
	if err := s.store.SavePublished(ctx, published); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to save published articles")
		return
	}

	rec := core.FeedbackRecord{
		At:             core.NowISO(),
		Action:         core.ActionDeletePublished,
		ID:             item.ID,
		Slug:           item.Slug,
		Title:          item.Title,
		SourceHeadline: item.SourceHeadline,
		Category:       item.Category,
		EditorID:       item.EditorID,
		EditorName:     editorNameOrAuthor(item),
		EditorRole:     item.EditorRole,
	}
	if err := s.store.AppendFeedback(ctx, rec); err != nil {
		s.log.Warn("Failed to append delete feedback", "id", item.ID, "error", err)
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func editorNameOrAuthor(a core.Article) string {
	if a.EditorName != "" {
		return a.EditorName
	}
	return a.Author
}
