package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"satirewire/internal/config"
	"satirewire/internal/core"
)

type memStore struct {
	published []core.Article
	pending   []core.Article
	feedback  []core.FeedbackRecord
	comments  map[string][]core.Comment
}

func (m *memStore) Published(_ context.Context) ([]core.Article, error) { return m.published, nil }
func (m *memStore) SavePublished(_ context.Context, a []core.Article) error {
	m.published = a
	return nil
}
func (m *memStore) Pending(_ context.Context) ([]core.Article, error) { return m.pending, nil }
func (m *memStore) SavePending(_ context.Context, a []core.Article) error {
	m.pending = a
	return nil
}
func (m *memStore) AppendFeedback(_ context.Context, rec core.FeedbackRecord) error {
	m.feedback = append(m.feedback, rec)
	return nil
}
func (m *memStore) Comments(_ context.Context, slug string) ([]core.Comment, error) {
	return m.comments[slug], nil
}
func (m *memStore) SaveComments(_ context.Context, slug string, list []core.Comment) error {
	if m.comments == nil {
		m.comments = map[string][]core.Comment{}
	}
	m.comments[slug] = list
	return nil
}
func (m *memStore) AllComments(_ context.Context) ([]core.Comment, error) {
	var all []core.Comment
	for _, list := range m.comments {
		all = append(all, list...)
	}
	return all, nil
}

const testPassword = "geheim"

func newTestServer(store *memStore, allowPublic bool) *Server {
	return New(store, config.Server{
		Host:          "127.0.0.1",
		Port:          0,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		AdminPassword: testPassword,
	}, config.Comments{
		AllowPublic:          allowPublic,
		MaxPerArticle:        300,
		MaxDepth:             3,
		MaxChildrenPerParent: 60,
	})
}

func doRequest(s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(&memStore{}, true)
	rec := doRequest(s, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var body map[string]bool
	decode(t, rec, &body)
	if !body["ok"] {
		t.Errorf("health body = %v", body)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	s := newTestServer(&memStore{}, true)

	rec := doRequest(s, http.MethodPost, "/api/login", "", `{"password": "fout"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/login", "", `{"password": "geheim"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["token"] == "" {
		t.Fatal("login returned no token")
	}

	rec = doRequest(s, http.MethodGet, "/api/pending", body["token"], "")
	if rec.Code != http.StatusOK {
		t.Errorf("issued token rejected: status = %d", rec.Code)
	}
}

func TestAdminPasswordWorksAsBearer(t *testing.T) {
	s := newTestServer(&memStore{}, true)
	rec := doRequest(s, http.MethodGet, "/api/published", testPassword, "")
	if rec.Code != http.StatusOK {
		t.Errorf("password bearer rejected: status = %d", rec.Code)
	}
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	s := newTestServer(&memStore{}, true)
	for _, path := range []string{"/api/pending", "/api/published", "/api/comments"} {
		rec := doRequest(s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d", path, rec.Code)
		}
	}
	rec := doRequest(s, http.MethodGet, "/api/pending", "verkeerd", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] == "" {
		t.Errorf("error shape missing: %v", body)
	}
}

func TestApproveMovesAndDedupes(t *testing.T) {
	store := &memStore{
		pending: []core.Article{
			{ID: "p1", Slug: "nieuw-stuk", Title: "Nieuw stuk", ReviewStatus: core.ReviewStatusNeedsHuman},
		},
		published: []core.Article{
			{ID: "old", Slug: "nieuw-stuk", Title: "Oude versie"},
			{ID: "other", Slug: "iets-anders"},
		},
	}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/approve", testPassword, `{"id": "p1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(store.pending) != 0 {
		t.Errorf("pending not emptied: %v", store.pending)
	}
	if len(store.published) != 2 {
		t.Fatalf("published = %v, want dedup to 2", store.published)
	}
	head := store.published[0]
	if head.ID != "p1" || head.ReviewStatus != core.ReviewStatusApprovedByHuman || head.ReviewedAt == "" {
		t.Errorf("approved article = %+v", head)
	}
}

func TestApproveUnknownIs404(t *testing.T) {
	s := newTestServer(&memStore{}, true)
	rec := doRequest(s, http.MethodPost, "/api/approve", testPassword, `{"id": "nope"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestApproveWithoutRefIs400(t *testing.T) {
	s := newTestServer(&memStore{}, true)
	// Unparseable body degrades to an empty object, then fails validation.
	rec := doRequest(s, http.MethodPost, "/api/approve", testPassword, "geen json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRejectRemovesAndLogsFeedback(t *testing.T) {
	store := &memStore{pending: []core.Article{{
		ID: "p1", Slug: "stuk", Title: "Stuk", Category: "politiek",
		EditorID: "marius-de-graaf", EditorName: "Marius de Graaf", EditorRole: "Hoofdredacteur",
		ReviewScore: 62, ReviewNotes: []string{"te tam"},
	}}}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/reject", testPassword, `{"id": "p1", "feedback": "Grap landt niet"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject status = %d", rec.Code)
	}
	if len(store.pending) != 0 {
		t.Errorf("pending not emptied: %v", store.pending)
	}
	if len(store.feedback) != 1 {
		t.Fatalf("feedback records = %v", store.feedback)
	}
	got := store.feedback[0]
	if got.Action != core.ActionReject || got.Feedback != "Grap landt niet" ||
		got.Category != "politiek" || got.EditorID != "marius-de-graaf" || got.AIScore != 62 {
		t.Errorf("feedback record = %+v", got)
	}
}

func TestDeletePublishedLogsFeedback(t *testing.T) {
	store := &memStore{published: []core.Article{{ID: "a1", Slug: "weg-ermee", Title: "Weg ermee"}}}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/delete_published", testPassword, `{"slug": "weg-ermee"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if len(store.published) != 0 {
		t.Errorf("published not emptied: %v", store.published)
	}
	if len(store.feedback) != 1 || store.feedback[0].Action != core.ActionDeletePublished {
		t.Errorf("feedback = %v", store.feedback)
	}
}

func TestPostCommentDefaultsAndValidation(t *testing.T) {
	store := &memStore{}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "Stuk-Een", "text": "Mooi stuk!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("post comment status = %d body=%s", rec.Code, rec.Body.String())
	}
	list := store.comments["stuk-een"]
	if len(list) != 1 || list[0].Name != "Anoniem" || list[0].ID == "" {
		t.Errorf("stored comment = %v", list)
	}

	rec = doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "stuk-een", "text": "ab"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short text status = %d", rec.Code)
	}
	rec = doRequest(s, http.MethodPost, "/api/comments", "", `{"text": "zonder slug hier"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing slug status = %d", rec.Code)
	}
}

func TestPostCommentDisabled(t *testing.T) {
	s := newTestServer(&memStore{}, false)
	rec := doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "stuk", "text": "Mooi stuk!"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestReplyDepthCap(t *testing.T) {
	// c1 is top-level (depth 0), c4 sits at depth 3. Replying to c3 is
	// still allowed; replying to c4 would create depth 4.
	store := &memStore{comments: map[string][]core.Comment{"stuk": {
		{ID: "c4", Slug: "stuk", ParentID: "c3"},
		{ID: "c3", Slug: "stuk", ParentID: "c2"},
		{ID: "c2", Slug: "stuk", ParentID: "c1"},
		{ID: "c1", Slug: "stuk"},
	}}}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "stuk", "text": "te diep", "parent_id": "c4"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("deep reply status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "stuk", "text": "past nog", "parent_id": "c3"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("allowed reply status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestReplyToUnknownParent(t *testing.T) {
	s := newTestServer(&memStore{comments: map[string][]core.Comment{"stuk": {}}}, true)
	rec := doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "stuk", "text": "zweeft", "parent_id": "bestaat-niet"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPerArticleCommentCap(t *testing.T) {
	store := &memStore{comments: map[string][]core.Comment{}}
	var list []core.Comment
	for i := 0; i < 300; i++ {
		list = append(list, core.Comment{ID: fmt.Sprintf("c%d", i), Slug: "druk"})
	}
	store.comments["druk"] = list
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "druk", "text": "nog eentje"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestChildrenPerParentCap(t *testing.T) {
	store := &memStore{comments: map[string][]core.Comment{}}
	list := []core.Comment{{ID: "parent", Slug: "stuk"}}
	for i := 0; i < 60; i++ {
		list = append(list, core.Comment{ID: fmt.Sprintf("r%d", i), Slug: "stuk", ParentID: "parent"})
	}
	store.comments["stuk"] = list
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/comments", "", `{"slug": "stuk", "text": "ook nog", "parent_id": "parent"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestListCommentsPublic(t *testing.T) {
	store := &memStore{comments: map[string][]core.Comment{"stuk": {{ID: "c1", Slug: "stuk", Text: "top"}}}}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodGet, "/api/comments/stuk", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Slug     string         `json:"slug"`
		Comments []core.Comment `json:"comments"`
	}
	decode(t, rec, &body)
	if body.Slug != "stuk" || len(body.Comments) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestDeleteCommentLogsFeedback(t *testing.T) {
	store := &memStore{comments: map[string][]core.Comment{"stuk": {
		{ID: "c1", Slug: "stuk", Name: "Piet", Text: "weg hiermee"},
	}}}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodPost, "/api/comments/delete", testPassword, `{"slug": "stuk", "id": "c1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(store.comments["stuk"]) != 0 {
		t.Errorf("comment not removed: %v", store.comments["stuk"])
	}
	if len(store.feedback) != 1 || store.feedback[0].Action != core.ActionDeleteComment || store.feedback[0].CommentID != "c1" {
		t.Errorf("feedback = %v", store.feedback)
	}
}

func TestAllCommentsGroupedBySlug(t *testing.T) {
	store := &memStore{comments: map[string][]core.Comment{
		"een":  {{ID: "c1", Slug: "een"}},
		"twee": {{ID: "c2", Slug: "twee"}, {ID: "c3", Slug: "twee"}},
	}}
	s := newTestServer(store, true)

	rec := doRequest(s, http.MethodGet, "/api/comments", testPassword, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		CommentsBySlug map[string][]core.Comment `json:"commentsBySlug"`
	}
	decode(t, rec, &body)
	if len(body.CommentsBySlug["een"]) != 1 || len(body.CommentsBySlug["twee"]) != 2 {
		t.Errorf("grouping = %v", body.CommentsBySlug)
	}
}
