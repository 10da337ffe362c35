package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/service"
	"github.com/stretchr/testify/require"
)

// Thin repository stubs; just enough state for handler round trips.

type stubProfileRepo struct {
	byUrlname map[string]*domain.Profile
}

func (s *stubProfileRepo) Create(ctx context.Context, p *domain.Profile) error { return nil }
func (s *stubProfileRepo) GetByUserID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	for _, p := range s.byUrlname {
		if p.UserID == id {
			return p, nil
		}
	}
	return nil, nil
}
func (s *stubProfileRepo) GetByUrlname(ctx context.Context, urlname string) (*domain.Profile, error) {
	return s.byUrlname[urlname], nil
}
func (s *stubProfileRepo) Update(ctx context.Context, p *domain.Profile) error { return nil }
func (s *stubProfileRepo) SearchByBlogTitle(ctx context.Context, keyword string) ([]domain.Profile, error) {
	return nil, nil
}
func (s *stubProfileRepo) SearchByNameOrUrlname(ctx context.Context, keyword string) ([]domain.Profile, error) {
	return nil, nil
}

type stubPostRepo struct {
	posts []domain.Post
}

func (s *stubPostRepo) Create(ctx context.Context, post *domain.Post) error { return nil }
func (s *stubPostRepo) SearchByAuthor(ctx context.Context, authorID uuid.UUID, keyword string) ([]domain.Post, error) {
	return s.posts, nil
}
func (s *stubPostRepo) SearchEveryone(ctx context.Context, keyword string) ([]domain.Post, error) {
	return s.posts, nil
}

type stubNeighborRepo struct{}

func (stubNeighborRepo) CreateRequest(ctx context.Context, req *domain.NeighborRequest) error {
	return nil
}
func (stubNeighborRepo) GetRequest(ctx context.Context, fromID, toID uuid.UUID) (*domain.NeighborRequest, error) {
	return nil, nil
}
func (stubNeighborRepo) PendingExists(ctx context.Context, fromID, toID uuid.UUID) (bool, error) {
	return false, nil
}
func (stubNeighborRepo) AreMutual(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	return false, nil
}
func (stubNeighborRepo) AcceptAllPending(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	return 0, nil
}
func (stubNeighborRepo) DeletePending(ctx context.Context, fromID, toID uuid.UUID) (int64, error) {
	return 0, nil
}
func (stubNeighborRepo) DeleteAccepted(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	return 0, nil
}
func (stubNeighborRepo) ListIncoming(ctx context.Context, toID uuid.UUID) ([]domain.NeighborRequest, error) {
	return nil, nil
}
func (stubNeighborRepo) ListNeighborProfiles(ctx context.Context, userID uuid.UUID) ([]domain.Profile, error) {
	return nil, nil
}
func (stubNeighborRepo) ListNeighborIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}
func (stubNeighborRepo) CountNeighbors(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func newSearchHandler(profiles *stubProfileRepo, posts *stubPostRepo) *SearchHandler {
	policy := service.NewVisibilityPolicy(stubNeighborRepo{})
	return NewSearchHandler(service.NewSearchService(profiles, posts, policy))
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Code
}

func TestSearchBlogHandlerValidation(t *testing.T) {
	h := newSearchHandler(&stubProfileRepo{byUrlname: map[string]*domain.Profile{}}, &stubPostRepo{})

	cases := []struct {
		name     string
		url      string
		wantCode int
		wantErr  string
	}{
		{"missing urlname", "/search/blog/?q=coffee", http.StatusBadRequest, "MISSING_URLNAME"},
		{"query too short", "/search/blog/?urlname=jiwoo&q=c", http.StatusBadRequest, "QUERY_TOO_SHORT"},
		{"unknown blog", "/search/blog/?urlname=jiwoo&q=coffee", http.StatusNotFound, "BLOG_NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Blog(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
			require.Equal(t, tc.wantCode, rec.Code)
			require.Equal(t, tc.wantErr, errorCode(t, rec.Body.Bytes()))
		})
	}
}

func TestSearchBlogHandlerResults(t *testing.T) {
	owner := &domain.Profile{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Urlname: "jiwoo",
	}
	posts := &stubPostRepo{posts: []domain.Post{
		{
			ID:         uuid.New(),
			AuthorID:   owner.UserID,
			Title:      "Coffee notes",
			Visibility: domain.VisibilityEveryone,
			CreatedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Texts:      []domain.PostText{{Content: "good coffee nearby"}},
		},
		{
			// Dropped by the visibility pass for an anonymous viewer.
			ID:         uuid.New(),
			AuthorID:   owner.UserID,
			Title:      "Secret coffee notes",
			Visibility: domain.VisibilityMutual,
			CreatedAt:  time.Now(),
		},
	}}
	h := newSearchHandler(&stubProfileRepo{byUrlname: map[string]*domain.Profile{"jiwoo": owner}}, posts)

	rec := httptest.NewRecorder()
	h.Blog(rec, httptest.NewRequest(http.MethodGet, "/search/blog/?urlname=jiwoo&q=coffee", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []struct {
			Title     string `json:"title"`
			CreatedAt string `json:"created_at"`
			Excerpt   string `json:"excerpt"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	require.Equal(t, "Coffee notes", resp.Results[0].Title)
	require.Equal(t, "2026-03-14 09:30", resp.Results[0].CreatedAt)
	require.Equal(t, "good coffee nearby", resp.Results[0].Excerpt)
}

func TestGlobalSearchHandlersRejectShortQueries(t *testing.T) {
	h := newSearchHandler(&stubProfileRepo{byUrlname: map[string]*domain.Profile{}}, &stubPostRepo{})

	endpoints := map[string]http.HandlerFunc{
		"/search/global-blog/?q=c":      h.GlobalBlogs,
		"/search/global-nickandid/?q=c": h.GlobalUsers,
		"/search/global-post/?q=c":      h.GlobalPosts,
	}
	for url, handler := range endpoints {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, url)
		require.Equal(t, "QUERY_TOO_SHORT", errorCode(t, rec.Body.Bytes()), url)
	}
}
