package service

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/repository"
	"golang.org/x/sync/errgroup"
)

var (
	ErrQueryTooShort   = errors.New("search query must be at least 2 characters")
	ErrMissingBlogName = errors.New("blog urlname is required")
	ErrBlogNotFound    = errors.New("no blog exists for that urlname")
)

const (
	minQueryRunes    = 2
	excerptContext   = 30
	resultTimeLayout = "2006-01-02 15:04"
)

type PostSearchResult struct {
	Title     string  `json:"title"`
	CreatedAt string  `json:"created_at"`
	Thumbnail *string `json:"thumbnail"`
	Excerpt   string  `json:"excerpt"`
}

type BlogSearchResult struct {
	Urlname   string  `json:"urlname"`
	Username  string  `json:"username"`
	BlogTitle string  `json:"blog_title"`
	UserPic   *string `json:"user_pic"`
}

type UserSearchResult struct {
	Urlname  string  `json:"urlname"`
	Username string  `json:"username"`
	UserPic  *string `json:"user_pic"`
}

type SearchService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	visibility  *VisibilityPolicy
}

func NewSearchService(profileRepo repository.ProfileRepository, postRepo repository.PostRepository, visibility *VisibilityPolicy) *SearchService {
	return &SearchService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
		visibility:  visibility,
	}
}

// SearchBlog searches one author's posts. Candidates match the keyword in
// title, text content or image caption with 'me' posts excluded up front;
// each survivor then passes through the visibility policy, which drops
// 'mutual' posts for viewers who are not the author's neighbor.
func (s *SearchService) SearchBlog(ctx context.Context, viewerID uuid.UUID, urlname, query string) ([]PostSearchResult, error) {
	urlname = strings.TrimSpace(urlname)
	if urlname == "" {
		return nil, ErrMissingBlogName
	}

	keyword, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	owner, err := s.profileRepo.GetByUrlname(ctx, urlname)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrBlogNotFound
	}

	posts, err := s.postRepo.SearchByAuthor(ctx, owner.UserID, keyword)
	if err != nil {
		return nil, err
	}

	results := []PostSearchResult{}
	for i := range posts {
		post := &posts[i]
		ok, err := s.visibility.CanView(ctx, viewerID, post)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		// Caption matches put a post in the candidate set but do not
		// feed the excerpt here; no matching text block means an empty
		// excerpt.
		excerptText := ""
		for _, t := range post.Texts {
			if containsFold(t.Content, keyword) {
				excerptText = excerpt(t.Content, keyword, excerptContext)
				break
			}
		}

		results = append(results, PostSearchResult{
			Title:     post.Title,
			CreatedAt: post.CreatedAt.Format(resultTimeLayout),
			Thumbnail: post.Thumbnail(),
			Excerpt:   excerptText,
		})
	}
	return results, nil
}

// SearchGlobalBlogs matches the keyword against blog titles platform-wide.
func (s *SearchService) SearchGlobalBlogs(ctx context.Context, query string) ([]BlogSearchResult, error) {
	keyword, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	profiles, err := s.profileRepo.SearchByBlogTitle(ctx, keyword)
	if err != nil {
		return nil, err
	}

	results := []BlogSearchResult{}
	for _, p := range profiles {
		results = append(results, BlogSearchResult{
			Urlname:   p.Urlname,
			Username:  p.Username,
			BlogTitle: p.BlogTitle,
			UserPic:   p.UserPic,
		})
	}
	return results, nil
}

// SearchGlobalUsers matches urlnames and display names. An exact urlname
// hit is pinned first and excluded from the substring list so it doesn't
// appear twice.
func (s *SearchService) SearchGlobalUsers(ctx context.Context, query string) ([]UserSearchResult, error) {
	keyword, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	var (
		exact   *domain.Profile
		matches []domain.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exact, err = s.profileRepo.GetByUrlname(gctx, keyword)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.profileRepo.SearchByNameOrUrlname(gctx, keyword)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := []UserSearchResult{}
	if exact != nil {
		results = append(results, UserSearchResult{
			Urlname:  exact.Urlname,
			Username: exact.Username,
			UserPic:  exact.UserPic,
		})
	}
	for _, p := range matches {
		if exact != nil && p.ID == exact.ID {
			continue
		}
		results = append(results, UserSearchResult{
			Urlname:  p.Urlname,
			Username: p.Username,
			UserPic:  p.UserPic,
		})
	}
	return results, nil
}

// SearchGlobalPosts searches public posts only, so no relationship
// filtering applies. Excerpt priority: matching text content, then a
// matching caption, then the title verbatim.
func (s *SearchService) SearchGlobalPosts(ctx context.Context, query string) ([]PostSearchResult, error) {
	keyword, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.SearchEveryone(ctx, keyword)
	if err != nil {
		return nil, err
	}

	results := []PostSearchResult{}
	for i := range posts {
		post := &posts[i]

		excerptText := post.Title
		found := false
		for _, t := range post.Texts {
			if containsFold(t.Content, keyword) {
				excerptText = excerpt(t.Content, keyword, excerptContext)
				found = true
				break
			}
		}
		if !found {
			for _, img := range post.Images {
				if img.Caption != "" && containsFold(img.Caption, keyword) {
					excerptText = excerpt(img.Caption, keyword, excerptContext)
					break
				}
			}
		}

		results = append(results, PostSearchResult{
			Title:     post.Title,
			CreatedAt: post.CreatedAt.Format(resultTimeLayout),
			Thumbnail: post.Thumbnail(),
			Excerpt:   excerptText,
		})
	}
	return results, nil
}

func normalizeQuery(query string) (string, error) {
	keyword := strings.TrimSpace(query)
	if utf8.RuneCountInString(keyword) < minQueryRunes {
		return "", ErrQueryTooShort
	}
	return keyword, nil
}

func containsFold(text, keyword string) bool {
	return foldIndex([]rune(text), []rune(keyword)) >= 0
}

// foldIndex returns the rune offset of the first occurrence of keyword in
// runes under per-rune simple case folding, or -1. Folding rune by rune
// keeps offsets aligned with the rune slice; lowercasing the whole string
// does not, since a few mappings change the rune count.
func foldIndex(runes, keyword []rune) int {
	if len(keyword) == 0 {
		return -1
	}
	for i := 0; i+len(keyword) <= len(runes); i++ {
		match := true
		for j, k := range keyword {
			if unicode.ToLower(runes[i+j]) != unicode.ToLower(k) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// excerpt returns a keyword-centered preview of text: contextLen runes of
// context on each side of the first case-insensitive occurrence, with a
// trailing ellipsis only when text continues past the window. A missing
// keyword yields the leading 2×contextLen runes with no ellipsis.
func excerpt(text, keyword string, contextLen int) string {
	runes := []rune(text)
	kw := []rune(keyword)

	start := foldIndex(runes, kw)
	if start == -1 {
		if len(runes) <= contextLen*2 {
			return text
		}
		return string(runes[:contextLen*2])
	}

	end := start + len(kw) + contextLen
	if end > len(runes) {
		end = len(runes)
	}
	from := start - contextLen
	if from < 0 {
		from = 0
	}

	out := string(runes[from:end])
	if end < len(runes) {
		out += "..."
	}
	return out
}
