package handlers

import (
	"errors"
	"net/http"

	"github.com/jiwoolee/maru/internal/service"
	"github.com/jiwoolee/maru/internal/transport/http/middleware"
	"github.com/rs/zerolog/log"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Blog handles GET /search/blog/?urlname=&q=.
func (h *SearchHandler) Blog(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	results, err := h.searchService.SearchBlog(r.Context(), viewerID,
		r.URL.Query().Get("urlname"), r.URL.Query().Get("q"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingBlogName):
			writeError(w, http.StatusBadRequest, "MISSING_URLNAME", "urlname query parameter is required")
		case errors.Is(err, service.ErrQueryTooShort):
			writeError(w, http.StatusBadRequest, "QUERY_TOO_SHORT", "Search query must be at least 2 characters")
		case errors.Is(err, service.ErrBlogNotFound):
			writeError(w, http.StatusNotFound, "BLOG_NOT_FOUND", "No blog exists for that urlname")
		default:
			log.Error().Err(err).Msg("blog search failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// GlobalBlogs handles GET /search/global-blog/?q=.
func (h *SearchHandler) GlobalBlogs(w http.ResponseWriter, r *http.Request) {
	results, err := h.searchService.SearchGlobalBlogs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeGlobalSearchError(w, err, "global blog search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blogs": results})
}

// GlobalUsers handles GET /search/global-nickandid/?q=.
func (h *SearchHandler) GlobalUsers(w http.ResponseWriter, r *http.Request) {
	results, err := h.searchService.SearchGlobalUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeGlobalSearchError(w, err, "global user search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": results})
}

// GlobalPosts handles GET /search/global-post/?q=.
func (h *SearchHandler) GlobalPosts(w http.ResponseWriter, r *http.Request) {
	results, err := h.searchService.SearchGlobalPosts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeGlobalSearchError(w, err, "global post search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": results})
}

func (h *SearchHandler) writeGlobalSearchError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, service.ErrQueryTooShort) {
		writeError(w, http.StatusBadRequest, "QUERY_TOO_SHORT", "Search query must be at least 2 characters")
		return
	}
	log.Error().Err(err).Msg(logMsg)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}
