package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jiwoolee/maru/internal/service"
	"github.com/jiwoolee/maru/internal/transport/http/middleware"
	"github.com/rs/zerolog/log"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Create handles POST /posts/me/create/.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Post title is required")
		case errors.Is(err, service.ErrInvalidVisibility):
			writeError(w, http.StatusBadRequest, "INVALID_VISIBILITY", "Visibility must be everyone, mutual or me")
		default:
			log.Error().Err(err).Msg("create post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, post)
}
