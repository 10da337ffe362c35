package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/service"
	"github.com/jiwoolee/maru/internal/transport/http/middleware"
	"github.com/rs/zerolog/log"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type publicProfile struct {
	Urlname   string  `json:"urlname"`
	Username  string  `json:"username"`
	BlogTitle string  `json:"blog_title"`
	UserPic   *string `json:"user_pic"`
	Intro     string  `json:"intro"`
}

func toPublicProfile(p *domain.Profile) publicProfile {
	return publicProfile{
		Urlname:   p.Urlname,
		Username:  p.Username,
		BlogTitle: p.BlogTitle,
		UserPic:   p.UserPic,
		Intro:     p.Intro,
	}
}

// Me handles GET /profile/me/.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profileService.CurrentProfile(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("resolve own profile failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /profile/me/.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.ProfileUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	profile, err := h.profileService.Update(r.Context(), userID, input)
	if err != nil {
		log.Error().Err(err).Msg("update profile failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Public handles GET /profile/{urlname}/.
func (h *ProfileHandler) Public(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetByUrlname(r.Context(), r.PathValue("urlname"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No profile exists for that urlname")
			return
		}
		log.Error().Err(err).Msg("public profile lookup failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, toPublicProfile(profile))
}
