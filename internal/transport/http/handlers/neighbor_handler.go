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

type NeighborHandler struct {
	neighborService *service.NeighborService
}

func NewNeighborHandler(neighborService *service.NeighborService) *NeighborHandler {
	return &NeighborHandler{neighborService: neighborService}
}

type neighborEntry struct {
	Urlname  string  `json:"urlname"`
	Username string  `json:"username"`
	UserPic  *string `json:"user_pic"`
}

type incomingEntry struct {
	FromUsername   string  `json:"from_username"`
	FromUrlname    string  `json:"from_urlname"`
	FromUserPic    *string `json:"from_user_pic"`
	RequestMessage string  `json:"request_message"`
}

func neighborEntries(profiles []domain.Profile) []neighborEntry {
	entries := make([]neighborEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, neighborEntry{
			Urlname:  p.Urlname,
			Username: p.Username,
			UserPic:  p.UserPic,
		})
	}
	return entries
}

// Request handles POST /neighbors/{urlname}/.
func (h *NeighborHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		RequestMessage string `json:"request_message"`
	}
	if r.Body != nil {
		// An empty body means an empty message, not a client error.
		_ = json.NewDecoder(r.Body).Decode(&input)
	}

	req, err := h.neighborService.Request(r.Context(), userID, r.PathValue("urlname"), input.RequestMessage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No profile exists for that urlname")
		case errors.Is(err, service.ErrSelfRequest):
			writeError(w, http.StatusBadRequest, "SELF_REQUEST", "Cannot send a neighbor request to yourself")
		case errors.Is(err, service.ErrRequestAlreadySent):
			writeError(w, http.StatusBadRequest, "DUPLICATE_REQUEST", "A pending neighbor request already exists")
		case errors.Is(err, service.ErrAlreadyNeighbors):
			writeError(w, http.StatusBadRequest, "ALREADY_NEIGHBORS", "You are already neighbors")
		default:
			log.Error().Err(err).Msg("neighbor request failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":          "Neighbor request sent",
		"neighbor_request": req,
	})
}

// Incoming handles GET /neighbors/requests/me.
func (h *NeighborHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.neighborService.IncomingRequests(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("list incoming neighbor requests failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	entries := make([]incomingEntry, 0, len(reqs))
	for _, req := range reqs {
		entries = append(entries, incomingEntry{
			FromUsername:   req.FromUsername,
			FromUrlname:    req.FromUrlname,
			FromUserPic:    req.FromUserPic,
			RequestMessage: req.RequestMessage,
		})
	}

	resp := map[string]any{"requests": entries}
	if len(entries) == 0 {
		resp["message"] = "No incoming neighbor requests"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Accept handles PUT /neighbors/accept/{urlname}/.
func (h *NeighborHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.neighborService.Accept(r.Context(), userID, r.PathValue("urlname")); err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No profile exists for that urlname")
		case errors.Is(err, service.ErrAlreadyNeighbors):
			writeError(w, http.StatusBadRequest, "ALREADY_NEIGHBORS", "You are already neighbors")
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "REQUEST_NOT_FOUND", "No pending neighbor request exists")
		default:
			log.Error().Err(err).Msg("accept neighbor request failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Neighbor request accepted"})
}

// Reject handles DELETE /neighbors/reject/{urlname}/.
func (h *NeighborHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.neighborService.Reject(r.Context(), userID, r.PathValue("urlname")); err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No profile exists for that urlname")
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "REQUEST_NOT_FOUND", "No pending neighbor request exists")
		case errors.Is(err, service.ErrRequestAlreadyAccepted):
			writeError(w, http.StatusBadRequest, "ALREADY_ACCEPTED", "An accepted request cannot be rejected")
		default:
			log.Error().Err(err).Msg("reject neighbor request failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Neighbor request rejected"})
}

// PublicList handles GET /profile/{urlname}/neighbors/.
func (h *NeighborHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	urlname := r.PathValue("urlname")

	profile, neighbors, err := h.neighborService.PublicNeighbors(r.Context(), urlname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No profile exists for that urlname")
		case errors.Is(err, service.ErrNeighborsPrivate):
			writeError(w, http.StatusForbidden, "PRIVATE", "This neighbor list is private")
		default:
			log.Error().Err(err).Msg("public neighbor list failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"urlname":   profile.Urlname,
		"neighbors": neighborEntries(neighbors),
	})
}

// MyList handles GET /profile/me/neighbors/.
func (h *NeighborHandler) MyList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	neighbors, err := h.neighborService.Neighbors(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("own neighbor list failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	resp := map[string]any{"neighbors": neighborEntries(neighbors)}
	if len(neighbors) == 0 {
		resp["message"] = "You have no neighbors yet"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Remove handles DELETE /profile/me/neighbors/{urlname}/.
func (h *NeighborHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.neighborService.Remove(r.Context(), userID, r.PathValue("urlname")); err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No profile exists for that urlname")
		case errors.Is(err, service.ErrNotNeighbors):
			writeError(w, http.StatusNotFound, "NOT_NEIGHBORS", "No neighbor relation exists")
		default:
			log.Error().Err(err).Msg("remove neighbor failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Neighbor relation removed"})
}

// Count handles GET /neighbors/count/{urlname}/.
func (h *NeighborHandler) Count(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	urlname := r.PathValue("urlname")

	count, err := h.neighborService.Count(r.Context(), viewerID, urlname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "No profile exists for that urlname")
		case errors.Is(err, service.ErrNeighborsPrivate):
			writeError(w, http.StatusForbidden, "PRIVATE", "This user does not share neighbor information")
		default:
			log.Error().Err(err).Msg("neighbor count failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"urlname":        urlname,
		"neighbor_count": count,
	})
}
