package ws

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jiwoolee/maru/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNeighborRequest(toUserID uuid.UUID, req *domain.NeighborRequest) {
	evt, err := NewEvent(EventTypeNeighborRequest, NeighborRequestPayload{
		FromUrlname:    req.FromUrlname,
		FromUsername:   req.FromUsername,
		FromUserPic:    req.FromUserPic,
		RequestMessage: req.RequestMessage,
	})
	if err != nil {
		log.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToUser(toUserID, evt)
}

func (n *HubNotifier) NotifyNeighborAccepted(toUserID uuid.UUID, by *domain.Profile) {
	evt, err := NewEvent(EventTypeNeighborAccepted, NeighborAcceptedPayload{
		Urlname:  by.Urlname,
		Username: by.Username,
		UserPic:  by.UserPic,
	})
	if err != nil {
		log.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToUser(toUserID, evt)
}
