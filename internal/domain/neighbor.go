package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NeighborStatusPending  = "pending"
	NeighborStatusAccepted = "accepted"
)

// NeighborRequest is one directed edge of the mutual-neighbor relation.
// A pending edge is an open request; an established relation is stored as
// two accepted edges, one per direction.
type NeighborRequest struct {
	ID             uuid.UUID `json:"id"`
	FromID         uuid.UUID `json:"from_id"`
	ToID           uuid.UUID `json:"to_id"`
	Status         string    `json:"status"`
	RequestMessage string    `json:"request_message"`
	CreatedAt      time.Time `json:"created_at"`
	// Joined fields
	FromUrlname  string  `json:"from_urlname,omitempty"`
	FromUsername string  `json:"from_username,omitempty"`
	FromUserPic  *string `json:"from_user_pic,omitempty"`
}
