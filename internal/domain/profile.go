package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public face of a user: one per account, addressed by
// its globally unique urlname.
type Profile struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Urlname            string    `json:"urlname"`
	Username           string    `json:"username"`
	BlogTitle          string    `json:"blog_title"`
	UserPic            *string   `json:"user_pic"`
	Intro              string    `json:"intro"`
	NeighborVisibility bool      `json:"neighbor_visibility"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
