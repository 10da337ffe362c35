package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	VisibilityEveryone = "everyone"
	VisibilityMutual   = "mutual"
	VisibilityMe       = "me"
)

type Post struct {
	ID         uuid.UUID   `json:"id"`
	AuthorID   uuid.UUID   `json:"author_id"`
	Title      string      `json:"title"`
	Visibility string      `json:"visibility"`
	CreatedAt  time.Time   `json:"created_at"`
	Texts      []PostText  `json:"texts"`
	Images     []PostImage `json:"images"`
}

type PostText struct {
	ID       uuid.UUID `json:"id"`
	PostID   uuid.UUID `json:"post_id"`
	Content  string    `json:"content"`
	Position int       `json:"position"`
}

type PostImage struct {
	ID               uuid.UUID `json:"id"`
	PostID           uuid.UUID `json:"post_id"`
	ImageURL         string    `json:"image_url"`
	Caption          string    `json:"caption"`
	Position         int       `json:"position"`
	IsRepresentative bool      `json:"is_representative"`
}

// Thumbnail returns the URL of the first image flagged representative.
func (p *Post) Thumbnail() *string {
	for i := range p.Images {
		if p.Images[i].IsRepresentative {
			return &p.Images[i].ImageURL
		}
	}
	return nil
}
