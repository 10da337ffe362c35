package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/repository"
)

var (
	ErrTitleRequired     = errors.New("post title is required")
	ErrInvalidVisibility = errors.New("visibility must be everyone, mutual or me")
)

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

type PostTextInput struct {
	Content string `json:"content"`
}

type PostImageInput struct {
	ImageURL         string `json:"image_url"`
	Caption          string `json:"caption"`
	IsRepresentative bool   `json:"is_representative"`
}

type CreatePostInput struct {
	Title      string           `json:"title"`
	Visibility string           `json:"visibility"`
	Texts      []PostTextInput  `json:"texts"`
	Images     []PostImageInput `json:"images"`
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*domain.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	switch input.Visibility {
	case domain.VisibilityEveryone, domain.VisibilityMutual, domain.VisibilityMe:
	default:
		return nil, ErrInvalidVisibility
	}

	post := &domain.Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		Title:      title,
		Visibility: input.Visibility,
		CreatedAt:  time.Now(),
	}

	for i, t := range input.Texts {
		post.Texts = append(post.Texts, domain.PostText{
			ID:       uuid.New(),
			PostID:   post.ID,
			Content:  t.Content,
			Position: i,
		})
	}
	for i, img := range input.Images {
		post.Images = append(post.Images, domain.PostImage{
			ID:               uuid.New(),
			PostID:           post.ID,
			ImageURL:         img.ImageURL,
			Caption:          img.Caption,
			Position:         i,
			IsRepresentative: img.IsRepresentative,
		})
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return post, nil
}
