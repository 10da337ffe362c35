package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/repository"
)

// VisibilityPolicy decides whether a viewer may see a post. The mutual
// check delegates to the same accepted-edge predicate the relation
// endpoints use, so there is a single source of truth for "neighbor".
type VisibilityPolicy struct {
	neighborRepo repository.NeighborRepository
}

func NewVisibilityPolicy(neighborRepo repository.NeighborRepository) *VisibilityPolicy {
	return &VisibilityPolicy{neighborRepo: neighborRepo}
}

// CanView reports whether viewerID may see the post. uuid.Nil identifies
// an unauthenticated viewer, who only sees 'everyone' posts.
func (v *VisibilityPolicy) CanView(ctx context.Context, viewerID uuid.UUID, post *domain.Post) (bool, error) {
	switch post.Visibility {
	case domain.VisibilityEveryone:
		return true, nil
	case domain.VisibilityMe:
		return viewerID != uuid.Nil && viewerID == post.AuthorID, nil
	case domain.VisibilityMutual:
		if viewerID == uuid.Nil {
			return false, nil
		}
		if viewerID == post.AuthorID {
			return true, nil
		}
		return v.neighborRepo.AreMutual(ctx, viewerID, post.AuthorID)
	}
	// Unknown visibility values stay closed.
	return false, nil
}
