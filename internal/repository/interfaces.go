package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
)

// ErrDuplicatePending is returned by NeighborRepository.CreateRequest when
// the partial unique index on open requests rejects the insert. The service
// layer checks existence first; this closes the race under concurrent writes.
var ErrDuplicatePending = errors.New("a pending request already exists for this pair")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetByUrlname(ctx context.Context, urlname string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	SearchByBlogTitle(ctx context.Context, keyword string) ([]domain.Profile, error)
	SearchByNameOrUrlname(ctx context.Context, keyword string) ([]domain.Profile, error)
}

type NeighborRepository interface {
	CreateRequest(ctx context.Context, req *domain.NeighborRequest) error
	// GetRequest returns the (from,to) edge regardless of status, or nil.
	GetRequest(ctx context.Context, fromID, toID uuid.UUID) (*domain.NeighborRequest, error)
	PendingExists(ctx context.Context, fromID, toID uuid.UUID) (bool, error)
	// AreMutual reports whether an accepted edge exists between the pair
	// in either direction. This is the single mutual predicate used by
	// relation endpoints and visibility checks alike.
	AreMutual(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	// AcceptAllPending promotes every pending edge between the pair (both
	// directions) to accepted inside one pair-locked transaction and
	// returns the number of edges promoted.
	AcceptAllPending(ctx context.Context, userA, userB uuid.UUID) (int64, error)
	DeletePending(ctx context.Context, fromID, toID uuid.UUID) (int64, error)
	// DeleteAccepted removes all accepted edges between the pair (both
	// directions) inside one pair-locked transaction and returns the
	// number of edges removed.
	DeleteAccepted(ctx context.Context, userA, userB uuid.UUID) (int64, error)
	ListIncoming(ctx context.Context, toID uuid.UUID) ([]domain.NeighborRequest, error)
	ListNeighborProfiles(ctx context.Context, userID uuid.UUID) ([]domain.Profile, error)
	ListNeighborIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountNeighbors(ctx context.Context, userID uuid.UUID) (int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	// SearchByAuthor returns the author's posts (visibility 'me' excluded)
	// whose title, text content or image caption contains the keyword,
	// with text and image blocks loaded in block order.
	SearchByAuthor(ctx context.Context, authorID uuid.UUID, keyword string) ([]domain.Post, error)
	// SearchEveryone is the global variant: public posts only, any author.
	SearchEveryone(ctx context.Context, keyword string) ([]domain.Post, error)
}
