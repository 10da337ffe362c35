package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/repository"
	"github.com/rs/zerolog/log"
)

var (
	ErrSelfRequest            = errors.New("cannot send a neighbor request to yourself")
	ErrAlreadyNeighbors       = errors.New("you are already neighbors")
	ErrRequestAlreadySent     = errors.New("a pending neighbor request already exists")
	ErrRequestNotFound        = errors.New("neighbor request not found")
	ErrRequestAlreadyAccepted = errors.New("request was already accepted")
	ErrNotNeighbors           = errors.New("no neighbor relation exists")
	ErrNeighborsPrivate       = errors.New("neighbor list is private")
)

// Notifier pushes neighbor events to connected clients. Implemented by the
// WebSocket hub; a nil notifier disables pushes.
type Notifier interface {
	NotifyNeighborRequest(toUserID uuid.UUID, req *domain.NeighborRequest)
	NotifyNeighborAccepted(toUserID uuid.UUID, by *domain.Profile)
}

// AdjacencyCache is the Redis-backed projection of the accepted edge
// table. All methods are best-effort from the service's point of view:
// the edge table remains the source of truth.
type AdjacencyCache interface {
	Add(ctx context.Context, userA, userB uuid.UUID) error
	Remove(ctx context.Context, userA, userB uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (count int64, ok bool, err error)
	Rebuild(ctx context.Context, userID uuid.UUID, neighborIDs []uuid.UUID) error
}

type NeighborService struct {
	neighborRepo repository.NeighborRepository
	profileRepo  repository.ProfileRepository
	cache        AdjacencyCache
	notifier     Notifier
}

func NewNeighborService(neighborRepo repository.NeighborRepository, profileRepo repository.ProfileRepository, cache AdjacencyCache, notifier Notifier) *NeighborService {
	return &NeighborService{
		neighborRepo: neighborRepo,
		profileRepo:  profileRepo,
		cache:        cache,
		notifier:     notifier,
	}
}

// Request sends a neighbor request to the profile behind toUrlname.
// A reverse-direction pending request is allowed to coexist; the accept
// call collapses both (double-request race resolution).
func (s *NeighborService) Request(ctx context.Context, fromID uuid.UUID, toUrlname, message string) (*domain.NeighborRequest, error) {
	target, err := s.profileRepo.GetByUrlname(ctx, toUrlname)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrProfileNotFound
	}

	if target.UserID == fromID {
		return nil, ErrSelfRequest
	}

	mutual, err := s.neighborRepo.AreMutual(ctx, fromID, target.UserID)
	if err != nil {
		return nil, err
	}
	if mutual {
		return nil, ErrAlreadyNeighbors
	}

	exists, err := s.neighborRepo.PendingExists(ctx, fromID, target.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRequestAlreadySent
	}

	req := &domain.NeighborRequest{
		ID:             uuid.New(),
		FromID:         fromID,
		ToID:           target.UserID,
		Status:         domain.NeighborStatusPending,
		RequestMessage: message,
		CreatedAt:      time.Now(),
	}

	if err := s.neighborRepo.CreateRequest(ctx, req); err != nil {
		// The partial unique index catches the insert that lost a
		// concurrent duplicate race past the existence check above.
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrRequestAlreadySent
		}
		return nil, fmt.Errorf("creating neighbor request: %w", err)
	}

	if s.notifier != nil {
		if from, err := s.profileRepo.GetByUserID(ctx, fromID); err == nil && from != nil {
			notice := *req
			notice.FromUrlname = from.Urlname
			notice.FromUsername = from.Username
			notice.FromUserPic = from.UserPic
			s.notifier.NotifyNeighborRequest(target.UserID, &notice)
		}
	}

	return req, nil
}

// Accept promotes every pending request between the caller and the profile
// behind fromUrlname, in both directions, to an accepted mutual relation.
func (s *NeighborService) Accept(ctx context.Context, accepterID uuid.UUID, fromUrlname string) error {
	from, err := s.profileRepo.GetByUrlname(ctx, fromUrlname)
	if err != nil {
		return err
	}
	if from == nil {
		return ErrProfileNotFound
	}

	mutual, err := s.neighborRepo.AreMutual(ctx, accepterID, from.UserID)
	if err != nil {
		return err
	}
	if mutual {
		return ErrAlreadyNeighbors
	}

	promoted, err := s.neighborRepo.AcceptAllPending(ctx, accepterID, from.UserID)
	if err != nil {
		return fmt.Errorf("accepting neighbor request: %w", err)
	}
	if promoted == 0 {
		return ErrRequestNotFound
	}

	s.cacheAdd(ctx, accepterID, from.UserID)

	if s.notifier != nil {
		if accepter, err := s.profileRepo.GetByUserID(ctx, accepterID); err == nil && accepter != nil {
			s.notifier.NotifyNeighborAccepted(from.UserID, accepter)
		}
	}

	return nil
}

// Reject deletes the pending request sent by the profile behind
// fromUrlname to the caller. Rejecting an already-accepted relation is
// reported, not silently performed.
func (s *NeighborService) Reject(ctx context.Context, rejecterID uuid.UUID, fromUrlname string) error {
	from, err := s.profileRepo.GetByUrlname(ctx, fromUrlname)
	if err != nil {
		return err
	}
	if from == nil {
		return ErrProfileNotFound
	}

	req, err := s.neighborRepo.GetRequest(ctx, from.UserID, rejecterID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Status == domain.NeighborStatusAccepted {
		return ErrRequestAlreadyAccepted
	}

	deleted, err := s.neighborRepo.DeletePending(ctx, from.UserID, rejecterID)
	if err != nil {
		return fmt.Errorf("rejecting neighbor request: %w", err)
	}
	if deleted == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Remove tears down an established mutual relation: both directional
// accepted edges go, and both adjacency sets are updated.
func (s *NeighborService) Remove(ctx context.Context, userID uuid.UUID, otherUrlname string) error {
	other, err := s.profileRepo.GetByUrlname(ctx, otherUrlname)
	if err != nil {
		return err
	}
	if other == nil {
		return ErrProfileNotFound
	}

	removed, err := s.neighborRepo.DeleteAccepted(ctx, userID, other.UserID)
	if err != nil {
		return fmt.Errorf("removing neighbor relation: %w", err)
	}
	if removed == 0 {
		return ErrNotNeighbors
	}

	if s.cache != nil {
		if err := s.cache.Remove(ctx, userID, other.UserID); err != nil {
			log.Warn().Err(err).Msg("adjacency cache remove failed")
		}
	}
	return nil
}

func (s *NeighborService) IncomingRequests(ctx context.Context, userID uuid.UUID) ([]domain.NeighborRequest, error) {
	reqs, err := s.neighborRepo.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.NeighborRequest{}
	}
	return reqs, nil
}

// Neighbors returns the caller's own mutual-neighbor profiles.
func (s *NeighborService) Neighbors(ctx context.Context, userID uuid.UUID) ([]domain.Profile, error) {
	profiles, err := s.neighborRepo.ListNeighborProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return profiles, nil
}

// PublicNeighbors returns another user's neighbor list, honoring the
// owner's visibility toggle.
func (s *NeighborService) PublicNeighbors(ctx context.Context, urlname string) (*domain.Profile, []domain.Profile, error) {
	profile, err := s.profileRepo.GetByUrlname(ctx, urlname)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, ErrProfileNotFound
	}
	if !profile.NeighborVisibility {
		return nil, nil, ErrNeighborsPrivate
	}

	neighbors, err := s.neighborRepo.ListNeighborProfiles(ctx, profile.UserID)
	if err != nil {
		return nil, nil, err
	}
	if neighbors == nil {
		neighbors = []domain.Profile{}
	}
	return profile, neighbors, nil
}

// Count returns the neighbor count for the profile behind urlname. The
// owner can always see their own count; everyone else needs the list to
// be public. viewerID is uuid.Nil for unauthenticated callers.
func (s *NeighborService) Count(ctx context.Context, viewerID uuid.UUID, urlname string) (int64, error) {
	profile, err := s.profileRepo.GetByUrlname(ctx, urlname)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, ErrProfileNotFound
	}

	if !profile.NeighborVisibility && viewerID != profile.UserID {
		return 0, ErrNeighborsPrivate
	}

	if s.cache != nil {
		count, ok, err := s.cache.Count(ctx, profile.UserID)
		if err != nil {
			log.Warn().Err(err).Msg("adjacency cache read failed, falling back to store")
		} else if ok {
			return count, nil
		}
	}

	count, err := s.neighborRepo.CountNeighbors(ctx, profile.UserID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil && count > 0 {
		ids, err := s.neighborRepo.ListNeighborIDs(ctx, profile.UserID)
		if err == nil {
			if err := s.cache.Rebuild(ctx, profile.UserID, ids); err != nil {
				log.Warn().Err(err).Msg("adjacency cache rebuild failed")
			}
		}
	}

	return count, nil
}

func (s *NeighborService) cacheAdd(ctx context.Context, userA, userB uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Add(ctx, userA, userB); err != nil {
		log.Warn().Err(err).Msg("adjacency cache add failed")
	}
}
