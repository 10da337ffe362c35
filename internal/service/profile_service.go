package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/repository"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

// CurrentProfile resolves the caller's profile, creating a default one on
// first access for accounts that predate profile creation at signup.
func (s *ProfileService) CurrentProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("no user for id %s", userID)
	}

	now := time.Now()
	profile = &domain.Profile{
		ID:                 uuid.New(),
		UserID:             user.ID,
		Urlname:            user.Username,
		Username:           user.Username,
		BlogTitle:          fmt.Sprintf("%s's blog", user.Username),
		NeighborVisibility: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) GetByUrlname(ctx context.Context, urlname string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUrlname(ctx, urlname)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

type ProfileUpdateInput struct {
	Username           *string `json:"username"`
	BlogTitle          *string `json:"blog_title"`
	Intro              *string `json:"intro"`
	UserPic            *string `json:"user_pic"`
	NeighborVisibility *bool   `json:"neighbor_visibility"`
}

// Update applies a partial update to the caller's own profile. Only the
// owner reaches this path; urlname is immutable once set.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, input ProfileUpdateInput) (*domain.Profile, error) {
	profile, err := s.CurrentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		profile.Username = *input.Username
	}
	if input.BlogTitle != nil {
		profile.BlogTitle = *input.BlogTitle
	}
	if input.Intro != nil {
		profile.Intro = *input.Intro
	}
	if input.UserPic != nil {
		profile.UserPic = input.UserPic
	}
	if input.NeighborVisibility != nil {
		profile.NeighborVisibility = *input.NeighborVisibility
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return profile, nil
}
