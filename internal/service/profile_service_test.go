package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/stretchr/testify/require"
)

func newProfileFixture() (*ProfileService, *fakeUserRepo, *fakeProfileRepo) {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	return NewProfileService(profiles, users), users, profiles
}

func TestCurrentProfileCreatesDefaultLazily(t *testing.T) {
	svc, users, _ := newProfileFixture()
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Email: "jiwoo@example.com", Username: "jiwoo", CreatedAt: time.Now()}
	require.NoError(t, users.Create(ctx, user))

	profile, err := svc.CurrentProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "jiwoo", profile.Urlname)
	require.Equal(t, "jiwoo's blog", profile.BlogTitle)
	require.True(t, profile.NeighborVisibility)

	// The second call returns the stored profile, not another default.
	again, err := svc.CurrentProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, profile.ID, again.ID)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, users, profiles := newProfileFixture()
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Email: "jiwoo@example.com", Username: "jiwoo"}
	require.NoError(t, users.Create(ctx, user))
	seeded := profiles.add(domain.Profile{
		UserID:             user.ID,
		Urlname:            "jiwoo",
		Username:           "Jiwoo",
		BlogTitle:          "Old title",
		Intro:              "hello",
		NeighborVisibility: true,
	})

	newTitle := "Fresh title"
	hide := false
	updated, err := svc.Update(ctx, user.ID, ProfileUpdateInput{
		BlogTitle:          &newTitle,
		NeighborVisibility: &hide,
	})
	require.NoError(t, err)
	require.Equal(t, "Fresh title", updated.BlogTitle)
	require.False(t, updated.NeighborVisibility)

	// Untouched fields survive, and the urlname never changes.
	require.Equal(t, "Jiwoo", updated.Username)
	require.Equal(t, "hello", updated.Intro)
	require.Equal(t, seeded.Urlname, updated.Urlname)
}

func TestGetByUrlname(t *testing.T) {
	svc, _, profiles := newProfileFixture()
	ctx := context.Background()

	seedProfile(profiles, "jiwoo", "Jiwoo")

	profile, err := svc.GetByUrlname(ctx, "jiwoo")
	require.NoError(t, err)
	require.Equal(t, "Jiwoo", profile.Username)

	_, err = svc.GetByUrlname(ctx, "nobody")
	require.ErrorIs(t, err, ErrProfileNotFound)
}
