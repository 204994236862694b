package app

import (
	"context"

	"fitlane/internal/domain"

	"github.com/google/uuid"
)

// ProfileService serves the cached user profile, seeding it on first use.
type ProfileService struct {
	store    domain.ProfileStore
	defaults domain.User
}

// NewProfileService creates a ProfileService. defaults is stored the first
// time a profile is requested; an empty ID is replaced with a new UUID.
func NewProfileService(store domain.ProfileStore, defaults domain.User) *ProfileService {
	return &ProfileService{store: store, defaults: defaults}
}

// Get returns the validated profile.
func (s *ProfileService) Get(ctx context.Context) (*domain.User, error) {
	u, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		seed := s.defaults
		if seed.ID == "" {
			seed.ID = uuid.NewString()
		}
		if err := s.store.Save(ctx, seed); err != nil {
			return nil, err
		}
		u = &seed
	}

	if !u.IsValid() {
		return nil, domain.NewValidationError("Invalid user data", nil)
	}
	return u, nil
}

// Update validates and stores a new profile.
func (s *ProfileService) Update(ctx context.Context, u domain.User) (*domain.User, error) {
	if !u.IsValid() {
		return nil, domain.NewValidationError("Invalid user data", nil)
	}
	if err := s.store.Save(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}
