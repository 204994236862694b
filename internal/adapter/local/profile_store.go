package local

import (
	"context"
	"encoding/json"

	"fitlane/internal/domain"
)

// ProfileStore keeps the user profile as JSON under a fixed key.
type ProfileStore struct {
	kv domain.KeyValueStore
}

var _ domain.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a ProfileStore.
func NewProfileStore(kv domain.KeyValueStore) *ProfileStore {
	return &ProfileStore{kv: kv}
}

// Get returns the stored profile, or nil if none was saved.
func (s *ProfileStore) Get(ctx context.Context) (*domain.User, error) {
	raw, ok, err := s.kv.GetItem(ctx, domain.ProfileStorageKey)
	if err != nil {
		return nil, domain.NewStorageError("Failed to get user profile", err)
	}
	if !ok {
		return nil, nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, domain.NewStorageError("Failed to get user profile", err)
	}
	return &u, nil
}

// Save replaces the stored profile.
func (s *ProfileStore) Save(ctx context.Context, u domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return domain.NewStorageError("Failed to save user profile", err)
	}
	if err := s.kv.SetItem(ctx, domain.ProfileStorageKey, string(data)); err != nil {
		return domain.NewStorageError("Failed to save user profile", err)
	}
	return nil
}
