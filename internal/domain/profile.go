package domain

import "context"

// User is the profile of the person the dashboard belongs to.
type User struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
}

// IsValid reports whether the profile has an id and a name.
func (u User) IsValid() bool {
	return u.ID != "" && u.Name != ""
}

// DisplayName returns the name to greet the user with.
func (u User) DisplayName() string {
	if u.Name == "" {
		return "User"
	}
	return u.Name
}

// ProfileStore is the port for the cached user profile. Get returns nil
// without error when no profile is stored.
type ProfileStore interface {
	Get(ctx context.Context) (*User, error)
	Save(ctx context.Context, u User) error
}
