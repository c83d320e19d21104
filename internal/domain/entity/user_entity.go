package entity

import (
	"time"
)

const (
	// DefaultProfilePicture is stored until the user uploads a picture.
	DefaultProfilePicture = "default-avatar.png"
	// MaxBioLength is the upper bound of User.Bio in characters.
	MaxBioLength = 160
)

// User is the aggregate root for the account and social graph domain.
// PasswordHash holds a bcrypt hash and is never rendered to clients.
type User struct {
	ID             string
	Name           string
	Username       string
	Email          string
	PasswordHash   string
	Followers      IDSet
	Following      IDSet
	Bio            string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy so callers never share the follow sets.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = u.Followers.Clone()
	c.Following = u.Following.Clone()
	return &c
}

// ProfilePatch carries a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Name     *string
	Username *string
	Bio      *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Username == nil && p.Bio == nil
}

// UserSummary is the public projection returned by user search.
type UserSummary struct {
	ID             string
	Name           string
	Username       string
	Bio            string
	ProfilePicture string
	Followers      int
	Following      int
}
