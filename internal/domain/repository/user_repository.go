package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrEmailTaken       = errors.New("email already exists")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
	ErrSelfFollow       = errors.New("actor and target are the same user")
)

// UserRepository defines the persistence operations of the user store.
// Follow and Unfollow update both users or neither.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListExcept(ctx context.Context, id string) ([]*entity.User, error)
	UpdateProfile(ctx context.Context, id string, p entity.ProfilePatch) (*entity.User, error)
	UpdatePicture(ctx context.Context, id, ref string) (*entity.User, error)
	Follow(ctx context.Context, actorID, targetID string) error
	Unfollow(ctx context.Context, actorID, targetID string) error
}
