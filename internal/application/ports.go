package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
)

// PasswordHasher is satisfied by helpers.PasswordHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenIssuer is satisfied by helpers.JWTManager.
type TokenIssuer interface {
	Generate(userID string) (string, time.Time, error)
}

// Notifier publishes user events. Failures never fail the request.
type Notifier interface {
	UserRegistered(ctx context.Context, u *entity.User) error
	UserFollowed(ctx context.Context, actor, target *entity.User) error
}

// UserIndex keeps the search index in sync with the store.
type UserIndex interface {
	IndexUser(ctx context.Context, u *entity.User) error
	SearchUsers(ctx context.Context, q string, size int) ([]entity.UserSummary, error)
}

// PictureStore persists uploaded pictures and returns their public reference.
type PictureStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// public strips credentials from a user before it leaves the service layer.
func public(u *entity.User) *entity.User {
	c := u.Clone()
	if c != nil {
		c.PasswordHash = ""
	}
	return c
}

func indexUser(ctx context.Context, idx UserIndex, logger logrus.FieldLogger, u *entity.User) {
	if idx == nil {
		return
	}
	if err := idx.IndexUser(ctx, u); err != nil {
		logger.WithError(err).WithField("user_id", u.ID).Warn("user index failed")
	}
}
