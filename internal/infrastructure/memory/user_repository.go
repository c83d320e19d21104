// Package memory keeps users in process memory. It backs STORE_DRIVER=memory
// and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User), now: time.Now}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
		if existing.Username == u.Username {
			return repository.ErrUsernameTaken
		}
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.ProfilePicture == "" {
		u.ProfilePicture = entity.DefaultProfilePicture
	}
	r.users[u.ID] = u.Clone()
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) ListExcept(_ context.Context, id string) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		if u.ID != id {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, p entity.ProfilePatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Username != nil {
		for _, other := range r.users {
			if other.ID != id && other.Username == *p.Username {
				return nil, repository.ErrUsernameTaken
			}
		}
		u.Username = *p.Username
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	u.UpdatedAt = r.now().UTC()
	return u.Clone(), nil
}

func (r *UserRepository) UpdatePicture(_ context.Context, id, ref string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.ProfilePicture = ref
	u.UpdatedAt = r.now().UTC()
	return u.Clone(), nil
}

func (r *UserRepository) Follow(_ context.Context, actorID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, target, err := r.pair(actorID, targetID)
	if err != nil {
		return err
	}
	if target.Followers.Contains(actorID) {
		return repository.ErrAlreadyFollowing
	}
	now := r.now().UTC()
	target.Followers.Add(actorID)
	target.UpdatedAt = now
	actor.Following.Add(targetID)
	actor.UpdatedAt = now
	return nil
}

func (r *UserRepository) Unfollow(_ context.Context, actorID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, target, err := r.pair(actorID, targetID)
	if err != nil {
		return err
	}
	if !actor.Following.Contains(targetID) {
		return repository.ErrNotFollowing
	}
	now := r.now().UTC()
	target.Followers.Remove(actorID)
	target.UpdatedAt = now
	actor.Following.Remove(targetID)
	actor.UpdatedAt = now
	return nil
}

// pair must be called with mu held.
func (r *UserRepository) pair(actorID, targetID string) (*entity.User, *entity.User, error) {
	if actorID == targetID {
		return nil, nil, repository.ErrSelfFollow
	}
	actor, ok := r.users[actorID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	target, ok := r.users[targetID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	return actor, target, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
