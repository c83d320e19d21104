package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
)

func create(t *testing.T, r *UserRepository, username, email string) *entity.User {
	t.Helper()
	u := &entity.User{Name: username, Username: username, Email: email, PasswordHash: "h"}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestCreate_UniqueEmailAndUsername(t *testing.T) {
	r := NewUserRepository()
	u := create(t, r, "ann", "ann@x.com")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, entity.DefaultProfilePicture, u.ProfilePicture)

	err := r.Create(context.Background(), &entity.User{Username: "other", Email: "ann@x.com"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	err = r.Create(context.Background(), &entity.User{Username: "ann", Email: "other@x.com"})
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	r := NewUserRepository()
	u := create(t, r, "ann", "ann@x.com")

	got, err := r.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	got.Followers.Add("intruder")

	again, err := r.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Followers.Len())

	_, err = r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFollowUnfollow_Symmetric(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	a := create(t, r, "a", "a@x.com")
	b := create(t, r, "b", "b@x.com")

	require.NoError(t, r.Follow(ctx, a.ID, b.ID))
	assert.ErrorIs(t, r.Follow(ctx, a.ID, b.ID), repository.ErrAlreadyFollowing)

	ga, _ := r.GetByID(ctx, a.ID)
	gb, _ := r.GetByID(ctx, b.ID)
	assert.Equal(t, []string{b.ID}, ga.Following.Slice())
	assert.Equal(t, []string{a.ID}, gb.Followers.Slice())

	require.NoError(t, r.Unfollow(ctx, a.ID, b.ID))
	assert.ErrorIs(t, r.Unfollow(ctx, a.ID, b.ID), repository.ErrNotFollowing)

	ga, _ = r.GetByID(ctx, a.ID)
	gb, _ = r.GetByID(ctx, b.ID)
	assert.Equal(t, 0, ga.Following.Len())
	assert.Equal(t, 0, gb.Followers.Len())
}

func TestFollow_MissingUser(t *testing.T) {
	r := NewUserRepository()
	a := create(t, r, "a", "a@x.com")
	assert.ErrorIs(t, r.Follow(context.Background(), a.ID, "nope"), repository.ErrNotFound)
	assert.ErrorIs(t, r.Unfollow(context.Background(), "nope", a.ID), repository.ErrNotFound)
}

func TestUpdateProfile_UsernameConflict(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	a := create(t, r, "a", "a@x.com")
	create(t, r, "b", "b@x.com")

	taken := "b"
	_, err := r.UpdateProfile(ctx, a.ID, entity.ProfilePatch{Username: &taken})
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)

	same := "a"
	bio := "hello"
	u, err := r.UpdateProfile(ctx, a.ID, entity.ProfilePatch{Username: &same, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", u.Bio)
}

func TestListExcept(t *testing.T) {
	r := NewUserRepository()
	a := create(t, r, "a", "a@x.com")
	create(t, r, "b", "b@x.com")
	create(t, r, "c", "c@x.com")

	list, err := r.ListExcept(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, u := range list {
		assert.NotEqual(t, a.ID, u.ID)
	}
}

func TestFollow_SelfIsRejected(t *testing.T) {
	r := NewUserRepository()
	u := create(t, r, "ann", "ann@x.com")

	assert.ErrorIs(t, r.Follow(context.Background(), u.ID, u.ID), repository.ErrSelfFollow)
	assert.ErrorIs(t, r.Unfollow(context.Background(), u.ID, u.ID), repository.ErrSelfFollow)
	got, _ := r.GetByID(context.Background(), u.ID)
	assert.Zero(t, got.Followers.Len())
}
