package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-api/pkg/apperror"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

type fixture struct {
	repo    *memory.UserRepository
	creds   *CredentialService
	graph   *GraphService
	profile *ProfileService
	jwt     *helpers.JWTManager
	store   *memStore
	index   *memIndex
	notify  *memNotifier
}

type memStore struct {
	keys []string
	data [][]byte
	err  error
}

func (s *memStore) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	s.data = append(s.data, b)
	return "/uploads/" + key, nil
}

type memIndex struct {
	indexed []string
	hits    []entity.UserSummary
	failAll bool
}

func (i *memIndex) IndexUser(_ context.Context, u *entity.User) error {
	if i.failAll {
		return errors.New("es down")
	}
	i.indexed = append(i.indexed, u.ID)
	return nil
}

func (i *memIndex) SearchUsers(_ context.Context, _ string, _ int) ([]entity.UserSummary, error) {
	if i.failAll {
		return nil, errors.New("es down")
	}
	return i.hits, nil
}

type memNotifier struct {
	registered []string
	followed   [][2]string
}

func (n *memNotifier) UserRegistered(_ context.Context, u *entity.User) error {
	n.registered = append(n.registered, u.Email)
	return nil
}

func (n *memNotifier) UserFollowed(_ context.Context, actor, target *entity.User) error {
	n.followed = append(n.followed, [2]string{actor.ID, target.ID})
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		repo:   memory.NewUserRepository(),
		jwt:    helpers.NewJWTManager("test-secret", 24*time.Hour),
		store:  &memStore{},
		index:  &memIndex{},
		notify: &memNotifier{},
	}
	f.creds = NewCredentialService(f.repo, helpers.NewPasswordHasher(bcrypt.MinCost), f.jwt, logger)
	f.creds.Index = f.index
	f.creds.Notify = f.notify
	f.graph = NewGraphService(f.repo, logger)
	f.graph.Index = f.index
	f.graph.Notify = f.notify
	f.profile = NewProfileService(f.repo, f.store, logger)
	f.profile.Index = f.index
	f.profile.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func (f *fixture) register(t *testing.T, name, username, email string) *entity.User {
	t.Helper()
	u, err := f.creds.Register(context.Background(), RegisterInput{
		Name: name, Username: username, Email: email, Password: "secret",
	})
	require.NoError(t, err)
	return u
}

func requireKind(t *testing.T, err error, kind apperror.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err))
	if msg != "" {
		assert.Equal(t, msg, apperror.PublicMessage(err))
	}
}

func TestRegister_CreatesUserWithDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "Ann", "ann", "ann@x.com")

	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, entity.DefaultProfilePicture, u.ProfilePicture)
	assert.Equal(t, "", u.Bio)
	assert.Zero(t, u.Followers.Len())
	assert.Zero(t, u.Following.Len())

	stored, err := f.repo.GetByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))

	assert.Equal(t, []string{"ann@x.com"}, f.notify.registered)
	assert.Equal(t, []string{u.ID}, f.index.indexed)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	cases := []RegisterInput{
		{Username: "ann", Email: "ann@x.com", Password: "p"},
		{Name: "Ann", Email: "ann@x.com", Password: "p"},
		{Name: "Ann", Username: "ann", Password: "p"},
		{Name: "Ann", Username: "ann", Email: "ann@x.com"},
		{Name: "  ", Username: "ann", Email: "ann@x.com", Password: "p"},
	}
	for _, in := range cases {
		_, err := f.creds.Register(context.Background(), in)
		requireKind(t, err, apperror.KindValidation, MsgFieldsRequired)
	}
}

func TestRegister_Conflicts(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ann", "ann", "ann@x.com")

	_, err := f.creds.Register(context.Background(), RegisterInput{
		Name: "Other", Username: "other", Email: "ann@x.com", Password: "p",
	})
	requireKind(t, err, apperror.KindConflict, MsgUserExists)

	_, err = f.creds.Register(context.Background(), RegisterInput{
		Name: "Other", Username: "ann", Email: "other@x.com", Password: "p",
	})
	requireKind(t, err, apperror.KindConflict, MsgUsernameTaken)
}

func TestRegister_IndexFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.index.failAll = true
	u := f.register(t, "Ann", "ann", "ann@x.com")
	assert.NotEmpty(t, u.ID)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "Ann", "ann", "ann@x.com")

	res, err := f.creds.Login(context.Background(), "ann@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Empty(t, res.User.PasswordHash)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	claims, err := f.jwt.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ann", "ann", "ann@x.com")

	_, err := f.creds.Login(context.Background(), "ann@x.com", "wrong")
	requireKind(t, err, apperror.KindAuth, MsgInvalidCredentials)

	_, err = f.creds.Login(context.Background(), "nobody@x.com", "secret")
	requireKind(t, err, apperror.KindAuth, MsgInvalidCredentials)

	_, err = f.creds.Login(context.Background(), "", "secret")
	requireKind(t, err, apperror.KindValidation, MsgFieldsRequired)
}

func TestFollow_UpdatesBothSides(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A", "a", "a@x.com")
	b := f.register(t, "B", "b", "b@x.com")

	msg, err := f.graph.Follow(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "A just followed B", msg)

	gotA, _ := f.repo.GetByID(context.Background(), a.ID)
	gotB, _ := f.repo.GetByID(context.Background(), b.ID)
	assert.Equal(t, []string{b.ID}, gotA.Following.Slice())
	assert.Equal(t, []string{a.ID}, gotB.Followers.Slice())
	assert.Zero(t, gotA.Followers.Len())
	assert.Zero(t, gotB.Following.Len())
	assert.Equal(t, [][2]string{{a.ID, b.ID}}, f.notify.followed)
}

func TestFollow_TwiceConflicts(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A", "a", "a@x.com")
	b := f.register(t, "B", "b", "b@x.com")

	_, err := f.graph.Follow(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.graph.Follow(context.Background(), a.ID, b.ID)
	requireKind(t, err, apperror.KindConflict, "User already followed B")

	gotB, _ := f.repo.GetByID(context.Background(), b.ID)
	assert.Equal(t, 1, gotB.Followers.Len())
}

func TestFollow_Errors(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A", "a", "a@x.com")

	_, err := f.graph.Follow(context.Background(), a.ID, a.ID)
	requireKind(t, err, apperror.KindValidation, MsgSelfFollow)

	_, err = f.graph.Follow(context.Background(), a.ID, "missing")
	requireKind(t, err, apperror.KindNotFound, MsgUserNotFound)

	_, err = f.graph.Follow(context.Background(), "missing", a.ID)
	requireKind(t, err, apperror.KindNotFound, MsgUserNotFound)
}

func TestUnfollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "A", "a", "a@x.com")
	b := f.register(t, "B", "b", "b@x.com")
	c := f.register(t, "C", "c", "c@x.com")

	_, err := f.graph.Unfollow(ctx, a.ID, b.ID)
	requireKind(t, err, apperror.KindConflict, MsgNotFollowedYet)

	// unrelated edges around both users must survive the round trip
	for _, e := range [][2]string{{a.ID, c.ID}, {c.ID, a.ID}, {c.ID, b.ID}, {b.ID, c.ID}} {
		_, err := f.graph.Follow(ctx, e[0], e[1])
		require.NoError(t, err)
	}
	beforeA, _ := f.repo.GetByID(ctx, a.ID)
	beforeB, _ := f.repo.GetByID(ctx, b.ID)

	_, err = f.graph.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	msg, err := f.graph.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "A unfollowed B", msg)

	gotA, _ := f.repo.GetByID(ctx, a.ID)
	gotB, _ := f.repo.GetByID(ctx, b.ID)
	assert.Equal(t, beforeA.Following.Slice(), gotA.Following.Slice())
	assert.Equal(t, beforeA.Followers.Slice(), gotA.Followers.Slice())
	assert.Equal(t, beforeB.Following.Slice(), gotB.Following.Slice())
	assert.Equal(t, beforeB.Followers.Slice(), gotB.Followers.Slice())
	assert.Equal(t, []string{c.ID}, gotA.Following.Slice())
	assert.Equal(t, []string{c.ID}, gotB.Followers.Slice())
}

func TestGetProfileAndListOthers(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A", "a", "a@x.com")

	others, err := f.profile.ListOthers(context.Background(), a.ID)
	require.NoError(t, err)
	assert.NotNil(t, others)
	assert.Empty(t, others)

	b := f.register(t, "B", "b", "b@x.com")
	others, err = f.profile.ListOthers(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, b.ID, others[0].ID)
	assert.Empty(t, others[0].PasswordHash)

	got, err := f.profile.GetProfile(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Username)

	_, err = f.profile.GetProfile(context.Background(), "missing")
	requireKind(t, err, apperror.KindNotFound, MsgUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A", "a", "a@x.com")
	f.register(t, "B", "b", "b@x.com")

	bio := "hello"
	got, err := f.profile.UpdateProfile(context.Background(), a.ID, entity.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, "A", got.Name)

	taken := "b"
	_, err = f.profile.UpdateProfile(context.Background(), a.ID, entity.ProfilePatch{Username: &taken})
	requireKind(t, err, apperror.KindConflict, MsgUsernameTaken)

	long := string(bytes.Repeat([]byte("x"), entity.MaxBioLength+1))
	_, err = f.profile.UpdateProfile(context.Background(), a.ID, entity.ProfilePatch{Bio: &long})
	requireKind(t, err, apperror.KindValidation, "")

	blank := " "
	_, err = f.profile.UpdateProfile(context.Background(), a.ID, entity.ProfilePatch{Name: &blank})
	requireKind(t, err, apperror.KindValidation, "")

	got, err = f.profile.UpdateProfile(context.Background(), a.ID, entity.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)

	_, err = f.profile.UpdateProfile(context.Background(), "missing", entity.ProfilePatch{Bio: &bio})
	requireKind(t, err, apperror.KindNotFound, MsgUserNotFound)
}

func TestUpdateProfilePicture(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "A", "a", "a@x.com")

	got, err := f.profile.UpdateProfilePicture(context.Background(), a.ID, &Upload{
		Filename: "dir/me.png", ContentType: "image/png", Body: bytes.NewBufferString("png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-me.png", got.ProfilePicture)
	assert.Equal(t, []string{"1700000000000-me.png"}, f.store.keys)

	_, err = f.profile.UpdateProfilePicture(context.Background(), a.ID, nil)
	requireKind(t, err, apperror.KindValidation, MsgNoFile)

	_, err = f.profile.UpdateProfilePicture(context.Background(), "missing", &Upload{
		Filename: "x.png", Body: bytes.NewBufferString("x"),
	})
	requireKind(t, err, apperror.KindNotFound, MsgUserNotFound)
	assert.Len(t, f.store.keys, 1)

	f.store.err = errors.New("disk full")
	_, err = f.profile.UpdateProfilePicture(context.Background(), a.ID, &Upload{
		Filename: "x.png", Body: bytes.NewBufferString("x"),
	})
	requireKind(t, err, apperror.KindInternal, "")
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	_, err := f.profile.Search(context.Background(), "  ", 5)
	requireKind(t, err, apperror.KindValidation, "")

	hits, err := f.profile.Search(context.Background(), "ann", 0)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	f.index.hits = []entity.UserSummary{{ID: "1", Username: "ann"}}
	hits, err = f.profile.Search(context.Background(), "ann", 500)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	f.profile.Index = nil
	hits, err = f.profile.Search(context.Background(), "ann", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
