package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	repo "github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/apperror"
)

const (
	MsgNoFile = "No file uploaded"

	defaultSearchSize = 10
	maxSearchSize     = 50
)

// Upload is a picture received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProfileService reads and edits profiles.
type ProfileService struct {
	Repo     repo.UserRepository
	Pictures PictureStore
	Logger   logrus.FieldLogger

	// optional
	Index UserIndex

	now func() time.Time
}

func NewProfileService(r repo.UserRepository, pictures PictureStore, logger logrus.FieldLogger) *ProfileService {
	return &ProfileService{Repo: r, Pictures: pictures, Logger: logger, now: time.Now}
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	return public(u), nil
}

// ListOthers returns every user except id. The result is never nil.
func (s *ProfileService) ListOthers(ctx context.Context, id string) ([]*entity.User, error) {
	users, err := s.Repo.ListExcept(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	out := make([]*entity.User, 0, len(users))
	for _, u := range users {
		out = append(out, public(u))
	}
	return out, nil
}

// UpdateProfile applies the non-nil fields of p. Email and password are not editable here.
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, p entity.ProfilePatch) (*entity.User, error) {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		if v == "" {
			return nil, apperror.Validation("Name cannot be empty.")
		}
		p.Name = &v
	}
	if p.Username != nil {
		v := strings.TrimSpace(*p.Username)
		if v == "" {
			return nil, apperror.Validation("Username cannot be empty.")
		}
		p.Username = &v
	}
	if p.Bio != nil && utf8.RuneCountInString(*p.Bio) > entity.MaxBioLength {
		return nil, apperror.Validation(fmt.Sprintf("Bio must be at most %d characters.", entity.MaxBioLength))
	}
	if p.Empty() {
		return s.GetProfile(ctx, id)
	}

	u, err := s.Repo.UpdateProfile(ctx, id, p)
	if err != nil {
		if errors.Is(err, repo.ErrUsernameTaken) {
			return nil, apperror.Conflict(MsgUsernameTaken)
		}
		return nil, notFoundOrInternal(err)
	}
	indexUser(ctx, s.Index, s.Logger, u)
	return public(u), nil
}

// UpdateProfilePicture stores the upload under "<unixmillis>-<name>" and
// records the returned reference on the user.
func (s *ProfileService) UpdateProfilePicture(ctx context.Context, id string, up *Upload) (*entity.User, error) {
	if up == nil || up.Body == nil {
		return nil, apperror.Validation(MsgNoFile)
	}
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return nil, notFoundOrInternal(err)
	}

	base := filepath.Base(strings.ReplaceAll(up.Filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	key := fmt.Sprintf("%d-%s", s.now().UnixMilli(), base)

	ref, err := s.Pictures.Save(ctx, key, up.ContentType, up.Body)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("store picture: %w", err))
	}
	u, err := s.Repo.UpdatePicture(ctx, id, ref)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	indexUser(ctx, s.Index, s.Logger, u)
	return public(u), nil
}

// Search queries the user index. Without an index it returns an empty list.
func (s *ProfileService) Search(ctx context.Context, q string, size int) ([]entity.UserSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Search query is required.")
	}
	switch {
	case size <= 0:
		size = defaultSearchSize
	case size > maxSearchSize:
		size = maxSearchSize
	}
	if s.Index == nil {
		return []entity.UserSummary{}, nil
	}
	hits, err := s.Index.SearchUsers(ctx, q, size)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if hits == nil {
		hits = []entity.UserSummary{}
	}
	return hits, nil
}

func notFoundOrInternal(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(MsgUserNotFound)
	}
	return apperror.Internal(err)
}
