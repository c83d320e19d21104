package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	repo "github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/apperror"
)

const (
	MsgFieldsRequired     = "All fields are required."
	MsgUserExists         = "User already exists."
	MsgUsernameTaken      = "Username already taken."
	MsgInvalidCredentials = "Incorrect email or password."
)

// CredentialService registers accounts and issues session tokens.
type CredentialService struct {
	Repo   repo.UserRepository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Logger logrus.FieldLogger

	// optional
	Index  UserIndex
	Notify Notifier
}

func NewCredentialService(r repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger logrus.FieldLogger) *CredentialService {
	return &CredentialService{Repo: r, Hasher: hasher, Tokens: tokens, Logger: logger}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account. No session is issued; the client logs in next.
func (s *CredentialService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.Validation(MsgFieldsRequired)
	}

	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict(MsgUserExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u := &entity.User{
		Name:           in.Name,
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hash,
		ProfilePicture: entity.DefaultProfilePicture,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			return nil, apperror.Conflict(MsgUserExists)
		case errors.Is(err, repo.ErrUsernameTaken):
			return nil, apperror.Conflict(MsgUsernameTaken)
		}
		return nil, apperror.Internal(err)
	}
	metricRegistrations.Add(1)

	indexUser(ctx, s.Index, s.Logger, u)
	if s.Notify != nil {
		if err := s.Notify.UserRegistered(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome notification failed")
		}
	}
	return public(u), nil
}

// Login verifies credentials and issues a signed session token.
// Unknown email and wrong password fail with the same message.
func (s *CredentialService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Validation(MsgFieldsRequired)
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metricLoginFailures.Add(1)
			return nil, apperror.Auth(MsgInvalidCredentials)
		}
		return nil, apperror.Internal(err)
	}
	if !s.Hasher.Compare(u.PasswordHash, password) {
		metricLoginFailures.Add(1)
		return nil, apperror.Auth(MsgInvalidCredentials)
	}

	token, exp, err := s.Tokens.Generate(u.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	metricLogins.Add(1)
	return &LoginResult{User: public(u), Token: token, ExpiresAt: exp}, nil
}
