package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	repo "github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/apperror"
)

const (
	MsgUserNotFound   = "User not found"
	MsgSelfFollow     = "You cannot follow yourself."
	MsgNotFollowedYet = "User is not followed yet."
)

// GraphService applies follow and unfollow to both ends of an edge.
type GraphService struct {
	Repo   repo.UserRepository
	Logger logrus.FieldLogger

	// optional
	Index  UserIndex
	Notify Notifier
}

func NewGraphService(r repo.UserRepository, logger logrus.FieldLogger) *GraphService {
	return &GraphService{Repo: r, Logger: logger}
}

// Follow makes actorID follow targetID and returns a confirmation message.
// Following an already followed user is a conflict, not a no-op.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID string) (string, error) {
	actor, target, err := s.load(ctx, actorID, targetID)
	if err != nil {
		return "", err
	}
	alreadyFollowed := apperror.Conflict("User already followed " + target.Name)
	if target.Followers.Contains(actor.ID) {
		return "", alreadyFollowed
	}

	if err := s.Repo.Follow(ctx, actor.ID, target.ID); err != nil {
		switch {
		case errors.Is(err, repo.ErrAlreadyFollowing):
			return "", alreadyFollowed
		case errors.Is(err, repo.ErrSelfFollow):
			return "", apperror.Validation(MsgSelfFollow)
		case errors.Is(err, repo.ErrNotFound):
			return "", apperror.NotFound(MsgUserNotFound)
		}
		return "", apperror.Internal(err)
	}
	metricFollows.Add(1)

	actor.Following.Add(target.ID)
	target.Followers.Add(actor.ID)
	s.afterEdgeChange(ctx, actor, target)
	if s.Notify != nil {
		if err := s.Notify.UserFollowed(ctx, actor, target); err != nil {
			s.Logger.WithError(err).WithField("user_id", target.ID).Warn("follow notification failed")
		}
	}
	return fmt.Sprintf("%s just followed %s", actor.Name, target.Name), nil
}

// Unfollow removes the actorID -> targetID edge.
func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID string) (string, error) {
	actor, target, err := s.load(ctx, actorID, targetID)
	if err != nil {
		return "", err
	}
	if !actor.Following.Contains(target.ID) {
		return "", apperror.Conflict(MsgNotFollowedYet)
	}

	if err := s.Repo.Unfollow(ctx, actor.ID, target.ID); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFollowing):
			return "", apperror.Conflict(MsgNotFollowedYet)
		case errors.Is(err, repo.ErrSelfFollow):
			return "", apperror.Validation(MsgSelfFollow)
		case errors.Is(err, repo.ErrNotFound):
			return "", apperror.NotFound(MsgUserNotFound)
		}
		return "", apperror.Internal(err)
	}
	metricUnfollows.Add(1)

	actor.Following.Remove(target.ID)
	target.Followers.Remove(actor.ID)
	s.afterEdgeChange(ctx, actor, target)
	return fmt.Sprintf("%s unfollowed %s", actor.Name, target.Name), nil
}

func (s *GraphService) load(ctx context.Context, actorID, targetID string) (*entity.User, *entity.User, error) {
	if actorID == "" || targetID == "" {
		return nil, nil, apperror.Validation("User id is required.")
	}
	if actorID == targetID {
		return nil, nil, apperror.Validation(MsgSelfFollow)
	}
	actor, err := s.get(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.get(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	// the store may accept more than one spelling of an id
	if actor.ID == target.ID {
		return nil, nil, apperror.Validation(MsgSelfFollow)
	}
	return actor, target, nil
}

func (s *GraphService) get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, apperror.Internal(err)
	}
	return u, nil
}

func (s *GraphService) afterEdgeChange(ctx context.Context, actor, target *entity.User) {
	indexUser(ctx, s.Index, s.Logger, actor)
	indexUser(ctx, s.Index, s.Logger, target)
}
