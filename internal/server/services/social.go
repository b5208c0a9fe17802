package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/metrics"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
)

// SocialService maintains the follow graph. Follow and Unfollow are
// idempotent: repeating them leaves exactly one edge, or none.
type SocialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSocialService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SocialService {
	return &SocialService{db: db, repomanager: m, logger: logger}
}

// Follow makes actor follow the user named target. Following an already
// followed user succeeds without change. Returns common.ErrTargetNotFound
// when no user has that exact username.
func (s *SocialService) Follow(ctx context.Context, actor *models.User, target string) (*models.Profile, error) {
	var followee *models.User
	created := false

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := findByUsername(ctx, s.repomanager.Users(tx), target)
		if err != nil {
			return err
		}
		followee = u

		graph := s.repomanager.Follows(tx)
		exists, err := graph.Exists(ctx, actor.ID, followee.ID)
		if err != nil || exists {
			return err
		}

		created, err = graph.Insert(ctx, actor.ID, followee.ID)
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrAlreadyExists):
		// lost a race against an identical follow; the edge is there
		created = false
	case errors.Is(err, common.ErrorNotFound):
		metrics.RecordFollowOperation("follow", metrics.OutcomeNotFound)
		return nil, common.ErrTargetNotFound
	default:
		metrics.RecordFollowOperation("follow", metrics.OutcomeError)
		return nil, err
	}

	if created {
		metrics.RecordFollowOperation("follow", metrics.OutcomeSuccess)
		s.logger.Debug(ctx, "follow created", "follower_id", actor.ID, "followee_id", followee.ID)
	} else {
		metrics.RecordFollowOperation("follow", metrics.OutcomeNoop)
	}

	return models.ProfileOf(followee, true), nil
}

// Unfollow removes the edge from actor to the user named target, if any.
func (s *SocialService) Unfollow(ctx context.Context, actor *models.User, target string) (*models.Profile, error) {
	var followee *models.User
	deleted := false

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := findByUsername(ctx, s.repomanager.Users(tx), target)
		if err != nil {
			return err
		}
		followee = u

		deleted, err = s.repomanager.Follows(tx).Delete(ctx, actor.ID, followee.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.RecordFollowOperation("unfollow", metrics.OutcomeNotFound)
			return nil, common.ErrTargetNotFound
		}
		metrics.RecordFollowOperation("unfollow", metrics.OutcomeError)
		return nil, err
	}

	if deleted {
		metrics.RecordFollowOperation("unfollow", metrics.OutcomeSuccess)
	} else {
		metrics.RecordFollowOperation("unfollow", metrics.OutcomeNoop)
	}

	return models.ProfileOf(followee, false), nil
}

// IsFollowing reports whether the edge actorID -> targetID exists.
func (s *SocialService) IsFollowing(ctx context.Context, actorID, targetID int64) (bool, error) {
	return s.repomanager.Follows(s.db).Exists(ctx, actorID, targetID)
}

// Profile returns the public profile of username. following is computed
// for viewer and is false for anonymous viewers.
func (s *SocialService) Profile(ctx context.Context, viewer *models.User, username string) (*models.Profile, error) {
	user, err := findByUsername(ctx, s.repomanager.Users(s.db), username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTargetNotFound
		}
		return nil, err
	}

	following := false
	if viewer != nil {
		following, err = s.IsFollowing(ctx, viewer.ID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return models.ProfileOf(user, following), nil
}
