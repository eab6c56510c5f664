package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
	"github.com/glosshub/glosshub/internal/pkg/xcache"
)

type UserServiceParams struct {
	fx.In

	CacheConfig xcache.Config
	Store       UserStore
}

// UserService resolves userids to user records with a cross-request
// lookup cache in front of the store.
type UserService struct {
	store UserStore

	UserCache xcache.Cache[models.User]
}

func NewUserService(params UserServiceParams) *UserService {
	return &UserService{
		store:     params.Store,
		UserCache: xcache.NewFromConfig[models.User](params.CacheConfig),
	}
}

// Fetch returns the user for a userid, consulting the cache first.
func (s *UserService) Fetch(ctx context.Context, userid string) (*models.User, error) {
	if cached, err := s.UserCache.Get(ctx, userid); err == nil {
		return &cached, nil
	}

	user, err := s.store.GetUser(ctx, userid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userid, err)
	}

	if err := s.UserCache.Set(ctx, userid, *user); err != nil {
		log.Warn(ctx, "failed to cache user", log.String("userid", userid), log.Cause(err))
	}

	return user, nil
}

// FetchAll loads all given userids in one store call and primes the
// cache, so later Fetch calls within the batch hit memory. Unknown
// userids are absent from the result.
func (s *UserService) FetchAll(ctx context.Context, userids []string) (map[string]*models.User, error) {
	userids = lo.Uniq(userids)

	users, err := s.store.GetUsers(ctx, userids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	result := make(map[string]*models.User, len(users))

	for _, user := range users {
		result[user.UserID] = user

		if err := s.UserCache.Set(ctx, user.UserID, *user); err != nil {
			log.Warn(ctx, "failed to cache user", log.String("userid", user.UserID), log.Cause(err))
		}
	}

	return result, nil
}

// TryFetch is Fetch, but returns nil instead of ErrUserNotFound for
// unknown userids.
func (s *UserService) TryFetch(ctx context.Context, userid string) (*models.User, error) {
	user, err := s.Fetch(ctx, userid)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}

	return user, err
}
