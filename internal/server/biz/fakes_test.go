package biz

import (
	"context"
	"time"

	"github.com/glosshub/glosshub/internal/models"
	"github.com/glosshub/glosshub/internal/pkg/xcache"
)

// Counting in-memory stores for service tests. Batched call counters
// let tests assert that the bulk paths stay batched.

type fakeAnnotationStore struct {
	annotations map[string]*models.Annotation

	getCalls   int
	batchCalls int
}

func (f *fakeAnnotationStore) GetAnnotation(ctx context.Context, id string) (*models.Annotation, error) {
	f.getCalls++

	annotation, ok := f.annotations[id]
	if !ok {
		return nil, ErrAnnotationNotFound
	}

	return annotation, nil
}

func (f *fakeAnnotationStore) GetAnnotations(ctx context.Context, ids []string) ([]*models.Annotation, error) {
	f.batchCalls++

	result := make([]*models.Annotation, 0, len(ids))

	for _, id := range ids {
		if annotation, ok := f.annotations[id]; ok {
			result = append(result, annotation)
		}
	}

	return result, nil
}

type fakeUserStore struct {
	users map[string]*models.User

	getCalls   int
	batchCalls int
}

func (f *fakeUserStore) GetUser(ctx context.Context, userid string) (*models.User, error) {
	f.getCalls++

	user, ok := f.users[userid]
	if !ok {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserStore) GetUsers(ctx context.Context, userids []string) ([]*models.User, error) {
	f.batchCalls++

	result := make([]*models.User, 0, len(userids))

	for _, userid := range userids {
		if user, ok := f.users[userid]; ok {
			result = append(result, user)
		}
	}

	return result, nil
}

type fakeModerationStore struct {
	hidden map[string]struct{}

	isHiddenCalls  int
	hiddenIDsCalls int
}

func (f *fakeModerationStore) HiddenIDs(ctx context.Context, annotationIDs []string) ([]string, error) {
	f.hiddenIDsCalls++

	var result []string

	for _, id := range annotationIDs {
		if _, ok := f.hidden[id]; ok {
			result = append(result, id)
		}
	}

	return result, nil
}

func (f *fakeModerationStore) IsHidden(ctx context.Context, annotationID string) (bool, error) {
	f.isHiddenCalls++

	_, ok := f.hidden[annotationID]

	return ok, nil
}

func (f *fakeModerationStore) SetHidden(ctx context.Context, annotationID string, hidden bool) error {
	if hidden {
		f.hidden[annotationID] = struct{}{}
	} else {
		delete(f.hidden, annotationID)
	}

	return nil
}

type fakeFlagStore struct {
	// flags maps annotation id to the set of userids that flagged it.
	flags map[string]map[string]struct{}

	isFlaggedCalls  int
	flaggedIDsCalls int
	flagCountsCalls int
}

func (f *fakeFlagStore) IsFlagged(ctx context.Context, userid, annotationID string) (bool, error) {
	f.isFlaggedCalls++

	_, ok := f.flags[annotationID][userid]

	return ok, nil
}

func (f *fakeFlagStore) FlaggedIDs(ctx context.Context, userid string, annotationIDs []string) ([]string, error) {
	f.flaggedIDsCalls++

	var result []string

	for _, id := range annotationIDs {
		if _, ok := f.flags[id][userid]; ok {
			result = append(result, id)
		}
	}

	return result, nil
}

func (f *fakeFlagStore) FlagCounts(ctx context.Context, annotationIDs []string) (map[string]int, error) {
	f.flagCountsCalls++

	result := make(map[string]int)

	for _, id := range annotationIDs {
		result[id] = len(f.flags[id])
	}

	return result, nil
}

func (f *fakeFlagStore) CreateFlag(ctx context.Context, flag *models.Flag) error {
	if f.flags[flag.AnnotationID] == nil {
		f.flags[flag.AnnotationID] = make(map[string]struct{})
	}

	f.flags[flag.AnnotationID][flag.UserID] = struct{}{}

	return nil
}

func (f *fakeFlagStore) DeleteFlag(ctx context.Context, userid, annotationID string) error {
	delete(f.flags[annotationID], userid)
	return nil
}

type fakeAuthClientStore struct {
	clients map[string]*models.AuthClient
}

func (f *fakeAuthClientStore) GetAuthClient(ctx context.Context, id string) (*models.AuthClient, error) {
	client, ok := f.clients[id]
	if !ok {
		return nil, ErrAuthClientNotFound
	}

	return client, nil
}

type testEnv struct {
	annotationStore *fakeAnnotationStore
	userStore       *fakeUserStore
	moderationStore *fakeModerationStore
	flagStore       *fakeFlagStore
	clientStore     *fakeAuthClientStore

	annotations *AnnotationService
	users       *UserService
	moderation  *ModerationService
	flags       *FlagService
	permissions *PermissionService
	auth        *AuthService
	json        *AnnotationJSONService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		annotationStore: &fakeAnnotationStore{annotations: make(map[string]*models.Annotation)},
		userStore:       &fakeUserStore{users: make(map[string]*models.User)},
		moderationStore: &fakeModerationStore{hidden: make(map[string]struct{})},
		flagStore:       &fakeFlagStore{flags: make(map[string]map[string]struct{})},
		clientStore:     &fakeAuthClientStore{clients: make(map[string]*models.AuthClient)},
	}

	env.annotations = NewAnnotationService(AnnotationServiceParams{Store: env.annotationStore})
	env.users = NewUserService(UserServiceParams{
		CacheConfig: xcache.Config{
			Mode: xcache.ModeMemory,
			Memory: xcache.MemoryConfig{
				Expiration:      time.Minute,
				CleanupInterval: time.Minute,
			},
		},
		Store: env.userStore,
	})
	env.permissions = NewPermissionService(PermissionServiceParams{})
	env.moderation = NewModerationService(ModerationServiceParams{
		Store:       env.moderationStore,
		Permissions: env.permissions,
	})
	env.flags = NewFlagService(FlagServiceParams{Store: env.flagStore})
	env.auth = NewAuthService(AuthServiceParams{
		Config:      AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		UserService: env.users,
		Clients:     env.clientStore,
	})
	env.json = NewAnnotationJSONService(AnnotationJSONServiceParams{
		Annotations: env.annotations,
		Moderation:  env.moderation,
		Flags:       env.flags,
		Users:       env.users,
		Permissions: env.permissions,
	})

	return env
}
