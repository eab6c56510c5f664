package db

import (
	"context"
	"sync"

	"github.com/glosshub/glosshub/internal/models"
	"github.com/glosshub/glosshub/internal/server/biz"
)

// MemoryStore is an in-process implementation of the biz store
// interfaces, used as the backing store in tests and single-node
// deployments.
type MemoryStore struct {
	mu          sync.RWMutex
	annotations map[string]*models.Annotation
	users       map[string]*models.User
	clients     map[string]*models.AuthClient
	groups      map[string]*models.Group
	hidden      map[string]bool
	flags       map[string]map[string]*models.Flag // annotation id -> userid -> flag
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		annotations: make(map[string]*models.Annotation),
		users:       make(map[string]*models.User),
		clients:     make(map[string]*models.AuthClient),
		groups:      make(map[string]*models.Group),
		hidden:      make(map[string]bool),
		flags:       make(map[string]map[string]*models.Flag),
	}
}

// AddUser registers a user. Intended for fixtures and tests.
func (s *MemoryStore) AddUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.UserID] = user
}

// AddGroup registers a group.
func (s *MemoryStore) AddGroup(group *models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.groups[group.Pubid] = group
}

// AddAuthClient registers an auth client.
func (s *MemoryStore) AddAuthClient(client *models.AuthClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[client.ID] = client
}

// AddAnnotation registers an annotation.
func (s *MemoryStore) AddAnnotation(annotation *models.Annotation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.annotations[annotation.ID] = annotation
}

// GetAnnotation implements biz.AnnotationStore.
func (s *MemoryStore) GetAnnotation(ctx context.Context, id string) (*models.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	annotation, ok := s.annotations[id]
	if !ok {
		return nil, biz.ErrAnnotationNotFound
	}

	return s.withRelations(annotation), nil
}

// GetAnnotations implements biz.AnnotationStore. Related groups are
// attached before returning; unknown ids are skipped.
func (s *MemoryStore) GetAnnotations(ctx context.Context, ids []string) ([]*models.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	annotations := make([]*models.Annotation, 0, len(ids))

	for _, id := range ids {
		if annotation, ok := s.annotations[id]; ok {
			annotations = append(annotations, s.withRelations(annotation))
		}
	}

	return annotations, nil
}

// withRelations returns a copy with the related group attached, so the
// stored record is never shared mutable state. Callers hold the lock.
func (s *MemoryStore) withRelations(annotation *models.Annotation) *models.Annotation {
	attached := *annotation

	if attached.Group == nil {
		attached.Group = s.groups[annotation.GroupPubid]
	}

	return &attached
}

// GetUser implements biz.UserStore.
func (s *MemoryStore) GetUser(ctx context.Context, userid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userid]
	if !ok {
		return nil, biz.ErrUserNotFound
	}

	return user, nil
}

// GetUsers implements biz.UserStore. Unknown userids are skipped.
func (s *MemoryStore) GetUsers(ctx context.Context, userids []string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(userids))

	for _, userid := range userids {
		if user, ok := s.users[userid]; ok {
			users = append(users, user)
		}
	}

	return users, nil
}

// GetAuthClient implements biz.AuthClientStore.
func (s *MemoryStore) GetAuthClient(ctx context.Context, id string) (*models.AuthClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, biz.ErrAuthClientNotFound
	}

	return client, nil
}

// HiddenIDs implements biz.ModerationStore.
func (s *MemoryStore) HiddenIDs(ctx context.Context, annotationIDs []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hidden := make([]string, 0)

	for _, id := range annotationIDs {
		if s.hidden[id] {
			hidden = append(hidden, id)
		}
	}

	return hidden, nil
}

// IsHidden implements biz.ModerationStore.
func (s *MemoryStore) IsHidden(ctx context.Context, annotationID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hidden[annotationID], nil
}

// SetHidden implements biz.ModerationStore.
func (s *MemoryStore) SetHidden(ctx context.Context, annotationID string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hidden {
		s.hidden[annotationID] = true
	} else {
		delete(s.hidden, annotationID)
	}

	return nil
}

// IsFlagged implements biz.FlagStore.
func (s *MemoryStore) IsFlagged(ctx context.Context, userid, annotationID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.flags[annotationID][userid]

	return ok, nil
}

// FlaggedIDs implements biz.FlagStore.
func (s *MemoryStore) FlaggedIDs(ctx context.Context, userid string, annotationIDs []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flagged := make([]string, 0)

	for _, id := range annotationIDs {
		if _, ok := s.flags[id][userid]; ok {
			flagged = append(flagged, id)
		}
	}

	return flagged, nil
}

// FlagCounts implements biz.FlagStore.
func (s *MemoryStore) FlagCounts(ctx context.Context, annotationIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(annotationIDs))

	for _, id := range annotationIDs {
		counts[id] = len(s.flags[id])
	}

	return counts, nil
}

// CreateFlag implements biz.FlagStore.
func (s *MemoryStore) CreateFlag(ctx context.Context, flag *models.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flags[flag.AnnotationID] == nil {
		s.flags[flag.AnnotationID] = make(map[string]*models.Flag)
	}

	s.flags[flag.AnnotationID][flag.UserID] = flag

	return nil
}

// DeleteFlag implements biz.FlagStore.
func (s *MemoryStore) DeleteFlag(ctx context.Context, userid, annotationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.flags[annotationID], userid)

	return nil
}
