package biz

import (
	"context"

	"github.com/glosshub/glosshub/internal/models"
)

// Store interfaces abstract the persistence layer. Implementations
// return ErrAnnotationNotFound / ErrUserNotFound for missing single
// lookups and silently skip missing ids on batched ones.

// AnnotationStore loads annotations and their related data.
//
// GetAnnotations must attach the related Group and Document of every
// returned annotation in the same call, so that presenting a batch
// never goes back to the store per row.
type AnnotationStore interface {
	GetAnnotation(ctx context.Context, id string) (*models.Annotation, error)
	GetAnnotations(ctx context.Context, ids []string) ([]*models.Annotation, error)
}

// UserStore loads users by their full userid.
type UserStore interface {
	GetUser(ctx context.Context, userid string) (*models.User, error)
	GetUsers(ctx context.Context, userids []string) ([]*models.User, error)
}

// AuthClientStore loads registered auth clients.
type AuthClientStore interface {
	GetAuthClient(ctx context.Context, id string) (*models.AuthClient, error)
}

// ModerationStore persists the hidden flag set by moderators.
type ModerationStore interface {
	// HiddenIDs returns the subset of ids that are hidden.
	HiddenIDs(ctx context.Context, annotationIDs []string) ([]string, error)
	IsHidden(ctx context.Context, annotationID string) (bool, error)
	SetHidden(ctx context.Context, annotationID string, hidden bool) error
}

// FlagStore persists user flags on annotations.
type FlagStore interface {
	IsFlagged(ctx context.Context, userid, annotationID string) (bool, error)
	// FlaggedIDs returns the subset of ids the user has flagged.
	FlaggedIDs(ctx context.Context, userid string, annotationIDs []string) ([]string, error)
	FlagCounts(ctx context.Context, annotationIDs []string) (map[string]int, error)
	CreateFlag(ctx context.Context, flag *models.Flag) error
	DeleteFlag(ctx context.Context, userid, annotationID string) error
}
