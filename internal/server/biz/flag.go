package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
)

type FlagServiceParams struct {
	fx.In

	Store FlagStore
}

// FlagService tracks user reports ("flags") on annotations. The
// batched lookups back the bulk presentation path.
type FlagService struct {
	store FlagStore
}

func NewFlagService(params FlagServiceParams) *FlagService {
	return &FlagService{store: params.Store}
}

// Flagged reports whether the user has flagged the annotation.
// A nil user never has flags.
func (s *FlagService) Flagged(ctx context.Context, user *models.User, annotationID string) (bool, error) {
	if user == nil {
		return false, nil
	}

	return s.store.IsFlagged(ctx, user.UserID, annotationID)
}

// AllFlagged returns the set of the given ids the user has flagged, in
// a single store call. A nil user yields an empty set.
func (s *FlagService) AllFlagged(ctx context.Context, user *models.User, annotationIDs []string) (map[string]struct{}, error) {
	flagged := make(map[string]struct{})

	if user == nil {
		return flagged, nil
	}

	flaggedIDs, err := s.store.FlaggedIDs(ctx, user.UserID, lo.Uniq(annotationIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load flagged ids: %w", err)
	}

	for _, id := range flaggedIDs {
		flagged[id] = struct{}{}
	}

	return flagged, nil
}

// FlagCount returns the number of flags on an annotation.
func (s *FlagService) FlagCount(ctx context.Context, annotationID string) (int, error) {
	counts, err := s.store.FlagCounts(ctx, []string{annotationID})
	if err != nil {
		return 0, fmt.Errorf("failed to load flag count: %w", err)
	}

	return counts[annotationID], nil
}

// FlagCounts returns the flag count per annotation id in one store
// call. Ids with no flags map to zero.
func (s *FlagService) FlagCounts(ctx context.Context, annotationIDs []string) (map[string]int, error) {
	annotationIDs = lo.Uniq(annotationIDs)

	counts, err := s.store.FlagCounts(ctx, annotationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load flag counts: %w", err)
	}

	for _, id := range annotationIDs {
		if _, ok := counts[id]; !ok {
			counts[id] = 0
		}
	}

	return counts, nil
}

// Flag records that the user reported the annotation. Flagging is
// idempotent; flagging your own annotation is rejected.
func (s *FlagService) Flag(ctx context.Context, user *models.User, annotation *models.Annotation) error {
	if user == nil {
		return ErrNotAuthorized
	}

	if user.UserID == annotation.UserID {
		return ErrFlagOwnAnnotation
	}

	exists, err := s.store.IsFlagged(ctx, user.UserID, annotation.ID)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	flag := &models.Flag{
		AnnotationID: annotation.ID,
		UserID:       user.UserID,
		Created:      time.Now(),
	}

	if err := s.store.CreateFlag(ctx, flag); err != nil {
		return fmt.Errorf("failed to flag annotation %s: %w", annotation.ID, err)
	}

	log.Debug(ctx, "annotation flagged",
		log.String("annotation_id", annotation.ID),
		log.String("userid", user.UserID),
	)

	return nil
}

// Unflag removes the user's flag from the annotation, if any.
func (s *FlagService) Unflag(ctx context.Context, user *models.User, annotation *models.Annotation) error {
	if user == nil {
		return ErrNotAuthorized
	}

	if err := s.store.DeleteFlag(ctx, user.UserID, annotation.ID); err != nil {
		return fmt.Errorf("failed to unflag annotation %s: %w", annotation.ID, err)
	}

	return nil
}
