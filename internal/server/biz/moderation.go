package biz

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/authz"
	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
)

type ModerationServiceParams struct {
	fx.In

	Store       ModerationStore
	Permissions *PermissionService
}

// ModerationService tracks which annotations moderators have hidden.
// It is the lookup collaborator of the visibility engine and the write
// path for the hide/unhide operations.
type ModerationService struct {
	store       ModerationStore
	permissions *PermissionService
}

func NewModerationService(params ModerationServiceParams) *ModerationService {
	return &ModerationService{
		store:       params.Store,
		permissions: params.Permissions,
	}
}

// IsHidden reports whether an annotation is hidden.
func (s *ModerationService) IsHidden(ctx context.Context, annotationID string) (bool, error) {
	return s.store.IsHidden(ctx, annotationID)
}

// AllHidden returns the subset of the given ids that are hidden, in a
// single store call.
func (s *ModerationService) AllHidden(ctx context.Context, annotationIDs []string) (map[string]struct{}, error) {
	hiddenIDs, err := s.store.HiddenIDs(ctx, lo.Uniq(annotationIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load hidden ids: %w", err)
	}

	hidden := make(map[string]struct{}, len(hiddenIDs))
	for _, id := range hiddenIDs {
		hidden[id] = struct{}{}
	}

	return hidden, nil
}

// Hide conceals an annotation's content from unprivileged viewers.
// Requires MODERATE on the annotation.
func (s *ModerationService) Hide(ctx context.Context, annotation *models.Annotation) error {
	if err := s.requireModerate(ctx, annotation); err != nil {
		return err
	}

	if err := s.store.SetHidden(ctx, annotation.ID, true); err != nil {
		return fmt.Errorf("failed to hide annotation %s: %w", annotation.ID, err)
	}

	log.Info(ctx, "annotation hidden", log.String("annotation_id", annotation.ID))

	return nil
}

// Unhide reverses Hide. Requires MODERATE on the annotation.
func (s *ModerationService) Unhide(ctx context.Context, annotation *models.Annotation) error {
	if err := s.requireModerate(ctx, annotation); err != nil {
		return err
	}

	if err := s.store.SetHidden(ctx, annotation.ID, false); err != nil {
		return fmt.Errorf("failed to unhide annotation %s: %w", annotation.ID, err)
	}

	log.Info(ctx, "annotation unhidden", log.String("annotation_id", annotation.ID))

	return nil
}

func (s *ModerationService) requireModerate(ctx context.Context, annotation *models.Annotation) error {
	allowed, err := s.permissions.HasPermission(ctx, authz.PermissionAnnotationModerate, annotation)
	if err != nil {
		return err
	}

	if !allowed {
		return ErrNotAuthorized
	}

	return nil
}
