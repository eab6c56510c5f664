package biz

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/authz"
	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
)

type AnnotationJSONServiceParams struct {
	fx.In

	Annotations *AnnotationService
	Moderation  *ModerationService
	Flags       *FlagService
	Users       *UserService
	Permissions *PermissionService
}

// AnnotationJSONService renders annotations into their JSON
// representation for a specific viewer, folding in the viewer-dependent
// fields: hidden state (with redaction), the viewer's flags, and (for
// moderators) the flag count.
//
// The bulk path primes every per-viewer concern once for the whole
// batch, so formatting N annotations costs a constant number of
// collaborator calls.
type AnnotationJSONService struct {
	annotations *AnnotationService
	moderation  *ModerationService
	flags       *FlagService
	users       *UserService
	permissions *PermissionService
}

func NewAnnotationJSONService(params AnnotationJSONServiceParams) *AnnotationJSONService {
	return &AnnotationJSONService{
		annotations: params.Annotations,
		moderation:  params.Moderation,
		flags:       params.Flags,
		users:       params.Users,
		permissions: params.Permissions,
	}
}

// Present renders one annotation for the given viewer. user may be nil
// for anonymous viewers.
func (s *AnnotationJSONService) Present(ctx context.Context, annotation *models.Annotation, user *models.User) (map[string]any, error) {
	// A fresh formatter per call: its cache is scoped to this pass.
	formatter := NewHiddenFormatter(s.moderation, s.permissions.Check(), user)

	flagged := func(ctx context.Context, annotationID string) (bool, error) {
		return s.flags.Flagged(ctx, user, annotationID)
	}

	return s.present(ctx, annotation, user, formatter, flagged, s.flags.FlagCount, s.users.TryFetch)
}

// PresentAll renders the annotations for the given ids, in id order,
// for the given viewer. Hidden state, flag state, and author users are
// each loaded with one batched call before any annotation is
// formatted; per-annotation formatting never goes back to a store.
func (s *AnnotationJSONService) PresentAll(ctx context.Context, annotationIDs []string, user *models.User) ([]map[string]any, error) {
	annotations, err := s.annotations.FetchOrdered(ctx, annotationIDs)
	if err != nil {
		return nil, err
	}

	formatter := NewHiddenFormatter(s.moderation, s.permissions.Check(), user)
	if _, err := formatter.Preload(ctx, annotationIDs); err != nil {
		return nil, err
	}

	flaggedSet, err := s.flags.AllFlagged(ctx, user, annotationIDs)
	if err != nil {
		return nil, err
	}

	flagCounts, err := s.flags.FlagCounts(ctx, annotationIDs)
	if err != nil {
		return nil, err
	}

	// One batched author load for the whole pass; formatting reads the
	// resulting map, never the store.
	authorIDs := lo.Map(annotations, func(annotation *models.Annotation, _ int) string {
		return annotation.UserID
	})
	authors, err := s.users.FetchAll(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	flagged := func(_ context.Context, annotationID string) (bool, error) {
		_, ok := flaggedSet[annotationID]
		return ok, nil
	}

	flagCount := func(_ context.Context, annotationID string) (int, error) {
		return flagCounts[annotationID], nil
	}

	author := func(_ context.Context, userid string) (*models.User, error) {
		return authors[userid], nil
	}

	rows := make([]map[string]any, 0, len(annotations))

	for _, annotation := range annotations {
		model, err := s.present(ctx, annotation, user, formatter, flagged, flagCount, author)
		if err != nil {
			return nil, err
		}

		rows = append(rows, model)
	}

	log.Debug(ctx, "presented annotation batch",
		log.Int("requested", len(annotationIDs)),
		log.Int("presented", len(rows)),
	)

	return rows, nil
}

func (s *AnnotationJSONService) present(
	ctx context.Context,
	annotation *models.Annotation,
	user *models.User,
	formatter *HiddenFormatter,
	flagged func(ctx context.Context, annotationID string) (bool, error),
	flagCount func(ctx context.Context, annotationID string) (int, error),
	author func(ctx context.Context, userid string) (*models.User, error),
) (map[string]any, error) {
	model := s.presentBase(ctx, annotation, author)

	// The flagged value depends on whether this particular viewer has
	// flagged the annotation.
	isFlagged, err := flagged(ctx, annotation.ID)
	if err != nil {
		return nil, err
	}

	model["flagged"] = isFlagged

	// Only moderators see the full flag count.
	moderator, err := s.permissions.HasPermission(ctx, authz.PermissionAnnotationModerate, annotation)
	if err != nil {
		return nil, err
	}

	if moderator {
		count, err := flagCount(ctx, annotation.ID)
		if err != nil {
			return nil, err
		}

		model["moderation"] = map[string]any{"flagCount": count}
	}

	visibility, err := formatter.Format(ctx, annotation)
	if err != nil {
		return nil, err
	}

	visibility.Merge(model)

	return model, nil
}

func (s *AnnotationJSONService) presentBase(
	ctx context.Context,
	annotation *models.Annotation,
	author func(ctx context.Context, userid string) (*models.User, error),
) map[string]any {
	model := map[string]any{
		"id":      annotation.ID,
		"created": annotation.Created.Format(time.RFC3339),
		"updated": annotation.Updated.Format(time.RFC3339),
		"user":    annotation.UserID,
		"uri":     annotation.TargetURI,
		"text":    annotation.Text,
		"tags":    nonNilTags(annotation.Tags),
		"group":   annotation.GroupPubid,
		"shared":  annotation.Shared,
	}

	if annotation.IsReply() {
		model["references"] = annotation.References
	}

	if annotation.Document != nil && annotation.Document.Title != "" {
		model["document"] = map[string]any{"title": annotation.Document.Title}
	}

	user, err := author(ctx, annotation.UserID)
	if err != nil {
		log.Warn(ctx, "failed to fetch annotation author",
			log.String("userid", annotation.UserID),
			log.Cause(err),
		)
	} else if user != nil && user.DisplayName != "" {
		model["user_info"] = map[string]any{"display_name": user.DisplayName}
	}

	return model
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	return tags
}
