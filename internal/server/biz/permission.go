package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/authz"
	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
)

type PermissionServiceParams struct {
	fx.In
}

// PermissionService decides whether the context identity holds a
// permission on an annotation. Anonymous contexts are always denied,
// never an error.
type PermissionService struct{}

func NewPermissionService(params PermissionServiceParams) *PermissionService {
	return &PermissionService{}
}

// HasPermission implements the authz.PermissionCheck contract.
//
// MODERATE is granted to the creator of the annotation's group. READ is
// granted for shared annotations (any viewer, anonymous included), to
// the author, and to members of the annotation's group. FLAG is granted
// to any authenticated user except the author.
func (s *PermissionService) HasPermission(ctx context.Context, permission authz.Permission, annotation *models.Annotation) (bool, error) {
	identity, ok := authz.GetIdentity(ctx)
	if !ok || identity.Empty() {
		// Shared annotations are world readable; anonymous viewers hold
		// nothing else.
		return permission == authz.PermissionAnnotationRead && annotation.Shared, nil
	}

	principals := authz.PrincipalsForIdentity(identity)

	var granted bool

	switch permission {
	case authz.PermissionAnnotationModerate:
		granted = s.isGroupCreator(identity, annotation)
	case authz.PermissionAnnotationRead:
		granted = annotation.Shared ||
			s.isAuthor(identity, annotation) ||
			authz.HasPrincipal(principals, authz.GroupPrincipal(annotation.GroupPubid))
	case authz.PermissionAnnotationFlag:
		granted = identity.User != nil && !s.isAuthor(identity, annotation)
	default:
		granted = false
	}

	if log.DebugEnabled(ctx) {
		log.Debug(ctx, "permission decision",
			log.String("identity", identity.String()),
			log.String("permission", string(permission)),
			log.String("annotation_id", annotation.ID),
			log.Bool("granted", granted),
		)
	}

	return granted, nil
}

// Check returns the service as an authz.PermissionCheck predicate.
func (s *PermissionService) Check() authz.PermissionCheck {
	return s.HasPermission
}

func (s *PermissionService) isAuthor(identity authz.Identity, annotation *models.Annotation) bool {
	return identity.User != nil && identity.User.UserID == annotation.UserID
}

// isGroupCreator relies on the annotation's group being attached by the
// eager-load pass; an annotation without its group denies MODERATE.
func (s *PermissionService) isGroupCreator(identity authz.Identity, annotation *models.Annotation) bool {
	if identity.User == nil || annotation.Group == nil {
		return false
	}

	return annotation.Group.CreatorUserID == identity.User.UserID
}
