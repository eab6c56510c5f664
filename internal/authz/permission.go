package authz

import (
	"context"

	"github.com/glosshub/glosshub/internal/models"
)

// Permission names an action an identity may perform on an annotation.
type Permission string

const (
	// PermissionAnnotationRead allows reading an annotation.
	PermissionAnnotationRead Permission = "annotation:read"
	// PermissionAnnotationFlag allows flagging an annotation for moderation.
	PermissionAnnotationFlag Permission = "annotation:flag"
	// PermissionAnnotationModerate allows hiding/unhiding annotations in
	// the annotation's group and seeing flag counts.
	PermissionAnnotationModerate Permission = "annotation:moderate"
)

// PermissionCheck decides whether the context identity holds a
// permission on an annotation. Implementations must deny anonymous
// contexts (no identity, or an empty one) rather than fail.
type PermissionCheck func(ctx context.Context, permission Permission, annotation *models.Annotation) (bool, error)
