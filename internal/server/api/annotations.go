package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/authz"
	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
	"github.com/glosshub/glosshub/internal/server/biz"
	"github.com/glosshub/glosshub/internal/server/middleware"
)

type AnnotationHandlersParams struct {
	fx.In

	Annotations *biz.AnnotationService
	JSON        *biz.AnnotationJSONService
	Moderation  *biz.ModerationService
	Flags       *biz.FlagService
	Permissions *biz.PermissionService
}

// AnnotationHandlers serves the annotation read and moderation
// endpoints.
type AnnotationHandlers struct {
	annotations *biz.AnnotationService
	json        *biz.AnnotationJSONService
	moderation  *biz.ModerationService
	flags       *biz.FlagService
	permissions *biz.PermissionService
}

func NewAnnotationHandlers(params AnnotationHandlersParams) *AnnotationHandlers {
	return &AnnotationHandlers{
		annotations: params.Annotations,
		json:        params.JSON,
		moderation:  params.Moderation,
		flags:       params.Flags,
		permissions: params.Permissions,
	}
}

// Get serves GET /api/annotations/:id.
func (h *AnnotationHandlers) Get(c *gin.Context) {
	annotation, ok := h.readableAnnotation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	model, err := h.json.Present(ctx, annotation, authz.CurrentUser(ctx))
	if err != nil {
		log.Error(ctx, "failed to present annotation", log.String("annotation_id", annotation.ID), log.Cause(err))
		middleware.AbortWithError(c, http.StatusInternalServerError, errors.New("failed to present annotation"))

		return
	}

	c.JSON(http.StatusOK, model)
}

// List serves GET /api/annotations?ids=a,b,c — the batched
// presentation path.
func (h *AnnotationHandlers) List(c *gin.Context) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.New("ids query parameter is required"))
		return
	}

	ids := strings.Split(idsParam, ",")

	ctx := c.Request.Context()

	rows, err := h.json.PresentAll(ctx, ids, authz.CurrentUser(ctx))
	if err != nil {
		log.Error(ctx, "failed to present annotations", log.Cause(err))
		middleware.AbortWithError(c, http.StatusInternalServerError, errors.New("failed to present annotations"))

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(rows),
		"rows":  rows,
	})
}

// Hide serves PUT /api/annotations/:id/hide.
func (h *AnnotationHandlers) Hide(c *gin.Context) {
	h.moderate(c, h.moderation.Hide)
}

// Unhide serves DELETE /api/annotations/:id/hide.
func (h *AnnotationHandlers) Unhide(c *gin.Context) {
	h.moderate(c, h.moderation.Unhide)
}

// Flag serves PUT /api/annotations/:id/flag.
func (h *AnnotationHandlers) Flag(c *gin.Context) {
	annotation, ok := h.readableAnnotation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	err := h.flags.Flag(ctx, authz.CurrentUser(ctx), annotation)
	if err != nil {
		switch {
		case errors.Is(err, biz.ErrFlagOwnAnnotation):
			middleware.AbortWithError(c, http.StatusUnprocessableEntity, err)
		case errors.Is(err, biz.ErrNotAuthorized):
			middleware.AbortWithError(c, http.StatusNotFound, biz.ErrAnnotationNotFound)
		default:
			log.Error(ctx, "failed to flag annotation", log.String("annotation_id", annotation.ID), log.Cause(err))
			middleware.AbortWithError(c, http.StatusInternalServerError, errors.New("failed to flag annotation"))
		}

		return
	}

	c.Status(http.StatusNoContent)
}

// Unflag serves DELETE /api/annotations/:id/flag.
func (h *AnnotationHandlers) Unflag(c *gin.Context) {
	annotation, ok := h.readableAnnotation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if err := h.flags.Unflag(ctx, authz.CurrentUser(ctx), annotation); err != nil {
		if errors.Is(err, biz.ErrNotAuthorized) {
			middleware.AbortWithError(c, http.StatusNotFound, biz.ErrAnnotationNotFound)
		} else {
			log.Error(ctx, "failed to unflag annotation", log.String("annotation_id", annotation.ID), log.Cause(err))
			middleware.AbortWithError(c, http.StatusInternalServerError, errors.New("failed to unflag annotation"))
		}

		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AnnotationHandlers) moderate(c *gin.Context, op func(ctx context.Context, annotation *models.Annotation) error) {
	// Gated on MODERATE, not READ: a group creator may moderate
	// annotations they could not otherwise read.
	annotation, ok := h.annotationWithPermission(c, authz.PermissionAnnotationModerate)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if err := op(ctx, annotation); err != nil {
		switch {
		case errors.Is(err, biz.ErrNotAuthorized):
			// Don't reveal whether the annotation exists.
			middleware.AbortWithError(c, http.StatusNotFound, biz.ErrAnnotationNotFound)
		default:
			log.Error(ctx, "moderation operation failed", log.String("annotation_id", annotation.ID), log.Cause(err))
			middleware.AbortWithError(c, http.StatusInternalServerError, errors.New("moderation operation failed"))
		}

		return
	}

	c.Status(http.StatusNoContent)
}

// readableAnnotation loads the :id annotation and enforces READ,
// answering 404 for both missing and forbidden annotations.
func (h *AnnotationHandlers) readableAnnotation(c *gin.Context) (*models.Annotation, bool) {
	return h.annotationWithPermission(c, authz.PermissionAnnotationRead)
}

// annotationWithPermission loads the :id annotation and enforces the
// given permission, answering 404 for both missing and forbidden
// annotations.
func (h *AnnotationHandlers) annotationWithPermission(c *gin.Context, permission authz.Permission) (*models.Annotation, bool) {
	ctx := c.Request.Context()

	annotation, err := h.annotations.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, biz.ErrAnnotationNotFound) {
			middleware.AbortWithError(c, http.StatusNotFound, biz.ErrAnnotationNotFound)
		} else {
			log.Error(ctx, "failed to load annotation", log.Cause(err))
			middleware.AbortWithError(c, http.StatusInternalServerError, errors.New("failed to load annotation"))
		}

		return nil, false
	}

	allowed, err := h.permissions.HasPermission(ctx, permission, annotation)
	if err != nil {
		log.Error(ctx, "permission check failed", log.Cause(err))
		middleware.AbortWithError(c, http.StatusInternalServerError, errors.New("permission check failed"))

		return nil, false
	}

	if !allowed {
		middleware.AbortWithError(c, http.StatusNotFound, biz.ErrAnnotationNotFound)
		return nil, false
	}

	return annotation, true
}
