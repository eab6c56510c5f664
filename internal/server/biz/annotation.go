package biz

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/models"
)

type AnnotationServiceParams struct {
	fx.In

	Store AnnotationStore
}

// AnnotationService loads annotations for presentation.
type AnnotationService struct {
	store AnnotationStore
}

func NewAnnotationService(params AnnotationServiceParams) *AnnotationService {
	return &AnnotationService{store: params.Store}
}

// Get returns a single annotation with related data attached.
func (s *AnnotationService) Get(ctx context.Context, id string) (*models.Annotation, error) {
	return s.store.GetAnnotation(ctx, id)
}

// FetchOrdered returns the annotations for the given ids in the order
// the ids were given, skipping unknown ids. All related group and
// document data is attached in the same store call, so iterating the
// result triggers no further loads.
func (s *AnnotationService) FetchOrdered(ctx context.Context, ids []string) ([]*models.Annotation, error) {
	annotations, err := s.store.GetAnnotations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch annotations: %w", err)
	}

	byID := make(map[string]*models.Annotation, len(annotations))
	for _, annotation := range annotations {
		byID[annotation.ID] = annotation
	}

	ordered := make([]*models.Annotation, 0, len(annotations))

	for _, id := range ids {
		if annotation, ok := byID[id]; ok {
			ordered = append(ordered, annotation)
			delete(byID, id) // a duplicated id is returned once
		}
	}

	return ordered, nil
}
