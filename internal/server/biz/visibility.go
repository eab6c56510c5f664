package biz

import (
	"context"

	"github.com/glosshub/glosshub/internal/authz"
	"github.com/glosshub/glosshub/internal/models"
)

// ModerationLookup is the collaborator the visibility engine consults
// for hidden state. Implementations must return consistent answers for
// the same id within a single presentation pass.
type ModerationLookup interface {
	IsHidden(ctx context.Context, annotationID string) (bool, error)
	AllHidden(ctx context.Context, annotationIDs []string) (map[string]struct{}, error)
}

// Visibility is the per-viewer redaction decision for one annotation.
//
// Text and Tags are set (to empty values) only when the content must be
// redacted; otherwise both are nil and the annotation's own content
// stands.
type Visibility struct {
	Hidden bool
	Text   *string
	Tags   []string
}

// Merge folds the decision into a presented annotation model,
// overwriting content fields when redacted.
func (v Visibility) Merge(model map[string]any) {
	model["hidden"] = v.Hidden

	if v.Text != nil {
		model["text"] = *v.Text
	}

	if v.Tags != nil {
		model["tags"] = v.Tags
	}
}

// HiddenFormatter decides, per annotation, whether a viewer sees
// moderator-hidden content.
//
// Any viewer with permission to moderate an annotation always sees the
// true hidden state and the full content. Authors are never shown their
// own annotations as hidden. Everyone else gets hidden annotations with
// the content redacted.
//
// A formatter is scoped to one presentation pass: it owns a write-once
// cache of hidden flags keyed by annotation id and must not be reused
// across requests.
type HiddenFormatter struct {
	moderation    ModerationLookup
	hasPermission authz.PermissionCheck
	user          *models.User

	// cache of hidden flags for this pass. Only the annotation id and a
	// boolean are stored, so entries never go stale mid-pass.
	cache map[string]bool
}

// NewHiddenFormatter builds a formatter for one presentation pass.
// user is the viewer and may be nil for anonymous views.
func NewHiddenFormatter(moderation ModerationLookup, hasPermission authz.PermissionCheck, user *models.User) *HiddenFormatter {
	return &HiddenFormatter{
		moderation:    moderation,
		hasPermission: hasPermission,
		user:          user,
		cache:         make(map[string]bool),
	}
}

// Preload primes the cache for a batch of annotation ids with a single
// moderation lookup and returns the hidden flag per id. Formatting the
// batch afterwards performs no further moderation calls.
//
// Preload is an optimization, never a precondition: Format falls back
// to cached on-demand lookups for ids that were not preloaded.
func (f *HiddenFormatter) Preload(ctx context.Context, annotationIDs []string) (map[string]bool, error) {
	hiddenIDs, err := f.moderation.AllHidden(ctx, annotationIDs)
	if err != nil {
		return nil, err
	}

	hidden := make(map[string]bool, len(annotationIDs))

	for _, id := range annotationIDs {
		_, isHidden := hiddenIDs[id]
		hidden[id] = isHidden

		if _, ok := f.cache[id]; !ok {
			f.cache[id] = isHidden
		}
	}

	return hidden, nil
}

// Format returns the visibility decision for one annotation.
//
// The precedence is fixed: moderator, then author, then hidden state.
// A moderator who authored the annotation is treated as a moderator and
// sees the real hidden flag.
func (f *HiddenFormatter) Format(ctx context.Context, annotation *models.Annotation) (Visibility, error) {
	moderator, err := f.hasPermission(ctx, authz.PermissionAnnotationModerate, annotation)
	if err != nil {
		return Visibility{}, err
	}

	if moderator {
		hidden, err := f.isHidden(ctx, annotation.ID)
		if err != nil {
			return Visibility{}, err
		}

		return Visibility{Hidden: hidden}, nil
	}

	if f.user != nil && f.user.UserID == annotation.UserID {
		return Visibility{Hidden: false}, nil
	}

	hidden, err := f.isHidden(ctx, annotation.ID)
	if err != nil {
		return Visibility{}, err
	}

	if hidden {
		empty := ""
		return Visibility{Hidden: true, Text: &empty, Tags: []string{}}, nil
	}

	return Visibility{Hidden: false}, nil
}

// isHidden returns the cached hidden flag for the id, looking it up on
// first access. The first write for an id wins for the rest of the pass.
func (f *HiddenFormatter) isHidden(ctx context.Context, annotationID string) (bool, error) {
	if hidden, ok := f.cache[annotationID]; ok {
		return hidden, nil
	}

	hidden, err := f.moderation.IsHidden(ctx, annotationID)
	if err != nil {
		return false, err
	}

	f.cache[annotationID] = hidden

	return hidden, nil
}
