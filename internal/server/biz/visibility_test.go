package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glosshub/glosshub/internal/authz"
	"github.com/glosshub/glosshub/internal/models"
)

// fakeModeration is a counting ModerationLookup for formatter tests.
type fakeModeration struct {
	hidden map[string]struct{}

	isHiddenCalls  int
	allHiddenCalls int

	err error
}

func (f *fakeModeration) IsHidden(ctx context.Context, annotationID string) (bool, error) {
	f.isHiddenCalls++

	if f.err != nil {
		return false, f.err
	}

	_, ok := f.hidden[annotationID]

	return ok, nil
}

func (f *fakeModeration) AllHidden(ctx context.Context, annotationIDs []string) (map[string]struct{}, error) {
	f.allHiddenCalls++

	if f.err != nil {
		return nil, f.err
	}

	result := make(map[string]struct{})

	for _, id := range annotationIDs {
		if _, ok := f.hidden[id]; ok {
			result[id] = struct{}{}
		}
	}

	return result, nil
}

func allowModerate(granted bool) authz.PermissionCheck {
	return func(ctx context.Context, permission authz.Permission, annotation *models.Annotation) (bool, error) {
		if permission == authz.PermissionAnnotationModerate {
			return granted, nil
		}

		return false, nil
	}
}

func hiddenAnnotation() *models.Annotation {
	return &models.Annotation{
		ID:         "ann-1",
		UserID:     "acct:casey@example.com",
		GroupPubid: "abc123",
		Text:       "offensive",
		Tags:       []string{"nsfw"},
	}
}

func TestHiddenFormatter_Format_NotHidden(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{}}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), nil)

	visibility, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	assert.False(t, visibility.Hidden)
	assert.Nil(t, visibility.Text)
	assert.Nil(t, visibility.Tags)
}

func TestHiddenFormatter_Format_HiddenRedacted(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{"ann-1": {}}}
	viewer := &models.User{UserID: "acct:vic@example.com"}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), viewer)

	visibility, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	assert.True(t, visibility.Hidden)
	require.NotNil(t, visibility.Text)
	assert.Equal(t, "", *visibility.Text)
	require.NotNil(t, visibility.Tags)
	assert.Empty(t, visibility.Tags)
}

func TestHiddenFormatter_Format_AnonymousViewer(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{"ann-1": {}}}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), nil)

	visibility, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	assert.True(t, visibility.Hidden)
	require.NotNil(t, visibility.Text)
	assert.Equal(t, "", *visibility.Text)
}

func TestHiddenFormatter_Format_AuthorNeverSeesHidden(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{"ann-1": {}}}
	author := &models.User{UserID: "acct:casey@example.com"}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), author)

	visibility, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	assert.False(t, visibility.Hidden)
	assert.Nil(t, visibility.Text)
	assert.Nil(t, visibility.Tags)

	// The author branch decides without consulting moderation at all.
	assert.Equal(t, 0, moderation.isHiddenCalls)
}

func TestHiddenFormatter_Format_ModeratorSeesTrueState(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{"ann-1": {}}}
	viewer := &models.User{UserID: "acct:mod@example.com"}
	formatter := NewHiddenFormatter(moderation, allowModerate(true), viewer)

	visibility, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	// Hidden flag is real but content is never redacted for moderators.
	assert.True(t, visibility.Hidden)
	assert.Nil(t, visibility.Text)
	assert.Nil(t, visibility.Tags)
}

func TestHiddenFormatter_Format_ModeratorAuthor(t *testing.T) {
	// A moderator who authored the annotation still sees the real
	// hidden flag, not the author's unconditional false.
	moderation := &fakeModeration{hidden: map[string]struct{}{"ann-1": {}}}
	author := &models.User{UserID: "acct:casey@example.com"}
	formatter := NewHiddenFormatter(moderation, allowModerate(true), author)

	visibility, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	assert.True(t, visibility.Hidden)
	assert.Nil(t, visibility.Text)
}

func TestHiddenFormatter_Format_CachesLookup(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{}}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), nil)

	_, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)
	_, err = formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	assert.Equal(t, 1, moderation.isHiddenCalls)
}

func TestHiddenFormatter_Format_PermissionError(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{}}
	checkErr := errors.New("permission backend down")
	check := func(ctx context.Context, permission authz.Permission, annotation *models.Annotation) (bool, error) {
		return false, checkErr
	}

	formatter := NewHiddenFormatter(moderation, check, nil)

	_, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.ErrorIs(t, err, checkErr)
}

func TestHiddenFormatter_Format_ModerationError(t *testing.T) {
	lookupErr := errors.New("moderation backend down")
	moderation := &fakeModeration{err: lookupErr}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), nil)

	_, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.ErrorIs(t, err, lookupErr)
}

func TestHiddenFormatter_Preload(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{"ann-1": {}, "ann-3": {}}}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), nil)

	hidden, err := formatter.Preload(context.Background(), []string{"ann-1", "ann-2", "ann-3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		"ann-1": true,
		"ann-2": false,
		"ann-3": true,
	}, hidden)

	// Formatting the preloaded batch performs no further lookups.
	for _, id := range []string{"ann-1", "ann-2", "ann-3"} {
		annotation := hiddenAnnotation()
		annotation.ID = id

		_, err := formatter.Format(context.Background(), annotation)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, moderation.allHiddenCalls)
	assert.Equal(t, 0, moderation.isHiddenCalls)
}

func TestHiddenFormatter_Preload_MatchesUnbatched(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{"ann-1": {}}}
	annotations := []*models.Annotation{hiddenAnnotation(), {ID: "ann-2", UserID: "acct:casey@example.com"}}

	preloaded := NewHiddenFormatter(moderation, allowModerate(false), nil)
	_, err := preloaded.Preload(context.Background(), []string{"ann-1", "ann-2"})
	require.NoError(t, err)

	unbatched := NewHiddenFormatter(moderation, allowModerate(false), nil)

	for _, annotation := range annotations {
		batched, err := preloaded.Format(context.Background(), annotation)
		require.NoError(t, err)

		direct, err := unbatched.Format(context.Background(), annotation)
		require.NoError(t, err)

		assert.Equal(t, direct, batched, "annotation %s", annotation.ID)
	}
}

func TestHiddenFormatter_Preload_FirstWriteWins(t *testing.T) {
	moderation := &fakeModeration{hidden: map[string]struct{}{}}
	formatter := NewHiddenFormatter(moderation, allowModerate(false), nil)

	_, err := formatter.Preload(context.Background(), []string{"ann-1"})
	require.NoError(t, err)

	// Hidden state changing mid-pass must not change this pass's answers.
	moderation.hidden = map[string]struct{}{"ann-1": {}}

	_, err = formatter.Preload(context.Background(), []string{"ann-1"})
	require.NoError(t, err)

	visibility, err := formatter.Format(context.Background(), hiddenAnnotation())
	require.NoError(t, err)

	assert.False(t, visibility.Hidden)
}

func TestVisibility_Merge_Redacted(t *testing.T) {
	empty := ""
	visibility := Visibility{Hidden: true, Text: &empty, Tags: []string{}}

	model := map[string]any{"text": "offensive", "tags": []string{"nsfw"}}
	visibility.Merge(model)

	assert.Equal(t, true, model["hidden"])
	assert.Equal(t, "", model["text"])
	assert.Equal(t, []string{}, model["tags"])
}

func TestVisibility_Merge_ContentUntouched(t *testing.T) {
	visibility := Visibility{Hidden: true}

	model := map[string]any{"text": "fine", "tags": []string{"a"}}
	visibility.Merge(model)

	assert.Equal(t, true, model["hidden"])
	assert.Equal(t, "fine", model["text"])
	assert.Equal(t, []string{"a"}, model["tags"])
}
