package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glosshub/glosshub/internal/models"
)

func TestFlagService_FlagAndFlagged(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user := &models.User{UserID: "acct:vic@example.com"}
	annotation := &models.Annotation{ID: "ann-1", UserID: "acct:casey@example.com"}

	flagged, err := env.flags.Flagged(ctx, user, annotation.ID)
	require.NoError(t, err)
	assert.False(t, flagged)

	require.NoError(t, env.flags.Flag(ctx, user, annotation))

	flagged, err = env.flags.Flagged(ctx, user, annotation.ID)
	require.NoError(t, err)
	assert.True(t, flagged)

	// Flagging twice is a no-op.
	require.NoError(t, env.flags.Flag(ctx, user, annotation))

	count, err := env.flags.FlagCount(ctx, annotation.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFlagService_Flag_OwnAnnotation(t *testing.T) {
	env := newTestEnv()

	author := &models.User{UserID: "acct:casey@example.com"}
	annotation := &models.Annotation{ID: "ann-1", UserID: "acct:casey@example.com"}

	err := env.flags.Flag(context.Background(), author, annotation)
	require.ErrorIs(t, err, ErrFlagOwnAnnotation)
}

func TestFlagService_Flag_NilUser(t *testing.T) {
	env := newTestEnv()

	annotation := &models.Annotation{ID: "ann-1", UserID: "acct:casey@example.com"}

	err := env.flags.Flag(context.Background(), nil, annotation)
	require.ErrorIs(t, err, ErrNotAuthorized)

	err = env.flags.Unflag(context.Background(), nil, annotation)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestFlagService_Unflag(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user := &models.User{UserID: "acct:vic@example.com"}
	annotation := &models.Annotation{ID: "ann-1", UserID: "acct:casey@example.com"}

	require.NoError(t, env.flags.Flag(ctx, user, annotation))
	require.NoError(t, env.flags.Unflag(ctx, user, annotation))

	flagged, err := env.flags.Flagged(ctx, user, annotation.ID)
	require.NoError(t, err)
	assert.False(t, flagged)

	// Unflagging an unflagged annotation is a no-op.
	require.NoError(t, env.flags.Unflag(ctx, user, annotation))
}

func TestFlagService_AllFlagged(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user := &models.User{UserID: "acct:vic@example.com"}

	env.flagStore.flags["ann-1"] = map[string]struct{}{"acct:vic@example.com": {}}
	env.flagStore.flags["ann-2"] = map[string]struct{}{"acct:other@example.com": {}}

	flagged, err := env.flags.AllFlagged(ctx, user, []string{"ann-1", "ann-2", "ann-3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]struct{}{"ann-1": {}}, flagged)
	assert.Equal(t, 1, env.flagStore.flaggedIDsCalls)
}

func TestFlagService_AllFlagged_NilUser(t *testing.T) {
	env := newTestEnv()

	flagged, err := env.flags.AllFlagged(context.Background(), nil, []string{"ann-1"})
	require.NoError(t, err)

	assert.Empty(t, flagged)
	assert.Equal(t, 0, env.flagStore.flaggedIDsCalls)
}

func TestFlagService_FlagCounts_ZeroFill(t *testing.T) {
	env := newTestEnv()

	env.flagStore.flags["ann-1"] = map[string]struct{}{
		"acct:a@example.com": {},
		"acct:b@example.com": {},
	}

	counts, err := env.flags.FlagCounts(context.Background(), []string{"ann-1", "ann-2"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"ann-1": 2, "ann-2": 0}, counts)
}
