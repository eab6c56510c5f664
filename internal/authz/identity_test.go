package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glosshub/glosshub/internal/models"
)

func TestIdentity_String(t *testing.T) {
	user := testUser()
	client := testAuthClient()

	tests := []struct {
		name     string
		identity Identity
		want     string
	}{
		{"anonymous", Identity{}, "anonymous"},
		{"user", UserIdentity(user), "user:acct:bob@example.com"},
		{"client", AuthClientIdentity(client), "client:c1@example.com"},
		{"forwarded", ForwardedUserIdentity(user, client), "forwarded:acct:bob@example.com@client:c1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.identity.String(); got != tt.want {
				t.Errorf("Identity.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithIdentity(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		ctx, err := WithIdentity(context.Background(), UserIdentity(testUser()))
		require.NoError(t, err)

		identity, ok := GetIdentity(ctx)
		require.True(t, ok)
		require.Equal(t, "acct:bob@example.com", identity.User.UserID)
	})

	t.Run("idempotent for the same identity", func(t *testing.T) {
		ctx, err := WithIdentity(context.Background(), UserIdentity(testUser()))
		require.NoError(t, err)

		_, err = WithIdentity(ctx, UserIdentity(testUser()))
		require.NoError(t, err)
	})

	t.Run("conflicting identity is rejected", func(t *testing.T) {
		ctx, err := WithIdentity(context.Background(), UserIdentity(testUser()))
		require.NoError(t, err)

		other := testUser()
		other.UserID = "acct:mallory@example.com"

		_, err = WithIdentity(ctx, UserIdentity(other))
		require.Error(t, err)
	})

	t.Run("user vs forwarded identity is a conflict", func(t *testing.T) {
		ctx, err := WithIdentity(context.Background(), UserIdentity(testUser()))
		require.NoError(t, err)

		_, err = WithIdentity(ctx, ForwardedUserIdentity(testUser(), testAuthClient()))
		require.Error(t, err)
	})
}

func TestGetIdentity_Empty(t *testing.T) {
	_, ok := GetIdentity(context.Background())
	require.False(t, ok)
}

func TestMustGetIdentity(t *testing.T) {
	require.Panics(t, func() {
		MustGetIdentity(context.Background())
	})
}

func TestCurrentUser(t *testing.T) {
	require.Nil(t, CurrentUser(context.Background()))

	ctx, err := WithIdentity(context.Background(), AuthClientIdentity(testAuthClient()))
	require.NoError(t, err)
	require.Nil(t, CurrentUser(ctx))

	ctx, err = WithIdentity(context.Background(), UserIdentity(&models.User{UserID: "acct:eve@example.com"}))
	require.NoError(t, err)
	require.NotNil(t, CurrentUser(ctx))
	require.Equal(t, "acct:eve@example.com", CurrentUser(ctx).UserID)
}
