package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glosshub/glosshub/internal/models"
)

func testUser() *models.User {
	return &models.User{
		UserID:    "acct:bob@example.com",
		Username:  "bob",
		Authority: "example.com",
	}
}

func testAuthClient() *models.AuthClient {
	return &models.AuthClient{
		ID:        "c1",
		Authority: "example.com",
		GrantType: models.GrantTypeClientCredentials,
	}
}

func TestPrincipalsForIdentity_Empty(t *testing.T) {
	require.Nil(t, PrincipalsForIdentity(Identity{}))
}

func TestPrincipalsForIdentity_User(t *testing.T) {
	t.Run("plain user", func(t *testing.T) {
		user := testUser()
		user.Groups = []models.Group{{Pubid: "g1"}}

		principals := PrincipalsForUser(user)
		require.ElementsMatch(t, []Principal{
			PrincipalUser,
			GroupPrincipal("g1"),
			AuthorityPrincipal("example.com"),
		}, principals)
	})

	t.Run("admin and staff flags", func(t *testing.T) {
		user := testUser()
		user.Admin = true
		user.Staff = true

		principals := PrincipalsForUser(user)
		require.Contains(t, principals, PrincipalAdmin)
		require.Contains(t, principals, PrincipalStaff)
	})

	t.Run("no groups still gets user and authority", func(t *testing.T) {
		principals := PrincipalsForUser(testUser())
		require.ElementsMatch(t, []Principal{
			PrincipalUser,
			AuthorityPrincipal("example.com"),
		}, principals)
	})

	t.Run("one token per distinct group", func(t *testing.T) {
		user := testUser()
		user.Groups = []models.Group{{Pubid: "g1"}, {Pubid: "g2"}, {Pubid: "g1"}}

		principals := PrincipalsForUser(user)
		require.ElementsMatch(t, []Principal{
			PrincipalUser,
			GroupPrincipal("g1"),
			GroupPrincipal("g2"),
			AuthorityPrincipal("example.com"),
		}, principals)
	})
}

func TestPrincipalsForIdentity_AuthClient(t *testing.T) {
	principals := PrincipalsForAuthClient(testAuthClient())

	require.ElementsMatch(t, []Principal{
		PrincipalAuthClient,
		ClientPrincipal("c1", "example.com"),
		ClientAuthorityPrincipal("example.com"),
	}, principals)
	require.NotContains(t, principals, PrincipalAuthClientUser)
}

func TestPrincipalsForIdentity_ForwardedUser(t *testing.T) {
	user := testUser()
	user.Groups = []models.Group{{Pubid: "g1"}}
	client := testAuthClient()

	combined := PrincipalsForAuthClientUser(user, client)

	// Superset of the user-only and client-only sets.
	for _, principal := range PrincipalsForUser(user) {
		require.Contains(t, combined, principal)
	}

	for _, principal := range PrincipalsForAuthClient(client) {
		require.Contains(t, combined, principal)
	}

	// Plus exactly the userid token and the auth-client-user role.
	require.Contains(t, combined, UserIDPrincipal("acct:bob@example.com"))
	require.Contains(t, combined, PrincipalAuthClientUser)
	require.Len(t, combined, len(PrincipalsForUser(user))+len(PrincipalsForAuthClient(client))+2)
}

func TestPrincipalsForIdentity_NilSubIdentities(t *testing.T) {
	require.Nil(t, PrincipalsForUser(nil))
	require.Nil(t, PrincipalsForAuthClient(nil))
	require.Nil(t, PrincipalsForAuthClientUser(nil, nil))
}

func TestClientAuthority(t *testing.T) {
	tests := []struct {
		name       string
		principals []Principal
		want       string
	}{
		{"present", PrincipalsForAuthClient(testAuthClient()), "example.com"},
		{"absent", PrincipalsForUser(testUser()), ""},
		{"nil set", nil, ""},
		{"empty authority", []Principal{Principal("client_authority:")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientAuthority(tt.principals); got != tt.want {
				t.Errorf("ClientAuthority() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasPrincipal(t *testing.T) {
	principals := PrincipalsForUser(testUser())

	require.True(t, HasPrincipal(principals, PrincipalUser))
	require.False(t, HasPrincipal(principals, PrincipalAdmin))
	require.False(t, HasPrincipal(nil, PrincipalUser))
}
