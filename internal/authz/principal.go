package authz

import (
	"fmt"
	"strings"

	"github.com/glosshub/glosshub/internal/models"
)

// Principal is an opaque permission token granted to an identity.
type Principal string

// Role principals granted by identity shape.
const (
	// PrincipalUser is granted to every authenticated user.
	PrincipalUser Principal = "role:user"
	// PrincipalAdmin is granted to users with the admin flag.
	PrincipalAdmin Principal = "role:admin"
	// PrincipalStaff is granted to users with the staff flag.
	PrincipalStaff Principal = "role:staff"
	// PrincipalAuthClient is granted to authenticated auth clients.
	PrincipalAuthClient Principal = "role:auth_client"
	// PrincipalAuthClientUser is granted when a client authenticates on
	// behalf of a forwarded user.
	PrincipalAuthClientUser Principal = "role:auth_client_user"
)

const clientAuthorityPrefix = "client_authority:"

// GroupPrincipal returns the membership token for a group.
func GroupPrincipal(pubid string) Principal {
	return Principal("group:" + pubid)
}

// AuthorityPrincipal returns the token for a user's authority.
func AuthorityPrincipal(authority string) Principal {
	return Principal("authority:" + authority)
}

// ClientPrincipal returns the token identifying an auth client within
// its authority.
func ClientPrincipal(clientID, authority string) Principal {
	return Principal(fmt.Sprintf("client:%s@%s", clientID, authority))
}

// ClientAuthorityPrincipal returns the token for an auth client's
// verified authority.
func ClientAuthorityPrincipal(authority string) Principal {
	return Principal(clientAuthorityPrefix + authority)
}

// UserIDPrincipal returns the token carrying the user's full userid.
// Only granted for forwarded-user identities.
func UserIDPrincipal(userid string) Principal {
	return Principal(userid)
}

// PrincipalsForIdentity returns the principal set for an identity, or
// nil when the identity carries neither a user nor an auth client.
//
// The result is a set: deduplicated, iteration order unspecified.
// Callers must not depend on ordering.
func PrincipalsForIdentity(identity Identity) []Principal {
	if identity.Empty() {
		return nil
	}

	set := make(map[Principal]struct{})

	if user := identity.User; user != nil {
		set[PrincipalUser] = struct{}{}

		if user.Admin {
			set[PrincipalAdmin] = struct{}{}
		}

		if user.Staff {
			set[PrincipalStaff] = struct{}{}
		}

		for _, group := range user.Groups {
			set[GroupPrincipal(group.Pubid)] = struct{}{}
		}

		set[AuthorityPrincipal(user.Authority)] = struct{}{}
	}

	if client := identity.AuthClient; client != nil {
		set[ClientPrincipal(client.ID, client.Authority)] = struct{}{}
		set[ClientAuthorityPrincipal(client.Authority)] = struct{}{}
		set[PrincipalAuthClient] = struct{}{}
	}

	if identity.User != nil && identity.AuthClient != nil {
		set[UserIDPrincipal(identity.User.UserID)] = struct{}{}
		set[PrincipalAuthClientUser] = struct{}{}
	}

	if len(set) == 0 {
		return nil
	}

	principals := make([]Principal, 0, len(set))
	for principal := range set {
		principals = append(principals, principal)
	}

	return principals
}

// PrincipalsForUser returns the principal set for a user, or nil.
func PrincipalsForUser(user *models.User) []Principal {
	return PrincipalsForIdentity(UserIdentity(user))
}

// PrincipalsForAuthClient returns the principal set for an auth client.
func PrincipalsForAuthClient(client *models.AuthClient) []Principal {
	return PrincipalsForIdentity(AuthClientIdentity(client))
}

// PrincipalsForAuthClientUser returns the union of client and user
// principals for a forwarded user.
func PrincipalsForAuthClientUser(user *models.User, client *models.AuthClient) []Principal {
	return PrincipalsForIdentity(ForwardedUserIdentity(user, client))
}

// ClientAuthority returns the authority carried by a client_authority
// principal, or "" when the set has none.
func ClientAuthority(principals []Principal) string {
	for _, principal := range principals {
		if authority, ok := strings.CutPrefix(string(principal), clientAuthorityPrefix); ok && authority != "" {
			return authority
		}
	}

	return ""
}

// HasPrincipal reports whether the set contains the given principal.
func HasPrincipal(principals []Principal, p Principal) bool {
	for _, principal := range principals {
		if principal == p {
			return true
		}
	}

	return false
}
