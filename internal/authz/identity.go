package authz

import (
	"context"
	"fmt"

	"github.com/glosshub/glosshub/internal/models"
)

// Identity represents the authenticated actor of a request.
//
// Both fields are optional: a plain login populates only User, a
// client-credentials request populates only AuthClient, and a client
// acting on behalf of a forwarded user populates both. An Identity with
// neither is valid input everywhere and means "anonymous".
type Identity struct {
	User       *models.User
	AuthClient *models.AuthClient
}

// UserIdentity returns an identity for a logged-in user.
func UserIdentity(user *models.User) Identity {
	return Identity{User: user}
}

// AuthClientIdentity returns an identity for an auth client acting on
// its own behalf.
func AuthClientIdentity(client *models.AuthClient) Identity {
	return Identity{AuthClient: client}
}

// ForwardedUserIdentity returns an identity for an auth client acting
// on behalf of a user within its authority.
func ForwardedUserIdentity(user *models.User, client *models.AuthClient) Identity {
	return Identity{User: user, AuthClient: client}
}

// Empty reports whether the identity carries neither a user nor an
// auth client.
func (i Identity) Empty() bool {
	return i.User == nil && i.AuthClient == nil
}

// String returns string representation of Identity (for audit logs).
func (i Identity) String() string {
	switch {
	case i.User != nil && i.AuthClient != nil:
		return fmt.Sprintf("forwarded:%s@client:%s", i.User.UserID, i.AuthClient.ID)
	case i.User != nil:
		return fmt.Sprintf("user:%s", i.User.UserID)
	case i.AuthClient != nil:
		return fmt.Sprintf("client:%s@%s", i.AuthClient.ID, i.AuthClient.Authority)
	default:
		return "anonymous"
	}
}

// identityKey is an unexported key type to prevent external forgery.
type identityKey struct{}

// WithIdentity sets the Identity, returns error if a different one already exists.
// Ensures each context can only carry one identity, preventing identity mixing.
func WithIdentity(ctx context.Context, identity Identity) (context.Context, error) {
	if existing, ok := GetIdentity(ctx); ok {
		if !identityEqual(existing, identity) {
			return ctx, fmt.Errorf("authz: identity conflict: existing=%s, new=%s", existing.String(), identity.String())
		}

		return ctx, nil // Same identity, idempotent
	}

	return context.WithValue(ctx, identityKey{}, identity), nil
}

// identityEqual compares two identities by their stable identifiers.
func identityEqual(a, b Identity) bool {
	if (a.User == nil) != (b.User == nil) {
		return false
	}

	if a.User != nil && a.User.UserID != b.User.UserID {
		return false
	}

	if (a.AuthClient == nil) != (b.AuthClient == nil) {
		return false
	}

	if a.AuthClient != nil && a.AuthClient.ID != b.AuthClient.ID {
		return false
	}

	return true
}

// GetIdentity reads the Identity.
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// MustGetIdentity reads the Identity, panics if not present (used in
// chains where authentication middleware has already run).
func MustGetIdentity(ctx context.Context) Identity {
	identity, ok := GetIdentity(ctx)
	if !ok {
		panic("authz: no identity in context")
	}

	return identity
}

// CurrentUser returns the user of the context identity, or nil for
// anonymous and client-only requests.
func CurrentUser(ctx context.Context) *models.User {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return nil
	}

	return identity.User
}
