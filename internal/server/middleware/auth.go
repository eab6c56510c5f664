package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/glosshub/glosshub/internal/authz"
	"github.com/glosshub/glosshub/internal/contexts"
	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/server/biz"
)

// ForwardedUserHeader names the header an auth client uses to act on
// behalf of one of its users.
const ForwardedUserHeader = "X-Forwarded-User"

// WithIdentity authenticates the request and stores the resulting
// identity in the context with set-once semantics.
//
// Two schemes are accepted: "Bearer <jwt>" for users and
// "Basic <client_id:client_secret>" for auth clients, optionally
// forwarding a user via the X-Forwarded-User header. Requests without
// an Authorization header proceed anonymously.
func WithIdentity(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		var (
			identity authz.Identity
			err      error
		)

		switch {
		case strings.HasPrefix(header, "Bearer "):
			identity, err = bearerIdentity(c, auth, strings.TrimPrefix(header, "Bearer "))
		case strings.HasPrefix(header, "Basic "):
			identity, err = basicIdentity(c, auth)
		default:
			AbortWithError(c, http.StatusUnauthorized, errors.New("unsupported authorization scheme"))
			return
		}

		if err != nil {
			status := http.StatusUnauthorized
			if !errors.Is(err, biz.ErrInvalidJWT) && !errors.Is(err, biz.ErrInvalidAuthClient) &&
				!errors.Is(err, biz.ErrNotAuthorized) && !errors.Is(err, biz.ErrUserNotFound) {
				log.Error(c.Request.Context(), "authentication failed", log.Cause(err))

				status = http.StatusInternalServerError
			}

			AbortWithError(c, status, errors.New("authentication failed"))

			return
		}

		ctx, err := authz.WithIdentity(c.Request.Context(), identity)
		if err != nil {
			AbortWithError(c, http.StatusInternalServerError, err)
			return
		}

		if identity.User != nil {
			ctx = contexts.WithUser(ctx, identity.User)
		}

		if identity.AuthClient != nil {
			ctx = contexts.WithAuthClient(ctx, identity.AuthClient)
		}

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerIdentity(c *gin.Context, auth *biz.AuthService, token string) (authz.Identity, error) {
	user, err := auth.AuthenticateJWTToken(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		return authz.Identity{}, err
	}

	return authz.UserIdentity(user), nil
}

func basicIdentity(c *gin.Context, auth *biz.AuthService) (authz.Identity, error) {
	clientID, clientSecret, ok := c.Request.BasicAuth()
	if !ok {
		return authz.Identity{}, biz.ErrInvalidAuthClient
	}

	client, err := auth.VerifyAuthClient(c.Request.Context(), clientID, clientSecret)
	if err != nil {
		return authz.Identity{}, err
	}

	forwarded := c.GetHeader(ForwardedUserHeader)
	if forwarded == "" {
		return authz.AuthClientIdentity(client), nil
	}

	user, err := auth.FetchForwardedUser(c.Request.Context(), client, forwarded)
	if err != nil {
		return authz.Identity{}, err
	}

	return authz.ForwardedUserIdentity(user, client), nil
}

// RequireUser aborts with 401 unless the identity carries a user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authz.CurrentUser(c.Request.Context()) == nil {
			AbortWithError(c, http.StatusUnauthorized, errors.New("authentication required"))
			return
		}

		c.Next()
	}
}
