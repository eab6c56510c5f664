package biz

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/glosshub/glosshub/internal/log"
	"github.com/glosshub/glosshub/internal/models"
)

type AuthConfig struct {
	// JWTSecret signs user bearer tokens (HS256).
	JWTSecret string `conf:"jwt_secret" yaml:"jwt_secret" json:"jwt_secret"`

	// TokenTTL bounds the lifetime of issued user tokens.
	TokenTTL time.Duration `conf:"token_ttl" yaml:"token_ttl" json:"token_ttl"`
}

type AuthServiceParams struct {
	fx.In

	Config      AuthConfig
	UserService *UserService
	Clients     AuthClientStore
}

// AuthService authenticates users (bearer JWT) and auth clients
// (client credentials), yielding the sub-identities the resolver
// derives principals from.
type AuthService struct {
	config      AuthConfig
	userService *UserService
	clients     AuthClientStore
}

func NewAuthService(params AuthServiceParams) *AuthService {
	return &AuthService{
		config:      params.Config,
		userService: params.UserService,
		clients:     params.Clients,
	}
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedPassword), nil
}

// VerifyPassword verifies a password against a hash.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateJWTToken issues a bearer token for a user.
func (s *AuthService) GenerateJWTToken(ctx context.Context, user *models.User) (string, error) {
	ttl := s.config.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.UserID,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// AuthenticateJWTToken validates a bearer token and returns the user.
func (s *AuthService) AuthenticateJWTToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidJWT
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidJWT
	}

	userid, ok := claims["sub"].(string)
	if !ok || userid == "" {
		return nil, ErrInvalidJWT
	}

	user, err := s.userService.Fetch(ctx, userid)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidJWT
		}

		return nil, err
	}

	log.Debug(ctx, "user authenticated", log.String("userid", user.UserID))

	return user, nil
}

// VerifyAuthClient returns the auth client matching the given
// credentials, or ErrInvalidAuthClient.
//
// The secret comparison is constant-time, and the secret is never part
// of the store lookup. Public clients and clients registered for grant
// types other than client_credentials are rejected.
func (s *AuthService) VerifyAuthClient(ctx context.Context, clientID, clientSecret string) (*models.AuthClient, error) {
	client, err := s.clients.GetAuthClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrAuthClientNotFound) {
			return nil, ErrInvalidAuthClient
		}

		return nil, fmt.Errorf("failed to look up auth client: %w", err)
	}

	if client.Secret == "" {
		// Client is not confidential.
		return nil, ErrInvalidAuthClient
	}

	if client.GrantType != models.GrantTypeClientCredentials {
		return nil, ErrInvalidAuthClient
	}

	if subtle.ConstantTimeCompare([]byte(client.Secret), []byte(clientSecret)) != 1 {
		return nil, ErrInvalidAuthClient
	}

	return client, nil
}

// FetchForwardedUser resolves the X-Forwarded-User value for a verified
// auth client. The forwarded user must live in the client's authority.
func (s *AuthService) FetchForwardedUser(ctx context.Context, client *models.AuthClient, userid string) (*models.User, error) {
	user, err := s.userService.Fetch(ctx, userid)
	if err != nil {
		return nil, err
	}

	if user.Authority != client.Authority {
		log.Warn(ctx, "forwarded user authority mismatch",
			log.String("userid", userid),
			log.String("client_authority", client.Authority),
		)

		return nil, ErrNotAuthorized
	}

	return user, nil
}
