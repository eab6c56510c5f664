package models

// GrantType is the OAuth grant type an auth client is registered for.
type GrantType string

const (
	GrantTypeAuthorizationCode GrantType = "authorization_code"
	GrantTypeClientCredentials GrantType = "client_credentials"
	GrantTypeJWTBearer         GrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// AuthClient is a third-party integration allowed to call the API,
// optionally on behalf of forwarded users within its authority.
//
// Secret is empty for public (non-confidential) clients; such clients
// can never authenticate with client credentials.
type AuthClient struct {
	ID        string
	Name      string
	Authority string
	Secret    string
	GrantType GrantType
}
