package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
)

// AuthType defines supported authentication methods.
type AuthType int

const (
	// TokenAuth sends a personal access token as basic auth with an empty user name
	TokenAuth AuthType = iota
	// BearerAuth sends an OAuth / Entra ID access token
	BearerAuth
)

// Config values accepted for azure_devops.auth_type.
const (
	AuthTypePAT    = "pat"
	AuthTypeBearer = "bearer"
)

// String returns the string representation of AuthType.
func (a AuthType) String() string {
	switch a {
	case TokenAuth:
		return AuthTypePAT
	case BearerAuth:
		return AuthTypeBearer
	default:
		return "unknown"
	}
}

// ParseAuthType converts a configuration string to an AuthType.
// An empty string selects personal access token auth.
func ParseAuthType(s string) (AuthType, error) {
	switch s {
	case "", AuthTypePAT:
		return TokenAuth, nil
	case AuthTypeBearer:
		return BearerAuth, nil
	default:
		return TokenAuth, fmt.Errorf("invalid auth type '%s': must be '%s' or '%s'", s, AuthTypePAT, AuthTypeBearer)
	}
}

// Credentials stores authentication information for the organization.
type Credentials struct {
	Type  AuthType
	Token string
}

// AuthenticationManager holds the organization credential and hands out
// HTTP clients that attach it to every request.
type AuthenticationManager struct {
	credentials *Credentials
}

// NewAuthenticationManager creates a new authentication manager.
func NewAuthenticationManager(credentials *Credentials) *AuthenticationManager {
	return &AuthenticationManager{
		credentials: credentials,
	}
}

// NewAuthenticationManagerFromConfig creates an authentication manager from
// the configured token and auth type. An unknown auth type falls back to
// personal access token auth; Validate reports it earlier.
func NewAuthenticationManagerFromConfig(config *Config) *AuthenticationManager {
	authType, _ := ParseAuthType(config.AzureDevOps.AuthType)
	return NewAuthenticationManager(&Credentials{
		Type:  authType,
		Token: config.AzureDevOps.Token,
	})
}

// AuthorizationHeader returns the Authorization header value for the
// configured credential, or an empty string when there is none.
func (am *AuthenticationManager) AuthorizationHeader() string {
	if am.credentials == nil {
		return ""
	}
	return am.credentials.AuthorizationHeader()
}

// GetAuthenticatedClient returns an HTTP client with authentication headers configured.
// Returns an error if the credentials are missing or invalid.
func (am *AuthenticationManager) GetAuthenticatedClient() (*http.Client, error) {
	if err := am.ValidateCredentials(); err != nil {
		return nil, err
	}

	transport := &authenticatedTransport{
		base:        http.DefaultTransport,
		credentials: am.credentials,
	}

	return &http.Client{
		Transport: transport,
	}, nil
}

// ValidateCredentials checks that the credentials are complete for their type.
func (am *AuthenticationManager) ValidateCredentials() error {
	return validateCredentials(am.credentials)
}

// validateCredentials validates a Credentials object.
func validateCredentials(creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials cannot be nil")
	}

	switch creds.Type {
	case TokenAuth, BearerAuth:
		if creds.Token == "" {
			return fmt.Errorf("token is required for %s authentication", creds.Type)
		}
	default:
		return fmt.Errorf("invalid authentication type: %v", creds.Type)
	}

	return nil
}

// AuthorizationHeader returns the Authorization header value for the credentials.
func (c *Credentials) AuthorizationHeader() string {
	if c.Type == BearerAuth {
		return "Bearer " + c.Token
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+c.Token))
}

// authenticatedTransport is an http.RoundTripper that adds authentication headers.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper by adding authentication headers to requests.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("Authorization", t.credentials.AuthorizationHeader())
	return t.base.RoundTrip(clonedReq)
}
