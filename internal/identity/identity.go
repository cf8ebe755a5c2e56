// Package identity models who is calling the quiz API: an anonymous browser
// session or an authenticated user carrying a bearer token. Request builders
// consume the identity instead of branching on token presence at call sites.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Identity is attached to every API request. The zero value is anonymous
// with no session id.
type Identity struct {
	token  string
	anonID string
}

// Anonymous returns an identity keyed by a client-generated session id. The
// id names the caller, not a quiz attempt; quiz session ids are minted by
// the server.
func Anonymous(sessionID string) Identity {
	return Identity{anonID: strings.TrimSpace(sessionID)}
}

// Authenticated returns an identity carrying a bearer token.
func Authenticated(token string) Identity {
	return Identity{token: strings.TrimSpace(token)}
}

// NewAnonymousID mints a fresh anonymous session id.
func NewAnonymousID() string {
	return uuid.New().String()
}

func (id Identity) IsAuthenticated() bool { return id.token != "" }

// BearerToken returns the raw token, empty for anonymous identities.
func (id Identity) BearerToken() string { return id.token }

// AnonymousID returns the anonymous session id, empty when authenticated.
func (id Identity) AnonymousID() string {
	if id.token != "" {
		return ""
	}
	return id.anonID
}

// String describes the identity for logs without exposing the token.
func (id Identity) String() string {
	if id.token != "" {
		return "authenticated"
	}
	if id.anonID == "" {
		return "anonymous"
	}
	return "anonymous:" + id.anonID
}
