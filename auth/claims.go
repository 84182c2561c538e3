package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PermissionsClaim is the claim carrying granted permissions (Auth0 RBAC convention).
const PermissionsClaim = "permissions"

// tokenClaims is the wire shape decoded from the JWT payload.
type tokenClaims struct {
	jwt.RegisteredClaims
	Permissions []string `json:"permissions"`
}

// Claims represents a verified token payload. It lives for one request and is never persisted.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time

	// Permissions is never nil; it is empty when the token carried no permissions claim.
	Permissions []string

	// PermissionsClaimed reports whether the token carried a permissions claim at all.
	PermissionsClaimed bool
}

// HasPermission reports whether permission is among the granted permissions
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func newClaims(tc *tokenClaims) *Claims {
	claims := &Claims{
		Subject:            tc.Subject,
		Issuer:             tc.Issuer,
		Audience:           []string(tc.Audience),
		Permissions:        []string{},
		PermissionsClaimed: tc.Permissions != nil,
	}
	if tc.Permissions != nil {
		claims.Permissions = tc.Permissions
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	return claims
}
