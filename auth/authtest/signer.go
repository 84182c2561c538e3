// Package authtest mints RS256 tokens and serves matching key sets for tests.
package authtest

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/stretchr/testify/require"

	"github.com/fsnd/coffee-shop/auth"
)

const (
	DefaultIssuer   = "https://coffee-shop.test/"
	DefaultAudience = "drinks"
)

// Signer holds an RSA key pair identified by KeyID.
type Signer struct {
	Key      *rsa.PrivateKey
	KeyID    string
	Issuer   string
	Audience string
}

// NewSigner generates a fresh 2048-bit key with a random key id
func NewSigner(t testing.TB) *Signer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &Signer{
		Key:      key,
		KeyID:    uuid.NewString(),
		Issuer:   DefaultIssuer,
		Audience: DefaultAudience,
	}
}

// TokenOptions customizes a minted token. Zero values fall back to the signer defaults
// and a one hour expiry.
type TokenOptions struct {
	Subject         string
	Issuer          string
	Audience        string
	KeyID           string
	ExpiresAt       time.Time
	Permissions     []string
	OmitPermissions bool
	OmitKeyID       bool
	Method          jwt.SigningMethod
}

// Mint signs a token with the signer's private key
func (s *Signer) Mint(t testing.TB, opts TokenOptions) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": firstNonEmpty(opts.Subject, "auth0|barista"),
		"iss": firstNonEmpty(opts.Issuer, s.Issuer),
		"aud": firstNonEmpty(opts.Audience, s.Audience),
		"iat": now.Unix(),
	}
	if opts.ExpiresAt.IsZero() {
		claims["exp"] = now.Add(time.Hour).Unix()
	} else {
		claims["exp"] = opts.ExpiresAt.Unix()
	}
	if !opts.OmitPermissions {
		perms := opts.Permissions
		if perms == nil {
			perms = []string{}
		}
		claims[auth.PermissionsClaim] = perms
	}

	method := opts.Method
	if method == nil {
		method = jwt.SigningMethodRS256
	}

	token := jwt.NewWithClaims(method, claims)
	if !opts.OmitKeyID {
		token.Header["kid"] = firstNonEmpty(opts.KeyID, s.KeyID)
	}

	signed, err := token.SignedString(s.Key)
	require.NoError(t, err)
	return signed
}

// Token mints a valid token granting permissions
func (s *Signer) Token(t testing.TB, permissions ...string) string {
	t.Helper()
	if permissions == nil {
		permissions = []string{}
	}
	return s.Mint(t, TokenOptions{Permissions: permissions})
}

// JWKS returns the public key as a JSON Web Key Set document
func (s *Signer) JWKS(t testing.TB) []byte {
	t.Helper()

	key, err := jwk.New(&s.Key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, s.KeyID))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))
	require.NoError(t, key.Set(jwk.KeyUsageKey, "sig"))

	set := jwk.NewSet()
	set.Add(key)

	raw, err := json.Marshal(set)
	require.NoError(t, err)
	return raw
}

// Server serves the JWKS over HTTP. hits, when non-nil, counts requests.
func (s *Signer) Server(t testing.TB, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	body := s.JWKS(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Resolver returns a key resolver trusting only this signer
func (s *Signer) Resolver() Resolver {
	return Resolver{s.KeyID: &s.Key.PublicKey}
}

// Resolver is an in-memory kid -> public key map.
type Resolver map[string]interface{}

var _ auth.KeyResolver = Resolver{}

// Resolve implements auth.KeyResolver
func (r Resolver) Resolve(_ context.Context, kid string) (interface{}, error) {
	key, ok := r[kid]
	if !ok {
		return nil, fmt.Errorf("key %q not found", kid)
	}
	return key, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
