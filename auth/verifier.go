package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyResolver looks up a trusted public key by key id.
type KeyResolver interface {
	// Resolve returns the raw public key (*rsa.PublicKey or *ecdsa.PublicKey) for kid
	Resolve(ctx context.Context, kid string) (interface{}, error)
}

// TokenVerifier verifies a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// allowedAlgorithms restricts verification to asymmetric algorithms.
var allowedAlgorithms = []string{
	"RS256", "RS384", "RS512",
	"PS256", "PS384", "PS512",
	"ES256", "ES384", "ES512",
}

// VerifierConfig holds the expectations a token must meet
type VerifierConfig struct {
	Issuer   string
	Audience string
	Leeway   time.Duration

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Verifier validates signed JWTs against a signing-key set
type Verifier struct {
	keys     KeyResolver
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewVerifier creates a new Verifier
func NewVerifier(keys KeyResolver, cfg VerifierConfig) *Verifier {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		keys:     keys,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		now:      now,
	}
}

// Verify checks the token's key id, signature, expiry, audience and issuer, in that order.
// A verifier built without an expected audience or issuer rejects every token.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	// Read the key id before any verification
	unverified, _, err := jwt.NewParser().ParseUnverified(tokenString, &tokenClaims{})
	if err != nil {
		return nil, ErrMalformedToken.wrap(err)
	}

	kid, ok := unverified.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, ErrMalformedToken.wrap(errors.New("kid header not found"))
	}

	key, err := v.keys.Resolve(ctx, kid)
	if err != nil {
		return nil, ErrUnknownSigningKey.wrap(err)
	}

	claims := &tokenClaims{}
	token, err := jwt.NewParser(v.parserOptions()...).ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	// An empty expectation matches nothing
	if v.audience == "" {
		return nil, ErrInvalidAudience.wrap(errors.New("no expected audience configured"))
	}
	if v.issuer == "" {
		return nil, ErrInvalidIssuer.wrap(errors.New("no expected issuer configured"))
	}

	return newClaims(claims), nil
}

func (v *Verifier) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	return opts
}

// classify maps a jwt parse error onto the taxonomy. The parser verifies the signature
// before claims, so claim errors only surface for authentic tokens.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken.wrap(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature.wrap(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired.wrap(err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrInvalidAudience.wrap(err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidIssuer.wrap(err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMalformedToken.wrap(err)
	default:
		return ErrMalformedToken.wrap(fmt.Errorf("token rejected: %w", err))
	}
}
