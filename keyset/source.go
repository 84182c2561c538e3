package keyset

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/coreos/go-oidc"
	"github.com/lestrrat-go/jwx/jwk"
)

// Source produces the current JSON Web Key Set.
type Source interface {
	Fetch(ctx context.Context) (jwk.Set, error)
	String() string
}

// FileSource reads a static JWKS document from disk
type FileSource struct {
	Path string
}

// Fetch reads and parses the file
func (s FileSource) Fetch(_ context.Context) (jwk.Set, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jwks file: %w", err)
	}

	set, err := jwk.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwks file: %w", err)
	}
	return set, nil
}

func (s FileSource) String() string {
	return "file:" + s.Path
}

// URLSource downloads the JWKS from a well-known endpoint
type URLSource struct {
	URL    string
	Client *http.Client
}

// Fetch downloads and parses the key set
func (s URLSource) Fetch(ctx context.Context) (jwk.Set, error) {
	set, err := jwk.Fetch(ctx, s.URL, jwk.WithHTTPClient(httpClient(s.Client)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks from %s: %w", s.URL, err)
	}
	return set, nil
}

func (s URLSource) String() string {
	return s.URL
}

// DiscoverySource locates the JWKS through the issuer's OpenID Connect discovery document
type DiscoverySource struct {
	Issuer string
	Client *http.Client
}

type discoveryClaims struct {
	JWKSURL string `json:"jwks_uri"`
}

// Fetch resolves jwks_uri from discovery, then downloads the key set
func (s DiscoverySource) Fetch(ctx context.Context) (jwk.Set, error) {
	client := httpClient(s.Client)

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), s.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover issuer %s: %w", s.Issuer, err)
	}

	var claims discoveryClaims
	if err := provider.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if claims.JWKSURL == "" {
		return nil, fmt.Errorf("discovery document for %s has no jwks_uri", s.Issuer)
	}

	return URLSource{URL: claims.JWKSURL, Client: client}.Fetch(ctx)
}

func (s DiscoverySource) String() string {
	return "discovery:" + s.Issuer
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}
