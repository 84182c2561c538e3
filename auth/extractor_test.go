package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsnd/coffee-shop/auth"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    *string
		wantToken string
		wantErr   error
	}{
		{name: "valid bearer", header: strPtr("Bearer abc.def.ghi"), wantToken: "abc.def.ghi"},
		{name: "lowercase scheme", header: strPtr("bearer abc.def.ghi"), wantToken: "abc.def.ghi"},
		{name: "missing header", header: nil, wantErr: auth.ErrMissingHeader},
		{name: "wrong scheme", header: strPtr("Token abc123"), wantErr: auth.ErrMalformedHeader},
		{name: "scheme only", header: strPtr("Bearer"), wantErr: auth.ErrMalformedHeader},
		{name: "empty token", header: strPtr("Bearer "), wantErr: auth.ErrMalformedHeader},
		{name: "too many parts", header: strPtr("Bearer abc def"), wantErr: auth.ErrMalformedHeader},
		{name: "empty header", header: strPtr(""), wantErr: auth.ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/drinks-detail", nil)
			if tt.header != nil {
				req.Header.Set(auth.AuthorizationHeader, *tt.header)
			}

			token, err := auth.ExtractBearerToken(req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
