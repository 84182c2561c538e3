package auth_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsnd/coffee-shop/auth"
)

func TestError_IsMatchesKind(t *testing.T) {
	wrapped := fmt.Errorf("middleware: %w", auth.ErrTokenExpired)

	assert.ErrorIs(t, wrapped, auth.ErrTokenExpired)
	assert.NotErrorIs(t, wrapped, auth.ErrInvalidSignature)

	authErr, ok := auth.AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, auth.KindTokenExpired, authErr.Kind)
	assert.Equal(t, "Token expired.", authErr.Message)
}

func TestAsError_NotAuthError(t *testing.T) {
	_, ok := auth.AsError(errors.New("boom"))
	assert.False(t, ok)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "authorization_header_missing: Authorization header is expected.", auth.ErrMissingHeader.Error())
}
