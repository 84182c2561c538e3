package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/auth"
	"github.com/fsnd/coffee-shop/utils"
)

// AuthMiddleware guards routes with the bearer token authorization chain
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier auth.TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequirePermission runs extraction, verification and the permission check in that order.
// The first failure writes a 401 envelope and the wrapped handler is never invoked.
func (m *AuthMiddleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				m.reject(w, requestID, permission, err)
				return
			}

			claims, err := m.verifier.Verify(ctx, token)
			if err != nil {
				m.reject(w, requestID, permission, err)
				return
			}

			if err := auth.CheckPermission(claims, permission); err != nil {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("sub", claims.Subject),
					zap.String("required_permission", permission),
					zap.Strings("permissions", claims.Permissions))
				_ = utils.WriteAuthError(w, err)
				return
			}

			m.logger.Debug("permission check passed",
				zap.String("request_id", requestID),
				zap.String("sub", claims.Subject),
				zap.String("required_permission", permission))

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, requestID, permission string, err error) {
	m.logger.Warn("request rejected",
		zap.String("request_id", requestID),
		zap.String("required_permission", permission),
		zap.Error(err))
	_ = utils.WriteAuthError(w, err)
}
