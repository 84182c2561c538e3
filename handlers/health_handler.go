package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/utils"
)

// KeyStatus reports whether the signing-key set has been loaded
type KeyStatus interface {
	Loaded() (bool, time.Time)
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db     *sql.DB
	keys   KeyStatus
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. keys may be nil when auth is not configured.
func NewHealthHandler(db *sql.DB, keys KeyStatus, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		keys:   keys,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
// Liveness only; always 200 while the process serves requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if err := h.checkDatabase(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		allHealthy = false
	} else {
		checks["database"] = "healthy"
	}

	switch {
	case h.keys == nil:
		checks["signing_keys"] = "not_configured"
	default:
		if loaded, _ := h.keys.Loaded(); loaded {
			checks["signing_keys"] = "loaded"
		} else {
			checks["signing_keys"] = "not_loaded"
			allHealthy = false
		}
	}

	if !allHealthy {
		err := utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   http.StatusServiceUnavailable,
			"code":    utils.CodeServiceUnavailable,
			"message": "Service not ready",
			"status":  "unhealthy",
			"checks":  checks,
		})
		if err != nil {
			h.logger.Error("failed to write readiness response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteOK(w, map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// checkDatabase checks database connectivity
func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var result int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
}
