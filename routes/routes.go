package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fsnd/coffee-shop/app"
	"github.com/fsnd/coffee-shop/auth"
	"github.com/fsnd/coffee-shop/middleware"
	"github.com/fsnd/coffee-shop/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	if timeout := deps.Config.Server.RequestTimeout; timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	drinks := deps.DrinkHandler
	requirePermission := deps.AuthMiddleware.RequirePermission

	// Public menu
	r.Get("/drinks", drinks.HandleList)

	// Barista and manager endpoints
	r.With(requirePermission(auth.PermissionGetDrinksDetail)).Get("/drinks-detail", drinks.HandleDetail)
	r.With(requirePermission(auth.PermissionPostDrinks)).Post("/drinks", drinks.HandleCreate)
	r.With(requirePermission(auth.PermissionPatchDrinks)).Patch("/drinks/{id}", drinks.HandleUpdate)
	r.With(requirePermission(auth.PermissionDeleteDrinks)).Delete("/drinks/{id}", drinks.HandleDelete)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w)
	})

	return r
}
