package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nickagee13/commandtrack/internal/api/handler"
	"github.com/nickagee13/commandtrack/internal/api/middleware"
	basemiddleware "github.com/nickagee13/commandtrack/internal/middleware"
	"github.com/nickagee13/commandtrack/internal/services/game"
	"github.com/nickagee13/commandtrack/internal/services/ownership"
	"github.com/nickagee13/commandtrack/internal/services/profile"
	"github.com/nickagee13/commandtrack/internal/services/share"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	ProfileService   *profile.Service
	OwnershipService *ownership.Service
	ShareService     *share.Service
	GameService      *game.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	profileHandler := handler.NewProfileHandler(cfg.ProfileService, cfg.OwnershipService)
	deviceHandler := handler.NewDeviceHandler(cfg.OwnershipService)
	shareHandler := handler.NewShareHandler(cfg.ShareService)
	gameHandler := handler.NewGameHandler(cfg.GameService)

	// Create middleware
	deviceMiddleware := middleware.Device()
	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no device header)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Profile routes; fixed paths registered before the {id} wildcard
	profiles := api.PathPrefix("/profiles").Subrouter()
	profiles.Use(deviceMiddleware)
	profiles.HandleFunc("", profileHandler.Create).Methods(http.MethodPost)
	profiles.HandleFunc("", profileHandler.List).Methods(http.MethodGet)
	profiles.HandleFunc("/username-check", profileHandler.UsernameCheck).Methods(http.MethodGet)
	profiles.HandleFunc("/by-code/{code}", profileHandler.GetByCode).Methods(http.MethodGet)
	profiles.HandleFunc("/{id}", profileHandler.Get).Methods(http.MethodGet)
	profiles.HandleFunc("/{id}", profileHandler.Update).Methods(http.MethodPatch)
	profiles.HandleFunc("/{id}", profileHandler.Delete).Methods(http.MethodDelete)
	profiles.HandleFunc("/{id}/stats", profileHandler.Stats).Methods(http.MethodGet)
	profiles.HandleFunc("/{id}/privacy", profileHandler.UpdatePrivacy).Methods(http.MethodPatch)
	profiles.HandleFunc("/{id}/claim", profileHandler.Claim).Methods(http.MethodPost)
	profiles.HandleFunc("/{id}/usage", profileHandler.TrackUsage).Methods(http.MethodPost)
	profiles.HandleFunc("/{id}/games", gameHandler.ListForProfile).Methods(http.MethodGet)
	profiles.HandleFunc("/{id}/shares", shareHandler.Create).Methods(http.MethodPost)
	profiles.HandleFunc("/{id}/shares/session", shareHandler.CreateSession).Methods(http.MethodPost)
	profiles.HandleFunc("/{id}/shares/cleanup", shareHandler.Cleanup).Methods(http.MethodPost)

	// Device-scoped listing routes
	device := api.PathPrefix("/device").Subrouter()
	device.Use(deviceMiddleware)
	device.HandleFunc("/profiles", deviceHandler.GetAccessibleProfiles).Methods(http.MethodGet)
	device.HandleFunc("/profiles/owned", deviceHandler.GetOwnedProfiles).Methods(http.MethodGet)
	device.HandleFunc("/profiles/{id}", deviceHandler.RemoveAccess).Methods(http.MethodDelete)

	// Share permission routes
	shares := api.PathPrefix("/shares").Subrouter()
	shares.Use(deviceMiddleware)
	shares.HandleFunc("", shareHandler.List).Methods(http.MethodGet)
	shares.HandleFunc("/redeem", shareHandler.Redeem).Methods(http.MethodPost)
	shares.HandleFunc("/{id}", shareHandler.Deactivate).Methods(http.MethodDelete)

	// Game record routes
	games := api.PathPrefix("/games").Subrouter()
	games.Use(deviceMiddleware)
	games.HandleFunc("", gameHandler.Record).Methods(http.MethodPost)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
