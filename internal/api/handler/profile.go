package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nickagee13/commandtrack/internal/api/middleware"
	"github.com/nickagee13/commandtrack/internal/api/request"
	"github.com/nickagee13/commandtrack/internal/api/response"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/ownership"
	"github.com/nickagee13/commandtrack/internal/services/profile"
)

// ProfileHandler handles profile-related endpoints
type ProfileHandler struct {
	profileService   *profile.Service
	ownershipService *ownership.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *profile.Service, ownershipService *ownership.Service) *ProfileHandler {
	return &ProfileHandler{
		profileService:   profileService,
		ownershipService: ownershipService,
	}
}

// Create handles POST /api/v1/profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}

	colors, ok := model.ParseColorIdentity(req.ColorIdentity)
	if !ok {
		WriteError(w, NewInvalidRequestError("color_identity must use only WUBRG symbols"))
		return
	}

	p, err := h.ownershipService.CreateOwnedProfile(r.Context(), profile.CreateParams{
		Username:         req.Username,
		DisplayName:      req.DisplayName,
		PrimaryCommander: req.PrimaryCommander,
		ColorIdentity:    colors,
		IsPublic:         req.IsPublic,
		DeviceID:         middleware.MustGetDeviceID(r.Context()),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ProfileFromModel(p))
}

// List handles GET /api/v1/profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := profile.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	summaries, err := h.profileService.List(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileListFromModels(summaries))
}

// Get handles GET /api/v1/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])

	p, err := h.profileService.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// GetByCode handles GET /api/v1/profiles/by-code/{code}
func (h *ProfileHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	p, err := h.profileService.GetByShareCode(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// UsernameCheck handles GET /api/v1/profiles/username-check
func (h *ProfileHandler) UsernameCheck(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		WriteError(w, NewInvalidRequestError("username query parameter is required"))
		return
	}

	available, err := h.profileService.IsUsernameAvailable(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UsernameCheckResponse{
		Username:  model.NormalizeUsername(username),
		Available: available,
	})
}

// Update handles PATCH /api/v1/profiles/{id}
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	var req request.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if !h.ownershipService.IsProfileOwner(r.Context(), deviceID, id) {
		WriteError(w, model.ErrNotOwner)
		return
	}

	update := model.ProfileUpdate{
		DisplayName:      req.DisplayName,
		PrimaryCommander: req.PrimaryCommander,
	}
	if req.ColorIdentity != nil {
		colors, ok := model.ParseColorIdentity(*req.ColorIdentity)
		if !ok {
			WriteError(w, NewInvalidRequestError("color_identity must use only WUBRG symbols"))
			return
		}
		update.ColorIdentity = &colors
	}

	p, err := h.profileService.Update(r.Context(), id, update)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// UpdatePrivacy handles PATCH /api/v1/profiles/{id}/privacy
func (h *ProfileHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	var req request.UpdatePrivacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.IsPublic == nil {
		WriteError(w, NewInvalidRequestError("is_public is required"))
		return
	}

	p, err := h.ownershipService.UpdateProfilePrivacy(r.Context(), deviceID, id, *req.IsPublic)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// Delete handles DELETE /api/v1/profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	if err := h.ownershipService.DeleteOwnedProfile(r.Context(), deviceID, id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Stats handles GET /api/v1/profiles/{id}/stats
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])

	stats, err := h.profileService.Stats(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileStatsFromModel(stats))
}

// Claim handles POST /api/v1/profiles/{id}/claim
func (h *ProfileHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	p, err := h.ownershipService.FixLegacyProfile(r.Context(), deviceID, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// TrackUsage handles POST /api/v1/profiles/{id}/usage
func (h *ProfileHandler) TrackUsage(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	h.ownershipService.TrackProfileUsage(r.Context(), deviceID, id)

	response.NoContent(w)
}
