package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nickagee13/commandtrack/internal/api/middleware"
	"github.com/nickagee13/commandtrack/internal/api/response"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/ownership"
)

// DeviceHandler handles device-scoped profile access endpoints
type DeviceHandler struct {
	ownershipService *ownership.Service
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(ownershipService *ownership.Service) *DeviceHandler {
	return &DeviceHandler{
		ownershipService: ownershipService,
	}
}

// GetAccessibleProfiles handles GET /api/v1/device/profiles
func (h *DeviceHandler) GetAccessibleProfiles(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.MustGetDeviceID(r.Context())

	accessible, err := h.ownershipService.GetAccessibleProfiles(r.Context(), deviceID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccessibleProfilesFromModel(accessible))
}

// GetOwnedProfiles handles GET /api/v1/device/profiles/owned
func (h *DeviceHandler) GetOwnedProfiles(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.MustGetDeviceID(r.Context())

	profiles, err := h.ownershipService.GetMyProfiles(r.Context(), deviceID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfilesFromModels(profiles))
}

// RemoveAccess handles DELETE /api/v1/device/profiles/{id}
func (h *DeviceHandler) RemoveAccess(w http.ResponseWriter, r *http.Request) {
	id := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	if err := h.ownershipService.RemoveProfileAccess(r.Context(), deviceID, id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
