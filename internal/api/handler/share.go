package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nickagee13/commandtrack/internal/api/middleware"
	"github.com/nickagee13/commandtrack/internal/api/request"
	"github.com/nickagee13/commandtrack/internal/api/response"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/share"
)

// ShareHandler handles share permission endpoints
type ShareHandler struct {
	shareService *share.Service
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService *share.Service) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

// Create handles POST /api/v1/profiles/{id}/shares
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	profileID := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	var req request.ShareProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if !model.ValidShareType(req.Type) {
		WriteError(w, NewInvalidRequestError("type must be temporary, permanent or game_session"))
		return
	}

	params := share.ShareParams{
		DeviceID:  deviceID,
		ProfileID: profileID,
		Type:      model.ShareType(req.Type),
		MaxUses:   req.MaxUses,
	}
	if req.ExpiresInSeconds != nil {
		if *req.ExpiresInSeconds <= 0 {
			WriteError(w, NewInvalidRequestError("expires_in_seconds must be positive"))
			return
		}
		d := time.Duration(*req.ExpiresInSeconds) * time.Second
		params.ExpiresIn = &d
	}

	permission, err := h.shareService.ShareProfile(r.Context(), params)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SharePermissionFromModel(permission))
}

// CreateSession handles POST /api/v1/profiles/{id}/shares/session
func (h *ShareHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	profileID := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	permission, err := h.shareService.CreateGameSessionShare(r.Context(), deviceID, profileID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SharePermissionFromModel(permission))
}

// List handles GET /api/v1/shares
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.MustGetDeviceID(r.Context())

	profileID := r.URL.Query().Get("profile_id")
	if profileID == "" {
		WriteError(w, NewInvalidRequestError("profile_id query parameter is required"))
		return
	}

	infos, err := h.shareService.GetMyShareCodes(r.Context(), deviceID, model.ProfileID(profileID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ShareCodeListFromService(infos))
}

// Redeem handles POST /api/v1/shares/redeem
func (h *ShareHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.MustGetDeviceID(r.Context())

	var req request.RedeemShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	p, err := h.shareService.UseShareCode(r.Context(), deviceID, req.Code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// Deactivate handles DELETE /api/v1/shares/{id}
func (h *ShareHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	permissionID := model.PermissionID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	if err := h.shareService.DeactivateShareCode(r.Context(), deviceID, permissionID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Cleanup handles POST /api/v1/profiles/{id}/shares/cleanup
func (h *ShareHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	profileID := model.ProfileID(mux.Vars(r)["id"])
	deviceID := middleware.MustGetDeviceID(r.Context())

	cleaned, err := h.shareService.CleanupExpiredCodes(r.Context(), deviceID, profileID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CleanupResponse{Cleaned: cleaned})
}
