package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nickagee13/commandtrack/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidUsername    = "INVALID_USERNAME"
	CodeInvalidShareCode   = "INVALID_SHARE_CODE"
	CodeDeviceRequired     = "DEVICE_REQUIRED"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeShareCodeTaken     = "SHARE_CODE_TAKEN"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodePermissionNotFound = "PERMISSION_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeAccessNotFound     = "ACCESS_NOT_FOUND"
	CodeNotOwner           = "NOT_OWNER"
	CodeOwnerAccessRemoval = "OWNER_ACCESS_REMOVAL"
	CodeShareCodeInactive  = "SHARE_CODE_INACTIVE"
	CodeShareCodeExpired   = "SHARE_CODE_EXPIRED"
	CodeShareCodeExhausted = "SHARE_CODE_EXHAUSTED"
	CodeProfileInactive    = "PROFILE_INACTIVE"
	CodeInvalidGame        = "INVALID_GAME"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUsername, "Username must be 3-20 characters: letters, digits or underscore"}}
	case errors.Is(err, model.ErrInvalidShareCode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidShareCode, "Share code must be 3 letters followed by 3 digits"}}
	case errors.Is(err, model.ErrDeviceRequired):
		return &httpError{http.StatusUnauthorized, APIError{CodeDeviceRequired, "Device identification required"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username is already taken"}}
	case errors.Is(err, model.ErrShareCodeTaken):
		return &httpError{http.StatusConflict, APIError{CodeShareCodeTaken, "Share code is already taken"}}
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "Profile not found"}}
	case errors.Is(err, model.ErrPermissionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePermissionNotFound, "Share permission not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrAccessNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAccessNotFound, "No access record for this profile"}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "Only the owning device can perform this action"}}
	case errors.Is(err, model.ErrOwnerAccessRemoval):
		return &httpError{http.StatusForbidden, APIError{CodeOwnerAccessRemoval, "Owners cannot remove access to their own profile"}}
	case errors.Is(err, model.ErrShareCodeInactive):
		return &httpError{http.StatusGone, APIError{CodeShareCodeInactive, "Share code is invalid or no longer active"}}
	case errors.Is(err, model.ErrShareCodeExpired):
		return &httpError{http.StatusGone, APIError{CodeShareCodeExpired, "Share code has expired"}}
	case errors.Is(err, model.ErrShareCodeExhausted):
		return &httpError{http.StatusConflict, APIError{CodeShareCodeExhausted, "Share code has reached its maximum uses"}}
	case errors.Is(err, model.ErrProfileInactive):
		return &httpError{http.StatusGone, APIError{CodeProfileInactive, "Profile has been deleted"}}
	case errors.Is(err, model.ErrNoPlayers):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGame, "Game must have at least one player"}}
	case errors.Is(err, model.ErrTooManyPlayers):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGame, "Game cannot have more than four players"}}
	case errors.Is(err, model.ErrInvalidPlacement):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGame, "Placements must cover 1..n exactly once"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewDeviceRequiredError creates a missing device identification error
func NewDeviceRequiredError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeDeviceRequired, "X-Device-ID header is required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
