package handler

import (
	"net/http"

	"github.com/nickagee13/commandtrack/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeInvalidUsername    = apierr.CodeInvalidUsername
	CodeInvalidShareCode   = apierr.CodeInvalidShareCode
	CodeDeviceRequired     = apierr.CodeDeviceRequired
	CodeUsernameTaken      = apierr.CodeUsernameTaken
	CodeShareCodeTaken     = apierr.CodeShareCodeTaken
	CodeProfileNotFound    = apierr.CodeProfileNotFound
	CodePermissionNotFound = apierr.CodePermissionNotFound
	CodeGameNotFound       = apierr.CodeGameNotFound
	CodeAccessNotFound     = apierr.CodeAccessNotFound
	CodeNotOwner           = apierr.CodeNotOwner
	CodeOwnerAccessRemoval = apierr.CodeOwnerAccessRemoval
	CodeShareCodeInactive  = apierr.CodeShareCodeInactive
	CodeShareCodeExpired   = apierr.CodeShareCodeExpired
	CodeShareCodeExhausted = apierr.CodeShareCodeExhausted
	CodeProfileInactive    = apierr.CodeProfileInactive
	CodeInvalidGame        = apierr.CodeInvalidGame
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewDeviceRequiredError creates a missing device identification error
func NewDeviceRequiredError() error {
	return apierr.NewDeviceRequiredError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
