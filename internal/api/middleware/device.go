package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nickagee13/commandtrack/internal/api/apierr"
	"github.com/nickagee13/commandtrack/internal/model"
)

type contextKey string

const deviceContextKey contextKey = "device"

// DeviceHeader carries the client-minted device identifier
const DeviceHeader = "X-Device-ID"

// Device creates middleware that requires a device identifier on every
// request. The identifier is opaque and never verified; it scopes
// ownership, not authentication.
func Device() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := extractDeviceID(r)
			if deviceID == "" {
				apierr.WriteError(w, apierr.NewDeviceRequiredError())
				return
			}

			ctx := context.WithValue(r.Context(), deviceContextKey, model.DeviceID(deviceID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractDeviceID extracts the device identifier from the request
func extractDeviceID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(DeviceHeader))
}

// GetDeviceID returns the device identifier from the request context
func GetDeviceID(ctx context.Context) model.DeviceID {
	deviceID, _ := ctx.Value(deviceContextKey).(model.DeviceID)
	return deviceID
}

// MustGetDeviceID returns the device identifier or panics
func MustGetDeviceID(ctx context.Context) model.DeviceID {
	deviceID := GetDeviceID(ctx)
	if deviceID == "" {
		panic("no device id in context - device middleware not applied?")
	}
	return deviceID
}
