package model

import "errors"

// Common errors used across the application
var (
	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileInactive = errors.New("profile is inactive")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("username must be 3-20 characters, letters, digits or underscore")
	ErrShareCodeTaken  = errors.New("share code already taken")

	// Share code errors
	ErrInvalidShareCode   = errors.New("invalid share code format")
	ErrShareCodeInactive  = errors.New("share code is invalid or inactive")
	ErrShareCodeExpired   = errors.New("share code has expired")
	ErrShareCodeExhausted = errors.New("share code has reached its maximum uses")
	ErrPermissionNotFound = errors.New("share permission not found")

	// Ownership errors
	ErrNotOwner           = errors.New("device does not own this profile")
	ErrOwnerAccessRemoval = errors.New("owners cannot remove access to their own profile")
	ErrAccessNotFound     = errors.New("device has no access record for this profile")
	ErrDeviceRequired     = errors.New("device id is required")

	// Game errors
	ErrGameNotFound     = errors.New("game not found")
	ErrNoPlayers        = errors.New("game must have at least one player")
	ErrTooManyPlayers   = errors.New("game cannot have more than four players")
	ErrInvalidPlacement = errors.New("placements must cover 1..n exactly once")
)
