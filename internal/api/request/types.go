package request

import "time"

// CreateProfileRequest is the body for POST /api/v1/profiles
type CreateProfileRequest struct {
	Username         string `json:"username"`
	DisplayName      string `json:"display_name,omitempty"`
	PrimaryCommander string `json:"primary_commander,omitempty"`
	ColorIdentity    string `json:"color_identity,omitempty"`
	IsPublic         bool   `json:"is_public,omitempty"`
}

// UpdateProfileRequest is the body for PATCH /api/v1/profiles/{id}
// Absent fields are left untouched
type UpdateProfileRequest struct {
	DisplayName      *string `json:"display_name,omitempty"`
	PrimaryCommander *string `json:"primary_commander,omitempty"`
	ColorIdentity    *string `json:"color_identity,omitempty"`
}

// UpdatePrivacyRequest is the body for PATCH /api/v1/profiles/{id}/privacy
type UpdatePrivacyRequest struct {
	IsPublic *bool `json:"is_public"`
}

// ShareProfileRequest is the body for POST /api/v1/profiles/{id}/shares
type ShareProfileRequest struct {
	Type             string `json:"type"`
	ExpiresInSeconds *int64 `json:"expires_in_seconds,omitempty"`
	MaxUses          *int   `json:"max_uses,omitempty"`
}

// RedeemShareRequest is the body for POST /api/v1/shares/redeem
type RedeemShareRequest struct {
	Code string `json:"code"`
}

// GamePlayerRequest describes one seat in a submitted game record.
// Exactly one of profile_id and guest_name identifies the participant.
type GamePlayerRequest struct {
	ProfileID      *string `json:"profile_id,omitempty"`
	GuestName      string  `json:"guest_name,omitempty"`
	DisplayName    string  `json:"display_name,omitempty"`
	Commander      string  `json:"commander,omitempty"`
	ColorIdentity  string  `json:"color_identity,omitempty"`
	Placement      int     `json:"placement"`
	FinalLife      int     `json:"final_life"`
	DamageDealt    int     `json:"damage_dealt"`
	DamageReceived int     `json:"damage_received"`
	TurnsSurvived  int     `json:"turns_survived"`
}

// RecordGameRequest is the body for POST /api/v1/games
type RecordGameRequest struct {
	Players   []GamePlayerRequest `json:"players"`
	TurnCount int                 `json:"turn_count,omitempty"`
	StartedAt *time.Time          `json:"started_at,omitempty"`
}
