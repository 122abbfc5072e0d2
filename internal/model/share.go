package model

import "time"

// PermissionID uniquely identifies a share permission
type PermissionID string

// ShareType governs how a minted share code expires
type ShareType string

const (
	// ShareTemporary expires at a fixed time
	ShareTemporary ShareType = "temporary"
	// SharePermanent never expires by time or use count
	SharePermanent ShareType = "permanent"
	// ShareGameSession is intended for one game setup phase
	ShareGameSession ShareType = "game_session"
)

// ValidShareType reports whether s names a known share type
func ValidShareType(s string) bool {
	switch ShareType(s) {
	case ShareTemporary, SharePermanent, ShareGameSession:
		return true
	}
	return false
}

// SharePermission is a capability granting shared access to one profile.
// Each permission mints its own code, distinct from the profile's permanent
// share code. UsedCount only increases; IsActive only transitions true->false.
type SharePermission struct {
	ID        PermissionID
	ProfileID ProfileID
	Code      ShareCode
	Type      ShareType
	ExpiresAt *time.Time // non-nil only for temporary permissions
	MaxUses   *int
	UsedCount int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether a time limit exists and has passed
func (p *SharePermission) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

// Exhausted reports whether a use limit exists and has been reached
func (p *SharePermission) Exhausted() bool {
	return p.MaxUses != nil && p.UsedCount >= *p.MaxUses
}

// Usable reports whether a redemption attempt could succeed right now
func (p *SharePermission) Usable(now time.Time) bool {
	return p.IsActive && !p.Expired(now) && !p.Exhausted()
}

// UsageRemaining returns the redemptions left, or nil when unlimited
func (p *SharePermission) UsageRemaining() *int {
	if p.MaxUses == nil {
		return nil
	}
	left := *p.MaxUses - p.UsedCount
	if left < 0 {
		left = 0
	}
	return &left
}

// TimeRemaining returns the duration until expiry, or nil when untimed.
// Returns zero once expired.
func (p *SharePermission) TimeRemaining(now time.Time) *time.Duration {
	if p.ExpiresAt == nil {
		return nil
	}
	d := p.ExpiresAt.Sub(now)
	if d < 0 {
		d = 0
	}
	return &d
}
