package model

import "time"

// DeviceID is the opaque token identifying one client installation.
// It is minted client-side and never treated as a user credential.
type DeviceID string

// AccessType describes how a device relates to a profile
type AccessType string

const (
	AccessOwned  AccessType = "owned"
	AccessShared AccessType = "shared"
	AccessRecent AccessType = "recent"
)

// ValidAccessType reports whether s names a known access type
func ValidAccessType(s string) bool {
	switch AccessType(s) {
	case AccessOwned, AccessShared, AccessRecent:
		return true
	}
	return false
}

// DeviceProfile joins a device to a profile it owns, was granted, or
// recently used. At most one record exists per (device, profile) pair;
// writes are upserts keyed on that pair.
type DeviceProfile struct {
	DeviceID   DeviceID
	ProfileID  ProfileID
	AccessType AccessType
	IsOwner    bool
	SharedAt   time.Time
	LastUsed   time.Time
}

// AccessibleProfiles categorizes what a device can see
type AccessibleProfiles struct {
	Owned  []*Profile
	Shared []*Profile
	Recent []*Profile
	Public []*Profile // profiles marked public, owned by other devices
}
