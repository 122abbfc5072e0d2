package model

import (
	"regexp"
	"strings"
	"time"
)

// ProfileID uniquely identifies a profile across the system
type ProfileID string

// ShareCode is a human-enterable 6-character code (3 consonants + 3 digits)
type ShareCode string

// Username length bounds
const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// NormalizeUsername lowercases and trims a username for storage and comparison
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidUsername reports whether a normalized username satisfies the
// 3-20 char, lowercase alphanumeric + underscore grammar
func ValidUsername(username string) bool {
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength {
		return false
	}
	return usernamePattern.MatchString(username)
}

// Profile is a named identity a player can use across games.
// Username and ShareCode are globally unique; deletion is a soft delete
// (IsActive flips false, the row stays for history).
type Profile struct {
	ID               ProfileID
	Username         string // stored lowercase
	DisplayName      string
	ShareCode        ShareCode
	PrimaryCommander string
	ColorIdentity    ColorIdentity
	GamesPlayed      int
	Wins             int
	WinRate          float64
	IsPublic         bool
	DeviceID         DeviceID // device that created the profile
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RecomputeWinRate refreshes the derived win rate from the counters
func (p *Profile) RecomputeWinRate() {
	if p.GamesPlayed == 0 {
		p.WinRate = 0
		return
	}
	p.WinRate = float64(p.Wins) / float64(p.GamesPlayed)
}

// ProfileSummary is the lightweight projection returned by listings
type ProfileSummary struct {
	ID               ProfileID
	Username         string
	DisplayName      string
	PrimaryCommander string
	GamesPlayed      int
	Wins             int
	WinRate          float64
	IsPublic         bool
	UpdatedAt        time.Time
}

// Summary projects a profile into its listing form
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:               p.ID,
		Username:         p.Username,
		DisplayName:      p.DisplayName,
		PrimaryCommander: p.PrimaryCommander,
		GamesPlayed:      p.GamesPlayed,
		Wins:             p.Wins,
		WinRate:          p.WinRate,
		IsPublic:         p.IsPublic,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ProfileUpdate holds partial profile edits; nil fields are left untouched
type ProfileUpdate struct {
	DisplayName      *string
	PrimaryCommander *string
	ColorIdentity    *ColorIdentity
}
