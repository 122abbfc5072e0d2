package model

import "time"

// GameID uniquely identifies a recorded match
type GameID string

// LethalCommanderDamage is the commander-damage total at which a player
// is eliminated under Commander rules
const LethalCommanderDamage = 21

// IsLethalCommanderDamage reports whether dmg eliminates a player
func IsLethalCommanderDamage(dmg int) bool {
	return dmg >= LethalCommanderDamage
}

// Participant identifies who played a seat: either a stored profile or a
// one-off guest. Exactly one of the two constructors applies; the
// share/ownership machinery only ever sees profile participants.
type Participant struct {
	ProfileID *ProfileID
	GuestName string
}

// ProfileParticipant returns a participant backed by a profile
func ProfileParticipant(id ProfileID) Participant {
	return Participant{ProfileID: &id}
}

// GuestParticipant returns a participant with no stored profile
func GuestParticipant(displayName string) Participant {
	return Participant{GuestName: displayName}
}

// IsGuest reports whether the participant has no linked profile
func (p Participant) IsGuest() bool {
	return p.ProfileID == nil
}

// GamePlayer records one seat's result in a completed match
type GamePlayer struct {
	Participant    Participant
	DisplayName    string
	Commander      string
	ColorIdentity  ColorIdentity
	Placement      int // 1 = winner
	FinalLife      int
	DamageDealt    int // commander damage dealt across all opponents
	DamageReceived int
	TurnsSurvived  int
}

// Won reports whether this seat took first place
func (gp GamePlayer) Won() bool {
	return gp.Placement == 1
}

// Game is a persisted record of one completed match
type Game struct {
	ID         GameID
	Players    []GamePlayer
	TurnCount  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ProfileStats aggregates a profile's recorded games
type ProfileStats struct {
	ProfileID    ProfileID
	GamesPlayed  int
	Wins         int
	WinRate      float64
	AvgPlacement float64
	TotalDamage  int
	ByCommander  map[string]CommanderStats
	ByColor      map[string]int // color identity string -> games played
}

// CommanderStats aggregates games for one commander
type CommanderStats struct {
	GamesPlayed int
	Wins        int
}
