package response

import (
	"time"

	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/share"
	"github.com/nickagee13/commandtrack/internal/sharecode"
)

// Profile is the full profile representation
type Profile struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name"`
	ShareCode        string    `json:"share_code"`
	DisplayShareCode string    `json:"display_share_code"`
	PrimaryCommander string    `json:"primary_commander,omitempty"`
	ColorIdentity    string    `json:"color_identity,omitempty"`
	GamesPlayed      int       `json:"games_played"`
	Wins             int       `json:"wins"`
	WinRate          float64   `json:"win_rate"`
	IsPublic         bool      `json:"is_public"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProfileFromModel converts a model profile to its response form
func ProfileFromModel(p *model.Profile) Profile {
	return Profile{
		ID:               string(p.ID),
		Username:         p.Username,
		DisplayName:      p.DisplayName,
		ShareCode:        string(p.ShareCode),
		DisplayShareCode: sharecode.Format(p.ShareCode),
		PrimaryCommander: p.PrimaryCommander,
		ColorIdentity:    p.ColorIdentity.String(),
		GamesPlayed:      p.GamesPlayed,
		Wins:             p.Wins,
		WinRate:          p.WinRate,
		IsPublic:         p.IsPublic,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ProfilesFromModels converts a slice of model profiles
func ProfilesFromModels(profiles []*model.Profile) []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = ProfileFromModel(p)
	}
	return out
}

// ProfileSummary is the lightweight listing representation
type ProfileSummary struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name"`
	PrimaryCommander string    `json:"primary_commander,omitempty"`
	GamesPlayed      int       `json:"games_played"`
	Wins             int       `json:"wins"`
	WinRate          float64   `json:"win_rate"`
	IsPublic         bool      `json:"is_public"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProfileSummaryFromModel converts a model summary to its response form
func ProfileSummaryFromModel(s model.ProfileSummary) ProfileSummary {
	return ProfileSummary{
		ID:               string(s.ID),
		Username:         s.Username,
		DisplayName:      s.DisplayName,
		PrimaryCommander: s.PrimaryCommander,
		GamesPlayed:      s.GamesPlayed,
		Wins:             s.Wins,
		WinRate:          s.WinRate,
		IsPublic:         s.IsPublic,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ProfileListResponse wraps a profile listing
type ProfileListResponse struct {
	Profiles []ProfileSummary `json:"profiles"`
}

// ProfileListFromModels converts listing summaries
func ProfileListFromModels(summaries []model.ProfileSummary) ProfileListResponse {
	out := make([]ProfileSummary, len(summaries))
	for i, s := range summaries {
		out[i] = ProfileSummaryFromModel(s)
	}
	return ProfileListResponse{Profiles: out}
}

// AccessibleProfiles buckets what the calling device can see
type AccessibleProfiles struct {
	Owned  []Profile `json:"owned"`
	Shared []Profile `json:"shared"`
	Recent []Profile `json:"recent"`
	Public []Profile `json:"public"`
}

// AccessibleProfilesFromModel converts the bucketed listing
func AccessibleProfilesFromModel(a *model.AccessibleProfiles) AccessibleProfiles {
	return AccessibleProfiles{
		Owned:  ProfilesFromModels(a.Owned),
		Shared: ProfilesFromModels(a.Shared),
		Recent: ProfilesFromModels(a.Recent),
		Public: ProfilesFromModels(a.Public),
	}
}

// UsernameCheckResponse reports username availability
type UsernameCheckResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// SharePermission is the share permission representation
type SharePermission struct {
	ID          string     `json:"id"`
	ProfileID   string     `json:"profile_id"`
	Code        string     `json:"code"`
	DisplayCode string     `json:"display_code"`
	Type        string     `json:"type"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	UsedCount   int        `json:"used_count"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SharePermissionFromModel converts a model permission to its response form
func SharePermissionFromModel(p *model.SharePermission) SharePermission {
	return SharePermission{
		ID:          string(p.ID),
		ProfileID:   string(p.ProfileID),
		Code:        string(p.Code),
		DisplayCode: sharecode.Format(p.Code),
		Type:        string(p.Type),
		ExpiresAt:   p.ExpiresAt,
		MaxUses:     p.MaxUses,
		UsedCount:   p.UsedCount,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

// ShareCodeInfo annotates a permission for owner-facing listings
type ShareCodeInfo struct {
	SharePermission
	IsExpired            bool     `json:"is_expired"`
	UsageRemaining       *int     `json:"usage_remaining,omitempty"`
	TimeRemainingSeconds *float64 `json:"time_remaining_seconds,omitempty"`
}

// ShareCodeInfoFromService converts an annotated permission
func ShareCodeInfoFromService(info share.ShareCodeInfo) ShareCodeInfo {
	out := ShareCodeInfo{
		SharePermission: SharePermissionFromModel(info.Permission),
		IsExpired:       info.IsExpired,
		UsageRemaining:  info.UsageRemaining,
	}
	if info.TimeRemaining != nil {
		seconds := info.TimeRemaining.Seconds()
		out.TimeRemainingSeconds = &seconds
	}
	return out
}

// ShareCodeListResponse wraps an owner's share code listing
type ShareCodeListResponse struct {
	ShareCodes []ShareCodeInfo `json:"share_codes"`
}

// ShareCodeListFromService converts annotated permissions
func ShareCodeListFromService(infos []share.ShareCodeInfo) ShareCodeListResponse {
	out := make([]ShareCodeInfo, len(infos))
	for i, info := range infos {
		out[i] = ShareCodeInfoFromService(info)
	}
	return ShareCodeListResponse{ShareCodes: out}
}

// CleanupResponse reports how many codes a cleanup pass retired
type CleanupResponse struct {
	Cleaned int `json:"cleaned"`
}

// GamePlayer records one seat in a game response
type GamePlayer struct {
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

// Game is the recorded match representation
type Game struct {
	ID         string       `json:"id"`
	Players    []GamePlayer `json:"players"`
	TurnCount  int          `json:"turn_count"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// GameFromModel converts a model game to its response form
func GameFromModel(g *model.Game) Game {
	players := make([]GamePlayer, len(g.Players))
	for i, gp := range g.Players {
		players[i] = GamePlayer{
			GuestName:      gp.Participant.GuestName,
			DisplayName:    gp.DisplayName,
			Commander:      gp.Commander,
			ColorIdentity:  gp.ColorIdentity.String(),
			Placement:      gp.Placement,
			FinalLife:      gp.FinalLife,
			DamageDealt:    gp.DamageDealt,
			DamageReceived: gp.DamageReceived,
			TurnsSurvived:  gp.TurnsSurvived,
		}
		if gp.Participant.ProfileID != nil {
			id := string(*gp.Participant.ProfileID)
			players[i].ProfileID = &id
		}
	}
	return Game{
		ID:         string(g.ID),
		Players:    players,
		TurnCount:  g.TurnCount,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
}

// GameListResponse wraps a profile's game history
type GameListResponse struct {
	Games []Game `json:"games"`
}

// GameListFromModels converts a slice of model games
func GameListFromModels(games []*model.Game) GameListResponse {
	out := make([]Game, len(games))
	for i, g := range games {
		out[i] = GameFromModel(g)
	}
	return GameListResponse{Games: out}
}

// CommanderStats aggregates games for one commander
type CommanderStats struct {
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
}

// ProfileStats is the aggregated stats representation
type ProfileStats struct {
	ProfileID    string                    `json:"profile_id"`
	GamesPlayed  int                       `json:"games_played"`
	Wins         int                       `json:"wins"`
	WinRate      float64                   `json:"win_rate"`
	AvgPlacement float64                   `json:"avg_placement"`
	TotalDamage  int                       `json:"total_damage"`
	ByCommander  map[string]CommanderStats `json:"by_commander,omitempty"`
	ByColor      map[string]int            `json:"by_color,omitempty"`
}

// ProfileStatsFromModel converts aggregated stats to their response form
func ProfileStatsFromModel(s *model.ProfileStats) ProfileStats {
	byCommander := make(map[string]CommanderStats, len(s.ByCommander))
	for name, cs := range s.ByCommander {
		byCommander[name] = CommanderStats{GamesPlayed: cs.GamesPlayed, Wins: cs.Wins}
	}
	return ProfileStats{
		ProfileID:    string(s.ProfileID),
		GamesPlayed:  s.GamesPlayed,
		Wins:         s.Wins,
		WinRate:      s.WinRate,
		AvgPlacement: s.AvgPlacement,
		TotalDamage:  s.TotalDamage,
		ByCommander:  byCommander,
		ByColor:      s.ByColor,
	}
}
