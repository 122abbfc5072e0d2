package postgres

import (
	"time"

	"github.com/nickagee13/commandtrack/internal/model"
)

// Row types mirror the relational schema. Domain types stay free of
// persistence tags; conversion happens at this boundary.

type profileRow struct {
	ID               string `gorm:"primaryKey"`
	Username         string `gorm:"uniqueIndex;not null"`
	DisplayName      string `gorm:"not null"`
	ShareCode        string `gorm:"uniqueIndex;not null"`
	PrimaryCommander string
	ColorIdentity    string
	GamesPlayed      int     `gorm:"not null;default:0"`
	Wins             int     `gorm:"not null;default:0"`
	WinRate          float64 `gorm:"not null;default:0"`
	IsPublic         bool    `gorm:"not null;default:false"`
	DeviceID         string  `gorm:"index;not null"`
	IsActive         bool    `gorm:"index;not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time `gorm:"index"`
}

func (profileRow) TableName() string { return "profiles" }

func profileToRow(p *model.Profile) *profileRow {
	return &profileRow{
		ID:               string(p.ID),
		Username:         p.Username,
		DisplayName:      p.DisplayName,
		ShareCode:        string(p.ShareCode),
		PrimaryCommander: p.PrimaryCommander,
		ColorIdentity:    p.ColorIdentity.String(),
		GamesPlayed:      p.GamesPlayed,
		Wins:             p.Wins,
		WinRate:          p.WinRate,
		IsPublic:         p.IsPublic,
		DeviceID:         string(p.DeviceID),
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (r *profileRow) toModel() *model.Profile {
	ci, _ := model.ParseColorIdentity(r.ColorIdentity)
	return &model.Profile{
		ID:               model.ProfileID(r.ID),
		Username:         r.Username,
		DisplayName:      r.DisplayName,
		ShareCode:        model.ShareCode(r.ShareCode),
		PrimaryCommander: r.PrimaryCommander,
		ColorIdentity:    ci,
		GamesPlayed:      r.GamesPlayed,
		Wins:             r.Wins,
		WinRate:          r.WinRate,
		IsPublic:         r.IsPublic,
		DeviceID:         model.DeviceID(r.DeviceID),
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type deviceProfileRow struct {
	DeviceID   string `gorm:"primaryKey"`
	ProfileID  string `gorm:"primaryKey;index"`
	AccessType string `gorm:"not null"`
	IsOwner    bool   `gorm:"not null;default:false"`
	SharedAt   time.Time
	LastUsed   time.Time `gorm:"index"`
}

func (deviceProfileRow) TableName() string { return "device_profiles" }

func deviceProfileToRow(dp *model.DeviceProfile) *deviceProfileRow {
	return &deviceProfileRow{
		DeviceID:   string(dp.DeviceID),
		ProfileID:  string(dp.ProfileID),
		AccessType: string(dp.AccessType),
		IsOwner:    dp.IsOwner,
		SharedAt:   dp.SharedAt,
		LastUsed:   dp.LastUsed,
	}
}

func (r *deviceProfileRow) toModel() *model.DeviceProfile {
	return &model.DeviceProfile{
		DeviceID:   model.DeviceID(r.DeviceID),
		ProfileID:  model.ProfileID(r.ProfileID),
		AccessType: model.AccessType(r.AccessType),
		IsOwner:    r.IsOwner,
		SharedAt:   r.SharedAt,
		LastUsed:   r.LastUsed,
	}
}

type sharePermissionRow struct {
	ID        string `gorm:"primaryKey"`
	ProfileID string `gorm:"index;not null"`
	Code      string `gorm:"uniqueIndex;not null"`
	ShareType string `gorm:"not null"`
	ExpiresAt *time.Time
	MaxUses   *int
	UsedCount int  `gorm:"not null;default:0"`
	IsActive  bool `gorm:"index;not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sharePermissionRow) TableName() string { return "share_permissions" }

func permissionToRow(p *model.SharePermission) *sharePermissionRow {
	return &sharePermissionRow{
		ID:        string(p.ID),
		ProfileID: string(p.ProfileID),
		Code:      string(p.Code),
		ShareType: string(p.Type),
		ExpiresAt: p.ExpiresAt,
		MaxUses:   p.MaxUses,
		UsedCount: p.UsedCount,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *sharePermissionRow) toModel() *model.SharePermission {
	return &model.SharePermission{
		ID:        model.PermissionID(r.ID),
		ProfileID: model.ProfileID(r.ProfileID),
		Code:      model.ShareCode(r.Code),
		Type:      model.ShareType(r.ShareType),
		ExpiresAt: r.ExpiresAt,
		MaxUses:   r.MaxUses,
		UsedCount: r.UsedCount,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type gameRow struct {
	ID         string `gorm:"primaryKey"`
	TurnCount  int    `gorm:"not null;default:0"`
	StartedAt  time.Time
	FinishedAt time.Time       `gorm:"index"`
	Players    []gamePlayerRow `gorm:"foreignKey:GameID"`
}

func (gameRow) TableName() string { return "games" }

type gamePlayerRow struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	GameID         string  `gorm:"index;not null"`
	ProfileID      *string `gorm:"index"` // null for guests
	DisplayName    string  `gorm:"not null"`
	Commander      string
	ColorIdentity  string
	Placement      int `gorm:"not null"`
	FinalLife      int
	DamageDealt    int
	DamageReceived int
	TurnsSurvived  int
}

func (gamePlayerRow) TableName() string { return "game_players" }

func gameToRow(g *model.Game) *gameRow {
	row := &gameRow{
		ID:         string(g.ID),
		TurnCount:  g.TurnCount,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
	for _, gp := range g.Players {
		pr := gamePlayerRow{
			GameID:         string(g.ID),
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
			pr.ProfileID = &id
		}
		row.Players = append(row.Players, pr)
	}
	return row
}

func (r *gameRow) toModel() *model.Game {
	g := &model.Game{
		ID:         model.GameID(r.ID),
		TurnCount:  r.TurnCount,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	for _, pr := range r.Players {
		ci, _ := model.ParseColorIdentity(pr.ColorIdentity)
		gp := model.GamePlayer{
			DisplayName:    pr.DisplayName,
			Commander:      pr.Commander,
			ColorIdentity:  ci,
			Placement:      pr.Placement,
			FinalLife:      pr.FinalLife,
			DamageDealt:    pr.DamageDealt,
			DamageReceived: pr.DamageReceived,
			TurnsSurvived:  pr.TurnsSurvived,
		}
		if pr.ProfileID != nil {
			gp.Participant = model.ProfileParticipant(model.ProfileID(*pr.ProfileID))
		} else {
			gp.Participant = model.GuestParticipant(pr.DisplayName)
		}
		g.Players = append(g.Players, gp)
	}
	return g
}
