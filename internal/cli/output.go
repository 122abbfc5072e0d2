package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Profile:
		o.printProfile(v)
	case ProfileList:
		o.printProfileList(v)
	case AccessibleProfiles:
		o.printAccessibleProfiles(v)
	case UsernameCheck:
		o.printUsernameCheck(v)
	case SharePermission:
		o.printSharePermission(v)
	case ShareCodeList:
		o.printShareCodeList(v)
	case CleanupResult:
		o.printCleanupResult(v)
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case ProfileStats:
		o.printProfileStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Profile response type (matches API)
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

// ProfileSummary response type
type ProfileSummary struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	DisplayName      string  `json:"display_name"`
	PrimaryCommander string  `json:"primary_commander,omitempty"`
	GamesPlayed      int     `json:"games_played"`
	Wins             int     `json:"wins"`
	WinRate          float64 `json:"win_rate"`
	IsPublic         bool    `json:"is_public"`
}

// ProfileList response type
type ProfileList struct {
	Profiles []ProfileSummary `json:"profiles"`
}

// AccessibleProfiles response type
type AccessibleProfiles struct {
	Owned  []Profile `json:"owned"`
	Shared []Profile `json:"shared"`
	Recent []Profile `json:"recent"`
	Public []Profile `json:"public"`
}

// UsernameCheck response type
type UsernameCheck struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// SharePermission response type
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
}

// ShareCodeInfo response type
type ShareCodeInfo struct {
	SharePermission
	IsExpired            bool     `json:"is_expired"`
	UsageRemaining       *int     `json:"usage_remaining,omitempty"`
	TimeRemainingSeconds *float64 `json:"time_remaining_seconds,omitempty"`
}

// ShareCodeList response type
type ShareCodeList struct {
	ShareCodes []ShareCodeInfo `json:"share_codes"`
}

// CleanupResult response type
type CleanupResult struct {
	Cleaned int `json:"cleaned"`
}

// GamePlayer response type
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

// Game response type
type Game struct {
	ID         string       `json:"id"`
	Players    []GamePlayer `json:"players"`
	TurnCount  int          `json:"turn_count"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// GameList response type
type GameList struct {
	Games []Game `json:"games"`
}

// CommanderStats response type
type CommanderStats struct {
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
}

// ProfileStats response type
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

// HealthResult response type
type HealthResult struct {
	Status        string `json:"status"`
	FingerprintOK bool   `json:"fingerprint_ok"`
}

func (o *Output) printProfile(p Profile) {
	fmt.Printf("Profile: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Username: %s\n", p.Username)
	fmt.Printf("Share Code: %s\n", p.DisplayShareCode)
	if p.PrimaryCommander != "" {
		fmt.Printf("Commander: %s", p.PrimaryCommander)
		if p.ColorIdentity != "" {
			fmt.Printf(" [%s]", p.ColorIdentity)
		}
		fmt.Println()
	}
	fmt.Printf("Record: %d games, %d wins (%.0f%%)\n", p.GamesPlayed, p.Wins, p.WinRate*100)
	if p.IsPublic {
		fmt.Println("Visibility: public")
	}
}

func (o *Output) printProfileSummary(p ProfileSummary) {
	fmt.Printf("  - %s (%s): %d games, %d wins (%.0f%%)\n",
		p.DisplayName, p.Username, p.GamesPlayed, p.Wins, p.WinRate*100)
}

func (o *Output) printProfileList(l ProfileList) {
	fmt.Printf("Profiles (%d):\n", len(l.Profiles))
	for _, p := range l.Profiles {
		o.printProfileSummary(p)
	}
}

func (o *Output) printAccessibleProfiles(a AccessibleProfiles) {
	sections := []struct {
		name     string
		profiles []Profile
	}{
		{"Owned", a.Owned},
		{"Shared", a.Shared},
		{"Recent", a.Recent},
		{"Public", a.Public},
	}
	for _, section := range sections {
		if len(section.profiles) == 0 {
			continue
		}
		fmt.Printf("%s (%d):\n", section.name, len(section.profiles))
		for _, p := range section.profiles {
			fmt.Printf("  - %s (%s) %s\n", p.DisplayName, p.Username, p.DisplayShareCode)
		}
	}
}

func (o *Output) printUsernameCheck(c UsernameCheck) {
	if c.Available {
		fmt.Printf("Username %q is available\n", c.Username)
	} else {
		fmt.Printf("Username %q is taken\n", c.Username)
	}
}

func (o *Output) printSharePermission(p SharePermission) {
	fmt.Printf("Share Code: %s\n", p.DisplayCode)
	fmt.Printf("Type: %s\n", p.Type)
	if p.ExpiresAt != nil {
		fmt.Printf("Expires: %s\n", p.ExpiresAt.Format(time.RFC3339))
	}
	if p.MaxUses != nil {
		fmt.Printf("Uses: %d/%d\n", p.UsedCount, *p.MaxUses)
	}
	if !p.IsActive {
		fmt.Println("Status: inactive")
	}
}

func (o *Output) printShareCodeList(l ShareCodeList) {
	fmt.Printf("Share Codes (%d):\n", len(l.ShareCodes))
	for _, info := range l.ShareCodes {
		status := "active"
		if !info.IsActive {
			status = "inactive"
		} else if info.IsExpired {
			status = "expired"
		}
		fmt.Printf("  - %s [%s] %s", info.DisplayCode, info.Type, status)
		if info.UsageRemaining != nil {
			fmt.Printf(", %d uses left", *info.UsageRemaining)
		}
		if info.TimeRemainingSeconds != nil {
			fmt.Printf(", %s left", (time.Duration(*info.TimeRemainingSeconds) * time.Second).String())
		}
		fmt.Println()
	}
}

func (o *Output) printCleanupResult(c CleanupResult) {
	fmt.Printf("Cleaned up %d expired share codes\n", c.Cleaned)
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Finished: %s\n", g.FinishedAt.Format(time.RFC3339))
	if g.TurnCount > 0 {
		fmt.Printf("Turns: %d\n", g.TurnCount)
	}
	fmt.Printf("Players (%d):\n", len(g.Players))
	for _, p := range g.Players {
		name := p.DisplayName
		if name == "" {
			name = p.GuestName
		}
		guest := ""
		if p.ProfileID == nil {
			guest = " [guest]"
		}
		fmt.Printf("  %d. %s%s", p.Placement, name, guest)
		if p.Commander != "" {
			fmt.Printf(" - %s", p.Commander)
		}
		fmt.Println()
	}
}

func (o *Output) printGameList(l GameList) {
	fmt.Printf("Games (%d):\n", len(l.Games))
	for _, g := range l.Games {
		winner := ""
		for _, p := range g.Players {
			if p.Placement == 1 {
				winner = p.DisplayName
				if winner == "" {
					winner = p.GuestName
				}
				break
			}
		}
		fmt.Printf("  - %s: %d players, won by %s (%s)\n",
			g.ID, len(g.Players), winner, g.FinishedAt.Format("2006-01-02"))
	}
}

func (o *Output) printProfileStats(s ProfileStats) {
	fmt.Printf("Stats for %s:\n", s.ProfileID)
	fmt.Printf("Games: %d, Wins: %d (%.0f%%)\n", s.GamesPlayed, s.Wins, s.WinRate*100)
	fmt.Printf("Average Placement: %.2f\n", s.AvgPlacement)
	fmt.Printf("Total Commander Damage: %d\n", s.TotalDamage)
	if len(s.ByCommander) > 0 {
		fmt.Println("By Commander:")
		for name, cs := range s.ByCommander {
			fmt.Printf("  - %s: %d games, %d wins\n", name, cs.GamesPlayed, cs.Wins)
		}
	}
	if len(s.ByColor) > 0 {
		fmt.Println("By Color Identity:")
		for colors, games := range s.ByColor {
			fmt.Printf("  - %s: %d games\n", colors, games)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if !h.FingerprintOK {
		fmt.Println("Warning: device fingerprint has changed since this device was registered")
	}
}
