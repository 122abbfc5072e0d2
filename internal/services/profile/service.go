package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nickagee13/commandtrack/internal/dependencies/clock"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/sharecode"
	"github.com/nickagee13/commandtrack/internal/storage"
)

const (
	// DefaultListLimit caps listings when the caller does not specify one
	DefaultListLimit = 50

	// maxCodeAttempts bounds retries when a minted share code collides
	// with one already stored
	maxCodeAttempts = 5
)

// Service manages profile lifecycle: creation with unique username and
// share code, lookups, partial updates and soft deletion
type Service struct {
	storage   storage.Storage
	generator *sharecode.Generator
	clock     clock.Clock
}

// New creates a new profile Service
func New(storage storage.Storage, generator *sharecode.Generator, clock clock.Clock) *Service {
	return &Service{
		storage:   storage,
		generator: generator,
		clock:     clock,
	}
}

// CreateParams holds the inputs for creating a profile
type CreateParams struct {
	Username         string
	DisplayName      string
	PrimaryCommander string
	ColorIdentity    model.ColorIdentity
	IsPublic         bool
	DeviceID         model.DeviceID
}

// Create mints a new profile. The username is normalized to lowercase
// before validation and storage, so uniqueness is case-insensitive. The
// share code is generated here; a storage-level collision triggers a
// fresh code, up to maxCodeAttempts draws.
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Profile, error) {
	username := model.NormalizeUsername(params.Username)
	if !model.ValidUsername(username) {
		return nil, model.ErrInvalidUsername
	}

	displayName := params.DisplayName
	if displayName == "" {
		displayName = username
	}

	now := s.clock.Now()

	var lastErr error
	for i := 0; i < maxCodeAttempts; i++ {
		profile := &model.Profile{
			ID:               model.ProfileID("profile_" + uuid.NewString()),
			Username:         username,
			DisplayName:      displayName,
			ShareCode:        s.generator.GenerateSafe(sharecode.DefaultSafeAttempts),
			PrimaryCommander: params.PrimaryCommander,
			ColorIdentity:    params.ColorIdentity,
			IsPublic:         params.IsPublic,
			DeviceID:         params.DeviceID,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		err := s.storage.CreateProfile(ctx, profile)
		if err == nil {
			return profile, nil
		}
		if errors.Is(err, model.ErrShareCodeTaken) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// Get retrieves a profile by id
func (s *Service) Get(ctx context.Context, id model.ProfileID) (*model.Profile, error) {
	return s.storage.GetProfile(ctx, id)
}

// GetByShareCode looks up a profile by its permanent share code. Input
// that does not parse as a code is rejected before hitting storage, so
// malformed codes and unknown codes surface as distinct errors.
func (s *Service) GetByShareCode(ctx context.Context, input string) (*model.Profile, error) {
	code, ok := sharecode.Parse(input)
	if !ok {
		return nil, model.ErrInvalidShareCode
	}
	return s.storage.GetProfileByShareCode(ctx, code)
}

// Update applies a partial edit; nil fields are left untouched
func (s *Service) Update(ctx context.Context, id model.ProfileID, update model.ProfileUpdate) (*model.Profile, error) {
	profile, err := s.storage.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		profile.DisplayName = *update.DisplayName
	}
	if update.PrimaryCommander != nil {
		profile.PrimaryCommander = *update.PrimaryCommander
	}
	if update.ColorIdentity != nil {
		profile.ColorIdentity = *update.ColorIdentity
	}
	profile.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// List returns active profiles as listing summaries, most recently
// updated first
func (s *Service) List(ctx context.Context, limit int) ([]model.ProfileSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	profiles, err := s.storage.ListProfiles(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ProfileSummary, len(profiles))
	for i, p := range profiles {
		summaries[i] = p.Summary()
	}
	return summaries, nil
}

// IsUsernameAvailable reports whether the normalized username is free.
// Invalid usernames are never available.
func (s *Service) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	normalized := model.NormalizeUsername(username)
	if !model.ValidUsername(normalized) {
		return false, nil
	}

	_, err := s.storage.GetProfileByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// Delete soft-deletes a profile: the record stays for game history but
// disappears from listings and lookups by the services
func (s *Service) Delete(ctx context.Context, id model.ProfileID) error {
	profile, err := s.storage.GetProfile(ctx, id)
	if err != nil {
		return err
	}

	profile.IsActive = false
	profile.UpdatedAt = s.clock.Now()
	return s.storage.SaveProfile(ctx, profile)
}

// Stats aggregates a profile's recorded games into per-commander and
// per-color breakdowns alongside the headline totals
func (s *Service) Stats(ctx context.Context, id model.ProfileID) (*model.ProfileStats, error) {
	if _, err := s.storage.GetProfile(ctx, id); err != nil {
		return nil, err
	}

	games, err := s.storage.ListGamesForProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &model.ProfileStats{
		ProfileID:   id,
		ByCommander: make(map[string]model.CommanderStats),
		ByColor:     make(map[string]int),
	}

	placementSum := 0
	for _, g := range games {
		for _, gp := range g.Players {
			if gp.Participant.ProfileID == nil || *gp.Participant.ProfileID != id {
				continue
			}

			stats.GamesPlayed++
			placementSum += gp.Placement
			stats.TotalDamage += gp.DamageDealt
			if gp.Won() {
				stats.Wins++
			}

			if gp.Commander != "" {
				cs := stats.ByCommander[gp.Commander]
				cs.GamesPlayed++
				if gp.Won() {
					cs.Wins++
				}
				stats.ByCommander[gp.Commander] = cs
			}
			stats.ByColor[gp.ColorIdentity.String()]++
		}
	}

	if stats.GamesPlayed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.GamesPlayed)
		stats.AvgPlacement = float64(placementSum) / float64(stats.GamesPlayed)
	}
	return stats, nil
}
