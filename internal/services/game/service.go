package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nickagee13/commandtrack/internal/dependencies/clock"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/storage"
)

// MaxPlayers is the Commander pod size limit
const MaxPlayers = 4

// Service records completed matches and keeps linked profiles' win
// counters in step
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new game Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// RecordParams holds the inputs for recording a finished match
type RecordParams struct {
	Players   []model.GamePlayer
	TurnCount int
	StartedAt time.Time
}

// RecordGame persists a completed match and bumps games_played / wins /
// win_rate on every linked profile. Guest seats carry no profile and
// update nothing. A profile counter that fails to update is logged and
// skipped; the recorded game is already the source of truth and stats
// are recomputable from it.
func (s *Service) RecordGame(ctx context.Context, params RecordParams) (*model.Game, error) {
	if len(params.Players) == 0 {
		return nil, model.ErrNoPlayers
	}
	if len(params.Players) > MaxPlayers {
		return nil, model.ErrTooManyPlayers
	}
	if !validPlacements(params.Players) {
		return nil, model.ErrInvalidPlacement
	}

	now := s.clock.Now()
	startedAt := params.StartedAt
	if startedAt.IsZero() {
		startedAt = now
	}

	game := &model.Game{
		ID:         model.GameID("game_" + uuid.NewString()),
		Players:    params.Players,
		TurnCount:  params.TurnCount,
		StartedAt:  startedAt,
		FinishedAt: now,
	}

	// DamageReceived aggregates all opponents, so a lethal total for the
	// winner is suspicious but not impossible. Flag it, don't reject it.
	for _, gp := range game.Players {
		if gp.Won() && model.IsLethalCommanderDamage(gp.DamageReceived) {
			s.logger.Warn("winner recorded lethal commander damage received",
				"game_id", game.ID,
				"damage_received", gp.DamageReceived)
		}
	}

	if err := s.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	for _, gp := range game.Players {
		if gp.Participant.ProfileID == nil {
			continue
		}
		if err := s.bumpProfileCounters(ctx, *gp.Participant.ProfileID, gp.Won(), now); err != nil {
			s.logger.Warn("profile counter update failed after game record",
				"game_id", game.ID,
				"profile_id", *gp.Participant.ProfileID,
				"error", err)
		}
	}

	return game, nil
}

// validPlacements checks that placements cover 1..n exactly once
func validPlacements(players []model.GamePlayer) bool {
	seen := make([]bool, len(players))
	for _, gp := range players {
		if gp.Placement < 1 || gp.Placement > len(players) || seen[gp.Placement-1] {
			return false
		}
		seen[gp.Placement-1] = true
	}
	return true
}

func (s *Service) bumpProfileCounters(ctx context.Context, id model.ProfileID, won bool, now time.Time) error {
	profile, err := s.storage.GetProfile(ctx, id)
	if err != nil {
		return err
	}

	profile.GamesPlayed++
	if won {
		profile.Wins++
	}
	profile.RecomputeWinRate()
	profile.UpdatedAt = now
	return s.storage.SaveProfile(ctx, profile)
}

// Get retrieves a recorded game by id
func (s *Service) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.storage.GetGame(ctx, id)
}

// ListForProfile returns a profile's recorded games, most recently
// finished first
func (s *Service) ListForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.Game, error) {
	return s.storage.ListGamesForProfile(ctx, profileID)
}
