package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nickagee13/commandtrack/internal/dependencies/mocks"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/storage/memory"
	"github.com/nickagee13/commandtrack/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedProfile(id model.ProfileID, username string) *model.Profile {
	p := &model.Profile{
		ID:        id,
		Username:  username,
		ShareCode: model.ShareCode("BLT" + string(id[len(id)-3:])),
		IsActive:  true,
	}
	s.Require().NoError(s.storage.CreateProfile(s.ctx, p))
	return p
}

func (s *ServiceSuite) TestRecordGamePersists() {
	s.seedProfile("profile-101", "alice")

	game, err := s.service.RecordGame(s.ctx, RecordParams{
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("profile-101"), DisplayName: "alice", Placement: 1},
			{Participant: model.GuestParticipant("Dave"), DisplayName: "Dave", Placement: 2},
		},
		TurnCount: 9,
	})
	s.Require().NoError(err)

	s.NotEmpty(game.ID)
	s.Equal(s.clock.Now(), game.FinishedAt)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(stored.Players, 2)
}

func (s *ServiceSuite) TestRecordGameBumpsProfileCounters() {
	s.seedProfile("profile-101", "alice")
	s.seedProfile("profile-102", "bobby")

	_, err := s.service.RecordGame(s.ctx, RecordParams{
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("profile-101"), Placement: 1},
			{Participant: model.ProfileParticipant("profile-102"), Placement: 2},
		},
	})
	s.Require().NoError(err)

	winner, _ := s.storage.GetProfile(s.ctx, "profile-101")
	s.Equal(1, winner.GamesPlayed)
	s.Equal(1, winner.Wins)
	s.InDelta(1.0, winner.WinRate, 0.001)

	loser, _ := s.storage.GetProfile(s.ctx, "profile-102")
	s.Equal(1, loser.GamesPlayed)
	s.Zero(loser.Wins)
	s.Zero(loser.WinRate)
}

func (s *ServiceSuite) TestRecordGameGuestsUpdateNothing() {
	game, err := s.service.RecordGame(s.ctx, RecordParams{
		Players: []model.GamePlayer{
			{Participant: model.GuestParticipant("Dave"), Placement: 1},
			{Participant: model.GuestParticipant("Erin"), Placement: 2},
		},
	})
	s.Require().NoError(err)
	s.NotEmpty(game.ID)
}

func (s *ServiceSuite) TestRecordGameSurvivesMissingProfile() {
	// A seat referencing a profile that was since hard-removed must not
	// fail the record; counters are simply skipped
	game, err := s.service.RecordGame(s.ctx, RecordParams{
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("ghost"), Placement: 1},
		},
	})
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, game.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestRecordGameRejectsEmpty() {
	_, err := s.service.RecordGame(s.ctx, RecordParams{})
	s.ErrorIs(err, model.ErrNoPlayers)
}

func (s *ServiceSuite) TestRecordGameRejectsOversizedPod() {
	players := make([]model.GamePlayer, 5)
	for i := range players {
		players[i] = model.GamePlayer{
			Participant: model.GuestParticipant("guest"),
			Placement:   i + 1,
		}
	}

	_, err := s.service.RecordGame(s.ctx, RecordParams{Players: players})
	s.ErrorIs(err, model.ErrTooManyPlayers)
}

func (s *ServiceSuite) TestRecordGameRejectsBadPlacements() {
	cases := map[string][]int{
		"duplicate": {1, 1},
		"gap":       {1, 3},
		"zero":      {0, 1},
	}
	for name, placements := range cases {
		players := make([]model.GamePlayer, len(placements))
		for i, placement := range placements {
			players[i] = model.GamePlayer{
				Participant: model.GuestParticipant("guest"),
				Placement:   placement,
			}
		}

		_, err := s.service.RecordGame(s.ctx, RecordParams{Players: players})
		s.ErrorIs(err, model.ErrInvalidPlacement, name)
	}
}

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestListForProfile() {
	s.seedProfile("profile-101", "alice")

	first, err := s.service.RecordGame(s.ctx, RecordParams{
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("profile-101"), Placement: 1},
		},
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	second, err := s.service.RecordGame(s.ctx, RecordParams{
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("profile-101"), Placement: 1},
		},
	})
	s.Require().NoError(err)

	games, err := s.service.ListForProfile(s.ctx, "profile-101")
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(second.ID, games[0].ID)
	s.Equal(first.ID, games[1].ID)
}
