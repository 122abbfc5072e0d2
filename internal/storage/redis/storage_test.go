package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/nickagee13/commandtrack/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) makeProfile(id, username, code string) *model.Profile {
	return &model.Profile{
		ID:          model.ProfileID(id),
		Username:    username,
		DisplayName: username,
		ShareCode:   model.ShareCode(code),
		DeviceID:    "device-1",
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// Profile tests

func (s *StorageSuite) TestCreateAndGetProfile() {
	profile := s.makeProfile("profile-1", "alice", "BLT423")

	err := s.storage.CreateProfile(s.ctx, profile)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetProfile(s.ctx, "profile-1")
	s.Require().NoError(err)
	s.Equal(profile.ID, retrieved.ID)
	s.Equal(profile.Username, retrieved.Username)
}

func (s *StorageSuite) TestGetProfileNotFound() {
	_, err := s.storage.GetProfile(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestCreateProfileUsernameTaken() {
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-1", "alice", "BLT423"))

	err := s.storage.CreateProfile(s.ctx, s.makeProfile("profile-2", "alice", "CMD777"))
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *StorageSuite) TestCreateProfileShareCodeTaken() {
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-1", "alice", "BLT423"))

	err := s.storage.CreateProfile(s.ctx, s.makeProfile("profile-2", "bob", "BLT423"))
	s.ErrorIs(err, model.ErrShareCodeTaken)
}

func (s *StorageSuite) TestShareCodeCollisionReleasesUsername() {
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-1", "alice", "BLT423"))

	err := s.storage.CreateProfile(s.ctx, s.makeProfile("profile-2", "bob", "BLT423"))
	s.ErrorIs(err, model.ErrShareCodeTaken)

	// "bob" must be available again after the failed create
	err = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-3", "bob", "CMD777"))
	s.NoError(err)
}

func (s *StorageSuite) TestGetProfileByUsername() {
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-1", "alice", "BLT423"))

	retrieved, err := s.storage.GetProfileByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("profile-1", string(retrieved.ID))
}

func (s *StorageSuite) TestGetProfileByShareCode() {
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-1", "alice", "BLT423"))

	retrieved, err := s.storage.GetProfileByShareCode(s.ctx, "BLT423")
	s.Require().NoError(err)
	s.Equal("profile-1", string(retrieved.ID))
}

func (s *StorageSuite) TestSaveProfileNotFound() {
	err := s.storage.SaveProfile(s.ctx, s.makeProfile("profile-1", "alice", "BLT423"))
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestListProfilesOrderedByActivity() {
	older := s.makeProfile("profile-1", "alice", "BLT423")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := s.makeProfile("profile-2", "bob", "CMD777")

	_ = s.storage.CreateProfile(s.ctx, older)
	_ = s.storage.CreateProfile(s.ctx, newer)

	profiles, err := s.storage.ListProfiles(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(profiles, 2)
	s.Equal("bob", profiles[0].Username)
	s.Equal("alice", profiles[1].Username)
}

func (s *StorageSuite) TestListProfilesLimit() {
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-1", "alice", "BLT423"))
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-2", "bob", "CMD777"))
	_ = s.storage.CreateProfile(s.ctx, s.makeProfile("profile-3", "carol", "PWR123"))

	profiles, err := s.storage.ListProfiles(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(profiles, 2)
}

func (s *StorageSuite) TestSaveProfileRemovesInactiveFromListing() {
	profile := s.makeProfile("profile-1", "alice", "BLT423")
	_ = s.storage.CreateProfile(s.ctx, profile)

	profile.IsActive = false
	err := s.storage.SaveProfile(s.ctx, profile)
	s.Require().NoError(err)

	profiles, err := s.storage.ListProfiles(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(profiles)
}

func (s *StorageSuite) TestListPublicProfiles() {
	public := s.makeProfile("profile-1", "alice", "BLT423")
	public.IsPublic = true
	private := s.makeProfile("profile-2", "bob", "CMD777")

	_ = s.storage.CreateProfile(s.ctx, public)
	_ = s.storage.CreateProfile(s.ctx, private)

	profiles, err := s.storage.ListPublicProfiles(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(profiles, 1)
	s.Equal("alice", profiles[0].Username)
}

func (s *StorageSuite) TestPrivacyToggleUpdatesPublicListing() {
	profile := s.makeProfile("profile-1", "alice", "BLT423")
	profile.IsPublic = true
	_ = s.storage.CreateProfile(s.ctx, profile)

	profile.IsPublic = false
	err := s.storage.SaveProfile(s.ctx, profile)
	s.Require().NoError(err)

	profiles, err := s.storage.ListPublicProfiles(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(profiles)
}

func (s *StorageSuite) TestDeleteProfileOwnedBy() {
	profile := s.makeProfile("profile-1", "alice", "BLT423")
	_ = s.storage.CreateProfile(s.ctx, profile)

	err := s.storage.DeleteProfileOwnedBy(s.ctx, "profile-1", "device-1")
	s.Require().NoError(err)

	retrieved, err := s.storage.GetProfile(s.ctx, "profile-1")
	s.Require().NoError(err)
	s.False(retrieved.IsActive)

	profiles, err := s.storage.ListProfiles(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(profiles)
}

func (s *StorageSuite) TestDeleteProfileOwnedByWrongDevice() {
	profile := s.makeProfile("profile-1", "alice", "BLT423")
	_ = s.storage.CreateProfile(s.ctx, profile)

	err := s.storage.DeleteProfileOwnedBy(s.ctx, "profile-1", "device-2")
	s.ErrorIs(err, model.ErrNotOwner)

	retrieved, err := s.storage.GetProfile(s.ctx, "profile-1")
	s.Require().NoError(err)
	s.True(retrieved.IsActive)
}

func (s *StorageSuite) TestDeleteProfileOwnedByNotFound() {
	err := s.storage.DeleteProfileOwnedBy(s.ctx, "nonexistent", "device-1")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

// Device access tests

func (s *StorageSuite) TestUpsertAndGetDeviceProfile() {
	dp := &model.DeviceProfile{
		DeviceID:   "device-1",
		ProfileID:  "profile-1",
		AccessType: model.AccessOwned,
		IsOwner:    true,
		LastUsed:   time.Now(),
	}

	err := s.storage.UpsertDeviceProfile(s.ctx, dp)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetDeviceProfile(s.ctx, "device-1", "profile-1")
	s.Require().NoError(err)
	s.Equal(model.AccessOwned, retrieved.AccessType)
	s.True(retrieved.IsOwner)
}

func (s *StorageSuite) TestGetDeviceProfileNotFound() {
	_, err := s.storage.GetDeviceProfile(s.ctx, "device-1", "nonexistent")
	s.ErrorIs(err, model.ErrAccessNotFound)
}

func (s *StorageSuite) TestUpsertDeviceProfileReplaces() {
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{
		DeviceID:   "device-1",
		ProfileID:  "profile-1",
		AccessType: model.AccessShared,
	})
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{
		DeviceID:   "device-1",
		ProfileID:  "profile-1",
		AccessType: model.AccessOwned,
		IsOwner:    true,
	})

	retrieved, err := s.storage.GetDeviceProfile(s.ctx, "device-1", "profile-1")
	s.Require().NoError(err)
	s.Equal(model.AccessOwned, retrieved.AccessType)

	all, err := s.storage.ListDeviceProfiles(s.ctx, "device-1")
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *StorageSuite) TestListDeviceProfilesOrderedByLastUsed() {
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{
		DeviceID:  "device-1",
		ProfileID: "profile-1",
		LastUsed:  time.Now().Add(-time.Hour),
	})
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{
		DeviceID:  "device-1",
		ProfileID: "profile-2",
		LastUsed:  time.Now(),
	})
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{
		DeviceID:  "device-2",
		ProfileID: "profile-1",
		LastUsed:  time.Now(),
	})

	list, err := s.storage.ListDeviceProfiles(s.ctx, "device-1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(model.ProfileID("profile-2"), list[0].ProfileID)
	s.Equal(model.ProfileID("profile-1"), list[1].ProfileID)
}

func (s *StorageSuite) TestDeleteDeviceProfile() {
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{DeviceID: "device-1", ProfileID: "profile-1"})

	err := s.storage.DeleteDeviceProfile(s.ctx, "device-1", "profile-1")
	s.Require().NoError(err)

	_, err = s.storage.GetDeviceProfile(s.ctx, "device-1", "profile-1")
	s.ErrorIs(err, model.ErrAccessNotFound)

	list, err := s.storage.ListDeviceProfiles(s.ctx, "device-1")
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *StorageSuite) TestDeleteDeviceProfileNotFound() {
	err := s.storage.DeleteDeviceProfile(s.ctx, "device-1", "nonexistent")
	s.ErrorIs(err, model.ErrAccessNotFound)
}

func (s *StorageSuite) TestDeleteDeviceProfilesForProfile() {
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{DeviceID: "device-1", ProfileID: "profile-1"})
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{DeviceID: "device-2", ProfileID: "profile-1"})
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{DeviceID: "device-1", ProfileID: "profile-2"})

	err := s.storage.DeleteDeviceProfilesForProfile(s.ctx, "profile-1")
	s.Require().NoError(err)

	list, err := s.storage.ListDeviceProfiles(s.ctx, "device-1")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(model.ProfileID("profile-2"), list[0].ProfileID)

	list, err = s.storage.ListDeviceProfiles(s.ctx, "device-2")
	s.Require().NoError(err)
	s.Empty(list)
}

// Share permission tests

func (s *StorageSuite) makePermission(id, code string) *model.SharePermission {
	return &model.SharePermission{
		ID:        model.PermissionID(id),
		ProfileID: "profile-1",
		Code:      model.ShareCode(code),
		Type:      model.ShareTemporary,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s *StorageSuite) TestCreateAndGetPermission() {
	p := s.makePermission("perm-1", "MTG123")

	err := s.storage.CreatePermission(s.ctx, p)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPermission(s.ctx, "perm-1")
	s.Require().NoError(err)
	s.Equal(p.Code, retrieved.Code)
}

func (s *StorageSuite) TestCreatePermissionCodeTaken() {
	_ = s.storage.CreatePermission(s.ctx, s.makePermission("perm-1", "MTG123"))

	err := s.storage.CreatePermission(s.ctx, s.makePermission("perm-2", "MTG123"))
	s.ErrorIs(err, model.ErrShareCodeTaken)
}

func (s *StorageSuite) TestGetPermissionByCode() {
	_ = s.storage.CreatePermission(s.ctx, s.makePermission("perm-1", "MTG123"))

	retrieved, err := s.storage.GetPermissionByCode(s.ctx, "MTG123")
	s.Require().NoError(err)
	s.Equal("perm-1", string(retrieved.ID))
}

func (s *StorageSuite) TestGetPermissionByCodeNotFound() {
	_, err := s.storage.GetPermissionByCode(s.ctx, "ZZZ999")
	s.ErrorIs(err, model.ErrPermissionNotFound)
}

func (s *StorageSuite) TestSavePermissionNotFound() {
	err := s.storage.SavePermission(s.ctx, s.makePermission("perm-1", "MTG123"))
	s.ErrorIs(err, model.ErrPermissionNotFound)
}

func (s *StorageSuite) TestSavePermissionUpdates() {
	p := s.makePermission("perm-1", "MTG123")
	_ = s.storage.CreatePermission(s.ctx, p)

	p.UsedCount = 3
	err := s.storage.SavePermission(s.ctx, p)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPermission(s.ctx, "perm-1")
	s.Require().NoError(err)
	s.Equal(3, retrieved.UsedCount)
}

func (s *StorageSuite) TestListPermissionsForProfile() {
	older := s.makePermission("perm-1", "MTG123")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := s.makePermission("perm-2", "PWR456")
	other := s.makePermission("perm-3", "CMD789")
	other.ProfileID = "profile-2"

	_ = s.storage.CreatePermission(s.ctx, older)
	_ = s.storage.CreatePermission(s.ctx, newer)
	_ = s.storage.CreatePermission(s.ctx, other)

	list, err := s.storage.ListPermissionsForProfile(s.ctx, "profile-1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(model.PermissionID("perm-2"), list[0].ID)
	s.Equal(model.PermissionID("perm-1"), list[1].ID)
}

func (s *StorageSuite) TestListExpiredActivePermissions() {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := s.makePermission("perm-1", "MTG123")
	expired.ExpiresAt = &past
	live := s.makePermission("perm-2", "PWR456")
	live.ExpiresAt = &future
	permanent := s.makePermission("perm-3", "CMD789")

	_ = s.storage.CreatePermission(s.ctx, expired)
	_ = s.storage.CreatePermission(s.ctx, live)
	_ = s.storage.CreatePermission(s.ctx, permanent)

	list, err := s.storage.ListExpiredActivePermissions(s.ctx, now)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(model.PermissionID("perm-1"), list[0].ID)
}

func (s *StorageSuite) TestDeactivatedPermissionLeavesExpiryIndex() {
	now := time.Now()
	past := now.Add(-time.Hour)

	p := s.makePermission("perm-1", "MTG123")
	p.ExpiresAt = &past
	_ = s.storage.CreatePermission(s.ctx, p)

	p.IsActive = false
	err := s.storage.SavePermission(s.ctx, p)
	s.Require().NoError(err)

	list, err := s.storage.ListExpiredActivePermissions(s.ctx, now)
	s.Require().NoError(err)
	s.Empty(list)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.Game{
		ID:         "game-1",
		TurnCount:  12,
		StartedAt:  time.Now().Add(-time.Hour),
		FinishedAt: time.Now(),
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("profile-1"), DisplayName: "alice", Placement: 1},
			{Participant: model.GuestParticipant("Guest Dave"), DisplayName: "Guest Dave", Placement: 2},
		},
	}

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Len(retrieved.Players, 2)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestListGamesForProfile() {
	game1 := &model.Game{
		ID:         "game-1",
		FinishedAt: time.Now().Add(-time.Hour),
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("profile-1"), DisplayName: "alice", Placement: 1},
		},
	}
	game2 := &model.Game{
		ID:         "game-2",
		FinishedAt: time.Now(),
		Players: []model.GamePlayer{
			{Participant: model.ProfileParticipant("profile-1"), DisplayName: "alice", Placement: 2},
			{Participant: model.ProfileParticipant("profile-2"), DisplayName: "bob", Placement: 1},
		},
	}

	_ = s.storage.SaveGame(s.ctx, game1)
	_ = s.storage.SaveGame(s.ctx, game2)

	games, err := s.storage.ListGamesForProfile(s.ctx, "profile-1")
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("game-2"), games[0].ID)

	games, err = s.storage.ListGamesForProfile(s.ctx, "profile-2")
	s.Require().NoError(err)
	s.Len(games, 1)
}

func (s *StorageSuite) TestListGamesForProfileEmpty() {
	games, err := s.storage.ListGamesForProfile(s.ctx, "nonexistent")
	s.Require().NoError(err)
	s.Empty(games)
}
