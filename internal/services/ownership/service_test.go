package ownership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nickagee13/commandtrack/internal/dependencies/mocks"
	"github.com/nickagee13/commandtrack/internal/dependencies/random"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/profile"
	"github.com/nickagee13/commandtrack/internal/sharecode"
	"github.com/nickagee13/commandtrack/internal/storage/memory"
	"github.com/nickagee13/commandtrack/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	profiles *profile.Service
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.profiles = profile.New(s.storage, sharecode.NewGenerator(random.New()), s.clock)
	s.service = New(s.storage, s.profiles, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) createOwned(deviceID model.DeviceID, username string) *model.Profile {
	p, err := s.service.CreateOwnedProfile(s.ctx, profile.CreateParams{
		Username: username,
		DeviceID: deviceID,
	})
	s.Require().NoError(err)
	return p
}

// CreateOwnedProfile tests

func (s *ServiceSuite) TestCreateOwnedProfileWritesOwnershipRecord() {
	p := s.createOwned("device-1", "alice")

	record, err := s.storage.GetDeviceProfile(s.ctx, "device-1", p.ID)
	s.Require().NoError(err)
	s.True(record.IsOwner)
	s.Equal(model.AccessOwned, record.AccessType)
}

func (s *ServiceSuite) TestCreateOwnedProfileRequiresDevice() {
	_, err := s.service.CreateOwnedProfile(s.ctx, profile.CreateParams{Username: "alice"})
	s.ErrorIs(err, model.ErrDeviceRequired)
}

func (s *ServiceSuite) TestCreateOwnedProfilePropagatesValidation() {
	_, err := s.service.CreateOwnedProfile(s.ctx, profile.CreateParams{
		Username: "x",
		DeviceID: "device-1",
	})
	s.ErrorIs(err, model.ErrInvalidUsername)
}

// IsProfileOwner tests

func (s *ServiceSuite) TestIsProfileOwner() {
	p := s.createOwned("device-1", "alice")

	s.True(s.service.IsProfileOwner(s.ctx, "device-1", p.ID))
	s.False(s.service.IsProfileOwner(s.ctx, "device-2", p.ID))
}

func (s *ServiceSuite) TestIsProfileOwnerFailsClosedForUnknownProfile() {
	s.False(s.service.IsProfileOwner(s.ctx, "device-1", "nonexistent"))
}

func (s *ServiceSuite) TestIsProfileOwnerSurvivesMissingAccessRecord() {
	// Drop the bookkeeping row: the profile's own device field still
	// identifies the owner
	p := s.createOwned("device-1", "alice")
	_ = s.storage.DeleteDeviceProfile(s.ctx, "device-1", p.ID)

	s.True(s.service.IsProfileOwner(s.ctx, "device-1", p.ID))
}

// UpdateProfilePrivacy tests

func (s *ServiceSuite) TestUpdateProfilePrivacy() {
	p := s.createOwned("device-1", "alice")

	updated, err := s.service.UpdateProfilePrivacy(s.ctx, "device-1", p.ID, true)
	s.Require().NoError(err)
	s.True(updated.IsPublic)
}

func (s *ServiceSuite) TestUpdateProfilePrivacyRejectsNonOwner() {
	p := s.createOwned("device-1", "alice")

	_, err := s.service.UpdateProfilePrivacy(s.ctx, "device-2", p.ID, true)
	s.ErrorIs(err, model.ErrNotOwner)

	// Gate failure leaves the flag untouched
	stored, _ := s.storage.GetProfile(s.ctx, p.ID)
	s.False(stored.IsPublic)
}

// GetMyProfiles tests

func (s *ServiceSuite) TestGetMyProfiles() {
	p1 := s.createOwned("device-1", "alice")
	s.createOwned("device-2", "bob")

	mine, err := s.service.GetMyProfiles(s.ctx, "device-1")
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(p1.ID, mine[0].ID)
}

func (s *ServiceSuite) TestGetMyProfilesExcludesDeleted() {
	p := s.createOwned("device-1", "alice")
	s.Require().NoError(s.service.DeleteOwnedProfile(s.ctx, "device-1", p.ID))

	mine, err := s.service.GetMyProfiles(s.ctx, "device-1")
	s.Require().NoError(err)
	s.Empty(mine)
}

// GetAccessibleProfiles tests

func (s *ServiceSuite) TestGetAccessibleProfilesBuckets() {
	owned := s.createOwned("device-1", "alice")

	shared := s.createOwned("device-2", "bob")
	_ = s.storage.UpsertDeviceProfile(s.ctx, &model.DeviceProfile{
		DeviceID:   "device-1",
		ProfileID:  shared.ID,
		AccessType: model.AccessShared,
		LastUsed:   s.clock.Now(),
	})

	recent := s.createOwned("device-3", "carol")
	s.service.TrackProfileUsage(s.ctx, "device-1", recent.ID)

	public := s.createOwned("device-4", "dan")
	_, err := s.service.UpdateProfilePrivacy(s.ctx, "device-4", public.ID, true)
	s.Require().NoError(err)

	accessible, err := s.service.GetAccessibleProfiles(s.ctx, "device-1")
	s.Require().NoError(err)

	s.Require().Len(accessible.Owned, 1)
	s.Equal(owned.ID, accessible.Owned[0].ID)
	s.Require().Len(accessible.Shared, 1)
	s.Equal(shared.ID, accessible.Shared[0].ID)
	s.Require().Len(accessible.Recent, 1)
	s.Equal(recent.ID, accessible.Recent[0].ID)
	s.Require().Len(accessible.Public, 1)
	s.Equal(public.ID, accessible.Public[0].ID)
}

func (s *ServiceSuite) TestGetAccessibleProfilesPublicExcludesOwnAndKnown() {
	mine := s.createOwned("device-1", "alice")
	_, err := s.service.UpdateProfilePrivacy(s.ctx, "device-1", mine.ID, true)
	s.Require().NoError(err)

	known := s.createOwned("device-2", "bob")
	_, err = s.service.UpdateProfilePrivacy(s.ctx, "device-2", known.ID, true)
	s.Require().NoError(err)
	s.service.TrackProfileUsage(s.ctx, "device-1", known.ID)

	accessible, err := s.service.GetAccessibleProfiles(s.ctx, "device-1")
	s.Require().NoError(err)
	s.Empty(accessible.Public)
}

// TrackProfileUsage tests

func (s *ServiceSuite) TestTrackProfileUsageCreatesRecentRecord() {
	p := s.createOwned("device-1", "alice")

	s.service.TrackProfileUsage(s.ctx, "device-2", p.ID)

	record, err := s.storage.GetDeviceProfile(s.ctx, "device-2", p.ID)
	s.Require().NoError(err)
	s.Equal(model.AccessRecent, record.AccessType)
	s.False(record.IsOwner)
}

func (s *ServiceSuite) TestTrackProfileUsageIsIdempotent() {
	p := s.createOwned("device-1", "alice")

	s.service.TrackProfileUsage(s.ctx, "device-2", p.ID)
	s.clock.Advance(time.Minute)
	s.service.TrackProfileUsage(s.ctx, "device-2", p.ID)

	records, err := s.storage.ListDeviceProfiles(s.ctx, "device-2")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(s.clock.Now(), records[0].LastUsed)
}

func (s *ServiceSuite) TestTrackProfileUsageKeepsOwnedAccess() {
	p := s.createOwned("device-1", "alice")

	s.clock.Advance(time.Minute)
	s.service.TrackProfileUsage(s.ctx, "device-1", p.ID)

	record, err := s.storage.GetDeviceProfile(s.ctx, "device-1", p.ID)
	s.Require().NoError(err)
	s.Equal(model.AccessOwned, record.AccessType)
	s.True(record.IsOwner)
	s.Equal(s.clock.Now(), record.LastUsed)
}

// RemoveProfileAccess tests

func (s *ServiceSuite) TestRemoveProfileAccess() {
	p := s.createOwned("device-1", "alice")
	s.service.TrackProfileUsage(s.ctx, "device-2", p.ID)

	err := s.service.RemoveProfileAccess(s.ctx, "device-2", p.ID)
	s.Require().NoError(err)

	_, err = s.storage.GetDeviceProfile(s.ctx, "device-2", p.ID)
	s.ErrorIs(err, model.ErrAccessNotFound)
}

func (s *ServiceSuite) TestRemoveProfileAccessRejectsOwner() {
	p := s.createOwned("device-1", "alice")

	err := s.service.RemoveProfileAccess(s.ctx, "device-1", p.ID)
	s.ErrorIs(err, model.ErrOwnerAccessRemoval)
}

func (s *ServiceSuite) TestRemoveProfileAccessNotFound() {
	err := s.service.RemoveProfileAccess(s.ctx, "device-1", "nonexistent")
	s.ErrorIs(err, model.ErrAccessNotFound)
}

// FixLegacyProfile tests

func (s *ServiceSuite) TestFixLegacyProfileClaimsUnowned() {
	// A profile from before device tracking: no device on the record
	legacy := &model.Profile{
		ID:        "profile-legacy",
		Username:  "oldtimer",
		ShareCode: "GRV111",
		IsActive:  true,
	}
	s.Require().NoError(s.storage.CreateProfile(s.ctx, legacy))

	claimed, err := s.service.FixLegacyProfile(s.ctx, "device-1", legacy.ID)
	s.Require().NoError(err)
	s.Equal(model.DeviceID("device-1"), claimed.DeviceID)

	s.True(s.service.IsProfileOwner(s.ctx, "device-1", legacy.ID))
}

func (s *ServiceSuite) TestFixLegacyProfileRejectsOwnedProfile() {
	p := s.createOwned("device-1", "alice")

	_, err := s.service.FixLegacyProfile(s.ctx, "device-2", p.ID)
	s.ErrorIs(err, model.ErrNotOwner)
}

// DeleteOwnedProfile tests

func (s *ServiceSuite) TestDeleteOwnedProfile() {
	p := s.createOwned("device-1", "alice")
	s.service.TrackProfileUsage(s.ctx, "device-2", p.ID)

	err := s.service.DeleteOwnedProfile(s.ctx, "device-1", p.ID)
	s.Require().NoError(err)

	stored, err := s.storage.GetProfile(s.ctx, p.ID)
	s.Require().NoError(err)
	s.False(stored.IsActive)

	// Access records for every device are gone
	_, err = s.storage.GetDeviceProfile(s.ctx, "device-1", p.ID)
	s.ErrorIs(err, model.ErrAccessNotFound)
	_, err = s.storage.GetDeviceProfile(s.ctx, "device-2", p.ID)
	s.ErrorIs(err, model.ErrAccessNotFound)
}

func (s *ServiceSuite) TestDeleteOwnedProfileRejectsNonOwner() {
	p := s.createOwned("device-1", "alice")

	err := s.service.DeleteOwnedProfile(s.ctx, "device-2", p.ID)
	s.ErrorIs(err, model.ErrNotOwner)

	stored, _ := s.storage.GetProfile(s.ctx, p.ID)
	s.True(stored.IsActive)
}
