package ownership

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nickagee13/commandtrack/internal/dependencies/clock"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/profile"
	"github.com/nickagee13/commandtrack/internal/storage"
)

// publicListingLimit caps the discovery bucket in accessible listings
const publicListingLimit = 50

// Service tracks which devices own and can reach which profiles.
// Ownership bookkeeping is deliberately best-effort on the write path:
// a profile create never fails because its access record could not be
// written, and usage tracking never surfaces storage errors to callers.
type Service struct {
	storage  storage.Storage
	profiles *profile.Service
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new ownership Service
func New(storage storage.Storage, profiles *profile.Service, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		profiles: profiles,
		clock:    clock,
		logger:   logger,
	}
}

// CreateOwnedProfile creates a profile and records the creating device
// as its owner. The ownership record is best-effort: if the upsert
// fails, the profile still stands (its DeviceID field carries the owner)
// and the failure is logged.
func (s *Service) CreateOwnedProfile(ctx context.Context, params profile.CreateParams) (*model.Profile, error) {
	if params.DeviceID == "" {
		return nil, model.ErrDeviceRequired
	}

	p, err := s.profiles.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	record := &model.DeviceProfile{
		DeviceID:   params.DeviceID,
		ProfileID:  p.ID,
		AccessType: model.AccessOwned,
		IsOwner:    true,
		SharedAt:   now,
		LastUsed:   now,
	}
	if err := s.storage.UpsertDeviceProfile(ctx, record); err != nil {
		s.logger.Warn("ownership record write failed after profile create",
			"profile_id", p.ID,
			"device_id", params.DeviceID,
			"error", err)
	}

	return p, nil
}

// IsProfileOwner reports whether the device owns the profile. Any
// storage error reads as "not owner"; ownership checks fail closed.
func (s *Service) IsProfileOwner(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) bool {
	p, err := s.storage.GetProfile(ctx, profileID)
	if err != nil {
		return false
	}
	if p.DeviceID == deviceID {
		return true
	}

	// The profile's own device field is authoritative, but a claimed
	// legacy profile may only carry ownership in its access record
	dp, err := s.storage.GetDeviceProfile(ctx, deviceID, profileID)
	if err != nil {
		return false
	}
	return dp.IsOwner
}

// UpdateProfilePrivacy toggles a profile's public visibility. Only the
// owning device may change it; a failed gate leaves is_public untouched.
func (s *Service) UpdateProfilePrivacy(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID, isPublic bool) (*model.Profile, error) {
	if !s.IsProfileOwner(ctx, deviceID, profileID) {
		return nil, model.ErrNotOwner
	}

	p, err := s.storage.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	p.IsPublic = isPublic
	p.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetMyProfiles returns the active profiles the device owns, most
// recently used first
func (s *Service) GetMyProfiles(ctx context.Context, deviceID model.DeviceID) ([]*model.Profile, error) {
	records, err := s.storage.ListDeviceProfiles(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	profiles := []*model.Profile{}
	for _, dp := range records {
		if !dp.IsOwner {
			continue
		}
		p, err := s.storage.GetProfile(ctx, dp.ProfileID)
		if err != nil || !p.IsActive {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// GetAccessibleProfiles buckets everything the device can see: profiles
// it owns, profiles shared with it, profiles it recently used, and
// public profiles owned by other devices
func (s *Service) GetAccessibleProfiles(ctx context.Context, deviceID model.DeviceID) (*model.AccessibleProfiles, error) {
	records, err := s.storage.ListDeviceProfiles(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	out := &model.AccessibleProfiles{
		Owned:  []*model.Profile{},
		Shared: []*model.Profile{},
		Recent: []*model.Profile{},
		Public: []*model.Profile{},
	}

	seen := make(map[model.ProfileID]bool, len(records))
	for _, dp := range records {
		p, err := s.storage.GetProfile(ctx, dp.ProfileID)
		if err != nil || !p.IsActive {
			continue
		}
		seen[dp.ProfileID] = true

		switch dp.AccessType {
		case model.AccessOwned:
			out.Owned = append(out.Owned, p)
		case model.AccessShared:
			out.Shared = append(out.Shared, p)
		case model.AccessRecent:
			out.Recent = append(out.Recent, p)
		}
	}

	public, err := s.storage.ListPublicProfiles(ctx, publicListingLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range public {
		if seen[p.ID] || p.DeviceID == deviceID {
			continue
		}
		out.Public = append(out.Public, p)
	}

	return out, nil
}

// TrackProfileUsage records that the device just used the profile. The
// write is an upsert keyed on the (device, profile) pair so repeated
// calls converge on one record, and existing owned/shared access is
// never downgraded to recent. Failures are logged and swallowed; usage
// tracking must not break the calling flow.
func (s *Service) TrackProfileUsage(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) {
	now := s.clock.Now()

	record, err := s.storage.GetDeviceProfile(ctx, deviceID, profileID)
	switch {
	case err == nil:
		record.LastUsed = now
	case errors.Is(err, model.ErrAccessNotFound):
		record = &model.DeviceProfile{
			DeviceID:   deviceID,
			ProfileID:  profileID,
			AccessType: model.AccessRecent,
			SharedAt:   now,
			LastUsed:   now,
		}
	default:
		s.logger.Warn("usage tracking read failed",
			"profile_id", profileID, "device_id", deviceID, "error", err)
		return
	}

	if err := s.storage.UpsertDeviceProfile(ctx, record); err != nil {
		s.logger.Warn("usage tracking write failed",
			"profile_id", profileID, "device_id", deviceID, "error", err)
	}
}

// RemoveProfileAccess drops the device's access record for a profile.
// Owners cannot remove their own access; they delete the profile instead.
func (s *Service) RemoveProfileAccess(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) error {
	record, err := s.storage.GetDeviceProfile(ctx, deviceID, profileID)
	if err != nil {
		return err
	}
	if record.IsOwner {
		return model.ErrOwnerAccessRemoval
	}
	return s.storage.DeleteDeviceProfile(ctx, deviceID, profileID)
}

// FixLegacyProfile claims a profile created before device tracking
// existed. The claim only succeeds when the profile has no recorded
// owning device; claimed profiles get a normal ownership record.
func (s *Service) FixLegacyProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) (*model.Profile, error) {
	p, err := s.storage.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.DeviceID != "" && p.DeviceID != deviceID {
		return nil, model.ErrNotOwner
	}

	now := s.clock.Now()
	p.DeviceID = deviceID
	p.UpdatedAt = now
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return nil, err
	}

	record := &model.DeviceProfile{
		DeviceID:   deviceID,
		ProfileID:  profileID,
		AccessType: model.AccessOwned,
		IsOwner:    true,
		SharedAt:   now,
		LastUsed:   now,
	}
	if err := s.storage.UpsertDeviceProfile(ctx, record); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteOwnedProfile soft-deletes a profile the device owns. Access
// records for every device are removed first; the final delete happens
// at the storage level, which re-checks the owning device atomically so
// a race cannot slip a foreign delete through.
func (s *Service) DeleteOwnedProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) error {
	if !s.IsProfileOwner(ctx, deviceID, profileID) {
		return model.ErrNotOwner
	}

	if err := s.storage.DeleteDeviceProfilesForProfile(ctx, profileID); err != nil {
		return err
	}
	return s.storage.DeleteProfileOwnedBy(ctx, profileID, deviceID)
}
