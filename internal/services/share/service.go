package share

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nickagee13/commandtrack/internal/dependencies/clock"
	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/services/ownership"
	"github.com/nickagee13/commandtrack/internal/sharecode"
	"github.com/nickagee13/commandtrack/internal/storage"
)

// SessionRedemptionPolicy decides when a game_session code deactivates.
// Historically these codes carried max_uses=10 but died after the first
// redemption; both readings are supported so deployments can choose.
type SessionRedemptionPolicy string

const (
	// SessionSingleUse deactivates a game_session code after its first
	// successful redemption regardless of max_uses
	SessionSingleUse SessionRedemptionPolicy = "single-use"
	// SessionHonorMaxUses lets a game_session code live until its
	// max_uses count is reached
	SessionHonorMaxUses SessionRedemptionPolicy = "honor-max-uses"
)

// maxCodeAttempts bounds retries when a minted code collides in storage
const maxCodeAttempts = 5

// Config holds share engine configuration
type Config struct {
	// TemporaryDuration is the default lifetime of temporary codes
	TemporaryDuration time.Duration
	// SessionMaxUses is the use budget stamped on game_session codes
	SessionMaxUses int
	// SessionPolicy picks the game_session redemption behavior
	SessionPolicy SessionRedemptionPolicy
}

// DefaultConfig returns default share engine configuration
func DefaultConfig() Config {
	return Config{
		TemporaryDuration: 24 * time.Hour,
		SessionMaxUses:    10,
		SessionPolicy:     SessionSingleUse,
	}
}

// Service mints, redeems and retires share permissions. Expiry and
// exhaustion are enforced lazily at redemption time: a dead code is
// flipped inactive the moment someone tries it, and a periodic sweep
// catches codes nobody tries again.
type Service struct {
	storage   storage.Storage
	ownership *ownership.Service
	generator *sharecode.Generator
	clock     clock.Clock
	logger    *slog.Logger
	cfg       Config
}

// New creates a new share Service
func New(
	storage storage.Storage,
	ownership *ownership.Service,
	generator *sharecode.Generator,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Service {
	defaults := DefaultConfig()
	if cfg.TemporaryDuration == 0 {
		cfg.TemporaryDuration = defaults.TemporaryDuration
	}
	if cfg.SessionMaxUses == 0 {
		cfg.SessionMaxUses = defaults.SessionMaxUses
	}
	if cfg.SessionPolicy == "" {
		cfg.SessionPolicy = defaults.SessionPolicy
	}
	return &Service{
		storage:   storage,
		ownership: ownership,
		generator: generator,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
	}
}

// ShareParams holds the inputs for minting a share permission
type ShareParams struct {
	DeviceID  model.DeviceID
	ProfileID model.ProfileID
	Type      model.ShareType
	// ExpiresIn overrides the default temporary lifetime; ignored for
	// non-temporary types
	ExpiresIn *time.Duration
	// MaxUses caps redemptions; nil means unlimited. Ignored for
	// game_session codes, which always get the configured budget.
	MaxUses *int
}

// ShareProfile mints a share permission for a profile the device owns.
// Only temporary permissions carry an expiry; permanent and game_session
// codes are untimed.
func (s *Service) ShareProfile(ctx context.Context, params ShareParams) (*model.SharePermission, error) {
	if !model.ValidShareType(string(params.Type)) {
		return nil, model.ErrInvalidShareCode
	}
	if !s.ownership.IsProfileOwner(ctx, params.DeviceID, params.ProfileID) {
		return nil, model.ErrNotOwner
	}

	now := s.clock.Now()

	var expiresAt *time.Time
	if params.Type == model.ShareTemporary {
		d := s.cfg.TemporaryDuration
		if params.ExpiresIn != nil {
			d = *params.ExpiresIn
		}
		t := now.Add(d)
		expiresAt = &t
	}

	maxUses := params.MaxUses
	if params.Type == model.ShareGameSession {
		uses := s.cfg.SessionMaxUses
		maxUses = &uses
	}

	var lastErr error
	for i := 0; i < maxCodeAttempts; i++ {
		permission := &model.SharePermission{
			ID:        model.PermissionID("perm_" + uuid.NewString()),
			ProfileID: params.ProfileID,
			Code:      s.generator.GenerateSafe(sharecode.DefaultSafeAttempts),
			Type:      params.Type,
			ExpiresAt: expiresAt,
			MaxUses:   maxUses,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err := s.storage.CreatePermission(ctx, permission)
		if err == nil {
			return permission, nil
		}
		if errors.Is(err, model.ErrShareCodeTaken) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// CreateGameSessionShare mints the code a host reads out during game
// setup so the table can pull the host's profile
func (s *Service) CreateGameSessionShare(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) (*model.SharePermission, error) {
	return s.ShareProfile(ctx, ShareParams{
		DeviceID:  deviceID,
		ProfileID: profileID,
		Type:      model.ShareGameSession,
	})
}

// UseShareCode redeems a code for the calling device and returns the
// shared profile. A code found expired or exhausted here is flipped
// inactive before the rejection is returned, so later attempts see a
// plain "inactive" error. Successful redemption grants shared access,
// but a device that already owns the profile is never downgraded.
func (s *Service) UseShareCode(ctx context.Context, deviceID model.DeviceID, input string) (*model.Profile, error) {
	code, ok := sharecode.Parse(input)
	if !ok {
		return nil, model.ErrInvalidShareCode
	}

	permission, err := s.storage.GetPermissionByCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrPermissionNotFound) {
			return nil, model.ErrShareCodeInactive
		}
		return nil, err
	}

	now := s.clock.Now()

	if !permission.IsActive {
		return nil, model.ErrShareCodeInactive
	}
	if permission.Expired(now) {
		s.deactivate(ctx, permission, now)
		return nil, model.ErrShareCodeExpired
	}
	if permission.Exhausted() {
		s.deactivate(ctx, permission, now)
		return nil, model.ErrShareCodeExhausted
	}

	profile, err := s.storage.GetProfile(ctx, permission.ProfileID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, model.ErrProfileInactive
	}

	permission.UsedCount++
	permission.UpdatedAt = now
	if permission.Type == model.ShareGameSession && s.cfg.SessionPolicy == SessionSingleUse {
		permission.IsActive = false
	} else if permission.Exhausted() {
		permission.IsActive = false
	}
	if err := s.storage.SavePermission(ctx, permission); err != nil {
		return nil, err
	}

	if err := s.grantAccess(ctx, deviceID, profile.ID, now); err != nil {
		s.logger.Warn("share access grant failed after redemption",
			"profile_id", profile.ID, "device_id", deviceID, "error", err)
	}

	return profile, nil
}

// grantAccess upserts a shared access record, preserving any stronger
// access the device already holds
func (s *Service) grantAccess(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID, now time.Time) error {
	record, err := s.storage.GetDeviceProfile(ctx, deviceID, profileID)
	switch {
	case err == nil:
		if record.AccessType != model.AccessOwned {
			record.AccessType = model.AccessShared
			record.SharedAt = now
		}
		record.LastUsed = now
	case errors.Is(err, model.ErrAccessNotFound):
		record = &model.DeviceProfile{
			DeviceID:   deviceID,
			ProfileID:  profileID,
			AccessType: model.AccessShared,
			SharedAt:   now,
			LastUsed:   now,
		}
	default:
		return err
	}
	return s.storage.UpsertDeviceProfile(ctx, record)
}

// deactivate flips a permission inactive; the transition only ever runs
// true -> false. Failures are logged, not surfaced: the caller is about
// to reject the redemption anyway.
func (s *Service) deactivate(ctx context.Context, permission *model.SharePermission, now time.Time) {
	if !permission.IsActive {
		return
	}
	permission.IsActive = false
	permission.UpdatedAt = now
	if err := s.storage.SavePermission(ctx, permission); err != nil {
		s.logger.Warn("permission deactivation failed",
			"permission_id", permission.ID, "error", err)
	}
}

// ShareCodeInfo is a permission annotated for owner-facing listings
type ShareCodeInfo struct {
	Permission     *model.SharePermission
	DisplayCode    string
	IsExpired      bool
	UsageRemaining *int
	TimeRemaining  *time.Duration
}

// GetMyShareCodes lists the permissions minted for a profile the device
// owns, annotated with display formatting and remaining budget
func (s *Service) GetMyShareCodes(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) ([]ShareCodeInfo, error) {
	if !s.ownership.IsProfileOwner(ctx, deviceID, profileID) {
		return nil, model.ErrNotOwner
	}

	permissions, err := s.storage.ListPermissionsForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	infos := make([]ShareCodeInfo, len(permissions))
	for i, p := range permissions {
		infos[i] = ShareCodeInfo{
			Permission:     p,
			DisplayCode:    sharecode.Format(p.Code),
			IsExpired:      p.Expired(now),
			UsageRemaining: p.UsageRemaining(),
			TimeRemaining:  p.TimeRemaining(now),
		}
	}
	return infos, nil
}

// DeactivateShareCode retires a permission early. Owner-gated; already
// inactive permissions are a no-op.
func (s *Service) DeactivateShareCode(ctx context.Context, deviceID model.DeviceID, permissionID model.PermissionID) error {
	permission, err := s.storage.GetPermission(ctx, permissionID)
	if err != nil {
		return err
	}
	if !s.ownership.IsProfileOwner(ctx, deviceID, permission.ProfileID) {
		return model.ErrNotOwner
	}
	if !permission.IsActive {
		return nil
	}

	permission.IsActive = false
	permission.UpdatedAt = s.clock.Now()
	return s.storage.SavePermission(ctx, permission)
}

// CleanupExpiredCodes flips every expired-but-active permission of one
// profile inactive and reports how many changed. Owner-gated and
// idempotent: a second run finds nothing.
func (s *Service) CleanupExpiredCodes(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) (int, error) {
	if !s.ownership.IsProfileOwner(ctx, deviceID, profileID) {
		return 0, model.ErrNotOwner
	}

	permissions, err := s.storage.ListPermissionsForProfile(ctx, profileID)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	cleaned := 0
	for _, p := range permissions {
		if !p.IsActive || !p.Expired(now) {
			continue
		}
		p.IsActive = false
		p.UpdatedAt = now
		if err := s.storage.SavePermission(ctx, p); err != nil {
			return cleaned, err
		}
		cleaned++
	}
	return cleaned, nil
}

// SweepExpired is the global maintenance pass run on a schedule: it
// retires every expired-but-active permission across all profiles
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()

	expired, err := s.storage.ListExpiredActivePermissions(ctx, now)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, p := range expired {
		p.IsActive = false
		p.UpdatedAt = now
		if err := s.storage.SavePermission(ctx, p); err != nil {
			return cleaned, err
		}
		cleaned++
	}
	return cleaned, nil
}
