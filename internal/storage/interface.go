package storage

import (
	"context"
	"time"

	"github.com/nickagee13/commandtrack/internal/model"
)

// Storage defines the interface for data persistence.
//
// Uniqueness of usernames, profile share codes and permission codes is
// enforced here, not in the services: every backend maps its native
// constraint violation onto model.ErrUsernameTaken / model.ErrShareCodeTaken
// so callers can surface conflicts and retry code generation.
type Storage interface {
	// Profile operations
	CreateProfile(ctx context.Context, profile *model.Profile) error
	SaveProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, id model.ProfileID) (*model.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	GetProfileByShareCode(ctx context.Context, code model.ShareCode) (*model.Profile, error)
	ListProfiles(ctx context.Context, limit int) ([]*model.Profile, error)
	ListPublicProfiles(ctx context.Context, limit int) ([]*model.Profile, error)

	// DeleteProfileOwnedBy soft-deletes a profile, re-checking at the
	// storage level that deviceID is the owning device. The ownership
	// check and the delete happen atomically so a racing client-side
	// check cannot be bypassed.
	DeleteProfileOwnedBy(ctx context.Context, id model.ProfileID, deviceID model.DeviceID) error

	// Device access operations (keyed on the device+profile pair; writes
	// are upserts so racing calls converge on one record)
	UpsertDeviceProfile(ctx context.Context, dp *model.DeviceProfile) error
	GetDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) (*model.DeviceProfile, error)
	ListDeviceProfiles(ctx context.Context, deviceID model.DeviceID) ([]*model.DeviceProfile, error)
	DeleteDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) error
	DeleteDeviceProfilesForProfile(ctx context.Context, profileID model.ProfileID) error

	// Share permission operations
	CreatePermission(ctx context.Context, p *model.SharePermission) error
	SavePermission(ctx context.Context, p *model.SharePermission) error
	GetPermission(ctx context.Context, id model.PermissionID) (*model.SharePermission, error)
	GetPermissionByCode(ctx context.Context, code model.ShareCode) (*model.SharePermission, error)
	ListPermissionsForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.SharePermission, error)
	ListExpiredActivePermissions(ctx context.Context, now time.Time) ([]*model.SharePermission, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGamesForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.Game, error)
}
