package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/storage"
)

// Config holds Postgres connection settings
type Config struct {
	// DSN is the Postgres connection string
	DSN string
}

// Storage is a Postgres-backed implementation of the storage interface.
// Uniqueness rides on the schema's unique indexes; the owner-checked
// delete is a single conditional UPDATE so the ownership re-check and
// the flip cannot be split by a concurrent writer.
type Storage struct {
	db *gorm.DB
}

// New connects to Postgres and migrates the schema
func New(cfg Config) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&profileRow{},
		&deviceProfileRow{},
		&sharePermissionRow{},
		&gameRow{},
		&gamePlayerRow{},
	); err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// NewWithDB wraps an existing gorm handle (for testing)
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, profile *model.Profile) error {
	err := s.db.WithContext(ctx).Create(profileToRow(profile)).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Work out which unique index fired
		var count int64
		s.db.WithContext(ctx).Model(&profileRow{}).
			Where("username = ?", profile.Username).Count(&count)
		if count > 0 {
			return model.ErrUsernameTaken
		}
		return model.ErrShareCodeTaken
	}
	return err
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	res := s.db.WithContext(ctx).
		Model(&profileRow{}).
		Where("id = ?", string(profile.ID)).
		Select("*").
		Updates(profileToRow(profile))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.ProfileID) (*model.Profile, error) {
	return s.getProfileWhere(ctx, "id = ?", string(id))
}

func (s *Storage) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return s.getProfileWhere(ctx, "username = ?", username)
}

func (s *Storage) GetProfileByShareCode(ctx context.Context, code model.ShareCode) (*model.Profile, error) {
	return s.getProfileWhere(ctx, "share_code = ?", string(code))
}

func (s *Storage) getProfileWhere(ctx context.Context, query string, arg any) (*model.Profile, error) {
	var row profileRow
	err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) ListProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	return s.listProfilesWhere(ctx, limit, "is_active = ?", true)
}

func (s *Storage) ListPublicProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	return s.listProfilesWhere(ctx, limit, "is_active = ? AND is_public = ?", true, true)
}

func (s *Storage) listProfilesWhere(ctx context.Context, limit int, query string, args ...any) ([]*model.Profile, error) {
	var rows []profileRow
	q := s.db.WithContext(ctx).Where(query, args...).Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Profile, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Storage) DeleteProfileOwnedBy(ctx context.Context, id model.ProfileID, deviceID model.DeviceID) error {
	res := s.db.WithContext(ctx).
		Model(&profileRow{}).
		Where("id = ? AND device_id = ?", string(id), string(deviceID)).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing profile from a foreign owner
		var count int64
		if err := s.db.WithContext(ctx).Model(&profileRow{}).
			Where("id = ?", string(id)).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return model.ErrProfileNotFound
		}
		return model.ErrNotOwner
	}
	return nil
}

// Device access operations

func (s *Storage) UpsertDeviceProfile(ctx context.Context, dp *model.DeviceProfile) error {
	return s.db.WithContext(ctx).Save(deviceProfileToRow(dp)).Error
}

func (s *Storage) GetDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) (*model.DeviceProfile, error) {
	var row deviceProfileRow
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND profile_id = ?", string(deviceID), string(profileID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAccessNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) ListDeviceProfiles(ctx context.Context, deviceID model.DeviceID) ([]*model.DeviceProfile, error) {
	var rows []deviceProfileRow
	err := s.db.WithContext(ctx).
		Where("device_id = ?", string(deviceID)).
		Order("last_used DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.DeviceProfile, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Storage) DeleteDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) error {
	res := s.db.WithContext(ctx).
		Where("device_id = ? AND profile_id = ?", string(deviceID), string(profileID)).
		Delete(&deviceProfileRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrAccessNotFound
	}
	return nil
}

func (s *Storage) DeleteDeviceProfilesForProfile(ctx context.Context, profileID model.ProfileID) error {
	return s.db.WithContext(ctx).
		Where("profile_id = ?", string(profileID)).
		Delete(&deviceProfileRow{}).Error
}

// Share permission operations

func (s *Storage) CreatePermission(ctx context.Context, p *model.SharePermission) error {
	err := s.db.WithContext(ctx).Create(permissionToRow(p)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrShareCodeTaken
	}
	return err
}

func (s *Storage) SavePermission(ctx context.Context, p *model.SharePermission) error {
	res := s.db.WithContext(ctx).
		Model(&sharePermissionRow{}).
		Where("id = ?", string(p.ID)).
		Select("*").
		Updates(permissionToRow(p))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrPermissionNotFound
	}
	return nil
}

func (s *Storage) GetPermission(ctx context.Context, id model.PermissionID) (*model.SharePermission, error) {
	return s.getPermissionWhere(ctx, "id = ?", string(id))
}

func (s *Storage) GetPermissionByCode(ctx context.Context, code model.ShareCode) (*model.SharePermission, error) {
	return s.getPermissionWhere(ctx, "code = ?", string(code))
}

func (s *Storage) getPermissionWhere(ctx context.Context, query string, arg any) (*model.SharePermission, error) {
	var row sharePermissionRow
	err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPermissionNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) ListPermissionsForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.SharePermission, error) {
	var rows []sharePermissionRow
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", string(profileID)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.SharePermission, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Storage) ListExpiredActivePermissions(ctx context.Context, now time.Time) ([]*model.SharePermission, error) {
	var rows []sharePermissionRow
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.SharePermission, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	row := gameToRow(game)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", row.ID).Delete(&gamePlayerRow{}).Error; err != nil {
			return err
		}
		return tx.Save(row).Error
	})
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var row gameRow
	err := s.db.WithContext(ctx).
		Preload("Players").
		Where("id = ?", string(id)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) ListGamesForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.Game, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&gamePlayerRow{}).
		Where("profile_id = ?", string(profileID)).
		Distinct().
		Pluck("game_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	var rows []gameRow
	err = s.db.WithContext(ctx).
		Preload("Players").
		Where("id IN ?", ids).
		Order("finished_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.Game, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}
