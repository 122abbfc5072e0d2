package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	profiles            map[model.ProfileID]*model.Profile
	usernameIndex       map[string]model.ProfileID
	profileCodeIndex    map[model.ShareCode]model.ProfileID
	deviceProfiles      map[deviceProfileKey]*model.DeviceProfile
	permissions         map[model.PermissionID]*model.SharePermission
	permissionCodeIndex map[model.ShareCode]model.PermissionID
	games               map[model.GameID]*model.Game
}

type deviceProfileKey struct {
	deviceID  model.DeviceID
	profileID model.ProfileID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		profiles:            make(map[model.ProfileID]*model.Profile),
		usernameIndex:       make(map[string]model.ProfileID),
		profileCodeIndex:    make(map[model.ShareCode]model.ProfileID),
		deviceProfiles:      make(map[deviceProfileKey]*model.DeviceProfile),
		permissions:         make(map[model.PermissionID]*model.SharePermission),
		permissionCodeIndex: make(map[model.ShareCode]model.PermissionID),
		games:               make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernameIndex[profile.Username]; taken {
		return model.ErrUsernameTaken
	}
	if _, taken := s.profileCodeIndex[profile.ShareCode]; taken {
		return model.ErrShareCodeTaken
	}

	s.profiles[profile.ID] = profile
	s.usernameIndex[profile.Username] = profile.ID
	s.profileCodeIndex[profile.ShareCode] = profile.ID
	return nil
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.ID]; !ok {
		return model.ErrProfileNotFound
	}

	s.profiles[profile.ID] = profile
	s.usernameIndex[profile.Username] = profile.ID
	s.profileCodeIndex[profile.ShareCode] = profile.ID
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.ProfileID) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Storage) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	profile, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Storage) GetProfileByShareCode(ctx context.Context, code model.ShareCode) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.profileCodeIndex[code]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	profile, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Storage) ListProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectProfiles(limit, func(p *model.Profile) bool {
		return p.IsActive
	}), nil
}

func (s *Storage) ListPublicProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectProfiles(limit, func(p *model.Profile) bool {
		return p.IsActive && p.IsPublic
	}), nil
}

// collectProfiles returns matching profiles ordered by most recent activity.
// Callers must hold the lock.
func (s *Storage) collectProfiles(limit int, match func(*model.Profile) bool) []*model.Profile {
	var out []*model.Profile
	for _, p := range s.profiles {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Storage) DeleteProfileOwnedBy(ctx context.Context, id model.ProfileID, deviceID model.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[id]
	if !ok {
		return model.ErrProfileNotFound
	}
	if profile.DeviceID != deviceID {
		return model.ErrNotOwner
	}

	profile.IsActive = false
	return nil
}

// Device access operations

func (s *Storage) UpsertDeviceProfile(ctx context.Context, dp *model.DeviceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deviceProfiles[deviceProfileKey{dp.DeviceID, dp.ProfileID}] = dp
	return nil
}

func (s *Storage) GetDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) (*model.DeviceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dp, ok := s.deviceProfiles[deviceProfileKey{deviceID, profileID}]
	if !ok {
		return nil, model.ErrAccessNotFound
	}
	return dp, nil
}

func (s *Storage) ListDeviceProfiles(ctx context.Context, deviceID model.DeviceID) ([]*model.DeviceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.DeviceProfile
	for key, dp := range s.deviceProfiles {
		if key.deviceID == deviceID {
			out = append(out, dp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	return out, nil
}

func (s *Storage) DeleteDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := deviceProfileKey{deviceID, profileID}
	if _, ok := s.deviceProfiles[key]; !ok {
		return model.ErrAccessNotFound
	}
	delete(s.deviceProfiles, key)
	return nil
}

func (s *Storage) DeleteDeviceProfilesForProfile(ctx context.Context, profileID model.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.deviceProfiles {
		if key.profileID == profileID {
			delete(s.deviceProfiles, key)
		}
	}
	return nil
}

// Share permission operations

func (s *Storage) CreatePermission(ctx context.Context, p *model.SharePermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.permissionCodeIndex[p.Code]; taken {
		return model.ErrShareCodeTaken
	}

	s.permissions[p.ID] = p
	s.permissionCodeIndex[p.Code] = p.ID
	return nil
}

func (s *Storage) SavePermission(ctx context.Context, p *model.SharePermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.permissions[p.ID]; !ok {
		return model.ErrPermissionNotFound
	}

	s.permissions[p.ID] = p
	s.permissionCodeIndex[p.Code] = p.ID
	return nil
}

func (s *Storage) GetPermission(ctx context.Context, id model.PermissionID) (*model.SharePermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.permissions[id]
	if !ok {
		return nil, model.ErrPermissionNotFound
	}
	return p, nil
}

func (s *Storage) GetPermissionByCode(ctx context.Context, code model.ShareCode) (*model.SharePermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.permissionCodeIndex[code]
	if !ok {
		return nil, model.ErrPermissionNotFound
	}
	p, ok := s.permissions[id]
	if !ok {
		return nil, model.ErrPermissionNotFound
	}
	return p, nil
}

func (s *Storage) ListPermissionsForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.SharePermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.SharePermission
	for _, p := range s.permissions {
		if p.ProfileID == profileID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Storage) ListExpiredActivePermissions(ctx context.Context, now time.Time) ([]*model.SharePermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.SharePermission
	for _, p := range s.permissions {
		if p.IsActive && p.Expired(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) ListGamesForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Game
	for _, g := range s.games {
		for _, gp := range g.Players {
			if gp.Participant.ProfileID != nil && *gp.Participant.ProfileID == profileID {
				out = append(out, g)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	return out, nil
}
