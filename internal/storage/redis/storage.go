package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nickagee13/commandtrack/internal/model"
	"github.com/nickagee13/commandtrack/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Values are stored as JSON; uniqueness is enforced through SetNX on
// index keys, and the owner-checked delete runs under WATCH so the
// ownership check and the flip happen atomically.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Profile operations

func (s *Storage) CreateProfile(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	// Claim the unique indexes first; whoever wins SetNX owns the name
	ok, err := s.client.SetNX(ctx, usernameIndexKey(profile.Username), string(profile.ID), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrUsernameTaken
	}

	ok, err = s.client.SetNX(ctx, profileCodeIndexKey(profile.ShareCode), string(profile.ID), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		// Release the username claim before reporting the collision
		_ = s.client.Del(ctx, usernameIndexKey(profile.Username)).Err()
		return model.ErrShareCodeTaken
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, profileKey(profile.ID), data, 0)
	pipe.ZAdd(ctx, profilesByActivityKey(), redis.Z{
		Score:  float64(profile.UpdatedAt.Unix()),
		Member: string(profile.ID),
	})
	if profile.IsPublic {
		pipe.ZAdd(ctx, publicProfilesKey(), redis.Z{
			Score:  float64(profile.UpdatedAt.Unix()),
			Member: string(profile.ID),
		})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	exists, err := s.client.Exists(ctx, profileKey(profile.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrProfileNotFound
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, profileKey(profile.ID), data, 0)
	s.queueActivityIndexes(ctx, pipe, profile)
	_, err = pipe.Exec(ctx)
	return err
}

// queueActivityIndexes keeps the listing ZSETs in sync with the profile's
// active/public flags
func (s *Storage) queueActivityIndexes(ctx context.Context, pipe redis.Pipeliner, profile *model.Profile) {
	member := string(profile.ID)
	score := float64(profile.UpdatedAt.Unix())

	if profile.IsActive {
		pipe.ZAdd(ctx, profilesByActivityKey(), redis.Z{Score: score, Member: member})
	} else {
		pipe.ZRem(ctx, profilesByActivityKey(), member)
	}
	if profile.IsActive && profile.IsPublic {
		pipe.ZAdd(ctx, publicProfilesKey(), redis.Z{Score: score, Member: member})
	} else {
		pipe.ZRem(ctx, publicProfilesKey(), member)
	}
}

func (s *Storage) GetProfile(ctx context.Context, id model.ProfileID) (*model.Profile, error) {
	data, err := s.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, model.ProfileID(id))
}

func (s *Storage) GetProfileByShareCode(ctx context.Context, code model.ShareCode) (*model.Profile, error) {
	id, err := s.client.Get(ctx, profileCodeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, model.ProfileID(id))
}

func (s *Storage) ListProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	return s.listFromActivityIndex(ctx, profilesByActivityKey(), limit)
}

func (s *Storage) ListPublicProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	return s.listFromActivityIndex(ctx, publicProfilesKey(), limit)
}

func (s *Storage) listFromActivityIndex(ctx context.Context, indexKey string, limit int) ([]*model.Profile, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := s.client.ZRevRange(ctx, indexKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Profile{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(model.ProfileID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.Profile, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var p model.Profile
		if err := json.Unmarshal([]byte(val.(string)), &p); err != nil {
			continue
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

func (s *Storage) DeleteProfileOwnedBy(ctx context.Context, id model.ProfileID, deviceID model.DeviceID) error {
	key := profileKey(id)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrProfileNotFound
			}
			return err
		}

		var profile model.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			return err
		}
		if profile.DeviceID != deviceID {
			return model.ErrNotOwner
		}

		profile.IsActive = false
		updated, err := json.Marshal(&profile)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			pipe.ZRem(ctx, profilesByActivityKey(), string(id))
			pipe.ZRem(ctx, publicProfilesKey(), string(id))
			return nil
		})
		return err
	}, key)
}

// Device access operations

func (s *Storage) UpsertDeviceProfile(ctx context.Context, dp *model.DeviceProfile) error {
	data, err := json.Marshal(dp)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, deviceProfileKey(dp.DeviceID, dp.ProfileID), data, 0)
	pipe.SAdd(ctx, deviceAccessIndexKey(dp.DeviceID), string(dp.ProfileID))
	pipe.SAdd(ctx, profileDevicesIndexKey(dp.ProfileID), string(dp.DeviceID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) (*model.DeviceProfile, error) {
	data, err := s.client.Get(ctx, deviceProfileKey(deviceID, profileID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccessNotFound
		}
		return nil, err
	}

	var dp model.DeviceProfile
	if err := json.Unmarshal(data, &dp); err != nil {
		return nil, err
	}
	return &dp, nil
}

func (s *Storage) ListDeviceProfiles(ctx context.Context, deviceID model.DeviceID) ([]*model.DeviceProfile, error) {
	profileIDs, err := s.client.SMembers(ctx, deviceAccessIndexKey(deviceID)).Result()
	if err != nil {
		return nil, err
	}
	if len(profileIDs) == 0 {
		return []*model.DeviceProfile{}, nil
	}

	keys := make([]string, len(profileIDs))
	for i, pid := range profileIDs {
		keys[i] = deviceProfileKey(deviceID, model.ProfileID(pid))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.DeviceProfile, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var dp model.DeviceProfile
		if err := json.Unmarshal([]byte(val.(string)), &dp); err != nil {
			continue
		}
		records = append(records, &dp)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastUsed.After(records[j].LastUsed)
	})
	return records, nil
}

func (s *Storage) DeleteDeviceProfile(ctx context.Context, deviceID model.DeviceID, profileID model.ProfileID) error {
	deleted, err := s.client.Del(ctx, deviceProfileKey(deviceID, profileID)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return model.ErrAccessNotFound
	}

	pipe := s.client.Pipeline()
	pipe.SRem(ctx, deviceAccessIndexKey(deviceID), string(profileID))
	pipe.SRem(ctx, profileDevicesIndexKey(profileID), string(deviceID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteDeviceProfilesForProfile(ctx context.Context, profileID model.ProfileID) error {
	deviceIDs, err := s.client.SMembers(ctx, profileDevicesIndexKey(profileID)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, did := range deviceIDs {
		pipe.Del(ctx, deviceProfileKey(model.DeviceID(did), profileID))
		pipe.SRem(ctx, deviceAccessIndexKey(model.DeviceID(did)), string(profileID))
	}
	pipe.Del(ctx, profileDevicesIndexKey(profileID))
	_, err = pipe.Exec(ctx)
	return err
}

// Share permission operations

func (s *Storage) CreatePermission(ctx context.Context, p *model.SharePermission) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, permissionCodeIndexKey(p.Code), string(p.ID), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrShareCodeTaken
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, permissionKey(p.ID), data, 0)
	pipe.SAdd(ctx, profilePermissionsIndexKey(p.ProfileID), string(p.ID))
	s.queueExpiryIndex(ctx, pipe, p)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SavePermission(ctx context.Context, p *model.SharePermission) error {
	exists, err := s.client.Exists(ctx, permissionKey(p.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrPermissionNotFound
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, permissionKey(p.ID), data, 0)
	s.queueExpiryIndex(ctx, pipe, p)
	_, err = pipe.Exec(ctx)
	return err
}

// queueExpiryIndex tracks active timed permissions in a ZSET scored by
// expiry so the cleanup sweep can find them without a full scan
func (s *Storage) queueExpiryIndex(ctx context.Context, pipe redis.Pipeliner, p *model.SharePermission) {
	member := string(p.ID)
	if p.IsActive && p.ExpiresAt != nil {
		pipe.ZAdd(ctx, permissionExpiryKey(), redis.Z{
			Score:  float64(p.ExpiresAt.Unix()),
			Member: member,
		})
	} else {
		pipe.ZRem(ctx, permissionExpiryKey(), member)
	}
}

func (s *Storage) GetPermission(ctx context.Context, id model.PermissionID) (*model.SharePermission, error) {
	data, err := s.client.Get(ctx, permissionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPermissionNotFound
		}
		return nil, err
	}

	var p model.SharePermission
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetPermissionByCode(ctx context.Context, code model.ShareCode) (*model.SharePermission, error) {
	id, err := s.client.Get(ctx, permissionCodeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPermissionNotFound
		}
		return nil, err
	}
	return s.GetPermission(ctx, model.PermissionID(id))
}

func (s *Storage) ListPermissionsForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.SharePermission, error) {
	ids, err := s.client.SMembers(ctx, profilePermissionsIndexKey(profileID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.SharePermission{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = permissionKey(model.PermissionID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	permissions := make([]*model.SharePermission, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var p model.SharePermission
		if err := json.Unmarshal([]byte(val.(string)), &p); err != nil {
			continue
		}
		permissions = append(permissions, &p)
	}

	sort.Slice(permissions, func(i, j int) bool {
		return permissions[i].CreatedAt.After(permissions[j].CreatedAt)
	})
	return permissions, nil
}

func (s *Storage) ListExpiredActivePermissions(ctx context.Context, now time.Time) ([]*model.SharePermission, error) {
	ids, err := s.client.ZRangeByScore(ctx, permissionExpiryKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	var out []*model.SharePermission
	for _, id := range ids {
		p, err := s.GetPermission(ctx, model.PermissionID(id))
		if err != nil {
			if errors.Is(err, model.ErrPermissionNotFound) {
				continue
			}
			return nil, err
		}
		if p.IsActive && p.Expired(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, 0)
	for _, gp := range game.Players {
		if gp.Participant.ProfileID != nil {
			pipe.SAdd(ctx, profileGamesIndexKey(*gp.Participant.ProfileID), string(game.ID))
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGamesForProfile(ctx context.Context, profileID model.ProfileID) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, profileGamesIndexKey(profileID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var g model.Game
		if err := json.Unmarshal([]byte(val.(string)), &g); err != nil {
			continue
		}
		games = append(games, &g)
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].FinishedAt.After(games[j].FinishedAt)
	})
	return games, nil
}
