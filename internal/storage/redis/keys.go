package redis

import (
	"fmt"

	"github.com/nickagee13/commandtrack/internal/model"
)

// Key prefix for all tracker data
const keyPrefix = "cmdrtrack"

// profileKey returns the Redis key for a Profile
func profileKey(id model.ProfileID) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> profile_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// profileCodeIndexKey returns the Redis key for the share_code -> profile_id index
func profileCodeIndexKey(code model.ShareCode) string {
	return fmt.Sprintf("%s:idx:profile_code:%s", keyPrefix, code)
}

// profilesByActivityKey returns the ZSET of active profile ids scored by last activity
func profilesByActivityKey() string {
	return fmt.Sprintf("%s:idx:profiles_by_activity", keyPrefix)
}

// publicProfilesKey returns the ZSET of active public profile ids scored by last activity
func publicProfilesKey() string {
	return fmt.Sprintf("%s:idx:public_profiles", keyPrefix)
}

// deviceProfileKey returns the Redis key for a DeviceProfile record
func deviceProfileKey(deviceID model.DeviceID, profileID model.ProfileID) string {
	return fmt.Sprintf("%s:device_profile:%s:%s", keyPrefix, deviceID, profileID)
}

// deviceAccessIndexKey returns the SET of profile ids a device has records for
func deviceAccessIndexKey(deviceID model.DeviceID) string {
	return fmt.Sprintf("%s:idx:device_access:%s", keyPrefix, deviceID)
}

// profileDevicesIndexKey returns the SET of device ids with records for a profile
func profileDevicesIndexKey(profileID model.ProfileID) string {
	return fmt.Sprintf("%s:idx:profile_devices:%s", keyPrefix, profileID)
}

// permissionKey returns the Redis key for a SharePermission
func permissionKey(id model.PermissionID) string {
	return fmt.Sprintf("%s:permission:%s", keyPrefix, id)
}

// permissionCodeIndexKey returns the Redis key for the code -> permission_id index
func permissionCodeIndexKey(code model.ShareCode) string {
	return fmt.Sprintf("%s:idx:permission_code:%s", keyPrefix, code)
}

// profilePermissionsIndexKey returns the SET of permission ids for a profile
func profilePermissionsIndexKey(profileID model.ProfileID) string {
	return fmt.Sprintf("%s:idx:profile_permissions:%s", keyPrefix, profileID)
}

// permissionExpiryKey returns the ZSET of active timed permission ids scored by expiry
func permissionExpiryKey() string {
	return fmt.Sprintf("%s:idx:permission_expiry", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// profileGamesIndexKey returns the SET of game ids a profile participated in
func profileGamesIndexKey(profileID model.ProfileID) string {
	return fmt.Sprintf("%s:idx:profile_games:%s", keyPrefix, profileID)
}
