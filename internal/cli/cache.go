package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	// MaxRecentPlayers caps the recent-players list
	MaxRecentPlayers = 10
	// ProfileCacheTTL is how long a cached profile stays fresh
	ProfileCacheTTL = 24 * time.Hour

	recentFile      = "recent_players.json"
	profileCacheDir = "profile_cache"
)

// RecentPlayer is one entry in the recent-players list
type RecentPlayer struct {
	ProfileID   string    `json:"profile_id"`
	DisplayName string    `json:"display_name"`
	ShareCode   string    `json:"share_code"`
	LastSeen    time.Time `json:"last_seen"`
}

// cachedProfile wraps a cached profile with its storage timestamp
type cachedProfile struct {
	Profile  Profile   `json:"profile"`
	CachedAt time.Time `json:"cached_at"`
}

// Cache is the local recency store. Every operation degrades to an
// empty result or no-op on storage failure; the caller must treat cache
// absence as a normal state.
type Cache struct {
	dir     string
	session []RecentPlayer // session player list, in-process only
}

// NewCache creates a cache rooted at dir
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// RecentPlayers returns the recent-players list, most recent first
func (c *Cache) RecentPlayers() []RecentPlayer {
	data, err := os.ReadFile(filepath.Join(c.dir, recentFile))
	if err != nil {
		return nil
	}

	var players []RecentPlayer
	if err := json.Unmarshal(data, &players); err != nil {
		return nil
	}
	return players
}

// AddRecentPlayer pushes a player to the front of the recent list,
// deduplicating by profile id and capping the length
func (c *Cache) AddRecentPlayer(player RecentPlayer) {
	player.LastSeen = time.Now()

	players := []RecentPlayer{player}
	for _, p := range c.RecentPlayers() {
		if p.ProfileID == player.ProfileID {
			continue
		}
		players = append(players, p)
		if len(players) == MaxRecentPlayers {
			break
		}
	}

	c.writeJSON(filepath.Join(c.dir, recentFile), players)
}

// GetProfile returns a cached profile if present and fresh. Stale
// entries are evicted on read.
func (c *Cache) GetProfile(profileID string) (Profile, bool) {
	path := c.profilePath(profileID)

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, false
	}

	var entry cachedProfile
	if err := json.Unmarshal(data, &entry); err != nil {
		return Profile{}, false
	}

	if time.Since(entry.CachedAt) > ProfileCacheTTL {
		_ = os.Remove(path)
		return Profile{}, false
	}
	return entry.Profile, true
}

// PutProfile caches a profile, refreshing its TTL
func (c *Cache) PutProfile(p Profile) {
	c.writeJSON(c.profilePath(p.ID), cachedProfile{
		Profile:  p,
		CachedAt: time.Now(),
	})
}

// EvictProfile drops a profile from the cache
func (c *Cache) EvictProfile(profileID string) {
	_ = os.Remove(c.profilePath(profileID))
}

// SessionPlayers returns the in-process session player list
func (c *Cache) SessionPlayers() []RecentPlayer {
	return c.session
}

// AddSessionPlayer appends a player to the session list, deduplicating
// by profile id
func (c *Cache) AddSessionPlayer(player RecentPlayer) {
	for _, p := range c.session {
		if p.ProfileID == player.ProfileID {
			return
		}
	}
	c.session = append(c.session, player)
}

// ClearSession empties the session player list
func (c *Cache) ClearSession() {
	c.session = nil
}

func (c *Cache) profilePath(profileID string) string {
	return filepath.Join(c.dir, profileCacheDir, profileID+".json")
}

func (c *Cache) writeJSON(path string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	_ = os.WriteFile(path, raw, 0600)
}
