package cli

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentPlayersMRUOrder(t *testing.T) {
	cache := NewCache(t.TempDir())

	cache.AddRecentPlayer(RecentPlayer{ProfileID: "p1", DisplayName: "alice"})
	cache.AddRecentPlayer(RecentPlayer{ProfileID: "p2", DisplayName: "bob"})
	cache.AddRecentPlayer(RecentPlayer{ProfileID: "p3", DisplayName: "carol"})

	players := cache.RecentPlayers()
	require.Len(t, players, 3)
	assert.Equal(t, "p3", players[0].ProfileID)
	assert.Equal(t, "p1", players[2].ProfileID)
}

func TestRecentPlayersDedupMovesToFront(t *testing.T) {
	cache := NewCache(t.TempDir())

	cache.AddRecentPlayer(RecentPlayer{ProfileID: "p1"})
	cache.AddRecentPlayer(RecentPlayer{ProfileID: "p2"})
	cache.AddRecentPlayer(RecentPlayer{ProfileID: "p1"})

	players := cache.RecentPlayers()
	require.Len(t, players, 2)
	assert.Equal(t, "p1", players[0].ProfileID)
	assert.Equal(t, "p2", players[1].ProfileID)
}

func TestRecentPlayersCapped(t *testing.T) {
	cache := NewCache(t.TempDir())

	for i := 0; i < MaxRecentPlayers+5; i++ {
		cache.AddRecentPlayer(RecentPlayer{ProfileID: fmt.Sprintf("p%d", i)})
	}

	players := cache.RecentPlayers()
	require.Len(t, players, MaxRecentPlayers)
	assert.Equal(t, fmt.Sprintf("p%d", MaxRecentPlayers+4), players[0].ProfileID)
}

func TestProfileCacheRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir())

	cache.PutProfile(Profile{ID: "p1", Username: "alice"})

	got, ok := cache.GetProfile("p1")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	_, ok = cache.GetProfile("missing")
	assert.False(t, ok)
}

func TestProfileCacheEvictsStaleEntries(t *testing.T) {
	cache := NewCache(t.TempDir())

	cache.writeJSON(cache.profilePath("p1"), cachedProfile{
		Profile:  Profile{ID: "p1"},
		CachedAt: time.Now().Add(-25 * time.Hour),
	})

	_, ok := cache.GetProfile("p1")
	assert.False(t, ok)

	// The stale file is gone, not just skipped
	_, ok = cache.GetProfile("p1")
	assert.False(t, ok)
}

func TestCacheDegradesOnUnwritableDir(t *testing.T) {
	// A path that cannot exist: operations become no-ops, not errors
	cache := NewCache("/dev/null/nope")

	cache.AddRecentPlayer(RecentPlayer{ProfileID: "p1"})
	assert.Empty(t, cache.RecentPlayers())

	cache.PutProfile(Profile{ID: "p1"})
	_, ok := cache.GetProfile("p1")
	assert.False(t, ok)
}

func TestSessionPlayersInProcessOnly(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir)

	cache.AddSessionPlayer(RecentPlayer{ProfileID: "p1"})
	cache.AddSessionPlayer(RecentPlayer{ProfileID: "p1"})
	cache.AddSessionPlayer(RecentPlayer{ProfileID: "p2"})

	require.Len(t, cache.SessionPlayers(), 2)

	// A fresh cache over the same dir has no session state
	assert.Empty(t, NewCache(dir).SessionPlayers())

	cache.ClearSession()
	assert.Empty(t, cache.SessionPlayers())
}
