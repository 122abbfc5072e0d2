package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickagee13/commandtrack/internal/api"
	"github.com/nickagee13/commandtrack/internal/factory"
	"github.com/nickagee13/commandtrack/internal/testutil"
)

// cliRunner manages CLI binary execution. Each runner gets its own data
// directory, so each behaves as a distinct device.
type cliRunner struct {
	binaryPath string
	serverURL  string
	dataDir    string
}

func newCLIRunner(t *testing.T, binaryPath, serverURL string) *cliRunner {
	t.Helper()

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		dataDir:    t.TempDir(),
	}
}

func buildCLI(t *testing.T) string {
	t.Helper()

	projectRoot := findProjectRoot(t)
	binaryPath := filepath.Join(projectRoot, "bin", "cmdtrack-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cmdtrack")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return binaryPath
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--data-dir", r.dataDir,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application with in-memory storage
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	logger := testutil.NopLogger()
	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		ProfileService:   app.ProfileService,
		OwnershipService: app.OwnershipService,
		ShareService:     app.ShareService,
		GameService:      app.GameService,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready")
}

func TestCLIEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	server := startTestServer(t)
	defer server.shutdown()

	binary := buildCLI(t)
	deviceA := newCLIRunner(t, binary, server.addr)
	deviceB := newCLIRunner(t, binary, server.addr)

	t.Run("health", func(t *testing.T) {
		output, err := deviceA.run("health")
		require.NoError(t, err, output)

		var health struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &health))
		assert.Equal(t, "ok", health.Status)
	})

	var profileID string
	t.Run("create profile", func(t *testing.T) {
		output, err := deviceA.run("profile", "create",
			"--username", "alice",
			"--name", "Alice",
			"--commander", "Atraxa, Praetors' Voice",
			"--colors", "WUBG")
		require.NoError(t, err, output)

		var profile struct {
			ID        string `json:"id"`
			Username  string `json:"username"`
			ShareCode string `json:"share_code"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &profile))
		assert.Equal(t, "alice", profile.Username)
		assert.Len(t, profile.ShareCode, 6)
		profileID = profile.ID
	})

	t.Run("username check", func(t *testing.T) {
		output, err := deviceA.run("profile", "check", "alice")
		require.NoError(t, err, output)

		var check struct {
			Available bool `json:"available"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &check))
		assert.False(t, check.Available)
	})

	var shareCode string
	t.Run("mint share code", func(t *testing.T) {
		output, err := deviceA.run("share", "create", profileID, "--type", "permanent")
		require.NoError(t, err, output)

		var permission struct {
			Code     string `json:"code"`
			IsActive bool   `json:"is_active"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &permission))
		assert.True(t, permission.IsActive)
		shareCode = permission.Code
	})

	t.Run("other device cannot mint", func(t *testing.T) {
		output, err := deviceB.run("share", "create", profileID, "--type", "permanent")
		require.Error(t, err, output)
		assert.Contains(t, output, "NOT_OWNER")
	})

	t.Run("redeem on second device", func(t *testing.T) {
		output, err := deviceB.run("share", "redeem", shareCode)
		require.NoError(t, err, output)

		var profile struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &profile))
		assert.Equal(t, profileID, profile.ID)
	})

	t.Run("shared bucket on second device", func(t *testing.T) {
		output, err := deviceB.run("profile", "accessible")
		require.NoError(t, err, output)

		var accessible struct {
			Owned  []struct{ ID string } `json:"owned"`
			Shared []struct{ ID string } `json:"shared"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &accessible))
		assert.Empty(t, accessible.Owned)
		require.Len(t, accessible.Shared, 1)
		assert.Equal(t, profileID, accessible.Shared[0].ID)
	})

	t.Run("record game", func(t *testing.T) {
		doc := filepath.Join(t.TempDir(), "game.json")
		game := map[string]any{
			"players": []map[string]any{
				{"profile_id": profileID, "display_name": "Alice", "placement": 1, "damage_dealt": 21},
				{"guest_name": "Dave", "placement": 2},
			},
			"turn_count": 9,
		}
		raw, err := json.Marshal(game)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(doc, raw, 0600))

		output, err := deviceA.run("game", "record", "--file", doc)
		require.NoError(t, err, output)

		var recorded struct {
			ID      string `json:"id"`
			Players []any  `json:"players"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &recorded))
		assert.Len(t, recorded.Players, 2)
	})

	t.Run("stats reflect game", func(t *testing.T) {
		output, err := deviceA.run("profile", "stats", profileID)
		require.NoError(t, err, output)

		var stats struct {
			GamesPlayed int `json:"games_played"`
			Wins        int `json:"wins"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &stats))
		assert.Equal(t, 1, stats.GamesPlayed)
		assert.Equal(t, 1, stats.Wins)
	})
}
