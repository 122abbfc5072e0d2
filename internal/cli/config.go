package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	DataDir   string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("CMDTRACK_SERVER", "http://localhost:8080"),
		DataDir:   getEnvOrDefault("CMDTRACK_DATA_DIR", defaultDataDir()),
		Output:    "text",
		Verbose:   false,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".commandtrack"
	}
	return filepath.Join(home, ".commandtrack")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
