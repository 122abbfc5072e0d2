package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
	cache  *Cache
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "cmdtrack",
		Short: "CLI tool for the Commander life tracker API",
		Long: `cmdtrack is a CLI tool for interacting with the Commander life tracker API.

It manages player profiles, share codes and game records. A device token
is minted on first use and sent with every request to scope profile
ownership to this machine.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			identity := NewDeviceIdentity(cfg.DataDir)
			client = NewClient(cfg.ServerURL, identity.DeviceID())
			cache = NewCache(cfg.DataDir)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CMDTRACK_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Local data directory (env: CMDTRACK_DATA_DIR)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
