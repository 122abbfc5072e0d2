package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game record commands",
	}

	cmd.AddCommand(newGameRecordCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameHistoryCmd())

	return cmd
}

func newGameRecordCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a completed game from a JSON document",
		Long: `Record a completed game. The game document is read from --file,
or from stdin when --file is "-" or omitted. Example document:

  {
    "players": [
      {"profile_id": "profile_abc", "placement": 1, "damage_dealt": 21},
      {"guest_name": "Dave", "placement": 2}
    ],
    "turn_count": 11
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if file == "" || file == "-" {
				raw, err = io.ReadAll(os.Stdin)
			} else {
				raw, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("failed to read game document: %w", err)
			}

			var req map[string]any
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("invalid game document: %w", err)
			}

			var result Game
			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Game document path (default: stdin)")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id>",
		Short: "Show a recorded game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Get("/api/v1/games/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <profile-id>",
		Short: "List a profile's recorded games",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameList
			if err := client.Get("/api/v1/profiles/"+args[0]+"/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
