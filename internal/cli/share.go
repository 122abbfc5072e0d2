package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newShareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share code commands",
	}

	cmd.AddCommand(newShareCreateCmd())
	cmd.AddCommand(newShareSessionCmd())
	cmd.AddCommand(newShareListCmd())
	cmd.AddCommand(newShareRedeemCmd())
	cmd.AddCommand(newShareRevokeCmd())
	cmd.AddCommand(newShareCleanupCmd())

	return cmd
}

func newShareCreateCmd() *cobra.Command {
	var shareType string
	var expiresIn int64
	var maxUses int

	cmd := &cobra.Command{
		Use:   "create <profile-id>",
		Short: "Mint a share code for an owned profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"type": shareType}
			if cmd.Flags().Changed("expires-in") {
				req["expires_in_seconds"] = expiresIn
			}
			if cmd.Flags().Changed("max-uses") {
				req["max_uses"] = maxUses
			}

			var result SharePermission
			if err := client.Post("/api/v1/profiles/"+args[0]+"/shares", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&shareType, "type", "temporary", "Share type: temporary, permanent, game_session")
	cmd.Flags().Int64Var(&expiresIn, "expires-in", 0, "Lifetime in seconds (temporary codes only)")
	cmd.Flags().IntVar(&maxUses, "max-uses", 0, "Maximum redemptions")

	return cmd
}

func newShareSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session <profile-id>",
		Short: "Mint a game session share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SharePermission
			if err := client.Post("/api/v1/profiles/"+args[0]+"/shares/session", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newShareListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <profile-id>",
		Short: "List share codes minted for an owned profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ShareCodeList
			path := "/api/v1/shares?profile_id=" + url.QueryEscape(args[0])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newShareRedeemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem <code>",
		Short: "Redeem a share code for this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"code": args[0]}

			var result Profile
			if err := client.Post("/api/v1/shares/redeem", req, &result); err != nil {
				return err
			}

			cache.PutProfile(result)
			cache.AddRecentPlayer(RecentPlayer{
				ProfileID:   result.ID,
				DisplayName: result.DisplayName,
				ShareCode:   result.ShareCode,
			})

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newShareRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <permission-id>",
		Short: "Deactivate a share code early",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/shares/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Share code deactivated")
			return nil
		},
	}
}

func newShareCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <profile-id>",
		Short: "Retire expired share codes for an owned profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CleanupResult
			if err := client.Post("/api/v1/profiles/"+args[0]+"/shares/cleanup", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
