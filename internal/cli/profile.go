package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile management commands",
	}

	cmd.AddCommand(newProfileCreateCmd())
	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfileByCodeCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileMineCmd())
	cmd.AddCommand(newProfileAccessibleCmd())
	cmd.AddCommand(newProfileCheckCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfilePrivacyCmd())
	cmd.AddCommand(newProfileClaimCmd())
	cmd.AddCommand(newProfileStatsCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileForgetCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

func newProfileCreateCmd() *cobra.Command {
	var username, name, commander, colors string
	var public bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile owned by this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"username":          username,
				"display_name":      name,
				"primary_commander": commander,
				"color_identity":    colors,
				"is_public":         public,
			}
			var result Profile

			if err := client.Post("/api/v1/profiles", req, &result); err != nil {
				return err
			}

			cache.PutProfile(result)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&commander, "commander", "", "Primary commander")
	cmd.Flags().StringVar(&colors, "colors", "", "Color identity (WUBRG symbols)")
	cmd.Flags().BoolVar(&public, "public", false, "List the profile publicly")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newProfileGetCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "get <profile-id>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			// Cache-first unless a refresh is forced
			if !refresh {
				if p, ok := cache.GetProfile(args[0]); ok {
					out.Print(p)
					return nil
				}
			}

			var result Profile
			if err := client.Get("/api/v1/profiles/"+args[0], &result); err != nil {
				return err
			}

			cache.PutProfile(result)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local cache")

	return cmd
}

func newProfileByCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "by-code <share-code>",
		Short: "Look up a profile by its share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile
			if err := client.Get("/api/v1/profiles/by-code/"+url.PathEscape(args[0]), &result); err != nil {
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

func newProfileListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ProfileList
			path := fmt.Sprintf("/api/v1/profiles?limit=%d", limit)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of profiles")

	return cmd
}

func newProfileMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List profiles owned by this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Profile
			if err := client.Get("/api/v1/device/profiles/owned", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(AccessibleProfiles{Owned: result})
			return nil
		},
	}
}

func newProfileAccessibleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accessible",
		Short: "List profiles this device can see, by access bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AccessibleProfiles
			if err := client.Get("/api/v1/device/profiles", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProfileCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <username>",
		Short: "Check whether a username is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UsernameCheck
			path := "/api/v1/profiles/username-check?username=" + url.QueryEscape(args[0])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	var name, commander, colors string

	cmd := &cobra.Command{
		Use:   "update <profile-id>",
		Short: "Update profile fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("name") {
				req["display_name"] = name
			}
			if cmd.Flags().Changed("commander") {
				req["primary_commander"] = commander
			}
			if cmd.Flags().Changed("colors") {
				req["color_identity"] = colors
			}
			if len(req) == 0 {
				return fmt.Errorf("nothing to update")
			}

			var result Profile
			if err := client.Patch("/api/v1/profiles/"+args[0], req, &result); err != nil {
				return err
			}

			cache.PutProfile(result)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&commander, "commander", "", "Primary commander")
	cmd.Flags().StringVar(&colors, "colors", "", "Color identity (WUBRG symbols)")

	return cmd
}

func newProfilePrivacyCmd() *cobra.Command {
	var public bool

	cmd := &cobra.Command{
		Use:   "privacy <profile-id>",
		Short: "Set a profile's public visibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"is_public": public}

			var result Profile
			if err := client.Patch("/api/v1/profiles/"+args[0]+"/privacy", req, &result); err != nil {
				return err
			}

			cache.PutProfile(result)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&public, "public", false, "Make the profile publicly listed")

	return cmd
}

func newProfileClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <profile-id>",
		Short: "Claim ownership of a profile with no owning device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile
			if err := client.Post("/api/v1/profiles/"+args[0]+"/claim", nil, &result); err != nil {
				return err
			}

			cache.PutProfile(result)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProfileStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <profile-id>",
		Short: "Show a profile's aggregated game stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ProfileStats
			if err := client.Get("/api/v1/profiles/"+args[0]+"/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile-id>",
		Short: "Mark a profile as recently used by this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/profiles/"+args[0]+"/usage", nil, nil); err != nil {
				return err
			}

			if p, ok := cache.GetProfile(args[0]); ok {
				cache.AddRecentPlayer(RecentPlayer{
					ProfileID:   p.ID,
					DisplayName: p.DisplayName,
					ShareCode:   p.ShareCode,
				})
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Profile usage recorded")
			return nil
		},
	}
}

func newProfileForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <profile-id>",
		Short: "Remove this device's access to a shared or recent profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/device/profiles/" + args[0]); err != nil {
				return err
			}

			cache.EvictProfile(args[0])

			out := NewOutput(cfg.Output)
			out.PrintMessage("Access removed")
			return nil
		},
	}
}

func newProfileDeleteCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete <profile-id>",
		Short: "Delete a profile owned by this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("deletion is permanent; re-run with --yes to confirm")
			}

			if err := client.Delete("/api/v1/profiles/" + args[0]); err != nil {
				return err
			}

			cache.EvictProfile(args[0])

			out := NewOutput(cfg.Output)
			out.PrintMessage("Profile deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")

	return cmd
}
