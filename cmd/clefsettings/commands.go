package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	settings "github.com/goliatone/go-clef-settings"
)

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings map and storage mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"option":   a.resolver.OptionName(),
				"mode":     a.resolver.Mode().String(),
				"settings": a.resolver.All(),
			})
		},
	}
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			value, ok := a.resolver.Get(args[0])
			if !ok {
				return fmt.Errorf("setting %q is not set", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), value)
		},
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store one setting",
		Long: `Store one setting. VALUE is parsed as JSON when possible and stored as a
plain string otherwise. Falsy values ("", "0", false, 0) are ignored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return a.resolver.Set(a.context(cmd), args[0], parseValue(args[1]))
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove KEY",
		Short: "Remove one setting and print its previous value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			previous, err := a.resolver.Remove(a.context(cmd), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), previous)
		},
	}
}

func newPolicyCommand() *cobra.Command {
	var (
		userID int64
		roles  []string
	)
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the password policy, optionally for one user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := a.context(cmd)
			report := map[string]any{
				"mode":                        a.resolver.Mode().String(),
				"configured":                  a.resolver.IsConfigured(),
				"multisite_enabled":           a.resolver.IsMultisiteEnabled(ctx),
				"multisite_disallow_override": a.resolver.MultisiteDisallowSettingsOverride(ctx),
				"passwords_disabled":          a.resolver.PasswordsDisabled(),
				"xml_passwords_enabled":       a.resolver.XMLPasswordsEnabled(),
			}
			if cmd.Flags().Changed("user-id") {
				user := settings.User{ID: userID, Roles: roles}
				report["user_id"] = userID
				report["passwords_disabled_for_user"] = a.resolver.PasswordsAreDisabledForUser(ctx, user)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 0, "User to evaluate")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "Roles of the user, comma separated")
	return cmd
}

func newEvalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval EXPRESSION",
		Short: "Evaluate a boolean expression against the settings map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.resolver.Evaluate(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newSeedCommand() *cobra.Command {
	var (
		multisite     bool
		allowOverride bool
		superAdmins   []int64
		links         []string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Prepare the host database: network activation, multisite flags and users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openHost(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := a.context(cmd)
			if multisite {
				if err := a.host.ActivatePluginForNetwork(ctx, a.cfg.PluginFile); err != nil {
					return err
				}
				if err := a.host.UpdateSiteOption(ctx, settings.MultisiteEnabledOption, true); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("allow-override") {
				if err := a.host.UpdateSiteOption(ctx, settings.MultisiteAllowOverrideOption, allowOverride); err != nil {
					return err
				}
			}
			for _, id := range superAdmins {
				if err := a.host.GrantSuperAdmin(ctx, id); err != nil {
					return err
				}
			}
			for _, link := range links {
				userID, clefID, err := parseLink(link)
				if err != nil {
					return err
				}
				if err := a.host.SetUserMeta(ctx, userID, settings.UserMetaClefID, clefID); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&multisite, "multisite", false, "Network activate the plugin and enable shared settings")
	cmd.Flags().BoolVar(&allowOverride, "allow-override", false, "Let sites keep their own settings")
	cmd.Flags().Int64SliceVar(&superAdmins, "super-admin", nil, "Grant super administrator to user IDs")
	cmd.Flags().StringSliceVar(&links, "link", nil, "Link users to Clef IDs as USER_ID=CLEF_ID")
	return cmd
}

// parseValue reads JSON literals and falls back to the raw string.
func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}

func parseLink(link string) (int64, string, error) {
	user, clefID, ok := strings.Cut(link, "=")
	if !ok || strings.TrimSpace(clefID) == "" {
		return 0, "", fmt.Errorf("invalid link %q: expected USER_ID=CLEF_ID", link)
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(user), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid link %q: %w", link, err)
	}
	return userID, strings.TrimSpace(clefID), nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
