package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRefreshCmd(env *cliEnv) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "refresh <provider>",
		Short: "Refresh the stored access token of an OAuth2 session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if profile == "" {
				profile = name
			}
			ctx := cmd.Context()
			snap, err := env.snaps.Load(ctx, profile)
			if err != nil {
				return err
			}
			if snap == nil {
				return fmt.Errorf("no stored session %q; run apihelper login %s first", profile, name)
			}
			if snap.Provider != name {
				return fmt.Errorf("snapshot %q belongs to provider %q", profile, snap.Provider)
			}
			oc, err := env.registry.RestoreOAuth2(*snap, env.clientOptions()...)
			if err != nil {
				return err
			}
			if _, err := oc.RefreshAccessToken(ctx, nil); err != nil {
				return err
			}
			if err := env.snaps.Save(ctx, profile, oc); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if exp := oc.TokenExpiresAt(); !exp.IsZero() {
				fmt.Fprintf(out, "Refreshed %s; token expires %s\n", profile, exp.Format(time.RFC3339))
			} else {
				fmt.Fprintf(out, "Refreshed %s\n", profile)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Snapshot name (default: provider name)")
	return cmd
}

func newLogoutCmd(env *cliEnv) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "logout <provider>",
		Short: "Delete the stored session of a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if profile == "" {
				profile = args[0]
			}
			if err := env.snaps.Delete(cmd.Context(), profile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Snapshot name (default: provider name)")
	return cmd
}
