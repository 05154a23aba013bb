package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newAuthURLCmd(env *cliEnv) *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "auth-url <provider> [key=value...]",
		Short: "Print the consent page URL of an OAuth2 provider",
		Long:  "Print the consent page URL. Extra key=value arguments are added to the query; the provider's defaults are kept.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !env.registry.IsOAuth2(name) {
				return fmt.Errorf("provider %q does not use OAuth2", name)
			}
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			pc, err := env.providerConfig(name)
			if err != nil {
				return err
			}
			oc, err := env.registry.NewOAuth2Client(name, pc, env.clientOptions()...)
			if err != nil {
				return err
			}
			if state == "" {
				state = uuid.NewString()
			}
			fmt.Fprintln(cmd.OutOrStdout(), oc.AuthorizationURL(state, params))
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "State parameter (default: random UUID)")
	return cmd
}
