package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProvidersCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their configuration state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFLOW\tCONFIGURED")
			for _, name := range env.registry.Names() {
				flow := "api"
				if env.registry.IsOAuth2(name) {
					flow = "oauth2"
				}
				_, configured := env.cfg.Provider(name)
				fmt.Fprintf(w, "%s\t%s\t%v\n", name, flow, configured)
			}
			return w.Flush()
		},
	}
}
