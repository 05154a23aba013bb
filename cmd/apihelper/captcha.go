package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/apihelper/providers"
)

func newCaptchaCmd(env *cliEnv) *cobra.Command {
	var remoteIP string
	cmd := &cobra.Command{
		Use:   "captcha <response-token>",
		Short: "Verify a reCAPTCHA response token",
		Long:  "Verify a reCAPTCHA response token with the secret from providers.recaptcha.client_secret. Exits non-zero when verification fails.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := env.providerConfig("recaptcha")
			if err != nil {
				return err
			}
			rc, err := providers.NewReCaptcha(pc, env.clientOptions()...)
			if err != nil {
				return err
			}
			res, err := rc.Verify(cmd.Context(), args[0], remoteIP)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("verification failed: %v", rc.LastErrors())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&remoteIP, "remote-ip", "", "End user's IP address")
	return cmd
}
