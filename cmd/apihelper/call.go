package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/logger"
	"github.com/kbukum/apihelper/resilience"
)

func newCallCmd(env *cliEnv) *cobra.Command {
	var (
		profile string
		post    bool
		retries int
	)
	cmd := &cobra.Command{
		Use:   "call <provider> <method> [key=value...]",
		Short: "Call an API method and print the decoded response",
		Long: "Call an API method with the stored session of the provider, or with the configured " +
			"credentials when none is stored. Service-unavailable and transport failures are retried.",
		Example: "  apihelper call vk users.get user_ids=1 fields=photo_50\n  apihelper call yandex info --post",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, method := args[0], args[1]
			params, err := parseParams(args[2:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, _, err := env.session(ctx, name, profile)
			if err != nil {
				return err
			}

			httpMethod := http.MethodGet
			if post {
				httpMethod = http.MethodPost
			}
			retryCfg := env.cfg.Retry
			if cmd.Flags().Changed("retries") {
				retryCfg.MaxAttempts = retries + 1
			}
			retryCfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
				env.log.Warn("Retrying call", logger.Fields(
					"provider", name,
					"method", method,
					"attempt", attempt,
					"backoff", backoff.String(),
					"error", err.Error(),
				))
			}

			res, err := resilience.Retry(ctx, retryCfg, func() (*client.Result, error) {
				return c.Do(ctx, method, params, httpMethod)
			})
			if err != nil {
				return err
			}
			if res.Data == nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(res.Body), "\n"))
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Data)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Snapshot name (default: provider name)")
	cmd.Flags().BoolVar(&post, "post", false, "Send a form-encoded POST instead of GET")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retries on retryable failures (default: from config)")
	return cmd
}
