package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/apihelper/logger"
	"github.com/kbukum/apihelper/server"
)

func newLoginCmd(env *cliEnv) *cobra.Command {
	var (
		profile string
		port    int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Authorize with an OAuth2 provider and store the session",
		Long: "Start a loopback listener for the redirect, print the consent URL and wait for the provider " +
			"to redirect back. The exchanged tokens are saved to the snapshot store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !env.registry.IsOAuth2(name) {
				return fmt.Errorf("provider %q does not use OAuth2", name)
			}
			pc, err := env.providerConfig(name)
			if err != nil {
				return err
			}

			srvCfg := env.cfg.Callback
			if port != 0 {
				srvCfg.Port = port
			}
			if pc.RedirectURI != "" {
				if srvCfg, err = listenerFor(pc.RedirectURI, srvCfg); err != nil {
					return err
				}
			}

			state := uuid.NewString()
			srv := server.New(srvCfg, state, env.log)
			ctx := cmd.Context()
			if err := srv.Start(ctx); err != nil {
				return err
			}
			defer srv.Stop(ctx)
			if pc.RedirectURI == "" {
				pc.RedirectURI = srv.RedirectURI()
			}

			oc, err := env.registry.NewOAuth2Client(name, pc, env.clientOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in a browser to authorize %s:\n\n  %s\n\n", name, oc.AuthorizationURL(state, nil))

			waitCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			cb, err := srv.Wait(waitCtx)
			if err != nil {
				return err
			}
			if _, err := oc.Authorize(ctx, cb.Code, nil); err != nil {
				return err
			}

			if profile == "" {
				profile = name
			}
			if err := env.snaps.Save(ctx, profile, oc); err != nil {
				return err
			}
			env.log.Info("Session stored", logger.Fields("provider", name, "profile", profile))
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %q (profile %s)\n", name, oc.AccountID(), profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Snapshot name (default: provider name)")
	cmd.Flags().IntVar(&port, "port", 0, "Callback listener port (default: random)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for the redirect")
	return cmd
}

// listenerFor binds the callback listener to a configured loopback redirect URI.
func listenerFor(redirectURI string, cfg server.Config) (server.Config, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return cfg, fmt.Errorf("redirect_uri: %w", err)
	}
	host := u.Hostname()
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return cfg, fmt.Errorf("redirect_uri %s is not a loopback address; login needs http://127.0.0.1:<port>/<path>", redirectURI)
	}
	if u.Scheme != "http" {
		return cfg, fmt.Errorf("redirect_uri %s must use http", redirectURI)
	}
	cfg.Host = host
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return cfg, fmt.Errorf("redirect_uri port: %w", err)
		}
		cfg.Port = n
	} else {
		cfg.Port = 80
	}
	if u.Path != "" {
		cfg.Path = u.Path
	}
	return cfg, nil
}
