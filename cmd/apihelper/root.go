package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/apihelper/httpclient"
)

// rootOption customizes the command tree; tests use it to swap the transport.
type rootOption func(*cliEnv)

func withDoer(d httpclient.Doer) rootOption {
	return func(e *cliEnv) { e.doer = d }
}

func newRootCmd(opts ...rootOption) *cobra.Command {
	env := &cliEnv{v: viper.New()}
	for _, opt := range opts {
		opt(env)
	}

	root := &cobra.Command{
		Use:           "apihelper",
		Short:         "Multi-provider API client",
		Long:          "apihelper signs in to social and platform APIs (Facebook, Google, VK, OK, Mail.ru, Yandex, Battle.net) and calls their methods.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return env.close(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&env.configFile, "config", "c", "", "Config file (default: ./apihelper.yml or the user config dir)")
	flags.String("log-level", "", "Log level override")
	flags.String("store", "", "Snapshot store backend override (memory, file, redis)")
	flags.String("store-dir", "", "Directory of the file snapshot store")

	_ = env.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = env.v.BindPFlag("store.backend", flags.Lookup("store"))
	_ = env.v.BindPFlag("store.dir", flags.Lookup("store-dir"))

	root.AddCommand(
		newProvidersCmd(env),
		newAuthURLCmd(env),
		newLoginCmd(env),
		newCallCmd(env),
		newRefreshCmd(env),
		newLogoutCmd(env),
		newCaptchaCmd(env),
		newVersionCmd(),
	)
	return root
}
