package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/config"
	"github.com/kbukum/apihelper/httpclient"
	"github.com/kbukum/apihelper/logger"
	"github.com/kbukum/apihelper/observability"
	"github.com/kbukum/apihelper/providers"
	"github.com/kbukum/apihelper/store"
)

// cliEnv is the state shared by all commands of one invocation.
type cliEnv struct {
	v          *viper.Viper
	configFile string

	cfg      *config.AppConfig
	log      *logger.Logger
	metrics  *observability.Metrics
	shutdown func(context.Context) error
	doer     httpclient.Doer
	registry *providers.Registry
	backend  store.Backend
	snaps    *store.SnapshotStore
}

func (e *cliEnv) init(ctx context.Context) error {
	opts := []config.LoaderOption{config.WithViper(e.v)}
	if e.configFile != "" {
		opts = append(opts, config.WithConfigFile(e.configFile))
	}
	cfg, err := config.LoadApp(opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	e.cfg = cfg
	e.log = logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(e.log)

	e.metrics, e.shutdown, err = observability.Setup(ctx, cfg.Observability, cfg.Name)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}

	if e.doer == nil {
		adapter, err := httpclient.New(cfg.HTTP)
		if err != nil {
			return fmt.Errorf("http client: %w", err)
		}
		e.doer = adapter
	}
	e.registry = providers.Default()

	e.backend, err = store.Open(cfg.Store, e.log)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	storeOpts, err := cfg.Store.Options()
	if err != nil {
		return err
	}
	e.snaps = store.NewSnapshotStore(e.backend, storeOpts...)
	return nil
}

func (e *cliEnv) close(ctx context.Context) error {
	var err error
	if e.backend != nil {
		err = e.backend.Close()
	}
	if e.shutdown != nil {
		if serr := e.shutdown(ctx); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

func (e *cliEnv) clientOptions() []client.Option {
	return []client.Option{
		client.WithDoer(e.doer),
		client.WithLogger(e.log),
		client.WithMetrics(e.metrics),
	}
}

// providerConfig returns the configured settings for name.
func (e *cliEnv) providerConfig(name string) (client.Config, error) {
	if _, err := e.registry.Provider(name); err != nil {
		return client.Config{}, err
	}
	pc, ok := e.cfg.Provider(name)
	if !ok {
		return client.Config{}, fmt.Errorf("provider %q is not configured; add providers.%s to the config file", name, name)
	}
	return pc, nil
}

// session loads the stored snapshot for profile, falling back to a client
// built from configuration. Snapshot names default to the provider name.
func (e *cliEnv) session(ctx context.Context, name, profile string) (*client.Client, *client.OAuth2Client, error) {
	if profile == "" {
		profile = name
	}
	snap, err := e.snaps.Load(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	if snap != nil {
		if snap.Provider != name {
			return nil, nil, fmt.Errorf("snapshot %q belongs to provider %q", profile, snap.Provider)
		}
		if e.registry.IsOAuth2(name) {
			oc, err := e.registry.RestoreOAuth2(*snap, e.clientOptions()...)
			if err != nil {
				return nil, nil, err
			}
			return oc.Client, oc, nil
		}
		c, err := e.registry.Restore(*snap, e.clientOptions()...)
		return c, nil, err
	}

	pc, err := e.providerConfig(name)
	if err != nil {
		return nil, nil, err
	}
	if e.registry.IsOAuth2(name) {
		oc, err := e.registry.NewOAuth2Client(name, pc, e.clientOptions()...)
		if err != nil {
			return nil, nil, err
		}
		return oc.Client, oc, nil
	}
	c, err := e.registry.NewClient(name, pc, e.clientOptions()...)
	return c, nil, err
}
