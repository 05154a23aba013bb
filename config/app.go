package config

import (
	"fmt"
	"slices"
	"sort"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/httpclient"
	"github.com/kbukum/apihelper/logger"
	"github.com/kbukum/apihelper/observability"
	"github.com/kbukum/apihelper/resilience"
	"github.com/kbukum/apihelper/server"
	"github.com/kbukum/apihelper/store"
	"github.com/kbukum/apihelper/validation"
)

// DefaultName is the application name used when none is configured.
const DefaultName = "apihelper"

// AppConfig is the configuration of an apihelper process: the shared
// transport, caller-side retries, one client.Config per provider, the login
// callback listener, snapshot storage and telemetry.
//
//	name: apihelper
//	providers:
//	  vk:
//	    client_id: "123"
//	    client_secret: "..."
//	    scope: [friends, photos]
//	store:
//	  backend: redis
//	  redis:
//	    addr: localhost:6379
type AppConfig struct {
	Name          string                   `yaml:"name" mapstructure:"name"`
	Environment   string                   `yaml:"environment" mapstructure:"environment"`
	Debug         bool                     `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config            `yaml:"logging" mapstructure:"logging"`
	HTTP          httpclient.Config        `yaml:"http" mapstructure:"http"`
	Retry         resilience.RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Providers     map[string]client.Config `yaml:"providers" mapstructure:"providers"`
	Callback      server.Config            `yaml:"callback" mapstructure:"callback"`
	Store         store.Config             `yaml:"store" mapstructure:"store"`
	Observability observability.Config     `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values to every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Logging.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Callback.ApplyDefaults()
	if c.Retry.MaxAttempts == 0 {
		c.Retry = resilience.DefaultRetryConfig()
	}
	c.Observability.ApplyDefaults()
}

// Validate validates the configuration after ApplyDefaults.
func (c *AppConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("config.http: %w", err)
	}
	if err := c.Callback.Validate(); err != nil {
		return fmt.Errorf("config.callback: %w", err)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("config.retry.max_attempts must be non-negative")
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("config.%w", err)
	}
	for _, name := range c.ProviderNames() {
		if err := validation.Validate(c.Providers[name]); err != nil {
			return fmt.Errorf("config.providers.%s: %w", name, err)
		}
	}
	return nil
}

// Provider returns the client configuration for a provider.
func (c *AppConfig) Provider(name string) (client.Config, bool) {
	pc, ok := c.Providers[name]
	return pc, ok
}

// ProviderNames returns the configured provider names, sorted.
func (c *AppConfig) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
