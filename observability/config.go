package observability

import (
	"context"
	stderrors "errors"
	"time"
)

// Config is the observability section of the application config.
type Config struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool          `mapstructure:"insecure" yaml:"insecure"`
	Environment string        `mapstructure:"environment" yaml:"environment"`
	SampleRate  float64       `mapstructure:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
	Interval    time.Duration `mapstructure:"interval" yaml:"interval" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Setup initializes tracing and metrics when enabled and returns the client
// instruments plus a shutdown func. When disabled, Metrics is nil and
// shutdown is a no-op.
func Setup(ctx context.Context, cfg Config, service string) (*Metrics, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return nil, noop, nil
	}

	tc := DefaultTracerConfig(service)
	tc.Endpoint, tc.Insecure, tc.Environment, tc.SampleRate = cfg.Endpoint, cfg.Insecure, cfg.Environment, cfg.SampleRate
	tp, err := InitTracer(ctx, tc)
	if err != nil {
		return nil, noop, err
	}

	mc := DefaultMeterConfig(service)
	mc.Endpoint, mc.Insecure, mc.Environment, mc.Interval = cfg.Endpoint, cfg.Insecure, cfg.Environment, cfg.Interval
	mp, err := InitMeter(ctx, mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, noop, err
	}

	metrics, err := NewMetrics(Meter(defaultTracerName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, noop, err
	}

	shutdown := func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	return metrics, shutdown, nil
}
