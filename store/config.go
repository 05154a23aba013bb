package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/apihelper/encryption"
	"github.com/kbukum/apihelper/logger"
)

// Backend kinds accepted by Config.Backend.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindRedis  = "redis"
)

// Config selects and configures a snapshot backend.
type Config struct {
	// Backend is one of memory, file or redis.
	Backend string `mapstructure:"backend" yaml:"backend" validate:"omitempty,oneof=memory file redis"`
	// Dir is the file backend directory.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Prefix overrides DefaultSnapshotPrefix.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// TTL expires stored snapshots. Zero keeps them forever.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
	// Passphrase enables sealing when set.
	Passphrase string `mapstructure:"passphrase" yaml:"passphrase"`
	// Algorithm is the sealing AEAD.
	Algorithm encryption.Algorithm `mapstructure:"algorithm" yaml:"algorithm"`
	// Redis configures the redis backend.
	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = KindFile
	}
	if c.Backend == KindFile && c.Dir == "" {
		c.Dir = defaultDir()
	}
	if c.Prefix == "" {
		c.Prefix = DefaultSnapshotPrefix
	}
	if c.Algorithm == "" {
		c.Algorithm = encryption.AlgorithmChaCha20
	}
	if c.Backend == KindRedis {
		c.Redis.ApplyDefaults()
	}
}

// Validate checks backend-specific requirements.
func (c *Config) Validate() error {
	switch c.Backend {
	case KindMemory:
	case KindFile:
		if c.Dir == "" {
			return fmt.Errorf("store.dir is required for the file backend")
		}
	case KindRedis:
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("store.%w", err)
		}
	default:
		return fmt.Errorf("store.backend must be one of [memory, file, redis] (got: %s)", c.Backend)
	}
	if c.TTL < 0 {
		return fmt.Errorf("store.ttl must not be negative")
	}
	return nil
}

// Open creates the configured backend.
func Open(cfg Config, log *logger.Logger) (Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case KindMemory:
		return NewMemory(), nil
	case KindRedis:
		return NewRedis(cfg.Redis, log)
	default:
		return NewFile(cfg.Dir)
	}
}

// Options returns the TypedStore options implied by cfg, including a
// sealer when a passphrase is set.
func (c Config) Options() ([]Option, error) {
	opts := []Option{WithTTL(c.TTL)}
	if c.Prefix != "" {
		opts = append(opts, WithPrefix(c.Prefix))
	}
	if c.Passphrase != "" {
		alg := c.Algorithm
		if alg == "" {
			alg = encryption.AlgorithmChaCha20
		}
		sealer, err := encryption.New(c.Passphrase, encryption.WithAlgorithm(alg))
		if err != nil {
			return nil, fmt.Errorf("store sealer: %w", err)
		}
		opts = append(opts, WithSealer(sealer))
	}
	return opts, nil
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "apihelper", "snapshots")
	}
	return filepath.Join(".apihelper", "snapshots")
}
