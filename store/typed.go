package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/apihelper/encryption"
)

// Option configures a TypedStore.
type Option func(*options)

type options struct {
	prefix string
	sealer encryption.Sealer
	ttl    time.Duration
}

// WithPrefix namespaces every key as prefix + ":" + key.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithSealer encrypts values before they reach the backend. The full key
// is bound as associated data so a value cannot be replayed under another key.
func WithSealer(s encryption.Sealer) Option {
	return func(o *options) { o.sealer = s }
}

// WithTTL sets the expiration used by Save. Zero means none.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// TypedStore provides typed JSON get/set operations on a Backend.
type TypedStore[C any] struct {
	backend Backend
	opts    options
}

// NewTypedStore creates a TypedStore on backend.
func NewTypedStore[C any](backend Backend, opts ...Option) *TypedStore[C] {
	s := &TypedStore[C]{backend: backend}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *TypedStore[C]) fullKey(key string) string {
	if s.opts.prefix == "" {
		return key
	}
	return s.opts.prefix + ":" + key
}

// Load decodes the value under key. Returns (nil, nil) if the key doesn't exist.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	full := s.fullKey(key)
	raw, err := s.backend.Get(ctx, full)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("typed store load %q: %w", key, err)
	}
	if s.opts.sealer != nil {
		raw, err = s.opts.sealer.Open(raw, []byte(full))
		if err != nil {
			return nil, fmt.Errorf("typed store open %q: %w", key, err)
		}
	}

	var val C
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("typed store unmarshal %q: %w", key, err)
	}
	return &val, nil
}

// Save encodes val and stores it with the configured TTL.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C) error {
	full := s.fullKey(key)
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	if s.opts.sealer != nil {
		data, err = s.opts.sealer.Seal(data, []byte(full))
		if err != nil {
			return fmt.Errorf("typed store seal %q: %w", key, err)
		}
	}
	if err := s.backend.Set(ctx, full, data, s.opts.ttl); err != nil {
		return fmt.Errorf("typed store save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("typed store delete %q: %w", key, err)
	}
	return nil
}
