package providers

import (
	"slices"
	"sync"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/errors"
)

// Factory creates a provider adapter.
type Factory func() client.Provider

// Registry maps provider names to adapter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry holding every built-in adapter.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, f := range []Factory{
			func() client.Provider { return BattleNet{} },
			func() client.Provider { return Facebook{} },
			func() client.Provider { return Google{} },
			func() client.Provider { return MailRu{} },
			func() client.Provider { return OK{} },
			func() client.Provider { return ReCaptcha{} },
			func() client.Provider { return VK{} },
			func() client.Provider { return Yandex{} },
		} {
			defaultRegistry.Register(f().Name(), f)
		}
	})
	return defaultRegistry
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Provider creates the named adapter.
func (r *Registry) Provider(name string) (client.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.InvalidArgument("unknown provider %q", name)
	}
	return factory(), nil
}

// OAuth2Provider creates the named adapter and checks it supports OAuth2.
func (r *Registry) OAuth2Provider(name string) (client.OAuth2Provider, error) {
	p, err := r.Provider(name)
	if err != nil {
		return nil, err
	}
	op, ok := p.(client.OAuth2Provider)
	if !ok {
		return nil, errors.InvalidArgument("provider %q does not support OAuth2", name)
	}
	return op, nil
}

// IsOAuth2 reports whether the named adapter supports OAuth2.
func (r *Registry) IsOAuth2(name string) bool {
	_, err := r.OAuth2Provider(name)
	return err == nil
}

// NewClient builds a base client for the named provider.
func (r *Registry) NewClient(name string, cfg client.Config, opts ...client.Option) (*client.Client, error) {
	p, err := r.Provider(name)
	if err != nil {
		return nil, err
	}
	return client.New(p, cfg, opts...)
}

// NewOAuth2Client builds an OAuth2 client for the named provider.
func (r *Registry) NewOAuth2Client(name string, cfg client.Config, opts ...client.Option) (*client.OAuth2Client, error) {
	p, err := r.OAuth2Provider(name)
	if err != nil {
		return nil, err
	}
	return client.NewOAuth2(p, cfg, opts...)
}

// Restore rebuilds a base client from a snapshot, choosing the adapter by
// the snapshot provider name.
func (r *Registry) Restore(s client.Snapshot, opts ...client.Option) (*client.Client, error) {
	p, err := r.Provider(s.Provider)
	if err != nil {
		return nil, err
	}
	return client.Restore(s, p, opts...)
}

// RestoreOAuth2 rebuilds an OAuth2 client from a snapshot.
func (r *Registry) RestoreOAuth2(s client.Snapshot, opts ...client.Option) (*client.OAuth2Client, error) {
	p, err := r.OAuth2Provider(s.Provider)
	if err != nil {
		return nil, err
	}
	return client.RestoreOAuth2(s, p, opts...)
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
