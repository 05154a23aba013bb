package client

import (
	"maps"
	"slices"
	"time"

	"github.com/kbukum/apihelper/errors"
)

// SnapshotVersion is the only snapshot layout Restore accepts.
const SnapshotVersion = 1

// Snapshot is the persisted state of a client. Restoring it yields a client
// that issues the same requests without re-authorizing.
type Snapshot struct {
	Version      int               `json:"version"`
	Provider     string            `json:"provider"`
	ClientID     string            `json:"client_id"`
	ClientSecret string            `json:"client_secret,omitempty"`
	APIVersion   string            `json:"api_version,omitempty"`
	Locale       string            `json:"locale,omitempty"`
	TimeoutMs    int64             `json:"timeout_ms,omitempty"`
	QPS          float64           `json:"qps,omitempty"`
	Proxy        string            `json:"proxy,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
	OAuth2       *OAuth2State      `json:"oauth2,omitempty"`
}

// OAuth2State is the OAuth2 part of a Snapshot.
type OAuth2State struct {
	RedirectURI    string     `json:"redirect_uri,omitempty"`
	Scope          []string   `json:"scope,omitempty"`
	Display        string     `json:"display,omitempty"`
	AccessToken    string     `json:"access_token,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	AccountID      string     `json:"account_id,omitempty"`
}

// Snapshot captures the client configuration.
func (c *Client) Snapshot() Snapshot {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return Snapshot{
		Version:      SnapshotVersion,
		Provider:     c.provider.Name(),
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		APIVersion:   c.cfg.Version,
		Locale:       c.cfg.Locale,
		TimeoutMs:    c.cfg.Timeout.Milliseconds(),
		QPS:          c.cfg.QPS,
		Proxy:        c.cfg.Proxy,
		Options:      maps.Clone(c.cfg.Options),
	}
}

// Snapshot captures configuration and token state.
func (o *OAuth2Client) Snapshot() Snapshot {
	s := o.Client.Snapshot()

	o.cfgMu.RLock()
	state := &OAuth2State{
		RedirectURI: o.cfg.RedirectURI,
		Scope:       slices.Clone(o.cfg.Scope),
		Display:     o.cfg.Display,
	}
	o.cfgMu.RUnlock()

	o.tokenMu.RLock()
	state.AccessToken = o.token.AccessToken
	state.RefreshToken = o.token.RefreshToken
	if !o.token.ExpiresAt.IsZero() {
		exp := o.token.ExpiresAt
		state.TokenExpiresAt = &exp
	}
	state.AccountID = o.accountID
	o.tokenMu.RUnlock()

	s.OAuth2 = state
	return s
}

// Config returns the construction config encoded in the snapshot.
func (s Snapshot) Config() Config {
	cfg := Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Version:      s.APIVersion,
		Locale:       s.Locale,
		Timeout:      time.Duration(s.TimeoutMs) * time.Millisecond,
		QPS:          s.QPS,
		Proxy:        s.Proxy,
		Options:      maps.Clone(s.Options),
	}
	if o := s.OAuth2; o != nil {
		cfg.RedirectURI = o.RedirectURI
		cfg.Scope = slices.Clone(o.Scope)
		cfg.Display = o.Display
		cfg.AccessToken = o.AccessToken
		cfg.RefreshToken = o.RefreshToken
	}
	return cfg
}

func (s Snapshot) check(p Provider) error {
	if s.Version != SnapshotVersion {
		return errors.InvalidArgument("unsupported snapshot version %d", s.Version)
	}
	if p == nil {
		return errors.InvalidArgument("provider is required")
	}
	if s.Provider != p.Name() {
		return errors.InvalidArgument("snapshot of provider %q cannot restore a %q client", s.Provider, p.Name())
	}
	return nil
}

// Restore rebuilds a base client from a snapshot.
func Restore(s Snapshot, p Provider, opts ...Option) (*Client, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	return New(p, s.Config(), opts...)
}

// RestoreOAuth2 rebuilds an OAuth2 client, token state included.
func RestoreOAuth2(s Snapshot, p OAuth2Provider, opts ...Option) (*OAuth2Client, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	o, err := NewOAuth2(p, s.Config(), opts...)
	if err != nil {
		return nil, err
	}
	if st := s.OAuth2; st != nil {
		o.tokenMu.Lock()
		if st.TokenExpiresAt != nil {
			o.token.ExpiresAt = *st.TokenExpiresAt
		}
		o.accountID = st.AccountID
		o.tokenMu.Unlock()
	}
	return o, nil
}
