package client

import (
	"net/http"
	"net/url"
)

// Session is the read-only view of a client handed to provider hooks.
type Session interface {
	ClientID() string
	ClientSecret() string
	Version() string
	Locale() string
	Option(key string) string
	// AccessToken is empty for clients without OAuth2 token state.
	AccessToken() string
}

// Provider is the strategy every adapter supplies to a Client.
type Provider interface {
	// Name identifies the provider in errors, logs and snapshots.
	Name() string
	// APIURL returns the endpoint for an API method.
	APIURL(s Session, method string) string
	// PrepareRequest adds or rewrites parameters in place before encoding.
	PrepareRequest(s Session, method string, params url.Values)
	// CheckResponse returns the provider error carried by a decoded
	// response, or nil.
	CheckResponse(s Session, res *Result) error
}

// OAuth2Provider is a Provider with an authorization-code flow.
type OAuth2Provider interface {
	Provider
	// AuthorizeURL renders the consent URL for an assembled query.
	AuthorizeURL(s Session, query url.Values) string
	// TokenURL returns the token endpoint.
	TokenURL(s Session) string
	// ScopeDelimiter joins and splits scope lists.
	ScopeDelimiter() string
}

// Optional hooks. A provider implements any subset of them.
type (
	// RequiredOptioner declares config keys that must be non-empty:
	// "client_id", "client_secret", "redirect_uri", "version", "locale" or
	// "options.<name>".
	RequiredOptioner interface {
		RequiredOptions() []string
	}

	// Defaulter fills provider defaults into a config before validation.
	Defaulter interface {
		ApplyDefaults(cfg *Config)
	}

	// ConfigValidator rejects configs the provider cannot serve.
	ConfigValidator interface {
		ValidateConfig(cfg Config) error
	}

	// HeaderProvider replaces the default request headers.
	HeaderProvider interface {
		DefaultHeaders() http.Header
	}

	// ResponseHandler takes over response handling after classification.
	// The returned value becomes Result.Data.
	ResponseHandler interface {
		HandleResponse(s Session, res *Result) (any, error)
	}

	// TokenErrorMapper reads a provider error from a failed token response
	// whose "error" field is missing or not a string. ok reports whether
	// the payload carried one.
	TokenErrorMapper interface {
		MapTokenError(payload map[string]any) (code, description string, ok bool)
	}

	// AccountIDExtractor reads the account id from a successful token payload.
	AccountIDExtractor interface {
		AccountIDFromToken(payload map[string]any) string
	}

	// SectionProvider exposes named groups of API methods.
	SectionProvider interface {
		Sections() map[string]SectionFactory
	}
)

// DefaultOAuth2 supplies the hooks most OAuth2 adapters share. Embed it and
// override what differs.
type DefaultOAuth2 struct{}

// PrepareRequest injects the access token.
func (DefaultOAuth2) PrepareRequest(s Session, _ string, params url.Values) {
	InjectAccessToken(s, params)
}

// ScopeDelimiter returns a single space.
func (DefaultOAuth2) ScopeDelimiter() string { return " " }

// InjectAccessToken sets params["access_token"] when the session holds a token.
func InjectAccessToken(s Session, params url.Values) {
	if token := s.AccessToken(); token != "" {
		params.Set("access_token", token)
	}
}

// SetDefault sets key only when the caller did not.
func SetDefault(params url.Values, key, value string) {
	if value != "" && params.Get(key) == "" {
		params.Set(key, value)
	}
}
