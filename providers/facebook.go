package providers

import (
	"net/url"

	"github.com/kbukum/apihelper/client"
)

const (
	// FacebookVersion is the Graph API version used when none is configured.
	FacebookVersion = "2.8"
	// FacebookRedirectURI is the desktop login redirect used when none is configured.
	FacebookRedirectURI = "https://www.facebook.com/connect/login_success.html"
)

var facebookErrors = client.ErrorEnvelope{
	Policy:      client.StatusRange,
	CodePath:    []string{"error", "code"},
	MessagePath: []string{"error", "message"},
}

// Facebook is the Graph API adapter.
type Facebook struct {
	client.DefaultOAuth2
}

func (Facebook) Name() string { return "facebook" }

func (Facebook) ApplyDefaults(cfg *client.Config) {
	if cfg.Version == "" {
		cfg.Version = FacebookVersion
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = FacebookRedirectURI
	}
}

func (Facebook) APIURL(s client.Session, method string) string {
	return "https://graph.facebook.com/v" + s.Version() + "/" + method
}

// PrepareRequest adds the access token and the client locale.
func (Facebook) PrepareRequest(s client.Session, _ string, params url.Values) {
	client.InjectAccessToken(s, params)
	if locale := s.Locale(); locale != "" {
		params.Set("locale", locale)
	}
}

func (f Facebook) CheckResponse(_ client.Session, res *client.Result) error {
	return facebookErrors.Check(f.Name(), res)
}

// MapTokenError reads the Graph error object returned by the token endpoint.
func (Facebook) MapTokenError(payload map[string]any) (code, description string, ok bool) {
	return facebookErrors.Fields(payload)
}

func (Facebook) AuthorizeURL(s client.Session, query url.Values) string {
	return "https://www.facebook.com/v" + s.Version() + "/dialog/oauth?" + query.Encode()
}

func (Facebook) TokenURL(s client.Session) string {
	return "https://graph.facebook.com/v" + s.Version() + "/oauth/access_token"
}

// ScopeDelimiter is a comma for Facebook permissions.
func (Facebook) ScopeDelimiter() string { return "," }
