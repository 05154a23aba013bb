package providers

import (
	"net/url"

	"github.com/kbukum/apihelper/client"
)

var okErrors = client.ErrorEnvelope{
	Policy:      client.PayloadField,
	Root:        "error_code",
	CodePath:    []string{"error_code"},
	MessagePath: []string{"error_msg"},
}

// OK is the Odnoklassniki adapter. It requires the "application_key"
// option; "layout" is passed to the consent page.
type OK struct {
	client.DefaultOAuth2
}

func (OK) Name() string { return "ok" }

func (OK) RequiredOptions() []string { return []string{"options.application_key"} }

func (OK) APIURL(_ client.Session, method string) string {
	return "https://api.ok.ru/api/" + method
}

// PrepareRequest signs the parameters. The session secret is
// md5(access_token + client_secret) once a token is held, the client
// secret before that. access_token itself is not signed.
func (OK) PrepareRequest(s client.Session, _ string, params url.Values) {
	params.Set("application_key", s.Option("application_key"))
	params.Set("format", "json")
	params.Del("sig")
	params.Del("access_token")

	secret := s.ClientSecret()
	if token := s.AccessToken(); token != "" {
		secret = md5Hex(token + secret)
	}
	params.Set("sig", signParams(params, secret))
	client.InjectAccessToken(s, params)
}

func (o OK) CheckResponse(_ client.Session, res *client.Result) error {
	return okErrors.Check(o.Name(), res)
}

// MapTokenError reads error_code and error_msg from a failed token exchange.
func (OK) MapTokenError(payload map[string]any) (code, description string, ok bool) {
	return okErrors.Fields(payload)
}

func (OK) AuthorizeURL(s client.Session, query url.Values) string {
	client.SetDefault(query, "layout", s.Option("layout"))
	return "https://connect.ok.ru/oauth/authorize?" + query.Encode()
}

func (OK) TokenURL(client.Session) string {
	return "https://api.ok.ru/oauth/token.do"
}

// ScopeDelimiter is a semicolon for OK permissions.
func (OK) ScopeDelimiter() string { return ";" }
