package providers

import (
	"net/url"

	"github.com/kbukum/apihelper/client"
)

// Yandex is the Yandex Passport adapter. Errors carry no code or message
// beyond the status.
type Yandex struct {
	client.DefaultOAuth2
}

var yandexErrors = client.ErrorEnvelope{Policy: client.StatusRange}

func (Yandex) Name() string { return "yandex" }

func (Yandex) APIURL(_ client.Session, method string) string {
	return "https://login.yandex.ru/" + method
}

// PrepareRequest asks for JSON and passes the token as oauth_token.
func (Yandex) PrepareRequest(s client.Session, _ string, params url.Values) {
	client.SetDefault(params, "format", "json")
	if token := s.AccessToken(); token != "" {
		params.Set("oauth_token", token)
	}
}

func (y Yandex) CheckResponse(_ client.Session, res *client.Result) error {
	return yandexErrors.Check(y.Name(), res)
}

func (Yandex) AuthorizeURL(_ client.Session, query url.Values) string {
	return "https://oauth.yandex.ru/authorize?" + query.Encode()
}

func (Yandex) TokenURL(client.Session) string {
	return "https://oauth.yandex.ru/token"
}
