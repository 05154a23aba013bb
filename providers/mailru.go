package providers

import (
	"net/url"

	"github.com/kbukum/apihelper/client"
)

var mailruErrors = client.ErrorEnvelope{
	Policy:      client.StatusRange,
	CodePath:    []string{"error", "error_code"},
	MessagePath: []string{"error", "error_msg"},
}

// MailRu is the Mail.Ru platform adapter. Every call goes to a single
// endpoint with the method name as a parameter.
type MailRu struct {
	client.DefaultOAuth2
}

func (MailRu) Name() string { return "mailru" }

func (MailRu) APIURL(client.Session, string) string {
	return "http://www.appsmail.ru/platform/api"
}

// PrepareRequest adds the platform parameters and the server-side
// signature md5(sorted params + client_secret). The token travels as
// session_key.
func (MailRu) PrepareRequest(s client.Session, method string, params url.Values) {
	params.Set("method", method)
	params.Set("secure", "1")
	params.Set("app_id", s.ClientID())
	params.Set("format", "json")
	params.Del("sig")
	if token := s.AccessToken(); token != "" {
		params.Set("session_key", token)
	}
	params.Set("sig", signParams(params, s.ClientSecret()))
}

func (m MailRu) CheckResponse(_ client.Session, res *client.Result) error {
	return mailruErrors.Check(m.Name(), res)
}

func (MailRu) MapTokenError(payload map[string]any) (code, description string, ok bool) {
	return mailruErrors.Fields(payload)
}

func (MailRu) AuthorizeURL(_ client.Session, query url.Values) string {
	return "https://connect.mail.ru/oauth/authorize?" + query.Encode()
}

func (MailRu) TokenURL(client.Session) string {
	return "https://connect.mail.ru/oauth/token"
}

// AccountIDFromToken returns the x_mailru_vid granted with the token.
func (MailRu) AccountIDFromToken(payload map[string]any) string {
	return client.String(payload["x_mailru_vid"])
}
