package providers

import (
	"net/url"

	"github.com/kbukum/apihelper/client"
)

var googleErrors = client.ErrorEnvelope{
	Policy:      client.StatusRange,
	CodePath:    []string{"error", "code"},
	MessagePath: []string{"error", "message"},
}

// Google is the Google APIs adapter. The "access_type" option ("offline"
// to receive a refresh token) is added to the consent URL.
type Google struct {
	client.DefaultOAuth2
}

func (Google) Name() string { return "google" }

func (Google) APIURL(_ client.Session, method string) string {
	return "https://www.googleapis.com/" + method
}

func (g Google) CheckResponse(_ client.Session, res *client.Result) error {
	return googleErrors.Check(g.Name(), res)
}

func (Google) MapTokenError(payload map[string]any) (code, description string, ok bool) {
	return googleErrors.Fields(payload)
}

func (Google) AuthorizeURL(s client.Session, query url.Values) string {
	client.SetDefault(query, "access_type", s.Option("access_type"))
	return "https://accounts.google.com/o/oauth2/v2/auth?" + query.Encode()
}

func (Google) TokenURL(client.Session) string {
	return "https://www.googleapis.com/oauth2/v4/token"
}

// AccountIDFromToken returns the subject of the OpenID id_token, when the
// openid scope was granted.
func (Google) AccountIDFromToken(payload map[string]any) string {
	claims, err := client.ParseIDToken(payload)
	if err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}
