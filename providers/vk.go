package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/apihelper/client"
)

// VKVersion is the API version used when none is configured.
const VKVersion = "5.45"

// VK reports errors inside a 200 response, so the payload is always checked.
var vkErrors = client.ErrorEnvelope{
	Policy:      client.PayloadField,
	Root:        "error",
	CodePath:    []string{"error", "error_code"},
	MessagePath: []string{"error", "error_msg"},
}

// VK is the VKontakte adapter.
type VK struct {
	client.DefaultOAuth2
}

func (VK) Name() string { return "vk" }

func (VK) ApplyDefaults(cfg *client.Config) {
	if cfg.Version == "" {
		cfg.Version = VKVersion
	}
}

func (VK) APIURL(_ client.Session, method string) string {
	return "https://api.vk.com/method/" + method
}

// PrepareRequest adds lang and v unless the caller set them, then the token.
func (VK) PrepareRequest(s client.Session, _ string, params url.Values) {
	client.SetDefault(params, "lang", s.Locale())
	client.SetDefault(params, "v", s.Version())
	client.InjectAccessToken(s, params)
}

func (v VK) CheckResponse(_ client.Session, res *client.Result) error {
	return vkErrors.Check(v.Name(), res)
}

func (VK) AuthorizeURL(s client.Session, query url.Values) string {
	client.SetDefault(query, "v", s.Version())
	return "https://oauth.vk.com/authorize?" + query.Encode()
}

func (VK) TokenURL(client.Session) string {
	return "https://oauth.vk.com/access_token"
}

// AccountIDFromToken returns the user_id granted with the token.
func (VK) AccountIDFromToken(payload map[string]any) string {
	return client.String(payload["user_id"])
}

func (VK) Sections() map[string]client.SectionFactory {
	return map[string]client.SectionFactory{
		"users": func(c *client.Client) any { return &VKUsers{c: c} },
	}
}

// VKUser is an entry of users.get.
type VKUser struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ScreenName string `json:"screen_name,omitempty"`
	Photo      string `json:"photo_100,omitempty"`
	Sex        int    `json:"sex,omitempty"`
	BirthDate  string `json:"bdate,omitempty"`
}

// VKUsers groups the users.* methods.
type VKUsers struct {
	c *client.Client
}

// Get calls users.get. Without ids it returns the token owner.
func (u *VKUsers) Get(ctx context.Context, ids []string, fields ...string) ([]VKUser, error) {
	params := url.Values{}
	if len(ids) > 0 {
		params.Set("user_ids", strings.Join(ids, ","))
	}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var out struct {
		Response []VKUser `json:"response"`
	}
	if err := u.c.RequestJSON(ctx, "users.get", params, http.MethodGet, &out); err != nil {
		return nil, err
	}
	return out.Response, nil
}
