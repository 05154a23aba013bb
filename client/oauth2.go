package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/httpclient"
	"github.com/kbukum/apihelper/logger"
	"github.com/kbukum/apihelper/observability"
)

// OAuth2Client is a Client with authorization-code flow and token state.
type OAuth2Client struct {
	*Client
	oauth OAuth2Provider

	tokenMu   sync.RWMutex
	token     TokenState
	accountID string
}

// TokenState is the token material held by an OAuth2Client.
type TokenState struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is zero when the provider sent no lifetime.
	ExpiresAt time.Time
}

// NewOAuth2 creates an OAuth2 client. client_id and client_secret are
// required. A scope string is split by the provider delimiter.
func NewOAuth2(p OAuth2Provider, cfg Config, opts ...Option) (*OAuth2Client, error) {
	if p == nil {
		return nil, errors.InvalidArgument("provider is required")
	}
	cfg.Scope = splitScope(cfg.Scope, p.ScopeDelimiter())

	base, err := newClient(p, cfg, []string{"client_id", "client_secret"}, opts)
	if err != nil {
		return nil, err
	}
	o := &OAuth2Client{
		Client: base,
		oauth:  p,
		token: TokenState{
			AccessToken:  base.cfg.AccessToken,
			RefreshToken: base.cfg.RefreshToken,
		},
	}
	// token material lives in TokenState from here on
	base.cfg.AccessToken, base.cfg.RefreshToken = "", ""
	base.session = o
	base.buildSections()
	return o, nil
}

// --- Configuration ---

// RedirectURI returns the configured redirect URI.
func (o *OAuth2Client) RedirectURI() string {
	o.cfgMu.RLock()
	defer o.cfgMu.RUnlock()
	return o.cfg.RedirectURI
}

func (o *OAuth2Client) SetRedirectURI(uri string) {
	o.cfgMu.Lock()
	o.cfg.RedirectURI = uri
	o.cfgMu.Unlock()
}

// Scope returns a copy of the requested scopes.
func (o *OAuth2Client) Scope() []string {
	o.cfgMu.RLock()
	defer o.cfgMu.RUnlock()
	return slices.Clone(o.cfg.Scope)
}

func (o *OAuth2Client) SetScope(scope ...string) {
	scope = splitScope(scope, o.oauth.ScopeDelimiter())
	o.cfgMu.Lock()
	o.cfg.Scope = scope
	o.cfgMu.Unlock()
}

// Display returns the consent page display mode.
func (o *OAuth2Client) Display() string {
	o.cfgMu.RLock()
	defer o.cfgMu.RUnlock()
	return o.cfg.Display
}

func (o *OAuth2Client) SetDisplay(display string) {
	o.cfgMu.Lock()
	o.cfg.Display = display
	o.cfgMu.Unlock()
}

// --- Token state ---

// AccessToken returns the current access token.
func (o *OAuth2Client) AccessToken() string {
	o.tokenMu.RLock()
	defer o.tokenMu.RUnlock()
	return o.token.AccessToken
}

// SetAccessToken replaces the access token. A different token clears the
// account id.
func (o *OAuth2Client) SetAccessToken(token string) {
	o.tokenMu.Lock()
	o.setAccessTokenLocked(token)
	o.tokenMu.Unlock()
}

func (o *OAuth2Client) setAccessTokenLocked(token string) {
	if o.token.AccessToken != token {
		o.token.AccessToken = token
		o.accountID = ""
	}
}

// RefreshToken returns the current refresh token.
func (o *OAuth2Client) RefreshToken() string {
	o.tokenMu.RLock()
	defer o.tokenMu.RUnlock()
	return o.token.RefreshToken
}

func (o *OAuth2Client) SetRefreshToken(token string) {
	o.tokenMu.Lock()
	o.token.RefreshToken = token
	o.tokenMu.Unlock()
}

// TokenExpiresAt returns the access token expiry, zero when unknown.
func (o *OAuth2Client) TokenExpiresAt() time.Time {
	o.tokenMu.RLock()
	defer o.tokenMu.RUnlock()
	return o.token.ExpiresAt
}

// TokenState returns a copy of the token material.
func (o *OAuth2Client) TokenState() TokenState {
	o.tokenMu.RLock()
	defer o.tokenMu.RUnlock()
	return o.token
}

// AccountID returns the provider account id learned from the token response.
func (o *OAuth2Client) AccountID() string {
	o.tokenMu.RLock()
	defer o.tokenMu.RUnlock()
	return o.accountID
}

// SetAccountID sets the account id unless one is already known.
func (o *OAuth2Client) SetAccountID(id string) {
	o.tokenMu.Lock()
	if o.accountID == "" {
		o.accountID = id
	}
	o.tokenMu.Unlock()
}

// --- Authorization flow ---

// AuthorizationURL returns the consent URL. It performs no I/O and does not
// modify params. An empty state is omitted.
func (o *OAuth2Client) AuthorizationURL(state string, params url.Values) string {
	q := make(url.Values, len(params)+6)
	for k, vs := range params {
		q[k] = slices.Clone(vs)
	}

	o.cfgMu.RLock()
	q.Set("response_type", "code")
	q.Set("client_id", o.cfg.ClientID)
	if o.cfg.RedirectURI != "" {
		q.Set("redirect_uri", o.cfg.RedirectURI)
	}
	if len(o.cfg.Scope) > 0 {
		q.Set("scope", strings.Join(o.cfg.Scope, o.oauth.ScopeDelimiter()))
	}
	if o.cfg.Display != "" {
		q.Set("display", o.cfg.Display)
	}
	o.cfgMu.RUnlock()

	if state != "" {
		q.Set("state", state)
	}
	return o.oauth.AuthorizeURL(o, q)
}

// Authorize exchanges an authorization code for tokens. An empty code fails
// before any request is made.
func (o *OAuth2Client) Authorize(ctx context.Context, code string, params url.Values) (map[string]any, error) {
	if code == "" {
		return nil, errors.InvalidArgument("authorization code is empty")
	}

	form := cloneForm(params)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	o.cfgMu.RLock()
	form.Set("client_id", o.cfg.ClientID)
	form.Set("client_secret", o.cfg.ClientSecret)
	if o.cfg.RedirectURI != "" {
		form.Set("redirect_uri", o.cfg.RedirectURI)
	}
	o.cfgMu.RUnlock()

	return o.requestToken(ctx, "authorize", form)
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token. It fails before any request when no refresh token is stored.
func (o *OAuth2Client) RefreshAccessToken(ctx context.Context, params url.Values) (map[string]any, error) {
	refresh := o.RefreshToken()
	if refresh == "" {
		return nil, errors.InvalidArgument("no refresh token stored")
	}

	form := cloneForm(params)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refresh)
	o.cfgMu.RLock()
	form.Set("client_id", o.cfg.ClientID)
	form.Set("client_secret", o.cfg.ClientSecret)
	o.cfgMu.RUnlock()

	return o.requestToken(ctx, "refresh", form)
}

func (o *OAuth2Client) requestToken(ctx context.Context, op string, form url.Values) (map[string]any, error) {
	req := &httpclient.Request{
		Method: http.MethodPost,
		URL:    o.oauth.TokenURL(o),
		Form:   form,
	}
	ctx, span := observability.StartOperation(ctx, observability.SpanTokenRequest, o.Name(), op, o.metrics)
	payload, err := o.exchange(ctx, op, req)
	span.End(ctx, err, errorCode(err))
	if err != nil {
		o.log.WithContext(ctx).WithError(err).Warn("token request rejected", logger.Fields(logger.FieldMethod, op))
		return nil, err
	}
	o.log.Info("token updated", logger.Fields(logger.FieldMethod, op, logger.FieldAccountID, o.AccountID()))
	return payload, nil
}

func (o *OAuth2Client) exchange(ctx context.Context, op string, req *httpclient.Request) (map[string]any, error) {
	resp, err := o.send(ctx, "oauth."+op, req)
	if err != nil {
		return nil, err
	}
	return o.handleTokenResponse(resp)
}

// handleTokenResponse validates a token endpoint answer and updates the
// token state. Fields absent from the payload are left untouched.
func (o *OAuth2Client) handleTokenResponse(resp *httpclient.Response) (map[string]any, error) {
	res, err := Classify(resp)
	if err != nil {
		return nil, err
	}
	if res.Kind != KindJSON {
		return nil, errors.UnknownResponse("expected a JSON token response", res.StatusCode, res.Body).
			WithResponse(res.StatusCode, res.ContentType, res.Body)
	}
	data, err := DecodeJSON(res.Body)
	if err != nil {
		return nil, errors.UnknownResponse("malformed JSON token response", res.StatusCode, res.Body).WithCause(err)
	}
	payload, ok := data.(map[string]any)
	if !ok {
		return nil, errors.UnknownResponse("token response is not a JSON object", res.StatusCode, res.Body)
	}

	if res.StatusCode != http.StatusOK {
		return nil, o.tokenError(res, payload)
	}

	o.tokenMu.Lock()
	if token := String(payload["access_token"]); token != "" {
		o.setAccessTokenLocked(token)
	}
	if refresh := String(payload["refresh_token"]); refresh != "" {
		o.token.RefreshToken = refresh
	}
	if ttl, ok := seconds(payload["expires_in"]); ok {
		o.token.ExpiresAt = o.now().Add(ttl)
	}
	if ex, ok := o.oauth.(AccountIDExtractor); ok && o.accountID == "" {
		o.accountID = ex.AccountIDFromToken(payload)
	}
	o.tokenMu.Unlock()

	return payload, nil
}

// tokenError builds a TokenError from the RFC 6749 error fields. Without a
// string error the provider's TokenErrorMapper is asked first; an object
// valued error it cannot map is JSON-encoded.
func (o *OAuth2Client) tokenError(res *Result, payload map[string]any) error {
	if _, std := payload["error"].(string); !std {
		if m, ok := o.oauth.(TokenErrorMapper); ok {
			if code, desc, found := m.MapTokenError(payload); found {
				tokErr := errors.NewTokenError(o.Name(), res.StatusCode, code, desc, String(payload["error_uri"]))
				tokErr.Body = res.Body
				return tokErr
			}
		}
	}

	var code string
	switch v := payload["error"].(type) {
	case nil:
	case string:
		code = v
	default:
		b, err := json.Marshal(v)
		if err == nil {
			code = string(b)
		} else {
			code = String(v)
		}
	}
	tokErr := errors.NewTokenError(o.Name(), res.StatusCode, code,
		String(payload["error_description"]), String(payload["error_uri"]))
	tokErr.Body = res.Body
	return tokErr
}

func cloneForm(params url.Values) url.Values {
	form := make(url.Values, len(params)+6)
	for k, vs := range params {
		form[k] = slices.Clone(vs)
	}
	return form
}
