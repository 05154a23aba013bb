package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/httpclient"
	"github.com/kbukum/apihelper/testutil"
)

func newOAuth2(t *testing.T, p OAuth2Provider, cfg Config, opts ...Option) *OAuth2Client {
	t.Helper()
	o, err := NewOAuth2(p, cfg, opts...)
	if err != nil {
		t.Fatalf("NewOAuth2: %v", err)
	}
	return o
}

func TestNewOAuth2_RequiresSecret(t *testing.T) {
	_, err := NewOAuth2(newFakeProvider(), Config{ClientID: "id"})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestNewOAuth2_SplitsScope(t *testing.T) {
	p := newFakeProvider()
	p.delim = ","
	cfg := baseConfig()
	cfg.Scope = []string{"email,public_profile", "user_friends"}
	o := newOAuth2(t, p, cfg)

	want := []string{"email", "public_profile", "user_friends"}
	if got := o.Scope(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("scope = %v, want %v", got, want)
	}
}

func TestAuthorizationURL_Pure(t *testing.T) {
	doer := testutil.NewMockDoer()
	cfg := baseConfig()
	cfg.RedirectURI = "https://app.example.com/cb"
	cfg.Scope = []string{"email profile"}
	cfg.Display = "popup"
	o := newOAuth2(t, newFakeProvider(), cfg, WithDoer(doer))

	params := url.Values{"prompt": {"consent"}}
	first := o.AuthorizationURL("xyz", params)
	second := o.AuthorizationURL("xyz", params)

	if first != second {
		t.Errorf("expected identical URLs, got %q and %q", first, second)
	}
	if doer.CallCount() != 0 {
		t.Errorf("expected no network calls, got %d", doer.CallCount())
	}
	if len(params) != 1 {
		t.Errorf("caller params modified: %v", params)
	}

	u, err := url.Parse(first)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	checks := map[string]string{
		"response_type": "code",
		"client_id":     "id-1",
		"redirect_uri":  "https://app.example.com/cb",
		"scope":         "email profile",
		"state":         "xyz",
		"display":       "popup",
		"prompt":        "consent",
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func TestAuthorizationURL_OmitsEmptyState(t *testing.T) {
	o := newOAuth2(t, newFakeProvider(), baseConfig())
	u, _ := url.Parse(o.AuthorizationURL("", nil))
	if u.Query().Has("state") {
		t.Error("expected state to be omitted")
	}
	if u.Query().Has("scope") || u.Query().Has("redirect_uri") {
		t.Error("expected unset fields to be omitted")
	}
}

// Scenario C: a successful exchange stores the token and its expiry.
func TestAuthorize_StoresToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"access_token":"tok1","expires_in":3600}`))
	cfg := baseConfig()
	cfg.RedirectURI = "https://app.example.com/cb"
	o := newOAuth2(t, newFakeProvider(), cfg, WithDoer(doer), WithClock(fixedClock(now)))

	payload, err := o.Authorize(context.Background(), "validcode", nil)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if payload["access_token"] != "tok1" {
		t.Errorf("expected payload returned verbatim, got %v", payload)
	}
	if o.AccessToken() != "tok1" {
		t.Errorf("AccessToken = %q", o.AccessToken())
	}
	if want := now.Add(time.Hour); !o.TokenExpiresAt().Equal(want) {
		t.Errorf("TokenExpiresAt = %v, want %v", o.TokenExpiresAt(), want)
	}
	if o.TokenStatus() != Authenticated {
		t.Errorf("TokenStatus = %v", o.TokenStatus())
	}

	call := doer.LastCall().Request
	if call.Method != http.MethodPost || call.URL != "https://auth.example.com/token" {
		t.Errorf("unexpected request %s %s", call.Method, call.URL)
	}
	form := call.Form
	checks := map[string]string{
		"grant_type":    "authorization_code",
		"code":          "validcode",
		"client_id":     "id-1",
		"client_secret": "secret-1",
		"redirect_uri":  "https://app.example.com/cb",
	}
	for k, want := range checks {
		if got := form.Get(k); got != want {
			t.Errorf("form %s = %q, want %q", k, got, want)
		}
	}
}

// Scenario D: an empty code fails before any I/O.
func TestAuthorize_EmptyCode(t *testing.T) {
	doer := testutil.NewMockDoer()
	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithDoer(doer))

	_, err := o.Authorize(context.Background(), "", nil)
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if doer.CallCount() != 0 {
		t.Errorf("expected zero transport calls, got %d", doer.CallCount())
	}
}

func TestAuthorize_TokenError(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(400,
		`{"error":"invalid_grant","error_description":"Code expired","error_uri":"https://docs/err"}`))
	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithDoer(doer))

	_, err := o.Authorize(context.Background(), "old", nil)
	tokErr, ok := errors.AsTokenError(err)
	if !ok {
		t.Fatalf("expected TokenError, got %v", err)
	}
	if tokErr.Code != "invalid_grant" || tokErr.Description != "Code expired" || tokErr.URI != "https://docs/err" {
		t.Errorf("unexpected token error %+v", tokErr)
	}
	if o.AccessToken() != "" {
		t.Error("a rejected grant must not store a token")
	}
}

func TestAuthorize_ObjectValuedError(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(401, `{"error":{"message":"bad","code":190}}`))
	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithDoer(doer))

	_, err := o.Authorize(context.Background(), "c", nil)
	tokErr, ok := errors.AsTokenError(err)
	if !ok {
		t.Fatalf("expected TokenError, got %v", err)
	}
	if tokErr.Code != `{"code":190,"message":"bad"}` {
		t.Errorf("expected JSON-encoded error, got %q", tokErr.Code)
	}
}

// envelopeTokenProvider reports token errors the way it reports API errors.
type envelopeTokenProvider struct {
	*fakeProvider
	tokenErrors ErrorEnvelope
}

func (p envelopeTokenProvider) MapTokenError(payload map[string]any) (string, string, bool) {
	return p.tokenErrors.Fields(payload)
}

func TestAuthorize_TokenErrorMapper(t *testing.T) {
	p := envelopeTokenProvider{
		fakeProvider: newFakeProvider(),
		tokenErrors:  ErrorEnvelope{CodePath: []string{"error_code"}, MessagePath: []string{"error_msg"}},
	}
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantDesc string
	}{
		{"provider envelope", `{"error_code":5,"error_msg":"bad code"}`, "5", "bad code"},
		{"standard field wins", `{"error":"invalid_grant","error_code":5}`, "invalid_grant", ""},
		{"nothing to map", `{"reason":"x"}`, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doer := testutil.NewMockDoer(testutil.JSONResponse(400, tc.body))
			o := newOAuth2(t, p, baseConfig(), WithDoer(doer))

			_, err := o.Authorize(context.Background(), "c", nil)
			tokErr, ok := errors.AsTokenError(err)
			if !ok {
				t.Fatalf("expected TokenError, got %v", err)
			}
			if tokErr.Code != tc.wantCode || tokErr.Description != tc.wantDesc {
				t.Errorf("expected code %q description %q, got %q %q",
					tc.wantCode, tc.wantDesc, tokErr.Code, tokErr.Description)
			}
		})
	}
}

func TestAuthorize_WhitespaceCodeIsSent(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"access_token":"t"}`))
	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithDoer(doer))

	if _, err := o.Authorize(context.Background(), " ", nil); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if got := doer.LastCall().Request.Form.Get("code"); got != " " {
		t.Errorf("expected the code to be sent as given, got %q", got)
	}
}

func TestAuthorize_HugeExpiresIn(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"access_token":"t","expires_in":10000000000}`))
	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithDoer(doer), WithClock(fixedClock(now)))

	if _, err := o.Authorize(context.Background(), "c", nil); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if !o.TokenExpiresAt().After(now) {
		t.Errorf("expected expiry after %v, got %v", now, o.TokenExpiresAt())
	}
	if o.TokenStatus() != Authenticated {
		t.Errorf("expected Authenticated, got %v", o.TokenStatus())
	}
}

func TestHandleTokenResponse_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		resp  *httpclient.Response
		check func(error) bool
	}{
		{"html", testutil.Response(200, "text/html", "<p>"), errors.IsUnknownResponse},
		{"malformed", testutil.JSONResponse(200, `{"a"`), errors.IsUnknownResponse},
		{"array", testutil.JSONResponse(200, `[1,2]`), errors.IsUnknownResponse},
		{"server", testutil.JSONResponse(500, `{}`), errors.IsServiceUnavailable},
		{"no content type", testutil.Response(200, "", "{}"), errors.IsUnknownContentType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := newOAuth2(t, newFakeProvider(), baseConfig())
			if _, err := o.handleTokenResponse(tc.resp); !tc.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestRefresh_PreservesRefreshTokenWhenOmitted(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"access_token":"tok2"}`))
	cfg := baseConfig()
	cfg.AccessToken = "tok1"
	cfg.RefreshToken = "r1"
	o := newOAuth2(t, newFakeProvider(), cfg, WithDoer(doer))

	if _, err := o.RefreshAccessToken(context.Background(), nil); err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}
	if o.RefreshToken() != "r1" {
		t.Errorf("expected refresh token unchanged, got %q", o.RefreshToken())
	}
	if o.AccessToken() != "tok2" {
		t.Errorf("expected new access token, got %q", o.AccessToken())
	}
	form := doer.LastCall().Request.Form
	if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "r1" {
		t.Errorf("unexpected refresh form %v", form)
	}
}

func TestRefresh_RequiresRefreshToken(t *testing.T) {
	doer := testutil.NewMockDoer()
	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithDoer(doer))

	_, err := o.RefreshAccessToken(context.Background(), nil)
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if doer.CallCount() != 0 {
		t.Errorf("expected no transport calls, got %d", doer.CallCount())
	}
}

func TestTokenResponse_ExpiryOnlyWhenTruthy(t *testing.T) {
	for _, body := range []string{
		`{"access_token":"a","expires_in":0}`,
		`{"access_token":"a","expires_in":""}`,
		`{"access_token":"a"}`,
	} {
		o := newOAuth2(t, newFakeProvider(), baseConfig())
		if _, err := o.handleTokenResponse(testutil.JSONResponse(200, body)); err != nil {
			t.Fatalf("%s: %v", body, err)
		}
		if !o.TokenExpiresAt().IsZero() {
			t.Errorf("%s: expected no expiry, got %v", body, o.TokenExpiresAt())
		}
	}

	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithClock(fixedClock(time.Unix(1000, 0))))
	if _, err := o.handleTokenResponse(testutil.JSONResponse(200, `{"access_token":"a","expires_in":"60"}`)); err != nil {
		t.Fatal(err)
	}
	if want := time.Unix(1060, 0); !o.TokenExpiresAt().Equal(want) {
		t.Errorf("expected string expires_in to count, got %v", o.TokenExpiresAt())
	}
}

func TestTokenStatus(t *testing.T) {
	now := time.Unix(5000, 0)
	clock := now
	o := newOAuth2(t, newFakeProvider(), baseConfig(), WithClock(func() time.Time { return clock }))

	if o.TokenStatus() != Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", o.TokenStatus())
	}
	if _, err := o.handleTokenResponse(testutil.JSONResponse(200, `{"access_token":"a","expires_in":10}`)); err != nil {
		t.Fatal(err)
	}
	if o.TokenStatus() != Authenticated {
		t.Errorf("expected Authenticated, got %v", o.TokenStatus())
	}
	clock = now.Add(11 * time.Second)
	if o.TokenStatus() != Expired {
		t.Errorf("expected Expired, got %v", o.TokenStatus())
	}
	if Expired.String() != "expired" {
		t.Errorf("unexpected String %q", Expired.String())
	}
}

type accountProvider struct{ *fakeProvider }

func (accountProvider) AccountIDFromToken(payload map[string]any) string {
	return String(payload["user_id"])
}

func TestAccountID_FromTokenAndReset(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"access_token":"a","user_id":12345}`))
	o := newOAuth2(t, accountProvider{newFakeProvider()}, baseConfig(), WithDoer(doer))

	if _, err := o.Authorize(context.Background(), "c", nil); err != nil {
		t.Fatal(err)
	}
	if o.AccountID() != "12345" {
		t.Errorf("AccountID = %q", o.AccountID())
	}

	o.SetAccountID("other")
	if o.AccountID() != "12345" {
		t.Error("SetAccountID must not overwrite a known id")
	}

	o.SetAccessToken("a")
	if o.AccountID() != "12345" {
		t.Error("setting the same token must keep the account id")
	}
	o.SetAccessToken("b")
	if o.AccountID() != "" {
		t.Errorf("expected account id reset on token change, got %q", o.AccountID())
	}
	o.SetAccountID("99")
	if o.AccountID() != "99" {
		t.Errorf("expected empty id to be filled, got %q", o.AccountID())
	}
}

func TestToken_OAuth2Interop(t *testing.T) {
	o := newOAuth2(t, newFakeProvider(), baseConfig())
	if o.Token() != nil {
		t.Error("expected nil token before authorization")
	}
	o.SetAccessToken("a")
	o.SetRefreshToken("r")

	tok := o.Token()
	if tok.AccessToken != "a" || tok.RefreshToken != "r" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}
	if !tok.Valid() {
		t.Error("a token without expiry is valid")
	}
}

func TestTokenSource_RefreshesMissingToken(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"access_token":"fresh","expires_in":3600}`))
	cfg := baseConfig()
	cfg.RefreshToken = "r1"
	o := newOAuth2(t, newFakeProvider(), cfg, WithDoer(doer))

	ts := o.TokenSource(context.Background())
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "fresh" {
		t.Errorf("expected refreshed token, got %q", tok.AccessToken)
	}
	if o.AccessToken() != "fresh" {
		t.Error("expected refreshed token written back")
	}
	if doer.CallCount() != 1 {
		t.Errorf("expected one refresh call, got %d", doer.CallCount())
	}
}

func TestTokenSource_NoRefreshToken(t *testing.T) {
	o := newOAuth2(t, newFakeProvider(), baseConfig())
	if _, err := o.TokenSource(context.Background()).Token(); !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestParseIDToken(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "1234",
		"email": "a@example.com",
	}).SignedString([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseIDToken(map[string]any{"id_token": raw})
	if err != nil {
		t.Fatalf("ParseIDToken: %v", err)
	}
	if claims["sub"] != "1234" || claims["email"] != "a@example.com" {
		t.Errorf("unexpected claims %v", claims)
	}

	if _, err := ParseIDToken(map[string]any{}); !errors.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument for missing id_token, got %v", err)
	}
	if _, err := ParseIDToken(map[string]any{"id_token": "not-a-jwt"}); !errors.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument for malformed id_token, got %v", err)
	}
}
