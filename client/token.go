package client

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/kbukum/apihelper/errors"
)

// TokenStatus describes the usability of the stored access token.
type TokenStatus int

const (
	Unauthenticated TokenStatus = iota
	Authenticated
	Expired
)

func (s TokenStatus) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

// TokenStatus reports whether a token is stored and still within its
// lifetime. A token without a known expiry never expires.
func (o *OAuth2Client) TokenStatus() TokenStatus {
	o.tokenMu.RLock()
	defer o.tokenMu.RUnlock()
	switch {
	case o.token.AccessToken == "":
		return Unauthenticated
	case !o.token.ExpiresAt.IsZero() && !o.now().Before(o.token.ExpiresAt):
		return Expired
	default:
		return Authenticated
	}
}

// Token returns the stored tokens as an oauth2.Token, or nil when no access
// token is stored.
func (o *OAuth2Client) Token() *oauth2.Token {
	o.tokenMu.RLock()
	defer o.tokenMu.RUnlock()
	if o.token.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  o.token.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: o.token.RefreshToken,
		Expiry:       o.token.ExpiresAt,
	}
}

// TokenSource returns a source that serves the stored token until it
// expires, then refreshes it through RefreshAccessToken. Refreshed tokens are
// written back to the client.
func (o *OAuth2Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(o.Token(), &refreshingSource{ctx: ctx, client: o})
}

type refreshingSource struct {
	ctx    context.Context
	client *OAuth2Client
}

func (s *refreshingSource) Token() (*oauth2.Token, error) {
	if s.client.RefreshToken() == "" {
		if tok := s.client.Token(); tok != nil && s.client.TokenStatus() == Authenticated {
			return tok, nil
		}
		return nil, errors.InvalidArgument("access token expired and no refresh token stored")
	}
	if _, err := s.client.RefreshAccessToken(s.ctx, nil); err != nil {
		return nil, err
	}
	tok := s.client.Token()
	if tok == nil {
		return nil, errors.UnknownResponse("refresh response carried no access token", 0, nil)
	}
	return tok, nil
}
