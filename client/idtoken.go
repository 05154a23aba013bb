package client

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/apihelper/errors"
)

// ParseIDToken decodes the OpenID Connect id_token of a token payload. The
// signature is not verified; the token came straight from the token
// endpoint over TLS.
func ParseIDToken(payload map[string]any) (jwt.MapClaims, error) {
	raw := String(payload["id_token"])
	if raw == "" {
		return nil, errors.InvalidArgument("token response has no id_token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.InvalidArgument("malformed id_token: %v", err)
	}
	return claims, nil
}
