package httpclient

import (
	"net/url"
	"slices"
	"strings"
)

// sensitiveKeys are matched as substrings of lower-cased parameter names.
var sensitiveKeys = []string{"token", "secret", "code", "sig", "session_key", "password", "apikey", "key"}

// MaskValue masks value when key looks sensitive, keeping the first four
// characters of long values.
func MaskValue(key, value string) string {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			if len(value) >= 8 {
				return value[:4] + "****"
			}
			return "****"
		}
	}
	return value
}

// MaskURL masks sensitive query parameter values for logging. Unparseable
// URLs are returned unchanged.
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if len(q) == 0 {
		return rawURL
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, v := range q[key] {
			masked := strings.ReplaceAll(url.QueryEscape(MaskValue(key, v)), "%2A", "*")
			parts = append(parts, url.QueryEscape(key)+"="+masked)
		}
	}
	u.RawQuery = strings.Join(parts, "&")
	return u.String()
}

// StripQuery returns rawURL without its query string and fragment.
func StripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		base, _, _ := strings.Cut(rawURL, "?")
		return base
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
