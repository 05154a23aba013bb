package providers

import (
	"crypto/md5"
	"encoding/hex"
	"slices"
	"strings"
)

// md5Hex returns the lowercase hex MD5 of s.
func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// signParams concatenates key=value pairs sorted by key, appends secret and
// returns the MD5 of the result. Multi-valued keys are joined with commas.
func signParams(params map[string][]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[k], ","))
	}
	b.WriteString(secret)
	return md5Hex(b.String())
}
