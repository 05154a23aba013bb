package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Doer sends a single HTTP request. Implementations must return a Response
// for every status code and an error only when no response was obtained.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f(ctx, req).
func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method.
	Method string
	// URL is the absolute request URL. Query is merged into its query string.
	URL string
	// Query are URL query parameters.
	Query url.Values
	// Form is sent as an application/x-www-form-urlencoded body.
	Form url.Values
	// Multipart is sent as a multipart/form-data body. It takes precedence over Form.
	Multipart *MultipartBody
	// Headers are request headers.
	Headers http.Header
	// Timeout bounds the whole exchange. Zero uses the adapter default.
	Timeout time.Duration
	// Proxy is an http, https or socks5 proxy URL. Empty uses the adapter default.
	Proxy string
}

// FullURL returns URL with Query merged in.
func (r *Request) FullURL() (string, error) {
	if len(r.Query) == 0 {
		return r.URL, nil
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range r.Query {
		q[k] = append([]string(nil), vs...)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Header are the response headers.
	Header http.Header
	// Body is the raw response body.
	Body []byte
	// Truncated is set when the body was cut at the adapter's MaxResponseSize.
	Truncated bool
}

// ContentType returns the lower-cased media type of the response without
// parameters, or "" when the header is absent.
func (r *Response) ContentType() string {
	mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
