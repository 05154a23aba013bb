package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"

	apierrors "github.com/kbukum/apihelper/errors"
)

const tracerName = "github.com/kbukum/apihelper/httpclient"

// Adapter is the net/http implementation of Doer. It is safe for concurrent use.
type Adapter struct {
	config    Config
	tlsConfig *tls.Config
	tracer    trace.Tracer

	mu      sync.Mutex
	clients map[string]*http.Client // keyed by proxy URL, "" for the default route
}

// New creates an Adapter with the given configuration.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		config:    cfg,
		tlsConfig: tlsCfg,
		clients:   make(map[string]*http.Client),
	}
	if cfg.Tracing {
		a.tracer = otel.Tracer(tracerName)
	}
	return a, nil
}

var (
	defaultOnce    sync.Once
	defaultAdapter *Adapter
)

// Default returns the process-wide Adapter, created with the zero Config on
// first use. It lives for the rest of the process.
func Default() *Adapter {
	defaultOnce.Do(func() {
		a, err := New(Config{})
		if err != nil {
			panic(fmt.Sprintf("httpclient: default adapter: %v", err))
		}
		defaultAdapter = a
	})
	return defaultAdapter
}

// Config returns the effective configuration.
func (a *Adapter) Config() Config {
	return a.config
}

// Do sends req. A Response is returned for every status code; redirects are
// returned as-is.
func (a *Adapter) Do(ctx context.Context, req *Request) (*Response, error) {
	proxy := req.Proxy
	if proxy == "" {
		proxy = a.config.Proxy
	}
	client, err := a.clientFor(proxy)
	if err != nil {
		return nil, apierrors.InvalidArgument("%v", err)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if a.tracer != nil {
		var span trace.Span
		ctx, span = a.tracer.Start(ctx, "HTTP "+httpReq.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", httpReq.Method),
				attribute.String("url.full", MaskURL(httpReq.URL.String())),
				attribute.String("server.address", httpReq.URL.Host),
			))
		defer span.End()
		httpReq = httpReq.WithContext(ctx)

		resp, err := a.execute(ctx, client, httpReq)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		return resp, nil
	}

	return a.execute(ctx, client, httpReq)
}

func (a *Adapter) execute(ctx context.Context, client *http.Client, httpReq *http.Request) (*Response, error) {
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, classifyNetworkError(ctx, httpReq, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.config.MaxResponseSize+1))
	if err != nil {
		return nil, classifyNetworkError(ctx, httpReq, fmt.Errorf("read response body: %w", err))
	}
	truncated := int64(len(body)) > a.config.MaxResponseSize
	if truncated {
		body = body[:a.config.MaxResponseSize]
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Truncated:  truncated,
	}, nil
}

// buildRequest encodes the body and headers of req.
func (a *Adapter) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target, err := req.FullURL()
	if err != nil {
		return nil, apierrors.InvalidArgument("invalid request URL: %v", err)
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Multipart != nil:
		body, contentType, err = req.Multipart.encode()
		if err != nil {
			return nil, apierrors.InvalidArgument("encode multipart body: %v", err)
		}
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, apierrors.InvalidArgument("create request: %v", err)
	}
	for k, vs := range req.Headers {
		httpReq.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

// clientFor returns the cached client for a proxy route.
func (a *Adapter) clientFor(proxy string) (*http.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.clients[proxy]; ok {
		return c, nil
	}

	var proxyURL *url.URL
	if proxy != "" {
		u, err := parseProxy(proxy)
		if err != nil {
			return nil, err
		}
		proxyURL = u
	}

	transport, err := a.newTransport(proxyURL)
	if err != nil {
		return nil, err
	}
	c := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	a.clients[proxy] = c
	return c, nil
}

// newTransport builds a fresh transport so x/net/http2 can be attached
// without clashing with net/http's own registration.
func (a *Adapter) newTransport(proxyURL *url.URL) (*http.Transport, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   a.config.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		TLSClientConfig:       a.tlsConfig.Clone(),
	}
	if proxyURL != nil {
		t.Proxy = http.ProxyURL(proxyURL)
	}

	if a.config.HTTP2.ReadIdleTimeout > 0 {
		h2, err := http2.ConfigureTransports(t)
		if err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
		h2.ReadIdleTimeout = a.config.HTTP2.ReadIdleTimeout
		if a.config.HTTP2.PingTimeout > 0 {
			h2.PingTimeout = a.config.HTTP2.PingTimeout
		}
	}
	return t, nil
}

func classifyNetworkError(ctx context.Context, req *http.Request, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apierrors.Timeout(req.Method+" "+MaskURL(req.URL.String()), err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apierrors.Transport(err)
}
