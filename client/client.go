package client

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/httpclient"
	"github.com/kbukum/apihelper/logger"
	"github.com/kbukum/apihelper/observability"
	"github.com/kbukum/apihelper/resilience"
	"github.com/kbukum/apihelper/version"
)

// Client is the base client: request pipeline, pacing and history.
// It is safe for concurrent use.
type Client struct {
	provider Provider
	// session is handed to provider hooks; an OAuth2Client installs itself here.
	session Session

	doer    httpclient.Doer
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time

	cfgMu sync.RWMutex
	cfg   Config

	// paceMu spans throttle and transport call while a rate is configured.
	paceMu sync.Mutex
	// throttler is never replaced; SetQPS retunes it in place.
	throttler *resilience.Throttler

	histMu  sync.Mutex
	history []HistoryEntry

	sections map[string]any
}

// New creates a base client. client_id is always required, plus whatever
// the provider declares through RequiredOptioner.
func New(p Provider, cfg Config, opts ...Option) (*Client, error) {
	c, err := newClient(p, cfg, []string{"client_id"}, opts)
	if err != nil {
		return nil, err
	}
	c.session = c
	c.buildSections()
	return c, nil
}

func newClient(p Provider, cfg Config, required []string, opts []Option) (*Client, error) {
	if p == nil {
		return nil, errors.InvalidArgument("provider is required")
	}
	cfg = cfg.clone()
	if d, ok := p.(Defaulter); ok {
		d.ApplyDefaults(&cfg)
	}
	if r, ok := p.(RequiredOptioner); ok {
		required = append(required, r.RequiredOptions()...)
	}
	if err := cfg.validate(required); err != nil {
		return nil, err
	}
	if v, ok := p.(ConfigValidator); ok {
		if err := v.ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}

	o := newOptions(opts)
	return &Client{
		provider:  p,
		doer:      o.doer,
		log:       o.log.WithComponent("apihelper." + p.Name()),
		metrics:   o.metrics,
		now:       o.now,
		cfg:       cfg,
		throttler: resilience.NewThrottler(cfg.QPS),
	}, nil
}

// Provider returns the adapter strategy.
func (c *Client) Provider() Provider { return c.provider }

// Name returns the provider name.
func (c *Client) Name() string { return c.provider.Name() }

// --- Session ---

func (c *Client) ClientID() string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.ClientID
}

func (c *Client) ClientSecret() string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.ClientSecret
}

func (c *Client) Version() string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.Version
}

func (c *Client) Locale() string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.Locale
}

// Option returns a provider-specific option, or "".
func (c *Client) Option(key string) string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.Options[key]
}

// AccessToken is always empty for a base client.
func (c *Client) AccessToken() string { return "" }

// Options returns a copy of the provider-specific options.
func (c *Client) Options() map[string]string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return maps.Clone(c.cfg.Options)
}

// Timeout returns the per-request timeout; zero means the transport default.
func (c *Client) Timeout() time.Duration {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.Timeout
}

// QPS returns the configured request rate; zero means unlimited.
func (c *Client) QPS() float64 {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.QPS
}

// Proxy returns the configured proxy URL.
func (c *Client) Proxy() string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.Proxy
}

// --- Setters ---

func (c *Client) SetVersion(v string) {
	c.cfgMu.Lock()
	c.cfg.Version = v
	c.cfgMu.Unlock()
}

func (c *Client) SetLocale(l string) {
	c.cfgMu.Lock()
	c.cfg.Locale = l
	c.cfgMu.Unlock()
}

// SetOption sets a provider-specific option; an empty value removes it.
func (c *Client) SetOption(key, value string) {
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	if value == "" {
		delete(c.cfg.Options, key)
		return
	}
	if c.cfg.Options == nil {
		c.cfg.Options = make(map[string]string)
	}
	c.cfg.Options[key] = value
}

func (c *Client) SetTimeout(d time.Duration) {
	c.cfgMu.Lock()
	c.cfg.Timeout = d
	c.cfgMu.Unlock()
}

func (c *Client) SetProxy(p string) {
	c.cfgMu.Lock()
	c.cfg.Proxy = p
	c.cfgMu.Unlock()
}

// SetQPS changes the request rate. The next request is still spaced from
// the end of the previous one.
func (c *Client) SetQPS(qps float64) {
	c.cfgMu.Lock()
	c.cfg.QPS = qps
	c.cfgMu.Unlock()

	c.throttler.SetQPS(qps)
}

// --- Requests ---

// Get calls an API method with GET.
func (c *Client) Get(ctx context.Context, method string, params url.Values) (any, error) {
	return c.Request(ctx, method, params, http.MethodGet)
}

// Post calls an API method with POST.
func (c *Client) Post(ctx context.Context, method string, params url.Values) (any, error) {
	return c.Request(ctx, method, params, http.MethodPost)
}

// Request calls an API method and returns the decoded payload. httpMethod
// must be GET or POST; an empty value means GET.
func (c *Client) Request(ctx context.Context, method string, params url.Values, httpMethod string) (any, error) {
	res, err := c.Do(ctx, method, params, httpMethod)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// RequestJSON calls an API method and unmarshals the JSON body into out.
func (c *Client) RequestJSON(ctx context.Context, method string, params url.Values, httpMethod string, out any) error {
	res, err := c.Do(ctx, method, params, httpMethod)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return errors.UnknownResponse(fmt.Sprintf("decode into %T: %v", out, err), res.StatusCode, res.Body)
	}
	return nil
}

// Do runs the pipeline and returns the classified, checked result.
func (c *Client) Do(ctx context.Context, method string, params url.Values, httpMethod string) (*Result, error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanAPICall, c.Name(), method, c.metrics)
	res, err := c.do(ctx, method, params, httpMethod)
	op.End(ctx, err, errorCode(err))
	return res, err
}

func (c *Client) do(ctx context.Context, method string, params url.Values, httpMethod string) (*Result, error) {
	if httpMethod == "" {
		httpMethod = http.MethodGet
	}
	prepared := c.prepare(method, params)

	req := &httpclient.Request{Method: httpMethod, URL: c.provider.APIURL(c.session, method)}
	switch httpMethod {
	case http.MethodGet:
		req.Query = prepared
	case http.MethodPost:
		req.Form = prepared
	default:
		return nil, errors.UnsupportedMethod(httpMethod)
	}

	return c.sendAndHandle(ctx, method, req)
}

// MultipartRequest POSTs params and files as multipart/form-data.
func (c *Client) MultipartRequest(ctx context.Context, method string, params url.Values, files []httpclient.FileField) (any, error) {
	prepared := c.prepare(method, params)
	req := &httpclient.Request{
		Method:    http.MethodPost,
		URL:       c.provider.APIURL(c.session, method),
		Multipart: &httpclient.MultipartBody{Fields: prepared, Files: files},
	}
	ctx, op := observability.StartOperation(ctx, observability.SpanAPICall, c.Name(), method, c.metrics)
	res, err := c.sendAndHandle(ctx, method, req)
	op.End(ctx, err, errorCode(err))
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *Client) sendAndHandle(ctx context.Context, method string, req *httpclient.Request) (*Result, error) {
	resp, err := c.send(ctx, method, req)
	if err != nil {
		return nil, err
	}
	return c.handle(resp)
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return string(errors.CodeOf(err))
}

func (c *Client) prepare(method string, params url.Values) url.Values {
	prepared := make(url.Values, len(params))
	for k, vs := range params {
		prepared[k] = append([]string(nil), vs...)
	}
	c.provider.PrepareRequest(c.session, method, prepared)
	return prepared
}

// handle interprets a raw response.
func (c *Client) handle(resp *httpclient.Response) (*Result, error) {
	res, err := Classify(resp)
	if err != nil {
		return nil, err
	}

	if h, ok := c.provider.(ResponseHandler); ok {
		data, err := h.HandleResponse(c.session, res)
		if err != nil {
			return nil, err
		}
		res.Data = data
		return res, nil
	}

	if res.Kind != KindJSON {
		return nil, errors.UnknownResponse("expected a JSON response", res.StatusCode, res.Body).
			WithResponse(res.StatusCode, res.ContentType, res.Body)
	}
	data, err := DecodeJSON(res.Body)
	if err != nil {
		return nil, errors.UnknownResponse("malformed JSON response", res.StatusCode, res.Body).
			WithResponse(res.StatusCode, res.ContentType, res.Body).
			WithCause(err)
	}
	res.Data = data

	if err := c.provider.CheckResponse(c.session, res); err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, errors.UnknownResponse(fmt.Sprintf("unexpected status %d", res.StatusCode), res.StatusCode, res.Body).
			WithResponse(res.StatusCode, res.ContentType, res.Body)
	}
	return res, nil
}

// send is the only path to the transport. It merges headers, applies the
// configured timeout and proxy, waits for the throttler, and records the
// response in the history.
func (c *Client) send(ctx context.Context, method string, req *httpclient.Request) (*httpclient.Response, error) {
	req.Headers = c.headers(req.Headers)

	c.cfgMu.RLock()
	if req.Timeout <= 0 {
		req.Timeout = c.cfg.Timeout
	}
	if req.Proxy == "" {
		req.Proxy = c.cfg.Proxy
	}
	c.cfgMu.RUnlock()

	release, err := c.pace(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	elapsed := time.Since(start)
	release()

	fields := logger.Fields(
		logger.FieldMethod, method,
		logger.FieldHTTPMethod, req.Method,
		logger.FieldURL, httpclient.MaskURL(req.URL),
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	if err != nil {
		c.log.WithContext(ctx).WithError(err).Warn("transport failure", fields)
		c.metrics.RecordRequest(ctx, c.provider.Name(), req.Method, 0, elapsed)
		return nil, err
	}
	fields[logger.FieldStatus] = resp.StatusCode
	c.log.WithContext(ctx).Debug("api request", fields)
	c.metrics.RecordRequest(ctx, c.provider.Name(), req.Method, resp.StatusCode, elapsed)

	c.record(HistoryEntry{
		ID:         uuid.NewString(),
		Method:     req.Method,
		URI:        httpclient.StripQuery(req.URL),
		Time:       c.now(),
		StatusCode: resp.StatusCode,
	})
	if resp.Truncated {
		return nil, errors.UnknownResponse("response body exceeds the size limit", resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// pace waits for the throttler. With a rate configured it returns holding
// paceMu, so the grant and the transport call stay atomic. release must be
// called once the call has returned; it marks the time the next call is
// spaced from.
func (c *Client) pace(ctx context.Context) (release func(), err error) {
	c.paceMu.Lock()
	t := c.throttler
	if err := t.Wait(ctx); err != nil {
		c.paceMu.Unlock()
		return nil, errors.Timeout("throttle", err)
	}
	if !t.Enabled() {
		c.paceMu.Unlock()
		return t.Done, nil
	}
	return func() {
		t.Done()
		c.paceMu.Unlock()
	}, nil
}

// headers merges caller headers over the defaults; caller values win.
func (c *Client) headers(caller http.Header) http.Header {
	var h http.Header
	if hp, ok := c.provider.(HeaderProvider); ok {
		h = hp.DefaultHeaders().Clone()
	}
	if h == nil {
		h = http.Header{
			"User-Agent": {version.UserAgent()},
			"Accept":     {"application/json"},
		}
	}
	for k, vs := range caller {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return h
}
