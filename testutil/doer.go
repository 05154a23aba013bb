package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kbukum/apihelper/httpclient"
)

// ErrNoResponse is returned when a MockDoer runs out of queued responses.
var ErrNoResponse = errors.New("testutil: no queued response")

// Call is one request observed by a MockDoer.
type Call struct {
	Request httpclient.Request
	Time    time.Time
}

// Query returns the merged query of the call URL and Query field.
func (c Call) Query() url.Values {
	full, err := c.Request.FullURL()
	if err != nil {
		return nil
	}
	u, err := url.Parse(full)
	if err != nil {
		return nil
	}
	return u.Query()
}

// MockDoer is a scripted httpclient.Doer. Queued replies are served in
// order; Handler, when set, serves every request instead.
type MockDoer struct {
	// Handler overrides the queue when set.
	Handler func(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error)

	mu      sync.Mutex
	replies []reply
	calls   []Call
}

type reply struct {
	resp *httpclient.Response
	err  error
}

// NewMockDoer returns a MockDoer serving responses in order.
func NewMockDoer(responses ...*httpclient.Response) *MockDoer {
	m := &MockDoer{}
	for _, r := range responses {
		m.Enqueue(r)
	}
	return m
}

// Enqueue appends a response to the queue.
func (m *MockDoer) Enqueue(resp *httpclient.Response) {
	m.mu.Lock()
	m.replies = append(m.replies, reply{resp: resp})
	m.mu.Unlock()
}

// EnqueueError appends a transport failure to the queue.
func (m *MockDoer) EnqueueError(err error) {
	m.mu.Lock()
	m.replies = append(m.replies, reply{err: err})
	m.mu.Unlock()
}

// Do records req and serves the next reply.
func (m *MockDoer) Do(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Request: cloneRequest(req), Time: time.Now()})
	handler := m.Handler
	if handler != nil {
		m.mu.Unlock()
		return handler(ctx, req)
	}
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.replies) == 0 {
		return nil, fmt.Errorf("%w for %s %s", ErrNoResponse, req.Method, req.URL)
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next.resp, next.err
}

// Calls returns a copy of the observed calls.
func (m *MockDoer) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns the number of observed calls.
func (m *MockDoer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent call. It panics when there is none.
func (m *MockDoer) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		panic("testutil: MockDoer has no calls")
	}
	return m.calls[len(m.calls)-1]
}

func cloneRequest(req *httpclient.Request) httpclient.Request {
	c := *req
	if req.Query != nil {
		c.Query = cloneValues(req.Query)
	}
	if req.Form != nil {
		c.Form = cloneValues(req.Form)
	}
	if req.Headers != nil {
		c.Headers = req.Headers.Clone()
	}
	return c
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// JSONResponse builds a response with an application/json body.
func JSONResponse(status int, body string) *httpclient.Response {
	return Response(status, "application/json; charset=utf-8", body)
}

// Response builds a response with the given Content-Type. An empty
// contentType leaves the header unset.
func Response(status int, contentType, body string) *httpclient.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &httpclient.Response{StatusCode: status, Header: h, Body: []byte(body)}
}
