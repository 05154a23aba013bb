package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/kbukum/apihelper/httpclient"
)

func TestMockDoer_ServesInOrder(t *testing.T) {
	d := NewMockDoer(JSONResponse(200, `{"a":1}`), Response(500, "", ""))
	d.EnqueueError(errors.New("reset"))

	req := &httpclient.Request{Method: http.MethodGet, URL: "https://x.test/a?b=1", Query: url.Values{"c": {"2"}}}
	resp, err := d.Do(context.Background(), req)
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("unexpected first reply: %v %v", resp, err)
	}
	if resp, _ := d.Do(context.Background(), req); resp.StatusCode != 500 || resp.Header.Get("Content-Type") != "" {
		t.Errorf("unexpected second reply: %+v", resp)
	}
	if _, err := d.Do(context.Background(), req); err == nil || err.Error() != "reset" {
		t.Errorf("expected queued error, got %v", err)
	}
	if _, err := d.Do(context.Background(), req); !errors.Is(err, ErrNoResponse) {
		t.Errorf("expected ErrNoResponse, got %v", err)
	}
	if d.CallCount() != 4 {
		t.Errorf("expected 4 calls, got %d", d.CallCount())
	}
	q := d.LastCall().Query()
	if q.Get("b") != "1" || q.Get("c") != "2" {
		t.Errorf("unexpected merged query %v", q)
	}
}

func TestMockDoer_RecordsCopies(t *testing.T) {
	d := NewMockDoer(JSONResponse(200, `{}`))
	form := url.Values{"code": {"abc"}}
	_, _ = d.Do(context.Background(), &httpclient.Request{Method: http.MethodPost, Form: form})
	form.Set("code", "changed")
	if got := d.Calls()[0].Request.Form.Get("code"); got != "abc" {
		t.Errorf("expected recorded form to be a copy, got %q", got)
	}
}
