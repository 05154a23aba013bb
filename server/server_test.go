package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rr
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Host != "127.0.0.1" || cfg.Path != "/callback" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
	bad := Config{Port: 70000, Path: "/cb"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
	bad = Config{Path: "cb"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for relative path")
	}
}

func TestHandler_DeliversCode(t *testing.T) {
	s := New(Config{}, "st-1", logger.Nop())

	rr := serve(s, "/callback?code=abc&state=st-1&extra=1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cb, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if cb.Code != "abc" || cb.Query.Get("extra") != "1" {
		t.Errorf("unexpected callback: %+v", cb)
	}

	if rr := serve(s, "/callback?code=def&state=st-1"); rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for a second redirect, got %d", rr.Code)
	}
}

func TestHandler_StateMismatch(t *testing.T) {
	s := New(Config{}, "expected", logger.Nop())
	rr := serve(s, "/callback?code=abc&state=forged")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	// A forged redirect must not consume the attempt.
	serve(s, "/callback?code=real&state=expected")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cb, err := s.Wait(ctx)
	if err != nil || cb.Code != "real" {
		t.Errorf("expected the genuine redirect, got %+v, %v", cb, err)
	}
}

func TestHandler_ProviderError(t *testing.T) {
	s := New(Config{}, "st", logger.Nop())
	rr := serve(s, "/callback?state=st&error=access_denied&error_description=User+denied")
	if !strings.Contains(rr.Body.String(), "access_denied") {
		t.Errorf("expected error on the page, got %q", rr.Body.String())
	}

	_, err := s.Wait(context.Background())
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "User denied") {
		t.Errorf("expected description in error, got %q", err.Error())
	}
}

func TestHandler_EscapesMessage(t *testing.T) {
	s := New(Config{}, "st", logger.Nop())
	rr := serve(s, "/callback?state=st&error=%3Cscript%3E")
	if strings.Contains(rr.Body.String(), "<script>") {
		t.Error("expected provider error to be HTML-escaped")
	}
}

func TestWait_ContextDone(t *testing.T) {
	s := New(Config{}, "st", logger.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Wait(ctx); errors.CodeOf(err) != errors.ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
}

func TestStartStop_Loopback(t *testing.T) {
	s := New(Config{}, "st", logger.Nop())
	if s.RedirectURI() != "" {
		t.Error("expected empty redirect URI before Start")
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(ctx)

	uri := s.RedirectURI()
	if !strings.HasPrefix(uri, "http://127.0.0.1:") || !strings.HasSuffix(uri, "/callback") {
		t.Fatalf("unexpected redirect URI %q", uri)
	}

	resp, err := http.Get(uri + "?code=xyz&state=st")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	cb, err := s.Wait(waitCtx)
	if err != nil || cb.Code != "xyz" {
		t.Errorf("expected code xyz, got %+v, %v", cb, err)
	}
}

func TestCallback_ErrWithoutCode(t *testing.T) {
	if err := (Callback{}).Err(); !errors.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument for an empty redirect, got %v", err)
	}
}
