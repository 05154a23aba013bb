package providers

import (
	"context"
	"testing"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/testutil"
)

func TestReCaptcha_RequiresSecret(t *testing.T) {
	if _, err := NewReCaptcha(client.Config{ClientID: "site"}); !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestReCaptcha_Verify(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(200,
		`{"success":true,"challenge_ts":"2026-01-02T03:04:05Z","hostname":"example.com","score":0.9,"action":"login"}`))
	r, err := NewReCaptcha(client.Config{ClientID: "site", ClientSecret: "sk"}, client.WithDoer(doer))
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Verify(context.Background(), "user-token", "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Hostname != "example.com" || res.Score != 0.9 || res.Action != "login" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.ChallengeTS.Year() != 2026 {
		t.Errorf("ChallengeTS = %v", res.ChallengeTS)
	}

	call := doer.LastCall().Request
	if call.URL != "https://www.google.com/recaptcha/api/siteverify" {
		t.Errorf("URL = %s", call.URL)
	}
	f := call.Form
	if f.Get("secret") != "sk" || f.Get("response") != "user-token" || f.Get("remoteip") != "10.0.0.1" {
		t.Errorf("form = %v", f)
	}
}

func TestReCaptcha_UserFailureIsResult(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"success":false,"error-codes":["timeout-or-duplicate"]}`))
	r, _ := NewReCaptcha(client.Config{ClientID: "site", ClientSecret: "sk"}, client.WithDoer(doer))

	res, err := r.Verify(context.Background(), "stale", "")
	if err != nil {
		t.Fatalf("expected a result, got %v", err)
	}
	if res.Success {
		t.Error("expected unsuccessful result")
	}
	if got := r.LastErrors(); len(got) != 1 || got[0] != "timeout-or-duplicate" {
		t.Errorf("LastErrors = %v", got)
	}
	if doer.LastCall().Request.Form.Has("remoteip") {
		t.Error("empty remote IP must be omitted")
	}
}

func TestReCaptcha_ConfigFailureIsError(t *testing.T) {
	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"success":false,"error-codes":["invalid-input-secret"]}`))
	r, _ := NewReCaptcha(client.Config{ClientID: "site", ClientSecret: "bad"}, client.WithDoer(doer))

	_, err := r.Verify(context.Background(), "t", "")
	apiErr, ok := errors.AsAPIError(err)
	if !ok || apiErr.ErrorCode != "invalid-input-secret" {
		t.Fatalf("expected APIError, got %v", err)
	}
}
