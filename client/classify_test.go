package client

import (
	"testing"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/testutil"
)

func TestClassify_StatusBoundaries(t *testing.T) {
	tests := []struct {
		status      int
		unavailable bool
	}{
		{499, false},
		{500, true},
		{503, true},
		{599, true},
		{600, false},
	}
	for _, tc := range tests {
		resp := testutil.JSONResponse(tc.status, `{}`)
		_, err := Classify(resp)
		if got := errors.IsServiceUnavailable(err); got != tc.unavailable {
			t.Errorf("status %d: ServiceUnavailable = %v, want %v (err %v)", tc.status, got, tc.unavailable, err)
		}
	}
}

func TestClassify_ServerErrorBeforeContentType(t *testing.T) {
	resp := testutil.Response(502, "", "bad gateway")
	_, err := Classify(resp)
	if !errors.IsServiceUnavailable(err) {
		t.Fatalf("expected ServiceUnavailable, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.StatusCode != 502 || string(appErr.Body) != "bad gateway" {
		t.Errorf("expected status and body on error, got %d %q", appErr.StatusCode, appErr.Body)
	}
}

func TestClassify_ContentKinds(t *testing.T) {
	tests := []struct {
		contentType string
		want        ContentKind
	}{
		{"application/json", KindJSON},
		{"application/json; charset=utf-8", KindJSON},
		{"text/javascript; charset=UTF-8", KindJSON},
		{"application/xml", KindXML},
		{"text/xml", KindXML},
		{"TEXT/HTML", KindHTML},
		{"text/plain", KindText},
	}
	for _, tc := range tests {
		res, err := Classify(testutil.Response(200, tc.contentType, "x"))
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.contentType, err)
			continue
		}
		if res.Kind != tc.want {
			t.Errorf("%s: kind = %s, want %s", tc.contentType, res.Kind, tc.want)
		}
	}
}

func TestClassify_UnknownContentType(t *testing.T) {
	for _, ct := range []string{"", "image/png", "application/octet-stream"} {
		_, err := Classify(testutil.Response(200, ct, "x"))
		if !errors.IsUnknownContentType(err) {
			t.Errorf("%q: expected UnknownContentType, got %v", ct, err)
		}
	}
}
