package client

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/kbukum/apihelper/errors"
)

func TestDecodeJSON(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"id": 12345678901234567890}`))
	if err != nil {
		t.Fatal(err)
	}
	id, _ := Lookup(v, "id")
	if id != json.Number("12345678901234567890") {
		t.Errorf("expected number kept as text, got %#v", id)
	}

	for _, body := range []string{``, `{"a":1} {"b":2}`, `{"a":`} {
		if _, err := DecodeJSON([]byte(body)); err == nil {
			t.Errorf("%q: expected error", body)
		}
	}
}

func TestLookup(t *testing.T) {
	data := map[string]any{"error": map[string]any{"code": json.Number("5")}}
	if v, ok := Lookup(data, "error", "code"); !ok || String(v) != "5" {
		t.Errorf("Lookup = %v %v", v, ok)
	}
	if _, ok := Lookup(data, "error", "code", "deeper"); ok {
		t.Error("expected lookup through a scalar to fail")
	}
	if _, ok := Lookup([]any{1}, "x"); ok {
		t.Error("expected lookup on an array to fail")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"a", "a"},
		{json.Number("1.5"), "1.5"},
		{true, "true"},
		{float64(3), "3"},
		{map[string]any{"a": 1}, `{"a":1}`},
	}
	for _, tc := range tests {
		if got := String(tc.in); got != tc.want {
			t.Errorf("String(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   any
		want time.Duration
		ok   bool
	}{
		{json.Number("3600"), time.Hour, true},
		{"60", time.Minute, true},
		{json.Number("10000000000"), time.Duration(math.MaxInt64), true},
		{"Inf", time.Duration(math.MaxInt64), true},
		{"NaN", 0, false},
		{float64(0), 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range tests {
		got, ok := seconds(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("seconds(%v) = %v %v, want %v %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestErrorEnvelope_StatusRange(t *testing.T) {
	env := ErrorEnvelope{Policy: StatusRange, CodePath: []string{"code"}, MessagePath: []string{"detail"}}
	data := map[string]any{"code": json.Number("403"), "detail": "Account Inactive"}

	for status, wantErr := range map[int]bool{200: false, 399: false, 400: true, 499: true, 500: false} {
		err := env.Check("battlenet", &Result{StatusCode: status, Data: data})
		if (err != nil) != wantErr {
			t.Errorf("status %d: err = %v, want error %v", status, err, wantErr)
		}
	}

	err := env.Check("battlenet", &Result{StatusCode: 403, Data: data})
	apiErr, ok := errors.AsAPIError(err)
	if !ok || apiErr.ErrorCode != "403" || apiErr.ErrorMessage != "Account Inactive" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestErrorEnvelope_PayloadField(t *testing.T) {
	env := ErrorEnvelope{Policy: PayloadField, Root: "error_code", CodePath: []string{"error_code"}, MessagePath: []string{"error_msg"}}

	if err := env.Check("ok", &Result{StatusCode: 200, Data: map[string]any{"uid": "1"}}); err != nil {
		t.Errorf("expected no error without root field, got %v", err)
	}
	if err := env.Check("ok", &Result{StatusCode: 200, Data: []any{}}); err != nil {
		t.Errorf("expected no error for array payload, got %v", err)
	}
	err := env.Check("ok", &Result{StatusCode: 200, Data: map[string]any{"error_code": json.Number("102"), "error_msg": "PARAM_SESSION_EXPIRED"}})
	if apiErr, ok := errors.AsAPIError(err); !ok || apiErr.ErrorCode != "102" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestErrorPolicy_String(t *testing.T) {
	if StatusRange.String() != "status" || PayloadField.String() != "payload" || ErrorPolicy(9).String() != "unknown" {
		t.Error("unexpected policy names")
	}
}
