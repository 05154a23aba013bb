package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func newBufferLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(&Config{Level: level, Format: "json", Writer: &buf}, "test-svc")
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_JSONFields(t *testing.T) {
	l, buf := newBufferLogger("debug")
	l.WithComponent("apihelper.vk").Info("sent", Fields(FieldStatus, 200, FieldMethod, "users.get"))

	entry := decodeLine(t, buf)
	if entry["message"] != "sent" {
		t.Errorf("expected message 'sent', got %v", entry["message"])
	}
	if entry[FieldComponent] != "apihelper.vk" {
		t.Errorf("expected component apihelper.vk, got %v", entry[FieldComponent])
	}
	if entry[FieldMethod] != "users.get" {
		t.Errorf("expected method users.get, got %v", entry[FieldMethod])
	}
	if entry["service"] != "test-svc" {
		t.Errorf("expected service test-svc, got %v", entry["service"])
	}
}

func TestNew_LevelFilters(t *testing.T) {
	l, buf := newBufferLogger("warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newBufferLogger("loud")
	l.Debug("hidden")
	l.Info("visible")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected info level fallback, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger("info")
	l.WithError(errors.New("boom")).Error("failed")
	entry := decodeLine(t, buf)
	if entry[FieldError] != "boom" {
		t.Errorf("expected error boom, got %v", entry[FieldError])
	}
}

func TestWithContext_SpanIDs(t *testing.T) {
	l, buf := newBufferLogger("info")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.WithContext(ctx).Info("traced")
	entry := decodeLine(t, buf)
	if entry[FieldTraceID] != sc.TraceID().String() {
		t.Errorf("expected trace id %s, got %v", sc.TraceID(), entry[FieldTraceID])
	}
	if entry[FieldSpanID] != sc.SpanID().String() {
		t.Errorf("expected span id %s, got %v", sc.SpanID(), entry[FieldSpanID])
	}
}

func TestWithContext_NoSpan(t *testing.T) {
	l, _ := newBufferLogger("info")
	if l.WithContext(context.Background()) != l {
		t.Error("expected the same logger without an active span")
	}
}

func TestNop(t *testing.T) {
	Nop().WithComponent("x").Error("nothing happens")
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields: %v", m)
	}
	m = MergeWithDuration(nil, 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", m[FieldDuration])
	}
}

func TestGlobalLogger(t *testing.T) {
	l, buf := newBufferLogger("info")
	SetGlobalLogger(l)
	defer SetGlobalLogger(nil)
	WithComponent("global").Info("hello")
	if !strings.Contains(buf.String(), "global") {
		t.Errorf("expected global logger output, got %q", buf.String())
	}
}

func TestPackageLevelHelpers(t *testing.T) {
	l, buf := newBufferLogger("debug")
	SetGlobalLogger(l)
	defer SetGlobalLogger(nil)

	Debug("d")
	Info("i", Fields("k", "v"))
	Warn("w")
	Error("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d: %q", len(lines), buf.String())
	}
	for i, want := range []string{"debug", "info", "warn", "error"} {
		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if entry["level"] != want {
			t.Errorf("line %d: expected level %q, got %v", i, want, entry["level"])
		}
	}
}
