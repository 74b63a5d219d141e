package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	log.Info("cycle resolved", "identifier", "2001")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v, line: %s", err, buf.String())
	}
	if entry["msg"] != "cycle resolved" {
		t.Errorf("msg = %v, want %q", entry["msg"], "cycle resolved")
	}
	if entry["identifier"] != "2001" {
		t.Errorf("identifier = %v, want %q", entry["identifier"], "2001")
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "text")

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestParseLevel_UnknownDefaultsToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got.String() != "INFO" {
		t.Errorf("parseLevel(verbose) = %s, want INFO", got)
	}
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "info", "text")

	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("RequestID() = %q, want %q", got, "req-123")
	}

	FromContext(ctx, base).Info("tagged")
	if !strings.Contains(buf.String(), "request_id=req-123") {
		t.Errorf("log line missing request_id: %s", buf.String())
	}
}

func TestContextHelpers_UseDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "debug", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithRequestID(context.Background(), "req-456")
	Debug(ctx, "cycle length override", "weeks", 1)
	Warn(ctx, "health check failed")
	Error(ctx, "calendar request failed", errors.New("disk full"))

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "weeks=1",
		"level=WARN", "health check failed",
		"level=ERROR", `error="disk full"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "request_id=req-456"); n != 3 {
		t.Errorf("request_id tagged on %d lines, want 3:\n%s", n, out)
	}
}
