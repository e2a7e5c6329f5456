package zaplogger

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := Wrap(zap.New(core))

	base.With(observability.F("request_id", "r-1")).Info("http_access",
		observability.F("status", 201),
		observability.F("error", errors.New("boom")),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["request_id"] != "r-1" {
		t.Fatalf("request_id = %v, want r-1", ctx["request_id"])
	}
	if ctx["error"] != "boom" {
		t.Fatalf("error = %v, want boom", ctx["error"])
	}
	if entries[0].Message != "http_access" {
		t.Fatalf("msg = %q", entries[0].Message)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Options{File: dir + "/logs/app.log", Fixed: []observability.Field{observability.F("service", "lessonshop")}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hello")
	_ = l.Sync()
}
