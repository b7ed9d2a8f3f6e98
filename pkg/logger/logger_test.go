package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestInitWithOptions_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(FormatJSON, &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	_ = SetLevelString("info")

	Named("refresh").Info(context.Background(), "snapshot published",
		String("id", "abc"), Int("matches", 3), Bool("ok", true), Duration("took", time.Millisecond))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "snapshot published" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["component"] != "refresh" {
		t.Errorf("component = %v", rec["component"])
	}
	if rec["matches"] != float64(3) {
		t.Errorf("matches = %v", rec["matches"])
	}
	src, _ := rec["source"].(string)
	if !strings.Contains(src, "logger_test.go") {
		t.Errorf("source = %q, want the calling file", src)
	}
}

func TestInitWithOptions_UnknownFormat(t *testing.T) {
	if err := InitWithOptions("xml", &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(FormatText, &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	ctx := context.Background()
	Get().Info(ctx, "hidden")
	Get().Warn(ctx, "shown", Error(errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line was not filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "boom") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(FormatText, &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	Get().With(String("snapshot", "s1")).Info(context.Background(), "hello")
	if !strings.Contains(buf.String(), "snapshot=s1") {
		t.Errorf("bound field missing: %q", buf.String())
	}
}

func TestSetLevelString(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("SetLevelString(%q) = %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
	_ = SetLevelString("info")
}
