package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("class", "pipelines")).Info(context.Background(), "batch done",
		Int("networks", 3), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec["msg"] != "batch done" {
		t.Errorf("msg = %v, want %q", rec["msg"], "batch done")
	}
	if rec["class"] != "pipelines" {
		t.Errorf("class = %v, want pipelines", rec["class"])
	}
	if rec["networks"] != float64(3) {
		t.Errorf("networks = %v, want 3", rec["networks"])
	}
	if rec["error"] != "boom" {
		t.Errorf("error = %v, want boom", rec["error"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestRunIDAttached(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Output: &buf})

	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatal("EnsureRunID returned empty id")
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id || RunIDFromContext(ctx2) != id {
		t.Errorf("EnsureRunID replaced existing id %q with %q", id, id2)
	}

	log.Info(ctx, "hello")
	if !strings.Contains(buf.String(), id) {
		t.Errorf("log line %q missing run id %q", buf.String(), id)
	}
}

func TestNoopLogger(t *testing.T) {
	log := Noop().With(String("k", "v"))
	log.Error(context.Background(), "dropped")
}
