package logger

import (
	"bytes"
	"context"
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

func TestLoggerFieldsAndNamed(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Named("matching").With(String("run_id", "r-1")).Info(ctx, "tick finished",
		Int("pairs", 2),
		Int64("appointment_id", 42),
		Bool("forced", true),
		Duration("took", 15*time.Millisecond),
		Error(errors.New("boom")),
	)

	got := buf.String()
	for _, want := range []string{"component=matching", "run_id=r-1", "pairs=2", "appointment_id=42", "forced=true", "error=boom", "source="} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() { _ = SetFormat("text") }()

	if err := SetFormat("json"); err != nil {
		t.Fatalf("set format: %v", err)
	}
	Get().Info(context.Background(), "hello", String("k", "v"))
	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("expected json output, got %q", buf.String())
	}

	if err := SetFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLevelString("info") //nolint:errcheck

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be suppressed at warn, got %q", buf.String())
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
