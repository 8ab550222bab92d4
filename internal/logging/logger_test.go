package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"labnwb/internal/services"
)

func newBufferedConsole(buf *bytes.Buffer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	return slog.New(newConsoleHandler(buf, lvl))
}

func TestConsoleHandlerRendersComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(newBufferedConsole(&buf), "converter")

	logger.Info("session converted", String("output", "/tmp/out.nwb"), Int("epochs", 4))

	line := buf.String()
	if !strings.Contains(line, " INFO converter: session converted") {
		t.Fatalf("line = %q", line)
	}
	if !strings.Contains(line, "output=/tmp/out.nwb") || !strings.Contains(line, "epochs=4") {
		t.Fatalf("line = %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedConsole(&buf)

	logger.Warn("conversion warning", String("detail", "epoch 3 has gaps"))

	if !strings.Contains(buf.String(), `detail="epoch 3 has gaps"`) {
		t.Fatalf("line = %q", buf.String())
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedConsole(&buf).WithGroup("dio")

	logger.Info("events", Int("count", 3))

	if !strings.Contains(buf.String(), "dio.count=3") {
		t.Fatalf("line = %q", buf.String())
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("out = %q", out)
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Info("converted", String(FieldSession, "SL18_D19"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record["msg"] != "converted" || record["level"] != "info" {
		t.Fatalf("record = %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("record has no ts field: %v", record)
	}
	if record[FieldSession] != "SL18_D19" {
		t.Fatalf("record = %v", record)
	}
}

func TestWithContextAddsSessionFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedConsole(&buf)

	ctx := services.WithSession(context.Background(), "SL18_D19")
	ctx = services.WithInterface(ctx, "dio")
	ctx = services.WithRunID(ctx, "run-1")

	WithContext(ctx, logger).Info("working")

	line := buf.String()
	for _, want := range []string{"session=SL18_D19", "interface=dio", "run_id=run-1"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger must report disabled")
	}
	logger.Error("ignored", Error(io.EOF))
}
