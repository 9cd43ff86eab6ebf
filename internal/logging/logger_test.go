package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"learnpod/internal/config"
	"learnpod/internal/services"
)

func TestPrettyHandlerFormatsComponentAndStage(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))
	logger = NewComponentLogger(logger, "pipeline")
	logger.Info("stage completed", String(FieldStage, "script"), Int("chunks", 3), String("path", "out dir/script.md"))

	line := buf.String()
	if !strings.Contains(line, "INFO  pipeline/script: stage completed") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	if !strings.Contains(line, "chunks=3") {
		t.Fatalf("expected chunks attr: %q", line)
	}
	if !strings.Contains(line, `path="out dir/script.md"`) {
		t.Fatalf("expected quoted path: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no source location without verbose: %q", line)
	}
}

func TestPrettyHandlerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN  shown") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg, true)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug visible when verbose")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "learnpod.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "debug visible when verbose") {
		t.Fatalf("expected debug record in log file, got %q", data)
	}
}

func TestNewRunLoggerStampsCorrelationID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "pipeline.log")
	var console bytes.Buffer
	base := slog.New(newPrettyHandler(&console, new(slog.LevelVar), false))

	logger, closer, err := NewRunLogger(base, path, "run-123")
	if err != nil {
		t.Fatalf("NewRunLogger: %v", err)
	}
	logger.Info("stage started", String(FieldStage, "script"))
	logger.Debug("file only")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records in run log, got %d: %q", len(lines), data)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[FieldCorrelationID] != "run-123" {
		t.Fatalf("expected correlation id, got %v", record[FieldCorrelationID])
	}
	if record["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", record["level"])
	}
	if strings.Contains(console.String(), "file only") {
		t.Fatal("console logger should not receive debug records at info level")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo, false))
	ctx := services.WithRunID(context.Background(), "abc")
	ctx = services.WithStage(ctx, "audio")
	ctx = services.WithChunk(ctx, 2, 5)

	WithContext(ctx, logger).Info("chunk synthesized")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[FieldCorrelationID] != "abc" || record[FieldStage] != "audio" {
		t.Fatalf("missing context fields: %v", record)
	}
	if record[FieldChunkIndex] != float64(2) || record[FieldChunkCount] != float64(5) {
		t.Fatalf("missing chunk fields: %v", record)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo, false))
	WarnWithContext(logger, "transcode fell back", "transcode_fallback", String(FieldImpact, "wav kept"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[FieldEventType] != "transcode_fallback" {
		t.Fatalf("unexpected event type: %v", record[FieldEventType])
	}
	if record[FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
	if record[FieldImpact] != "wav kept" {
		t.Fatalf("expected caller impact to win, got %v", record[FieldImpact])
	}
}
