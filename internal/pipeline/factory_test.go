package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"learnpod/internal/logging"
	"learnpod/internal/services/llm"
	"learnpod/internal/stage"
	"learnpod/internal/testsupport"
)

func TestNarrationPacksWithoutCostOracle(t *testing.T) {
	pcm := base64.StdEncoding.EncodeToString(make([]byte, 4800))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"inlineData\":{\"mimeType\":\"audio/L16;codec=pcm;rate=24000\",\"data\":%q}}]}}]}\n\n", pcm)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Gemini.BaseURL = server.URL
	cfg.Gemini.RequestsPerMinute = 0
	cfg.Audio.FFmpegBinary = filepath.Join(testsupport.BaseDir(cfg), "missing-ffmpeg")

	var costCalls atomic.Int32
	cost := func(text string) int {
		costCalls.Add(1)
		return len(text)
	}
	logger := logging.NewNop()
	set := StagesFromConfig(cfg, llm.NewFromConfig(cfg, logger), cost, logger)

	dir := t.TempDir()
	script := testsupport.WriteText(t, filepath.Join(dir, "script.md"), "Speaker 1: こんにちは\nSpeaker 2: はい、始めましょう。\n")
	run := stage.NewRun("run-cost", "", dir)
	if err := run.Ledger.Record(stage.ArtifactScript, script); err != nil {
		t.Fatalf("record script: %v", err)
	}

	if err := set.Audio.Execute(context.Background(), run); err != nil {
		t.Fatalf("audio Execute: %v", err)
	}
	if _, ok := run.Ledger.Path(stage.ArtifactAudio); !ok {
		t.Fatal("expected audio artifact in ledger")
	}
	if got := costCalls.Load(); got != 0 {
		t.Fatalf("narration consulted the generation cost oracle %d times", got)
	}
}

func TestNewFromConfigDisablesMailWhenClientFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMail("user@example.com", "secret", "to@example.com"))
	cfg.Mail.Host = ""
	cfg.Mail.TimeoutSeconds = 0

	if notifier := notifierFromConfig(cfg, logging.NewNop()); notifier != nil {
		t.Fatalf("expected mail to be disabled, got %T", notifier)
	}

	orchestrator, closer, err := NewFromConfig(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer closer.Close()
	if orchestrator.notifier != nil {
		t.Fatalf("expected nil notifier, got %T", orchestrator.notifier)
	}
}
