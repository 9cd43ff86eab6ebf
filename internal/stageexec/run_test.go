package stageexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"learnpod/internal/services"
	"learnpod/internal/stage"
)

type fakeHandler struct {
	prepareErr error
	executeErr error
	prepared   bool
	executed   bool
	logger     *slog.Logger
}

func (f *fakeHandler) Prepare(context.Context, *stage.Run) error {
	f.prepared = true
	return f.prepareErr
}

func (f *fakeHandler) Execute(_ context.Context, run *stage.Run) error {
	f.executed = true
	if f.executeErr != nil {
		return f.executeErr
	}
	return run.Ledger.Record(stage.ArtifactScript, "/out/script.md")
}

func (f *fakeHandler) HealthCheck(context.Context) stage.Health { return stage.Healthy("fake") }

func (f *fakeHandler) SetLogger(logger *slog.Logger) { f.logger = logger }

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRunExecutesStage(t *testing.T) {
	var buf bytes.Buffer
	handler := &fakeHandler{}
	run := stage.NewRun("run-1", "in.md", t.TempDir())

	err := Run(context.Background(), Options{Logger: newLogger(&buf), Handler: handler, StageName: stage.NameScript, Run: run})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !handler.prepared || !handler.executed {
		t.Fatal("expected prepare and execute to run")
	}
	if handler.logger == nil {
		t.Fatal("expected stage logger to be injected")
	}
	out := buf.String()
	for _, want := range []string{`"event_type":"stage_start"`, `"event_type":"stage_complete"`, `"stage":"script"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %s:\n%s", want, out)
		}
	}
}

func TestRunStopsAfterPrepareFailure(t *testing.T) {
	var buf bytes.Buffer
	prepErr := services.Wrap(services.ErrValidation, "script", "prepare", "no document", nil)
	handler := &fakeHandler{prepareErr: prepErr}

	err := Run(context.Background(), Options{Logger: newLogger(&buf), Handler: handler, StageName: stage.NameScript, Run: stage.NewRun("id", "", "")})
	if !errors.Is(err, prepErr) {
		t.Fatalf("expected prepare error, got %v", err)
	}
	if handler.executed {
		t.Fatal("execute should not run after prepare failure")
	}
	if !strings.Contains(buf.String(), `"event_type":"stage_failure"`) {
		t.Fatalf("expected failure log:\n%s", buf.String())
	}
}

func TestRunReturnsExecuteError(t *testing.T) {
	execErr := errors.New("boom")
	err := Run(context.Background(), Options{Handler: &fakeHandler{executeErr: execErr}, StageName: "x", Run: stage.NewRun("id", "", "")})
	if !errors.Is(err, execErr) {
		t.Fatalf("expected execute error, got %v", err)
	}
}

func TestRunRequiresHandlerAndRun(t *testing.T) {
	if err := Run(context.Background(), Options{StageName: "x", Run: stage.NewRun("", "", "")}); err == nil {
		t.Fatal("expected error without handler")
	}
	if err := Run(context.Background(), Options{StageName: "x", Handler: &fakeHandler{}}); err == nil {
		t.Fatal("expected error without run")
	}
}
