package explainer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"learnpod/internal/services"
	"learnpod/internal/stage"
	"learnpod/internal/testsupport"
)

func TestPostProcess(t *testing.T) {
	got := PostProcess("\n# 合意形成\n\n\n\n>引用文\n### 詳細\n#タグ\n")
	want := header + "## 合意形成\n\n> 引用文\n### 詳細\n#タグ"
	if got != want {
		t.Fatalf("unexpected output\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildWritesExplanation(t *testing.T) {
	dir := t.TempDir()
	scriptPath := testsupport.WriteText(t, filepath.Join(dir, "script.md"), "Speaker 1: Raft とは？\nSpeaker 2: 合意アルゴリズムです。")
	gen := &testsupport.FakeGenerator{Responses: []string{"# Raft\n\n解説本文"}}

	path, err := New(gen, Options{Language: "ja", Temperature: 0.5}, nil).Build(context.Background(), scriptPath, dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if filepath.Base(path) != FileName {
		t.Fatalf("unexpected path %s", path)
	}
	content := testsupport.ReadText(t, path)
	if !strings.HasPrefix(content, "# 詳細解説\n") || !strings.Contains(content, "## Raft\n\n解説本文") {
		t.Fatalf("unexpected explanation:\n%s", content)
	}

	reqs := gen.Requests()
	if len(reqs) != 1 || reqs[0].Temperature != 0.5 {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if !strings.Contains(reqs[0].Prompt, "Speaker 2: 合意アルゴリズムです。") {
		t.Fatal("script content missing from prompt")
	}
}

func TestBuildMissingScript(t *testing.T) {
	gen := &testsupport.FakeGenerator{Responses: []string{"x"}}
	_, err := New(gen, Options{}, nil).Build(context.Background(), filepath.Join(t.TempDir(), "missing.md"), t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if gen.Calls() != 0 {
		t.Fatal("generator should not be called without a script")
	}
}

func TestExecuteRequiresScriptArtifact(t *testing.T) {
	dir := t.TempDir()
	run := stage.NewRun("id", "", dir)
	builder := New(&testsupport.FakeGenerator{Responses: []string{"本文"}}, Options{}, nil)
	if err := builder.Prepare(context.Background(), run); err == nil {
		t.Fatal("expected prepare to fail without script")
	}

	scriptPath := testsupport.WriteText(t, filepath.Join(dir, "script.md"), "Speaker 1: はい")
	_ = run.Ledger.Record(stage.ArtifactScript, scriptPath)
	if err := builder.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := run.Ledger.Path(stage.ArtifactExplanation); !ok {
		t.Fatal("explanation not recorded")
	}
}
