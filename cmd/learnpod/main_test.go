package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GMAIL_USER", "")
	t.Setenv("GMAIL_PASSWORD", "")
	t.Setenv("GMAIL_TO", "")

	outputDir := filepath.Join(base, "outputs")
	configPath := filepath.Join(homeDir, ".config", "learnpod", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[audio]
ffmpeg_binary = %q
ffprobe_binary = %q
`, outputDir, filepath.Join(base, "logs"), filepath.Join(base, "missing-ffmpeg"), filepath.Join(base, "missing-ffprobe"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, outputDir: outputDir}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, out)
	}
}

func TestIngestCommandPrintsStructure(t *testing.T) {
	env := setupCLITestEnv(t)
	doc := writeDocument(t, env.baseDir, "notes.md", `---
title: 光合成の基礎
author: 山田
---
# 光合成

植物は光を使う。

## 明反応

水を分解する。
`)

	out, _, err := runCLI(t, []string{"ingest", doc}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, "Title:      光合成の基礎")
	requireContains(t, out, "Sections:   2")
	requireContains(t, out, "author: 山田")
	requireContains(t, out, "明反応")
}

func TestIngestCommandRejectsNonMarkdown(t *testing.T) {
	env := setupCLITestEnv(t)
	doc := writeDocument(t, env.baseDir, "notes.txt", "# Title\n")

	_, _, err := runCLI(t, []string{"ingest", doc}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not a Markdown file") {
		t.Fatalf("expected format error, got %v", err)
	}
	if !markedError(err) {
		t.Fatalf("expected ingest error to carry a marker: %v", err)
	}
}

func TestGeneratingCommandsRequireAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	doc := writeDocument(t, env.baseDir, "notes.md", "# Title\n\nbody\n")

	for _, name := range []string{"run", "script", "explain", "questions", "audio"} {
		_, _, err := runCLI(t, []string{name, doc}, env.configPath)
		if err == nil || !strings.Contains(err.Error(), "gemini.api_key is required") {
			t.Fatalf("%s: expected missing key error, got %v", name, err)
		}
	}
	if entries, err := os.ReadDir(env.outputDir); err == nil && len(entries) > 0 {
		t.Fatalf("expected no run directories, found %d", len(entries))
	}
}

func TestGeneratingCommandsRejectBadOverrides(t *testing.T) {
	env := setupCLITestEnv(t)
	doc := writeDocument(t, env.baseDir, "notes.md", "# Title\n\nbody\n")

	_, _, err := runCLI(t, []string{"script", doc, "--speakers", "Speaker 1"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--speakers") {
		t.Fatalf("expected speakers parse error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"run", doc, "--length=-3"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--length") {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestRunCommandRequiresDocumentArgument(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err == nil {
		t.Fatal("expected argument error")
	}
}
