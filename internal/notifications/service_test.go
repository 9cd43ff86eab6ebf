package notifications_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/go-mail"

	"learnpod/internal/logging"
	"learnpod/internal/notifications"
	"learnpod/internal/stage"
	"learnpod/internal/testsupport"
)

type fakeSender struct {
	messages []*mail.Msg
	err      error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.messages = append(f.messages, messages...)
	return f.err
}

func samplePackage(t *testing.T) notifications.Package {
	t.Helper()
	dir := t.TempDir()
	return notifications.Package{
		Title:     "光合成の基礎",
		CreatedAt: time.Date(2026, 10, 15, 9, 5, 0, 0, time.UTC),
		Attachments: []notifications.Attachment{
			{Kind: stage.ArtifactAudio, Path: testsupport.WriteText(t, filepath.Join(dir, "podcast.mp3"), "mp3")},
			{Kind: stage.ArtifactScript, Path: testsupport.WriteText(t, filepath.Join(dir, "script.md"), "Speaker 1: やあ")},
			{Kind: stage.ArtifactQuestions, Path: testsupport.WriteText(t, filepath.Join(dir, "questions.md"), "**Q1:** ?")},
		},
		Stats: notifications.Stats{
			AudioDuration: 754 * time.Second,
			ScriptChars:   1200,
			Questions:     20,
		},
	}
}

func TestNewServiceReturnsNoopWhenMailIncomplete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc, err := notifications.NewService(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if svc.Enabled() {
		t.Fatalf("expected disabled service without credentials")
	}
	if err := svc.SendPackage(context.Background(), notifications.Package{}); err != nil {
		t.Fatalf("noop send returned %v", err)
	}
}

func TestNewServiceEnabledWithCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMail("me@example.com", "app-password", "you@example.com"))
	svc, err := notifications.NewService(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if !svc.Enabled() {
		t.Fatalf("expected enabled service")
	}
}

func TestSubject(t *testing.T) {
	if got := notifications.Subject("  光合成の基礎 "); got != "LearnPod: 光合成の基礎" {
		t.Fatalf("subject = %q", got)
	}
	if got := notifications.Subject(""); got != "LearnPod: 学習パッケージ" {
		t.Fatalf("empty subject = %q", got)
	}
}

func TestBodyListsAttachmentsWithStats(t *testing.T) {
	body := notifications.Body(samplePackage(t))
	for _, want := range []string{
		"タイトル: 光合成の基礎",
		"生成日時: 2026年10月15日 09:05",
		"- podcast.mp3 (音声 12:34)",
		"- script.md (台本 1200文字)",
		"- questions.md (Q&A 20問)",
		"使い方:",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestSendPackageAttachesFiles(t *testing.T) {
	sender := &fakeSender{}
	svc := notifications.NewMailService(sender, "me@example.com", "you@example.com", logging.NewNop())
	if err := svc.SendPackage(context.Background(), samplePackage(t)); err != nil {
		t.Fatalf("SendPackage: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.messages))
	}
	if got := len(sender.messages[0].GetAttachments()); got != 3 {
		t.Fatalf("expected 3 attachments, got %d", got)
	}
}

func TestSendPackageSurfacesSenderError(t *testing.T) {
	sender := &fakeSender{err: errors.New("535 authentication failed")}
	svc := notifications.NewMailService(sender, "me@example.com", "you@example.com", logging.NewNop())
	err := svc.SendPackage(context.Background(), samplePackage(t))
	if err == nil || !strings.Contains(err.Error(), "authentication failed") {
		t.Fatalf("expected sender error, got %v", err)
	}
}

func TestSendPackageRequiresRecipient(t *testing.T) {
	svc := notifications.NewMailService(&fakeSender{}, "me@example.com", " ", logging.NewNop())
	if err := svc.SendPackage(context.Background(), samplePackage(t)); !errors.Is(err, notifications.ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}
