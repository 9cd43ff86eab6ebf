package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"learnpod/internal/config"
	"learnpod/internal/logging"
	"learnpod/internal/media/ffprobe"
	"learnpod/internal/stage"
)

const subjectPrefix = "LearnPod: "

// ErrNoRecipient is returned when a package is sent without a destination address.
var ErrNoRecipient = errors.New("mail recipient not configured")

// Attachment is one produced file.
type Attachment struct {
	Kind stage.Artifact
	Path string
}

// Stats summarizes the package contents for the message body.
type Stats struct {
	AudioDuration    time.Duration
	ScriptChars      int
	ExplanationChars int
	Questions        int
	Flashcards       int
}

// Package is everything one delivery needs.
type Package struct {
	Title       string
	CreatedAt   time.Time
	Attachments []Attachment
	Stats       Stats
}

// Service defines the delivery surface exposed to the pipeline.
type Service interface {
	Enabled() bool
	SendPackage(ctx context.Context, pkg Package) error
}

// Sender transmits prepared messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// NewService builds an SMTP-backed service when mail is configured, and a
// no-op service otherwise.
func NewService(cfg *config.Config, logger *slog.Logger) (Service, error) {
	if !cfg.MailConfigured() {
		return noopService{}, nil
	}
	client, err := mail.NewClient(cfg.Mail.Host,
		mail.WithPort(cfg.Mail.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Mail.Username),
		mail.WithPassword(cfg.Mail.Password),
		mail.WithTimeout(time.Duration(cfg.Mail.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return NewMailService(client, cfg.Mail.Username, cfg.Mail.To, logger), nil
}

// NewMailService wraps an arbitrary sender.
func NewMailService(sender Sender, from, to string, logger *slog.Logger) Service {
	return &mailService{
		sender: sender,
		from:   strings.TrimSpace(from),
		to:     strings.TrimSpace(to),
		logger: logging.NewComponentLogger(logger, "notifications"),
	}
}

type mailService struct {
	sender Sender
	from   string
	to     string
	logger *slog.Logger
}

func (s *mailService) Enabled() bool { return s != nil && s.sender != nil }

func (s *mailService) SendPackage(ctx context.Context, pkg Package) error {
	if s.to == "" {
		return ErrNoRecipient
	}
	msg, err := BuildMessage(s.from, s.to, pkg)
	if err != nil {
		return err
	}
	if err := s.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	logging.WithContext(ctx, s.logger).Info("package mailed",
		logging.String("to", s.to),
		logging.Int("attachments", len(pkg.Attachments)),
	)
	return nil
}

// BuildMessage assembles the message for pkg.
func BuildMessage(from, to string, pkg Package) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set sender %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", to, err)
	}
	msg.Subject(Subject(pkg.Title))
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, Body(pkg))
	for _, attachment := range pkg.Attachments {
		msg.AttachFile(attachment.Path)
	}
	return msg, nil
}

// Subject returns the message subject for a document title.
func Subject(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "学習パッケージ"
	}
	return subjectPrefix + title
}

// Body renders the plain-text message body.
func Body(pkg Package) string {
	created := pkg.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var b strings.Builder
	b.WriteString("LearnPod 学習パッケージが完成しました。\n\n")
	fmt.Fprintf(&b, "タイトル: %s\n", strings.TrimSpace(pkg.Title))
	fmt.Fprintf(&b, "生成日時: %s\n\n", created.Format("2006年01月02日 15:04"))

	b.WriteString("添付ファイル:\n")
	if len(pkg.Attachments) == 0 {
		b.WriteString("- (なし)\n")
	}
	for _, attachment := range pkg.Attachments {
		fmt.Fprintf(&b, "- %s", filepath.Base(attachment.Path))
		if detail := describe(attachment.Kind, pkg.Stats); detail != "" {
			fmt.Fprintf(&b, " (%s)", detail)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n使い方:\n")
	b.WriteString("1. ポッドキャストを聞いて全体像をつかむ\n")
	b.WriteString("2. 台本と詳細解説で理解を深める\n")
	b.WriteString("3. Q&Aとフラッシュカードで復習する\n")
	return b.String()
}

func describe(kind stage.Artifact, stats Stats) string {
	switch kind {
	case stage.ArtifactAudio:
		if stats.AudioDuration > 0 {
			return "音声 " + ffprobe.FormatClock(stats.AudioDuration)
		}
		return "音声"
	case stage.ArtifactScript:
		return fmt.Sprintf("台本 %d文字", stats.ScriptChars)
	case stage.ArtifactExplanation:
		return fmt.Sprintf("詳細解説 %d文字", stats.ExplanationChars)
	case stage.ArtifactQuestions:
		return fmt.Sprintf("Q&A %d問", stats.Questions)
	case stage.ArtifactFlashcards:
		return fmt.Sprintf("フラッシュカード %d枚", stats.Flashcards)
	default:
		return ""
	}
}

type noopService struct{}

func (noopService) Enabled() bool                            { return false }
func (noopService) SendPackage(context.Context, Package) error { return nil }
