// Package explainer writes explanation.md, a long-form companion that
// expands the concepts the dialogue script touches on.
package explainer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"learnpod/internal/config"
	"learnpod/internal/fileutil"
	"learnpod/internal/logging"
	"learnpod/internal/prompts"
	"learnpod/internal/services"
	"learnpod/internal/services/llm"
	"learnpod/internal/stage"
	"learnpod/internal/textutil"
)

// FileName is the artifact written into the run directory.
const FileName = "explanation.md"

const header = "# 詳細解説\n\n" +
	"このドキュメントは、ポッドキャスト台本の内容をより深く理解するための詳細解説です。\n" +
	"台本で触れられた概念や理論について、背景・根拠・実用例を含めて詳しく説明します。\n\n" +
	"---\n\n"

var (
	topHeading = regexp.MustCompile(`(?m)^# `)
	blockquote = regexp.MustCompile(`(?m)^>[ \t]*(.+)$`)
)

// Generator issues a single text generation call.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Options controls explainer generation.
type Options struct {
	Language    string
	Temperature float64
	MaxTokens   int
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Language:    cfg.Generation.Language,
		Temperature: cfg.Generation.ExplainerTemperature,
		MaxTokens:   cfg.Generation.MaxOutputTokens,
	}
}

// Builder generates explanation.md from a finished script. It implements stage.Handler.
type Builder struct {
	client Generator
	opts   Options
	logger *slog.Logger
}

// New constructs a Builder.
func New(client Generator, opts Options, logger *slog.Logger) *Builder {
	b := &Builder{client: client, opts: opts}
	b.SetLogger(logger)
	return b
}

// SetLogger swaps the builder's logger.
func (b *Builder) SetLogger(logger *slog.Logger) {
	b.logger = logging.NewComponentLogger(logger, "explainer")
}

// Prepare validates the run already produced a script.
func (b *Builder) Prepare(_ context.Context, run *stage.Run) error {
	_, err := run.RequireArtifact(stage.NameExplainer, stage.ArtifactScript)
	return err
}

// Execute writes the explanation and records it in the ledger.
func (b *Builder) Execute(ctx context.Context, run *stage.Run) error {
	scriptPath, err := run.RequireArtifact(stage.NameExplainer, stage.ArtifactScript)
	if err != nil {
		return err
	}
	path, err := b.Build(ctx, scriptPath, run.OutputDir)
	if err != nil {
		return err
	}
	return run.Ledger.Record(stage.ArtifactExplanation, path)
}

// HealthCheck reports whether a generation client is configured.
func (b *Builder) HealthCheck(context.Context) stage.Health {
	if b.client == nil {
		return stage.Unhealthy(stage.NameExplainer, "text generation client not configured")
	}
	return stage.Healthy(stage.NameExplainer)
}

// Build reads the script at scriptPath and writes the explanation under outputDir.
func (b *Builder) Build(ctx context.Context, scriptPath, outputDir string) (string, error) {
	if b.client == nil {
		return "", services.Wrap(services.ErrConfiguration, stage.NameExplainer, "build", "Text generation client not configured", nil)
	}
	raw, err := os.ReadFile(scriptPath)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, stage.NameExplainer, "read script", scriptPath, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, stage.NameExplainer, "create output dir", outputDir, err)
	}

	logger := logging.WithContext(ctx, b.logger)
	logger.Info("explainer generation started", logging.String("script", scriptPath))

	prompt, err := prompts.Explainer(prompts.ExplainerInput{Script: string(raw), Language: b.opts.Language})
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stage.NameExplainer, "render prompt", "", err)
	}
	generated, err := b.client.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: b.opts.Temperature,
		MaxTokens:   b.opts.MaxTokens,
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, stage.NameExplainer, "generate", "", err)
	}

	text := PostProcess(generated)
	path := filepath.Join(outputDir, FileName)
	if err := fileutil.WriteFileAtomic(path, []byte(text)); err != nil {
		return "", services.Wrap(services.ErrConfiguration, stage.NameExplainer, "write", path, err)
	}
	logger.Info("explainer generation completed",
		logging.String("path", path),
		logging.Int("characters", textutil.CountNonSpace(text)),
	)
	return path, nil
}

// PostProcess prefixes the fixed header, demotes top-level headings so they
// nest under it, tidies blockquotes, and collapses blank-line runs.
func PostProcess(generated string) string {
	body := strings.TrimSpace(generated)
	body = topHeading.ReplaceAllString(body, "## ")
	body = blockquote.ReplaceAllString(body, "> $1")
	body = textutil.CollapseBlankLines(body)
	return header + body
}
