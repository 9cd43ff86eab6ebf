package scriptgen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"learnpod/internal/chunker"
	"learnpod/internal/config"
	"learnpod/internal/document"
	"learnpod/internal/fileutil"
	"learnpod/internal/logging"
	"learnpod/internal/prompts"
	"learnpod/internal/script"
	"learnpod/internal/services"
	"learnpod/internal/services/llm"
	"learnpod/internal/stage"
)

// FileName is the artifact written into the run directory.
const FileName = "script.md"

// Generator issues a single text generation call.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Options controls script generation.
type Options struct {
	Language    string
	Minutes     int
	Speakers    map[string]string
	Budget      int
	Temperature float64
	MaxTokens   int
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Language:    cfg.Generation.Language,
		Minutes:     cfg.Generation.TargetMinutes,
		Speakers:    cfg.Speakers.Names,
		Budget:      cfg.ScriptInputLimit(),
		Temperature: cfg.Generation.ScriptTemperature,
		MaxTokens:   cfg.Generation.MaxOutputTokens,
	}
}

// Builder generates script.md. It implements stage.Handler.
type Builder struct {
	client Generator
	cost   chunker.CostFunc
	opts   Options
	logger *slog.Logger
}

// New constructs a Builder. A nil cost falls back to the estimate oracle.
func New(client Generator, cost chunker.CostFunc, opts Options, logger *slog.Logger) *Builder {
	b := &Builder{client: client, cost: cost, opts: opts}
	if b.cost == nil {
		b.cost = chunker.Estimate
	}
	b.SetLogger(logger)
	return b
}

// SetLogger swaps the builder's logger.
func (b *Builder) SetLogger(logger *slog.Logger) {
	b.logger = logging.NewComponentLogger(logger, "scriptgen")
}

// Prepare validates the run carries a document.
func (b *Builder) Prepare(_ context.Context, run *stage.Run) error {
	_, err := run.RequireDocument(stage.NameScript)
	return err
}

// Execute writes the script and records it in the ledger.
func (b *Builder) Execute(ctx context.Context, run *stage.Run) error {
	doc, err := run.RequireDocument(stage.NameScript)
	if err != nil {
		return err
	}
	path, err := b.Build(ctx, doc, run.OutputDir)
	if err != nil {
		return err
	}
	return run.Ledger.Record(stage.ArtifactScript, path)
}

// HealthCheck reports whether a generation client is configured.
func (b *Builder) HealthCheck(context.Context) stage.Health {
	if b.client == nil {
		return stage.Unhealthy(stage.NameScript, "text generation client not configured")
	}
	return stage.Healthy(stage.NameScript)
}

// Build generates the script for doc and writes it under outputDir.
func (b *Builder) Build(ctx context.Context, doc *document.Document, outputDir string) (string, error) {
	if b.client == nil {
		return "", services.Wrap(services.ErrConfiguration, stage.NameScript, "build", "Text generation client not configured", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, stage.NameScript, "create output dir", outputDir, err)
	}
	content := doc.Body()
	if strings.TrimSpace(content) == "" {
		return "", services.Wrap(services.ErrValidation, stage.NameScript, "build", "Document has no content", nil)
	}

	logger := logging.WithContext(ctx, b.logger)
	logger.Info("script generation started", logging.String("title", doc.Title))

	chunks := chunker.SplitByBudget(content, b.opts.Budget, b.cost)
	minutes := b.opts.Minutes
	if len(chunks) > 1 {
		minutes = PerChunkMinutes(b.opts.Minutes, len(chunks))
		logger.Info("document split for generation",
			logging.Int(logging.FieldChunkCount, len(chunks)),
			logging.Int("budget", b.opts.Budget),
			logging.Int("minutes_per_chunk", minutes),
		)
	}

	speakers := prompts.SpeakerList(b.opts.Speakers)
	fragments := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		in := prompts.ScriptInput{
			Content:  chunk,
			Language: b.opts.Language,
			Minutes:  minutes,
			Speakers: speakers,
		}
		chunkCtx := ctx
		if len(chunks) > 1 {
			in.Part = &prompts.Part{Index: i + 1, Count: len(chunks)}
			chunkCtx = services.WithChunk(ctx, i+1, len(chunks))
			logging.WithContext(chunkCtx, b.logger).Info("generating script chunk")
		}
		prompt, err := prompts.Script(in)
		if err != nil {
			return "", services.Wrap(services.ErrValidation, stage.NameScript, "render prompt", "", err)
		}
		fragment, err := b.client.Generate(chunkCtx, llm.Request{
			Prompt:      prompt,
			Temperature: b.opts.Temperature,
			MaxTokens:   b.opts.MaxTokens,
		})
		if err != nil {
			return "", services.Wrap(services.ErrTransient, stage.NameScript, "generate",
				fmt.Sprintf("chunk %d/%d", i+1, len(chunks)), err)
		}
		fragments = append(fragments, fragment)
	}

	text := script.Normalize(script.Merge(fragments, logger))
	if text == "" {
		return "", services.Wrap(services.ErrValidation, stage.NameScript, "build", "Generated script is empty", nil)
	}

	path := filepath.Join(outputDir, FileName)
	if err := fileutil.WriteFileAtomic(path, []byte(text)); err != nil {
		return "", services.Wrap(services.ErrConfiguration, stage.NameScript, "write", path, err)
	}
	logger.Info("script generation completed",
		logging.String("path", path),
		logging.Int("turns", script.CountTurns(text)),
		logging.Int("speakers", len(script.Speakers(text))),
	)
	return path, nil
}

// PerChunkMinutes divides the target length across chunks, never below one minute.
func PerChunkMinutes(total, chunks int) int {
	if chunks <= 1 {
		return total
	}
	return max(1, total/chunks)
}
