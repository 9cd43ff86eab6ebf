package quiz

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
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

// Artifact file names written into the run directory.
const (
	QuestionsFileName  = "questions.md"
	FlashcardsFileName = "flashcards.yaml"
)

const header = "# Q&Aセット\n\n" +
	"このドキュメントは、ポッドキャスト内容の理解度を確認するためのQ&Aセットです。\n" +
	"各問題には回答が付いているので、自己採点に活用してください。\n\n" +
	"---\n\n"

// Generator issues a single text generation call.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Options controls Q&A and flashcard generation.
type Options struct {
	Language             string
	Total                int
	Ratios               [3]float64
	Temperature          float64
	FlashcardTemperature float64
	MaxTokens            int
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Language:             cfg.Generation.Language,
		Total:                cfg.Questions.Total,
		Ratios:               cfg.QuestionRatios(),
		Temperature:          cfg.Generation.QuestionsTemperature,
		FlashcardTemperature: cfg.Generation.FlashcardTemperature,
		MaxTokens:            cfg.Generation.MaxOutputTokens,
	}
}

// Result describes the files one Build produced.
type Result struct {
	QuestionsPath  string
	FlashcardsPath string
	Questions      int
	Flashcards     int
	UsedFallback   bool
}

// Builder generates questions.md and flashcards.yaml. It implements stage.Handler.
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
	b.logger = logging.NewComponentLogger(logger, "quiz")
}

// Prepare validates the run already produced a script.
func (b *Builder) Prepare(_ context.Context, run *stage.Run) error {
	_, err := run.RequireArtifact(stage.NameQuestions, stage.ArtifactScript)
	return err
}

// Execute writes both artifacts and records them in the ledger.
func (b *Builder) Execute(ctx context.Context, run *stage.Run) error {
	scriptPath, err := run.RequireArtifact(stage.NameQuestions, stage.ArtifactScript)
	if err != nil {
		return err
	}
	result, err := b.Build(ctx, scriptPath, run.OutputDir)
	if err != nil {
		return err
	}
	if err := run.Ledger.Record(stage.ArtifactQuestions, result.QuestionsPath); err != nil {
		return err
	}
	if result.FlashcardsPath != "" {
		return run.Ledger.Record(stage.ArtifactFlashcards, result.FlashcardsPath)
	}
	return nil
}

// HealthCheck reports whether a generation client is configured.
func (b *Builder) HealthCheck(context.Context) stage.Health {
	if b.client == nil {
		return stage.Unhealthy(stage.NameQuestions, "text generation client not configured")
	}
	return stage.Healthy(stage.NameQuestions)
}

// Build generates the Q&A set from the script at scriptPath, then the
// flashcard deck from its keyword section.
func (b *Builder) Build(ctx context.Context, scriptPath, outputDir string) (Result, error) {
	if b.client == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage.NameQuestions, "build", "Text generation client not configured", nil)
	}
	raw, err := os.ReadFile(scriptPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrNotFound, stage.NameQuestions, "read script", scriptPath, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage.NameQuestions, "create output dir", outputDir, err)
	}

	logger := logging.WithContext(ctx, b.logger)
	keyword, why, open := prompts.QuestionCounts(b.opts.Total, b.opts.Ratios)
	logger.Info("question generation started",
		logging.Int("total", b.opts.Total),
		logging.Int("keyword", keyword),
		logging.Int("why", why),
		logging.Int("open", open),
	)

	prompt, err := prompts.Questions(prompts.QuestionsInput{
		Content:  string(raw),
		Language: b.opts.Language,
		Total:    b.opts.Total,
		Ratios:   b.opts.Ratios,
	})
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, stage.NameQuestions, "render prompt", "", err)
	}
	generated, err := b.client.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: b.opts.Temperature,
		MaxTokens:   b.opts.MaxTokens,
	})
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, stage.NameQuestions, "generate", "", err)
	}

	qa := PostProcess(generated)
	result := Result{
		QuestionsPath: filepath.Join(outputDir, QuestionsFileName),
		Questions:     CountQuestions(qa),
	}
	if err := fileutil.WriteFileAtomic(result.QuestionsPath, []byte(qa)); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage.NameQuestions, "write", result.QuestionsPath, err)
	}
	logger.Info("questions written",
		logging.String("path", result.QuestionsPath),
		logging.Int("questions", result.Questions),
	)

	section := KeywordSection(qa)
	if section == "" {
		logging.WarnWithContext(logger, "keyword section missing; skipping flashcards", "flashcards_skipped",
			logging.String(logging.FieldErrorHint, "the generated Q&A has no \""+KeywordHeading+"\" heading"),
			logging.String(logging.FieldImpact, "flashcards.yaml is not produced"),
		)
		return result, nil
	}

	deckYAML, fallback, err := b.deck(ctx, logger, section)
	if err != nil {
		return Result{}, err
	}
	if deckYAML == "" {
		return result, nil
	}
	result.FlashcardsPath = filepath.Join(outputDir, FlashcardsFileName)
	if err := fileutil.WriteFileAtomic(result.FlashcardsPath, []byte(deckYAML)); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage.NameQuestions, "write", result.FlashcardsPath, err)
	}
	deck, _ := ParseDeck(deckYAML)
	result.Flashcards = len(deck.Flashcards)
	result.UsedFallback = fallback
	logger.Info("flashcards written",
		logging.String("path", result.FlashcardsPath),
		logging.Int("flashcards", result.Flashcards),
		logging.Bool("fallback", fallback),
	)
	return result, nil
}

// deck returns the flashcard YAML to write and whether it came from the
// local fallback. An empty string means no deck could be built. A failed
// generation call is returned as an error; only output that does not
// validate falls back to local extraction.
func (b *Builder) deck(ctx context.Context, logger *slog.Logger, section string) (string, bool, error) {
	reason := ""
	prompt, err := prompts.Flashcards(section)
	if err != nil {
		reason = err.Error()
	} else {
		generated, err := b.client.Generate(ctx, llm.Request{
			Prompt:      prompt,
			Temperature: b.opts.FlashcardTemperature,
			MaxTokens:   b.opts.MaxTokens,
		})
		if err != nil {
			return "", false, services.Wrap(services.ErrTransient, stage.NameQuestions, "generate flashcards", "", err)
		}
		cleaned := CleanDeckYAML(generated)
		if _, err := ParseDeck(cleaned); err != nil {
			reason = err.Error()
		} else {
			logger.Debug("flashcard yaml validated")
			return cleaned + "\n", false, nil
		}
	}

	logger.Info("flashcard fallback extraction",
		logging.Args(logging.DecisionAttrs("flashcard_source", "fallback", reason)...)...)
	deck := FallbackDeck(section)
	if len(deck.Flashcards) == 0 {
		logging.WarnWithContext(logger, "no keyword Q/A pairs found; skipping flashcards", "flashcards_skipped",
			logging.String(logging.FieldErrorHint, "keyword items need **Qn:** and **A:** markers"),
			logging.String(logging.FieldImpact, "flashcards.yaml is not produced"),
		)
		return "", true, nil
	}
	data, err := MarshalDeck(deck)
	if err != nil {
		logging.WarnWithContext(logger, "flashcard encoding failed", "flashcards_skipped", logging.Error(err))
		return "", true, nil
	}
	return string(data), true, nil
}

// PostProcess prefixes the fixed header, strips markdown fences, and
// collapses blank-line runs.
func PostProcess(generated string) string {
	body := textutil.StripCodeFences(strings.TrimSpace(generated), "markdown")
	body = textutil.CollapseBlankLines(strings.TrimSpace(body))
	return header + body
}
