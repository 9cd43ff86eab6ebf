package pipeline

import (
	"context"
	"io"
	"log/slog"

	"learnpod/internal/chunker"
	"learnpod/internal/config"
	"learnpod/internal/explainer"
	"learnpod/internal/logging"
	"learnpod/internal/media/transcode"
	"learnpod/internal/narration"
	"learnpod/internal/notifications"
	"learnpod/internal/quiz"
	"learnpod/internal/scriptgen"
	"learnpod/internal/services/llm"
	"learnpod/internal/services/tts"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// CostFromConfig returns the exact token counter when the SDK client can be
// created, and the character estimate otherwise. Close the returned closer
// when the run ends.
func CostFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (chunker.CostFunc, io.Closer) {
	counter, err := llm.NewGenaiCounter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Info("token counter unavailable; using estimate",
			logging.Args(logging.DecisionAttrs("cost_oracle", "estimate", err.Error())...)...)
		return chunker.Estimate, nopCloser{}
	}
	return llm.CostFunc(ctx, counter, logger), counter
}

// StagesFromConfig wires the production stage handlers. cost sizes script
// generation chunks; narration always packs by the local estimate.
func StagesFromConfig(cfg *config.Config, client *llm.Client, cost chunker.CostFunc, logger *slog.Logger) StageSet {
	return StageSet{
		Ingest:    NewIngestStage(logger),
		Script:    scriptgen.New(client, cost, scriptgen.OptionsFromConfig(cfg), logger),
		Explainer: explainer.New(client, explainer.OptionsFromConfig(cfg), logger),
		Questions: quiz.New(client, quiz.OptionsFromConfig(cfg), logger),
		Audio: narration.New(
			tts.NewFromConfig(cfg, logger),
			transcode.NewFromConfig(cfg, logger),
			chunker.Estimate,
			narration.OptionsFromConfig(cfg),
			logger,
		),
	}
}

// NewFromConfig builds an orchestrator with production stages and mail
// delivery. The closer releases the token counter.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Orchestrator, io.Closer, error) {
	if err := cfg.RequireGemini(); err != nil {
		return nil, nil, err
	}
	notifier := notifierFromConfig(cfg, logger)
	cost, closer := CostFromConfig(ctx, cfg, logger)
	set := StagesFromConfig(cfg, llm.NewFromConfig(cfg, logger), cost, logger)
	return New(cfg, set, notifier, logger, opts...), closer, nil
}

// notifierFromConfig returns nil, which disables email, when the mail client
// cannot be built.
func notifierFromConfig(cfg *config.Config, logger *slog.Logger) notifications.Service {
	notifier, err := notifications.NewService(cfg, logger)
	if err != nil {
		logging.WarnWithContext(logger, "mail client unavailable; email disabled", "email_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check mail.host, mail.port and mail.timeout_seconds"),
			logging.String(logging.FieldImpact, "the package is not emailed"),
		)
		return nil
	}
	return notifier
}
