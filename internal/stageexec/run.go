package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"learnpod/internal/logging"
	"learnpod/internal/services"
	"learnpod/internal/stage"
)

// Options controls a single stage execution.
type Options struct {
	Logger    *slog.Logger
	Handler   stage.Handler
	StageName string
	Run       *stage.Run
}

// Run prepares and executes one stage, logging its start, completion or
// failure. The handler's error is returned unchanged.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.StageName)
	}
	if opts.Run == nil {
		return fmt.Errorf("pipeline run is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	started := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("output_dir", opts.Run.OutputDir),
	)

	if err := opts.Handler.Prepare(stageCtx, opts.Run); err != nil {
		return handleFailure(stageLogger, err, started)
	}
	if err := opts.Handler.Execute(stageCtx, opts.Run); err != nil {
		return handleFailure(stageLogger, err, started)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		logging.Int("artifacts", len(opts.Run.Ledger.Produced())),
	)
	return nil
}

func handleFailure(logger *slog.Logger, stageErr error, started time.Time) error {
	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = "stage failed"
	}
	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", details.Kind),
		logging.String("error_message", message),
		logging.String(logging.FieldErrorHint, details.Hint),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		logging.Error(stageErr),
	)
	return stageErr
}
