package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"learnpod/internal/document"
	"learnpod/internal/fileutil"
	"learnpod/internal/logging"
	"learnpod/internal/services"
	"learnpod/internal/stage"
	"learnpod/internal/textutil"
)

// InputCopyPrefix names the copy of the source document kept in the run directory.
const InputCopyPrefix = "input_"

// IngestStage parses the run's input document. It implements stage.Handler.
type IngestStage struct {
	logger *slog.Logger
}

// NewIngestStage constructs the ingest handler.
func NewIngestStage(logger *slog.Logger) *IngestStage {
	s := &IngestStage{}
	s.SetLogger(logger)
	return s
}

// SetLogger swaps the stage logger.
func (s *IngestStage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "ingest")
}

// Prepare checks an input path was supplied.
func (s *IngestStage) Prepare(_ context.Context, run *stage.Run) error {
	if run == nil || strings.TrimSpace(run.InputPath) == "" {
		return services.Wrap(services.ErrNotFound, stage.NameIngest, "prepare", "No input document given", nil)
	}
	return nil
}

// Execute ingests the document and copies the source into the run directory.
func (s *IngestStage) Execute(ctx context.Context, run *stage.Run) error {
	doc, err := document.Ingest(run.InputPath, s.logger)
	if err != nil {
		return err
	}
	run.Document = doc

	dst := filepath.Join(run.OutputDir, InputCopyPrefix+textutil.SanitizeFileName(filepath.Base(run.InputPath)))
	if err := fileutil.CopyFile(run.InputPath, dst); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "input copy failed", "input_copy_failed",
			logging.Error(err),
			logging.String("destination", dst),
			logging.String(logging.FieldImpact, "run directory lacks a copy of the source document"),
		)
	}
	return nil
}

// HealthCheck always reports ready; ingest has no external dependencies.
func (s *IngestStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(stage.NameIngest)
}
