package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"learnpod/internal/config"
	"learnpod/internal/logging"
	"learnpod/internal/notifications"
	"learnpod/internal/services"
	"learnpod/internal/stage"
	"learnpod/internal/stageexec"
)

// RunLogFileName is the JSON log written inside every run directory.
const RunLogFileName = "pipeline.log"

// StageSet bundles the stage handlers the orchestrator runs. A nil Audio
// handler skips narration.
type StageSet struct {
	Ingest    stage.Handler
	Script    stage.Handler
	Explainer stage.Handler
	Questions stage.Handler
	Audio     stage.Handler
}

type gate int

const (
	gateHard gate = iota
	gateSoft
)

type pipelineStage struct {
	name    string
	handler stage.Handler
	gate    gate
}

// Orchestrator runs documents through the configured stages.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	stages   []pipelineStage
	notifier notifications.Service
	now      func() time.Time
	newID    func() string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for directory names and mail.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// New constructs an orchestrator. A nil notifier disables email.
func New(cfg *config.Config, set StageSet, notifier notifications.Service, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if set.Ingest == nil {
		set.Ingest = NewIngestStage(logger)
	}
	o := &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	o.stages = []pipelineStage{
		{name: stage.NameIngest, handler: set.Ingest, gate: gateHard},
		{name: stage.NameScript, handler: set.Script, gate: gateHard},
		{name: stage.NameExplainer, handler: set.Explainer, gate: gateHard},
		{name: stage.NameQuestions, handler: set.Questions, gate: gateHard},
	}
	if set.Audio != nil {
		o.stages = append(o.stages, pipelineStage{name: stage.NameAudio, handler: set.Audio, gate: gateSoft})
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StageHealth reports each configured stage's readiness in run order. A
// missing hard-stage handler is reported as not ready.
func (o *Orchestrator) StageHealth(ctx context.Context) []stage.Health {
	health := make([]stage.Health, 0, len(o.stages))
	for _, stg := range o.stages {
		if stg.handler == nil {
			health = append(health, stage.Unhealthy(stg.name, "stage handler not configured"))
			continue
		}
		health = append(health, stg.handler.HealthCheck(ctx))
	}
	return health
}

// RunOptions controls a single run.
type RunOptions struct {
	NoEmail bool
}

// Report summarizes a finished or aborted run.
type Report struct {
	RunID     string
	Title     string
	OutputDir string
	Ledger    *stage.Ledger
	Manifest  []ManifestEntry
	// SoftFailures maps a stage name to the error it was allowed to fail with.
	SoftFailures map[string]error
	EmailSent    bool
	EmailSkipped string
	FailedStage  string
	Elapsed      time.Duration
}

// Complete reports whether every ledger entry exists on disk.
func (r *Report) Complete() bool {
	for _, entry := range r.Manifest {
		if !entry.Exists {
			return false
		}
	}
	return len(r.Manifest) > 0
}

// Run processes inputPath into a newly allocated output directory. The
// returned report is populated even when a hard stage fails; the error then
// names the failing stage.
func (o *Orchestrator) Run(ctx context.Context, inputPath string, opts RunOptions) (*Report, error) {
	started := o.now()
	outputDir, err := AllocateOutputDir(o.cfg.Paths.OutputDir, started)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "allocate output dir", o.cfg.Paths.OutputDir, err)
	}

	runID := o.newID()
	ctx = services.WithRunID(ctx, runID)
	logger, closer, err := logging.NewRunLogger(o.logger, filepath.Join(outputDir, RunLogFileName), runID)
	if err != nil {
		logging.WarnWithContext(o.logger, "run log unavailable", "run_log_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "pipeline.log is not written for this run"),
		)
		logger = o.logger
	} else {
		defer closer.Close()
	}
	logger = logging.NewComponentLogger(logger, "pipeline")

	run := stage.NewRun(runID, inputPath, outputDir)
	report := &Report{
		RunID:        runID,
		OutputDir:    outputDir,
		Ledger:       run.Ledger,
		SoftFailures: make(map[string]error),
	}
	logging.WithContext(ctx, logger).Info("pipeline started",
		logging.String("input", inputPath),
		logging.String("output_dir", outputDir),
	)

	runErr := o.runStages(ctx, logger, run, report)
	if runErr == nil {
		o.deliver(ctx, logger, run, report, opts)
	}

	if run.Document != nil {
		report.Title = run.Document.Title
	}
	report.Manifest = BuildManifest(ctx, run.Ledger, o.cfg.Audio.FFprobeBinary)
	report.Elapsed = o.now().Sub(started)

	done := logging.WithContext(ctx, logger)
	if runErr != nil {
		logging.ErrorWithContext(done, "pipeline aborted", "pipeline_aborted",
			logging.String("failed_stage", report.FailedStage),
			logging.Int("artifacts", len(run.Ledger.Produced())),
			logging.String(logging.FieldErrorHint, services.Details(runErr).Hint),
			logging.Error(runErr),
		)
		return report, runErr
	}
	done.Info("pipeline completed",
		logging.Int("artifacts", len(run.Ledger.Produced())),
		logging.Int("soft_failures", len(report.SoftFailures)),
		logging.Duration("elapsed", report.Elapsed.Round(time.Millisecond)),
	)
	return report, nil
}

func (o *Orchestrator) runStages(ctx context.Context, logger *slog.Logger, run *stage.Run, report *Report) error {
	for _, st := range o.stages {
		if err := ctx.Err(); err != nil {
			report.FailedStage = st.name
			return err
		}
		err := stageexec.Run(ctx, stageexec.Options{
			Logger:    logger,
			Handler:   st.handler,
			StageName: st.name,
			Run:       run,
		})
		if err == nil {
			continue
		}
		if st.gate == gateSoft && !errors.Is(err, context.Canceled) {
			report.SoftFailures[st.name] = err
			logging.WarnWithContext(logging.WithContext(services.WithStage(ctx, st.name), logger),
				"stage failed; continuing without its artifact", "soft_stage_failure",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Details(err).Hint),
				logging.String(logging.FieldImpact, fmt.Sprintf("%s artifact not produced", st.name)),
			)
			continue
		}
		report.FailedStage = st.name
		return fmt.Errorf("%s stage: %w", st.name, err)
	}
	return nil
}

func (o *Orchestrator) deliver(ctx context.Context, logger *slog.Logger, run *stage.Run, report *Report, opts RunOptions) {
	ctx = services.WithStage(ctx, stage.NameEmail)
	emailLogger := logging.WithContext(ctx, logger)

	reason := ""
	switch {
	case opts.NoEmail:
		reason = "disabled by --no-email"
	case o.notifier == nil || !o.notifier.Enabled():
		reason = "mail credentials not configured"
	}
	if reason != "" {
		report.EmailSkipped = reason
		emailLogger.Info("email skipped", logging.Args(logging.DecisionAttrs("email", "skipped", reason)...)...)
		return
	}

	pkg := BuildPackage(ctx, run, o.cfg.Audio.FFprobeBinary, o.now())
	if err := o.notifier.SendPackage(ctx, pkg); err != nil {
		report.SoftFailures[stage.NameEmail] = err
		logging.WarnWithContext(emailLogger, "email delivery failed", "email_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check mail credentials and app password"),
			logging.String(logging.FieldImpact, "artifacts remain in the output directory"),
		)
		return
	}
	report.EmailSent = true
}
