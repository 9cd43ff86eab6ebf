// Package logging assembles structured slog loggers and formatting helpers used
// across LearnPod.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with the run ID, stage, and chunk position. Every pipeline run
// additionally tees JSON records into a run-local log file through
// NewRunLogger. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
