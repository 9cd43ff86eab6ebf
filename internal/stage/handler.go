package stage

import (
	"context"
	"log/slog"
)

// Handler describes the contract the orchestrator needs from each stage.
type Handler interface {
	Prepare(context.Context, *Run) error
	Execute(context.Context, *Run) error
	HealthCheck(context.Context) Health
}

// LoggerAware stages accept the stage-scoped logger before running.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
