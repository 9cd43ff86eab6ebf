package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	chunkKey contextKey = "chunk"
)

// Chunk identifies the position of a unit of work within a chunked stage.
type Chunk struct {
	Index int
	Count int
}

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithChunk annotates context with a 1-based chunk index and the chunk total.
func WithChunk(ctx context.Context, index, count int) context.Context {
	if index <= 0 || count <= 0 {
		return ctx
	}
	return context.WithValue(ctx, chunkKey, Chunk{Index: index, Count: count})
}

// ChunkFromContext returns the chunk position if present.
func ChunkFromContext(ctx context.Context) (Chunk, bool) {
	chunk, ok := ctx.Value(chunkKey).(Chunk)
	return chunk, ok
}
