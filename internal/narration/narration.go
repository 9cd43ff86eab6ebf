package narration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"learnpod/internal/chunker"
	"learnpod/internal/config"
	"learnpod/internal/logging"
	"learnpod/internal/media/transcode"
	"learnpod/internal/media/wav"
	"learnpod/internal/services"
	"learnpod/internal/services/tts"
	"learnpod/internal/stage"
)

// Artifact names inside the run directory.
const (
	WAVFileName = "podcast.wav"
	MP3FileName = "podcast.mp3"
	ChunksDir   = "chunks"
)

// Synthesizer streams speech for one request into sink.
type Synthesizer interface {
	Synthesize(ctx context.Context, req tts.Request, sink tts.Sink) (int, error)
}

// Transcoder converts the combined WAV to MP3, degrading to the WAV itself.
type Transcoder interface {
	Transcode(ctx context.Context, wavPath, mp3Path string) transcode.Result
}

// Options controls narration.
type Options struct {
	Voices     map[string]string
	Budget     int
	KeepChunks bool
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Voices:     cfg.Speakers.Voices,
		Budget:     cfg.Generation.ChunkTokens,
		KeepChunks: cfg.Audio.KeepChunks,
	}
}

// Result describes the produced audio.
type Result struct {
	Path     string
	Strategy string
	Degraded bool
	Chunks   int
	Failed   int
	Segments int
}

// Builder produces the podcast audio. It implements stage.Handler.
type Builder struct {
	synth      Synthesizer
	transcoder Transcoder
	cost       chunker.CostFunc
	opts       Options
	logger     *slog.Logger
}

// New constructs a Builder. A nil cost falls back to the estimate oracle.
func New(synth Synthesizer, transcoder Transcoder, cost chunker.CostFunc, opts Options, logger *slog.Logger) *Builder {
	b := &Builder{synth: synth, transcoder: transcoder, cost: cost, opts: opts}
	if b.cost == nil {
		b.cost = chunker.Estimate
	}
	b.SetLogger(logger)
	return b
}

// SetLogger swaps the builder's logger.
func (b *Builder) SetLogger(logger *slog.Logger) {
	b.logger = logging.NewComponentLogger(logger, "narration")
}

// Prepare checks the script artifact exists.
func (b *Builder) Prepare(_ context.Context, run *stage.Run) error {
	_, err := run.RequireArtifact(stage.NameAudio, stage.ArtifactScript)
	return err
}

// Execute synthesizes the script and records the audio artifact.
func (b *Builder) Execute(ctx context.Context, run *stage.Run) error {
	scriptPath, err := run.RequireArtifact(stage.NameAudio, stage.ArtifactScript)
	if err != nil {
		return err
	}
	result, err := b.Build(ctx, scriptPath, run.OutputDir)
	if err != nil {
		return err
	}
	return run.Ledger.Record(stage.ArtifactAudio, result.Path)
}

// HealthCheck reports whether a speech client is configured.
func (b *Builder) HealthCheck(context.Context) stage.Health {
	if b.synth == nil {
		return stage.Unhealthy(stage.NameAudio, "speech synthesis client not configured")
	}
	return stage.Healthy(stage.NameAudio)
}

// Build narrates the script at scriptPath into outputDir.
func (b *Builder) Build(ctx context.Context, scriptPath, outputDir string) (Result, error) {
	if b.synth == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage.NameAudio, "build", "Speech synthesis client not configured", nil)
	}
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrNotFound, stage.NameAudio, "read script", scriptPath, err)
	}
	chunks := chunker.SplitScriptForNarration(string(data), b.opts.Budget, b.cost)
	if len(chunks) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, stage.NameAudio, "build", "Script has no lines to narrate", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stage.NameAudio, "create output dir", outputDir, err)
	}

	logger := logging.WithContext(ctx, b.logger)
	logger.Info("narration started",
		logging.Int(logging.FieldChunkCount, len(chunks)),
		logging.Int("voices", len(b.opts.Voices)),
	)

	chunkRoot := filepath.Join(outputDir, ChunksDir)
	result := Result{Chunks: len(chunks)}
	var parts []string
	for i, text := range chunks {
		chunkCtx := services.WithChunk(ctx, i+1, len(chunks))
		chunkLogger := logging.WithContext(chunkCtx, b.logger)
		sink := newDirSink(filepath.Join(chunkRoot, fmt.Sprintf("chunk_%03d", i+1)))

		written, err := b.synth.Synthesize(chunkCtx, tts.Request{Text: text, Voices: b.opts.Voices}, sink)
		if err != nil {
			result.Failed++
			logging.WarnWithContext(chunkLogger, "chunk synthesis failed; skipping", "tts_chunk_skipped",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Details(err).Hint),
				logging.String(logging.FieldImpact, "podcast is missing this part of the script"),
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		chunkLogger.Debug("chunk synthesized", logging.Int("segments", written))
		parts = append(parts, sink.parts...)
	}
	result.Segments = len(parts)
	if len(parts) == 0 {
		return result, services.Wrap(services.ErrTransient, stage.NameAudio, "synthesize",
			fmt.Sprintf("no audio produced for %d chunks", len(chunks)), nil)
	}

	wavPath := filepath.Join(outputDir, WAVFileName)
	format, err := wav.Concat(wavPath, parts)
	if err != nil {
		return result, services.Wrap(services.ErrInvalidFormat, stage.NameAudio, "concatenate", wavPath, err)
	}
	logger.Info("audio segments combined",
		logging.String("path", wavPath),
		logging.Int("segments", len(parts)),
		logging.Int("sample_rate", format.SampleRate),
	)

	result.Path = wavPath
	if b.transcoder != nil {
		converted := b.transcoder.Transcode(ctx, wavPath, filepath.Join(outputDir, MP3FileName))
		result.Path = converted.Path
		result.Strategy = converted.Strategy
		result.Degraded = converted.Degraded
		if !converted.Degraded && !b.opts.KeepChunks {
			_ = os.Remove(wavPath)
		}
	} else {
		result.Degraded = true
	}

	b.cleanup(logger, chunkRoot)
	logger.Info("narration completed",
		logging.String("path", result.Path),
		logging.Int("chunks", result.Chunks),
		logging.Int("failed_chunks", result.Failed),
		logging.Bool("degraded", result.Degraded),
	)
	return result, nil
}

func (b *Builder) cleanup(logger *slog.Logger, chunkRoot string) {
	if b.opts.KeepChunks {
		logger.Debug("keeping chunk files", logging.String("dir", chunkRoot))
		return
	}
	if err := os.RemoveAll(chunkRoot); err != nil {
		logger.Warn("chunk cleanup failed", logging.Error(err))
	}
}
