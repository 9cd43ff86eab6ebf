package transcode

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"learnpod/internal/config"
	"learnpod/internal/logging"
)

// Strategy converts a WAV file to MP3.
type Strategy interface {
	Name() string
	Transcode(ctx context.Context, wavPath, mp3Path string) error
}

// Result reports what a Chain produced.
type Result struct {
	// Path is the MP3 on success, or the untouched WAV when Degraded.
	Path     string
	Strategy string
	Degraded bool
	Err      error
}

// Chain tries strategies in order until one succeeds.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain builds a chain over strategies.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logging.NewComponentLogger(logger, "transcode")}
}

// NewFromConfig builds the ffmpeg then shine chain.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Chain {
	return NewChain(logger,
		&FFmpeg{
			Binary:  cfg.Audio.FFmpegBinary,
			Codec:   cfg.Audio.Codec,
			Bitrate: cfg.Audio.Bitrate,
			Timeout: cfg.TranscodeTimeout(),
		},
		Shine{},
	)
}

// Transcode converts wavPath to mp3Path. It never fails outright: when no
// strategy succeeds the result points at wavPath and carries the joined
// strategy errors.
func (c *Chain) Transcode(ctx context.Context, wavPath, mp3Path string) Result {
	logger := logging.WithContext(ctx, c.logger)
	var errs []error
	for _, strategy := range c.strategies {
		err := strategy.Transcode(ctx, wavPath, mp3Path)
		if err == nil {
			logger.Info("audio transcoded",
				logging.String("strategy", strategy.Name()),
				logging.String("path", mp3Path),
			)
			return Result{Path: mp3Path, Strategy: strategy.Name()}
		}
		_ = os.Remove(mp3Path)
		errs = append(errs, err)
		logger.Info("transcoder unavailable; trying next",
			logging.Args(append(logging.DecisionAttrs("transcoder", "skip_"+strategy.Name(), err.Error()),
				logging.String("strategy", strategy.Name()))...)...)
		if ctx.Err() != nil {
			break
		}
	}

	err := errors.Join(errs...)
	if err == nil {
		err = errors.New("no transcoders configured")
	}
	logging.WarnWithContext(logger, "mp3 transcoding failed; keeping wav", "transcode_degraded",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "install ffmpeg with libmp3lame"),
		logging.String(logging.FieldImpact, "audio artifact is an uncompressed wav"),
	)
	return Result{Path: wavPath, Degraded: true, Err: err}
}
