package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"learnpod/internal/services"
)

// FFmpeg runs the ffmpeg command line.
type FFmpeg struct {
	Binary  string
	Codec   string
	Bitrate string
	Timeout time.Duration
}

// Name identifies the strategy in logs.
func (FFmpeg) Name() string { return "ffmpeg" }

// Args returns the ffmpeg argument list for one conversion.
func (f *FFmpeg) Args(wavPath, mp3Path string) []string {
	codec := strings.TrimSpace(f.Codec)
	if codec == "" {
		codec = "libmp3lame"
	}
	bitrate := strings.TrimSpace(f.Bitrate)
	if bitrate == "" {
		bitrate = "192k"
	}
	return []string{"-hide_banner", "-loglevel", "error", "-i", wavPath, "-codec:a", codec, "-b:a", bitrate, "-y", mp3Path}
}

// Transcode runs ffmpeg with the configured timeout.
func (f *FFmpeg) Transcode(ctx context.Context, wavPath, mp3Path string) error {
	binary := strings.TrimSpace(f.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "audio", "ffmpeg", "binary not found", err)
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, resolved, f.Args(wavPath, mp3Path)...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "audio", "ffmpeg", fmt.Sprintf("timed out after %s", f.Timeout), err)
		}
		return services.Wrap(services.ErrExternalTool, "audio", "ffmpeg", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}
