package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const encoderProbeTimeout = 10 * time.Second

// CheckEncoder reports whether the ffmpeg binary lists codec among its audio
// encoders. A build without libmp3lame cannot produce the podcast MP3 even
// though the binary itself is present.
func CheckEncoder(ctx context.Context, ffmpegBinary, codec string) Status {
	codec = strings.TrimSpace(codec)
	result := Status{
		Name:        "MP3 encoder",
		Command:     strings.TrimSpace(ffmpegBinary),
		Description: fmt.Sprintf("ffmpeg audio encoder %q", codec),
		Optional:    true,
	}
	resolved, err := exec.LookPath(result.Command)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found", result.Command)
		return result
	}

	probeCtx, cancel := context.WithTimeout(ctx, encoderProbeTimeout)
	defer cancel()
	output, err := exec.CommandContext(probeCtx, resolved, "-hide_banner", "-encoders").Output()
	if err != nil {
		result.Detail = fmt.Sprintf("list encoders: %v", err)
		return result
	}
	if hasEncoder(output, codec) {
		result.Available = true
		return result
	}
	result.Detail = fmt.Sprintf("encoder %q not compiled into %s", codec, result.Command)
	return result
}

// hasEncoder scans `ffmpeg -encoders` output. Audio rows look like
// " A....D libmp3lame  libmp3lame MP3 (MPEG audio layer 3)".
func hasEncoder(output []byte, codec string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "A") {
			continue
		}
		if fields[1] == codec {
			return true
		}
	}
	return false
}
