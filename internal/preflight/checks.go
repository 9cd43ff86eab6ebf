package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"learnpod/internal/chunker"
	"learnpod/internal/config"
	"learnpod/internal/deps"
	"learnpod/internal/logging"
	"learnpod/internal/pipeline"
	"learnpod/internal/services/llm"
	"learnpod/internal/services/retry"
)

const llmCheckTimeout = 30 * time.Second

// CheckLLM verifies that the generation API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, cfg *config.Config) Result {
	const name = "Gemini API"
	if cfg.Gemini.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:   cfg.Gemini.APIKey,
		Endpoint: cfg.ChatEndpoint(),
		Model:    cfg.Gemini.Model,
		Timeout:  llmCheckTimeout,
	}, llm.WithRetryPolicy(retry.Policy{MaxAttempts: 1}))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable (" + cfg.Gemini.Model + ")"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryOrParent accepts a missing directory when its nearest
// existing ancestor is writable, since runs create it on demand.
func CheckDirectoryOrParent(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	check := CheckDirectoryAccess(name, parent)
	if !check.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot be created under %s)", path, parent)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first run)", path)}
}

// CheckSystemDeps evaluates the external binaries used for audio assembly.
// ffmpeg is optional because MP3 encoding falls back to the built-in encoder.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Audio.FFmpegBinary,
			Description: "MP3 transcoding (built-in encoder used when missing)",
			Optional:    true,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Audio.FFprobeBinary,
			Description: "Audio duration in summaries and email",
			Optional:    true,
		},
	})
	if len(statuses) > 0 && statuses[0].Available {
		statuses = append(statuses, deps.CheckEncoder(ctx, cfg.Audio.FFmpegBinary, cfg.Audio.Codec))
	}
	return statuses
}

// summarizeLLMError produces a human-readable summary for health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}

// CheckStages builds the production stage set and reports each handler's
// readiness. No network requests are made.
func CheckStages(ctx context.Context, cfg *config.Config, logger *slog.Logger) []Result {
	if logger == nil {
		logger = logging.NewNop()
	}
	set := pipeline.StagesFromConfig(cfg, llm.NewFromConfig(cfg, logger), chunker.Estimate, logger)
	health := pipeline.New(cfg, set, nil, logger).StageHealth(ctx)
	results := make([]Result, 0, len(health))
	for _, h := range health {
		detail := h.Detail
		if h.Ready && detail == "" {
			detail = "ready"
		}
		results = append(results, Result{Name: "Stage " + h.Name, Passed: h.Ready, Detail: detail})
	}
	return results
}
