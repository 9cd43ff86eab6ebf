package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"learnpod/internal/media/ffprobe"
	"learnpod/internal/stage"
)

// ManifestEntry describes one ledger slot after the run.
type ManifestEntry struct {
	Kind     stage.Artifact
	Path     string
	Exists   bool
	Size     int64
	Duration time.Duration
}

// BuildManifest inspects every ledger entry. Audio duration is probed with
// ffprobe and falls back to the WAV header; zero means unknown.
func BuildManifest(ctx context.Context, ledger *stage.Ledger, ffprobeBinary string) []ManifestEntry {
	if ledger == nil {
		ledger = stage.NewLedger()
	}
	entries := ledger.Entries()
	manifest := make([]ManifestEntry, 0, len(entries))
	for _, entry := range entries {
		item := ManifestEntry{Kind: entry.Kind, Path: entry.Path}
		if entry.Path != "" {
			if info, err := os.Stat(entry.Path); err == nil && !info.IsDir() {
				item.Exists = true
				item.Size = info.Size()
			}
		}
		if item.Exists && entry.Kind == stage.ArtifactAudio {
			if d, err := ffprobe.Duration(ctx, ffprobeBinary, entry.Path); err == nil {
				item.Duration = d
			}
		}
		manifest = append(manifest, item)
	}
	return manifest
}

// FormatSize renders bytes as megabytes with one decimal.
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
}
