package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	outputDirLayout = "060102_1504"
	lockFileName    = ".learnpod.lock"
	maxDirSuffix    = 999
)

// AllocateOutputDir creates a new run directory under root named for the
// current minute. When the name is taken, _1, _2, ... suffixes are tried.
// Allocation is serialized across processes with a lock file in root.
func AllocateOutputDir(root string, now time.Time) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create output root: %w", err)
	}
	lock := flock.New(filepath.Join(root, lockFileName))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock output root: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	base := now.Format(outputDirLayout)
	for i := 0; i <= maxDirSuffix; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(root, name)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	return "", fmt.Errorf("no free output directory for %s after %d attempts", base, maxDirSuffix)
}
