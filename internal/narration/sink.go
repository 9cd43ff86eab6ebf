package narration

import (
	"fmt"
	"os"
	"path/filepath"

	"learnpod/internal/media/wav"
	"learnpod/internal/services/tts"
)

// dirSink persists each streamed segment as its own WAV part.
type dirSink struct {
	dir   string
	parts []string
}

func newDirSink(dir string) *dirSink {
	return &dirSink{dir: dir}
}

func (s *dirSink) Reset() error {
	s.parts = nil
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, 0o755)
}

func (s *dirSink) Write(segment tts.Segment) error {
	if len(segment.Data) == 0 {
		return nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("part_%03d.wav", len(s.parts)+1))
	if err := os.WriteFile(path, wav.FromPCM(segment.Data, segment.MIMEType), 0o644); err != nil {
		return err
	}
	s.parts = append(s.parts, path)
	return nil
}
