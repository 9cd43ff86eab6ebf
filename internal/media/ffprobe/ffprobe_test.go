package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"learnpod/internal/media/wav"
)

const sampleReport = `{
  "streams": [
    {"index": 0, "codec_name": "mp3", "codec_type": "audio", "sample_rate": "24000", "channels": 1, "duration": "61.2"}
  ],
  "format": {"filename": "podcast.mp3", "format_name": "mp3", "duration": "61.250000", "size": "1470000", "bit_rate": "192000"}
}`

func TestParseReport(t *testing.T) {
	result, err := Parse([]byte(sampleReport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := result.Duration(); got != 61250*time.Millisecond {
		t.Fatalf("unexpected duration %v", got)
	}
	if result.SampleRate() != 24000 {
		t.Fatalf("unexpected sample rate %d", result.SampleRate())
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", Duration: "2.5"}},
		Format:  Format{Duration: "N/A"},
	}
	if got := result.Duration(); got != 2500*time.Millisecond {
		t.Fatalf("unexpected duration %v", got)
	}
	if (Result{}).Duration() != 0 {
		t.Fatal("empty result should report zero duration")
	}
}

func TestDurationUsesWAVHeaderWhenProbeMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podcast.wav")
	if err := os.WriteFile(path, wav.FromPCM(make([]byte, 96000), "audio/L16;rate=24000"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Duration(context.Background(), "definitely-not-ffprobe", path)
	if err != nil || got != 2*time.Second {
		t.Fatalf("Duration = %v, %v", got, err)
	}
}

func TestDurationFailsForUnknownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podcast.mp3")
	_ = os.WriteFile(path, []byte("x"), 0o644)
	if _, err := Duration(context.Background(), "definitely-not-ffprobe", path); err == nil {
		t.Fatal("expected error without ffprobe for mp3")
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{61*time.Second + 400*time.Millisecond, "1:01"},
		{20*time.Minute + 5*time.Second, "20:05"},
	}
	for _, tc := range tests {
		if got := FormatClock(tc.in); got != tc.want {
			t.Fatalf("FormatClock(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
