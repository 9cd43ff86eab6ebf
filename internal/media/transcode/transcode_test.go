package transcode_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"learnpod/internal/logging"
	"learnpod/internal/media/transcode"
	"learnpod/internal/media/wav"
	"learnpod/internal/services"
	"learnpod/internal/testsupport"
)

type fakeStrategy struct {
	name  string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Transcode(_ context.Context, _, mp3Path string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(mp3Path, []byte("mp3"), 0o644)
}

func writeSilence(t *testing.T, path string, seconds int) {
	t.Helper()
	format := wav.Format{SampleRate: wav.DefaultSampleRate, BitsPerSample: 16, Channels: 1}
	pcm := make([]byte, seconds*format.ByteRate())
	data := append(wav.Header(format, len(pcm)), pcm...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
}

func TestFFmpegArgsDefaults(t *testing.T) {
	f := &transcode.FFmpeg{}
	got := strings.Join(f.Args("in.wav", "out.mp3"), " ")
	want := "-hide_banner -loglevel error -i in.wav -codec:a libmp3lame -b:a 192k -y out.mp3"
	if got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestFFmpegRunsBinary(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	binary := testsupport.WriteScript(t, filepath.Join(dir, "ffmpeg"),
		`echo "$@" > "`+argsFile+`"
for last; do :; done
echo mp3 > "$last"`)
	wavPath := filepath.Join(dir, "podcast.wav")
	mp3Path := filepath.Join(dir, "podcast.mp3")
	writeSilence(t, wavPath, 1)

	f := &transcode.FFmpeg{Binary: binary, Codec: "libmp3lame", Bitrate: "128k", Timeout: 5 * time.Second}
	if err := f.Transcode(context.Background(), wavPath, mp3Path); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if _, err := os.Stat(mp3Path); err != nil {
		t.Fatalf("expected mp3 output: %v", err)
	}
	if args := testsupport.ReadText(t, argsFile); !strings.Contains(args, "-b:a 128k") {
		t.Fatalf("bitrate not passed: %q", args)
	}
}

func TestFFmpegMissingBinary(t *testing.T) {
	f := &transcode.FFmpeg{Binary: filepath.Join(t.TempDir(), "missing-ffmpeg")}
	err := f.Transcode(context.Background(), "in.wav", "out.mp3")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestFFmpegNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteScript(t, filepath.Join(dir, "ffmpeg"), "echo 'Unknown encoder' >&2\nexit 1")
	f := &transcode.FFmpeg{Binary: binary}
	err := f.Transcode(context.Background(), "in.wav", filepath.Join(dir, "out.mp3"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestFFmpegTimeout(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteScript(t, filepath.Join(dir, "ffmpeg"), "exec sleep 5")
	f := &transcode.FFmpeg{Binary: binary, Timeout: 100 * time.Millisecond}
	err := f.Transcode(context.Background(), "in.wav", filepath.Join(dir, "out.mp3"))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestChainFallsThroughToNextStrategy(t *testing.T) {
	dir := t.TempDir()
	first := &fakeStrategy{name: "first", err: errors.New("boom")}
	second := &fakeStrategy{name: "second"}
	chain := transcode.NewChain(logging.NewNop(), first, second)

	result := chain.Transcode(context.Background(), filepath.Join(dir, "podcast.wav"), filepath.Join(dir, "podcast.mp3"))
	if result.Degraded || result.Strategy != "second" {
		t.Fatalf("unexpected result %+v", result)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
	if result.Path != filepath.Join(dir, "podcast.mp3") {
		t.Fatalf("path = %q", result.Path)
	}
}

func TestChainKeepsWAVWhenAllFail(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "podcast.wav")
	writeSilence(t, wavPath, 1)
	chain := transcode.NewChain(logging.NewNop(),
		&fakeStrategy{name: "a", err: errors.New("a failed")},
		&fakeStrategy{name: "b", err: errors.New("b failed")},
	)

	result := chain.Transcode(context.Background(), wavPath, filepath.Join(dir, "podcast.mp3"))
	if !result.Degraded || result.Path != wavPath {
		t.Fatalf("expected degraded wav result, got %+v", result)
	}
	if result.Err == nil || !strings.Contains(result.Err.Error(), "b failed") {
		t.Fatalf("expected joined errors, got %v", result.Err)
	}
	if _, err := os.Stat(wavPath); err != nil {
		t.Fatalf("wav should be kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "podcast.mp3")); !os.IsNotExist(err) {
		t.Fatalf("no mp3 expected, stat err = %v", err)
	}
}

func TestShineRejectsNonWAV(t *testing.T) {
	dir := t.TempDir()
	input := testsupport.WriteText(t, filepath.Join(dir, "podcast.wav"), "not audio")
	err := transcode.Shine{}.Transcode(context.Background(), input, filepath.Join(dir, "podcast.mp3"))
	if !errors.Is(err, services.ErrInvalidFormat) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}

func TestShineEncodesSilence(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "podcast.wav")
	mp3Path := filepath.Join(dir, "podcast.mp3")
	writeSilence(t, wavPath, 1)

	if err := (transcode.Shine{}).Transcode(context.Background(), wavPath, mp3Path); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	info, err := os.Stat(mp3Path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty mp3, err=%v", err)
	}
}
