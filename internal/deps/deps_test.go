package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present, "exit 0")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary", Optional: true},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if !results[1].Optional {
		t.Fatalf("optional flag not carried through")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestCheckEncoderFindsCodec(t *testing.T) {
	ffmpeg := filepath.Join(t.TempDir(), "ffmpeg")
	writeStub(t, ffmpeg, `cat <<'OUT'
Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264
 A....D aac                  AAC (Advanced Audio Coding)
 A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3)
OUT`)

	status := CheckEncoder(context.Background(), ffmpeg, "libmp3lame")
	if !status.Available {
		t.Fatalf("expected encoder available, got detail %q", status.Detail)
	}
	if status := CheckEncoder(context.Background(), ffmpeg, "libx264"); status.Available {
		t.Fatalf("video encoders must not satisfy an audio check")
	}
}

func TestCheckEncoderMissingCodec(t *testing.T) {
	ffmpeg := filepath.Join(t.TempDir(), "ffmpeg")
	writeStub(t, ffmpeg, "echo ' A....D aac  AAC'")
	status := CheckEncoder(context.Background(), ffmpeg, "libmp3lame")
	if status.Available || status.Detail == "" {
		t.Fatalf("expected missing encoder, got %#v", status)
	}
}

func TestCheckEncoderMissingBinary(t *testing.T) {
	status := CheckEncoder(context.Background(), filepath.Join(t.TempDir(), "nope"), "libmp3lame")
	if status.Available {
		t.Fatalf("expected unavailable status")
	}
}
