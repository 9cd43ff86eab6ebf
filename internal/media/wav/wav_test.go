package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseMIME(t *testing.T) {
	tests := []struct {
		mime string
		want Format
	}{
		{"audio/L16;codec=pcm;rate=24000", Format{SampleRate: 24000, BitsPerSample: 16, Channels: 1}},
		{"audio/L24;rate=48000", Format{SampleRate: 48000, BitsPerSample: 24, Channels: 1}},
		{"audio/L16;rate=abc", Format{SampleRate: 24000, BitsPerSample: 16, Channels: 1}},
		{"audio/pcm", Format{SampleRate: 24000, BitsPerSample: 16, Channels: 1}},
		{"", Format{SampleRate: 24000, BitsPerSample: 16, Channels: 1}},
		{";;;", Format{SampleRate: 24000, BitsPerSample: 16, Channels: 1}},
	}
	for _, tc := range tests {
		if got := ParseMIME(tc.mime); got != tc.want {
			t.Fatalf("ParseMIME(%q) = %+v, want %+v", tc.mime, got, tc.want)
		}
	}
}

func TestHeaderFields(t *testing.T) {
	const dataSize = 480
	header := Header(ParseMIME("audio/L16;rate=24000"), dataSize)
	if len(header) != HeaderSize {
		t.Fatalf("expected %d-byte header, got %d", HeaderSize, len(header))
	}
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(header[off:]) }
	u16 := func(off int) uint16 { return binary.LittleEndian.Uint16(header[off:]) }

	if string(header[0:4]) != "RIFF" || string(header[8:16]) != "WAVEfmt " || string(header[36:40]) != "data" {
		t.Fatalf("unexpected chunk ids: %q", header)
	}
	checks := []struct {
		name      string
		got, want uint32
	}{
		{"chunk size", u32(4), 36 + dataSize},
		{"fmt size", u32(16), 16},
		{"format", uint32(u16(20)), 1},
		{"channels", uint32(u16(22)), 1},
		{"sample rate", u32(24), 24000},
		{"byte rate", u32(28), 48000},
		{"block align", uint32(u16(32)), 2},
		{"bits", uint32(u16(34)), 16},
		{"data size", u32(40), dataSize},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestFromPCMRoundTrip(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	data := FromPCM(pcm, "audio/L16;rate=16000")
	if !IsWAV(data) {
		t.Fatal("expected wav signature")
	}
	format, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format.SampleRate != 16000 || !bytes.Equal(payload, pcm) {
		t.Fatalf("unexpected decode %+v %v", format, payload)
	}
	if again := FromPCM(data, "audio/L16;rate=8000"); !bytes.Equal(again, data) {
		t.Fatal("existing container should pass through unchanged")
	}
}

func TestDecodeRejectsNonWAV(t *testing.T) {
	if _, _, err := Decode([]byte("ID3 not a wav file")); !errors.Is(err, ErrNotWAV) {
		t.Fatalf("expected ErrNotWAV, got %v", err)
	}
}

func TestConcatAndDuration(t *testing.T) {
	dir := t.TempDir()
	mime := "audio/L16;rate=24000"
	first := filepath.Join(dir, "a.wav")
	second := filepath.Join(dir, "b.wav")
	if err := os.WriteFile(first, FromPCM(make([]byte, 24000), mime), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, FromPCM(bytes.Repeat([]byte{7}, 24000), mime), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.wav")
	if _, err := Concat(out, []string{first, second}); err != nil {
		t.Fatalf("Concat: %v", err)
	}
	data, _ := os.ReadFile(out)
	_, payload, err := Decode(data)
	if err != nil || len(payload) != 48000 || payload[24000] != 7 {
		t.Fatalf("unexpected payload len=%d err=%v", len(payload), err)
	}
	duration, err := Duration(out)
	if err != nil || duration != time.Second {
		t.Fatalf("Duration = %v, %v", duration, err)
	}
}

func TestConcatRejectsMixedFormats(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	_ = os.WriteFile(a, FromPCM(make([]byte, 10), "audio/L16;rate=24000"), 0o644)
	_ = os.WriteFile(b, FromPCM(make([]byte, 10), "audio/L16;rate=16000"), 0o644)
	if _, err := Concat(filepath.Join(dir, "out.wav"), []string{a, b}); err == nil {
		t.Fatal("expected format mismatch error")
	}
}

func TestSamples16(t *testing.T) {
	got := Samples16([]byte{0x01, 0x00, 0xff, 0xff, 0x09})
	if len(got) != 2 || got[0] != 1 || got[1] != -1 {
		t.Fatalf("unexpected samples %v", got)
	}
}
