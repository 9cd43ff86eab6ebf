package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"learnpod/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "audio", "transcode", "ffmpeg failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	want := "external tool error: audio: transcode: ffmpeg failed: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message: got %q want %q", err.Error(), want)
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", " ", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestDetailsClassifiesMarkers(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{services.Wrap(services.ErrNotFound, "ingest", "open", "missing", nil), "not_found"},
		{services.Wrap(services.ErrInvalidFormat, "ingest", "check", "not markdown", nil), "invalid_format"},
		{services.Wrap(services.ErrEncoding, "ingest", "decode", "bad bytes", nil), "encoding"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrConfiguration, "", "", "", nil)), "configuration"},
		{services.Wrap(services.ErrTimeout, "audio", "ffmpeg", "", nil), "timeout"},
		{errors.New("plain"), "transient"},
	}
	for _, tc := range tests {
		details := services.Details(tc.err)
		if details.Kind != tc.kind {
			t.Fatalf("Details(%v).Kind = %q, want %q", tc.err, details.Kind, tc.kind)
		}
		if details.Hint == "" {
			t.Fatalf("expected hint for %v", tc.err)
		}
	}
	if services.Details(nil) != (services.ErrorDetails{}) {
		t.Fatal("expected zero details for nil error")
	}
}
