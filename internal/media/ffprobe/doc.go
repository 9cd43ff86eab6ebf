// Package ffprobe runs ffprobe against an audio file and decodes its JSON
// report.
//
// Inspect returns the container format and audio streams; Duration is the
// entry point the run summary and mail body use, and falls back to reading
// a WAV header directly when ffprobe is unavailable.
package ffprobe
