// Package transcode converts the combined narration WAV into MP3.
//
// A Chain tries its strategies in order: the ffmpeg command line first,
// then the pure-Go shine encoder. A strategy that is missing, times out or
// exits non-zero hands over to the next one. When every strategy fails the
// WAV file is kept as the final artifact and the result is marked degraded.
package transcode
