// Package tts streams multi-speaker speech from Gemini's generateContent API.
//
// Stream issues one streaming request and yields raw audio segments in
// arrival order. Synthesize wraps Stream in the shared retry policy and hands
// every segment to a Sink as soon as it arrives, so nothing is buffered beyond
// one segment. A retried attempt calls Sink.Reset first, which lets the caller
// discard the partial output of the failed attempt.
package tts
