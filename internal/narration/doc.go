// Package narration implements the audio stage.
//
// The finished script is split on line boundaries so no utterance straddles
// two synthesis calls. Each chunk is synthesized with the configured voice
// mapping and every streamed segment is written to disk as it arrives under
// chunks/chunk_NNN/. The parts are concatenated in order into podcast.wav,
// which is then handed to the transcoder chain for podcast.mp3.
//
// A chunk whose synthesis fails is logged and skipped. The stage fails only
// when no chunk produced audio.
package narration
