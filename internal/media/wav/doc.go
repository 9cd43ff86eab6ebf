// Package wav reads and writes the minimal RIFF/WAVE container used for
// synthesized narration.
//
// Speech synthesis returns headerless PCM tagged with a MIME type such as
// "audio/L16;codec=pcm;rate=24000". FromPCM prefixes such data with a 44-byte
// header; Concat joins per-chunk files into one container; Duration reads
// the playback length back from a header.
package wav
