// Package script holds the dialogue script helpers shared by the script and
// narration stages: reassembling chunk-level fragments, canonicalizing speaker
// labels, and recognising speaker lines.
package script
